// Package api serves the order-list action over HTTP.
package api

import "net/http"

// Body is the JSON body of every error response.
type Body struct {
	Message string `json:"message"`
}

// ApiError is an error response.
type ApiError struct {
	StatusCode int
	Body       Body
}

// ListItem is one option of the order list.
type ListItem struct {
	Index string `json:"index"`
	Value string `json:"value"`
}

// ListResponse is the 200 body of the order-list action.
type ListResponse struct {
	ListItems []ListItem `json:"listItems"`
}

var forbiddenErr = ApiError{
	StatusCode: http.StatusForbidden,
	Body: Body{
		Message: "You are not allowed to perform this action.",
	},
}

var badRequestErr = ApiError{
	StatusCode: http.StatusBadRequest,
	Body: Body{
		Message: "Bad request",
	},
}

var unknownCollectionErr = ApiError{
	StatusCode: http.StatusNotFound,
	Body: Body{
		Message: "No such collection.",
	},
}

var notFoundErr = ApiError{
	StatusCode: http.StatusNotFound,
	Body: Body{
		Message: "No such route.",
	},
}

var noMethodErr = ApiError{
	StatusCode: http.StatusMethodNotAllowed,
	Body: Body{
		Message: "No such route.",
	},
}

var internalErr = ApiError{
	StatusCode: http.StatusInternalServerError,
	Body: Body{
		Message: "Internal error.",
	},
}
