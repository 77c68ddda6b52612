package ordering

import (
	"errors"
	"fmt"
	"strings"
)

// Error is returned by the core and by the stores and hosts built on it.
//
// Error kinds:
//   - Configuration: a definition lacks a required field (fatal at setup)
//   - Request: the caller omitted a required group or sent a bad position
//   - Consistency: a shift touched an unexpected number of rows; the
//     surrounding transaction must be rolled back
//   - Not found: the addressed record does not exist
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Collection names the affected collection, if any.
	Collection string

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes ordering errors.
type ErrorCode string

const (
	// ErrCodeConfigInvalid indicates a definition is missing a required field.
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	// ErrCodeGroupRequired indicates a grouped collection was addressed
	// without a value for every group field.
	ErrCodeGroupRequired ErrorCode = "GROUP_REQUIRED"

	// ErrCodeInvalidPosition indicates a position that is neither blank
	// nor an integer.
	ErrCodeInvalidPosition ErrorCode = "INVALID_POSITION"

	// ErrCodeConsistency indicates the store disagreed with the invariant.
	ErrCodeConsistency ErrorCode = "CONSISTENCY_VIOLATION"

	// ErrCodeNotFound indicates the addressed record does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeFieldReserved indicates an attempt to write the position or a
	// group field as a plain attribute.
	ErrCodeFieldReserved ErrorCode = "FIELD_RESERVED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("%s: %s (collection=%s)", e.Code, e.Message, e.Collection)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err wraps an *Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsConfigError returns true for configuration errors.
func IsConfigError(err error) bool { return HasCode(err, ErrCodeConfigInvalid) }

// IsRequestError returns true for errors caused by the caller's input.
func IsRequestError(err error) bool {
	return HasCode(err, ErrCodeGroupRequired) ||
		HasCode(err, ErrCodeInvalidPosition) ||
		HasCode(err, ErrCodeFieldReserved)
}

// IsConsistencyError returns true when the store broke the invariant.
func IsConsistencyError(err error) bool { return HasCode(err, ErrCodeConsistency) }

// IsNotFound returns true when the record does not exist.
func IsNotFound(err error) bool { return HasCode(err, ErrCodeNotFound) }

// NewConfigError creates a configuration error.
func NewConfigError(collection, message string) *Error {
	return &Error{Code: ErrCodeConfigInvalid, Message: message, Collection: collection}
}

// NewGroupRequiredError creates a request error for missing group fields.
func NewGroupRequiredError(collection string, missing []string) *Error {
	return &Error{
		Code:       ErrCodeGroupRequired,
		Message:    "group identifier required",
		Collection: collection,
		Details: map[string]string{
			"missing": strings.Join(missing, ","),
		},
	}
}

// NewInvalidPositionError creates a request error for an unparsable position.
func NewInvalidPositionError(input string) *Error {
	return &Error{
		Code:    ErrCodeInvalidPosition,
		Message: fmt.Sprintf("position %q is neither blank nor an integer", input),
	}
}

// NewConsistencyError reports a shift whose row count disagrees with a
// contiguous group.
func NewConsistencyError(scope Scope, s Shift, want, got int64) *Error {
	return &Error{
		Code:       ErrCodeConsistency,
		Message:    fmt.Sprintf("shift %s touched %d rows, expected %d", s, got, want),
		Collection: scope.Collection,
		Details: map[string]string{
			"group":    scope.Group.Encode(),
			"expected": fmt.Sprintf("%d", want),
			"affected": fmt.Sprintf("%d", got),
		},
	}
}

// NewGapError reports a group whose positions are not 0..N-1.
func NewGapError(scope Scope, index, position int) *Error {
	return &Error{
		Code:       ErrCodeConsistency,
		Message:    fmt.Sprintf("record #%d holds position %d", index, position),
		Collection: scope.Collection,
		Details: map[string]string{
			"group":    scope.Group.Encode(),
			"expected": fmt.Sprintf("%d", index),
			"position": fmt.Sprintf("%d", position),
		},
	}
}

// NewNotFoundError reports a missing record.
func NewNotFoundError(collection, id string) *Error {
	return &Error{
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("record %q not found", id),
		Collection: collection,
		Details:    map[string]string{"id": id},
	}
}

// NewReservedFieldError reports an attempt to write an ordering field directly.
func NewReservedFieldError(collection, field string) *Error {
	return &Error{
		Code:       ErrCodeFieldReserved,
		Message:    fmt.Sprintf("field %q is maintained by ordering", field),
		Collection: collection,
		Details:    map[string]string{"field": field},
	}
}
