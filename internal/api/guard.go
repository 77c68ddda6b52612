package api

import (
	"crypto/subtle"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// requireAccount rejects callers without valid basic auth credentials for one
// of the accounts. With no accounts configured every caller is anonymous and
// rejected.
func requireAccount(accounts gin.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, password, ok := c.Request.BasicAuth()
		if !ok {
			abort(c, &forbiddenErr)
			return
		}
		want, known := accounts[name]
		if !known || subtle.ConstantTimeCompare([]byte(password), []byte(want)) != 1 {
			abort(c, &forbiddenErr)
			return
		}
		c.Set(gin.AuthUserKey, name)
		c.Next()
	}
}

// requireAjax rejects requests that were not sent by a script.
func requireAjax(c *gin.Context) {
	if c.GetHeader("X-Requested-With") != "XMLHttpRequest" {
		abort(c, &forbiddenErr)
		return
	}
	c.Next()
}

// requireSameOrigin rejects cross-origin requests. Requests without an
// Origin header pass.
func requireSameOrigin(c *gin.Context) {
	origin := c.GetHeader("Origin")
	if origin == "" {
		c.Next()
		return
	}
	u, err := url.Parse(origin)
	if err != nil || !strings.EqualFold(u.Host, c.Request.Host) {
		abort(c, &forbiddenErr)
		return
	}
	c.Next()
}

func abort(c *gin.Context, apiError *ApiError) {
	c.AbortWithStatusJSON(apiError.StatusCode, apiError.Body)
}
