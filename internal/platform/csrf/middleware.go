package csrf

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"user_registry/internal/platform/session"
)

const (
	// FieldName is the hidden form field carrying the token.
	FieldName = "csrf_token"
	// HeaderName is accepted as an alternative to the form field.
	HeaderName = "X-CSRF-Token"
	// ContextKey holds the freshly issued token for templates.
	ContextKey = "csrfToken"
	// ErrorKey holds the verification error for the failure handler.
	ErrorKey = "csrfError"
)

// Protect verifies the token on unsafe methods and issues a token for every request.
// Must run after session.Middleware. On failure onFailure renders the response
// and the chain is aborted.
func Protect(issuer *Issuer, onFailure gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := session.ID(c)

		if !isSafeMethod(c.Request.Method) {
			token := c.PostForm(FieldName)
			if token == "" {
				token = c.GetHeader(HeaderName)
			}
			if err := issuer.Verify(token, sid); err != nil {
				c.Set(ErrorKey, err)
				onFailure(c)
				c.Abort()
				return
			}
		}

		token, err := issuer.Issue(sid)
		if err != nil {
			_ = c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Set(ContextKey, token)
		c.Next()
	}
}

// Token returns the token issued for the current request.
func Token(c *gin.Context) string {
	return c.GetString(ContextKey)
}

// Err returns the verification error recorded by Protect, if any.
func Err(c *gin.Context) error {
	if v, ok := c.Get(ErrorKey); ok {
		if err, ok := v.(error); ok {
			return err
		}
	}
	return nil
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
