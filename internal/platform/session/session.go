// Package session provides the browser session cookie and the one-shot flash
// message queue attached to it.
package session

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CookieName is the name of the session id cookie.
	CookieName = "session"
	// ContextKey is the gin context key holding the session id.
	ContextKey = "sessionID"
)

// Flash categories understood by the templates.
const (
	CategorySuccess = "success"
	CategoryWarning = "warning"
	CategoryDanger  = "danger"
	CategoryInfo    = "info"
)

// Flash is a one-shot status message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// FlashStore queues flash messages per session.
// Pop returns every queued message in insertion order and removes them.
type FlashStore interface {
	Add(ctx context.Context, sessionID string, f Flash) error
	Pop(ctx context.Context, sessionID string) ([]Flash, error)
}

// Middleware ensures every request carries a session id cookie.
// Missing or malformed ids are replaced with a fresh random UUID.
func Middleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(CookieName)
		if err != nil || !validID(id) {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CookieName, id, 0, "/", "", secure, true)
		}
		c.Set(ContextKey, id)
		c.Next()
	}
}

// ID returns the session id set by Middleware, or "" if none.
func ID(c *gin.Context) string {
	return c.GetString(ContextKey)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
