package middleware

import (
	"net/http"

	"datadash/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionKey is the gin context key holding the browser's session id
const SessionKey = "session_id"

// EnsureSession gives every browser a session cookie. The cookie only
// carries an id; the uploaded table stays server-side.
func EnsureSession(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookieName)
		if err != nil || !session.ValidID(id) {
			id = session.NewID()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, id, 0, "/", "", false, true)
		}
		c.Set(SessionKey, id)
		c.Next()
	}
}

// SessionID returns the id set by EnsureSession
func SessionID(c *gin.Context) string {
	return c.GetString(SessionKey)
}
