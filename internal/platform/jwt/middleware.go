package jwtmw

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "sid"
	// ContextSessionID is the gin context key holding the session id.
	ContextSessionID = "sessionID"
)

// SessionRequired returns a Gin middleware that guarantees every request carries a session id.
// A valid cookie is reused; a missing, expired or tampered one is replaced by a fresh session.
func SessionRequired(gen *Generator, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 既存のクッキーを検証
		if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
			sid, err := gen.ParseToken(cookie)
			if err == nil {
				c.Set(ContextSessionID, sid)
				c.Next()
				return
			}
			slog.Debug("replacing invalid session cookie", "error", err, "remote_addr", c.ClientIP())
		}

		// 2. 新しいセッションを発行
		sid := uuid.NewString()
		token, err := gen.GenerateToken(sid)
		if err != nil {
			slog.Error("failed to issue session token", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, token, int(gen.Expiration().Seconds()), "/", "", secure, true)
		c.Set(ContextSessionID, sid)
		c.Next()
	}
}

// SessionID returns the session id set by SessionRequired, or "" if there is none.
func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionID)
}
