package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/guttosm/bundle-service/internal/logger"
)

// SessionCookieName is the cookie carrying the cart session id.
const SessionCookieName = "bundle_session"

// SessionConfig holds configuration for the cart session cookie.
type SessionConfig struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// DefaultSessionConfig returns a two day, non-secure session cookie configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		CookieName: SessionCookieName,
		MaxAge:     48 * time.Hour,
	}
}

// CartSession returns a middleware that assigns every visitor a cart session.
// An existing cookie holding a valid UUID is reused, otherwise a new id is issued.
// The cookie is refreshed on every request so active carts do not expire.
func CartSession(cfg SessionConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = SessionCookieName
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultSessionConfig().MaxAge
	}

	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cfg.CookieName)
		if err != nil || !validSessionID(sessionID) {
			sessionID = uuid.New().String()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, sessionID, int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)

		c.Set(string(SessionIDKey), sessionID)
		c.Request = c.Request.WithContext(logger.ContextWithSessionID(c.Request.Context(), sessionID))
		c.Next()
	}
}

// GetSessionID returns the cart session id assigned by CartSession.
func GetSessionID(c *gin.Context) string {
	return contextString(c, SessionIDKey)
}

func validSessionID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
