package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/bundle-service/internal/i18n"
)

const (
	// APIKeyHeader carries the admin API key.
	APIKeyHeader = "X-API-Key"
	// APIKeyQuery is accepted when the header is absent.
	APIKeyQuery = "api_key"
	// ActorHeader names the operator recorded on admin audit entries.
	ActorHeader = "X-Actor"

	defaultActor  = "admin"
	maxActorBytes = 64
)

// APIKeyAuth guards the admin routes. An empty key set lets every request
// through; the routes are only mounted when keys are configured.
func APIKeyAuth(validKeys map[string]bool) gin.HandlerFunc {
	keys := make([][]byte, 0, len(validKeys))
	for key, enabled := range validKeys {
		if enabled && key != "" {
			keys = append(keys, []byte(key))
		}
	}

	return func(c *gin.Context) {
		if len(keys) > 0 {
			presented := c.GetHeader(APIKeyHeader)
			if presented == "" {
				presented = c.Query(APIKeyQuery)
			}
			if presented == "" {
				abortTranslated(c, http.StatusUnauthorized, i18n.ErrKeyAPIKeyRequired)
				return
			}
			if !matchesAny(keys, []byte(presented)) {
				abortTranslated(c, http.StatusUnauthorized, i18n.ErrKeyInvalidAPIKey)
				return
			}
		}

		c.Set(string(ActorKey), actorFromRequest(c))
		c.Next()
	}
}

// matchesAny compares against every key so timing does not reveal which one matched.
func matchesAny(keys [][]byte, presented []byte) bool {
	match := 0
	for _, key := range keys {
		match |= subtle.ConstantTimeCompare(key, presented)
	}
	return match == 1
}

// GetActor returns the operator set by APIKeyAuth, or "admin".
func GetActor(c *gin.Context) string {
	if actor := contextString(c, ActorKey); actor != "" {
		return actor
	}
	return defaultActor
}

func actorFromRequest(c *gin.Context) string {
	actor := strings.TrimSpace(c.GetHeader(ActorHeader))
	if actor == "" || len(actor) > maxActorBytes {
		return defaultActor
	}
	return actor
}
