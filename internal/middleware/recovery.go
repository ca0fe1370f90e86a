package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/bundle-service/internal/i18n"
	"github.com/guttosm/bundle-service/internal/logger"
)

// Recovery turns a handler panic into a localized 500.
// Session locks held by the cart service are released by its deferred unlocks.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			log := logger.FromContext(c.Request.Context())
			log.Error().
				Interface("panic", recovered).
				Str("route", c.FullPath()).
				Str("method", c.Request.Method).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from handler panic")

			abortTranslated(c, http.StatusInternalServerError, i18n.ErrKeyInternalError)
		}()
		c.Next()
	}
}
