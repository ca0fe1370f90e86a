package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/bundle-service/internal/circuitbreaker"
	"github.com/guttosm/bundle-service/internal/i18n"
	"github.com/guttosm/bundle-service/internal/logger"
	"github.com/guttosm/bundle-service/internal/repository"
)

// ErrorHandler turns errors recorded with c.Error into a localized body.
// A handler that already wrote its response keeps it; the error is only logged.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		last := c.Errors.Last()
		written := c.Writer.Written()
		log := logger.FromContext(c.Request.Context())
		log.Error().
			Err(last.Err).
			Int("errors", len(c.Errors)).
			Str("route", c.FullPath()).
			Str("method", c.Request.Method).
			Bool("written", written).
			Msg("Handler recorded an error")

		if written {
			return
		}
		status, key := classifyError(last.Err)
		c.JSON(status, translatedError(c, status, key))
	}
}

// classifyError maps store and transport failures. Domain errors are mapped
// by the handlers before they reach this point.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitOpen),
		errors.Is(err, repository.ErrCartStoreUnavailable):
		return http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, i18n.ErrKeyTimeout
	default:
		return http.StatusInternalServerError, i18n.ErrKeyInternalError
	}
}
