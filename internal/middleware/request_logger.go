package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/guttosm/bundle-service/internal/logger"
	"github.com/guttosm/bundle-service/internal/service"
)

const requestLogMessage = "HTTP request"

// RequestLogger writes one structured line per request at a level derived from the status code.
// With a non-nil sink the same line is queued as an audit entry.
func RequestLogger(sink service.AuditSink) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		elapsed := time.Since(start).Milliseconds()
		status := c.Writer.Status()
		level := model.LevelForStatus(status)

		log := logger.FromContext(c.Request.Context())
		log.WithLevel(logger.ParseLevel(level)).
			Str("session_id", GetSessionID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Int("status_code", status).
			Int64("duration_ms", elapsed).
			Int("bytes", c.Writer.Size()).
			Str("ip", c.ClientIP()).
			Msg(requestLogMessage)

		if sink == nil {
			return
		}
		entry := newAuditEntry(c, level, model.ActionHTTPRequest, requestLogMessage, nil)
		entry.StatusCode = status
		entry.Duration = elapsed
		sink.Log(entry)
	}
}
