package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/guttosm/bundle-service/internal/service"
)

// AuditLog records a request-level action, such as a rejected form token or an admin change.
// Entries go through the sink's worker pool and never block the request.
func AuditLog(sink service.AuditSink, c *gin.Context, actionType string, message string, fields map[string]interface{}) {
	if sink == nil {
		return
	}
	sink.Log(newAuditEntry(c, model.LevelInfo, actionType, message, fields))
}

// AuditLogError records a failed request-level action.
func AuditLogError(sink service.AuditSink, c *gin.Context, actionType string, message string, err error, fields map[string]interface{}) {
	if sink == nil {
		return
	}
	entry := newAuditEntry(c, model.LevelError, actionType, message, fields)
	if err != nil {
		entry.Error = err.Error()
	}
	sink.Log(entry)
}

func newAuditEntry(c *gin.Context, level, actionType, message string, fields map[string]interface{}) *model.LogEntry {
	return &model.LogEntry{
		Timestamp:  time.Now().UTC(),
		Level:      level,
		Message:    message,
		RequestID:  GetRequestID(c),
		SessionID:  GetSessionID(c),
		Method:     c.Request.Method,
		Path:       c.Request.URL.Path,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		ActionType: actionType,
		Actor:      contextString(c, ActorKey),
		Fields:     fields,
	}
}
