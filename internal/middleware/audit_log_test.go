package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/bundle-service/internal/domain/model"
)

// captureSink collects audit entries in memory.
type captureSink struct {
	mu      sync.Mutex
	entries []*model.LogEntry
}

func (s *captureSink) Log(entry *model.LogEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return true
}

func (s *captureSink) all() []*model.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.LogEntry(nil), s.entries...)
}

func TestAuditLog(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		withActor bool
		err       error
		validate  func(*testing.T, *model.LogEntry)
	}{
		{
			name: "info entry carries request and session ids",
			validate: func(t *testing.T, e *model.LogEntry) {
				assert.Equal(t, model.LevelInfo, e.Level)
				assert.Equal(t, "req-1", e.RequestID)
				assert.Equal(t, "sess-1", e.SessionID)
				assert.Equal(t, http.MethodPost, e.Method)
				assert.Equal(t, "/api/cart/bundle", e.Path)
				assert.Equal(t, model.ActionBundleAdded, e.ActionType)
				assert.Equal(t, time.UTC, e.Timestamp.Location())
				assert.Empty(t, e.Actor)
				assert.Equal(t, 100, e.Fields["bundle_id"])
			},
		},
		{
			name:      "admin actor is recorded",
			withActor: true,
			validate: func(t *testing.T, e *model.LogEntry) {
				assert.Equal(t, "merchandiser", e.Actor)
			},
		},
		{
			name: "error entry carries the error text",
			err:  errors.New("token expired"),
			validate: func(t *testing.T, e *model.LogEntry) {
				assert.Equal(t, model.LevelError, e.Level)
				assert.Equal(t, "token expired", e.Error)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &captureSink{}
			router := gin.New()
			router.POST("/api/cart/bundle", func(c *gin.Context) {
				c.Set(string(RequestIDKey), "req-1")
				c.Set(string(SessionIDKey), "sess-1")
				if tt.withActor {
					c.Set(string(ActorKey), "merchandiser")
				}
				fields := map[string]interface{}{"bundle_id": 100}
				if tt.err != nil {
					AuditLogError(sink, c, model.ActionCSRFRejected, "Form token rejected", tt.err, fields)
				} else {
					AuditLog(sink, c, model.ActionBundleAdded, "Bundle added", fields)
				}
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/cart/bundle", nil)
			router.ServeHTTP(httptest.NewRecorder(), req)

			entries := sink.all()
			require.Len(t, entries, 1)
			tt.validate(t, entries[0])
		})
	}
}

func TestAuditLog_NilSink(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	assert.NotPanics(t, func() {
		AuditLog(nil, c, "noop", "noop", nil)
		AuditLogError(nil, c, "noop", "noop", errors.New("x"), nil)
	})
}
