package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit levels.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Audit action types recorded by the cart, admin and security paths.
const (
	ActionHTTPRequest    = "http_request"
	ActionBundleAdded    = "bundle_added"
	ActionBundleRejected = "bundle_rejected"
	ActionBundleRemoved  = "bundle_removed"
	ActionParentStripped = "parent_stripped"
	ActionOrderPlaced    = "order_placed"
	ActionBundleSaved    = "bundle_saved"
	ActionBundleDeleted  = "bundle_deleted"
	ActionProductSaved   = "admin_product_saved"
	ActionCSRFRejected   = "csrf_rejected"
)

const (
	defaultAuditQueryLimit = 50
	maxAuditQueryLimit     = 500
)

// LogEntry is one audit record: an HTTP request summary or a domain action
// such as a bundle added to a cart or a parent line stripped by the guard.
type LogEntry struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Timestamp  time.Time              `bson:"timestamp" json:"timestamp"`
	Level      string                 `bson:"level" json:"level"`
	Message    string                 `bson:"message" json:"message"`
	ActionType string                 `bson:"action_type,omitempty" json:"action_type,omitempty"`
	RequestID  string                 `bson:"request_id,omitempty" json:"request_id,omitempty"`
	SessionID  string                 `bson:"session_id,omitempty" json:"session_id,omitempty"`
	Actor      string                 `bson:"actor,omitempty" json:"actor,omitempty"`
	Method     string                 `bson:"method,omitempty" json:"method,omitempty"`
	Path       string                 `bson:"path,omitempty" json:"path,omitempty"`
	StatusCode int                    `bson:"status_code,omitempty" json:"status_code,omitempty"`
	Duration   int64                  `bson:"duration_ms,omitempty" json:"duration_ms,omitempty"`
	IP         string                 `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent  string                 `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Error      string                 `bson:"error,omitempty" json:"error,omitempty"`
	Fields     map[string]interface{} `bson:"fields,omitempty" json:"fields,omitempty"`
} // @name AuditEntry

// WithField sets key in Fields, allocating the map on first use.
func (e *LogEntry) WithField(key string, value interface{}) *LogEntry {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// Stamp fills the id and timestamp of an entry that has not been stored yet.
func (e *LogEntry) Stamp(now time.Time) {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now.UTC()
	}
	if e.Level == "" {
		e.Level = LevelInfo
	}
}

// LevelForStatus maps an HTTP status to the audit level of its request entry.
func LevelForStatus(status int) string {
	switch {
	case status >= 500:
		return LevelError
	case status >= 400:
		return LevelWarn
	default:
		return LevelInfo
	}
}

// LogQueryOptions filters audit entries. Zero fields do not filter.
type LogQueryOptions struct {
	RequestID  string
	SessionID  string
	ActionType string
	Level      string
	Method     string
	Path       string
	StartTime  *time.Time
	EndTime    *time.Time
	Limit      int
	Skip       int
}

// Normalized clamps Limit to (0, 500], defaulting to 50, and drops a negative Skip.
func (o LogQueryOptions) Normalized() LogQueryOptions {
	switch {
	case o.Limit <= 0:
		o.Limit = defaultAuditQueryLimit
	case o.Limit > maxAuditQueryLimit:
		o.Limit = maxAuditQueryLimit
	}
	if o.Skip < 0 {
		o.Skip = 0
	}
	return o
}
