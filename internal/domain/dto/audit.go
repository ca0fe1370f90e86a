package dto

import (
	"time"

	"github.com/guttosm/bundle-service/internal/domain/model"
)

// AuditQuery is the query string of the admin audit search.
// @Description Audit log search filters
type AuditQuery struct {
	RequestID  string    `form:"request_id" binding:"omitempty,max=128"`
	SessionID  string    `form:"session_id" binding:"omitempty,uuid"`
	ActionType string    `form:"action_type" binding:"omitempty,max=64"`
	Level      string    `form:"level" binding:"omitempty,oneof=info warn error"`
	Path       string    `form:"path" binding:"omitempty,max=256"`
	Since      time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Until      time.Time `form:"until" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit      int       `form:"limit" binding:"omitempty,min=1,max=500"`
	Skip       int       `form:"skip" binding:"omitempty,min=0"`
}

// Validate rejects an inverted time window.
func (q *AuditQuery) Validate() error {
	if !q.Since.IsZero() && !q.Until.IsZero() && q.Until.Before(q.Since) {
		return &ValidationError{Field: "until", Message: "must not be before since"}
	}
	return nil
}

// ToOptions converts the query to repository filters.
func (q *AuditQuery) ToOptions() model.LogQueryOptions {
	opts := model.LogQueryOptions{
		RequestID:  q.RequestID,
		SessionID:  q.SessionID,
		ActionType: q.ActionType,
		Level:      q.Level,
		Path:       q.Path,
		Limit:      q.Limit,
		Skip:       q.Skip,
	}
	if !q.Since.IsZero() {
		since := q.Since.UTC()
		opts.StartTime = &since
	}
	if !q.Until.IsZero() {
		until := q.Until.UTC()
		opts.EndTime = &until
	}
	return opts
}
