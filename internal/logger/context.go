package logger

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	sessionIDKey contextKey = "session_id"
)

// ContextWithRequestID stores the request id on ctx.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ContextWithSessionID stores the cart session id on ctx.
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// RequestIDFromContext returns the request id stored on ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// SessionIDFromContext returns the cart session id stored on ctx, if any.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// FromContext returns the global logger enriched with the request and session ids on ctx.
func FromContext(ctx context.Context) zerolog.Logger {
	l := log.Logger.With()
	if id := RequestIDFromContext(ctx); id != "" {
		l = l.Str("request_id", id)
	}
	if id := SessionIDFromContext(ctx); id != "" {
		l = l.Str("session_id", id)
	}
	return l.Logger()
}
