// Package middleware provides the HTTP middleware of the bundle service.
package middleware

import "github.com/gin-gonic/gin"

// ContextKey names a value stored on the gin context.
type ContextKey string

const (
	// RequestIDKey is the gin context key for the request id.
	RequestIDKey ContextKey = "request_id"
	// SessionIDKey is the gin context key for the cart session id.
	SessionIDKey ContextKey = "session_id"
	// ActorKey is the gin context key for the admin actor.
	ActorKey ContextKey = "actor"
)

// contextString returns the string stored under key, or "" when unset or not a string.
func contextString(c *gin.Context, key ContextKey) string {
	v, ok := c.Get(string(key))
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
