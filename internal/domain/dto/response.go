// Package dto holds the HTTP envelopes of the bundle service.
package dto

import (
	"net/http"
	"time"

	"github.com/guttosm/bundle-service/internal/domain/model"
)

// Error codes carried in ErrorResponse.Error.
const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeInternal       = "internal_error"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeForbidden      = "forbidden"
	ErrCodeNotFound       = "not_found"
	ErrCodeRateLimit      = "rate_limit_exceeded"
	ErrCodeConflict       = "conflict"
	ErrCodeTimeout        = "timeout"
	ErrCodeUnprocessable  = "unprocessable_entity"
	ErrCodeUnavailable    = "service_unavailable"
)

var statusErrorCodes = map[int]string{
	http.StatusBadRequest:          ErrCodeInvalidRequest,
	http.StatusUnauthorized:        ErrCodeUnauthorized,
	http.StatusForbidden:           ErrCodeForbidden,
	http.StatusNotFound:            ErrCodeNotFound,
	http.StatusRequestTimeout:      ErrCodeTimeout,
	http.StatusConflict:            ErrCodeConflict,
	http.StatusUnprocessableEntity: ErrCodeUnprocessable,
	http.StatusTooManyRequests:     ErrCodeRateLimit,
	http.StatusServiceUnavailable:  ErrCodeUnavailable,
	http.StatusGatewayTimeout:      ErrCodeTimeout,
}

// ErrCodeFromStatus maps an HTTP status to its error code; unmapped statuses are internal errors.
func ErrCodeFromStatus(status int) string {
	if code, ok := statusErrorCodes[status]; ok {
		return code
	}
	return ErrCodeInternal
}

// SuccessResponse wraps successful API responses.
// @Description Successful API response wrapper
type SuccessResponse struct {
	// Data is the payload, e.g. a CartView for cart endpoints
	Data      interface{} `json:"data" swaggertype:"object"`
	RequestID string      `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time   `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name SuccessResponse

// ErrorResponse is the body of every non-2xx API response.
// @Description Standardized error response
type ErrorResponse struct {
	Error   string `json:"error" example:"unprocessable_entity"`
	Message string `json:"message,omitempty" example:"Please choose a size for every item of the bundle"`
	// Details names what was rejected, e.g. {"slot": "top"}
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time         `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name ErrorResponse

// NewError creates an ErrorResponse stamped with the current time.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{Error: code, Message: message, Timestamp: time.Now()}
}

// WithRequestID returns a copy carrying requestID.
func (e ErrorResponse) WithRequestID(requestID string) ErrorResponse {
	e.RequestID = requestID
	return e
}

// WithDetail returns a copy with key set in Details. The receiver's map is not modified.
func (e ErrorResponse) WithDetail(key, value string) ErrorResponse {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

// CSRFTokenResponse carries a form token for bundle submissions.
// @Description Form token bound to the cart session
type CSRFTokenResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	// ExpiresIn is the token lifetime in seconds
	ExpiresIn int64 `json:"expires_in" example:"43200"`
} // @name CSRFTokenResponse

// OrderResponse is a placed order with its per-bundle display totals.
// @Description Placed order with bundle group summaries
type OrderResponse struct {
	Order  *model.Order         `json:"order"`
	Groups []model.GroupSummary `json:"groups"`
} // @name OrderResponse
