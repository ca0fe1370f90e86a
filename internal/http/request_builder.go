package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/bundle-service/internal/domain/dto"
	"github.com/guttosm/bundle-service/internal/i18n"
	"github.com/guttosm/bundle-service/internal/middleware"
)

// envelopePool recycles response envelopes. Gin serializes synchronously,
// so an envelope can be reset and returned as soon as c.JSON returns.
type envelopePool[T any] struct {
	pool  sync.Pool
	reset func(*T)
}

func newEnvelopePool[T any](reset func(*T)) *envelopePool[T] {
	return &envelopePool[T]{
		pool:  sync.Pool{New: func() interface{} { return new(T) }},
		reset: reset,
	}
}

func (p *envelopePool[T]) get() *T {
	if v, ok := p.pool.Get().(*T); ok {
		return v
	}
	return new(T)
}

func (p *envelopePool[T]) put(v *T) {
	p.reset(v)
	p.pool.Put(v)
}

var (
	successEnvelopes = newEnvelopePool(func(r *dto.SuccessResponse) { *r = dto.SuccessResponse{} })
	errorEnvelopes   = newEnvelopePool(func(r *dto.ErrorResponse) { *r = dto.ErrorResponse{} })
)

// Validator is implemented by request bodies that check themselves after binding.
type Validator interface {
	Validate() error
}

// BindJSON decodes the JSON body into a new T, applies the binding tags and
// then T's own Validate when it has one.
func BindJSON[T any](c *gin.Context) (*T, error) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	if err := selfValidate(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// BindQuery decodes the query string into a new T the same way BindJSON decodes bodies.
func BindQuery[T any](c *gin.Context) (*T, error) {
	var req T
	if err := c.ShouldBindQuery(&req); err != nil {
		return nil, err
	}
	if err := selfValidate(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func selfValidate(req any) error {
	if v, ok := req.(Validator); ok {
		return v.Validate()
	}
	return nil
}

// ResponseBuilder writes the success and error envelopes.
type ResponseBuilder struct {
	c *gin.Context
}

// NewResponseBuilder creates a new response builder for the given context.
func NewResponseBuilder(c *gin.Context) *ResponseBuilder {
	return &ResponseBuilder{c: c}
}

// Success wraps data in a SuccessResponse.
func (b *ResponseBuilder) Success(statusCode int, data interface{}) {
	resp := successEnvelopes.get()
	defer successEnvelopes.put(resp)

	resp.Data = data
	resp.RequestID = middleware.GetRequestID(b.c)
	resp.Timestamp = time.Now()
	b.c.JSON(statusCode, resp)
}

// SuccessOK sends a 200 OK response with the given data.
func (b *ResponseBuilder) SuccessOK(data interface{}) {
	b.Success(http.StatusOK, data)
}

// SuccessCreated sends a 201 Created response with the given data.
func (b *ResponseBuilder) SuccessCreated(data interface{}) {
	b.Success(http.StatusCreated, data)
}

// Error aborts with a translated message for messageKey.
func (b *ResponseBuilder) Error(statusCode int, messageKey string, err error) {
	b.ErrorWithDetails(statusCode, messageKey, err, nil)
}

// ErrorWithDetails aborts with a translated message and extra detail fields,
// such as the slot a bundle submission was rejected on.
// err is attached to the gin context for the error handler to log.
func (b *ResponseBuilder) ErrorWithDetails(statusCode int, messageKey string, err error, details map[string]string) {
	resp := errorEnvelopes.get()
	defer errorEnvelopes.put(resp)

	resp.Error = dto.ErrCodeFromStatus(statusCode)
	resp.Message = i18n.GetTranslator().Translate(messageKey, i18n.GetLocale(b.c))
	resp.Details = details
	resp.RequestID = middleware.GetRequestID(b.c)
	resp.Timestamp = time.Now()

	if err != nil {
		_ = b.c.Error(err)
	}
	b.c.AbortWithStatusJSON(statusCode, resp)
}
