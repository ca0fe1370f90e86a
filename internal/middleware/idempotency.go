package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/bundle-service/internal/logger"
	"github.com/guttosm/bundle-service/internal/metrics"
	"github.com/guttosm/bundle-service/internal/repository"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the store.
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
	// IdempotencyKeyTTL is how long a response can be replayed.
	IdempotencyKeyTTL = 5 * time.Minute

	idempotencyMemoryCapacity = 10000
)

// Headers owned by outer middleware. They are regenerated, not replayed.
var skipReplayHeaders = canonicalSet(
	"Content-Type",
	"Content-Encoding",
	"Content-Length",
	"Vary",
	"Set-Cookie",
	RequestIDHeader,
)

func canonicalSet(keys ...string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[http.CanonicalHeaderKey(k)] = true
	}
	return set
}

// IdempotencyConfig configures the Idempotency middleware.
type IdempotencyConfig struct {
	Store   repository.IdempotencyStore
	Enabled bool
}

// DefaultIdempotencyConfig keeps responses in process memory.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		Store:   repository.NewMemoryIdempotencyStore(idempotencyMemoryCapacity, IdempotencyKeyTTL),
		Enabled: true,
	}
}

// Idempotency replays the stored response of a repeated Idempotency-Key request,
// so a double submitted add-to-cart or checkout runs once. The fingerprint covers
// the cart session, so one visitor never sees another's response. Only 2xx
// responses are stored; a rejected request can be retried with the same key.
// Store errors are logged and the request runs normally.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.Store == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || !mutatingMethod(c.Request.Method) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		fp := requestFingerprint(key, GetSessionID(c), c.Request)

		stored, err := cfg.Store.Get(ctx, fp)
		if err != nil {
			log.Warn().Err(err).Msg("Idempotency store read failed")
		}
		if stored != nil {
			replay(c, stored)
			return
		}

		rec := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status < 200 || status >= 300 {
			return
		}
		resp := &repository.StoredResponse{
			StatusCode:  status,
			ContentType: rec.Header().Get("Content-Type"),
			Headers:     replayableHeaders(rec.Header()),
			Body:        rec.body.Bytes(),
		}
		if err := cfg.Store.Put(ctx, fp, resp); err != nil {
			log.Warn().Err(err).Msg("Idempotency store write failed")
		}
	}
}

func mutatingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

func replay(c *gin.Context, stored *repository.StoredResponse) {
	for k, v := range stored.Headers {
		c.Header(k, v)
	}
	c.Header(IdempotencyReplayedHeader, "true")
	metrics.RecordIdempotentReplay()
	c.Data(stored.StatusCode, stored.ContentType, stored.Body)
	c.Abort()
}

func replayableHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 && !skipReplayHeaders[k] {
			out[k] = v[0]
		}
	}
	return out
}

// requestFingerprint hashes the key with the session, route and body.
// The body is restored for the handler.
func requestFingerprint(key, sessionID string, req *http.Request) string {
	h := sha256.New()
	for _, part := range []string{key, sessionID, req.Method, req.URL.Path} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	if req.Body != nil {
		body, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(body))
		h.Write(body)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// recordingWriter tees the response body.
type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
