package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/bundle-service/internal/i18n"
	"github.com/guttosm/bundle-service/internal/logger"
	"github.com/guttosm/bundle-service/internal/metrics"
)

// RateLimiter allows at most limit requests per identifier in each window.
type RateLimiter struct {
	store  RateStore
	limit  int
	window time.Duration
	scope  string
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateStore replaces the in-process store, e.g. with a redis store shared by replicas.
func WithRateStore(store RateStore) RateLimiterOption {
	return func(rl *RateLimiter) {
		if store != nil {
			rl.store = store
		}
	}
}

// WithRateScope namespaces the counters so limiters sharing a store stay independent.
func WithRateScope(scope string) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.scope = scope
	}
}

// NewRateLimiter creates a fixed window limiter backed by a MemoryRateStore by default.
func NewRateLimiter(limit int, window time.Duration, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limit:  limit,
		window: window,
		scope:  "global",
	}
	for _, opt := range opts {
		opt(rl)
	}
	if rl.store == nil {
		rl.store = NewMemoryRateStore()
	}
	return rl
}

// RateLimit limits requests per client IP.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return rl.handler(func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	})
}

// SessionRateLimit limits requests per cart session, or per IP before a session exists.
func (rl *RateLimiter) SessionRateLimit() gin.HandlerFunc {
	return rl.handler(func(c *gin.Context) string {
		if sessionID := GetSessionID(c); sessionID != "" {
			return "session:" + sessionID
		}
		return "ip:" + c.ClientIP()
	})
}

func (rl *RateLimiter) handler(identify func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.scope + ":" + identify(c)
		count, resetIn, err := rl.store.Hit(c.Request.Context(), key, rl.window)
		if err != nil {
			// the store being down must not take the storefront with it
			log := logger.FromContext(c.Request.Context())
			log.Warn().Err(err).Str("key", key).Msg("Rate store unavailable, allowing request")
			c.Next()
			return
		}

		remaining := int64(rl.limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(rl.limit) {
			retryAfter := strconv.Itoa(retryAfterSeconds(resetIn))
			c.Header("Retry-After", retryAfter)
			metrics.RecordRateLimited(rl.scope)
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				translatedError(c, http.StatusTooManyRequests, i18n.ErrKeyRateLimitExceeded).WithDetail("retry_after", retryAfter))
			return
		}
		c.Next()
	}
}

func retryAfterSeconds(resetIn time.Duration) int {
	secs := int(math.Ceil(resetIn.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
