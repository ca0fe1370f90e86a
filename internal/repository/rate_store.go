package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const ratePrefix = "ratelimit"

// fixedWindowScript increments the window counter and starts its expiry on the first hit.
// It returns the count and the remaining window in milliseconds.
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {count, redis.call("PTTL", KEYS[1])}
`)

// RedisRateStore counts rate limit hits in redis so every replica shares one window.
type RedisRateStore struct {
	client redis.Scripter
}

// NewRedisRateStore creates a rate store on the given redis client.
func NewRedisRateStore(client redis.Scripter) *RedisRateStore {
	return &RedisRateStore{client: client}
}

// RateKey returns the namespaced redis key of a rate limit counter.
func RateKey(key string) string {
	return strings.Join([]string{keyNamespace, ratePrefix, key}, ":")
}

// Hit records one request for key and returns the count inside the current window.
func (s *RedisRateStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if s.client == nil {
		return 0, 0, ErrCartStoreUnavailable
	}
	res, err := fixedWindowScript.Run(ctx, s.client, []string{RateKey(key)}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("rate window %s: %w", key, err)
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate window %s: unexpected reply %v", key, res)
	}

	resetIn := time.Duration(res[1]) * time.Millisecond
	if resetIn <= 0 {
		resetIn = window
	}
	return res[0], resetIn, nil
}
