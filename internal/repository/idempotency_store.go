package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guttosm/bundle-service/internal/cache"
)

const idempotencyPrefix = "idempotency"

// StoredResponse is a captured 2xx response replayed for a repeated Idempotency-Key.
type StoredResponse struct {
	StatusCode  int               `json:"status"`
	ContentType string            `json:"content_type,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        []byte            `json:"body"`
}

// IdempotencyStore keeps replayable responses by request fingerprint.
// Get returns nil, nil on a miss.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*StoredResponse, error)
	Put(ctx context.Context, key string, resp *StoredResponse) error
}

// MemoryIdempotencyStore keeps responses in a bounded in-process LRU.
type MemoryIdempotencyStore struct {
	entries *cache.Cache[string, *StoredResponse]
}

// NewMemoryIdempotencyStore holds up to capacity responses for ttl each.
func NewMemoryIdempotencyStore(capacity int, ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		entries: cache.New[string, *StoredResponse](capacity, ttl, cache.StringKey, cache.WithName("idempotency")),
	}
}

func (s *MemoryIdempotencyStore) Get(_ context.Context, key string) (*StoredResponse, error) {
	resp, ok := s.entries.Get(key)
	if !ok {
		return nil, nil
	}
	return resp, nil
}

// Put keeps the first response stored under key.
func (s *MemoryIdempotencyStore) Put(_ context.Context, key string, resp *StoredResponse) error {
	if _, ok := s.entries.Get(key); ok {
		return nil
	}
	s.entries.Set(key, resp)
	return nil
}

// Len counts stored responses.
func (s *MemoryIdempotencyStore) Len() int {
	return s.entries.Len()
}

// idempotencyCmdable is the subset of the redis client used by RedisIdempotencyStore.
type idempotencyCmdable interface {
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
}

// RedisIdempotencyStore shares replayable responses between instances.
type RedisIdempotencyStore struct {
	client idempotencyCmdable
	ttl    time.Duration
}

// NewRedisIdempotencyStore stores responses in redis for ttl.
func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	s := &RedisIdempotencyStore{ttl: ttl}
	if client != nil {
		s.client = client
	}
	return s
}

// IdempotencyKey returns the namespaced redis key of a request fingerprint.
func IdempotencyKey(fingerprint string) string {
	return strings.Join([]string{keyNamespace, idempotencyPrefix, fingerprint}, ":")
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*StoredResponse, error) {
	if s.client == nil {
		return nil, ErrCartStoreUnavailable
	}
	raw, err := s.client.Get(ctx, IdempotencyKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var resp StoredResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode stored response: %w", err)
	}
	return &resp, nil
}

// Put stores resp unless another instance already stored a response for key.
func (s *RedisIdempotencyStore) Put(ctx context.Context, key string, resp *StoredResponse) error {
	if s.client == nil {
		return ErrCartStoreUnavailable
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode stored response: %w", err)
	}
	return s.client.SetNX(ctx, IdempotencyKey(key), raw, s.ttl).Err()
}

var (
	_ IdempotencyStore = (*MemoryIdempotencyStore)(nil)
	_ IdempotencyStore = (*RedisIdempotencyStore)(nil)
)
