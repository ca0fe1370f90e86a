// Package cache provides a sharded LRU with per-entry expiry.
//
// Each shard is a github.com/hashicorp/golang-lru/v2 cache guarded by its own
// lock, so lookups for different keys rarely contend. Expired entries are
// removed lazily on read; capacity bounds everything else.
package cache

import (
	"hash/fnv"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/guttosm/bundle-service/internal/metrics"
)

const defaultShards = 16

// Stats are the counters since the last Clear.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	Capacity  int
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	name   string
	shards int
	now    func() time.Time
}

// WithName labels the cache in metrics.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithShards sets the shard count, rounded up to a power of two.
func WithShards(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.shards = n
		}
	}
}

// WithClock replaces time.Now for expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is safe for concurrent use. The zero value is not usable; call New.
type Cache[K comparable, V any] struct {
	name     string
	shards   []*lru.Cache[K, item[V]]
	mask     uint64
	hash     func(K) uint64
	ttl      time.Duration
	now      func() time.Time
	capacity int

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// New builds a cache holding about capacity entries for ttl each. A ttl of
// zero keeps entries until they are evicted.
func New[K comparable, V any](capacity int, ttl time.Duration, hash func(K) uint64, opts ...Option) *Cache[K, V] {
	o := options{name: "cache", shards: defaultShards, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	n := 1
	for n < o.shards {
		n <<= 1
	}
	perShard := capacity / n
	if perShard < 1 {
		perShard = 1
	}

	c := &Cache[K, V]{
		name:     o.name,
		shards:   make([]*lru.Cache[K, item[V]], n),
		mask:     uint64(n - 1),
		hash:     hash,
		ttl:      ttl,
		now:      o.now,
		capacity: perShard * n,
	}
	for i := range c.shards {
		// New only fails for a non-positive size.
		c.shards[i], _ = lru.New[K, item[V]](perShard)
	}
	return c
}

func (c *Cache[K, V]) shard(key K) *lru.Cache[K, item[V]] {
	return c.shards[c.hash(key)&c.mask]
}

// Get returns the value for key and marks it recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V
	s := c.shard(key)

	it, ok := s.Get(key)
	if !ok {
		c.misses.Add(1)
		metrics.RecordCacheOperation(c.name, "get", "miss")
		return zero, false
	}
	if c.ttl > 0 && !c.now().Before(it.expiresAt) {
		s.Remove(key)
		c.misses.Add(1)
		metrics.RecordCacheOperation(c.name, "get", "expired")
		return zero, false
	}

	c.hits.Add(1)
	metrics.RecordCacheOperation(c.name, "get", "hit")
	return it.value, true
}

// Set stores value under key, replacing any previous entry and its expiry.
func (c *Cache[K, V]) Set(key K, value V) {
	it := item[V]{value: value}
	if c.ttl > 0 {
		it.expiresAt = c.now().Add(c.ttl)
	}
	if c.shard(key).Add(key, it) {
		c.evictions.Add(1)
		metrics.RecordCacheOperation(c.name, "evict", "capacity")
	}
	metrics.RecordCacheOperation(c.name, "set", "success")
}

// Invalidate drops key if present.
func (c *Cache[K, V]) Invalidate(key K) {
	if c.shard(key).Remove(key) {
		metrics.RecordCacheOperation(c.name, "invalidate", "success")
	}
}

// Clear drops every entry and resets the counters.
func (c *Cache[K, V]) Clear() {
	for _, s := range c.shards {
		s.Purge()
	}
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
	metrics.RecordCacheOperation(c.name, "clear", "success")
}

// Len counts stored entries, including expired ones not yet read.
func (c *Cache[K, V]) Len() int {
	n := 0
	for _, s := range c.shards {
		n += s.Len()
	}
	return n
}

// Name is the metrics label given by WithName.
func (c *Cache[K, V]) Name() string {
	return c.name
}

func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.Len(),
		Capacity:  c.capacity,
	}
}

// Int64Key spreads integer ids over the shards.
func Int64Key(key int64) uint64 {
	h := fnv.New64a()
	var b [8]byte
	for i := range b {
		b[i] = byte(key >> (8 * i))
	}
	_, _ = h.Write(b[:])
	return h.Sum64()
}

// StringKey hashes a string key.
func StringKey(key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return h.Sum64()
}
