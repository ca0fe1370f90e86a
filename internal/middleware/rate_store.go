package middleware

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const (
	rateStoreShards = 16
	// each shard sweeps expired windows once per this many hits
	rateSweepEvery = 1024
)

// RateStore counts hits per key inside fixed windows.
// Hit returns the count including this hit and the time until the window resets.
type RateStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type rateWindow struct {
	count   int64
	resetAt time.Time
}

type rateShard struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	hits    uint32
}

// MemoryRateStore is a process-local RateStore split into locked shards.
// Expired windows are swept lazily while hits arrive, so it needs no goroutine.
type MemoryRateStore struct {
	shards [rateStoreShards]rateShard
	now    func() time.Time
}

// NewMemoryRateStore creates an empty in-process rate store.
func NewMemoryRateStore() *MemoryRateStore {
	s := &MemoryRateStore{now: time.Now}
	for i := range s.shards {
		s.shards[i].windows = make(map[string]*rateWindow)
	}
	return s
}

// Hit implements RateStore.
func (s *MemoryRateStore) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	shard := s.shardFor(key)
	now := s.now()

	shard.mu.Lock()
	defer shard.mu.Unlock()

	shard.hits++
	if shard.hits%rateSweepEvery == 0 {
		shard.sweep(now)
	}

	w, ok := shard.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &rateWindow{resetAt: now.Add(window)}
		shard.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt.Sub(now), nil
}

// Len reports how many windows are currently tracked.
func (s *MemoryRateStore) Len() int {
	total := 0
	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.Lock()
		total += len(shard.windows)
		shard.mu.Unlock()
	}
	return total
}

func (s *MemoryRateStore) shardFor(key string) *rateShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.shards[h.Sum32()%rateStoreShards]
}

func (sh *rateShard) sweep(now time.Time) {
	for key, w := range sh.windows {
		if !now.Before(w.resetAt) {
			delete(sh.windows, key)
		}
	}
}
