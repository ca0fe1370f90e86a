package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace = "bundle"
	cartPrefix   = "cart"
)

// ErrCartStoreUnavailable is returned when no cart backend is configured.
var ErrCartStoreUnavailable = errors.New("cart store not initialized")

// cmdable is the subset of the redis client used by the cart store.
type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RedisOptions configures the redis connection.
type RedisOptions struct {
	URL      string
	Address  string
	Password string
	DB       int
}

// NewRedisClient builds a redis client and verifies connectivity.
func NewRedisClient(ctx context.Context, cfg RedisOptions) (*redis.Client, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisCartStore keeps session carts as JSON documents with a sliding TTL.
type RedisCartStore struct {
	store cmdable
	ttl   time.Duration
}

// NewRedisCartStore creates a cart store backed by redis.
func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{store: client, ttl: ttl}
}

// CartKey returns the namespaced key of a session cart.
func CartKey(sessionID string) string {
	return strings.Join([]string{keyNamespace, cartPrefix, sessionID}, ":")
}

// Load returns the session cart, or an empty cart when none is stored.
func (s *RedisCartStore) Load(ctx context.Context, sessionID string) (*model.Cart, error) {
	if s.store == nil {
		return nil, ErrCartStoreUnavailable
	}
	raw, err := s.store.Get(ctx, CartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.NewCart(sessionID), nil
	}
	if err != nil {
		return nil, err
	}

	var cart model.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}
	cart.SessionID = sessionID
	if cart.Lines == nil {
		cart.Lines = []model.CartLine{}
	}
	return &cart, nil
}

// Save stores the cart and refreshes its TTL.
func (s *RedisCartStore) Save(ctx context.Context, cart *model.Cart) error {
	if s.store == nil {
		return ErrCartStoreUnavailable
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", cart.SessionID, err)
	}
	return s.store.Set(ctx, CartKey(cart.SessionID), raw, s.ttl).Err()
}

// Delete removes the session cart.
func (s *RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	if s.store == nil {
		return ErrCartStoreUnavailable
	}
	return s.store.Del(ctx, CartKey(sessionID)).Err()
}

// HealthCheck pings redis.
func (s *RedisCartStore) HealthCheck(ctx context.Context) error {
	if s.store == nil {
		return ErrCartStoreUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.store.Ping(ctx).Err()
}
