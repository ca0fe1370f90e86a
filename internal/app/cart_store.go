// Package app provides cart store initialization.
package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/guttosm/bundle-service/config"
	"github.com/guttosm/bundle-service/internal/repository"
)

// CartStoreComponents holds the session cart store.
type CartStoreComponents struct {
	Store  repository.CartStore
	Client *redis.Client
}

// Close releases the Redis connection pool.
func (c *CartStoreComponents) Close() {
	if c == nil || c.Client == nil {
		return
	}
	if err := c.Client.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close Redis client")
	}
}

// InitializeCartStore connects the Redis cart store.
// Without Redis, or when it cannot be reached, carts are kept in process memory.
func InitializeCartStore(cfg config.RedisConfig) *CartStoreComponents {
	if !cfg.Enabled {
		log.Info().Msg("Redis disabled - carts are kept in memory")
		return &CartStoreComponents{Store: repository.NewMemoryCartStore()}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := repository.NewRedisClient(ctx, repository.RedisOptions{
		URL:      cfg.URL,
		Address:  cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to Redis - carts are kept in memory")
		return &CartStoreComponents{Store: repository.NewMemoryCartStore()}
	}

	log.Info().Dur("cart_ttl", cfg.CartTTL).Msg("Connected to Redis")
	return &CartStoreComponents{
		Store:  repository.NewRedisCartStore(client, cfg.CartTTL),
		Client: client,
	}
}
