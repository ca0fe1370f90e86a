//go:build integration

// Package testutil starts the MongoDB and Redis containers used by the
// integration tests.
package testutil

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const (
	mongoImage = "mongo:7.0"
	redisImage = "redis:7-alpine"
)

// container terminates the wrapped testcontainer once.
type container struct {
	testcontainers.Container
}

// Cleanup terminates the container. It is safe on a zero value.
func (c *container) Cleanup(ctx context.Context) error {
	if c.Container == nil {
		return nil
	}
	err := c.Terminate(ctx)
	c.Container = nil
	if err != nil {
		return fmt.Errorf("terminating container: %w", err)
	}
	return nil
}

// MongoDBContainer is a throwaway MongoDB server.
type MongoDBContainer struct {
	container
	URI string
}

// SetupMongoDB starts a dedicated MongoDB container. Packages with many
// integration tests share one through RunShared instead.
func SetupMongoDB(ctx context.Context) (*MongoDBContainer, error) {
	c, err := mongodb.Run(ctx, mongoImage)
	if err != nil {
		return nil, fmt.Errorf("starting MongoDB container: %w", err)
	}
	uri, err := c.ConnectionString(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("reading MongoDB connection string: %w", err)
	}
	return &MongoDBContainer{container: container{c}, URI: uri}, nil
}

// RedisContainer is a throwaway Redis server for the cart, rate and idempotency stores.
type RedisContainer struct {
	container
	// Address is host:port, as expected by redis.Options.Addr.
	Address string
}

func SetupRedis(ctx context.Context) (*RedisContainer, error) {
	c, err := tcredis.Run(ctx, redisImage)
	if err != nil {
		return nil, fmt.Errorf("starting Redis container: %w", err)
	}
	addr, err := c.Endpoint(ctx, "")
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("reading Redis endpoint: %w", err)
	}
	return &RedisContainer{container: container{c}, Address: addr}, nil
}
