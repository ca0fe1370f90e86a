// Package app provides database initialization and setup.
package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/bundle-service/config"
	"github.com/guttosm/bundle-service/internal/circuitbreaker"
	"github.com/guttosm/bundle-service/internal/repository"
	"github.com/guttosm/bundle-service/internal/service"
)

// DatabaseComponents holds database-related components.
type DatabaseComponents struct {
	DB                    *repository.MongoDB
	BundleRepo            repository.BundleRepositoryInterface
	ProductRepo           repository.ProductRepositoryInterface
	OrderRepo             repository.OrderRepositoryInterface
	LoggingService        service.LoggingService
	BundlesCircuitBreaker *circuitbreaker.CircuitBreaker
	CatalogCircuitBreaker *circuitbreaker.CircuitBreaker
	OrdersCircuitBreaker  *circuitbreaker.CircuitBreaker
	LogsCircuitBreaker    *circuitbreaker.CircuitBreaker
}

// Close disconnects from MongoDB.
func (d *DatabaseComponents) Close() {
	if d == nil || d.DB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.DB.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to disconnect from MongoDB")
	}
}

// Breakers names each collection breaker for the readiness probe.
func (d *DatabaseComponents) Breakers() map[string]*circuitbreaker.CircuitBreaker {
	if d == nil {
		return nil
	}
	return map[string]*circuitbreaker.CircuitBreaker{
		"mongodb_bundles": d.BundlesCircuitBreaker,
		"mongodb_catalog": d.CatalogCircuitBreaker,
		"mongodb_orders":  d.OrdersCircuitBreaker,
		"mongodb_logs":    d.LogsCircuitBreaker,
	}
}

// InitializeDatabase initializes MongoDB connection and creates required repositories and services.
// Returns nil if database is disabled or connection fails.
func InitializeDatabase(cfg config.DatabaseConfig) *DatabaseComponents {
	if !cfg.Enabled {
		return nil
	}

	db, err := repository.NewMongoDB(cfg.URI, cfg.DatabaseName)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to MongoDB - continuing with in-memory stores")
		return nil
	}

	log.Info().Str("database", cfg.DatabaseName).Msg("Connected to MongoDB")

	if err := db.SetLogsTTL(context.Background(), cfg.LogsTTL); err != nil {
		log.Warn().Err(err).Msg("Failed to set logs TTL index (may already exist)")
	}

	bundlesCB := newCircuitBreaker(cfg, "mongodb-bundles")
	catalogCB := newCircuitBreaker(cfg, "mongodb-catalog")
	ordersCB := newCircuitBreaker(cfg, "mongodb-orders")
	logsCB := newCircuitBreaker(cfg, "mongodb-logs")

	logsRepo := repository.NewLogsRepositoryWithCircuitBreaker(repository.NewLogsRepository(db), logsCB)

	return &DatabaseComponents{
		DB:                    db,
		BundleRepo:            repository.NewBundleRepositoryWithCircuitBreaker(repository.NewBundleRepository(db), bundlesCB),
		ProductRepo:           repository.NewProductRepositoryWithCircuitBreaker(repository.NewProductRepository(db), catalogCB),
		OrderRepo:             repository.NewOrderRepositoryWithCircuitBreaker(repository.NewOrderRepository(db), ordersCB),
		LoggingService:        service.NewLoggingService(logsRepo),
		BundlesCircuitBreaker: bundlesCB,
		CatalogCircuitBreaker: catalogCB,
		OrdersCircuitBreaker:  ordersCB,
		LogsCircuitBreaker:    logsCB,
	}
}

func newCircuitBreaker(cfg config.DatabaseConfig, name string) *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.CircuitBreakerTimeout,
		Name:             name,
	})
}
