package repository

import (
	"context"

	"github.com/guttosm/bundle-service/internal/domain/model"
)

// BundleRepositoryInterface defines the interface for bundle definition storage.
// Get returns nil, nil when the product is not a bundle.
type BundleRepositoryInterface interface {
	Get(ctx context.Context, bundleID int64) (*model.BundleDefinition, error)
	Upsert(ctx context.Context, def *model.BundleDefinition) (*model.BundleDefinition, error)
	List(ctx context.Context, limit int) ([]model.BundleDefinition, error)
	Delete(ctx context.Context, bundleID int64) error
}

// ProductRepositoryInterface defines the interface for catalog storage.
// Get returns nil, nil when the product does not exist.
type ProductRepositoryInterface interface {
	Get(ctx context.Context, id int64) (*model.Product, error)
	Upsert(ctx context.Context, p *model.Product) error
}

// OrderRepositoryInterface defines the interface for order storage.
type OrderRepositoryInterface interface {
	Create(ctx context.Context, order *model.Order) error
	Get(ctx context.Context, id string) (*model.Order, error)
}

// CartStore defines session cart persistence.
// Load returns an empty cart when the session has none.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (*model.Cart, error)
	Save(ctx context.Context, cart *model.Cart) error
	Delete(ctx context.Context, sessionID string) error
	HealthCheck(ctx context.Context) error
}

// LogsRepositoryInterface defines audit entry storage.
type LogsRepositoryInterface interface {
	Create(ctx context.Context, entry *model.LogEntry) error
	CreateMany(ctx context.Context, entries []*model.LogEntry) error
	Query(ctx context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error)
	Count(ctx context.Context, opts model.LogQueryOptions) (int64, error)
}

var (
	_ BundleRepositoryInterface  = (*BundleRepository)(nil)
	_ BundleRepositoryInterface  = (*MemoryBundleRepository)(nil)
	_ BundleRepositoryInterface  = (*BundleRepositoryWithCircuitBreaker)(nil)
	_ ProductRepositoryInterface = (*ProductRepository)(nil)
	_ ProductRepositoryInterface = (*MemoryProductRepository)(nil)
	_ ProductRepositoryInterface = (*ProductRepositoryWithCircuitBreaker)(nil)
	_ OrderRepositoryInterface   = (*OrderRepository)(nil)
	_ OrderRepositoryInterface   = (*MemoryOrderRepository)(nil)
	_ OrderRepositoryInterface   = (*OrderRepositoryWithCircuitBreaker)(nil)
	_ CartStore                  = (*RedisCartStore)(nil)
	_ CartStore                  = (*MemoryCartStore)(nil)
	_ LogsRepositoryInterface    = (*LogsRepository)(nil)
	_ LogsRepositoryInterface    = (*LogsRepositoryWithCircuitBreaker)(nil)
)
