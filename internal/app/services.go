// Package app provides service initialization.
package app

import (
	"github.com/rs/zerolog/log"

	"github.com/guttosm/bundle-service/config"
	"github.com/guttosm/bundle-service/internal/repository"
	"github.com/guttosm/bundle-service/internal/service"
)

// ServiceComponents holds service-related components.
type ServiceComponents struct {
	Bundles *service.BundleServiceImpl
	Catalog service.CatalogService
	Carts   *service.CartServiceImpl
	CSRF    *service.CSRFTokenServiceImpl
	// Audit is nil when the database is disabled.
	Audit *service.AsyncAuditLogger
}

// AuditSink returns the audit sink, or nil when audit logging is disabled.
func (s *ServiceComponents) AuditSink() service.AuditSink {
	if s.Audit == nil {
		return nil
	}
	return s.Audit
}

// AuditReader returns the audit search, or nil when audit logging is disabled.
func (s *ServiceComponents) AuditReader() service.AuditReader {
	if s.Audit == nil {
		return nil
	}
	return s.Audit
}

// Close stops background workers.
func (s *ServiceComponents) Close() {
	if s.Bundles != nil {
		s.Bundles.Close()
	}
	if s.Audit != nil {
		s.Audit.Stop()
	}
}

// InitializeServices initializes business logic services.
// Repositories come from MongoDB when it is available, otherwise from memory.
func InitializeServices(cfg config.Config, db *DatabaseComponents, carts repository.CartStore) *ServiceComponents {
	var (
		bundleRepo  repository.BundleRepositoryInterface
		productRepo repository.ProductRepositoryInterface
		orderRepo   repository.OrderRepositoryInterface
		audit       *service.AsyncAuditLogger
	)
	if db != nil {
		bundleRepo = db.BundleRepo
		productRepo = db.ProductRepo
		orderRepo = db.OrderRepo
		audit = service.NewAsyncAuditLogger(db.LoggingService, service.DefaultAsyncAuditLoggerConfig())
	} else {
		log.Warn().Msg("Database disabled - bundles, catalog and orders are kept in memory")
		bundleRepo = repository.NewMemoryBundleRepository()
		productRepo = repository.NewMemoryProductRepository()
		orderRepo = repository.NewMemoryOrderRepository()
	}
	if carts == nil {
		carts = repository.NewMemoryCartStore()
	}

	components := &ServiceComponents{Audit: audit}
	sink := components.AuditSink()

	bundleOpts := []service.BundleOption{service.WithBundleAudit(sink)}
	if cfg.Cache.Size > 0 {
		bundleOpts = append(bundleOpts, service.WithBundleCache(cfg.Cache.Size, cfg.Cache.TTL))
	}
	components.Bundles = service.NewBundleService(bundleRepo, bundleOpts...)
	components.Catalog = service.NewCatalogService(productRepo)

	var allocatorOpts []service.AllocatorOption
	if cfg.Pricing.Decimals > 0 {
		allocatorOpts = append(allocatorOpts, service.WithDecimals(cfg.Pricing.Decimals))
	}
	components.Carts = service.NewCartService(
		carts,
		orderRepo,
		components.Bundles,
		components.Catalog,
		service.WithCartAudit(sink),
		service.WithCurrency(cfg.Pricing.Currency),
		service.WithAllocator(service.NewCartLineAllocator(allocatorOpts...)),
	)
	components.CSRF = service.NewCSRFTokenService(service.NewCSRFConfigFromAuthConfig(cfg.Auth))

	return components
}
