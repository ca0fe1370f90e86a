package app

import (
	"context"

	"github.com/guttosm/bundle-service/config"
	"github.com/guttosm/bundle-service/internal/http"
	"github.com/guttosm/bundle-service/internal/middleware"
	"github.com/guttosm/bundle-service/internal/repository"
)

// RouterComponents is everything http.NewRouter needs.
type RouterComponents struct {
	Handler       *http.Handler
	HealthHandler *http.HealthHandler
	Config        http.RouterConfig
}

// InitializeRouter builds the storefront handler and the router configuration.
// Redis, when connected, also backs rate limiting and idempotent replays.
func InitializeRouter(
	services *ServiceComponents,
	dbComponents *DatabaseComponents,
	cartStore *CartStoreComponents,
	cfg config.Config,
) *RouterComponents {
	handler := http.NewHandler(services.Carts,
		http.WithCSRF(services.CSRF, cfg.Auth.CSRFTokenTTL),
		http.WithFormCacheTTL(cfg.Cache.TTL),
	)

	routerCfg := http.RouterConfig{
		RateLimit:         cfg.Server.RateLimit,
		RateWindow:        cfg.Server.RateWindow,
		AdminAPIKeys:      cfg.Auth.AdminAPIKeys,
		EnableIdempotency: true,
		CORSOrigins:       cfg.Server.CORSOrigins,
		SwaggerUser:       cfg.Server.SwaggerUser,
		SwaggerPass:       cfg.Server.SwaggerPass,
		Session:           sessionConfig(cfg),
		AuditSink:         services.AuditSink(),
		AuditReader:       services.AuditReader(),
		BundleService:     services.Bundles,
		CatalogService:    services.Catalog,
		CSRFService:       services.CSRF,
	}
	if cartStore != nil && cartStore.Client != nil {
		routerCfg.RateStore = repository.NewRedisRateStore(cartStore.Client)
		routerCfg.IdempotencyStore = repository.NewRedisIdempotencyStore(cartStore.Client, middleware.IdempotencyKeyTTL)
	}

	return &RouterComponents{
		Handler:       handler,
		HealthHandler: healthChecks(dbComponents, cartStore),
		Config:        routerCfg,
	}
}

// sessionConfig keeps the cookie alive as long as the cart it points to.
func sessionConfig(cfg config.Config) middleware.SessionConfig {
	session := middleware.DefaultSessionConfig()
	session.Secure = cfg.Server.SecureCookies
	if cfg.Redis.CartTTL > 0 {
		session.MaxAge = cfg.Redis.CartTTL
	}
	return session
}

// healthChecks registers a ping per connected store and every MongoDB breaker.
func healthChecks(db *DatabaseComponents, carts *CartStoreComponents) *http.HealthHandler {
	h := http.NewHealthHandler()

	if db != nil {
		if db.DB != nil {
			h.RegisterChecker("mongodb", http.HealthCheckerFunc(db.DB.HealthCheck))
		}
		for name, cb := range db.Breakers() {
			h.RegisterCircuitBreaker(name, cb)
		}
	}

	if carts != nil && carts.Client != nil {
		client := carts.Client
		h.RegisterChecker("redis", http.HealthCheckerFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
	}
	return h
}
