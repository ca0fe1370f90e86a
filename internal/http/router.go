package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/bundle-service/internal/metrics"
	"github.com/guttosm/bundle-service/internal/middleware"
	"github.com/guttosm/bundle-service/internal/repository"
	"github.com/guttosm/bundle-service/internal/service"
)

// RouterConfig holds router configuration options.
type RouterConfig struct {
	// RateLimit is requests per RateWindow per client. Zero disables limiting.
	RateLimit  int
	RateWindow time.Duration
	// RateStore counts requests. Nil keeps counters in process memory.
	RateStore middleware.RateStore

	// AdminAPIKeys enables the admin routes when non-empty.
	AdminAPIKeys map[string]bool

	EnableIdempotency bool
	// IdempotencyStore keeps replayable responses. Nil keeps them in process memory.
	IdempotencyStore repository.IdempotencyStore

	CORSOrigins []string
	SwaggerUser string
	SwaggerPass string
	Session     middleware.SessionConfig

	AuditSink      service.AuditSink
	AuditReader    service.AuditReader
	BundleService  service.BundleService
	CatalogService service.CatalogService
	CSRFService    service.CSRFTokenService
}

// DefaultRouterConfig returns the default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RateLimit:  100,
		RateWindow: time.Minute,
		Session:    middleware.DefaultSessionConfig(),
	}
}

// routeGroup registers a set of routes on the /api group.
type routeGroup interface {
	Register(rg *gin.RouterGroup, cfg *RouterConfig)
}

var defaultCORSOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// NewRouter builds the engine: global middleware, then infrastructure routes,
// then the /api groups.
func NewRouter(handler *Handler, healthHandler *HealthHandler, cfg RouterConfig) *gin.Engine {
	if cfg.RateStore == nil {
		cfg.RateStore = middleware.NewMemoryRateStore()
	}

	router := gin.New()
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		metrics.PrometheusMiddleware(),
		middleware.Compression(),
		middleware.CartSession(cfg.Session),
		middleware.RequestLogger(cfg.AuditSink),
		middleware.ErrorHandler(),
	)
	if cfg.RateLimit > 0 {
		global := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, middleware.WithRateStore(cfg.RateStore))
		router.Use(global.RateLimit())
	}

	if healthHandler != nil {
		healthHandler.Register(router)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	registerSwagger(router, &cfg)

	api := router.Group("/api")
	if cfg.EnableIdempotency {
		api.Use(middleware.Idempotency(idempotencyConfig(&cfg)))
	}
	for _, group := range apiGroups(handler, &cfg) {
		group.Register(api, &cfg)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin", "Accept", "Accept-Language", "Accept-Encoding", "Cache-Control",
			"Content-Type", "Content-Length", "X-Requested-With",
			middleware.CSRFHeader, middleware.APIKeyHeader, middleware.ActorHeader,
			middleware.IdempotencyKeyHeader, middleware.RequestIDHeader,
		},
		ExposeHeaders: []string{
			middleware.RequestIDHeader, middleware.IdempotencyReplayedHeader,
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After",
		},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
}

// registerSwagger serves the API docs, behind basic auth when credentials are set.
func registerSwagger(router *gin.Engine, cfg *RouterConfig) {
	docs := ginSwagger.WrapHandler(swaggerFiles.Handler)
	if cfg.SwaggerUser == "" || cfg.SwaggerPass == "" {
		router.GET("/swagger/*any", docs)
		return
	}
	router.Group("/swagger", gin.BasicAuth(gin.Accounts{cfg.SwaggerUser: cfg.SwaggerPass})).
		GET("/*any", docs)
}

func idempotencyConfig(cfg *RouterConfig) middleware.IdempotencyConfig {
	ic := middleware.DefaultIdempotencyConfig()
	if cfg.IdempotencyStore != nil {
		ic.Store = cfg.IdempotencyStore
	}
	return ic
}

// apiGroups returns the storefront routes and, when keys are configured, the admin routes.
func apiGroups(handler *Handler, cfg *RouterConfig) []routeGroup {
	var groups []routeGroup

	if handler != nil {
		var limiter *middleware.RateLimiter
		if cfg.RateLimit > 0 {
			limiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow,
				middleware.WithRateStore(cfg.RateStore),
				middleware.WithRateScope("cart"),
			)
		}
		groups = append(groups, NewCartRoutes(handler, limiter))
	}

	switch {
	case cfg.BundleService == nil || cfg.CatalogService == nil:
	case len(cfg.AdminAPIKeys) == 0:
		log.Warn().Msg("No admin API keys configured, admin routes are disabled")
	default:
		admin := NewAdminHandler(cfg.BundleService, cfg.CatalogService, cfg.AuditSink, handler,
			WithAuditReader(cfg.AuditReader),
		)
		groups = append(groups, NewAdminRoutes(admin))
	}
	return groups
}
