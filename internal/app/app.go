// Package app provides application initialization and dependency injection.
package app

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/bundle-service/config"
	"github.com/guttosm/bundle-service/internal/http"
)

// InitializeApp creates and wires all application dependencies.
// The returned cleanup stops background workers and closes store connections.
func InitializeApp(cfg config.Config) (*gin.Engine, func()) {
	// Initialize logger first (needed by other components)
	InitializeLogger(cfg.Log)

	// Initialize storage (MongoDB for bundles, catalog, orders and audit logs; Redis for carts)
	dbComponents := InitializeDatabase(cfg.Database)
	cartStore := InitializeCartStore(cfg.Redis)

	// Initialize business services
	serviceComponents := InitializeServices(cfg, dbComponents, cartStore.Store)

	// Initialize router components (handlers and configuration)
	routerComponents := InitializeRouter(serviceComponents, dbComponents, cartStore, cfg)

	router := http.NewRouter(routerComponents.Handler, routerComponents.HealthHandler, routerComponents.Config)

	cleanup := func() {
		serviceComponents.Close()
		cartStore.Close()
		dbComponents.Close()
	}
	return router, cleanup
}
