package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/guttosm/bundle-service/internal/middleware"
	"github.com/guttosm/bundle-service/internal/service"
)

func registeredRoutes(router *gin.Engine) map[string]bool {
	routes := make(map[string]bool)
	for _, r := range router.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	return routes
}

func TestCartRoutes_Register(t *testing.T) {
	tests := []struct {
		name    string
		limiter *middleware.RateLimiter
	}{
		{name: "with session rate limit", limiter: middleware.NewRateLimiter(10, time.Minute)},
		{name: "without session rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			routes := NewCartRoutes(newTestHandler(t), tt.limiter)
			assert.NotNil(t, routes.handler)

			router := gin.New()
			routes.Register(router.Group("/api"), &RouterConfig{})

			registered := registeredRoutes(router)
			for _, want := range []string{
				http.MethodGet + " /api/csrf",
				http.MethodGet + " /api/bundles/:id/form",
				http.MethodGet + " /api/orders/:id",
				http.MethodGet + " /api/cart",
				http.MethodDelete + " /api/cart",
				http.MethodPost + " /api/cart/bundle",
				http.MethodPost + " /api/cart/items",
				http.MethodPatch + " /api/cart/items/:key",
				http.MethodDelete + " /api/cart/items/:key",
				http.MethodPost + " /api/checkout",
			} {
				assert.True(t, registered[want], "missing route %s", want)
			}
		})
	}
}

func TestAdminRoutes_Register(t *testing.T) {
	products, bundleRepo := seedCatalog(t)
	admin := NewAdminHandler(
		service.NewBundleService(bundleRepo),
		service.NewCatalogService(products),
		nil,
		nil,
	)
	routes := NewAdminRoutes(admin)
	assert.NotNil(t, routes.handler)

	router := gin.New()
	routes.Register(router.Group("/api"), &RouterConfig{
		AdminAPIKeys: map[string]bool{testAdminKey: true},
	})

	registered := registeredRoutes(router)
	for _, want := range []string{
		http.MethodGet + " /api/admin/bundles",
		http.MethodGet + " /api/admin/bundles/:id",
		http.MethodPut + " /api/admin/bundles/:id",
		http.MethodDelete + " /api/admin/bundles/:id",
		http.MethodPut + " /api/admin/products/:id",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
	assert.False(t, registered[http.MethodGet+" /api/cart"])
}

func TestAdminRoutes_IncludeAuditSearch(t *testing.T) {
	router := gin.New()
	NewAdminRoutes(NewAdminHandler(nil, nil, nil, nil)).Register(router.Group("/api"), &RouterConfig{
		AdminAPIKeys: map[string]bool{testAdminKey: true},
	})

	assert.True(t, registeredRoutes(router)[http.MethodGet+" /api/admin/audit"])
}
