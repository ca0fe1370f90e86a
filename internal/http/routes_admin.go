package http

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/bundle-service/internal/middleware"
)

// AdminRoutes handles bundle and catalog administration route registration.
type AdminRoutes struct {
	handler *AdminHandler
}

// NewAdminRoutes creates a new AdminRoutes instance.
func NewAdminRoutes(handler *AdminHandler) *AdminRoutes {
	return &AdminRoutes{handler: handler}
}

// Register registers the admin routes under /admin behind API key authentication.
func (r *AdminRoutes) Register(rg *gin.RouterGroup, cfg *RouterConfig) {
	admin := rg.Group("/admin")
	admin.Use(middleware.APIKeyAuth(cfg.AdminAPIKeys))
	{
		admin.GET("/bundles", r.handler.ListBundles)
		admin.GET("/bundles/:id", r.handler.GetBundle)
		admin.PUT("/bundles/:id", r.handler.SaveBundle)
		admin.DELETE("/bundles/:id", r.handler.DeleteBundle)
		admin.PUT("/products/:id", r.handler.UpsertProduct)
		admin.GET("/audit", r.handler.SearchAudit)
	}
}
