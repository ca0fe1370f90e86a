package http

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/bundle-service/internal/middleware"
)

// CartRoutes handles storefront route registration.
type CartRoutes struct {
	handler *Handler
	limiter *middleware.RateLimiter
}

// NewCartRoutes creates a new CartRoutes instance.
// A nil limiter disables per-session rate limiting.
func NewCartRoutes(handler *Handler, limiter *middleware.RateLimiter) *CartRoutes {
	return &CartRoutes{handler: handler, limiter: limiter}
}

// Register registers the bundle form, cart, checkout and order routes.
// Mutating routes require a form token and are rate limited per session.
func (r *CartRoutes) Register(rg *gin.RouterGroup, cfg *RouterConfig) {
	rg.GET("/csrf", r.handler.IssueCSRFToken)
	rg.GET("/bundles/:id/form", r.handler.GetBundleForm)
	rg.GET("/orders/:id", r.handler.GetOrder)
	rg.GET("/cart", r.handler.GetCart)

	mutating := rg.Group("")
	mutating.Use(middleware.CSRFProtect(cfg.CSRFService, cfg.AuditSink))
	if r.limiter != nil {
		mutating.Use(r.limiter.SessionRateLimit())
	}

	mutating.DELETE("/cart", r.handler.EmptyCart)
	mutating.POST("/cart/bundle", r.handler.AddBundle)
	mutating.POST("/cart/items", r.handler.AddItem)
	mutating.PATCH("/cart/items/:key", r.handler.UpdateItem)
	mutating.DELETE("/cart/items/:key", r.handler.RemoveItem)
	mutating.POST("/checkout", r.handler.Checkout)
}
