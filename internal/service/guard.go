package service

import (
	"context"

	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/guttosm/bundle-service/internal/logger"
	"github.com/guttosm/bundle-service/internal/metrics"
)

// Guard rule names used in metrics and audit entries.
const (
	RuleQuantityLock   = "quantity_lock"
	RuleCascadeRemoval = "cascade_removal"
	RuleParentStrip    = "parent_strip"
)

// BundleLookup reports whether a product is a bundle parent.
type BundleLookup interface {
	IsBundle(ctx context.Context, productID int64) (bool, error)
}

// GuardOption configures a CartIntegrityGuard.
type GuardOption func(*CartIntegrityGuard)

// WithGuardAudit records silent corrections on the given sink.
func WithGuardAudit(sink AuditSink) GuardOption {
	return func(g *CartIntegrityGuard) {
		g.audit = sink
	}
}

// CartIntegrityGuard keeps bundle groups consistent on every cart mutation.
type CartIntegrityGuard struct {
	bundles BundleLookup
	audit   AuditSink
}

// NewCartIntegrityGuard creates a guard using bundles to recognize parent products.
func NewCartIntegrityGuard(bundles BundleLookup, opts ...GuardOption) *CartIntegrityGuard {
	g := &CartIntegrityGuard{bundles: bundles}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CheckQuantityChange rejects any quantity change on a bundle line.
func (g *CartIntegrityGuard) CheckQuantityChange(line model.CartLine, quantity int) error {
	if !line.InBundle() || quantity == line.Quantity {
		return nil
	}
	metrics.RecordGuardCorrection(RuleQuantityLock)
	return ErrBundleQuantityLocked
}

// Attach registers the cascade removal and parent strip hooks on a loaded cart.
// ctx is used by the hooks for the lifetime of the cart instance.
func (g *CartIntegrityGuard) Attach(ctx context.Context, cart *model.Cart) {
	cascading := false
	cart.OnLineRemoved(func(c *model.Cart, line model.CartLine) {
		if cascading || !line.InBundle() {
			return
		}
		cascading = true
		defer func() { cascading = false }()

		siblings := c.LinesInGroup(line.GroupID())
		for _, s := range siblings {
			c.Remove(s.Key)
		}
		if len(siblings) == 0 {
			return
		}

		metrics.RecordGuardCorrection(RuleCascadeRemoval)
		log := logger.FromContext(ctx)
		log.Debug().
			Str("group_id", line.GroupID()).
			Int("removed", len(siblings)).
			Msg("Removed bundle group siblings")
	})

	cart.OnLineAdded(func(c *model.Cart, line model.CartLine) {
		if line.InBundle() || g.bundles == nil {
			return
		}
		log := logger.FromContext(ctx)
		isBundle, err := g.bundles.IsBundle(ctx, line.ProductID)
		if err != nil {
			log.Error().Err(err).Int64("product_id", line.ProductID).Msg("Bundle lookup failed while checking cart line")
			return
		}
		if !isBundle || !c.Remove(line.Key) {
			return
		}

		metrics.RecordGuardCorrection(RuleParentStrip)
		log.Warn().Int64("product_id", line.ProductID).Msg("Stripped bundle parent product from cart")
		recordAudit(g.audit, auditEntry(ctx, model.ActionParentStripped, "Bundle parent product removed from cart", map[string]interface{}{
			"product_id": line.ProductID,
			"quantity":   line.Quantity,
		}))
	})
}
