package service

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/guttosm/bundle-service/internal/metrics"
)

// Allocator rewrites bundle line prices so each group totals its bundle price.
type Allocator interface {
	Reallocate(cart *model.Cart)
}

// AllocatorOption configures a CartLineAllocator.
type AllocatorOption func(*CartLineAllocator)

// CartLineAllocator spreads a bundle's flat price across its member lines
// proportionally to their reference prices, in integer minor units.
type CartLineAllocator struct {
	decimals int32
}

// NewCartLineAllocator creates an allocator with the given options.
func NewCartLineAllocator(opts ...AllocatorOption) *CartLineAllocator {
	a := &CartLineAllocator{decimals: model.DefaultDecimals}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WithDecimals sets the minor-unit precision used for allocation.
func WithDecimals(decimals int) AllocatorOption {
	return func(a *CartLineAllocator) {
		if decimals >= 0 {
			a.decimals = int32(decimals)
		}
	}
}

// Decimals returns the configured minor-unit precision.
func (a *CartLineAllocator) Decimals() int {
	return int(a.decimals)
}

// Reallocate prices every bundle group of the cart. Plain lines are ignored.
// Repeated calls are no-ops until the cart is mutated again.
func (a *CartLineAllocator) Reallocate(cart *model.Cart) {
	if cart == nil || cart.PricingApplied() {
		return
	}
	start := time.Now()

	order, groups := partitionGroups(cart.Lines)
	for _, id := range order {
		a.allocateGroup(cart, groups[id])
	}

	cart.MarkPricingApplied()
	metrics.RecordAllocation(time.Since(start), len(order))
}

// partitionGroups returns line indexes per group id, groups in order of first appearance.
func partitionGroups(lines []model.CartLine) ([]string, map[string][]int) {
	var order []string
	groups := make(map[string][]int)
	for i := range lines {
		id := lines[i].GroupID()
		if id == "" {
			continue
		}
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], i)
	}
	return order, groups
}

func (a *CartLineAllocator) allocateGroup(cart *model.Cart, idx []int) {
	d := int(a.decimals)
	first := cart.Lines[idx[0]].Bundle
	bundleQty := first.BundleQuantity
	if bundleQty < 0 {
		bundleQty = 0
	}
	target := first.BundlePrice.Mul(decimal.NewFromInt(int64(bundleQty)))
	targetCents := model.ToMinorUnits(target, d)
	if targetCents < 0 {
		targetCents = 0
	}

	weights := make([]int64, len(idx))
	quantities := make([]int, len(idx))
	for k, i := range idx {
		line := cart.Lines[i]
		quantities[k] = line.Quantity
		weights[k] = model.ToMinorUnits(referenceUnit(line).Mul(decimal.NewFromInt(int64(line.Quantity))), d)
	}

	shares := AllocateShares(targetCents, weights, quantities)
	for k, i := range idx {
		total := model.FromMinorUnits(shares[k], d)
		unit := total
		if q := cart.Lines[i].Quantity; q > 1 {
			unit = total.Div(decimal.NewFromInt(int64(q)))
		}
		// LinePrice is a value; the write stays on this line.
		cart.Lines[i].Price = model.LinePrice{
			UnitPrice: model.NonNegative(unit),
			LineTotal: model.NonNegative(total),
		}
	}
}

// AllocateShares splits targetCents across lines proportionally to weights.
// Each share is floor(target*weight/base). The remainder goes to the first
// line whose quantity is 1, else to the last line. Negative weights count as
// zero and a non-positive base splits equally. The result always sums to
// targetCents when targetCents >= 0.
func AllocateShares(targetCents int64, weights []int64, quantities []int) []int64 {
	n := len(weights)
	shares := make([]int64, n)
	if n == 0 {
		return shares
	}
	if targetCents < 0 {
		targetCents = 0
	}

	w := make([]int64, n)
	var base int64
	for i, v := range weights {
		if v > 0 {
			w[i] = v
			base += v
		}
	}
	if base <= 0 {
		for i := range w {
			w[i] = 1
		}
		base = int64(n)
	}

	target := big.NewInt(targetCents)
	denominator := big.NewInt(base)
	var allocated int64
	for i := range w {
		share := new(big.Int).Mul(target, big.NewInt(w[i]))
		share.Quo(share, denominator)
		shares[i] = share.Int64()
		allocated += shares[i]
	}

	if rem := targetCents - allocated; rem != 0 {
		shares[remainderIndex(quantities, n)] += rem
	}
	return shares
}

func remainderIndex(quantities []int, n int) int {
	for i := 0; i < n && i < len(quantities); i++ {
		if quantities[i] == 1 {
			return i
		}
	}
	return n - 1
}

// referenceUnit returns the captured reference price, falling back to the
// regular then catalog price for lines without one.
func referenceUnit(line model.CartLine) decimal.Decimal {
	if line.Bundle != nil && line.Bundle.ReferenceUnitPrice.IsPositive() {
		return line.Bundle.ReferenceUnitPrice
	}
	if line.RegularPrice.IsPositive() {
		return line.RegularPrice
	}
	return model.NonNegative(line.CatalogPrice)
}
