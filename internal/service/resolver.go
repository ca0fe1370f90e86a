package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/guttosm/bundle-service/internal/domain/model"
)

// ProductLookup loads catalog products.
// GetProduct returns ErrProductNotFound for unknown ids.
type ProductLookup interface {
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
}

// ResolvedUnit is the concrete purchasable unit chosen for one slot.
type ResolvedUnit struct {
	Slot        model.FormSlot
	ProductID   int64
	VariationID int64
	Name        string
	// CurrentPrice is the effective selling price of the unit
	CurrentPrice decimal.Decimal
	// RegularPrice is zero when not configured
	RegularPrice decimal.Decimal
	// ReferencePrice is the regular price, else the current price
	ReferencePrice decimal.Decimal
}

// VariantResolver turns slot selections into purchasable units.
type VariantResolver struct {
	catalog ProductLookup
}

// NewVariantResolver creates a resolver reading from the given catalog.
func NewVariantResolver(catalog ProductLookup) *VariantResolver {
	return &VariantResolver{catalog: catalog}
}

// PrepareForm validates a bundle against the catalog and builds its
// add-to-cart form. Unknown and unpurchasable products are left out, slots
// without any remaining product are dropped, and a bundle without slots
// fails with ErrBundleNotConfigured.
func (r *VariantResolver) PrepareForm(ctx context.Context, def *model.BundleDefinition) (*model.BundleForm, error) {
	if def == nil {
		return nil, ErrBundleNotFound
	}

	form := &model.BundleForm{
		BundleID:    def.BundleID,
		Name:        def.Name,
		BundlePrice: def.BundlePrice,
		ItemsTotal:  decimal.Zero,
	}

	for _, slot := range def.Slots {
		fs := model.FormSlot{Key: slot.Key, Label: slot.Label, Quantity: max(slot.Quantity, 1)}
		var cheapest decimal.Decimal
		for _, id := range slot.AllowedProductIDs {
			p, err := r.lookup(ctx, id)
			if err != nil {
				return nil, err
			}
			if p == nil || !offerable(p) {
				continue
			}
			opt := formOption(p)
			if len(fs.Options) == 0 || opt.ReferencePrice.LessThan(cheapest) {
				cheapest = opt.ReferencePrice
			}
			fs.Options = append(fs.Options, opt)
		}
		if len(fs.Options) == 0 {
			continue
		}
		form.Slots = append(form.Slots, fs)
		form.ItemsTotal = form.ItemsTotal.Add(cheapest.Mul(decimal.NewFromInt(int64(fs.Quantity))))
	}

	if len(form.Slots) == 0 {
		return nil, fmt.Errorf("bundle %d: %w", def.BundleID, ErrBundleNotConfigured)
	}
	return form, nil
}

// Resolve maps every form slot to one purchasable unit. The first slot that
// cannot be resolved aborts the whole resolution with a *RejectionError.
// Resolve has no side effects.
func (r *VariantResolver) Resolve(ctx context.Context, form *model.BundleForm, selections []model.VariantSelection) ([]ResolvedUnit, error) {
	if form == nil || len(form.Slots) == 0 {
		return nil, ErrBundleNotConfigured
	}

	bySlot := make(map[string]model.VariantSelection, len(selections))
	for _, s := range selections {
		bySlot[strings.TrimSpace(s.SlotKey)] = s
	}

	units := make([]ResolvedUnit, 0, len(form.Slots))
	for _, slot := range form.Slots {
		unit, err := r.resolveSlot(ctx, slot, bySlot[slot.Key])
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, nil
}

func (r *VariantResolver) resolveSlot(ctx context.Context, slot model.FormSlot, sel model.VariantSelection) (ResolvedUnit, error) {
	if sel.ProductID <= 0 || !slot.Offers(sel.ProductID) {
		return ResolvedUnit{}, reject(ReasonMissingColor, slot.Key, slot.Label)
	}

	p, err := r.lookup(ctx, sel.ProductID)
	if err != nil {
		return ResolvedUnit{}, err
	}
	if p == nil {
		return ResolvedUnit{}, reject(ReasonNotPurchasable, slot.Key, slot.Label)
	}

	if !p.IsVariable() {
		if !p.Purchasable {
			return ResolvedUnit{}, reject(ReasonNotPurchasable, slot.Key, slot.Label)
		}
		if !p.InStock {
			return ResolvedUnit{}, reject(ReasonOutOfStock, slot.Key, slot.Label)
		}
		return ResolvedUnit{
			Slot:           slot,
			ProductID:      p.ID,
			Name:           p.Name,
			CurrentPrice:   p.CurrentPrice,
			RegularPrice:   p.RegularPrice,
			ReferencePrice: p.ReferencePrice(),
		}, nil
	}

	if sel.VariationID <= 0 {
		return ResolvedUnit{}, reject(ReasonMissingSize, slot.Key, slot.Label)
	}
	v, ok := p.Variation(sel.VariationID)
	if !ok || (v.ParentID != 0 && v.ParentID != p.ID) {
		return ResolvedUnit{}, reject(ReasonMissingSize, slot.Key, slot.Label)
	}
	if !v.Purchasable {
		return ResolvedUnit{}, reject(ReasonNotPurchasable, slot.Key, slot.Label)
	}
	if !v.InStock {
		return ResolvedUnit{}, reject(ReasonOutOfStock, slot.Key, slot.Label)
	}
	return ResolvedUnit{
		Slot:           slot,
		ProductID:      p.ID,
		VariationID:    v.ID,
		Name:           variationName(p.Name, v.Attributes),
		CurrentPrice:   v.CurrentPrice,
		RegularPrice:   v.RegularPrice,
		ReferencePrice: v.ReferencePrice(),
	}, nil
}

func (r *VariantResolver) lookup(ctx context.Context, id int64) (*model.Product, error) {
	p, err := r.catalog.GetProduct(ctx, id)
	if errors.Is(err, ErrProductNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", id, err)
	}
	return p, nil
}

// offerable reports whether a product can be shown as a slot option.
func offerable(p *model.Product) bool {
	if p.IsVariable() {
		return p.HasPurchasableVariation()
	}
	return p.Purchasable
}

func formOption(p *model.Product) model.FormOption {
	opt := model.FormOption{
		ProductID:      p.ID,
		Name:           p.Name,
		InStock:        p.InStock,
		ReferencePrice: p.ReferencePrice(),
	}
	if !p.IsVariable() {
		return opt
	}

	opt.InStock = false
	for _, v := range p.Variations {
		if !v.Purchasable {
			continue
		}
		size := model.FormSize{
			VariationID:    v.ID,
			Attributes:     v.Attributes,
			InStock:        v.InStock,
			ReferencePrice: v.ReferencePrice(),
		}
		if len(opt.Sizes) == 0 || size.ReferencePrice.LessThan(opt.ReferencePrice) {
			opt.ReferencePrice = size.ReferencePrice
		}
		opt.InStock = opt.InStock || v.InStock
		opt.Sizes = append(opt.Sizes, size)
	}
	return opt
}

// variationName appends the attribute values, ordered by attribute name.
func variationName(name string, attrs map[string]string) string {
	if len(attrs) == 0 {
		return name
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, attrs[k])
	}
	return name + " - " + strings.Join(values, ", ")
}
