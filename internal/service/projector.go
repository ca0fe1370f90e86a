package service

import (
	"github.com/shopspring/decimal"

	"github.com/guttosm/bundle-service/internal/domain/model"
)

// OrderProjector freezes cart lines onto order lines and computes the
// display totals shared by cart, checkout and order views.
type OrderProjector struct{}

// NewOrderProjector creates an order projector.
func NewOrderProjector() *OrderProjector {
	return &OrderProjector{}
}

// Project appends the order line for a cart line. Bundle lines carry a
// snapshot of their grouping and reference prices.
func (p *OrderProjector) Project(line model.CartLine, order *model.Order) {
	ol := model.OrderLine{
		ProductID:    line.ProductID,
		VariationID:  line.VariationID,
		Name:         line.Name,
		Quantity:     line.Quantity,
		UnitPrice:    line.Price.UnitPrice,
		LineTotal:    line.Price.LineTotal,
		RegularPrice: model.NonNegative(line.RegularPrice),
	}

	if line.InBundle() {
		meta := line.Bundle
		ref := referenceUnit(line)
		ol.Bundle = &model.OrderLineSnapshot{
			GroupID:            meta.GroupID,
			BundleID:           meta.BundleID,
			BundleName:         meta.BundleName,
			BundlePrice:        meta.BundlePrice,
			BundleQuantity:     meta.BundleQuantity,
			SlotKey:            meta.SlotKey,
			SlotLabel:          meta.SlotLabel,
			ReferenceUnitPrice: ref,
			ReferenceLineTotal: ref.Mul(decimal.NewFromInt(int64(line.Quantity))),
		}
	}

	order.Lines = append(order.Lines, ol)
}

// Totals fills the order subtotal, items total and savings from its lines.
func (p *OrderProjector) Totals(order *model.Order) {
	lines := orderDisplayLines(order.Lines)
	order.Subtotal = chargedTotal(lines)
	order.ItemsTotal = itemsTotal(lines)
	order.Savings = positive(order.ItemsTotal.Sub(order.Subtotal))
}

// displayLine is the common view of a cart or order line used by the display helpers.
type displayLine struct {
	groupID        string
	bundleID       int64
	bundleName     string
	bundlePrice    decimal.Decimal
	bundleQuantity int
	referenceTotal decimal.Decimal
	chargedTotal   decimal.Decimal
}

func cartDisplayLines(lines []model.CartLine) []displayLine {
	out := make([]displayLine, 0, len(lines))
	for _, l := range lines {
		d := displayLine{chargedTotal: l.Price.LineTotal}
		if l.InBundle() {
			d.groupID = l.Bundle.GroupID
			d.bundleID = l.Bundle.BundleID
			d.bundleName = l.Bundle.BundleName
			d.bundlePrice = l.Bundle.BundlePrice
			d.bundleQuantity = l.Bundle.BundleQuantity
			d.referenceTotal = referenceUnit(l).Mul(decimal.NewFromInt(int64(l.Quantity)))
		}
		out = append(out, d)
	}
	return out
}

func orderDisplayLines(lines []model.OrderLine) []displayLine {
	out := make([]displayLine, 0, len(lines))
	for _, l := range lines {
		d := displayLine{chargedTotal: l.LineTotal}
		if s := l.Bundle; s != nil && s.GroupID != "" {
			d.groupID = s.GroupID
			d.bundleID = s.BundleID
			d.bundleName = s.BundleName
			d.bundlePrice = s.BundlePrice
			d.bundleQuantity = s.BundleQuantity
			d.referenceTotal = s.ReferenceLineTotal
			if !d.referenceTotal.IsPositive() {
				unit := l.RegularPrice
				if !unit.IsPositive() {
					unit = l.UnitPrice
				}
				d.referenceTotal = model.NonNegative(unit.Mul(decimal.NewFromInt(int64(l.Quantity))))
			}
		}
		out = append(out, d)
	}
	return out
}

func summarize(lines []displayLine) []model.GroupSummary {
	var out []model.GroupSummary
	index := make(map[string]int)
	for _, l := range lines {
		if l.groupID == "" {
			continue
		}
		i, ok := index[l.groupID]
		if !ok {
			i = len(out)
			index[l.groupID] = i
			out = append(out, model.GroupSummary{
				GroupID:        l.groupID,
				BundleID:       l.bundleID,
				BundleName:     l.bundleName,
				BundleQuantity: l.bundleQuantity,
				BundlePrice:    l.bundlePrice,
				ItemsTotal:     decimal.Zero,
				ChargedTotal:   decimal.Zero,
			})
		}
		out[i].ItemsTotal = out[i].ItemsTotal.Add(l.referenceTotal)
		out[i].ChargedTotal = out[i].ChargedTotal.Add(l.chargedTotal)
		out[i].Lines++
	}
	for i := range out {
		out[i].Savings = positive(out[i].ItemsTotal.Sub(out[i].ChargedTotal))
	}
	return out
}

func itemsTotal(lines []displayLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.groupID != "" {
			total = total.Add(l.referenceTotal)
		} else {
			total = total.Add(l.chargedTotal)
		}
	}
	return total
}

func chargedTotal(lines []displayLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.chargedTotal)
	}
	return total
}

func positive(amount decimal.Decimal) decimal.Decimal {
	if amount.IsPositive() {
		return amount
	}
	return decimal.Zero
}

// GroupSummaries returns one summary per bundle group, in cart order.
func GroupSummaries(lines []model.CartLine) []model.GroupSummary {
	return summarize(cartDisplayLines(lines))
}

// OrderGroupSummaries returns one summary per bundle group of a placed order.
func OrderGroupSummaries(order *model.Order) []model.GroupSummary {
	return summarize(orderDisplayLines(order.Lines))
}

// SavingsForGroup returns the reference total minus the charged total of a
// group, zero when not positive.
func SavingsForGroup(lines []model.CartLine, groupID string) decimal.Decimal {
	for _, s := range GroupSummaries(lines) {
		if s.GroupID == groupID {
			return s.Savings
		}
	}
	return decimal.Zero
}

// ItemsTotalAcrossCart sums the reference totals of bundle lines and the
// charged totals of plain lines.
func ItemsTotalAcrossCart(lines []model.CartLine) decimal.Decimal {
	return itemsTotal(cartDisplayLines(lines))
}
