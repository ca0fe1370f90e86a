package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/bundle-service/internal/domain/model"
)

func pricedCart(t *testing.T) *model.Cart {
	t.Helper()
	cart := model.NewCart("s1")
	cart.AddLines(
		bundleLine("a", "g1", 1, "25.00", "40.00", 1),
		bundleLine("b", "g1", 1, "35.00", "40.00", 1),
		plainLine("p", 401, 2, "10.00"),
	)
	NewCartLineAllocator().Reallocate(cart)
	return cart
}

func TestOrderProjector_Project(t *testing.T) {
	cart := pricedCart(t)
	cart.Lines[0].Name = "Seamless Top Black - M"
	cart.Lines[0].VariationID = 2011
	cart.Lines[0].RegularPrice = dec("25.00")

	order := &model.Order{}
	p := NewOrderProjector()
	for _, l := range cart.Lines {
		p.Project(l, order)
	}

	require.Len(t, order.Lines, 3)

	top := order.Lines[0]
	assert.Equal(t, "Seamless Top Black - M", top.Name)
	assert.Equal(t, int64(2011), top.VariationID)
	assert.True(t, top.UnitPrice.Equal(dec("16.67")))
	assert.True(t, top.LineTotal.Equal(dec("16.67")))
	require.NotNil(t, top.Bundle)
	assert.Equal(t, "g1", top.Bundle.GroupID)
	assert.Equal(t, int64(100), top.Bundle.BundleID)
	assert.Equal(t, "Training Set", top.Bundle.BundleName)
	assert.Equal(t, "a", top.Bundle.SlotKey)
	assert.Equal(t, 1, top.Bundle.BundleQuantity)
	assert.True(t, top.Bundle.BundlePrice.Equal(dec("40.00")))
	assert.True(t, top.Bundle.ReferenceUnitPrice.Equal(dec("25.00")))
	assert.True(t, top.Bundle.ReferenceLineTotal.Equal(dec("25.00")))

	assert.Nil(t, order.Lines[2].Bundle)
	assert.True(t, order.Lines[2].LineTotal.Equal(dec("20.00")))

	p.Totals(order)
	assert.True(t, order.Subtotal.Equal(dec("60.00")))
	assert.True(t, order.ItemsTotal.Equal(dec("80.00")))
	assert.True(t, order.Savings.Equal(dec("20.00")))
}

func TestOrderProjector_ProjectMultiUnitReference(t *testing.T) {
	line := bundleLine("a", "g1", 4, "12.50", "30.00", 2)
	order := &model.Order{}

	NewOrderProjector().Project(line, order)

	require.NotNil(t, order.Lines[0].Bundle)
	assert.True(t, order.Lines[0].Bundle.ReferenceLineTotal.Equal(dec("50.00")))
}

func TestGroupSummaries(t *testing.T) {
	cart := pricedCart(t)
	cart.AddLines(
		bundleLine("c", "g2", 1, "20.00", "50.00", 1),
		bundleLine("d", "g2", 1, "20.00", "50.00", 1),
	)
	NewCartLineAllocator().Reallocate(cart)

	summaries := GroupSummaries(cart.Lines)
	require.Len(t, summaries, 2)

	assert.Equal(t, "g1", summaries[0].GroupID)
	assert.Equal(t, 2, summaries[0].Lines)
	assert.True(t, summaries[0].ItemsTotal.Equal(dec("60.00")))
	assert.True(t, summaries[0].ChargedTotal.Equal(dec("40.00")))
	assert.True(t, summaries[0].Savings.Equal(dec("20.00")))

	assert.Equal(t, "g2", summaries[1].GroupID)
	assert.True(t, summaries[1].ItemsTotal.Equal(dec("40.00")))
	assert.True(t, summaries[1].ChargedTotal.Equal(dec("50.00")))
	assert.True(t, summaries[1].Savings.IsZero(), "negative savings are not reported")
}

func TestSavingsForGroup(t *testing.T) {
	cart := pricedCart(t)

	assert.True(t, SavingsForGroup(cart.Lines, "g1").Equal(dec("20.00")))
	assert.True(t, SavingsForGroup(cart.Lines, "missing").IsZero())
	assert.True(t, SavingsForGroup(nil, "g1").IsZero())
}

func TestItemsTotalAcrossCart(t *testing.T) {
	tests := []struct {
		name     string
		lines    func() []model.CartLine
		expected string
	}{
		{
			name:     "bundle reference totals plus plain subtotals",
			lines:    func() []model.CartLine { return pricedCart(t).Lines },
			expected: "80.00",
		},
		{
			name:     "empty cart",
			lines:    func() []model.CartLine { return nil },
			expected: "0",
		},
		{
			name: "legacy line without reference price falls back to regular price",
			lines: func() []model.CartLine {
				l := bundleLine("a", "g1", 2, "0", "30.00", 1)
				l.RegularPrice = dec("18.00")
				return []model.CartLine{l}
			},
			expected: "36.00",
		},
		{
			name: "legacy line without regular price falls back to catalog price",
			lines: func() []model.CartLine {
				l := bundleLine("a", "g1", 1, "0", "30.00", 1)
				l.CatalogPrice = dec("21.00")
				return []model.CartLine{l}
			},
			expected: "21.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ItemsTotalAcrossCart(tt.lines())
			assert.True(t, got.Equal(dec(tt.expected)), got.String())
		})
	}
}

func TestOrderGroupSummaries_FallsBackWithoutReference(t *testing.T) {
	order := &model.Order{Lines: []model.OrderLine{
		{
			Quantity: 1, UnitPrice: dec("16.67"), LineTotal: dec("16.67"), RegularPrice: dec("25.00"),
			Bundle: &model.OrderLineSnapshot{GroupID: "g1", BundleID: 100, BundlePrice: dec("40.00"), BundleQuantity: 1},
		},
		{
			Quantity: 1, UnitPrice: dec("23.33"), LineTotal: dec("23.33"),
			Bundle: &model.OrderLineSnapshot{GroupID: "g1", BundleID: 100, BundlePrice: dec("40.00"), BundleQuantity: 1},
		},
	}}

	summaries := OrderGroupSummaries(order)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].ItemsTotal.Equal(dec("48.33")))
	assert.True(t, summaries[0].ChargedTotal.Equal(dec("40.00")))
	assert.True(t, summaries[0].Savings.Equal(dec("8.33")))
	assert.False(t, summaries[0].Savings.IsNegative())
}
