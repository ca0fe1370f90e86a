package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/bundle-service/internal/domain/model"
)

var dec = decimal.RequireFromString

func bundleLine(key, group string, qty int, ref, bundlePrice string, bundleQty int) model.CartLine {
	return model.CartLine{
		Key:          key,
		ProductID:    int64(len(key)) + 200,
		Quantity:     qty,
		CatalogPrice: dec(ref),
		Price:        model.PlainLinePrice(dec(ref), qty),
		Bundle: &model.BundleLineMeta{
			GroupID:            group,
			BundleID:           100,
			BundleName:         "Training Set",
			BundlePrice:        dec(bundlePrice),
			BundleQuantity:     bundleQty,
			SlotKey:            key,
			SlotLabel:          key,
			SlotQuantity:       qty / max(bundleQty, 1),
			ReferenceUnitPrice: dec(ref),
		},
	}
}

func groupTotal(cart *model.Cart, group string) decimal.Decimal {
	total := decimal.Zero
	for _, l := range cart.LinesInGroup(group) {
		total = total.Add(l.Price.LineTotal)
	}
	return total
}

func TestNewCartLineAllocator(t *testing.T) {
	tests := []struct {
		name     string
		options  []AllocatorOption
		expected int
	}{
		{name: "defaults to two decimals", options: nil, expected: 2},
		{name: "custom decimals", options: []AllocatorOption{WithDecimals(3)}, expected: 3},
		{name: "zero decimals", options: []AllocatorOption{WithDecimals(0)}, expected: 0},
		{name: "negative decimals ignored", options: []AllocatorOption{WithDecimals(-1)}, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewCartLineAllocator(tt.options...)
			assert.Equal(t, tt.expected, a.Decimals())
		})
	}
}

func TestAllocateShares(t *testing.T) {
	tests := []struct {
		name       string
		target     int64
		weights    []int64
		quantities []int
		expected   []int64
	}{
		{
			name:       "worked example gives remainder to first single unit line",
			target:     4000,
			weights:    []int64{2500, 3500},
			quantities: []int{1, 1},
			expected:   []int64{1667, 2333},
		},
		{
			name:       "remainder skips multi unit lines",
			target:     4000,
			weights:    []int64{5000, 3500},
			quantities: []int{2, 1},
			expected:   []int64{2352, 1648},
		},
		{
			name:       "remainder falls back to last line",
			target:     1000,
			weights:    []int64{1, 1, 1},
			quantities: []int{2, 2, 2},
			expected:   []int64{333, 333, 334},
		},
		{
			name:       "zero base splits equally",
			target:     1000,
			weights:    []int64{0, 0},
			quantities: []int{1, 1},
			expected:   []int64{500, 500},
		},
		{
			name:       "negative weights count as zero",
			target:     900,
			weights:    []int64{-500, 300},
			quantities: []int{1, 1},
			expected:   []int64{0, 900},
		},
		{
			name:       "all negative weights split equally",
			target:     901,
			weights:    []int64{-1, -1},
			quantities: []int{1, 1},
			expected:   []int64{451, 450},
		},
		{
			name:       "single line takes everything",
			target:     1999,
			weights:    []int64{4200},
			quantities: []int{3},
			expected:   []int64{1999},
		},
		{
			name:       "zero target",
			target:     0,
			weights:    []int64{100, 200},
			quantities: []int{1, 1},
			expected:   []int64{0, 0},
		},
		{
			name:       "negative target clamps to zero",
			target:     -50,
			weights:    []int64{100},
			quantities: []int{1},
			expected:   []int64{0},
		},
		{
			name:       "no lines",
			target:     100,
			weights:    nil,
			quantities: nil,
			expected:   []int64{},
		},
		{
			name:       "large values do not overflow",
			target:     9_000_000_000_000,
			weights:    []int64{9_000_000_000_000, 9_000_000_000_000},
			quantities: []int{1, 1},
			expected:   []int64{4_500_000_000_000, 4_500_000_000_000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AllocateShares(tt.target, tt.weights, tt.quantities))
		})
	}
}

func TestCartLineAllocator_Reallocate_WorkedExample(t *testing.T) {
	cart := model.NewCart("s1")
	cart.AddLines(
		bundleLine("a", "g1", 1, "25.00", "40.00", 1),
		bundleLine("b", "g1", 1, "35.00", "40.00", 1),
	)

	NewCartLineAllocator().Reallocate(cart)

	assert.True(t, cart.Lines[0].Price.UnitPrice.Equal(dec("16.67")), cart.Lines[0].Price.UnitPrice.String())
	assert.True(t, cart.Lines[1].Price.UnitPrice.Equal(dec("23.33")), cart.Lines[1].Price.UnitPrice.String())
	assert.True(t, groupTotal(cart, "g1").Equal(dec("40.00")))
	assert.True(t, cart.PricingApplied())
}

func TestCartLineAllocator_Reallocate_Conservation(t *testing.T) {
	refs := []string{"25.00", "35.00", "19.99", "0.01", "49.95", "12.34"}
	prices := []string{"0", "0.01", "9.99", "39.99", "40.00", "100.00", "123.45"}

	for size := 1; size <= len(refs); size++ {
		for _, price := range prices {
			for bundleQty := 1; bundleQty <= 3; bundleQty++ {
				cart := model.NewCart("s1")
				for i := 0; i < size; i++ {
					slotQty := 1 + i%2
					cart.AddLines(bundleLine(string(rune('a'+i)), "g", slotQty*bundleQty, refs[i], price, bundleQty))
				}

				NewCartLineAllocator().Reallocate(cart)

				want := dec(price).Mul(decimal.NewFromInt(int64(bundleQty)))
				assert.True(t, groupTotal(cart, "g").Equal(want),
					"size=%d price=%s qty=%d got=%s", size, price, bundleQty, groupTotal(cart, "g"))
				for _, l := range cart.Lines {
					assert.False(t, l.Price.UnitPrice.IsNegative())
					assert.False(t, l.Price.LineTotal.IsNegative())
					unitTotal := l.Price.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
					assert.True(t, unitTotal.Equal(l.Price.LineTotal), "unit=%s qty=%d total=%s",
						l.Price.UnitPrice, l.Quantity, l.Price.LineTotal)
				}
			}
		}
	}
}

func TestCartLineAllocator_Reallocate_Idempotent(t *testing.T) {
	cart := model.NewCart("s1")
	cart.AddLines(
		bundleLine("a", "g1", 2, "25.00", "39.99", 2),
		bundleLine("b", "g1", 2, "35.00", "39.99", 2),
		bundleLine("c", "g1", 4, "10.00", "39.99", 2),
	)
	a := NewCartLineAllocator()

	a.Reallocate(cart)
	first := make([]model.LinePrice, len(cart.Lines))
	for i, l := range cart.Lines {
		first[i] = l.Price
	}

	a.Reallocate(cart)
	for i, l := range cart.Lines {
		assert.Equal(t, first[i], l.Price)
	}

	cart.AddLines(model.CartLine{Key: "plain", ProductID: 900, Quantity: 1, CatalogPrice: dec("5.00"),
		Price: model.PlainLinePrice(dec("5.00"), 1)})
	require.False(t, cart.PricingApplied())

	a.Reallocate(cart)
	for i := range first {
		assert.True(t, first[i].UnitPrice.Equal(cart.Lines[i].Price.UnitPrice))
		assert.True(t, first[i].LineTotal.Equal(cart.Lines[i].Price.LineTotal))
	}
}

func TestCartLineAllocator_Reallocate_ShortCircuits(t *testing.T) {
	cart := model.NewCart("s1")
	cart.AddLines(bundleLine("a", "g1", 1, "25.00", "40.00", 1))
	cart.MarkPricingApplied()

	NewCartLineAllocator().Reallocate(cart)

	assert.True(t, cart.Lines[0].Price.LineTotal.Equal(dec("25.00")))
}

func TestCartLineAllocator_Reallocate_DegenerateReferences(t *testing.T) {
	cart := model.NewCart("s1")
	cart.AddLines(
		bundleLine("a", "g1", 1, "0", "10.00", 1),
		bundleLine("b", "g1", 1, "0", "10.00", 1),
		bundleLine("c", "g1", 1, "0", "10.00", 1),
	)

	NewCartLineAllocator().Reallocate(cart)

	assert.True(t, cart.Lines[0].Price.LineTotal.Equal(dec("3.34")))
	assert.True(t, cart.Lines[1].Price.LineTotal.Equal(dec("3.33")))
	assert.True(t, cart.Lines[2].Price.LineTotal.Equal(dec("3.33")))
	assert.True(t, groupTotal(cart, "g1").Equal(dec("10.00")))
}

func TestCartLineAllocator_Reallocate_LeavesPlainLinesAlone(t *testing.T) {
	plain := model.CartLine{
		Key:          "plain",
		ProductID:    201,
		Quantity:     2,
		CatalogPrice: dec("22.50"),
		Price:        model.PlainLinePrice(dec("22.50"), 2),
	}
	member := bundleLine("a", "g1", 1, "25.00", "10.00", 1)
	member.ProductID = 201

	cart := model.NewCart("s1")
	cart.AddLines(plain, member)

	NewCartLineAllocator().Reallocate(cart)

	got, ok := cart.Line("plain")
	require.True(t, ok)
	assert.True(t, got.Price.UnitPrice.Equal(dec("22.50")))
	assert.True(t, got.Price.LineTotal.Equal(dec("45.00")))

	bundled, ok := cart.Line("a")
	require.True(t, ok)
	assert.True(t, bundled.Price.LineTotal.Equal(dec("10.00")))
	assert.True(t, bundled.CatalogPrice.Equal(dec("25.00")))
}

func TestCartLineAllocator_Reallocate_IndependentGroups(t *testing.T) {
	cart := model.NewCart("s1")
	cart.AddLines(
		bundleLine("a", "g1", 1, "25.00", "40.00", 1),
		bundleLine("b", "g2", 1, "25.00", "30.00", 1),
		bundleLine("c", "g1", 1, "35.00", "40.00", 1),
		bundleLine("d", "g2", 1, "25.00", "30.00", 1),
	)

	NewCartLineAllocator().Reallocate(cart)

	assert.True(t, groupTotal(cart, "g1").Equal(dec("40.00")))
	assert.True(t, groupTotal(cart, "g2").Equal(dec("30.00")))
	assert.True(t, cart.Subtotal().Equal(dec("70.00")))
}

func TestCartLineAllocator_Reallocate_FallsBackToRegularPrice(t *testing.T) {
	a := bundleLine("a", "g1", 1, "0", "30.00", 1)
	a.RegularPrice = dec("10.00")
	b := bundleLine("b", "g1", 1, "0", "30.00", 1)
	b.CatalogPrice = dec("20.00")

	cart := model.NewCart("s1")
	cart.AddLines(a, b)

	NewCartLineAllocator().Reallocate(cart)

	assert.True(t, cart.Lines[0].Price.LineTotal.Equal(dec("10.00")))
	assert.True(t, cart.Lines[1].Price.LineTotal.Equal(dec("20.00")))
}

func TestCartLineAllocator_Reallocate_NilCart(t *testing.T) {
	assert.NotPanics(t, func() { NewCartLineAllocator().Reallocate(nil) })
}

func BenchmarkReallocate(b *testing.B) {
	a := NewCartLineAllocator()
	for i := 0; i < b.N; i++ {
		cart := model.NewCart("bench")
		cart.AddLines(
			bundleLine("a", "g1", 2, "25.00", "79.99", 2),
			bundleLine("b", "g1", 2, "35.00", "79.99", 2),
			bundleLine("c", "g1", 4, "12.50", "79.99", 2),
		)
		a.Reallocate(cart)
	}
}
