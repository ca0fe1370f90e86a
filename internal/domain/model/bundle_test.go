package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBundle() BundleDefinition {
	return BundleDefinition{
		BundleID:    100,
		Name:        "Training Set",
		BundlePrice: decimal.RequireFromString("40.00"),
		Slots: []BundleSlot{
			{Key: "top", Label: "Top", Quantity: 1, AllowedProductIDs: []int64{201, 202}},
			{Key: "bottom", Label: "Bottom", Quantity: 1, AllowedProductIDs: []int64{301}},
		},
	}
}

func TestBundleDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *BundleDefinition)
		wantErr bool
	}{
		{name: "valid bundle", mutate: func(b *BundleDefinition) {}},
		{name: "missing bundle id", mutate: func(b *BundleDefinition) { b.BundleID = 0 }, wantErr: true},
		{name: "missing name", mutate: func(b *BundleDefinition) { b.Name = "" }, wantErr: true},
		{name: "no slots", mutate: func(b *BundleDefinition) { b.Slots = nil }, wantErr: true},
		{name: "negative price", mutate: func(b *BundleDefinition) { b.BundlePrice = decimal.NewFromInt(-1) }, wantErr: true},
		{name: "zero price allowed", mutate: func(b *BundleDefinition) { b.BundlePrice = decimal.Zero }},
		{name: "slot without allowed products", mutate: func(b *BundleDefinition) { b.Slots[0].AllowedProductIDs = nil }, wantErr: true},
		{name: "slot with non-positive product id", mutate: func(b *BundleDefinition) { b.Slots[0].AllowedProductIDs = []int64{0} }, wantErr: true},
		{name: "slot with empty key", mutate: func(b *BundleDefinition) { b.Slots[0].Key = "" }, wantErr: true},
		{name: "duplicate slot keys", mutate: func(b *BundleDefinition) { b.Slots[1].Key = "top" }, wantErr: true},
		{name: "negative slot quantity", mutate: func(b *BundleDefinition) { b.Slots[0].Quantity = -2 }, wantErr: true},
		{name: "max slot quantity", mutate: func(b *BundleDefinition) { b.Slots[0].Quantity = MaxSlotQuantity }},
		{name: "slot quantity above max", mutate: func(b *BundleDefinition) { b.Slots[0].Quantity = MaxSlotQuantity + 1 }, wantErr: true},
		{name: "huge slot quantity", mutate: func(b *BundleDefinition) { b.Slots[0].Quantity = 1 << 62 }, wantErr: true},
		{name: "slot offering the bundle itself", mutate: func(b *BundleDefinition) { b.Slots[0].AllowedProductIDs = []int64{100} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBundle()
			tt.mutate(&b)

			err := b.Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidBundle)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBundleDefinition_Normalize(t *testing.T) {
	b := BundleDefinition{
		BundleID: 1,
		Name:     "Set",
		Slots: []BundleSlot{
			{Key: " top ", AllowedProductIDs: []int64{2}},
			{Key: "socks", Label: "Socks", Quantity: 3, AllowedProductIDs: []int64{3}},
		},
	}

	b.Normalize()

	assert.Equal(t, "top", b.Slots[0].Key)
	assert.Equal(t, "top", b.Slots[0].Label)
	assert.Equal(t, 1, b.Slots[0].Quantity)
	assert.Equal(t, 3, b.Slots[1].Quantity)
	assert.NoError(t, b.Validate())
}

func TestBundleDefinition_Slot(t *testing.T) {
	b := validBundle()

	slot, ok := b.Slot("bottom")
	require.True(t, ok)
	assert.True(t, slot.Allows(301))
	assert.False(t, slot.Allows(201))

	_, ok = b.Slot("missing")
	assert.False(t, ok)
}
