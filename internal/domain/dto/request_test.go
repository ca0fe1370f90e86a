package dto

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/bundle-service/internal/domain/model"
)

func TestAddBundleRequest_Selections(t *testing.T) {
	tests := []struct {
		name     string
		request  AddBundleRequest
		expected []model.VariantSelection
	}{
		{
			name:     "no items",
			request:  AddBundleRequest{BundleID: 100},
			expected: []model.VariantSelection{},
		},
		{
			name: "items ordered by slot key",
			request: AddBundleRequest{
				BundleID: 100,
				Items: map[string]SlotSelection{
					"top":    {ProductID: 201, VariationID: 2011},
					"bottom": {ProductID: 301},
				},
			},
			expected: []model.VariantSelection{
				{SlotKey: "bottom", ProductID: 301},
				{SlotKey: "top", ProductID: 201, VariationID: 2011},
			},
		},
		{
			name: "slot keys are trimmed",
			request: AddBundleRequest{
				Items: map[string]SlotSelection{" top ": {ProductID: 201}},
			},
			expected: []model.VariantSelection{{SlotKey: "top", ProductID: 201}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.request.Selections())
		})
	}
}

func TestAddBundleRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		items   map[string]SlotSelection
		wantErr bool
	}{
		{name: "no items", items: nil},
		{name: "unselected slot is allowed", items: map[string]SlotSelection{"top": {}}},
		{name: "valid selection", items: map[string]SlotSelection{"top": {ProductID: 201, VariationID: 2011}}},
		{name: "blank slot key", items: map[string]SlotSelection{"  ": {ProductID: 201}}, wantErr: true},
		{name: "negative product", items: map[string]SlotSelection{"top": {ProductID: -1}}, wantErr: true},
		{name: "negative variation", items: map[string]SlotSelection{"top": {ProductID: 201, VariationID: -5}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := AddBundleRequest{BundleID: 100, Items: tt.items}
			err := req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestSaveBundleRequest_ToModel(t *testing.T) {
	req := SaveBundleRequest{
		Name:        "  Training Set ",
		BundlePrice: decimal.RequireFromString("40.00"),
		Slots: []model.BundleSlot{
			{Key: "top", AllowedProductIDs: []int64{201, 202}},
		},
	}

	def := req.ToModel(100)
	require.NotNil(t, def)
	assert.Equal(t, int64(100), def.BundleID)
	assert.Equal(t, "Training Set", def.Name)
	assert.True(t, def.BundlePrice.Equal(decimal.RequireFromString("40")))
	require.Len(t, def.Slots, 1)

	def.Slots[0].Key = "changed"
	assert.Equal(t, "top", req.Slots[0].Key, "model slots must not alias the request")
}

func TestUpsertProductRequest_ToModel(t *testing.T) {
	req := UpsertProductRequest{
		Name:         "Socks",
		Purchasable:  true,
		InStock:      true,
		CurrentPrice: decimal.RequireFromString("10.00"),
	}

	p := req.ToModel(401)
	assert.Equal(t, int64(401), p.ID)
	assert.Equal(t, "Socks", p.Name)
	assert.True(t, p.Purchasable)
	assert.False(t, p.IsVariable())
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name          string
		validationErr *ValidationError
		expected      string
	}{
		{
			name: "validation error message format",
			validationErr: &ValidationError{
				Field:   "quantity",
				Message: "must be positive",
			},
			expected: "quantity: must be positive",
		},
		{
			name: "validation error with different field",
			validationErr: &ValidationError{
				Field:   "item_product[top]",
				Message: "must be a product id",
			},
			expected: "item_product[top]: must be a product id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.validationErr.Error())
		})
	}
}
