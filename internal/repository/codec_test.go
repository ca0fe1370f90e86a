package repository

import (
	"testing"

	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDecimalCodec_RoundTrip(t *testing.T) {
	reg := newRegistry()
	in := model.OrderLineSnapshot{
		GroupID:            "g1",
		BundlePrice:        decimal.RequireFromString("40.00"),
		ReferenceUnitPrice: decimal.RequireFromString("16.67"),
		ReferenceLineTotal: decimal.RequireFromString("33.34"),
	}

	raw, err := bson.MarshalWithRegistry(reg, in)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	_, isDecimal128 := doc["bundle_price"].(primitive.Decimal128)
	assert.True(t, isDecimal128)

	var out model.OrderLineSnapshot
	require.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &out))
	assert.True(t, in.BundlePrice.Equal(out.BundlePrice))
	assert.True(t, in.ReferenceUnitPrice.Equal(out.ReferenceUnitPrice))
	assert.True(t, in.ReferenceLineTotal.Equal(out.ReferenceLineTotal))
}

func TestDecimalCodec_DecodesLegacyTypes(t *testing.T) {
	reg := newRegistry()
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"string", "25.50", "25.5"},
		{"double", 12.25, "12.25"},
		{"int32", int32(7), "7"},
		{"int64", int64(9), "9"},
		{"null", nil, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"regular_price": tt.value})
			require.NoError(t, err)

			var p model.Product
			require.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &p))
			assert.Equal(t, tt.want, p.RegularPrice.String())
		})
	}
}
