package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int
		want     int64
	}{
		{"whole amount", "40.00", 2, 4000},
		{"rounds half up", "16.665", 2, 1667},
		{"rounds down", "16.664", 2, 1666},
		{"zero decimals", "39.6", 0, 40},
		{"three decimals", "1.2345", 3, 1235},
		{"zero", "0", 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToMinorUnits(decimal.RequireFromString(tt.amount), tt.decimals)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	assert.True(t, decimal.RequireFromString("16.67").Equal(FromMinorUnits(1667, 2)))
	assert.True(t, decimal.RequireFromString("1.667").Equal(FromMinorUnits(1667, 3)))
	assert.Equal(t, "16.67", FromMinorUnits(1667, 2).StringFixed(2))
}

func TestNonNegative(t *testing.T) {
	assert.True(t, NonNegative(decimal.NewFromInt(-5)).IsZero())
	assert.True(t, NonNegative(decimal.NewFromInt(5)).Equal(decimal.NewFromInt(5)))
}
