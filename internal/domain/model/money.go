// Package model defines the core domain entities for the bundle service.
package model

import "github.com/shopspring/decimal"

// DefaultDecimals is the number of minor-unit digits used when none is configured.
const DefaultDecimals = 2

// ToMinorUnits converts an amount to integer minor units, rounding half away from zero.
//
// With decimals=2, 40.00 becomes 4000 and 16.665 becomes 1667.
func ToMinorUnits(amount decimal.Decimal, decimals int) int64 {
	return amount.Shift(int32(decimals)).Round(0).IntPart()
}

// FromMinorUnits converts integer minor units back to a decimal amount.
func FromMinorUnits(units int64, decimals int) decimal.Decimal {
	return decimal.New(units, -int32(decimals))
}

// NonNegative clamps negative amounts to zero.
func NonNegative(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
