package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a placed order.
//
// @Description Placed order with frozen bundle metadata
type Order struct {
	ID        string      `bson:"_id" json:"id" example:"9b2f3a64-0d0c-4a4e-b3b8-7c44e6b1e0a2"`
	SessionID string      `bson:"session_id" json:"-"`
	Lines     []OrderLine `bson:"lines" json:"lines"`
	// Subtotal is the amount charged
	Subtotal decimal.Decimal `bson:"subtotal" json:"subtotal" swaggertype:"string" example:"40.00"`
	// ItemsTotal is the price of all items at reference prices
	ItemsTotal decimal.Decimal `bson:"items_total" json:"items_total" swaggertype:"string" example:"60.00"`
	// Savings is ItemsTotal minus Subtotal, never negative
	Savings   decimal.Decimal `bson:"savings" json:"savings" swaggertype:"string" example:"20.00"`
	Currency  string          `bson:"currency" json:"currency" example:"EUR"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
} // @name Order

// OrderLine is a permanent order line created from a cart line.
//
// @Description Order line
type OrderLine struct {
	ProductID   int64           `bson:"product_id" json:"product_id" example:"201"`
	VariationID int64           `bson:"variation_id,omitempty" json:"variation_id,omitempty" example:"2011"`
	Name        string          `bson:"name" json:"name" example:"Seamless Top Black"`
	Quantity    int             `bson:"quantity" json:"quantity" example:"1"`
	UnitPrice   decimal.Decimal `bson:"unit_price" json:"unit_price" swaggertype:"string" example:"16.67"`
	LineTotal   decimal.Decimal `bson:"line_total" json:"line_total" swaggertype:"string" example:"16.67"`
	// RegularPrice is the regular or current unit price of the unit when added
	RegularPrice decimal.Decimal    `bson:"regular_price" json:"regular_price" swaggertype:"string" example:"25.00"`
	Bundle       *OrderLineSnapshot `bson:"bundle,omitempty" json:"bundle,omitempty"`
} // @name OrderLine

// OrderLineSnapshot freezes bundle grouping and reference prices on an order line.
// It is written once at order placement and never recomputed.
//
// @Description Immutable bundle snapshot of an order line
type OrderLineSnapshot struct {
	GroupID            string          `bson:"group_id" json:"group_id"`
	BundleID           int64           `bson:"bundle_id" json:"bundle_id" example:"100"`
	BundleName         string          `bson:"bundle_name" json:"bundle_name" example:"Training Set"`
	BundlePrice        decimal.Decimal `bson:"bundle_price" json:"bundle_price" swaggertype:"string" example:"40.00"`
	BundleQuantity     int             `bson:"bundle_quantity" json:"bundle_quantity" example:"1"`
	SlotKey            string          `bson:"slot_key" json:"slot_key" example:"top"`
	SlotLabel          string          `bson:"slot_label" json:"slot_label" example:"Top"`
	ReferenceUnitPrice decimal.Decimal `bson:"reference_unit_price" json:"reference_unit_price" swaggertype:"string" example:"25.00"`
	ReferenceLineTotal decimal.Decimal `bson:"reference_line_total" json:"reference_line_total" swaggertype:"string" example:"25.00"`
} // @name OrderLineSnapshot

// GroupSummary is the display aggregate of one bundle group on a cart, checkout or order.
//
// @Description Bundle group totals
type GroupSummary struct {
	GroupID        string `json:"group_id"`
	BundleID       int64  `json:"bundle_id" example:"100"`
	BundleName     string `json:"bundle_name" example:"Training Set"`
	BundleQuantity int    `json:"bundle_quantity" example:"1"`
	// ItemsTotal is the price of all items at reference prices
	ItemsTotal decimal.Decimal `json:"items_total" swaggertype:"string" example:"60.00"`
	// BundlePrice is the configured price of one bundle
	BundlePrice decimal.Decimal `json:"bundle_price" swaggertype:"string" example:"40.00"`
	// ChargedTotal is the sum of the allocated line totals
	ChargedTotal decimal.Decimal `json:"charged_total" swaggertype:"string" example:"40.00"`
	// Savings is ItemsTotal minus ChargedTotal, zero unless positive
	Savings decimal.Decimal `json:"savings" swaggertype:"string" example:"20.00"`
	Lines   int             `json:"lines" example:"2"`
} // @name GroupSummary
