package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LinePrice is the pricing state owned by a single cart line.
// It is held by value so writes never leak into other lines.
type LinePrice struct {
	UnitPrice decimal.Decimal `json:"unit_price" swaggertype:"string" example:"16.67"`
	LineTotal decimal.Decimal `json:"line_total" swaggertype:"string" example:"16.67"`
} // @name LinePrice

// PlainLinePrice prices a line at its catalog unit price.
func PlainLinePrice(unit decimal.Decimal, quantity int) LinePrice {
	return LinePrice{
		UnitPrice: unit,
		LineTotal: unit.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// BundleLineMeta groups a cart line with the other lines of one bundle purchase.
//
// @Description Bundle grouping metadata of a cart line
type BundleLineMeta struct {
	// GroupID is shared by every line produced by one bundle add-to-cart
	GroupID        string          `json:"group_id" example:"5f0c8a52-4f7b-4d8e-9a61-2f3f1c2d9e10"`
	BundleID       int64           `json:"bundle_id" example:"100"`
	BundleName     string          `json:"bundle_name" example:"Training Set"`
	BundlePrice    decimal.Decimal `json:"bundle_price" swaggertype:"string" example:"40.00"`
	BundleQuantity int             `json:"bundle_quantity" example:"1"`
	SlotKey        string          `json:"slot_key" example:"top"`
	SlotLabel      string          `json:"slot_label" example:"Top"`
	SlotQuantity   int             `json:"slot_quantity" example:"1"`
	// ReferenceUnitPrice is the undiscounted unit price captured when the line was added
	ReferenceUnitPrice decimal.Decimal `json:"reference_unit_price" swaggertype:"string" example:"25.00"`
} // @name BundleLineMeta

// CartLine is one line of a customer cart.
//
// @Description Cart line
type CartLine struct {
	Key         string `json:"key" example:"3c1f6a0e-1b7e-4f09-8f55-8f2b3e4a1c77"`
	ProductID   int64  `json:"product_id" example:"201"`
	VariationID int64  `json:"variation_id,omitempty" example:"2011"`
	Name        string `json:"name" example:"Seamless Top Black"`
	Quantity    int    `json:"quantity" example:"1"`
	// CatalogPrice is the current unit price of the resolved unit when added
	CatalogPrice decimal.Decimal `json:"catalog_price" swaggertype:"string" example:"22.50"`
	// RegularPrice is the regular unit price when added, zero when not configured
	RegularPrice decimal.Decimal `json:"regular_price" swaggertype:"string" example:"25.00"`
	// Price is the effective price charged for the line
	Price  LinePrice       `json:"price"`
	Bundle *BundleLineMeta `json:"bundle,omitempty"`
} // @name CartLine

// InBundle reports whether the line belongs to a bundle group.
func (l CartLine) InBundle() bool {
	return l.Bundle != nil && l.Bundle.GroupID != ""
}

// GroupID returns the bundle group id, empty for plain lines.
func (l CartLine) GroupID() string {
	if l.Bundle == nil {
		return ""
	}
	return l.Bundle.GroupID
}

// LineHook observes a cart mutation. Hooks may mutate the cart.
type LineHook func(c *Cart, line CartLine)

// Cart is a customer's session cart.
//
// Only SessionID, Lines and UpdatedAt are persisted. Hooks and the pricing
// flag live for the lifetime of one loaded cart instance.
type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`

	pricingApplied bool
	onAdded        []LineHook
	onRemoved      []LineHook
}

// NewCart returns an empty cart for the session.
func NewCart(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Lines: []CartLine{}}
}

// OnLineAdded registers a hook fired after each line insertion.
func (c *Cart) OnLineAdded(h LineHook) {
	c.onAdded = append(c.onAdded, h)
}

// OnLineRemoved registers a hook fired after each line removal.
func (c *Cart) OnLineRemoved(h LineHook) {
	c.onRemoved = append(c.onRemoved, h)
}

// PricingApplied reports whether allocation already ran since the last mutation.
func (c *Cart) PricingApplied() bool {
	return c.pricingApplied
}

// MarkPricingApplied records that allocation ran for the current contents.
func (c *Cart) MarkPricingApplied() {
	c.pricingApplied = true
}

func (c *Cart) touch() {
	c.pricingApplied = false
	c.UpdatedAt = time.Now().UTC()
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) indexOf(key string) int {
	for i := range c.Lines {
		if c.Lines[i].Key == key {
			return i
		}
	}
	return -1
}

// Line returns a copy of the line with the given key.
func (c *Cart) Line(key string) (CartLine, bool) {
	if i := c.indexOf(key); i >= 0 {
		return c.Lines[i], true
	}
	return CartLine{}, false
}

// AddLines appends all lines, then fires the add hooks for each one.
func (c *Cart) AddLines(lines ...CartLine) {
	if len(lines) == 0 {
		return
	}
	c.Lines = append(c.Lines, lines...)
	c.touch()
	for _, l := range lines {
		for _, h := range c.onAdded {
			h(c, l)
		}
	}
}

// Remove deletes the line with the given key and fires the removal hooks.
// It returns false when no such line exists.
func (c *Cart) Remove(key string) bool {
	i := c.indexOf(key)
	if i < 0 {
		return false
	}
	removed := c.Lines[i]
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	c.touch()
	for _, h := range c.onRemoved {
		h(c, removed)
	}
	return true
}

// SetQuantity changes a line's quantity without any rule checks.
// Plain lines are repriced at their catalog price.
func (c *Cart) SetQuantity(key string, quantity int) bool {
	i := c.indexOf(key)
	if i < 0 {
		return false
	}
	c.Lines[i].Quantity = quantity
	if !c.Lines[i].InBundle() {
		c.Lines[i].Price = PlainLinePrice(c.Lines[i].CatalogPrice, quantity)
	}
	c.touch()
	return true
}

// Empty removes every line without firing removal hooks.
func (c *Cart) Empty() {
	c.Lines = []CartLine{}
	c.touch()
}

// LinesInGroup returns copies of the lines sharing groupID, in cart order.
func (c *Cart) LinesInGroup(groupID string) []CartLine {
	var out []CartLine
	for _, l := range c.Lines {
		if groupID != "" && l.GroupID() == groupID {
			out = append(out, l)
		}
	}
	return out
}

// CountProduct returns the total quantity of productID across all lines.
func (c *Cart) CountProduct(productID int64) int {
	n := 0
	for _, l := range c.Lines {
		if l.ProductID == productID {
			n += l.Quantity
		}
	}
	return n
}

// FindPlainLine returns the key of a non-bundle line for the same unit.
func (c *Cart) FindPlainLine(productID, variationID int64) (string, bool) {
	for _, l := range c.Lines {
		if !l.InBundle() && l.ProductID == productID && l.VariationID == variationID {
			return l.Key, true
		}
	}
	return "", false
}

// Subtotal returns the sum of every line's charged total.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Price.LineTotal)
	}
	return total
}
