package model

import "github.com/shopspring/decimal"

// BundleForm is the add-to-cart form of a bundle after catalog validation.
// Only slots with at least one resolvable product are present.
//
// @Description Bundle add-to-cart form
type BundleForm struct {
	BundleID    int64           `json:"bundle_id" example:"100"`
	Name        string          `json:"name" example:"Training Set"`
	BundlePrice decimal.Decimal `json:"bundle_price" swaggertype:"string" example:"40.00"`
	Slots       []FormSlot      `json:"slots"`
	// ItemsTotal is the sum of the cheapest reference price per slot
	ItemsTotal decimal.Decimal `json:"items_total" swaggertype:"string" example:"60.00"`
} // @name BundleForm

// FormSlot is one selectable slot of a bundle form.
type FormSlot struct {
	Key      string       `json:"key" example:"top"`
	Label    string       `json:"label" example:"Top"`
	Quantity int          `json:"quantity" example:"1"`
	Options  []FormOption `json:"options"`
} // @name FormSlot

// FormOption is a color product offered by a slot.
type FormOption struct {
	ProductID      int64           `json:"product_id" example:"201"`
	Name           string          `json:"name" example:"Seamless Top Black"`
	InStock        bool            `json:"in_stock" example:"true"`
	ReferencePrice decimal.Decimal `json:"reference_price" swaggertype:"string" example:"25.00"`
	// Sizes lists the purchasable variations, empty for simple products
	Sizes []FormSize `json:"sizes,omitempty"`
} // @name FormOption

// FormSize is a purchasable variation of a form option.
type FormSize struct {
	VariationID    int64             `json:"variation_id" example:"2011"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	InStock        bool              `json:"in_stock" example:"true"`
	ReferencePrice decimal.Decimal   `json:"reference_price" swaggertype:"string" example:"25.00"`
} // @name FormSize

// Slot returns the form slot with the given key.
func (f *BundleForm) Slot(key string) (FormSlot, bool) {
	for _, s := range f.Slots {
		if s.Key == key {
			return s, true
		}
	}
	return FormSlot{}, false
}

// Offers reports whether productID is a selectable option of the slot.
func (s FormSlot) Offers(productID int64) bool {
	for _, o := range s.Options {
		if o.ProductID == productID {
			return true
		}
	}
	return false
}
