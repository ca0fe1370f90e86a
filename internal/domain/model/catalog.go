package model

import "github.com/shopspring/decimal"

// Product is the catalog view of a product a bundle can reference.
//
// @Description Catalog product
type Product struct {
	ID          int64  `bson:"_id" json:"id" example:"201"`
	Name        string `bson:"name" json:"name" example:"Seamless Top Black"`
	Purchasable bool   `bson:"purchasable" json:"purchasable" example:"true"`
	InStock     bool   `bson:"in_stock" json:"in_stock" example:"true"`
	// RegularPrice is the undiscounted price, zero when not configured
	RegularPrice decimal.Decimal `bson:"regular_price" json:"regular_price" swaggertype:"string" example:"25.00"`
	// CurrentPrice is the effective selling price
	CurrentPrice decimal.Decimal `bson:"current_price" json:"current_price" swaggertype:"string" example:"22.50"`
	// Variations are the size variants, empty for simple products
	Variations []Variation `bson:"variations,omitempty" json:"variations,omitempty"`
} // @name Product

// Variation is a purchasable variant (size) of a product.
//
// @Description Product variation
type Variation struct {
	ID           int64             `bson:"_id" json:"id" example:"2011"`
	ParentID     int64             `bson:"parent_id" json:"parent_id" example:"201"`
	Purchasable  bool              `bson:"purchasable" json:"purchasable" example:"true"`
	InStock      bool              `bson:"in_stock" json:"in_stock" example:"true"`
	RegularPrice decimal.Decimal   `bson:"regular_price" json:"regular_price" swaggertype:"string" example:"25.00"`
	CurrentPrice decimal.Decimal   `bson:"current_price" json:"current_price" swaggertype:"string" example:"25.00"`
	Attributes   map[string]string `bson:"attributes,omitempty" json:"attributes,omitempty"`
} // @name Variation

// IsVariable reports whether the product is sold through variations.
func (p *Product) IsVariable() bool {
	return len(p.Variations) > 0
}

// HasPurchasableVariation reports whether at least one variation can be bought.
func (p *Product) HasPurchasableVariation() bool {
	for _, v := range p.Variations {
		if v.Purchasable {
			return true
		}
	}
	return false
}

// Variation returns the variation with the given id.
func (p *Product) Variation(id int64) (Variation, bool) {
	for _, v := range p.Variations {
		if v.ID == id {
			return v, true
		}
	}
	return Variation{}, false
}

// ReferencePrice returns the regular price, or the current price when no regular price is set.
func (p *Product) ReferencePrice() decimal.Decimal {
	return referencePrice(p.RegularPrice, p.CurrentPrice)
}

// ReferencePrice returns the regular price, or the current price when no regular price is set.
func (v Variation) ReferencePrice() decimal.Decimal {
	return referencePrice(v.RegularPrice, v.CurrentPrice)
}

func referencePrice(regular, current decimal.Decimal) decimal.Decimal {
	if regular.IsPositive() {
		return regular
	}
	return current
}

// VariantSelection is the customer's choice for one slot.
type VariantSelection struct {
	SlotKey     string `bson:"slot_key" json:"slot_key"`
	ProductID   int64  `bson:"product_id" json:"product_id"`
	VariationID int64  `bson:"variation_id,omitempty" json:"variation_id,omitempty"`
}
