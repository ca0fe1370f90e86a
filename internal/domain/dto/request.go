// Package dto defines Data Transfer Objects for HTTP request and response handling.
//
// DTOs are used to decouple the HTTP layer from the domain model,
// providing validation and serialization for API communication.
package dto

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/guttosm/bundle-service/internal/domain/model"
)

// SlotSelection is the customer's color and size choice for one slot.
type SlotSelection struct {
	ProductID   int64 `json:"product_id" example:"201"`
	VariationID int64 `json:"variation_id,omitempty" example:"2011"`
} // @name SlotSelection

// AddBundleRequest represents the JSON body of a bundle add-to-cart submission.
// The form-encoded variant uses the fields add-to-cart, quantity,
// item_product[<slot>], item_variation[<slot>] and _csrf.
//
// @Description Bundle add-to-cart submission
type AddBundleRequest struct {
	// BundleID is the bundle parent product id
	BundleID int64 `json:"bundle_id" binding:"required,gt=0" example:"100"`
	// Quantity is the number of bundle instances, defaults to 1
	Quantity int `json:"quantity" binding:"gte=0" example:"1"`
	// Items maps slot keys to selections
	Items map[string]SlotSelection `json:"items"`
} // @name AddBundleRequest

// Validate checks the shape of the submitted items. Missing selections are not an
// error here, the resolver reports them per slot.
func (r *AddBundleRequest) Validate() error {
	for key, item := range r.Items {
		if strings.TrimSpace(key) == "" {
			return &ValidationError{Field: "items", Message: "slot key must not be empty"}
		}
		if item.ProductID < 0 || item.VariationID < 0 {
			return &ValidationError{Field: "items." + key, Message: "ids must not be negative"}
		}
	}
	return nil
}

// Selections returns the items as variant selections ordered by slot key.
func (r *AddBundleRequest) Selections() []model.VariantSelection {
	keys := make([]string, 0, len(r.Items))
	for k := range r.Items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]model.VariantSelection, 0, len(keys))
	for _, k := range keys {
		item := r.Items[k]
		out = append(out, model.VariantSelection{
			SlotKey:     strings.TrimSpace(k),
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
		})
	}
	return out
}

// AddItemRequest represents the generic add-to-cart body.
//
// @Description Generic add-to-cart request
type AddItemRequest struct {
	ProductID   int64 `json:"product_id" binding:"required,gt=0" example:"401"`
	VariationID int64 `json:"variation_id,omitempty" binding:"gte=0" example:"0"`
	Quantity    int   `json:"quantity" binding:"required,gt=0" example:"1"`
} // @name AddItemRequest

// UpdateItemRequest represents a cart line quantity change. Zero removes the line.
//
// @Description Cart line quantity change
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0" example:"2"`
} // @name UpdateItemRequest

// SaveBundleRequest represents an admin bundle definition write.
//
// @Description Bundle definition authoring request
type SaveBundleRequest struct {
	Name        string             `json:"name" binding:"required" example:"Training Set"`
	BundlePrice decimal.Decimal    `json:"bundle_price" swaggertype:"string" example:"40.00"`
	Slots       []model.BundleSlot `json:"slots" binding:"required,min=1"`
} // @name SaveBundleRequest

// ToModel builds the bundle definition for the given parent product id.
func (r *SaveBundleRequest) ToModel(bundleID int64) *model.BundleDefinition {
	slots := make([]model.BundleSlot, len(r.Slots))
	copy(slots, r.Slots)
	return &model.BundleDefinition{
		BundleID:    bundleID,
		Name:        strings.TrimSpace(r.Name),
		BundlePrice: r.BundlePrice,
		Slots:       slots,
	}
}

// UpsertProductRequest represents an admin catalog product write.
//
// @Description Catalog product seeding request
type UpsertProductRequest struct {
	Name         string            `json:"name" binding:"required" example:"Seamless Top Black"`
	Purchasable  bool              `json:"purchasable" example:"true"`
	InStock      bool              `json:"in_stock" example:"true"`
	RegularPrice decimal.Decimal   `json:"regular_price" swaggertype:"string" example:"25.00"`
	CurrentPrice decimal.Decimal   `json:"current_price" swaggertype:"string" example:"22.50"`
	Variations   []model.Variation `json:"variations,omitempty"`
} // @name UpsertProductRequest

// ToModel builds the catalog product for the given id.
func (r *UpsertProductRequest) ToModel(id int64) *model.Product {
	return &model.Product{
		ID:           id,
		Name:         strings.TrimSpace(r.Name),
		Purchasable:  r.Purchasable,
		InStock:      r.InStock,
		RegularPrice: r.RegularPrice,
		CurrentPrice: r.CurrentPrice,
		Variations:   append([]model.Variation(nil), r.Variations...),
	}
}

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
