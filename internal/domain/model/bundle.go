package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalidBundle is returned when a bundle definition fails validation.
var ErrInvalidBundle = errors.New("invalid bundle definition")

// MaxSlotQuantity bounds the per-slot multiplier so that bundle quantity times
// slot quantity stays within the cart line limits.
const MaxSlotQuantity = 10

// BundleDefinition is the static configuration of a bundle product.
//
// @Description Bundle product with ordered slots and a flat price
type BundleDefinition struct {
	// BundleID is the identifier of the purchasable parent product.
	BundleID int64 `bson:"_id" json:"bundle_id" example:"100"`
	// Name is the display name of the bundle
	Name string `bson:"name" json:"name" validate:"required" example:"Training Set"`
	// BundlePrice is the flat amount charged for one bundle instance
	BundlePrice decimal.Decimal `bson:"bundle_price" json:"bundle_price" swaggertype:"string" example:"40.00"`
	// Slots are the ordered bundle positions
	Slots []BundleSlot `bson:"slots" json:"slots" validate:"required,min=1,dive"`
	// Version is incremented on every save
	Version   int       `bson:"version" json:"version" example:"1"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
	UpdatedBy string    `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
} // @name BundleDefinition

// BundleSlot is one configurable position within a bundle.
//
// @Description Bundle slot offering interchangeable color products
type BundleSlot struct {
	// Key is a stable short identifier, unique within the bundle
	Key string `bson:"key" json:"key" validate:"required,max=64" example:"top"`
	// Label is the display string of the slot
	Label string `bson:"label" json:"label" example:"Top"`
	// Quantity is the per-slot multiplier, defaults to 1
	Quantity int `bson:"quantity" json:"quantity" validate:"gte=0,lte=10" example:"1"`
	// AllowedProductIDs are the interchangeable products (colors) for the slot
	AllowedProductIDs []int64 `bson:"allowed_product_ids" json:"allowed_product_ids" validate:"required,min=1,dive,gt=0"`
} // @name BundleSlot

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func bundleValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if tag == "" {
				return f.Name
			}
			return tag
		})
	})
	return validate
}

// Normalize fills defaults: slot quantity 1 and label equal to the key.
func (b *BundleDefinition) Normalize() {
	for i := range b.Slots {
		b.Slots[i].Key = strings.TrimSpace(b.Slots[i].Key)
		if b.Slots[i].Quantity == 0 {
			b.Slots[i].Quantity = 1
		}
		if strings.TrimSpace(b.Slots[i].Label) == "" {
			b.Slots[i].Label = b.Slots[i].Key
		}
	}
}

// Validate checks the definition at admin-save time.
// Errors wrap ErrInvalidBundle.
func (b *BundleDefinition) Validate() error {
	if b.BundleID <= 0 {
		return fmt.Errorf("%w: bundle_id must be positive", ErrInvalidBundle)
	}
	if err := bundleValidator().Struct(b); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed on %s", ErrInvalidBundle, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	if b.BundlePrice.IsNegative() {
		return fmt.Errorf("%w: bundle_price must not be negative", ErrInvalidBundle)
	}

	seen := make(map[string]bool, len(b.Slots))
	for _, s := range b.Slots {
		if seen[s.Key] {
			return fmt.Errorf("%w: duplicate slot key %q", ErrInvalidBundle, s.Key)
		}
		seen[s.Key] = true
		if s.Quantity < 1 || s.Quantity > MaxSlotQuantity {
			return fmt.Errorf("%w: slot %q quantity must be between 1 and %d", ErrInvalidBundle, s.Key, MaxSlotQuantity)
		}
		for _, id := range s.AllowedProductIDs {
			if id == b.BundleID {
				return fmt.Errorf("%w: slot %q cannot offer the bundle itself", ErrInvalidBundle, s.Key)
			}
		}
	}
	return nil
}

// Slot returns the slot with the given key.
func (b *BundleDefinition) Slot(key string) (BundleSlot, bool) {
	for _, s := range b.Slots {
		if s.Key == key {
			return s, true
		}
	}
	return BundleSlot{}, false
}

// Allows reports whether productID is one of the slot's allowed products.
func (s BundleSlot) Allows(productID int64) bool {
	for _, id := range s.AllowedProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}
