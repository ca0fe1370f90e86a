package service

import (
	"errors"
	"fmt"
)

var (
	// ErrRepositoryNotConfigured is returned when the repository is not configured.
	ErrRepositoryNotConfigured = errors.New("repository not configured")
	// ErrBundleNotFound is returned when the product is not a configured bundle.
	ErrBundleNotFound = errors.New("bundle not found")
	// ErrBundleNotConfigured is returned when no slot of a bundle can be offered.
	ErrBundleNotConfigured = errors.New("bundle is not configured")
	// ErrBundleQuantityLocked is returned on a quantity change of a bundle line.
	ErrBundleQuantityLocked = errors.New("bundle item quantity cannot be changed")
	// ErrInvalidQuantity is returned for negative or oversized quantities.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrCartEmpty is returned when checking out an empty cart.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrLineNotFound is returned when a cart line key is unknown.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrProductNotFound is returned when a catalog product is unknown.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidProduct is returned when a catalog product fails validation.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrProductNotPurchasable is returned by the generic add path.
	ErrProductNotPurchasable = errors.New("product cannot be purchased")
	// ErrOrderNotFound is returned when an order id is unknown.
	ErrOrderNotFound = errors.New("order not found")
	// ErrCSRFInvalid is returned when a submission token is missing, expired or bound to another session.
	ErrCSRFInvalid = errors.New("invalid or expired form token")
)

// RejectionReason classifies why a bundle submission was refused.
type RejectionReason string

const (
	ReasonMissingColor   RejectionReason = "missing_color"
	ReasonMissingSize    RejectionReason = "missing_size"
	ReasonOutOfStock     RejectionReason = "out_of_stock"
	ReasonNotPurchasable RejectionReason = "not_purchasable"
)

// RejectionError reports the first slot that could not be resolved.
type RejectionError struct {
	Reason    RejectionReason
	SlotKey   string
	SlotLabel string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("slot %q rejected: %s", e.SlotKey, e.Reason)
}

func reject(reason RejectionReason, key, label string) *RejectionError {
	return &RejectionError{Reason: reason, SlotKey: key, SlotLabel: label}
}

// AsRejection extracts a RejectionError from err.
func AsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
