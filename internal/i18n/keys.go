// Package i18n provides internationalization support for the bundle service.
package i18n

// Error message translation keys.
const (
	// ErrKeyInvalidRequest indicates an invalid request.
	ErrKeyInvalidRequest = "error.invalid_request"
	// ErrKeyInvalidRequestBody indicates an invalid request body.
	ErrKeyInvalidRequestBody = "error.invalid_request_body"
	// ErrKeyInternalError indicates an internal server error.
	ErrKeyInternalError = "error.internal_error"
	// ErrKeyUnauthorized indicates missing or invalid authentication.
	ErrKeyUnauthorized = "error.unauthorized"
	// ErrKeyAPIKeyRequired indicates that an API key is required.
	ErrKeyAPIKeyRequired = "error.api_key_required"
	// ErrKeyInvalidAPIKey indicates an invalid API key.
	ErrKeyInvalidAPIKey = "error.invalid_api_key"
	// ErrKeyForbidden indicates insufficient permissions.
	ErrKeyForbidden = "error.forbidden"
	// ErrKeyNotFound indicates a resource was not found.
	ErrKeyNotFound = "error.not_found"
	// ErrKeyRateLimitExceeded indicates rate limit exceeded.
	ErrKeyRateLimitExceeded = "error.rate_limit_exceeded"
	// ErrKeyConflict indicates a conflict with current state.
	ErrKeyConflict = "error.conflict"
	// ErrKeyTimeout indicates a request timeout.
	ErrKeyTimeout = "error.timeout"
	// ErrKeyServiceUnavailable indicates a backing store is down.
	ErrKeyServiceUnavailable = "error.service_unavailable"
	// ErrKeyCSRFInvalid indicates a missing or expired form token.
	ErrKeyCSRFInvalid = "error.csrf_invalid"
	// ErrKeySessionRequired indicates the cart session cookie is missing.
	ErrKeySessionRequired = "error.session_required"
)

// Cart and bundle message translation keys.
const (
	ErrKeyBundleNotFound        = "error.bundle_not_found"
	ErrKeyBundleNotConfigured   = "error.bundle_not_configured"
	ErrKeyBundleQuantityLocked  = "error.bundle_quantity_locked"
	ErrKeyMissingColor          = "error.missing_color"
	ErrKeyMissingSize           = "error.missing_size"
	ErrKeyOutOfStock            = "error.out_of_stock"
	ErrKeyNotPurchasable        = "error.not_purchasable"
	ErrKeyInvalidQuantity       = "error.invalid_quantity"
	ErrKeyCartEmpty             = "error.cart_empty"
	ErrKeyLineNotFound          = "error.line_not_found"
	ErrKeyProductNotFound       = "error.product_not_found"
	ErrKeyProductNotPurchasable = "error.product_not_purchasable"
	ErrKeyOrderNotFound         = "error.order_not_found"
	ErrKeyInvalidBundle         = "error.invalid_bundle"
	ErrKeyInvalidProduct        = "error.invalid_product"
)

// Success message translation keys.
const (
	// SuccessKeyBundleAdded indicates a bundle was added to the cart.
	SuccessKeyBundleAdded = "success.bundle_added"
	// SuccessKeyOrderPlaced indicates a successful checkout.
	SuccessKeyOrderPlaced = "success.order_placed"
)
