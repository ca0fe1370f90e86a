package http

import (
	"errors"
	"net/http"

	"github.com/guttosm/bundle-service/internal/circuitbreaker"
	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/guttosm/bundle-service/internal/i18n"
	"github.com/guttosm/bundle-service/internal/repository"
	"github.com/guttosm/bundle-service/internal/service"
)

// rejectionKeys maps resolver rejection reasons to message keys.
var rejectionKeys = map[service.RejectionReason]string{
	service.ReasonMissingColor:   i18n.ErrKeyMissingColor,
	service.ReasonMissingSize:    i18n.ErrKeyMissingSize,
	service.ReasonOutOfStock:     i18n.ErrKeyOutOfStock,
	service.ReasonNotPurchasable: i18n.ErrKeyNotPurchasable,
}

// serviceErrors maps sentinel service errors to a status and message key.
var serviceErrors = []struct {
	err    error
	status int
	key    string
}{
	{service.ErrBundleNotFound, http.StatusNotFound, i18n.ErrKeyBundleNotFound},
	{service.ErrOrderNotFound, http.StatusNotFound, i18n.ErrKeyOrderNotFound},
	{service.ErrLineNotFound, http.StatusNotFound, i18n.ErrKeyLineNotFound},
	{service.ErrProductNotFound, http.StatusNotFound, i18n.ErrKeyProductNotFound},
	{service.ErrBundleNotConfigured, http.StatusUnprocessableEntity, i18n.ErrKeyBundleNotConfigured},
	{service.ErrBundleQuantityLocked, http.StatusConflict, i18n.ErrKeyBundleQuantityLocked},
	{service.ErrProductNotPurchasable, http.StatusUnprocessableEntity, i18n.ErrKeyProductNotPurchasable},
	{service.ErrCartEmpty, http.StatusUnprocessableEntity, i18n.ErrKeyCartEmpty},
	{service.ErrInvalidQuantity, http.StatusBadRequest, i18n.ErrKeyInvalidQuantity},
	{service.ErrInvalidProduct, http.StatusBadRequest, i18n.ErrKeyInvalidProduct},
	{model.ErrInvalidBundle, http.StatusBadRequest, i18n.ErrKeyInvalidBundle},
	{service.ErrCSRFInvalid, http.StatusForbidden, i18n.ErrKeyCSRFInvalid},
	{service.ErrRepositoryNotConfigured, http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable},
	{repository.ErrCartStoreUnavailable, http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable},
	{circuitbreaker.ErrCircuitOpen, http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable},
}

// respondServiceError translates a service error into the matching API error response.
func respondServiceError(builder *ResponseBuilder, err error) {
	if rej, ok := service.AsRejection(err); ok {
		key, known := rejectionKeys[rej.Reason]
		if !known {
			key = i18n.ErrKeyInvalidRequest
		}
		builder.ErrorWithDetails(http.StatusUnprocessableEntity, key, err, map[string]string{
			"reason":     string(rej.Reason),
			"slot":       rej.SlotKey,
			"slot_label": rej.SlotLabel,
		})
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			builder.Error(m.status, m.key, err)
			return
		}
	}

	builder.Error(http.StatusInternalServerError, i18n.ErrKeyInternalError, err)
}
