package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/bundle-service/internal/domain/dto"
	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/guttosm/bundle-service/internal/i18n"
	"github.com/guttosm/bundle-service/internal/middleware"
	"github.com/guttosm/bundle-service/internal/service"
)

// AdminHandler provides HTTP handlers for bundle and catalog authoring.
type AdminHandler struct {
	bundles service.BundleService
	catalog service.CatalogService
	audit   service.AuditSink
	reader  service.AuditReader
	forms   *Handler
}

// AdminHandlerOption configures an AdminHandler.
type AdminHandlerOption func(*AdminHandler)

// WithAuditReader enables the audit search endpoint.
func WithAuditReader(reader service.AuditReader) AdminHandlerOption {
	return func(h *AdminHandler) {
		h.reader = reader
	}
}

// NewAdminHandler creates a new AdminHandler instance.
// forms, when given, has its cached bundle forms dropped on every write.
// Bundle writes are audited by the bundle service, product writes here.
func NewAdminHandler(bundles service.BundleService, catalog service.CatalogService, audit service.AuditSink, forms *Handler, opts ...AdminHandlerOption) *AdminHandler {
	h := &AdminHandler{
		bundles: bundles,
		catalog: catalog,
		audit:   audit,
		forms:   forms,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetBundle handles GET /api/admin/bundles/:id requests.
//
// @Summary      Get a bundle definition
// @Tags         Admin
// @Produce      json
// @Param        X-API-Key header string true "Admin API key"
// @Param        id path int true "Bundle parent product id"
// @Success      200 {object} dto.SuccessResponse{data=model.BundleDefinition} "Bundle definition"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure      404 {object} dto.ErrorResponse "Bundle not found"
// @Security     ApiKeyAuth
// @Router       /api/admin/bundles/{id} [get]
func (h *AdminHandler) GetBundle(c *gin.Context) {
	builder := NewResponseBuilder(c)

	bundleID, err := parseID(c.Param("id"))
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return
	}

	def, err := h.bundles.Get(c.Request.Context(), bundleID)
	if err != nil {
		respondServiceError(builder, err)
		return
	}
	builder.SuccessOK(def)
}

// SaveBundle handles PUT /api/admin/bundles/:id requests.
//
// @Summary      Create or replace a bundle definition
// @Description  Stores the slots and price of a bundle. Slot quantities default to 1 and labels to the slot key.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        X-API-Key header string true "Admin API key"
// @Param        X-Actor header string false "Operator name recorded in the audit log"
// @Param        id path int true "Bundle parent product id"
// @Param        request body dto.SaveBundleRequest true "Bundle definition"
// @Success      200 {object} dto.SuccessResponse{data=model.BundleDefinition} "Stored definition"
// @Failure      400 {object} dto.ErrorResponse "Invalid definition"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure      503 {object} dto.ErrorResponse "Bundle store unavailable"
// @Security     ApiKeyAuth
// @Router       /api/admin/bundles/{id} [put]
func (h *AdminHandler) SaveBundle(c *gin.Context) {
	builder := NewResponseBuilder(c)

	bundleID, err := parseID(c.Param("id"))
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return
	}

	req, err := BindJSON[dto.SaveBundleRequest](c)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}

	saved, err := h.bundles.Save(c.Request.Context(), req.ToModel(bundleID), middleware.GetActor(c))
	if err != nil {
		respondServiceError(builder, err)
		return
	}

	if h.forms != nil {
		h.forms.InvalidateForm(bundleID)
	}
	builder.SuccessOK(saved)
}

// DeleteBundle handles DELETE /api/admin/bundles/:id requests.
//
// @Summary      Delete a bundle definition
// @Description  Carts that still hold lines of the bundle keep their frozen prices.
// @Tags         Admin
// @Param        X-API-Key header string true "Admin API key"
// @Param        id path int true "Bundle parent product id"
// @Success      204 "Deleted"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure      404 {object} dto.ErrorResponse "Bundle not found"
// @Security     ApiKeyAuth
// @Router       /api/admin/bundles/{id} [delete]
func (h *AdminHandler) DeleteBundle(c *gin.Context) {
	builder := NewResponseBuilder(c)

	bundleID, err := parseID(c.Param("id"))
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return
	}

	if err := h.bundles.Delete(c.Request.Context(), bundleID, middleware.GetActor(c)); err != nil {
		respondServiceError(builder, err)
		return
	}

	if h.forms != nil {
		h.forms.InvalidateForm(bundleID)
	}
	c.Status(http.StatusNoContent)
}

// ListBundles handles GET /api/admin/bundles requests.
//
// @Summary      List bundle definitions
// @Tags         Admin
// @Produce      json
// @Param        X-API-Key header string true "Admin API key"
// @Param        limit query int false "Limit number of results"
// @Success      200 {object} dto.SuccessResponse{data=[]model.BundleDefinition} "Bundle definitions"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Security     ApiKeyAuth
// @Router       /api/admin/bundles [get]
func (h *AdminHandler) ListBundles(c *gin.Context) {
	builder := NewResponseBuilder(c)

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	defs, err := h.bundles.List(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(builder, err)
		return
	}
	builder.SuccessOK(defs)
}

// UpsertProduct handles PUT /api/admin/products/:id requests.
//
// @Summary      Create or replace a catalog product
// @Description  Seeds the catalog the bundle slots draw from, including the variations that carry color and size.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        X-API-Key header string true "Admin API key"
// @Param        id path int true "Product id"
// @Param        request body dto.UpsertProductRequest true "Product"
// @Success      200 {object} dto.SuccessResponse{data=model.Product} "Stored product"
// @Failure      400 {object} dto.ErrorResponse "Invalid product"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Security     ApiKeyAuth
// @Router       /api/admin/products/{id} [put]
func (h *AdminHandler) UpsertProduct(c *gin.Context) {
	builder := NewResponseBuilder(c)

	productID, err := parseID(c.Param("id"))
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return
	}

	req, err := BindJSON[dto.UpsertProductRequest](c)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}

	product := req.ToModel(productID)
	if err := h.catalog.Upsert(c.Request.Context(), product); err != nil {
		respondServiceError(builder, err)
		return
	}

	if h.forms != nil {
		h.forms.InvalidateForms()
	}
	middleware.AuditLog(h.audit, c, model.ActionProductSaved, "Catalog product saved", map[string]interface{}{
		"product_id": productID,
		"variations": len(product.Variations),
	})

	builder.SuccessOK(product)
}

// SearchAudit handles GET /api/admin/audit requests.
//
// @Summary      Search the audit log
// @Description  Returns cart, checkout and admin audit entries newest first. Requires the database.
// @Tags         Admin
// @Produce      json
// @Param        X-API-Key header string true "Admin API key"
// @Param        session_id query string false "Cart session id"
// @Param        request_id query string false "Request id"
// @Param        action_type query string false "Action type, e.g. parent_stripped"
// @Param        level query string false "info, warn or error"
// @Param        path query string false "Case-insensitive path substring"
// @Param        since query string false "RFC 3339 lower bound"
// @Param        until query string false "RFC 3339 upper bound"
// @Param        limit query int false "Page size, 1 to 500, default 50"
// @Param        skip query int false "Entries to skip"
// @Success      200 {object} dto.SuccessResponse{data=service.AuditPage} "Audit page"
// @Failure      400 {object} dto.ErrorResponse "Invalid filters"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure      503 {object} dto.ErrorResponse "Audit store unavailable"
// @Security     ApiKeyAuth
// @Router       /api/admin/audit [get]
func (h *AdminHandler) SearchAudit(c *gin.Context) {
	builder := NewResponseBuilder(c)

	if h.reader == nil {
		builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable, service.ErrRepositoryNotConfigured)
		return
	}

	q, err := BindQuery[dto.AuditQuery](c)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return
	}

	page, err := h.reader.Search(c.Request.Context(), q.ToOptions())
	if err != nil {
		respondServiceError(builder, err)
		return
	}
	builder.SuccessOK(page)
}
