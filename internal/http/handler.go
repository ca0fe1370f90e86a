package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/guttosm/bundle-service/internal/cache"
	"github.com/guttosm/bundle-service/internal/domain/dto"
	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/guttosm/bundle-service/internal/i18n"
	"github.com/guttosm/bundle-service/internal/middleware"
	"github.com/guttosm/bundle-service/internal/service"
)

// Form field names of the classic add-to-cart form.
const (
	formFieldBundleID      = "add-to-cart"
	formFieldQuantity      = "quantity"
	formFieldItemProduct   = "item_product"
	formFieldItemVariation = "item_variation"
)

// formCacheSize bounds the number of prepared bundle forms kept in memory.
const formCacheSize = 1024

// newFormCache returns nil for a non-positive ttl, which disables form caching.
func newFormCache(ttl time.Duration) *cache.Cache[int64, *model.BundleForm] {
	if ttl <= 0 {
		return nil
	}
	return cache.New[int64, *model.BundleForm](formCacheSize, ttl, cache.Int64Key,
		cache.WithShards(4),
		cache.WithName("bundle_forms"),
	)
}

// Handler provides HTTP handlers for the storefront cart routes.
type Handler struct {
	carts   service.CartService
	csrf    service.CSRFTokenService
	csrfTTL time.Duration
	forms   *cache.Cache[int64, *model.BundleForm]
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithFormCacheTTL sets the TTL for bundle form caching.
func WithFormCacheTTL(ttl time.Duration) HandlerOption {
	return func(h *Handler) {
		h.forms = newFormCache(ttl)
	}
}

// WithCSRF enables form token issuing.
func WithCSRF(tokens service.CSRFTokenService, ttl time.Duration) HandlerOption {
	return func(h *Handler) {
		h.csrf = tokens
		h.csrfTTL = ttl
	}
}

// NewHandler creates a new Handler instance.
func NewHandler(carts service.CartService, opts ...HandlerOption) *Handler {
	h := &Handler{
		carts: carts,
		forms: newFormCache(30 * time.Second),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// InvalidateForm drops the cached form of one bundle.
func (h *Handler) InvalidateForm(bundleID int64) {
	if h.forms != nil {
		h.forms.Invalidate(bundleID)
	}
}

// InvalidateForms drops every cached form. Product writes can change any form.
func (h *Handler) InvalidateForms() {
	if h.forms != nil {
		h.forms.Clear()
	}
}

// sessionID returns the cart session or writes a 400 response.
func (h *Handler) sessionID(c *gin.Context, builder *ResponseBuilder) (string, bool) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		builder.Error(http.StatusBadRequest, i18n.ErrKeySessionRequired, nil)
		return "", false
	}
	return sessionID, true
}

// IssueCSRFToken handles GET /api/csrf requests.
//
// @Summary      Issue a form token
// @Description  Returns a token bound to the cart session cookie. State-changing cart requests must send it in the X-CSRF-Token header or the _csrf form field.
// @Tags         Cart
// @Produce      json
// @Success      200 {object} dto.SuccessResponse{data=dto.CSRFTokenResponse} "Form token"
// @Failure      503 {object} dto.ErrorResponse "Form tokens are not configured"
// @Router       /api/csrf [get]
func (h *Handler) IssueCSRFToken(c *gin.Context) {
	builder := NewResponseBuilder(c)

	if h.csrf == nil {
		builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable, nil)
		return
	}
	sessionID, ok := h.sessionID(c, builder)
	if !ok {
		return
	}

	token, err := h.csrf.Issue(sessionID)
	if err != nil {
		builder.Error(http.StatusInternalServerError, i18n.ErrKeyInternalError, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	builder.SuccessOK(dto.CSRFTokenResponse{
		Token:     token,
		ExpiresIn: int64(h.csrfTTL.Seconds()),
	})
}

// GetBundleForm handles GET /api/bundles/:id/form requests.
//
// @Summary      Get a bundle's add-to-cart form
// @Description  Returns the slots of a bundle with the colors and sizes that can be chosen for each, plus the reference items total.
// @Tags         Bundles
// @Produce      json
// @Param        id path int true "Bundle parent product id"
// @Success      200 {object} dto.SuccessResponse{data=model.BundleForm} "Bundle form"
// @Failure      400 {object} dto.ErrorResponse "Invalid bundle id"
// @Failure      404 {object} dto.ErrorResponse "Bundle not found"
// @Failure      422 {object} dto.ErrorResponse "Bundle has no purchasable slot"
// @Failure      503 {object} dto.ErrorResponse "Service unavailable"
// @Router       /api/bundles/{id}/form [get]
func (h *Handler) GetBundleForm(c *gin.Context) {
	builder := NewResponseBuilder(c)

	bundleID, err := parseID(c.Param("id"))
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return
	}

	if h.forms != nil {
		if form, ok := h.forms.Get(bundleID); ok {
			builder.SuccessOK(form)
			return
		}
	}

	form, err := h.carts.BundleForm(c.Request.Context(), bundleID)
	if err != nil {
		respondServiceError(builder, err)
		return
	}

	if h.forms != nil && form != nil {
		h.forms.Set(bundleID, form)
	}
	builder.SuccessOK(form)
}

// GetCart handles GET /api/cart requests.
//
// @Summary      Get the cart
// @Description  Returns the session cart with its bundle group totals and savings.
// @Tags         Cart
// @Produce      json
// @Success      200 {object} dto.SuccessResponse{data=service.CartView} "Cart"
// @Failure      503 {object} dto.ErrorResponse "Cart store unavailable"
// @Router       /api/cart [get]
func (h *Handler) GetCart(c *gin.Context) {
	builder := NewResponseBuilder(c)
	sessionID, ok := h.sessionID(c, builder)
	if !ok {
		return
	}

	view, err := h.carts.View(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(builder, err)
		return
	}
	builder.SuccessOK(view)
}

// EmptyCart handles DELETE /api/cart requests.
//
// @Summary      Empty the cart
// @Tags         Cart
// @Produce      json
// @Param        X-CSRF-Token header string true "Form token"
// @Success      204 "Cart emptied"
// @Failure      403 {object} dto.ErrorResponse "Missing or expired form token"
// @Failure      503 {object} dto.ErrorResponse "Cart store unavailable"
// @Router       /api/cart [delete]
func (h *Handler) EmptyCart(c *gin.Context) {
	builder := NewResponseBuilder(c)
	sessionID, ok := h.sessionID(c, builder)
	if !ok {
		return
	}

	if err := h.carts.Empty(c.Request.Context(), sessionID); err != nil {
		respondServiceError(builder, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddBundle handles POST /api/cart/bundle requests.
//
// @Summary      Add a bundle to the cart
// @Description  Adds one cart line per bundle slot, priced so the lines sum exactly to the bundle price. Either every slot resolves or nothing is added. Accepts JSON or the classic form fields add-to-cart, quantity, item_product[slot], item_variation[slot] and _csrf. Supports idempotency via Idempotency-Key header.
// @Tags         Cart
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        X-CSRF-Token header string false "Form token, or the _csrf form field"
// @Param        Idempotency-Key header string false "Idempotency key for request deduplication"
// @Param        request body dto.AddBundleRequest true "Bundle submission"
// @Success      201 {object} dto.SuccessResponse{data=service.CartView} "Cart after the add"
// @Failure      400 {object} dto.ErrorResponse "Malformed submission or invalid quantity"
// @Failure      403 {object} dto.ErrorResponse "Missing or expired form token"
// @Failure      404 {object} dto.ErrorResponse "Bundle not found"
// @Failure      422 {object} dto.ErrorResponse "A slot is missing a color or size, or an item cannot be purchased"
// @Failure      429 {object} dto.ErrorResponse "Too many requests"
// @Failure      503 {object} dto.ErrorResponse "Service unavailable"
// @Router       /api/cart/bundle [post]
func (h *Handler) AddBundle(c *gin.Context) {
	builder := NewResponseBuilder(c)
	sessionID, ok := h.sessionID(c, builder)
	if !ok {
		return
	}

	sub, err := bundleSubmission(c)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}

	view, err := h.carts.AddBundle(c.Request.Context(), sessionID, sub)
	if err != nil {
		respondServiceError(builder, err)
		return
	}
	builder.SuccessCreated(view)
}

// bundleSubmission reads a bundle submission from a JSON body or a form post.
func bundleSubmission(c *gin.Context) (service.BundleSubmission, error) {
	if c.ContentType() == binding.MIMEPOSTForm || c.ContentType() == binding.MIMEMultipartPOSTForm {
		return formBundleSubmission(c)
	}

	req, err := BindJSON[dto.AddBundleRequest](c)
	if err != nil {
		return service.BundleSubmission{}, err
	}
	return service.BundleSubmission{
		BundleID:   req.BundleID,
		Quantity:   req.Quantity,
		Selections: req.Selections(),
	}, nil
}

func formBundleSubmission(c *gin.Context) (service.BundleSubmission, error) {
	var sub service.BundleSubmission

	bundleID, err := parseID(c.PostForm(formFieldBundleID))
	if err != nil {
		return sub, &dto.ValidationError{Field: formFieldBundleID, Message: "must be a positive id"}
	}
	sub.BundleID = bundleID

	if raw := strings.TrimSpace(c.PostForm(formFieldQuantity)); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return sub, &dto.ValidationError{Field: formFieldQuantity, Message: "must be a number"}
		}
		sub.Quantity = qty
	}

	req := dto.AddBundleRequest{BundleID: bundleID, Items: make(map[string]dto.SlotSelection)}
	for slot, raw := range c.PostFormMap(formFieldItemProduct) {
		productID, err := parseOptionalID(raw)
		if err != nil {
			return sub, &dto.ValidationError{Field: formFieldItemProduct + "[" + slot + "]", Message: "must be an id"}
		}
		req.Items[slot] = dto.SlotSelection{ProductID: productID}
	}
	for slot, raw := range c.PostFormMap(formFieldItemVariation) {
		variationID, err := parseOptionalID(raw)
		if err != nil {
			return sub, &dto.ValidationError{Field: formFieldItemVariation + "[" + slot + "]", Message: "must be an id"}
		}
		item := req.Items[slot]
		item.VariationID = variationID
		req.Items[slot] = item
	}
	if err := req.Validate(); err != nil {
		return sub, err
	}

	sub.Selections = req.Selections()
	return sub, nil
}

// AddItem handles POST /api/cart/items requests.
//
// @Summary      Add a product to the cart
// @Description  Generic add path for a single product or variation. Adding a bundle parent product directly is ignored by the cart.
// @Tags         Cart
// @Accept       json
// @Produce      json
// @Param        X-CSRF-Token header string true "Form token"
// @Param        request body dto.AddItemRequest true "Product to add"
// @Success      201 {object} dto.SuccessResponse{data=service.CartView} "Cart after the add"
// @Failure      400 {object} dto.ErrorResponse "Invalid request or quantity"
// @Failure      403 {object} dto.ErrorResponse "Missing or expired form token"
// @Failure      404 {object} dto.ErrorResponse "Product not found"
// @Failure      422 {object} dto.ErrorResponse "Product cannot be purchased"
// @Router       /api/cart/items [post]
func (h *Handler) AddItem(c *gin.Context) {
	builder := NewResponseBuilder(c)
	sessionID, ok := h.sessionID(c, builder)
	if !ok {
		return
	}

	req, err := BindJSON[dto.AddItemRequest](c)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}

	view, err := h.carts.AddProduct(c.Request.Context(), sessionID, req.ProductID, req.VariationID, req.Quantity)
	if err != nil {
		respondServiceError(builder, err)
		return
	}
	builder.SuccessCreated(view)
}

// UpdateItem handles PATCH /api/cart/items/:key requests.
//
// @Summary      Change a cart line quantity
// @Description  Changes the quantity of a plain line. Bundle lines are locked and must be removed instead.
// @Tags         Cart
// @Accept       json
// @Produce      json
// @Param        X-CSRF-Token header string true "Form token"
// @Param        key path string true "Cart line key"
// @Param        request body dto.UpdateItemRequest true "New quantity, 0 removes the line"
// @Success      200 {object} dto.SuccessResponse{data=service.CartView} "Cart after the change"
// @Failure      400 {object} dto.ErrorResponse "Invalid quantity"
// @Failure      404 {object} dto.ErrorResponse "Line not found"
// @Failure      409 {object} dto.ErrorResponse "Bundle line quantity is locked"
// @Router       /api/cart/items/{key} [patch]
func (h *Handler) UpdateItem(c *gin.Context) {
	builder := NewResponseBuilder(c)
	sessionID, ok := h.sessionID(c, builder)
	if !ok {
		return
	}

	req, err := BindJSON[dto.UpdateItemRequest](c)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}

	view, err := h.carts.UpdateQuantity(c.Request.Context(), sessionID, c.Param("key"), *req.Quantity)
	if err != nil {
		respondServiceError(builder, err)
		return
	}
	builder.SuccessOK(view)
}

// RemoveItem handles DELETE /api/cart/items/:key requests.
//
// @Summary      Remove a cart line
// @Description  Removes a line. Removing any line of a bundle removes every line of that bundle.
// @Tags         Cart
// @Produce      json
// @Param        X-CSRF-Token header string true "Form token"
// @Param        key path string true "Cart line key"
// @Success      200 {object} dto.SuccessResponse{data=service.CartView} "Cart after the removal"
// @Failure      404 {object} dto.ErrorResponse "Line not found"
// @Router       /api/cart/items/{key} [delete]
func (h *Handler) RemoveItem(c *gin.Context) {
	builder := NewResponseBuilder(c)
	sessionID, ok := h.sessionID(c, builder)
	if !ok {
		return
	}

	view, err := h.carts.RemoveLine(c.Request.Context(), sessionID, c.Param("key"))
	if err != nil {
		respondServiceError(builder, err)
		return
	}
	builder.SuccessOK(view)
}

// Checkout handles POST /api/checkout requests.
//
// @Summary      Place an order
// @Description  Turns the cart into an order. Bundle lines keep their allocated prices and a frozen copy of the bundle metadata. Supports idempotency via Idempotency-Key header.
// @Tags         Orders
// @Produce      json
// @Param        X-CSRF-Token header string true "Form token"
// @Param        Idempotency-Key header string false "Idempotency key for request deduplication"
// @Success      201 {object} dto.SuccessResponse{data=dto.OrderResponse} "Placed order"
// @Failure      403 {object} dto.ErrorResponse "Missing or expired form token"
// @Failure      422 {object} dto.ErrorResponse "Cart is empty"
// @Failure      503 {object} dto.ErrorResponse "Order store unavailable"
// @Router       /api/checkout [post]
func (h *Handler) Checkout(c *gin.Context) {
	builder := NewResponseBuilder(c)
	sessionID, ok := h.sessionID(c, builder)
	if !ok {
		return
	}

	order, err := h.carts.Checkout(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(builder, err)
		return
	}
	builder.SuccessCreated(dto.OrderResponse{
		Order:  order,
		Groups: service.OrderGroupSummaries(order),
	})
}

// GetOrder handles GET /api/orders/:id requests.
//
// @Summary      Get an order
// @Description  Returns an order placed by the current cart session.
// @Tags         Orders
// @Produce      json
// @Param        id path string true "Order id"
// @Success      200 {object} dto.SuccessResponse{data=dto.OrderResponse} "Order"
// @Failure      404 {object} dto.ErrorResponse "Order not found"
// @Router       /api/orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	builder := NewResponseBuilder(c)
	sessionID, ok := h.sessionID(c, builder)
	if !ok {
		return
	}

	order, err := h.carts.GetOrder(c.Request.Context(), sessionID, c.Param("id"))
	if err != nil {
		respondServiceError(builder, err)
		return
	}
	builder.SuccessOK(dto.OrderResponse{
		Order:  order,
		Groups: service.OrderGroupSummaries(order),
	})
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}

// parseOptionalID treats an empty value as "nothing selected".
func parseOptionalID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
