package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/guttosm/bundle-service/internal/logger"
	"github.com/guttosm/bundle-service/internal/metrics"
	"github.com/guttosm/bundle-service/internal/repository"
)

const (
	// MaxBundleQuantity bounds the bundle instances of one submission.
	MaxBundleQuantity = 99
	// MaxLineQuantity bounds the quantity of a plain cart line.
	MaxLineQuantity = 999

	sessionLockStripes = 64
)

// BundleSubmission is one bundle add-to-cart request.
type BundleSubmission struct {
	BundleID int64
	// Quantity is the number of bundle instances, 0 means 1
	Quantity   int
	Selections []model.VariantSelection
}

// CartView is the display state of a cart.
type CartView struct {
	SessionID  string               `json:"session_id"`
	Lines      []model.CartLine     `json:"lines"`
	Groups     []model.GroupSummary `json:"groups"`
	ItemCount  int                  `json:"item_count" example:"3"`
	Subtotal   decimal.Decimal      `json:"subtotal" swaggertype:"string" example:"40.00"`
	ItemsTotal decimal.Decimal      `json:"items_total" swaggertype:"string" example:"60.00"`
	Savings    decimal.Decimal      `json:"savings" swaggertype:"string" example:"20.00"`
	Currency   string               `json:"currency" example:"EUR"`
} // @name CartView

// CartService provides the session cart operations.
type CartService interface {
	// BundleForm returns the add-to-cart form of a bundle.
	BundleForm(ctx context.Context, bundleID int64) (*model.BundleForm, error)
	// AddBundle resolves a submission and adds one line per slot, all or nothing.
	AddBundle(ctx context.Context, sessionID string, sub BundleSubmission) (*CartView, error)
	// AddProduct is the generic add path for a single product or variation.
	AddProduct(ctx context.Context, sessionID string, productID, variationID int64, quantity int) (*CartView, error)
	// UpdateQuantity changes a plain line's quantity. Bundle lines are locked.
	UpdateQuantity(ctx context.Context, sessionID, lineKey string, quantity int) (*CartView, error)
	// RemoveLine removes a line, and its whole group for bundle lines.
	RemoveLine(ctx context.Context, sessionID, lineKey string) (*CartView, error)
	Empty(ctx context.Context, sessionID string) error
	View(ctx context.Context, sessionID string) (*CartView, error)
	// Checkout places an order from the cart and empties it.
	Checkout(ctx context.Context, sessionID string) (*model.Order, error)
	// GetOrder returns an order placed by the session.
	GetOrder(ctx context.Context, sessionID, orderID string) (*model.Order, error)
}

// CartOption configures a CartServiceImpl.
type CartOption func(*CartServiceImpl)

// WithCartAudit records cart actions on the given sink.
func WithCartAudit(sink AuditSink) CartOption {
	return func(s *CartServiceImpl) {
		s.audit = sink
	}
}

// WithCurrency sets the currency code stamped on views and orders.
func WithCurrency(currency string) CartOption {
	return func(s *CartServiceImpl) {
		if currency != "" {
			s.currency = currency
		}
	}
}

// WithAllocator replaces the default two-decimal allocator.
func WithAllocator(a Allocator) CartOption {
	return func(s *CartServiceImpl) {
		if a != nil {
			s.allocator = a
		}
	}
}

// CartServiceImpl implements CartService.
//
// Mutations of one session are serialized through striped locks so a
// load-mutate-save cycle never interleaves with another request.
type CartServiceImpl struct {
	carts     repository.CartStore
	orders    repository.OrderRepositoryInterface
	bundles   BundleService
	catalog   CatalogService
	resolver  *VariantResolver
	allocator Allocator
	guard     *CartIntegrityGuard
	projector *OrderProjector
	audit     AuditSink
	currency  string
	locks     [sessionLockStripes]sync.Mutex
}

// NewCartService creates a new cart service.
func NewCartService(
	carts repository.CartStore,
	orders repository.OrderRepositoryInterface,
	bundles BundleService,
	catalog CatalogService,
	opts ...CartOption,
) *CartServiceImpl {
	s := &CartServiceImpl{
		carts:     carts,
		orders:    orders,
		bundles:   bundles,
		catalog:   catalog,
		resolver:  NewVariantResolver(catalog),
		allocator: NewCartLineAllocator(),
		projector: NewOrderProjector(),
		currency:  "EUR",
	}
	for _, opt := range opts {
		opt(s)
	}

	var lookup BundleLookup
	if bundles != nil {
		lookup = bundles
	}
	s.guard = NewCartIntegrityGuard(lookup, WithGuardAudit(s.audit))
	return s
}

func (s *CartServiceImpl) lock(sessionID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	mu := &s.locks[h.Sum32()%sessionLockStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *CartServiceImpl) ready() error {
	if s.carts == nil || s.bundles == nil || s.catalog == nil {
		return ErrRepositoryNotConfigured
	}
	return nil
}

// load returns the session cart with the integrity hooks attached.
func (s *CartServiceImpl) load(ctx context.Context, sessionID string) (*model.Cart, error) {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	cart.SessionID = sessionID
	s.guard.Attach(ctx, cart)
	return cart, nil
}

func (s *CartServiceImpl) save(ctx context.Context, cart *model.Cart) error {
	s.allocator.Reallocate(cart)
	if err := s.carts.Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *CartServiceImpl) BundleForm(ctx context.Context, bundleID int64) (*model.BundleForm, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	def, err := s.bundles.Get(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	return s.resolver.PrepareForm(ctx, def)
}

func (s *CartServiceImpl) AddBundle(ctx context.Context, sessionID string, sub BundleSubmission) (*CartView, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)

	bundleQty := sub.Quantity
	if bundleQty == 0 {
		bundleQty = 1
	}
	if bundleQty < 0 || bundleQty > MaxBundleQuantity {
		metrics.RecordAddToCart("rejected")
		return nil, ErrInvalidQuantity
	}

	form, err := s.BundleForm(ctx, sub.BundleID)
	if err != nil {
		metrics.RecordAddToCart("unavailable")
		return nil, err
	}

	units, err := s.resolver.Resolve(ctx, form, sub.Selections)
	if err != nil {
		if rej, ok := AsRejection(err); ok {
			metrics.RecordAddToCart("rejected")
			log.Info().
				Int64("bundle_id", sub.BundleID).
				Str("slot", rej.SlotKey).
				Str("reason", string(rej.Reason)).
				Msg("Bundle submission rejected")
			recordAudit(s.audit, auditEntry(ctx, model.ActionBundleRejected, "Bundle submission rejected", map[string]interface{}{
				"bundle_id": sub.BundleID,
				"slot_key":  rej.SlotKey,
				"reason":    string(rej.Reason),
			}))
		} else {
			metrics.RecordAddToCart("error")
		}
		return nil, err
	}

	// Definitions are trusted once stored, so a slot multiplier saved before
	// the bound existed must still not overflow a line.
	for _, u := range units {
		if u.Slot.Quantity < 1 || u.Slot.Quantity > MaxLineQuantity/bundleQty {
			metrics.RecordAddToCart("rejected")
			log.Warn().
				Int64("bundle_id", sub.BundleID).
				Str("slot", u.Slot.Key).
				Int("slot_quantity", u.Slot.Quantity).
				Int("bundle_quantity", bundleQty).
				Msg("Bundle line quantity out of range")
			return nil, ErrInvalidQuantity
		}
	}

	unlock := s.lock(sessionID)
	defer unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		metrics.RecordAddToCart("error")
		return nil, err
	}

	groupID := uuid.NewString()
	cart.AddLines(bundleLines(form, units, groupID, bundleQty)...)

	if err := s.save(ctx, cart); err != nil {
		metrics.RecordAddToCart("error")
		return nil, err
	}

	metrics.RecordAddToCart("success")
	log.Info().
		Int64("bundle_id", form.BundleID).
		Str("group_id", groupID).
		Int("bundle_quantity", bundleQty).
		Int("lines", len(units)).
		Msg("Bundle added to cart")
	recordAudit(s.audit, auditEntry(ctx, model.ActionBundleAdded, "Bundle added to cart", map[string]interface{}{
		"bundle_id":       form.BundleID,
		"group_id":        groupID,
		"bundle_quantity": bundleQty,
		"lines":           len(units),
	}))

	return s.view(cart), nil
}

// bundleLines builds one cart line per resolved unit, all sharing groupID.
// Lines start at the unit's current price until the allocator runs.
func bundleLines(form *model.BundleForm, units []ResolvedUnit, groupID string, bundleQty int) []model.CartLine {
	lines := make([]model.CartLine, 0, len(units))
	for _, u := range units {
		qty := bundleQty * u.Slot.Quantity
		lines = append(lines, model.CartLine{
			Key:          uuid.NewString(),
			ProductID:    u.ProductID,
			VariationID:  u.VariationID,
			Name:         u.Name,
			Quantity:     qty,
			CatalogPrice: u.CurrentPrice,
			RegularPrice: u.RegularPrice,
			Price:        model.PlainLinePrice(u.CurrentPrice, qty),
			Bundle: &model.BundleLineMeta{
				GroupID:            groupID,
				BundleID:           form.BundleID,
				BundleName:         form.Name,
				BundlePrice:        form.BundlePrice,
				BundleQuantity:     bundleQty,
				SlotKey:            u.Slot.Key,
				SlotLabel:          u.Slot.Label,
				SlotQuantity:       u.Slot.Quantity,
				ReferenceUnitPrice: u.ReferencePrice,
			},
		})
	}
	return lines
}

func (s *CartServiceImpl) AddProduct(ctx context.Context, sessionID string, productID, variationID int64, quantity int) (*CartView, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if quantity <= 0 || quantity > MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}

	line, err := s.plainLine(ctx, productID, variationID, quantity)
	if err != nil {
		return nil, err
	}

	unlock := s.lock(sessionID)
	defer unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if key, ok := cart.FindPlainLine(productID, variationID); ok {
		existing, _ := cart.Line(key)
		total := existing.Quantity + quantity
		if total > MaxLineQuantity {
			return nil, ErrInvalidQuantity
		}
		cart.SetQuantity(key, total)
	} else {
		cart.AddLines(line)
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

// plainLine resolves a generic add-to-cart request into a line priced at the
// unit's current price.
func (s *CartServiceImpl) plainLine(ctx context.Context, productID, variationID int64, quantity int) (model.CartLine, error) {
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return model.CartLine{}, err
	}

	line := model.CartLine{
		Key:       uuid.NewString(),
		ProductID: p.ID,
		Name:      p.Name,
		Quantity:  quantity,
	}

	if p.IsVariable() {
		if variationID <= 0 {
			return model.CartLine{}, ErrProductNotPurchasable
		}
		v, err := s.catalog.GetVariation(ctx, variationID, p.ID)
		if err != nil {
			return model.CartLine{}, err
		}
		if !v.Purchasable || !v.InStock {
			return model.CartLine{}, ErrProductNotPurchasable
		}
		line.VariationID = v.ID
		line.Name = variationName(p.Name, v.Attributes)
		line.CatalogPrice = v.CurrentPrice
		line.RegularPrice = v.RegularPrice
	} else {
		if !p.Purchasable || !p.InStock {
			return model.CartLine{}, ErrProductNotPurchasable
		}
		line.CatalogPrice = p.CurrentPrice
		line.RegularPrice = p.RegularPrice
	}

	line.Price = model.PlainLinePrice(line.CatalogPrice, quantity)
	return line, nil
}

func (s *CartServiceImpl) UpdateQuantity(ctx context.Context, sessionID, lineKey string, quantity int) (*CartView, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if quantity > MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}

	unlock := s.lock(sessionID)
	defer unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	line, ok := cart.Line(lineKey)
	if !ok {
		return nil, ErrLineNotFound
	}
	if err := s.guard.CheckQuantityChange(line, quantity); err != nil {
		log := logger.FromContext(ctx)
		log.Info().
			Str("line_key", lineKey).
			Int("quantity", quantity).
			Msg("Quantity change on bundle line rejected")
		return nil, err
	}
	if quantity == line.Quantity {
		return s.view(cart), nil
	}

	if quantity <= 0 {
		cart.Remove(lineKey)
	} else {
		cart.SetQuantity(lineKey, quantity)
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

func (s *CartServiceImpl) RemoveLine(ctx context.Context, sessionID, lineKey string) (*CartView, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	unlock := s.lock(sessionID)
	defer unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	line, ok := cart.Line(lineKey)
	if !ok {
		return nil, ErrLineNotFound
	}
	cart.Remove(lineKey)

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	if line.InBundle() {
		recordAudit(s.audit, auditEntry(ctx, model.ActionBundleRemoved, "Bundle group removed from cart", map[string]interface{}{
			"bundle_id": line.Bundle.BundleID,
			"group_id":  line.GroupID(),
		}))
	}
	return s.view(cart), nil
}

func (s *CartServiceImpl) Empty(ctx context.Context, sessionID string) error {
	if s.carts == nil {
		return ErrRepositoryNotConfigured
	}

	unlock := s.lock(sessionID)
	defer unlock()

	return s.carts.Delete(ctx, sessionID)
}

func (s *CartServiceImpl) View(ctx context.Context, sessionID string) (*CartView, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.allocator.Reallocate(cart)
	return s.view(cart), nil
}

func (s *CartServiceImpl) view(cart *model.Cart) *CartView {
	lines := append([]model.CartLine(nil), cart.Lines...)
	if lines == nil {
		lines = []model.CartLine{}
	}
	groups := GroupSummaries(lines)
	if groups == nil {
		groups = []model.GroupSummary{}
	}

	subtotal := cart.Subtotal()
	itemsTotal := ItemsTotalAcrossCart(lines)
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}

	return &CartView{
		SessionID:  cart.SessionID,
		Lines:      lines,
		Groups:     groups,
		ItemCount:  count,
		Subtotal:   subtotal,
		ItemsTotal: itemsTotal,
		Savings:    positive(itemsTotal.Sub(subtotal)),
		Currency:   s.currency,
	}
}

func (s *CartServiceImpl) Checkout(ctx context.Context, sessionID string) (*model.Order, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.orders == nil {
		return nil, ErrRepositoryNotConfigured
	}

	unlock := s.lock(sessionID)
	defer unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrCartEmpty
	}
	s.allocator.Reallocate(cart)

	order := &model.Order{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Lines:     make([]model.OrderLine, 0, len(cart.Lines)),
		Currency:  s.currency,
		CreatedAt: time.Now().UTC(),
	}
	for _, line := range cart.Lines {
		s.projector.Project(line, order)
	}
	s.projector.Totals(order)

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	log := logger.FromContext(ctx)
	if err := s.carts.Delete(ctx, sessionID); err != nil {
		log.Error().Err(err).Str("order_id", order.ID).Msg("Failed to clear cart after checkout")
	}

	metrics.RecordOrderPlaced()
	log.Info().
		Str("order_id", order.ID).
		Int("lines", len(order.Lines)).
		Str("subtotal", order.Subtotal.StringFixed(2)).
		Msg("Order placed")
	recordAudit(s.audit, auditEntry(ctx, model.ActionOrderPlaced, "Order placed", map[string]interface{}{
		"order_id": order.ID,
		"lines":    len(order.Lines),
		"subtotal": order.Subtotal.String(),
		"savings":  order.Savings.String(),
	}))

	return order, nil
}

func (s *CartServiceImpl) GetOrder(ctx context.Context, sessionID, orderID string) (*model.Order, error) {
	if s.orders == nil {
		return nil, ErrRepositoryNotConfigured
	}
	order, err := s.orders.Get(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if order == nil || order.SessionID != sessionID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
