package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/guttosm/bundle-service/internal/domain/model"
)

// MemoryBundleRepository is an in-process BundleRepositoryInterface used when
// MongoDB is disabled and in tests.
type MemoryBundleRepository struct {
	mu   sync.RWMutex
	defs map[int64]model.BundleDefinition
}

// NewMemoryBundleRepository creates an empty in-memory bundle repository.
func NewMemoryBundleRepository() *MemoryBundleRepository {
	return &MemoryBundleRepository{defs: make(map[int64]model.BundleDefinition)}
}

// Get returns a copy of the definition, or nil when unknown.
func (r *MemoryBundleRepository) Get(_ context.Context, bundleID int64) (*model.BundleDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[bundleID]
	if !ok {
		return nil, nil
	}
	out := cloneBundle(def)
	return &out, nil
}

// Upsert stores a copy of the definition, incrementing its version.
func (r *MemoryBundleRepository) Upsert(_ context.Context, def *model.BundleDefinition) (*model.BundleDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneBundle(*def)
	stored.Version = r.defs[def.BundleID].Version + 1
	stored.UpdatedAt = time.Now().UTC()
	r.defs[def.BundleID] = stored
	out := cloneBundle(stored)
	return &out, nil
}

// List returns definitions ordered by id.
func (r *MemoryBundleRepository) List(_ context.Context, limit int) ([]model.BundleDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.BundleDefinition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, cloneBundle(def))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BundleID < out[j].BundleID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a definition.
func (r *MemoryBundleRepository) Delete(_ context.Context, bundleID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[bundleID]; !ok {
		return ErrNotFound
	}
	delete(r.defs, bundleID)
	return nil
}

func cloneBundle(def model.BundleDefinition) model.BundleDefinition {
	slots := make([]model.BundleSlot, len(def.Slots))
	for i, s := range def.Slots {
		s.AllowedProductIDs = append([]int64(nil), s.AllowedProductIDs...)
		slots[i] = s
	}
	def.Slots = slots
	return def
}

// MemoryProductRepository is an in-process ProductRepositoryInterface.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[int64]model.Product
}

// NewMemoryProductRepository creates an empty in-memory product repository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[int64]model.Product)}
}

// Get returns a copy of the product, or nil when unknown.
func (r *MemoryProductRepository) Get(_ context.Context, id int64) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	p.Variations = append([]model.Variation(nil), p.Variations...)
	return &p, nil
}

// Upsert stores a copy of the product.
func (r *MemoryProductRepository) Upsert(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *p
	stored.Variations = append([]model.Variation(nil), p.Variations...)
	r.products[p.ID] = stored
	return nil
}

// MemoryOrderRepository is an in-process OrderRepositoryInterface.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]model.Order
}

// NewMemoryOrderRepository creates an empty in-memory order repository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]model.Order)}
}

// Create stores the order. Duplicate ids are rejected.
func (r *MemoryOrderRepository) Create(_ context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order %s already exists", order.ID)
	}
	stored := *order
	stored.Lines = append([]model.OrderLine(nil), order.Lines...)
	r.orders[order.ID] = stored
	return nil
}

// Get returns a copy of the order, or nil when unknown.
func (r *MemoryOrderRepository) Get(_ context.Context, id string) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	o.Lines = append([]model.OrderLine(nil), o.Lines...)
	return &o, nil
}

// MemoryCartStore keeps serialized carts in process. Each Load returns a
// fresh instance, the same as the redis store.
type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[string][]byte
}

// NewMemoryCartStore creates an empty in-memory cart store.
func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string][]byte)}
}

// Load returns the session cart, or an empty cart when none is stored.
func (s *MemoryCartStore) Load(_ context.Context, sessionID string) (*model.Cart, error) {
	s.mu.Lock()
	raw, ok := s.carts[sessionID]
	s.mu.Unlock()
	if !ok {
		return model.NewCart(sessionID), nil
	}
	var cart model.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}
	if cart.Lines == nil {
		cart.Lines = []model.CartLine{}
	}
	return &cart, nil
}

// Save stores a serialized copy of the cart.
func (s *MemoryCartStore) Save(_ context.Context, cart *model.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", cart.SessionID, err)
	}
	s.mu.Lock()
	s.carts[cart.SessionID] = raw
	s.mu.Unlock()
	return nil
}

// Delete removes the session cart.
func (s *MemoryCartStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.carts, sessionID)
	s.mu.Unlock()
	return nil
}

// HealthCheck always succeeds.
func (s *MemoryCartStore) HealthCheck(context.Context) error {
	return nil
}
