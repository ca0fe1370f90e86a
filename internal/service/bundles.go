package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guttosm/bundle-service/internal/cache"
	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/guttosm/bundle-service/internal/metrics"
	"github.com/guttosm/bundle-service/internal/repository"
)

// BundleService provides bundle definition authoring and lookups.
type BundleService interface {
	// Get returns a bundle definition or ErrBundleNotFound.
	Get(ctx context.Context, bundleID int64) (*model.BundleDefinition, error)
	// Save validates and stores a definition, bumping its version.
	Save(ctx context.Context, def *model.BundleDefinition, updatedBy string) (*model.BundleDefinition, error)
	List(ctx context.Context, limit int) ([]model.BundleDefinition, error)
	Delete(ctx context.Context, bundleID int64, deletedBy string) error
	// IsBundle reports whether productID is a bundle parent.
	IsBundle(ctx context.Context, productID int64) (bool, error)
}

// DefinitionCache holds bundle definitions by parent product id.
// A nil definition records an id known not to be a bundle.
type DefinitionCache interface {
	Get(bundleID int64) (*model.BundleDefinition, bool)
	Set(bundleID int64, def *model.BundleDefinition)
	Invalidate(bundleID int64)
	Clear()
	Stats() cache.Stats
}

// BundleOption configures a BundleServiceImpl.
type BundleOption func(*BundleServiceImpl)

// BundleServiceImpl implements BundleService with an optional read-through cache.
// Cached definitions are shared and must not be mutated by callers.
type BundleServiceImpl struct {
	bundleRepo repository.BundleRepositoryInterface
	cache      DefinitionCache
	audit      AuditSink
}

// NewBundleService creates a new bundle service.
func NewBundleService(bundleRepo repository.BundleRepositoryInterface, opts ...BundleOption) *BundleServiceImpl {
	s := &BundleServiceImpl{bundleRepo: bundleRepo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const definitionCacheName = "bundle_definitions"

// WithBundleCache enables definition caching with the specified capacity and TTL.
func WithBundleCache(capacity int, ttl time.Duration) BundleOption {
	return func(s *BundleServiceImpl) {
		if capacity > 0 {
			s.cache = cache.New[int64, *model.BundleDefinition](capacity, ttl, cache.Int64Key, cache.WithName(definitionCacheName))
		}
	}
}

// WithDefinitionCache injects a cache implementation.
func WithDefinitionCache(c DefinitionCache) BundleOption {
	return func(s *BundleServiceImpl) {
		s.cache = c
	}
}

// WithBundleAudit records definition changes on the given sink.
func WithBundleAudit(sink AuditSink) BundleOption {
	return func(s *BundleServiceImpl) {
		s.audit = sink
	}
}

func (s *BundleServiceImpl) Get(ctx context.Context, bundleID int64) (*model.BundleDefinition, error) {
	def, err := s.load(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, ErrBundleNotFound
	}
	return def, nil
}

func (s *BundleServiceImpl) IsBundle(ctx context.Context, productID int64) (bool, error) {
	def, err := s.load(ctx, productID)
	if err != nil {
		return false, err
	}
	return def != nil, nil
}

// load reads through the cache. Unknown ids are cached as nil.
func (s *BundleServiceImpl) load(ctx context.Context, bundleID int64) (*model.BundleDefinition, error) {
	if s.bundleRepo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if s.cache != nil {
		if def, ok := s.cache.Get(bundleID); ok {
			return def, nil
		}
	}

	def, err := s.bundleRepo.Get(ctx, bundleID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(bundleID, def)
		s.reportCacheMetrics()
	}
	return def, nil
}

func (s *BundleServiceImpl) Save(ctx context.Context, def *model.BundleDefinition, updatedBy string) (*model.BundleDefinition, error) {
	if s.bundleRepo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if def == nil {
		return nil, fmt.Errorf("%w: definition is required", model.ErrInvalidBundle)
	}

	def.Normalize()
	if err := def.Validate(); err != nil {
		return nil, err
	}
	def.UpdatedBy = updatedBy

	saved, err := s.bundleRepo.Upsert(ctx, def)
	if err != nil {
		return nil, err
	}
	s.invalidate(def.BundleID)

	entry := auditEntry(ctx, model.ActionBundleSaved, "Bundle definition saved", map[string]interface{}{
		"bundle_id": saved.BundleID,
		"version":   saved.Version,
		"slots":     len(saved.Slots),
	})
	entry.Actor = updatedBy
	recordAudit(s.audit, entry)
	return saved, nil
}

func (s *BundleServiceImpl) List(ctx context.Context, limit int) ([]model.BundleDefinition, error) {
	if s.bundleRepo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	return s.bundleRepo.List(ctx, limit)
}

func (s *BundleServiceImpl) Delete(ctx context.Context, bundleID int64, deletedBy string) error {
	if s.bundleRepo == nil {
		return ErrRepositoryNotConfigured
	}
	err := s.bundleRepo.Delete(ctx, bundleID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrBundleNotFound
	}
	if err != nil {
		return err
	}
	s.invalidate(bundleID)

	entry := auditEntry(ctx, model.ActionBundleDeleted, "Bundle definition deleted", map[string]interface{}{
		"bundle_id": bundleID,
	})
	entry.Actor = deletedBy
	recordAudit(s.audit, entry)
	return nil
}

// Close drops every cached definition.
func (s *BundleServiceImpl) Close() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

func (s *BundleServiceImpl) invalidate(bundleID int64) {
	if s.cache != nil {
		s.cache.Invalidate(bundleID)
	}
}

func (s *BundleServiceImpl) reportCacheMetrics() {
	st := s.cache.Stats()
	metrics.UpdateCacheMetrics(definitionCacheName, st.Size, st.Capacity)
}
