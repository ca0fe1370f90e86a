package repository

import (
	"context"
	"errors"

	"github.com/guttosm/bundle-service/internal/circuitbreaker"
	"github.com/guttosm/bundle-service/internal/domain/model"
)

// guarded runs fn through cb. ErrNotFound is an answer from a healthy store:
// it reaches the caller but does not count against the breaker.
func guarded[T any](ctx context.Context, cb *circuitbreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var (
		result T
		miss   error
	)
	err := cb.Execute(ctx, func() error {
		var err error
		result, err = fn()
		if errors.Is(err, ErrNotFound) {
			miss = err
			return nil
		}
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, miss
}

func guardedExec(ctx context.Context, cb *circuitbreaker.CircuitBreaker, fn func() error) error {
	_, err := guarded(ctx, cb, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

// BundleRepositoryWithCircuitBreaker fails fast while the bundles collection is unreachable.
type BundleRepositoryWithCircuitBreaker struct {
	repo BundleRepositoryInterface
	cb   *circuitbreaker.CircuitBreaker
}

func NewBundleRepositoryWithCircuitBreaker(repo BundleRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *BundleRepositoryWithCircuitBreaker {
	return &BundleRepositoryWithCircuitBreaker{repo: repo, cb: cb}
}

func (r *BundleRepositoryWithCircuitBreaker) Get(ctx context.Context, bundleID int64) (*model.BundleDefinition, error) {
	return guarded(ctx, r.cb, func() (*model.BundleDefinition, error) { return r.repo.Get(ctx, bundleID) })
}

func (r *BundleRepositoryWithCircuitBreaker) Upsert(ctx context.Context, def *model.BundleDefinition) (*model.BundleDefinition, error) {
	return guarded(ctx, r.cb, func() (*model.BundleDefinition, error) { return r.repo.Upsert(ctx, def) })
}

func (r *BundleRepositoryWithCircuitBreaker) List(ctx context.Context, limit int) ([]model.BundleDefinition, error) {
	return guarded(ctx, r.cb, func() ([]model.BundleDefinition, error) { return r.repo.List(ctx, limit) })
}

func (r *BundleRepositoryWithCircuitBreaker) Delete(ctx context.Context, bundleID int64) error {
	return guardedExec(ctx, r.cb, func() error { return r.repo.Delete(ctx, bundleID) })
}

// ProductRepositoryWithCircuitBreaker fails fast while the catalog collection is unreachable.
type ProductRepositoryWithCircuitBreaker struct {
	repo ProductRepositoryInterface
	cb   *circuitbreaker.CircuitBreaker
}

func NewProductRepositoryWithCircuitBreaker(repo ProductRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *ProductRepositoryWithCircuitBreaker {
	return &ProductRepositoryWithCircuitBreaker{repo: repo, cb: cb}
}

func (r *ProductRepositoryWithCircuitBreaker) Get(ctx context.Context, id int64) (*model.Product, error) {
	return guarded(ctx, r.cb, func() (*model.Product, error) { return r.repo.Get(ctx, id) })
}

func (r *ProductRepositoryWithCircuitBreaker) Upsert(ctx context.Context, p *model.Product) error {
	return guardedExec(ctx, r.cb, func() error { return r.repo.Upsert(ctx, p) })
}

// OrderRepositoryWithCircuitBreaker fails fast while the orders collection is unreachable.
type OrderRepositoryWithCircuitBreaker struct {
	repo OrderRepositoryInterface
	cb   *circuitbreaker.CircuitBreaker
}

func NewOrderRepositoryWithCircuitBreaker(repo OrderRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *OrderRepositoryWithCircuitBreaker {
	return &OrderRepositoryWithCircuitBreaker{repo: repo, cb: cb}
}

func (r *OrderRepositoryWithCircuitBreaker) Create(ctx context.Context, order *model.Order) error {
	return guardedExec(ctx, r.cb, func() error { return r.repo.Create(ctx, order) })
}

func (r *OrderRepositoryWithCircuitBreaker) Get(ctx context.Context, id string) (*model.Order, error) {
	return guarded(ctx, r.cb, func() (*model.Order, error) { return r.repo.Get(ctx, id) })
}

// LogsRepositoryWithCircuitBreaker protects the audit collection. Audit writes
// are best effort, so an open circuit drops them without an error; reads
// still report ErrCircuitOpen.
type LogsRepositoryWithCircuitBreaker struct {
	repo LogsRepositoryInterface
	cb   *circuitbreaker.CircuitBreaker
}

func NewLogsRepositoryWithCircuitBreaker(repo LogsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *LogsRepositoryWithCircuitBreaker {
	return &LogsRepositoryWithCircuitBreaker{repo: repo, cb: cb}
}

func (r *LogsRepositoryWithCircuitBreaker) Create(ctx context.Context, entry *model.LogEntry) error {
	return dropWhenOpen(guardedExec(ctx, r.cb, func() error { return r.repo.Create(ctx, entry) }))
}

func (r *LogsRepositoryWithCircuitBreaker) CreateMany(ctx context.Context, entries []*model.LogEntry) error {
	return dropWhenOpen(guardedExec(ctx, r.cb, func() error { return r.repo.CreateMany(ctx, entries) }))
}

func (r *LogsRepositoryWithCircuitBreaker) Query(ctx context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error) {
	return guarded(ctx, r.cb, func() ([]model.LogEntry, error) { return r.repo.Query(ctx, opts) })
}

func (r *LogsRepositoryWithCircuitBreaker) Count(ctx context.Context, opts model.LogQueryOptions) (int64, error) {
	return guarded(ctx, r.cb, func() (int64, error) { return r.repo.Count(ctx, opts) })
}

func dropWhenOpen(err error) error {
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil
	}
	return err
}
