package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/guttosm/bundle-service/internal/repository"
)

// CatalogService provides catalog lookups for bundle resolution and admin seeding.
type CatalogService interface {
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	GetVariation(ctx context.Context, id, parentID int64) (*model.Variation, error)
	Upsert(ctx context.Context, product *model.Product) error
}

// CatalogServiceImpl implements CatalogService.
type CatalogServiceImpl struct {
	productRepo repository.ProductRepositoryInterface
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(productRepo repository.ProductRepositoryInterface) CatalogService {
	return &CatalogServiceImpl{productRepo: productRepo}
}

func (s *CatalogServiceImpl) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	if s.productRepo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	p, err := s.productRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *CatalogServiceImpl) GetVariation(ctx context.Context, id, parentID int64) (*model.Variation, error) {
	p, err := s.GetProduct(ctx, parentID)
	if err != nil {
		return nil, err
	}
	v, ok := p.Variation(id)
	if !ok {
		return nil, ErrProductNotFound
	}
	return &v, nil
}

// Upsert validates and stores a product. Variations are bound to the product id.
func (s *CatalogServiceImpl) Upsert(ctx context.Context, product *model.Product) error {
	if s.productRepo == nil {
		return ErrRepositoryNotConfigured
	}
	if err := validateProduct(product); err != nil {
		return err
	}
	for i := range product.Variations {
		product.Variations[i].ParentID = product.ID
	}
	return s.productRepo.Upsert(ctx, product)
}

func validateProduct(p *model.Product) error {
	if p == nil || p.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.RegularPrice.IsNegative() || p.CurrentPrice.IsNegative() {
		return fmt.Errorf("%w: prices must not be negative", ErrInvalidProduct)
	}
	seen := make(map[int64]bool, len(p.Variations))
	for _, v := range p.Variations {
		if v.ID <= 0 || v.ID == p.ID || seen[v.ID] {
			return fmt.Errorf("%w: variation id %d", ErrInvalidProduct, v.ID)
		}
		seen[v.ID] = true
		if v.RegularPrice.IsNegative() || v.CurrentPrice.IsNegative() {
			return fmt.Errorf("%w: variation %d prices must not be negative", ErrInvalidProduct, v.ID)
		}
	}
	return nil
}
