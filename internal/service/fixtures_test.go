package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/guttosm/bundle-service/internal/repository"
)

func testProducts() []model.Product {
	return []model.Product{
		{ID: 100, Name: "Training Set", Purchasable: true, InStock: true, CurrentPrice: dec("40.00")},
		{ID: 110, Name: "Full Kit", Purchasable: true, InStock: true, CurrentPrice: dec("60.00")},
		{
			ID: 201, Name: "Seamless Top Black", Purchasable: true, InStock: true,
			RegularPrice: dec("25.00"), CurrentPrice: dec("25.00"),
			Variations: []model.Variation{
				{ID: 2011, ParentID: 201, Purchasable: true, InStock: true, RegularPrice: dec("25.00"), CurrentPrice: dec("25.00"), Attributes: map[string]string{"size": "M"}},
				{ID: 2012, ParentID: 201, Purchasable: true, InStock: false, RegularPrice: dec("25.00"), CurrentPrice: dec("25.00"), Attributes: map[string]string{"size": "L"}},
				{ID: 2013, ParentID: 201, Purchasable: false, InStock: true, RegularPrice: dec("25.00"), CurrentPrice: dec("25.00"), Attributes: map[string]string{"size": "XL"}},
			},
		},
		{
			ID: 202, Name: "Seamless Top Blue", Purchasable: true, InStock: true,
			RegularPrice: dec("25.00"), CurrentPrice: dec("22.50"),
			Variations: []model.Variation{
				{ID: 2021, ParentID: 202, Purchasable: true, InStock: true, RegularPrice: dec("25.00"), CurrentPrice: dec("22.50"), Attributes: map[string]string{"size": "M"}},
			},
		},
		{ID: 301, Name: "Shorts Black", Purchasable: true, InStock: true, RegularPrice: dec("35.00"), CurrentPrice: dec("35.00")},
		{ID: 302, Name: "Shorts Grey", Purchasable: true, InStock: false, RegularPrice: dec("35.00"), CurrentPrice: dec("35.00")},
		{ID: 303, Name: "Shorts Red", Purchasable: false, InStock: true, RegularPrice: dec("35.00"), CurrentPrice: dec("35.00")},
		{ID: 401, Name: "Socks", Purchasable: true, InStock: true, CurrentPrice: dec("10.00")},
		{ID: 999, Name: "Retired Jacket", Purchasable: false, InStock: false, CurrentPrice: dec("80.00")},
	}
}

func testBundles() []model.BundleDefinition {
	return []model.BundleDefinition{
		{
			BundleID:    100,
			Name:        "Training Set",
			BundlePrice: dec("40.00"),
			Slots: []model.BundleSlot{
				{Key: "top", Label: "Top", Quantity: 1, AllowedProductIDs: []int64{201, 202}},
				{Key: "bottom", Label: "Bottom", Quantity: 1, AllowedProductIDs: []int64{301, 302, 303}},
			},
		},
		{
			BundleID:    110,
			Name:        "Full Kit",
			BundlePrice: dec("60.00"),
			Slots: []model.BundleSlot{
				{Key: "top", Label: "Top", Quantity: 1, AllowedProductIDs: []int64{201, 202}},
				{Key: "bottom", Label: "Bottom", Quantity: 1, AllowedProductIDs: []int64{301}},
				{Key: "socks", Label: "Socks", Quantity: 2, AllowedProductIDs: []int64{401}},
				{Key: "extra", Label: "Extra", Quantity: 1, AllowedProductIDs: []int64{999, 12345}},
			},
		},
	}
}

type fixture struct {
	products *repository.MemoryProductRepository
	bundles  *repository.MemoryBundleRepository
	orders   *repository.MemoryOrderRepository
	carts    *repository.MemoryCartStore
	catalog  CatalogService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		products: repository.NewMemoryProductRepository(),
		bundles:  repository.NewMemoryBundleRepository(),
		orders:   repository.NewMemoryOrderRepository(),
		carts:    repository.NewMemoryCartStore(),
	}
	for _, p := range testProducts() {
		p := p
		require.NoError(t, f.products.Upsert(ctx, &p))
	}
	for _, b := range testBundles() {
		b := b
		_, err := f.bundles.Upsert(ctx, &b)
		require.NoError(t, err)
	}
	f.catalog = NewCatalogService(f.products)
	return f
}

func (f *fixture) bundle(t *testing.T, id int64) *model.BundleDefinition {
	t.Helper()
	def, err := f.bundles.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, def)
	return def
}
