//go:build integration

package circuitbreaker_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/bundle-service/internal/circuitbreaker"
	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/guttosm/bundle-service/internal/repository"
	"github.com/guttosm/bundle-service/internal/testutil"
)

func TestCircuitBreaker_MongoOutage_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := testutil.SetupMongoDB(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Cleanup(ctx) })

	db, err := repository.NewMongoDB(container.URI, testutil.DatabaseName(t))
	require.NoError(t, err)

	now := time.Now()
	clock := func() time.Time { return now }
	cb := circuitbreaker.New(circuitbreaker.Config{
		Name:             "it-bundles",
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
		Now:              clock,
	})
	bundles := repository.NewBundleRepositoryWithCircuitBreaker(repository.NewBundleRepository(db), cb)

	_, err = bundles.Upsert(ctx, &model.BundleDefinition{
		BundleID:    100,
		Name:        "Training Set",
		BundlePrice: decimal.RequireFromString("40.00"),
		Slots: []model.BundleSlot{
			{Key: "top", Label: "Top", Quantity: 1, AllowedProductIDs: []int64{201}},
		},
	})
	require.NoError(t, err)

	missing, err := bundles.Get(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.True(t, cb.GetStats().IsHealthy)

	// simulate an outage by dropping the connection pool
	require.NoError(t, db.Close(ctx))

	for i := 0; i < 2; i++ {
		_, err = bundles.Get(ctx, 100)
		require.Error(t, err)
		assert.NotErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	}
	assert.Equal(t, circuitbreaker.StateOpen, cb.State())

	_, err = bundles.Get(ctx, 100)
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)

	stats := cb.GetStats()
	assert.False(t, stats.IsHealthy)
	assert.Equal(t, int64(1), stats.Rejected)
}
