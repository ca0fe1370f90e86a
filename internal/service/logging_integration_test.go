//go:build integration

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/bundle-service/internal/circuitbreaker"
	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/guttosm/bundle-service/internal/repository"
	"github.com/guttosm/bundle-service/internal/testutil"
)

func openAuditStore(t *testing.T) repository.LogsRepositoryInterface {
	t.Helper()
	db, err := repository.NewMongoDB(testutil.MongoURI(), testutil.DatabaseName(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		_ = db.Database.Drop(ctx)
		_ = db.Close(ctx)
	})
	require.NoError(t, db.SetLogsTTL(context.Background(), 30*24*time.Hour))
	return repository.NewLogsRepository(db)
}

func TestLoggingService_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewLoggingService(openAuditStore(t))

	single := &model.LogEntry{Message: "bundle added", SessionID: "sess-a", ActionType: model.ActionBundleAdded}
	require.NoError(t, svc.CreateLog(ctx, single))
	assert.False(t, single.ID.IsZero())
	assert.Equal(t, model.LevelInfo, single.Level)

	require.NoError(t, svc.CreateLogs(ctx, []*model.LogEntry{
		{Level: model.LevelWarn, Message: "parent stripped", SessionID: "sess-a", ActionType: model.ActionParentStripped},
		{Level: model.LevelError, Message: "HTTP request", SessionID: "sess-b", ActionType: model.ActionHTTPRequest, StatusCode: 503},
		nil,
	}))

	t.Run("session filter", func(t *testing.T) {
		page, err := svc.Search(ctx, model.LogQueryOptions{SessionID: "sess-a"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
		assert.Len(t, page.Entries, 2)
		assert.Equal(t, 50, page.Limit)
	})

	t.Run("level filter", func(t *testing.T) {
		page, err := svc.Search(ctx, model.LogQueryOptions{Level: model.LevelError})
		require.NoError(t, err)
		require.Len(t, page.Entries, 1)
		assert.Equal(t, 503, page.Entries[0].StatusCode)
	})

	t.Run("paging keeps the total", func(t *testing.T) {
		page, err := svc.Search(ctx, model.LogQueryOptions{Limit: 1, Skip: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Len(t, page.Entries, 1)
		assert.Equal(t, 1, page.Skip)
	})

	t.Run("empty window", func(t *testing.T) {
		future := time.Now().Add(time.Hour)
		page, err := svc.Search(ctx, model.LogQueryOptions{StartTime: &future})
		require.NoError(t, err)
		assert.NotNil(t, page.Entries)
		assert.Empty(t, page.Entries)
		assert.Zero(t, page.Total)
	})
}

func TestAsyncAuditLogger_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := repository.NewLogsRepositoryWithCircuitBreaker(
		openAuditStore(t),
		circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: 2,
			SuccessThreshold: 1,
			Timeout:          100 * time.Millisecond,
			Name:             "audit-integration",
		}),
	)
	audit := NewAsyncAuditLogger(NewLoggingService(store), AsyncAuditLoggerConfig{
		BufferSize:    64,
		NumWorkers:    2,
		BatchSize:     8,
		FlushInterval: 20 * time.Millisecond,
	})

	for i := 0; i < 20; i++ {
		require.True(t, audit.Log(&model.LogEntry{Message: "bundle added", SessionID: "sess-async", ActionType: model.ActionBundleAdded}))
	}
	audit.Stop()

	stats := audit.Stats()
	assert.Equal(t, int64(20), stats.Written)
	assert.Zero(t, stats.Failed)

	page, err := audit.Search(ctx, model.LogQueryOptions{SessionID: "sess-async", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(20), page.Total)
	assert.Len(t, page.Entries, 5)
}
