package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/guttosm/bundle-service/internal/domain/model"
)

// LogsRepository stores audit entries in the logs collection.
type LogsRepository struct {
	collection *mongo.Collection
}

// NewLogsRepository creates a logs repository on db.
func NewLogsRepository(db *MongoDB) *LogsRepository {
	return &LogsRepository{collection: db.Logs}
}

// Create inserts one entry.
func (r *LogsRepository) Create(ctx context.Context, entry *model.LogEntry) error {
	entry.Stamp(time.Now())
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// CreateMany inserts entries unordered so one bad document does not block the batch.
func (r *LogsRepository) CreateMany(ctx context.Context, entries []*model.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	now := time.Now()
	docs := make([]interface{}, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		entry.Stamp(now)
		docs = append(docs, entry)
	}
	if len(docs) == 0 {
		return nil
	}

	if _, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return fmt.Errorf("insert %d audit entries: %w", len(docs), err)
	}
	return nil
}

// Query returns matching entries, newest first.
func (r *LogsRepository) Query(ctx context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error) {
	find := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if opts.Limit > 0 {
		find.SetLimit(int64(opts.Limit))
	}
	if opts.Skip > 0 {
		find.SetSkip(int64(opts.Skip))
	}

	cursor, err := r.collection.Find(ctx, auditFilter(opts), find)
	if err != nil {
		return nil, fmt.Errorf("find audit entries: %w", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	entries := []model.LogEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode audit entries: %w", err)
	}
	return entries, nil
}

// Count returns how many entries match opts, ignoring Limit and Skip.
func (r *LogsRepository) Count(ctx context.Context, opts model.LogQueryOptions) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, auditFilter(opts))
	if err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return n, nil
}

// auditFilter builds the filter shared by Query and Count.
// Path matches as a case-insensitive literal substring.
func auditFilter(opts model.LogQueryOptions) bson.M {
	filter := bson.M{}
	for field, value := range map[string]string{
		"request_id":  opts.RequestID,
		"session_id":  opts.SessionID,
		"action_type": opts.ActionType,
		"level":       opts.Level,
		"method":      opts.Method,
	} {
		if value != "" {
			filter[field] = value
		}
	}
	if opts.Path != "" {
		filter["path"] = bson.M{"$regex": regexp.QuoteMeta(opts.Path), "$options": "i"}
	}

	window := bson.M{}
	if opts.StartTime != nil {
		window["$gte"] = *opts.StartTime
	}
	if opts.EndTime != nil {
		window["$lte"] = *opts.EndTime
	}
	if len(window) > 0 {
		filter["timestamp"] = window
	}
	return filter
}
