// Package repository provides data access for bundles, catalog, orders, carts and audit logs.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned by mutations targeting a missing document.
var ErrNotFound = errors.New("document not found")

// Collection names.
const (
	bundlesCollection  = "bundles"
	productsCollection = "products"
	ordersCollection   = "orders"
	logsCollection     = "logs"
)

const logsTTLIndex = "timestamp_ttl"

// MongoConfig holds MongoDB connection pool settings.
type MongoConfig struct {
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
	// ServerSelectionTimeout bounds how long a request waits for a usable node.
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
	Compressors            []string
}

// DefaultMongoConfig returns the pool settings used by the service.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		MaxPoolSize:            50,
		MinPoolSize:            5,
		MaxConnIdleTime:        10 * time.Minute,
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 5 * time.Second,
		SocketTimeout:          30 * time.Second,
		Compressors:            []string{"zstd", "snappy", "zlib"},
	}
}

func (c MongoConfig) clientOptions(uri string) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(uri).
		SetRegistry(newRegistry()).
		SetMaxPoolSize(c.MaxPoolSize).
		SetMinPoolSize(c.MinPoolSize).
		SetMaxConnIdleTime(c.MaxConnIdleTime).
		SetConnectTimeout(c.ConnectTimeout).
		SetServerSelectionTimeout(c.ServerSelectionTimeout).
		SetSocketTimeout(c.SocketTimeout).
		SetRetryWrites(true).
		SetRetryReads(true)
	if len(c.Compressors) > 0 {
		opts.SetCompressors(c.Compressors)
	}
	return opts
}

// MongoDB provides the client and the service collections.
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
	Bundles  *mongo.Collection
	Products *mongo.Collection
	Orders   *mongo.Collection
	Logs     *mongo.Collection
}

// NewMongoDB connects with DefaultMongoConfig.
func NewMongoDB(uri, databaseName string) (*MongoDB, error) {
	return NewMongoDBWithConfig(uri, databaseName, DefaultMongoConfig())
}

// NewMongoDBWithConfig connects, pings and ensures the indexes the repositories rely on.
func NewMongoDBWithConfig(uri, databaseName string, cfg MongoConfig) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, cfg.clientOptions(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	db := client.Database(databaseName)
	m := &MongoDB{
		Client:   client,
		Database: db,
		Bundles:  db.Collection(bundlesCollection),
		Products: db.Collection(productsCollection),
		Orders:   db.Collection(ordersCollection),
		Logs:     db.Collection(logsCollection),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

// ensureIndexes creates the secondary indexes. Only the orders index is required;
// the others speed up admin and audit queries.
func (m *MongoDB) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll     *mongo.Collection
		model    mongo.IndexModel
		required bool
	}{
		{
			coll: m.Orders,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("session_created"),
			},
			required: true,
		},
		{
			// reverse lookup from a child product to the bundles offering it
			coll: m.Bundles,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "slots.allowed_product_ids", Value: 1}},
				Options: options.Index().SetName("slot_products"),
			},
		},
		{
			coll: m.Logs,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "request_id", Value: 1}},
				Options: options.Index().SetName("request_id"),
			},
		},
		{
			coll: m.Logs,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "action_type", Value: 1}},
				Options: options.Index().SetName("session_action"),
			},
		},
	}

	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil && idx.required {
			return fmt.Errorf("creating %s index on %s: %w", *idx.model.Options.Name, idx.coll.Name(), err)
		}
	}
	return nil
}

// SetLogsTTL (re)creates the TTL index expiring audit entries after ttl.
func (m *MongoDB) SetLogsTTL(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	// the index may not exist yet
	_, _ = m.Logs.Indexes().DropOne(ctx, logsTTLIndex)

	_, err := m.Logs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: 1}},
		Options: options.Index().SetName(logsTTLIndex).SetExpireAfterSeconds(int32(ttl.Seconds())),
	})
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Name == "IndexOptionsConflict" {
		return nil
	}
	return err
}

// Close disconnects the client.
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// HealthCheck pings the primary with a short deadline.
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.Client.Ping(ctx, nil)
}
