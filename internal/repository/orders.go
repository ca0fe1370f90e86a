package repository

import (
	"context"
	"errors"

	"github.com/guttosm/bundle-service/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// OrderRepository stores placed orders.
type OrderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db *MongoDB) *OrderRepository {
	return &OrderRepository{
		collection: db.Orders,
	}
}

// Create inserts an order. Orders are never updated afterwards.
func (r *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	_, err := r.collection.InsertOne(ctx, order)
	return err
}

// Get returns the order, or nil when it does not exist.
func (r *OrderRepository) Get(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
