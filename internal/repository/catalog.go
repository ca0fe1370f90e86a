package repository

import (
	"context"
	"errors"

	"github.com/guttosm/bundle-service/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductRepository stores catalog products with their variations embedded.
type ProductRepository struct {
	collection *mongo.Collection
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *MongoDB) *ProductRepository {
	return &ProductRepository{
		collection: db.Products,
	}
}

// Get returns the product, or nil when it does not exist.
func (r *ProductRepository) Get(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert replaces the product document.
func (r *ProductRepository) Upsert(ctx context.Context, p *model.Product) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, options.Replace().SetUpsert(true))
	return err
}
