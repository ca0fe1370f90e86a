package repository

import (
	"context"
	"errors"
	"time"

	"github.com/guttosm/bundle-service/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BundleRepository stores bundle definitions keyed by the parent product id.
type BundleRepository struct {
	collection *mongo.Collection
}

// NewBundleRepository creates a new bundle repository.
func NewBundleRepository(db *MongoDB) *BundleRepository {
	return &BundleRepository{
		collection: db.Bundles,
	}
}

// Get returns the bundle definition, or nil when the product is not a bundle.
func (r *BundleRepository) Get(ctx context.Context, bundleID int64) (*model.BundleDefinition, error) {
	var def model.BundleDefinition
	err := r.collection.FindOne(ctx, bson.M{"_id": bundleID}).Decode(&def)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// Upsert stores the definition, incrementing its version.
func (r *BundleRepository) Upsert(ctx context.Context, def *model.BundleDefinition) (*model.BundleDefinition, error) {
	update := bson.M{
		"$set": bson.M{
			"name":         def.Name,
			"bundle_price": def.BundlePrice,
			"slots":        def.Slots,
			"updated_at":   time.Now().UTC(),
			"updated_by":   def.UpdatedBy,
		},
		"$inc": bson.M{"version": 1},
	}

	var saved model.BundleDefinition
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": def.BundleID},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&saved)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// List returns bundle definitions ordered by id.
func (r *BundleRepository) List(ctx context.Context, limit int) ([]model.BundleDefinition, error) {
	opts := options.Find().SetSort(bson.M{"_id": 1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	defs := []model.BundleDefinition{}
	if err := cursor.All(ctx, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// Delete removes a bundle definition.
func (r *BundleRepository) Delete(ctx context.Context, bundleID int64) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": bundleID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
