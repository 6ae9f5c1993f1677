package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ensureIndexes creates indexes for frequently used fields in queries.
func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Sparse unique index: not every booking has an intent reference yet.
	intentIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "external_payment_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	}
	// Supports the expiry sweep.
	sweepIdx := mongo.IndexModel{
		Keys: bson.D{
			{Key: "payment_status", Value: 1},
			{Key: "expires_at", Value: 1},
		},
	}

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		intentIdx,
		sweepIdx,
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func optionsFindLimit(limit int64) *options.FindOptions {
	return options.Find().SetLimit(limit).SetSort(bson.D{{Key: "expires_at", Value: 1}})
}
