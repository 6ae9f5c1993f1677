package ledgerRepo

import (
	"context"
	"fmt"
	"time"

	"ingresso/database"
	"ingresso/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoWebhookLedger implements WebhookLedger using MongoDB. The unique index
// on event_id is what makes the insert race-safe: whichever concurrent
// delivery inserts first wins, the rest get a duplicate-key error.
type MongoWebhookLedger struct {
	coll *mongo.Collection
}

// NewMongoWebhookLedger creates a new WebhookLedger backed by MongoDB.
func NewMongoWebhookLedger() WebhookLedger {
	coll := database.MongoClient.Database("ingresso").Collection("webhook_events")
	repo := &MongoWebhookLedger{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoWebhookLedger) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "recorded_at", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// RecordIfNew inserts the event id, returning false on duplicates.
func (r *MongoWebhookLedger) RecordIfNew(ctx context.Context, eventID, eventType string) (bool, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	record := models.WebhookEventRecord{
		EventID:    eventID,
		EventType:  eventType,
		RecordedAt: time.Now(),
	}
	_, err := r.coll.InsertOne(ctxWithTimeout, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("error recording webhook event %s: %w", eventID, err)
	}
	return true, nil
}
