package ticketRepo

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

// MongoTicketRepo implements TicketRepository using MongoDB.
type MongoTicketRepo struct {
	coll *mongo.Collection
}

// NewMongoTicketRepo creates a new TicketRepository backed by MongoDB.
func NewMongoTicketRepo() TicketRepository {
	coll := database.MongoClient.Database("ingresso").Collection("tickets")
	repo := &MongoTicketRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoTicketRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// CreateMany inserts a batch of tickets for one booking.
func (r *MongoTicketRepo) CreateMany(ctx context.Context, tickets []models.Ticket) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	docs := make([]interface{}, 0, len(tickets))
	for _, t := range tickets {
		docs = append(docs, t)
	}
	if _, err := r.coll.InsertMany(ctxWithTimeout, docs); err != nil {
		return fmt.Errorf("error creating tickets: %w", err)
	}
	return nil
}

// GetByBookingID returns the tickets already issued for a booking.
func (r *MongoTicketRepo) GetByBookingID(ctx context.Context, bookingID string) ([]models.Ticket, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctxWithTimeout, bson.M{"booking_id": bookingID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for booking %s: %w", bookingID, err)
	}
	defer cursor.Close(ctxWithTimeout)

	var tickets []models.Ticket
	for cursor.Next(ctxWithTimeout) {
		var t models.Ticket
		if err := cursor.Decode(&t); err != nil {
			return nil, fmt.Errorf("failed to decode ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, cursor.Err()
}
