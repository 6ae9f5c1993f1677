package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ingresso/database"
	"ingresso/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no booking matches the lookup.
var ErrNotFound = errors.New("booking not found")

// ErrIntentConflict is returned when the intent reference being linked is
// already held by another booking. The unique index on external_payment_id
// surfaces this as a duplicate-key error.
var ErrIntentConflict = errors.New("payment intent already linked to another booking")

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new BookingRepository backed by MongoDB.
func NewMongoBookingRepo() BookingRepository {
	coll := database.MongoClient.Database("ingresso").Collection("bookings")
	repo := &MongoBookingRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// Create inserts a new booking record.
func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.InsertOne(ctxWithTimeout, booking)
	if err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its ID.
func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := r.coll.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

// GetByIntentID retrieves the booking holding the external payment reference.
func (r *MongoBookingRepo) GetByIntentID(ctx context.Context, intentID string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := r.coll.FindOne(ctxWithTimeout, bson.M{"external_payment_id": intentID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking for intent %s: %w", intentID, err)
	}
	return &booking, nil
}

// SetIntentRef writes the external payment id onto a booking that has none.
func (r *MongoBookingRepo) SetIntentRef(ctx context.Context, bookingID, intentID string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id": bookingID,
		"$or": bson.A{
			bson.M{"external_payment_id": bson.M{"$exists": false}},
			bson.M{"external_payment_id": ""},
		},
	}
	update := bson.M{"$set": bson.M{
		"external_payment_id": intentID,
		"updated_at":          time.Now(),
	}}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrIntentConflict
		}
		return fmt.Errorf("error linking intent to booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("booking %s missing or already linked to an intent", bookingID)
	}
	return nil
}

// TransitionIfPending atomically moves a booking out of PENDING. A guard on
// the current status keeps terminal states from ever being overwritten: when
// another path already resolved the booking, MatchedCount is zero and the
// caller learns it lost the race.
func (r *MongoBookingRepo) TransitionIfPending(ctx context.Context, bookingID string, to models.PaymentStatus) (bool, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	set := bson.M{
		"payment_status": to,
		"updated_at":     now,
	}
	if to == models.PaymentStatusPaid {
		set["paid_at"] = now
	}

	filter := bson.M{"id": bookingID, "payment_status": models.PaymentStatusPending}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("error transitioning booking %s to %s: %w", bookingID, to, err)
	}
	return res.MatchedCount > 0, nil
}

// FindExpiredPending returns bookings still PENDING past their expiry.
func (r *MongoBookingRepo) FindExpiredPending(ctx context.Context, limit int64) ([]models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"payment_status": models.PaymentStatusPending,
		"expires_at":     bson.M{"$lt": time.Now()},
	}
	opts := optionsFindLimit(limit)
	cursor, err := r.coll.Find(ctxWithTimeout, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired bookings: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var bookings []models.Booking
	for cursor.Next(ctxWithTimeout) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, cursor.Err()
}
