package bookingRepo

import (
	"context"

	"ingresso/models"
)

// BookingRepository defines data access for booking records.
type BookingRepository interface {
	// Create inserts a new booking record.
	Create(ctx context.Context, booking *models.Booking) error
	// GetByID retrieves a booking by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// GetByIntentID retrieves the booking holding the given external
	// payment reference.
	GetByIntentID(ctx context.Context, intentID string) (*models.Booking, error)
	// SetIntentRef writes the external payment id onto a booking that does
	// not have one yet. The reference is set once and never reassigned;
	// linking an intent another booking already holds returns
	// ErrIntentConflict.
	SetIntentRef(ctx context.Context, bookingID, intentID string) error
	// TransitionIfPending atomically moves a booking from PENDING to the
	// given terminal status. It returns true when this call performed the
	// transition, false when the booking was already terminal.
	TransitionIfPending(ctx context.Context, bookingID string, to models.PaymentStatus) (bool, error)
	// FindExpiredPending returns bookings still PENDING whose expiry has
	// passed, capped at limit.
	FindExpiredPending(ctx context.Context, limit int64) ([]models.Booking, error)
}
