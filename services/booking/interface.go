package booking

import (
	"context"

	bookingRepo "ingresso/database/repository/booking"
	ledgerRepo "ingresso/database/repository/ledger"
	"ingresso/models"
	"ingresso/services/payment"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// PaymentService drives the payment lifecycle of a booking: intent creation,
// client-initiated sync (pull path) and webhook processing (push path). Both
// paths converge the booking to exactly one terminal state; the conditional
// PENDING-only write in the repository is the sole correctness guard.
type PaymentService interface {
	// CreateIntent creates a PENDING booking and opens a payment intent for
	// it. A repeated call with the same idempotency key returns the
	// original booking instead of opening a sibling charge.
	CreateIntent(ctx context.Context, req models.CreateIntentRequest) (*CreateIntentResponse, error)
	// SyncBooking is the pull path: reconcile a booking the caller owns
	// against the live gateway state.
	SyncBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error)
	// RetrieveIntent is a read-only gateway snapshot fetch.
	RetrieveIntent(ctx context.Context, intentID string) (*models.IntentSnapshot, error)
	// HandleWebhookEvent is the push path: process one gateway event,
	// skipping ids already present in the ledger. Returns true when the
	// event was skipped as a duplicate.
	HandleWebhookEvent(ctx context.Context, event GatewayEvent) (skipped bool, err error)
	// Resend re-enqueues fulfillment for an already-PAID booking the
	// caller owns.
	Resend(ctx context.Context, userID, bookingID string) error
	// SweepExpired reconciles bookings left PENDING past their expiry,
	// canceling those the gateway no longer intends to settle.
	SweepExpired(ctx context.Context, limit int64) (int, error)
}

// GatewayEvent is one decoded webhook delivery.
type GatewayEvent struct {
	ID        string
	Kind      models.WebhookEventKind
	IntentID  string
	BookingID string // From intent metadata, may be empty
}

// CreateIntentResponse is returned to the client after intent creation.
type CreateIntentResponse struct {
	BookingID    string `json:"bookingId"`
	IntentID     string `json:"intentId"`
	ClientSecret string `json:"clientSecret"`
}

// FulfillmentEnqueuer hands a paid booking to the background queue. Enqueue
// failures never roll back the PAID transition.
type FulfillmentEnqueuer interface {
	EnqueueFulfillment(ctx context.Context, bookingID string, resend bool) error
}

// DefaultPaymentService is the production implementation.
type DefaultPaymentService struct {
	Repo        bookingRepo.BookingRepository
	Ledger      ledgerRepo.WebhookLedger
	Gateway     payment.Gateway
	Fulfillment FulfillmentEnqueuer
	IdemCache   *redis.Client // Maps idempotency keys to created bookings; nil disables the mapping
	Logger      *zap.Logger
}
