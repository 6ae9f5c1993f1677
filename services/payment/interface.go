package payment

import (
	"context"

	"ingresso/models"
)

// Gateway wraps the external payment processor. It owns no state; the
// booking record is the local source of truth and the intent lives on the
// processor's side.
type Gateway interface {
	// CreateIntent opens a payment intent for the given booking inputs.
	// The booking id travels in the intent metadata so webhook deliveries
	// can be correlated back. The idempotency key guards against duplicate
	// charges on client retry.
	CreateIntent(ctx context.Context, booking *models.Booking, idempotencyKey string) (*models.IntentRef, error)
	// RetrieveIntent fetches a read-only snapshot of an intent.
	RetrieveIntent(ctx context.Context, intentID string) (*models.IntentSnapshot, error)
	// CancelIntent is the compensating action used when a local write fails
	// after the intent was already created. Best effort: failures are
	// logged by the caller, not retried indefinitely.
	CancelIntent(ctx context.Context, intentID string) error
}
