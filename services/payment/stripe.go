package payment

import (
	"context"
	"errors"
	"fmt"

	"ingresso/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// StripeGateway implements Gateway against the Stripe API. The package-level
// stripe.Key is set once in main from config.
type StripeGateway struct {
	logger *zap.Logger
}

// NewStripeGateway creates a new Stripe-backed Gateway.
func NewStripeGateway(logger *zap.Logger) *StripeGateway {
	return &StripeGateway{logger: logger}
}

// CreateIntent opens a payment intent carrying the booking correlation
// metadata.
func (g *StripeGateway) CreateIntent(ctx context.Context, booking *models.Booking, idempotencyKey string) (*models.IntentRef, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(ToMinorUnits(booking.TotalPrice)),
		Currency: stripe.String(booking.Currency),
	}
	params.Context = ctx
	if booking.PaymentMethod != "" {
		params.PaymentMethodTypes = stripe.StringSlice([]string{booking.PaymentMethod})
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}
	params.AddMetadata("bookingId", booking.ID)
	params.AddMetadata("ticketTypeId", booking.TicketTypeID)
	params.AddMetadata("eventId", booking.EventID)
	params.AddMetadata("userId", booking.UserID)

	pi, err := paymentintent.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			g.logger.Error("stripe rejected intent creation",
				zap.String("bookingId", booking.ID),
				zap.String("code", string(stripeErr.Code)),
				zap.Error(err))
			return nil, NewGatewayError(string(stripeErr.Code), stripeErr.Msg)
		}
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &models.IntentRef{
		IntentID:     pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// RetrieveIntent fetches a read-only snapshot of an intent.
func (g *StripeGateway) RetrieveIntent(ctx context.Context, intentID string) (*models.IntentSnapshot, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(intentID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			if stripeErr.Code == stripe.ErrorCodeResourceMissing {
				return nil, ErrIntentNotFound
			}
			return nil, NewGatewayError(string(stripeErr.Code), stripeErr.Msg)
		}
		return nil, fmt.Errorf("failed to retrieve payment intent %s: %w", intentID, err)
	}

	return snapshotFromIntent(pi), nil
}

// CancelIntent cancels an intent after a local write failure. Best effort.
func (g *StripeGateway) CancelIntent(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	if _, err := paymentintent.Cancel(intentID, params); err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return NewGatewayError(string(stripeErr.Code), stripeErr.Msg)
		}
		return fmt.Errorf("failed to cancel payment intent %s: %w", intentID, err)
	}
	return nil
}

// snapshotFromIntent maps the Stripe intent onto the local snapshot model.
// Stripe has no "payment_failed" intent status; a failed attempt parks the
// intent back in requires_payment_method with a last_payment_error set, and
// that combination is what the reconciler treats as a failure.
func snapshotFromIntent(pi *stripe.PaymentIntent) *models.IntentSnapshot {
	snap := &models.IntentSnapshot{
		IntentID: pi.ID,
		Amount:   pi.Amount,
		Currency: string(pi.Currency),
		Metadata: pi.Metadata,
	}
	if pi.Metadata != nil {
		snap.BookingID = pi.Metadata["bookingId"]
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		snap.Status = models.IntentStatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		snap.Status = models.IntentStatusCanceled
	case stripe.PaymentIntentStatusProcessing:
		snap.Status = models.IntentStatusProcessing
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		if pi.LastPaymentError != nil {
			snap.Status = models.IntentStatusPaymentFailed
		} else {
			snap.Status = models.IntentStatusRequiresAction
		}
	default:
		snap.Status = models.IntentStatusRequiresAction
	}
	return snap
}
