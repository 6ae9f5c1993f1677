package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "ingresso/database/repository/booking"
	"ingresso/models"

	"go.uber.org/zap"
)

// eventTransitions is the closed set of gateway events the push path acts
// on, each mapped to the terminal state it drives the booking toward.
var eventTransitions = map[models.WebhookEventKind]models.PaymentStatus{
	models.WebhookEventPaymentSucceeded: models.PaymentStatusPaid,
	models.WebhookEventPaymentFailed:    models.PaymentStatusFailed,
	models.WebhookEventPaymentCanceled:  models.PaymentStatusCanceled,
}

// HandleWebhookEvent is the push path. The gateway delivers at-least-once
// and possibly out of order relative to client polling; the ledger insert is
// the idempotency gate and the conditional PENDING-only write resolves
// ordering races with the pull path.
func (s *DefaultPaymentService) HandleWebhookEvent(ctx context.Context, event GatewayEvent) (bool, error) {
	if event.ID == "" {
		return false, NewValidationError("missing event id")
	}

	// Record the id before any business logic so a concurrent duplicate
	// delivery sees it as early as possible.
	isNew, err := s.Ledger.RecordIfNew(ctx, event.ID, string(event.Kind))
	if err != nil {
		return false, fmt.Errorf("failed to record webhook event: %w", err)
	}
	if !isNew {
		s.Logger.Info("duplicate webhook event skipped", zap.String("eventId", event.ID))
		return true, nil
	}

	target, known := eventTransitions[event.Kind]
	if !known {
		s.Logger.Debug("unhandled webhook event type ignored",
			zap.String("eventId", event.ID),
			zap.String("type", string(event.Kind)))
		return false, nil
	}

	if event.BookingID == "" {
		// Nothing to correlate the event against. Acknowledge so the
		// gateway stops redelivering.
		s.Logger.Warn("webhook event has no booking id in metadata, dropped",
			zap.String("eventId", event.ID),
			zap.String("intentId", event.IntentID))
		return false, nil
	}

	if _, err := s.Repo.GetByID(ctx, event.BookingID); err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			s.Logger.Warn("webhook event references unknown booking, dropped",
				zap.String("eventId", event.ID),
				zap.String("bookingId", event.BookingID))
			return false, nil
		}
		// The event id is already ledgered, so a redelivery provoked by an
		// error response would be skipped as a duplicate. Acknowledge and
		// leave the booking for the pull path or the expiry sweep.
		s.Logger.Error("webhook booking load failed, flagged for manual reconciliation",
			zap.String("eventId", event.ID),
			zap.String("bookingId", event.BookingID),
			zap.Error(err))
		return false, nil
	}

	if err := s.applyTransition(ctx, event.BookingID, target); err != nil {
		// Acknowledge anyway: the event id is already ledgered and a
		// redelivery would be skipped, so retrying buys nothing. The
		// booking stays PENDING and the pull path or the expiry sweep
		// will resolve it.
		s.Logger.Error("webhook transition failed, flagged for manual reconciliation",
			zap.String("eventId", event.ID),
			zap.String("bookingId", event.BookingID),
			zap.Error(err))
	}
	return false, nil
}
