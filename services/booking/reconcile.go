package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "ingresso/database/repository/booking"
	"ingresso/models"
	"ingresso/services/payment"

	"go.uber.org/zap"
)

// statusFromIntent maps a gateway intent status onto the local payment
// status. Anything not listed leaves the booking PENDING.
func statusFromIntent(status models.IntentStatus) models.PaymentStatus {
	switch status {
	case models.IntentStatusSucceeded:
		return models.PaymentStatusPaid
	case models.IntentStatusCanceled, models.IntentStatusPaymentFailed:
		return models.PaymentStatusFailed
	default:
		return models.PaymentStatusPending
	}
}

// SyncBooking is the pull path. The caller polls after completing payment on
// the gateway's UI; an already-terminal booking short-circuits without a
// gateway call, which makes duplicate polling cheap.
func (s *DefaultPaymentService) SyncBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	if bookingID == "" {
		return nil, NewValidationError("missing booking id")
	}

	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, NewNotFoundError("booking", bookingID)
		}
		return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}
	if b.UserID != userID {
		return nil, NewAuthorizationError("booking belongs to another user")
	}

	if b.PaymentStatus.IsTerminal() {
		return b, nil
	}
	if b.ExternalPaymentID == "" {
		// No intent was ever linked, nothing to reconcile against.
		return b, nil
	}

	snap, err := s.Gateway.RetrieveIntent(ctx, b.ExternalPaymentID)
	if err != nil {
		if errors.Is(err, payment.ErrIntentNotFound) {
			return nil, NewNotFoundError("payment intent", b.ExternalPaymentID)
		}
		return nil, err
	}

	target := statusFromIntent(snap.Status)
	if target == models.PaymentStatusPending {
		return b, nil
	}

	if err := s.applyTransition(ctx, b.ID, target); err != nil {
		// Surfaced to the client as retryable; the next poll will try again.
		return nil, err
	}

	// Re-read rather than patching the local copy: a racing webhook may
	// have performed the transition, possibly to a different terminal state.
	return s.Repo.GetByID(ctx, bookingID)
}

// RetrieveIntent is a read-only gateway snapshot fetch.
func (s *DefaultPaymentService) RetrieveIntent(ctx context.Context, intentID string) (*models.IntentSnapshot, error) {
	if intentID == "" {
		return nil, NewValidationError("missing intent id")
	}
	snap, err := s.Gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		if errors.Is(err, payment.ErrIntentNotFound) {
			return nil, NewNotFoundError("payment intent", intentID)
		}
		return nil, err
	}
	return snap, nil
}

// applyTransition performs the conditional PENDING-only write and, on a won
// PAID transition, hands the booking to the fulfillment queue. Losing the
// race is not an error: the other path already resolved the booking and the
// terminal-state invariant forbids overwriting its result.
func (s *DefaultPaymentService) applyTransition(ctx context.Context, bookingID string, target models.PaymentStatus) error {
	transitioned, err := s.Repo.TransitionIfPending(ctx, bookingID, target)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", bookingID, err)
	}
	if !transitioned {
		s.Logger.Debug("booking already terminal, transition skipped",
			zap.String("bookingId", bookingID),
			zap.String("target", string(target)))
		return nil
	}

	s.Logger.Info("booking payment resolved",
		zap.String("bookingId", bookingID),
		zap.String("status", string(target)))

	if target == models.PaymentStatusPaid {
		// Fire and forget: fulfillment failure never rolls back PAID.
		if err := s.Fulfillment.EnqueueFulfillment(ctx, bookingID, false); err != nil {
			s.Logger.Error("failed to enqueue fulfillment",
				zap.String("bookingId", bookingID), zap.Error(err))
		}
	}
	return nil
}
