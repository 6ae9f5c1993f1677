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

// Resend re-enqueues fulfillment for a PAID booking, e.g. when the original
// confirmation email never arrived.
func (s *DefaultPaymentService) Resend(ctx context.Context, userID, bookingID string) error {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return NewNotFoundError("booking", bookingID)
		}
		return fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}
	if b.UserID != userID {
		return NewAuthorizationError("booking belongs to another user")
	}
	if b.PaymentStatus != models.PaymentStatusPaid {
		return NewValidationError("booking is not paid, nothing to resend")
	}

	if err := s.Fulfillment.EnqueueFulfillment(ctx, bookingID, true); err != nil {
		return fmt.Errorf("failed to enqueue resend for booking %s: %w", bookingID, err)
	}
	s.Logger.Info("fulfillment resend enqueued", zap.String("bookingId", bookingID))
	return nil
}

// SweepExpired walks bookings left PENDING past their expiry and reconciles
// each against the live gateway state. A booking the gateway settled gets
// the normal transition (including fulfillment on PAID); one the gateway
// still holds open is canceled on both sides. Returns the number of
// bookings resolved.
func (s *DefaultPaymentService) SweepExpired(ctx context.Context, limit int64) (int, error) {
	expired, err := s.Repo.FindExpiredPending(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired bookings: %w", err)
	}

	resolved := 0
	for i := range expired {
		b := &expired[i]
		if s.sweepOne(ctx, b) {
			resolved++
		}
	}
	if resolved > 0 {
		s.Logger.Info("expiry sweep resolved stale bookings", zap.Int("count", resolved))
	}
	return resolved, nil
}

func (s *DefaultPaymentService) sweepOne(ctx context.Context, b *models.Booking) bool {
	target := models.PaymentStatusCanceled

	if b.ExternalPaymentID != "" {
		snap, err := s.Gateway.RetrieveIntent(ctx, b.ExternalPaymentID)
		switch {
		case err == nil:
			if mapped := statusFromIntent(snap.Status); mapped != models.PaymentStatusPending {
				target = mapped
			} else {
				// Still open on the gateway side; close it out there
				// before canceling locally.
				if cErr := s.Gateway.CancelIntent(ctx, b.ExternalPaymentID); cErr != nil {
					s.Logger.Warn("failed to cancel expired intent",
						zap.String("intentId", b.ExternalPaymentID), zap.Error(cErr))
				}
			}
		case errors.Is(err, payment.ErrIntentNotFound):
			// Intent vanished on the gateway side; cancel locally.
		default:
			s.Logger.Warn("sweep could not reach gateway, booking left for next pass",
				zap.String("bookingId", b.ID), zap.Error(err))
			return false
		}
	}

	if err := s.applyTransition(ctx, b.ID, target); err != nil {
		s.Logger.Error("sweep transition failed",
			zap.String("bookingId", b.ID), zap.Error(err))
		return false
	}
	return true
}
