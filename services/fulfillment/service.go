package fulfillment

import (
	"context"
	"fmt"
	"time"

	"ingresso/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FulfillBooking mints tickets for a paid booking and sends the confirmation.
func (s *DefaultService) FulfillBooking(ctx context.Context, bookingID string, resend bool) error {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("fulfillment: failed to load booking %s: %w", bookingID, err)
	}
	if b.PaymentStatus != models.PaymentStatusPaid {
		// A stale or misrouted task; payment is the source of truth.
		s.Logger.Warn("fulfillment task for unpaid booking dropped",
			zap.String("bookingId", bookingID),
			zap.String("status", string(b.PaymentStatus)))
		return nil
	}

	tickets, err := s.Tickets.GetByBookingID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("fulfillment: failed to check existing tickets for %s: %w", bookingID, err)
	}
	if len(tickets) == 0 {
		tickets = mintTickets(b)
		if err := s.Tickets.CreateMany(ctx, tickets); err != nil {
			return fmt.Errorf("fulfillment: failed to issue tickets for %s: %w", bookingID, err)
		}
		s.Logger.Info("tickets issued",
			zap.String("bookingId", bookingID),
			zap.Int("count", len(tickets)))
	} else if !resend {
		s.Logger.Info("tickets already issued, replayed task re-sends confirmation only",
			zap.String("bookingId", bookingID))
	}

	if err := s.Notifier.SendPaymentConfirmation(ctx, b, tickets); err != nil {
		return fmt.Errorf("fulfillment: failed to send confirmation for %s: %w", bookingID, err)
	}
	return nil
}

// mintTickets creates one ticket per booked unit. The code doubles as the
// QR payload shown at check-in.
func mintTickets(b *models.Booking) []models.Ticket {
	now := time.Now()
	tickets := make([]models.Ticket, 0, b.Quantity)
	for i := 0; i < b.Quantity; i++ {
		tickets = append(tickets, models.Ticket{
			ID:        uuid.New().String(),
			BookingID: b.ID,
			EventID:   b.EventID,
			UserID:    b.UserID,
			Code:      uuid.New().String(),
			IssuedAt:  now,
		})
	}
	return tickets
}
