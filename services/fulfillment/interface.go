package fulfillment

import (
	"context"

	bookingRepo "ingresso/database/repository/booking"
	ticketRepo "ingresso/database/repository/ticket"
	"ingresso/services/notification"

	"go.uber.org/zap"
)

// Service issues tickets and sends the buyer confirmation once a booking is
// paid. It runs on the task queue, downstream of the payment confirmation:
// its failures are retried there and never touch the payment state.
type Service interface {
	// FulfillBooking mints tickets for a paid booking (at most once) and
	// sends the confirmation. Safe to replay: an already-fulfilled booking
	// only re-sends the confirmation.
	FulfillBooking(ctx context.Context, bookingID string, resend bool) error
}

// DefaultService is the production implementation.
type DefaultService struct {
	Bookings bookingRepo.BookingRepository
	Tickets  ticketRepo.TicketRepository
	Notifier notification.NotificationService
	Logger   *zap.Logger
}
