package ticketRepo

import (
	"context"

	"ingresso/models"
)

// TicketRepository defines data access for issued tickets.
type TicketRepository interface {
	// CreateMany inserts a batch of tickets for one booking.
	CreateMany(ctx context.Context, tickets []models.Ticket) error
	// GetByBookingID returns the tickets already issued for a booking.
	GetByBookingID(ctx context.Context, bookingID string) ([]models.Ticket, error)
}
