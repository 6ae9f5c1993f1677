package models

import "time"

// PaymentStatus is the lifecycle state of a booking's payment.
// PENDING is the only non-terminal state; PAID, FAILED and CANCELED are
// terminal and are never overwritten once written.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusCanceled PaymentStatus = "CANCELED"
)

// IsTerminal reports whether the status can no longer change.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed || s == PaymentStatusCanceled
}

// Booking represents a single attempted ticket purchase and its payment
// lifecycle. Bookings are never deleted; they remain as an audit trail.
type Booking struct {
	ID                string        `bson:"id" json:"id"` // Unique booking identifier (UUID)
	UserID            string        `bson:"user_id" json:"user_id"`
	EventID           string        `bson:"event_id" json:"event_id"`
	TicketTypeID      string        `bson:"ticket_type_id" json:"ticket_type_id"`
	CustomerName      string        `bson:"customer_name" json:"customer_name"`
	CustomerEmail     string        `bson:"customer_email" json:"customer_email"`
	CustomerPhone     string        `bson:"customer_phone,omitempty" json:"customer_phone,omitempty"`
	Quantity          int           `bson:"quantity" json:"quantity"`
	TotalPrice        float64       `bson:"total_price" json:"total_price"` // Quoted total in major units (e.g. 150.00)
	Currency          string        `bson:"currency" json:"currency"`       // ISO code, lower case (e.g. "brl")
	PaymentMethod     string        `bson:"payment_method" json:"payment_method"`
	PaymentStatus     PaymentStatus `bson:"payment_status" json:"payment_status"`
	ExternalPaymentID string        `bson:"external_payment_id,omitempty" json:"external_payment_id,omitempty"` // Gateway intent id, set once
	ExpiresAt         time.Time     `bson:"expires_at" json:"expires_at"`
	PaidAt            *time.Time    `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	CreatedAt         time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `bson:"updated_at" json:"updated_at"`
}
