package models

import "time"

// Ticket is an issued admission for a paid booking. The Code field is the
// opaque payload encoded into the QR shown at check-in.
type Ticket struct {
	ID        string    `bson:"id" json:"id"`
	BookingID string    `bson:"booking_id" json:"booking_id"`
	EventID   string    `bson:"event_id" json:"event_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Code      string    `bson:"code" json:"code"` // Check-in code, unique per ticket
	IssuedAt  time.Time `bson:"issued_at" json:"issued_at"`
	CheckedIn bool      `bson:"checked_in" json:"checked_in"`
}
