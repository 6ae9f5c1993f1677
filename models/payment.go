package models

// CreateIntentRequest carries the inputs needed to open a payment intent for
// a new booking.
type CreateIntentRequest struct {
	UserID         string
	EventID        string
	TicketTypeID   string
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	Quantity       int
	UnitPrice      float64 // Quoted price per ticket in major units
	Currency       string
	PaymentMethod  string
	IdempotencyKey string
}

// IntentRef is the gateway's handle for a created payment intent.
type IntentRef struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
}

// IntentStatus mirrors the gateway-side lifecycle of a payment intent.
type IntentStatus string

const (
	IntentStatusSucceeded      IntentStatus = "succeeded"
	IntentStatusProcessing     IntentStatus = "processing"
	IntentStatusRequiresAction IntentStatus = "requires_action"
	IntentStatusCanceled       IntentStatus = "canceled"
	IntentStatusPaymentFailed  IntentStatus = "payment_failed"
)

// IntentSnapshot is a read-only view of a payment intent fetched from the
// gateway.
type IntentSnapshot struct {
	IntentID  string            `json:"intent_id"`
	Status    IntentStatus      `json:"status"`
	Amount    int64             `json:"amount"` // Minor units
	Currency  string            `json:"currency"`
	BookingID string            `json:"booking_id,omitempty"` // From intent metadata, may be empty
	Metadata  map[string]string `json:"metadata,omitempty"`
}
