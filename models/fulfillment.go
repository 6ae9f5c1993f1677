package models

// FulfillmentPayload is the body of an enqueued fulfillment task. The queue
// delivers at-least-once, so handlers must tolerate replays.
type FulfillmentPayload struct {
	BookingID string `json:"bookingId"`
	Resend    bool   `json:"resend,omitempty"` // Manual re-send of an already-fulfilled booking
}
