package models

import "time"

// WebhookEventKind is the closed set of gateway event types the reconciler
// dispatches on. Anything else is acknowledged and ignored.
type WebhookEventKind string

const (
	WebhookEventPaymentSucceeded WebhookEventKind = "payment_intent.succeeded"
	WebhookEventPaymentFailed    WebhookEventKind = "payment_intent.payment_failed"
	WebhookEventPaymentCanceled  WebhookEventKind = "payment_intent.canceled"
)

// WebhookEventRecord marks a gateway event id as processed. Its existence is
// the idempotency gate: the gateway delivers at-least-once, so a second
// delivery of the same id must be a no-op.
type WebhookEventRecord struct {
	EventID    string    `bson:"event_id" json:"event_id"` // Gateway event id, unique
	EventType  string    `bson:"event_type" json:"event_type"`
	RecordedAt time.Time `bson:"recorded_at" json:"recorded_at"`
}
