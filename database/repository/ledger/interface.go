package ledgerRepo

import "context"

// WebhookLedger records processed gateway event ids so redeliveries can be
// skipped.
type WebhookLedger interface {
	// RecordIfNew inserts the event id, returning true when this call was
	// the first to record it. A unique-constraint violation means another
	// delivery got there first and the caller should skip processing.
	RecordIfNew(ctx context.Context, eventID, eventType string) (bool, error)
}
