package tasks

import (
	"encoding/json"
	"time"

	"ingresso/models"

	"github.com/hibiken/asynq"
)

const (
	TypeFulfillBooking = "fulfillment:issue"
	TypeSweepExpired   = "payments:sweep"
)

// NewFulfillmentTask builds the task that issues tickets and sends the
// confirmation for a paid booking. Retried with backoff by the worker; a
// task that exhausts its retries is dead-letter logged, never re-queued.
func NewFulfillmentTask(payload models.FulfillmentPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeFulfillBooking, b)
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(2 * time.Minute),
	}
	return task, opts, nil
}

// NewSweepTask builds the periodic task that reconciles bookings left
// PENDING past their expiry.
func NewSweepTask() (*asynq.Task, []asynq.Option) {
	task := asynq.NewTask(TypeSweepExpired, nil)
	opts := []asynq.Option{
		asynq.MaxRetry(0),
		asynq.Timeout(5 * time.Minute),
	}
	return task, opts
}
