package fulfillment

import (
	"context"
	"fmt"

	"ingresso/models"
	"ingresso/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AsynqEnqueuer pushes fulfillment work onto the task queue. It satisfies
// the payment service's FulfillmentEnqueuer dependency.
type AsynqEnqueuer struct {
	Client *asynq.Client
	Logger *zap.Logger
}

// NewAsynqEnqueuer creates an enqueuer over an asynq client.
func NewAsynqEnqueuer(client *asynq.Client, logger *zap.Logger) *AsynqEnqueuer {
	return &AsynqEnqueuer{Client: client, Logger: logger}
}

// EnqueueFulfillment queues ticket issuance for a paid booking.
func (e *AsynqEnqueuer) EnqueueFulfillment(ctx context.Context, bookingID string, resend bool) error {
	task, opts, err := tasks.NewFulfillmentTask(models.FulfillmentPayload{
		BookingID: bookingID,
		Resend:    resend,
	})
	if err != nil {
		return fmt.Errorf("failed to build fulfillment task: %w", err)
	}
	info, err := e.Client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue fulfillment task: %w", err)
	}
	e.Logger.Debug("fulfillment task enqueued",
		zap.String("bookingId", bookingID),
		zap.String("taskId", info.ID))
	return nil
}
