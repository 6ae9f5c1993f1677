package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ingresso/config"
	"ingresso/models"
	"ingresso/services/booking"
	"ingresso/services/fulfillment"
	"ingresso/services/tasks"

	"github.com/hibiken/asynq"
)

const sweepBatchLimit = 100

// InitPaymentWorker runs the async worker in background: fulfillment tasks
// plus the periodic expiry sweep.
func InitPaymentWorker(fulfillSvc fulfillment.Service, paymentSvc booking.PaymentService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			// Dead-letter logging: a task that exhausted its retries is
			// dropped here, never re-queued. Payment state is untouched;
			// fulfillment can be re-sent manually.
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				if retried >= maxRetry {
					log.Printf("[PaymentWorker] DEAD-LETTER %s payload=%s err=%v", task.Type(), task.Payload(), err)
					return
				}
				log.Printf("[PaymentWorker] task %s failed (attempt %d/%d): %v", task.Type(), retried+1, maxRetry+1, err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeFulfillBooking, handleFulfillmentTask(fulfillSvc))
	mux.HandleFunc(tasks.TypeSweepExpired, handleSweepTask(paymentSvc))

	// Periodically enqueue the expiry sweep.
	go runSweepTicker(redisOpts)

	// Start async worker with retry logic
	go func() {
		log.Println("[PaymentWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[PaymentWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[PaymentWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleFulfillmentTask(svc fulfillment.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.FulfillmentPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[FulfillmentHandler] invalid payload: %v", err)
			return err
		}
		return svc.FulfillBooking(ctx, p.BookingID, p.Resend)
	}
}

func handleSweepTask(svc booking.PaymentService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		resolved, err := svc.SweepExpired(ctx, sweepBatchLimit)
		if err != nil {
			log.Printf("[SweepHandler] sweep failed: %v", err)
			return err
		}
		if resolved > 0 {
			log.Printf("[SweepHandler] resolved %d stale bookings", resolved)
		}
		return nil
	}
}

// runSweepTicker enqueues a sweep task at the configured interval.
func runSweepTicker(redisOpts asynq.RedisClientOpt) {
	interval := time.Duration(config.AppConfig.SweepIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	client := asynq.NewClient(redisOpts)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		task, opts := tasks.NewSweepTask()
		if _, err := client.Enqueue(task, opts...); err != nil {
			log.Printf("[PaymentWorker] failed to enqueue sweep: %v", err)
		}
	}
}
