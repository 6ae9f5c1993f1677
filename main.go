// File: ingresso/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ingresso/config"
	"ingresso/cron"
	"ingresso/database"
	bookingRepoPkg "ingresso/database/repository/booking"
	ledgerRepoPkg "ingresso/database/repository/ledger"
	ticketRepoPkg "ingresso/database/repository/ticket"
	"ingresso/handlers"
	"ingresso/middleware"
	"ingresso/routes"
	"ingresso/services/booking"
	"ingresso/services/fulfillment"
	"ingresso/services/notification"
	"ingresso/services/payment"
	"ingresso/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	ledgerRepo := ledgerRepoPkg.NewMongoWebhookLedger()
	ticketRepo := ticketRepoPkg.NewMongoTicketRepo()

	// task queue client for fulfillment enqueueing.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})
	defer asynqClient.Close()

	// services.
	gateway := payment.NewStripeGateway(logger)
	enqueuer := fulfillment.NewAsynqEnqueuer(asynqClient, logger)

	paymentService := &booking.DefaultPaymentService{
		Repo:        bookingRepo,
		Ledger:      ledgerRepo,
		Gateway:     gateway,
		Fulfillment: enqueuer,
		IdemCache:   utils.GetCacheClient(),
		Logger:      logger,
	}

	notificationService := notification.NewDefaultNotificationService(notification.NewMailer(), logger)
	fulfillmentService := &fulfillment.DefaultService{
		Bookings: bookingRepo,
		Tickets:  ticketRepo,
		Notifier: notificationService,
		Logger:   logger,
	}

	// Background worker: fulfillment tasks + expiry sweep.
	cron.InitPaymentWorker(fulfillmentService, paymentService)

	// handlers.
	paymentHandler := handlers.NewPaymentHandler(paymentService, logger)
	webhookHandler := handlers.NewWebhookHandler(paymentService, config.AppConfig.StripeWebhookSecret, logger)

	routes.RegisterRoutes(router, paymentHandler, webhookHandler)
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
