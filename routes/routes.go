package routes

import (
	"net/http"
	"time"

	"ingresso/handlers"
	"ingresso/middleware"
	"ingresso/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterPaymentRoutes registers the payment intent lifecycle endpoints.
func RegisterPaymentRoutes(r *gin.Engine, ph *handlers.PaymentHandler) {
	api := r.Group("/api/payments")
	{
		// All client-facing payment endpoints require authentication.
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/intent", ph.CreateIntentHandler)
		api.GET("/intent/:intentID", ph.RetrieveIntentHandler)
		api.GET("/:bookingID/sync", ph.SyncPaymentHandler)
		api.POST("/:bookingID/resend", ph.ResendHandler)
	}
}

// RegisterWebhookRoutes registers the gateway webhook receiver. No auth
// middleware here: the signature check is the authentication.
func RegisterWebhookRoutes(r *gin.Engine, wh *handlers.WebhookHandler) {
	r.POST("/api/webhooks/stripe", wh.StripeWebhookHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, ph *handlers.PaymentHandler, wh *handlers.WebhookHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterWebhookRoutes(r, wh)
	RegisterPaymentRoutes(r, ph)
}
