package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"ingresso/models"
	"ingresso/services/booking"
	"ingresso/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const maxWebhookBodyBytes = 64 * 1024

// WebhookHandler receives signed gateway events (the push path).
type WebhookHandler struct {
	Service       booking.PaymentService
	WebhookSecret string
	Logger        *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(service booking.PaymentService, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{Service: service, WebhookSecret: secret, Logger: logger}
}

// StripeWebhookHandler verifies the event signature and hands the decoded
// event to the reconciler. A bad signature gets a 400 so the gateway
// redelivers; everything verified is acknowledged with 200 to stop
// redelivery storms.
func (h *WebhookHandler) StripeWebhookHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "failed to read payload", err.Error())
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.WebhookSecret)
	if err != nil {
		h.Logger.Warn("webhook signature verification failed", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "invalid signature", "")
		return
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		h.Logger.Warn("webhook payload is not a payment intent, ignored",
			zap.String("eventId", event.ID),
			zap.String("type", string(event.Type)))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	gatewayEvent := booking.GatewayEvent{
		ID:       event.ID,
		Kind:     models.WebhookEventKind(event.Type),
		IntentID: pi.ID,
	}
	if pi.Metadata != nil {
		gatewayEvent.BookingID = pi.Metadata["bookingId"]
	}

	skipped, err := h.Service.HandleWebhookEvent(c.Request.Context(), gatewayEvent)
	if err != nil {
		h.Logger.Error("webhook processing failed",
			zap.String("eventId", event.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}

	if skipped {
		c.JSON(http.StatusOK, gin.H{"received": true, "skipped": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
