package handlers

import (
	"errors"
	"net/http"

	"ingresso/models"
	"ingresso/services/booking"
	"ingresso/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler exposes the payment intent lifecycle over HTTP.
type PaymentHandler struct {
	Service booking.PaymentService
	Logger  *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service booking.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Service: service, Logger: logger}
}

type createIntentInput struct {
	TicketTypeID  string  `json:"ticketTypeId" binding:"required"`
	EventID       string  `json:"eventId" binding:"required"`
	Quantity      int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice     float64 `json:"unitPrice" binding:"required,gt=0"`
	Currency      string  `json:"currency" binding:"required"`
	CustomerName  string  `json:"customerName" binding:"required"`
	CustomerEmail string  `json:"customerEmail" binding:"required,email"`
	CustomerPhone string  `json:"customerPhone"`
	PaymentMethod string  `json:"paymentMethod"`
}

// CreateIntentHandler opens a payment intent for a new booking.
func (h *PaymentHandler) CreateIntentHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var input createIntentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	resp, err := h.Service.CreateIntent(c.Request.Context(), models.CreateIntentRequest{
		UserID:         userID,
		EventID:        input.EventID,
		TicketTypeID:   input.TicketTypeID,
		CustomerName:   input.CustomerName,
		CustomerEmail:  input.CustomerEmail,
		CustomerPhone:  input.CustomerPhone,
		Quantity:       input.Quantity,
		UnitPrice:      input.UnitPrice,
		Currency:       input.Currency,
		PaymentMethod:  input.PaymentMethod,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SyncPaymentHandler is the pull path: reconcile a booking against the live
// gateway state and return its current status.
func (h *PaymentHandler) SyncPaymentHandler(c *gin.Context) {
	userID := c.GetString("userID")
	bookingID := c.Param("bookingID")

	b, err := h.Service.SyncBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookingId": b.ID,
		"status":    b.PaymentStatus,
		"paidAt":    b.PaidAt,
	})
}

// RetrieveIntentHandler returns a read-only gateway snapshot of an intent.
func (h *PaymentHandler) RetrieveIntentHandler(c *gin.Context) {
	intentID := c.Param("intentID")

	snap, err := h.Service.RetrieveIntent(c.Request.Context(), intentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ResendHandler re-enqueues fulfillment for a paid booking.
func (h *PaymentHandler) ResendHandler(c *gin.Context) {
	userID := c.GetString("userID")
	bookingID := c.Param("bookingID")

	if err := h.Service.Resend(c.Request.Context(), userID, bookingID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "fulfillment re-enqueued"})
}

// respondError maps service errors onto HTTP statuses. Internal detail stays
// in the server log; the client gets a short message.
func (h *PaymentHandler) respondError(c *gin.Context, err error) {
	var validationErr *booking.ValidationError
	var notFoundErr *booking.NotFoundError
	var authzErr *booking.AuthorizationError
	var gatewayErr *payment.GatewayError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &authzErr):
		c.JSON(http.StatusForbidden, gin.H{"error": "you cannot act on this booking"})
	case errors.As(err, &gatewayErr):
		h.Logger.Error("payment gateway failure", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment processor rejected the request"})
	default:
		h.Logger.Error("payment request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed, please retry"})
	}
}
