package notification

import (
	"context"
	"fmt"

	"ingresso/models"
	"ingresso/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService delivers buyer-facing confirmations after fulfillment.
type NotificationService interface {
	SendPaymentConfirmation(ctx context.Context, booking *models.Booking, tickets []models.Ticket) error
}

// DefaultNotificationService sends the confirmation email through the mail
// API and a push through FCM. The email is the delivery that matters; the
// push is best effort.
type DefaultNotificationService struct {
	Mailer *Mailer
	Logger *zap.Logger
}

func NewDefaultNotificationService(mailer *Mailer, logger *zap.Logger) *DefaultNotificationService {
	return &DefaultNotificationService{Mailer: mailer, Logger: logger}
}

// SendPaymentConfirmation emails the tickets and pushes a confirmation.
func (s *DefaultNotificationService) SendPaymentConfirmation(ctx context.Context, booking *models.Booking, tickets []models.Ticket) error {
	codes := make([]string, 0, len(tickets))
	for _, t := range tickets {
		codes = append(codes, t.Code)
	}

	if err := s.Mailer.SendTicketEmail(ctx, booking, codes); err != nil {
		return fmt.Errorf("failed to email tickets for booking %s: %w", booking.ID, err)
	}

	s.sendPush(ctx, booking)
	return nil
}

func (s *DefaultNotificationService) sendPush(ctx context.Context, booking *models.Booking) {
	client := utils.FCMClient
	if client == nil {
		return
	}
	msg := &messaging.Message{
		Topic: "user-" + booking.UserID,
		Notification: &messaging.Notification{
			Title: "Payment confirmed",
			Body:  fmt.Sprintf("Your %d ticket(s) are ready. See you there!", booking.Quantity),
		},
		Data: map[string]string{
			"type":      "payment_confirmation",
			"bookingId": booking.ID,
			"eventId":   booking.EventID,
		},
	}
	if _, err := client.Send(ctx, msg); err != nil {
		s.Logger.Warn("failed to send confirmation push",
			zap.String("bookingId", booking.ID), zap.Error(err))
	}
}
