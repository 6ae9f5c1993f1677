package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ingresso/config"
	bookingRepo "ingresso/database/repository/booking"
	"ingresso/models"
	"ingresso/services/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	idemKeyPrefix = "payment:idem:"
	idemKeyTTL    = 30 * time.Minute

	linkRetryAttempts = 3
	linkRetryDelay    = 200 * time.Millisecond
)

// CreateIntent creates a PENDING booking and opens a payment intent for it.
func (s *DefaultPaymentService) CreateIntent(ctx context.Context, req models.CreateIntentRequest) (*CreateIntentResponse, error) {
	if err := validateCreateIntentRequest(req); err != nil {
		return nil, err
	}

	idemKey := req.IdempotencyKey
	if idemKey == "" {
		idemKey = fmt.Sprintf("%s-%d", req.UserID, time.Now().Unix())
	}

	// A retried request with the same key returns the original booking
	// instead of opening a sibling charge.
	if cached := s.lookupIdempotent(ctx, req.UserID, idemKey); cached != nil {
		return cached, nil
	}

	expiryMinutes := config.AppConfig.BookingExpiryMinutes
	if expiryMinutes <= 0 {
		expiryMinutes = 30
	}

	now := time.Now()
	b := &models.Booking{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		EventID:       req.EventID,
		TicketTypeID:  req.TicketTypeID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Quantity:      req.Quantity,
		TotalPrice:    req.UnitPrice * float64(req.Quantity),
		Currency:      strings.ToLower(req.Currency),
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.PaymentStatusPending,
		ExpiresAt:     now.Add(time.Duration(expiryMinutes) * time.Minute),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	ref, err := s.Gateway.CreateIntent(ctx, b, idemKey)
	if err != nil {
		// The processor rejected the request. The booking would otherwise
		// linger PENDING with no reference, so close it out.
		if _, cErr := s.Repo.TransitionIfPending(ctx, b.ID, models.PaymentStatusCanceled); cErr != nil {
			s.Logger.Error("failed to cancel booking after gateway rejection",
				zap.String("bookingId", b.ID), zap.Error(cErr))
		}
		return nil, err
	}

	if err := s.linkIntentWithRetry(ctx, b.ID, ref.IntentID); err != nil {
		if errors.Is(err, bookingRepo.ErrIntentConflict) {
			// The processor replayed an intent another booking already
			// holds: the caller reused an idempotency key whose cached
			// mapping was lost. Resolve to the original booking; the
			// intent stays live.
			return s.adoptLinkedIntent(ctx, b.ID, req.UserID, idemKey, ref)
		}
		// The charge side exists but our side does not know about it.
		// Compensate by canceling the intent, best effort.
		if cErr := s.Gateway.CancelIntent(ctx, ref.IntentID); cErr != nil {
			s.Logger.Error("failed to cancel orphaned payment intent",
				zap.String("intentId", ref.IntentID), zap.Error(cErr))
		}
		return nil, fmt.Errorf("failed to link intent to booking %s: %w", b.ID, err)
	}

	resp := &CreateIntentResponse{
		BookingID:    b.ID,
		IntentID:     ref.IntentID,
		ClientSecret: ref.ClientSecret,
	}
	s.storeIdempotent(ctx, req.UserID, idemKey, resp)

	s.Logger.Info("payment intent created",
		zap.String("bookingId", b.ID),
		zap.String("intentId", ref.IntentID),
		zap.Int64("amountMinor", payment.ToMinorUnits(b.TotalPrice)))
	return resp, nil
}

// adoptLinkedIntent resolves a reused idempotency key after the cached
// mapping was lost: the sibling booking just created is closed out and the
// booking already holding the replayed intent is returned. The live intent
// is never canceled here.
func (s *DefaultPaymentService) adoptLinkedIntent(ctx context.Context, siblingID, userID, idemKey string, ref *models.IntentRef) (*CreateIntentResponse, error) {
	owner, err := s.Repo.GetByIntentID(ctx, ref.IntentID)
	if err != nil {
		return nil, fmt.Errorf("intent %s is linked but its booking could not be loaded: %w", ref.IntentID, err)
	}

	if _, cErr := s.Repo.TransitionIfPending(ctx, siblingID, models.PaymentStatusCanceled); cErr != nil {
		s.Logger.Error("failed to close sibling booking after idempotent replay",
			zap.String("bookingId", siblingID), zap.Error(cErr))
	}

	resp := &CreateIntentResponse{
		BookingID:    owner.ID,
		IntentID:     ref.IntentID,
		ClientSecret: ref.ClientSecret,
	}
	s.storeIdempotent(ctx, userID, idemKey, resp)

	s.Logger.Info("reused idempotency key resolved to existing booking",
		zap.String("bookingId", owner.ID),
		zap.String("intentId", ref.IntentID),
		zap.String("siblingId", siblingID))
	return resp, nil
}

// linkIntentWithRetry writes the intent reference onto the booking, retrying
// briefly to ride out transient write contention right after creation. An
// intent-conflict is permanent and bails out immediately.
func (s *DefaultPaymentService) linkIntentWithRetry(ctx context.Context, bookingID, intentID string) error {
	var err error
	for attempt := 1; attempt <= linkRetryAttempts; attempt++ {
		if err = s.Repo.SetIntentRef(ctx, bookingID, intentID); err == nil {
			return nil
		}
		if errors.Is(err, bookingRepo.ErrIntentConflict) {
			return err
		}
		if attempt < linkRetryAttempts {
			time.Sleep(linkRetryDelay)
		}
	}
	return err
}

func (s *DefaultPaymentService) lookupIdempotent(ctx context.Context, userID, key string) *CreateIntentResponse {
	if s.IdemCache == nil {
		return nil
	}
	data, err := s.IdemCache.Get(ctx, idemKeyPrefix+userID+":"+key).Result()
	if err != nil {
		return nil
	}
	var resp CreateIntentResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		return nil
	}
	s.Logger.Info("reusing booking for repeated idempotency key",
		zap.String("bookingId", resp.BookingID))
	return &resp
}

func (s *DefaultPaymentService) storeIdempotent(ctx context.Context, userID, key string, resp *CreateIntentResponse) {
	if s.IdemCache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.IdemCache.Set(ctx, idemKeyPrefix+userID+":"+key, data, idemKeyTTL).Err(); err != nil {
		s.Logger.Warn("failed to cache idempotency mapping", zap.Error(err))
	}
}

func validateCreateIntentRequest(req models.CreateIntentRequest) error {
	if req.UserID == "" {
		return NewValidationError("missing user id")
	}
	if req.TicketTypeID == "" {
		return NewValidationError("missing ticket type id")
	}
	if req.EventID == "" {
		return NewValidationError("missing event id")
	}
	if req.CustomerEmail == "" {
		return NewValidationError("missing customer email")
	}
	if req.Quantity <= 0 {
		return NewValidationError("quantity must be positive")
	}
	if req.UnitPrice <= 0 {
		return NewValidationError("invalid ticket price")
	}
	if req.Currency == "" {
		return NewValidationError("missing currency")
	}
	return nil
}
