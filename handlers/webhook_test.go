package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ingresso/models"
	"ingresso/services/booking"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test"

type stubPaymentService struct {
	events  []booking.GatewayEvent
	skipped bool
	err     error
}

func (s *stubPaymentService) CreateIntent(_ context.Context, _ models.CreateIntentRequest) (*booking.CreateIntentResponse, error) {
	return nil, nil
}

func (s *stubPaymentService) SyncBooking(_ context.Context, _, _ string) (*models.Booking, error) {
	return nil, nil
}

func (s *stubPaymentService) RetrieveIntent(_ context.Context, _ string) (*models.IntentSnapshot, error) {
	return nil, nil
}

func (s *stubPaymentService) HandleWebhookEvent(_ context.Context, event booking.GatewayEvent) (bool, error) {
	s.events = append(s.events, event)
	return s.skipped, s.err
}

func (s *stubPaymentService) Resend(_ context.Context, _, _ string) error { return nil }

func (s *stubPaymentService) SweepExpired(_ context.Context, _ int64) (int, error) { return 0, nil }

// signPayload builds a Stripe-Signature header the verifier accepts:
// t=<unix>,v1=<hmac-sha256(secret, "<unix>.<payload>")>.
func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func succeededPayload(t *testing.T) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":          "evt_1",
		"type":        "payment_intent.succeeded",
		"api_version": stripe.APIVersion,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":       "pi_1",
				"metadata": map[string]string{"bookingId": "b1"},
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func newWebhookRouter(svc *stubPaymentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler(svc, testWebhookSecret, zap.NewNop())
	router := gin.New()
	router.POST("/api/webhooks/stripe", h.StripeWebhookHandler)
	return router
}

func postWebhook(router *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStripeWebhookHandler_ValidSignature(t *testing.T) {
	svc := &stubPaymentService{}
	router := newWebhookRouter(svc)
	payload := succeededPayload(t)

	w := postWebhook(router, payload, signPayload(payload, testWebhookSecret))

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"received":true}`, w.Body.String())
	require.Len(t, svc.events, 1)
	require.Equal(t, "evt_1", svc.events[0].ID)
	require.Equal(t, models.WebhookEventPaymentSucceeded, svc.events[0].Kind)
	require.Equal(t, "pi_1", svc.events[0].IntentID)
	require.Equal(t, "b1", svc.events[0].BookingID)
}

func TestStripeWebhookHandler_BadSignatureRejected(t *testing.T) {
	svc := &stubPaymentService{}
	router := newWebhookRouter(svc)
	payload := succeededPayload(t)

	w := postWebhook(router, payload, signPayload(payload, "whsec_other"))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, svc.events, "unverified events must never reach the reconciler")
}

func TestStripeWebhookHandler_TamperedPayloadRejected(t *testing.T) {
	svc := &stubPaymentService{}
	router := newWebhookRouter(svc)
	payload := succeededPayload(t)
	signature := signPayload(payload, testWebhookSecret)
	tampered := bytes.Replace(payload, []byte("b1"), []byte("b2"), 1)

	w := postWebhook(router, tampered, signature)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, svc.events)
}

func TestStripeWebhookHandler_DuplicateAckedAsSkipped(t *testing.T) {
	svc := &stubPaymentService{skipped: true}
	router := newWebhookRouter(svc)
	payload := succeededPayload(t)

	w := postWebhook(router, payload, signPayload(payload, testWebhookSecret))

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"received":true,"skipped":true}`, w.Body.String())
}
