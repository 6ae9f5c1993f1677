package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingRepo "ingresso/database/repository/booking"
	"ingresso/models"
)

// mockBookingRepo is an in-memory BookingRepository. The mutex stands in for
// the database's per-row write serialization.
type mockBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking

	createErr error
	getErr    error
	linkErr   error
	linkCalls int
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (r *mockBookingRepo) put(b *models.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.bookings[b.ID] = &cp
}

func (r *mockBookingRepo) Create(_ context.Context, b *models.Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.put(b)
	return nil
}

func (r *mockBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *mockBookingRepo) GetByIntentID(_ context.Context, intentID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ExternalPaymentID == intentID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (r *mockBookingRepo) SetIntentRef(_ context.Context, bookingID, intentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.linkCalls++
	if r.linkErr != nil {
		return r.linkErr
	}
	// Mirrors the unique index on external_payment_id.
	for id, other := range r.bookings {
		if id != bookingID && other.ExternalPaymentID == intentID {
			return bookingRepo.ErrIntentConflict
		}
	}
	b, ok := r.bookings[bookingID]
	if !ok || b.ExternalPaymentID != "" {
		return errors.New("booking missing or already linked")
	}
	b.ExternalPaymentID = intentID
	return nil
}

func (r *mockBookingRepo) TransitionIfPending(_ context.Context, bookingID string, to models.PaymentStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return false, nil
	}
	if b.PaymentStatus != models.PaymentStatusPending {
		return false, nil
	}
	now := time.Now()
	b.PaymentStatus = to
	b.UpdatedAt = now
	if to == models.PaymentStatusPaid {
		b.PaidAt = &now
	}
	return true, nil
}

func (r *mockBookingRepo) FindExpiredPending(_ context.Context, limit int64) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.PaymentStatus == models.PaymentStatusPending && b.ExpiresAt.Before(time.Now()) {
			out = append(out, *b)
			if int64(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

// mockLedger is an in-memory WebhookLedger.
type mockLedger struct {
	mu     sync.Mutex
	events map[string]string
}

func newMockLedger() *mockLedger {
	return &mockLedger{events: make(map[string]string)}
}

func (l *mockLedger) RecordIfNew(_ context.Context, eventID, eventType string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.events[eventID]; ok {
		return false, nil
	}
	l.events[eventID] = eventType
	return true, nil
}

// mockGateway serves canned intent snapshots and records call counts.
type mockGateway struct {
	mu sync.Mutex

	snapshots map[string]*models.IntentSnapshot
	createRef *models.IntentRef
	createErr error

	retrieveCalls int
	cancelCalls   []string
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		snapshots: make(map[string]*models.IntentSnapshot),
		createRef: &models.IntentRef{IntentID: "pi_test", ClientSecret: "pi_test_secret"},
	}
}

func (g *mockGateway) CreateIntent(_ context.Context, _ *models.Booking, _ string) (*models.IntentRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	return g.createRef, nil
}

func (g *mockGateway) RetrieveIntent(_ context.Context, intentID string) (*models.IntentSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.retrieveCalls++
	snap, ok := g.snapshots[intentID]
	if !ok {
		return nil, errors.New("no snapshot configured")
	}
	cp := *snap
	return &cp, nil
}

func (g *mockGateway) CancelIntent(_ context.Context, intentID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelCalls = append(g.cancelCalls, intentID)
	return nil
}

// mockEnqueuer records fulfillment enqueue calls.
type mockEnqueuer struct {
	mu    sync.Mutex
	calls []string
}

func (e *mockEnqueuer) EnqueueFulfillment(_ context.Context, bookingID string, _ bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, bookingID)
	return nil
}

func (e *mockEnqueuer) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func newTestService() (*DefaultPaymentService, *mockBookingRepo, *mockLedger, *mockGateway, *mockEnqueuer) {
	repo := newMockBookingRepo()
	ledger := newMockLedger()
	gateway := newMockGateway()
	enqueuer := &mockEnqueuer{}
	svc := &DefaultPaymentService{
		Repo:        repo,
		Ledger:      ledger,
		Gateway:     gateway,
		Fulfillment: enqueuer,
		Logger:      testLogger(),
	}
	return svc, repo, ledger, gateway, enqueuer
}

func pendingBooking(id, userID, intentID string) *models.Booking {
	now := time.Now()
	return &models.Booking{
		ID:                id,
		UserID:            userID,
		EventID:           "evt-1",
		TicketTypeID:      "tt-1",
		CustomerName:      "Ana Souza",
		CustomerEmail:     "ana@example.com",
		Quantity:          1,
		TotalPrice:        150.00,
		Currency:          "brl",
		PaymentMethod:     "card",
		PaymentStatus:     models.PaymentStatusPending,
		ExternalPaymentID: intentID,
		ExpiresAt:         now.Add(30 * time.Minute),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
