package booking

import (
	"context"
	"testing"
	"time"

	"ingresso/models"

	"github.com/stretchr/testify/require"
)

func expiredBooking(id, intentID string) *models.Booking {
	b := pendingBooking(id, "u1", intentID)
	b.ExpiresAt = time.Now().Add(-time.Hour)
	return b
}

func TestSweepExpired_SettledIntentGetsPaid(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, gateway, enqueuer := newTestService()

	repo.put(expiredBooking("b1", "pi_1"))
	gateway.snapshots["pi_1"] = &models.IntentSnapshot{
		IntentID: "pi_1",
		Status:   models.IntentStatusSucceeded,
	}

	resolved, err := svc.SweepExpired(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, resolved)

	b, err := repo.GetByID(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPaid, b.PaymentStatus)
	require.Equal(t, 1, enqueuer.count())
}

func TestSweepExpired_OpenIntentCanceledBothSides(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, gateway, enqueuer := newTestService()

	repo.put(expiredBooking("b1", "pi_1"))
	gateway.snapshots["pi_1"] = &models.IntentSnapshot{
		IntentID: "pi_1",
		Status:   models.IntentStatusRequiresAction,
	}

	resolved, err := svc.SweepExpired(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, resolved)

	b, err := repo.GetByID(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusCanceled, b.PaymentStatus)
	require.Equal(t, []string{"pi_1"}, gateway.cancelCalls)
	require.Zero(t, enqueuer.count())
}

func TestSweepExpired_NoIntentReference(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _, _ := newTestService()

	repo.put(expiredBooking("b1", ""))

	resolved, err := svc.SweepExpired(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, resolved)

	b, err := repo.GetByID(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusCanceled, b.PaymentStatus)
}

func TestSweepExpired_FreshBookingsUntouched(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _, _ := newTestService()

	repo.put(pendingBooking("b1", "u1", "pi_1"))

	resolved, err := svc.SweepExpired(ctx, 10)
	require.NoError(t, err)
	require.Zero(t, resolved)

	b, err := repo.GetByID(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPending, b.PaymentStatus)
}

func TestResend_OnlyPaidBookings(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _, enqueuer := newTestService()

	b := pendingBooking("b1", "u1", "pi_1")
	repo.put(b)

	err := svc.Resend(ctx, "u1", "b1")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Zero(t, enqueuer.count())

	b.PaymentStatus = models.PaymentStatusPaid
	repo.put(b)

	require.NoError(t, svc.Resend(ctx, "u1", "b1"))
	require.Equal(t, 1, enqueuer.count())
}

func TestResend_ForeignBookingRejected(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _, _ := newTestService()

	b := pendingBooking("b1", "u1", "pi_1")
	b.PaymentStatus = models.PaymentStatusPaid
	repo.put(b)

	err := svc.Resend(ctx, "u2", "b1")
	var authzErr *AuthorizationError
	require.ErrorAs(t, err, &authzErr)
}
