package booking

import (
	"context"
	"testing"

	"ingresso/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestSyncBooking_PendingToPaid(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, gateway, enqueuer := newTestService()

	repo.put(pendingBooking("b1", "u1", "pi_1"))
	gateway.snapshots["pi_1"] = &models.IntentSnapshot{
		IntentID: "pi_1",
		Status:   models.IntentStatusSucceeded,
	}

	b, err := svc.SyncBooking(ctx, "u1", "b1")
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPaid, b.PaymentStatus)
	require.NotNil(t, b.PaidAt)
	require.Equal(t, 1, enqueuer.count())

	// Repeating the same sync is a no-op: terminal state short-circuits
	// before the gateway is consulted again.
	callsBefore := gateway.retrieveCalls
	b2, err := svc.SyncBooking(ctx, "u1", "b1")
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPaid, b2.PaymentStatus)
	require.Equal(t, callsBefore, gateway.retrieveCalls)
	require.Equal(t, 1, enqueuer.count())
}

func TestSyncBooking_FailedIntentDoesNotFulfill(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, gateway, enqueuer := newTestService()

	repo.put(pendingBooking("b1", "u1", "pi_1"))
	gateway.snapshots["pi_1"] = &models.IntentSnapshot{
		IntentID: "pi_1",
		Status:   models.IntentStatusPaymentFailed,
	}

	b, err := svc.SyncBooking(ctx, "u1", "b1")
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusFailed, b.PaymentStatus)
	require.Nil(t, b.PaidAt)
	require.Zero(t, enqueuer.count())
}

func TestSyncBooking_ProcessingLeavesPending(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, gateway, _ := newTestService()

	repo.put(pendingBooking("b1", "u1", "pi_1"))
	gateway.snapshots["pi_1"] = &models.IntentSnapshot{
		IntentID: "pi_1",
		Status:   models.IntentStatusProcessing,
	}

	b, err := svc.SyncBooking(ctx, "u1", "b1")
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPending, b.PaymentStatus)
}

func TestSyncBooking_ForeignBookingRejected(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _, _ := newTestService()

	repo.put(pendingBooking("b1", "u1", "pi_1"))

	_, err := svc.SyncBooking(ctx, "u2", "b1")
	var authzErr *AuthorizationError
	require.ErrorAs(t, err, &authzErr)
}

func TestSyncBooking_UnknownBooking(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, _ := newTestService()

	_, err := svc.SyncBooking(ctx, "u1", "nope")
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestSyncBooking_TerminalStateNeverOverwritten(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, gateway, enqueuer := newTestService()

	b := pendingBooking("b1", "u1", "pi_1")
	b.PaymentStatus = models.PaymentStatusFailed
	repo.put(b)

	// Even with the gateway now reporting success, the FAILED record stays.
	gateway.snapshots["pi_1"] = &models.IntentSnapshot{
		IntentID: "pi_1",
		Status:   models.IntentStatusSucceeded,
	}

	got, err := svc.SyncBooking(ctx, "u1", "b1")
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusFailed, got.PaymentStatus)
	require.Zero(t, enqueuer.count())
}

func TestStatusFromIntent(t *testing.T) {
	cases := []struct {
		in   models.IntentStatus
		want models.PaymentStatus
	}{
		{models.IntentStatusSucceeded, models.PaymentStatusPaid},
		{models.IntentStatusCanceled, models.PaymentStatusFailed},
		{models.IntentStatusPaymentFailed, models.PaymentStatusFailed},
		{models.IntentStatusProcessing, models.PaymentStatusPending},
		{models.IntentStatusRequiresAction, models.PaymentStatusPending},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, statusFromIntent(tc.in), "intent status %s", tc.in)
	}
}
