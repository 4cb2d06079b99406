package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/provider"
)

func newTestSweeper(f *fixture, ahead time.Duration) *PendingSweeper {
	s := NewPendingSweeper(f.store, f.gateway, SweeperConfig{
		BatchSize:   10,
		StaleAfter:  30 * time.Minute,
		ExpireAfter: 24 * time.Hour,
	}, zap.NewNop(), f.purchases, f.donations)
	s.now = func() time.Time { return time.Now().Add(ahead) }
	return s
}

func (f *fixture) pendingDonation(t *testing.T) string {
	t.Helper()
	f.gateway.On("IssueChargeToken", mock.Anything, mock.MatchedBy(func(req *provider.ChargeRequest) bool {
		return req.Amount == 10000
	})).Return(&provider.ChargeToken{Token: "snap-token"}, nil).Once()

	result, err := f.checkout.Donate(context.Background(), f.buyer(), DonationRequest{CourseID: testCourseID, Amount: 10000})
	require.NoError(t, err)
	return result.OrderID
}

func TestPendingSweeper_SweepOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	purchaseID := f.pendingPurchase(t)
	donationID := f.pendingDonation(t)

	settledAt := time.Now()
	f.gateway.On("CheckStatus", mock.Anything, purchaseID).Return(&provider.Notification{
		OrderID:           purchaseID,
		TransactionStatus: "settlement",
		PaymentType:       "qris",
		EventTime:         &settledAt,
	}, nil).Once()
	f.gateway.On("CheckStatus", mock.Anything, donationID).
		Return(nil, &provider.ProviderError{Code: provider.CodeNotFound, Message: "transaction not found"}).Once()

	n, err := newTestSweeper(f, 48*time.Hour).SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, model.TransactionStatusCompleted, f.transaction(t, purchaseID).Status)
	assert.NotNil(t, f.enrollment(t))

	d, err := f.store.Repositories().Donations().GetByOrderID(ctx, donationID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusExpired, d.Status)
	assert.Equal(t, model.TransactionStatusExpired, f.transaction(t, donationID).Status)

	events := f.history(t, model.LedgerTransactions, f.transaction(t, purchaseID).ID)
	assert.Equal(t, model.ChannelStatusPoll, events[len(events)-1].Channel)

	f.gateway.AssertExpectations(t)
}

func TestPendingSweeper_KeepsRecentUnknownOrders(t *testing.T) {
	f := newFixture(t)
	orderID := f.pendingPurchase(t)

	f.gateway.On("CheckStatus", mock.Anything, orderID).
		Return(nil, &provider.ProviderError{Code: provider.CodeNotFound, Message: "transaction not found"}).Once()

	n, err := newTestSweeper(f, time.Hour).SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, model.TransactionStatusPending, f.transaction(t, orderID).Status)
}

func TestPendingSweeper_SkipsFreshEntries(t *testing.T) {
	f := newFixture(t)
	orderID := f.pendingPurchase(t)

	n, err := newTestSweeper(f, 0).SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, model.TransactionStatusPending, f.transaction(t, orderID).Status)
	f.gateway.AssertNotCalled(t, "CheckStatus", mock.Anything, mock.Anything)
}

func TestPendingSweeper_StopsWhenPollingUnsupported(t *testing.T) {
	f := newFixture(t)
	f.pendingPurchase(t)
	f.pendingPurchase(t)

	f.gateway.On("CheckStatus", mock.Anything, mock.Anything).
		Return(nil, &provider.ProviderError{Code: provider.CodeNotSupported, Message: "status polling not supported"}).Once()

	n, err := newTestSweeper(f, 48*time.Hour).SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	f.gateway.AssertNumberOfCalls(t, "CheckStatus", 1)
}

func TestPendingSweeper_ContinuesAfterGatewayError(t *testing.T) {
	f := newFixture(t)
	first := f.pendingPurchase(t)

	f.gateway.On("CheckStatus", mock.Anything, first).Return(nil, errors.New("connection refused")).Once()

	n, err := newTestSweeper(f, 48*time.Hour).SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, model.TransactionStatusPending, f.transaction(t, first).Status)
}

func TestPendingSweeper_RunDisabled(t *testing.T) {
	f := newFixture(t)
	done := make(chan struct{})
	go func() {
		newTestSweeper(f, 0).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run with zero interval should return immediately")
	}
}
