package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/entity"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/provider"
	apperrors "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/pkg/errors"
)

func TestPaymentUsecase_GetUserTransactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		f.pendingPurchase(t)
	}
	u := NewPaymentUsecase(f.store, zap.NewNop())

	page, err := u.GetUserTransactions(ctx, testBuyerID, entity.PageRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Greater(t, page.Data[0].ID, page.Data[1].ID)

	page, err = u.GetUserTransactions(ctx, 12345, entity.PageRequest{})
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)

	_, err = u.GetUserTransactions(ctx, 0, entity.PageRequest{})
	assert.Equal(t, apperrors.ErrInvalidArgument, apperrors.CodeOf(err))
}

func TestPaymentUsecase_GetTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.pendingPurchase(t)
	u := NewPaymentUsecase(f.store, zap.NewNop())

	_, err := f.purchases.Reconcile(ctx, notificationEvent(orderID, "settlement", nil))
	require.NoError(t, err)

	detail, err := u.GetTransaction(ctx, testBuyerID, orderID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusCompleted, detail.Transaction.Status)
	assert.Len(t, detail.History, 2)
	assert.Nil(t, detail.Donation)

	_, err = u.GetTransaction(ctx, 999, orderID)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))

	_, err = u.GetTransaction(ctx, testBuyerID, "ORDER-missing")
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestPaymentUsecase_GetDonationTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := NewPaymentUsecase(f.store, zap.NewNop())

	f.gateway.On("IssueChargeToken", mock.Anything, mock.Anything).
		Return(&provider.ChargeToken{Token: "snap-token"}, nil).Once()
	result, err := f.checkout.Donate(ctx, f.buyer(), DonationRequest{CourseID: testCourseID, Amount: 5000, Message: "Semangat!"})
	require.NoError(t, err)

	detail, err := u.GetTransaction(ctx, testBuyerID, result.OrderID)
	require.NoError(t, err)
	require.NotNil(t, detail.Donation)
	assert.Equal(t, "Semangat!", detail.Donation.Message)
}
