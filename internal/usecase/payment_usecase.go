package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/entity"
	domainErrors "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/errors"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/repository"
	apperrors "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/pkg/errors"
)

// TransactionDetail is one ledger entry with its full payment history
type TransactionDetail struct {
	Transaction *model.Transaction    `json:"transaction"`
	Donation    *model.Donation       `json:"donation,omitempty"`
	History     []*model.PaymentEvent `json:"history"`
}

// PaymentUsecase answers read-only questions about a user's payments
type PaymentUsecase struct {
	uow    repository.UnitOfWork
	logger *zap.Logger
}

func NewPaymentUsecase(uow repository.UnitOfWork, logger *zap.Logger) *PaymentUsecase {
	return &PaymentUsecase{
		uow:    uow,
		logger: logger,
	}
}

// GetUserTransactions returns a page of the user's transactions, newest first
func (u *PaymentUsecase) GetUserTransactions(ctx context.Context, userID int64, page entity.PageRequest) (*entity.TransactionPage, error) {
	if userID <= 0 {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "user ID is required", nil)
	}

	page = page.Normalize()
	rows, total, err := u.uow.Repositories().Transactions().ListByUser(ctx, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to list transactions")
	}
	if rows == nil {
		rows = []*model.Transaction{}
	}

	return &entity.TransactionPage{
		Data:       rows,
		Pagination: entity.NewPageMeta(page, total),
	}, nil
}

// GetTransaction returns the entry for orderID if it belongs to userID.
// Entries of other users are reported as not found.
func (u *PaymentUsecase) GetTransaction(ctx context.Context, userID int64, orderID string) (*TransactionDetail, error) {
	if orderID == "" {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "order ID is required", nil)
	}

	repos := u.uow.Repositories()
	tx, err := repos.Transactions().GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to load transaction")
	}
	if tx == nil || tx.UserID != userID {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "Transaction not found", domainErrors.ErrLedgerNotFound)
	}

	history, err := repos.PaymentEvents().ListByLedger(ctx, model.LedgerTransactions, tx.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to load payment history")
	}
	detail := &TransactionDetail{Transaction: tx, History: history}

	if tx.Type == model.TransactionTypeDonation {
		donation, err := repos.Donations().GetByOrderID(ctx, orderID)
		if err != nil {
			return nil, apperrors.Wrap(err, "Failed to load donation")
		}
		detail.Donation = donation
	}

	return detail, nil
}
