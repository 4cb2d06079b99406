package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/repository"
)

type transactionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB, logger *zap.Logger) repository.TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *transactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		r.logger.Error("Failed to create transaction",
			zap.String("order_id", tx.OrderID),
			zap.Error(err))
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByOrderID(ctx context.Context, orderID string) (*model.Transaction, error) {
	return r.first(r.db.WithContext(ctx).Where("order_id = ?", orderID))
}

// GetByOrderIDForUpdate takes SELECT ... FOR UPDATE on the row
func (r *transactionRepository) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*model.Transaction, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID))
}

func (r *transactionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Transaction, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *transactionRepository) first(query *gorm.DB) (*model.Transaction, error) {
	var tx model.Transaction
	err := query.First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) Save(ctx context.Context, tx *model.Transaction) error {
	if err := r.db.WithContext(ctx).Save(tx).Error; err != nil {
		r.logger.Error("Failed to save transaction",
			zap.String("order_id", tx.OrderID),
			zap.Error(err))
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.Transaction, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	var txs []*model.Transaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	return txs, total, nil
}

func (r *transactionRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*model.Transaction, error) {
	var txs []*model.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND type = ? AND created_at < ?", model.TransactionStatusPending, model.TransactionTypePurchase, olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale transactions: %w", err)
	}
	return txs, nil
}
