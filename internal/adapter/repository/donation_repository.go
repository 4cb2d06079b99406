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

type donationRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *gorm.DB, logger *zap.Logger) repository.DonationRepository {
	return &donationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *donationRepository) Create(ctx context.Context, donation *model.Donation) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(donation).Error; err != nil {
		r.logger.Error("Failed to create donation",
			zap.String("order_id", donation.OrderID),
			zap.Error(err))
		return fmt.Errorf("failed to create donation: %w", err)
	}
	return nil
}

func (r *donationRepository) GetByOrderID(ctx context.Context, orderID string) (*model.Donation, error) {
	return r.first(r.db.WithContext(ctx).Where("order_id = ?", orderID))
}

func (r *donationRepository) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*model.Donation, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID))
}

func (r *donationRepository) first(query *gorm.DB) (*model.Donation, error) {
	var donation model.Donation
	err := query.First(&donation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}
	return &donation, nil
}

func (r *donationRepository) Save(ctx context.Context, donation *model.Donation) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(donation).Error; err != nil {
		r.logger.Error("Failed to save donation",
			zap.String("order_id", donation.OrderID),
			zap.Error(err))
		return fmt.Errorf("failed to save donation: %w", err)
	}
	return nil
}

func (r *donationRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*model.Donation, error) {
	var donations []*model.Donation
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.TransactionStatusPending, olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&donations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale donations: %w", err)
	}
	return donations, nil
}
