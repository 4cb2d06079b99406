package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/repository"
)

type paymentEventRepository struct {
	db *gorm.DB
}

// NewPaymentEventRepository creates the append-only payment history store
func NewPaymentEventRepository(db *gorm.DB) repository.PaymentEventRepository {
	return &paymentEventRepository{db: db}
}

// Append numbers the event after the last one of its ledger row. Callers hold
// the ledger row lock, which serialises numbering per row.
func (r *paymentEventRepository) Append(ctx context.Context, event *model.PaymentEvent) error {
	var last int
	err := r.db.WithContext(ctx).
		Model(&model.PaymentEvent{}).
		Select("COALESCE(MAX(sequence), 0)").
		Where("ledger = ? AND ledger_id = ?", event.Ledger, event.LedgerID).
		Scan(&last).Error
	if err != nil {
		return fmt.Errorf("failed to read payment event sequence: %w", err)
	}

	event.Sequence = last + 1
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to append payment event: %w", err)
	}
	return nil
}

func (r *paymentEventRepository) ListByLedger(ctx context.Context, ledger string, ledgerID int64) ([]*model.PaymentEvent, error) {
	var events []*model.PaymentEvent
	err := r.db.WithContext(ctx).
		Where("ledger = ? AND ledger_id = ?", ledger, ledgerID).
		Order("sequence ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payment events: %w", err)
	}
	return events, nil
}
