package usecase

import (
	"context"
	"strings"
	"time"

	domainErrors "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/errors"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/repository"
)

// Order id prefixes keep the purchase and donation id spaces disjoint.
const (
	PurchaseOrderPrefix = "ORDER-"
	DonationOrderPrefix = "DONATION-"
)

// ledgerSet is what one order id resolves to inside a unit of work. The first
// entry is the primary one whose status drives side effects.
type ledgerSet struct {
	entries  []model.LedgerEntry
	purchase *model.Transaction
}

// LedgerKind describes one reconciled ledger family. The engine is generic
// over it.
type LedgerKind struct {
	Name              string
	OrderPrefix       string
	DerivesEnrollment bool
	// NotFoundMessage and ForeignMessage are the Channel B response bodies
	NotFoundMessage string
	ForeignMessage  string

	lock  func(ctx context.Context, repos repository.Repositories, orderID string) (*ledgerSet, error)
	find  func(ctx context.Context, repos repository.Repositories, orderID string) (model.LedgerEntry, error)
	stale func(ctx context.Context, repos repository.Repositories, olderThan time.Time, limit int) ([]model.LedgerEntry, error)
}

// Owns reports whether orderID carries this kind's prefix.
func (k LedgerKind) Owns(orderID string) bool {
	return strings.HasPrefix(orderID, k.OrderPrefix)
}

// PurchaseLedger reconciles course purchases and derives enrollments.
func PurchaseLedger() LedgerKind {
	return LedgerKind{
		Name:              "purchase",
		OrderPrefix:       PurchaseOrderPrefix,
		DerivesEnrollment: true,
		NotFoundMessage:   "Transaction not found",
		ForeignMessage:    "Not a course purchase",
		lock: func(ctx context.Context, repos repository.Repositories, orderID string) (*ledgerSet, error) {
			tx, err := repos.Transactions().GetByOrderIDForUpdate(ctx, orderID)
			if err != nil {
				return nil, err
			}
			if tx == nil {
				return nil, domainErrors.ErrLedgerNotFound
			}
			if tx.Type == model.TransactionTypeDonation {
				return nil, domainErrors.ErrForeignLedger
			}
			return &ledgerSet{entries: []model.LedgerEntry{tx}, purchase: tx}, nil
		},
		find: func(ctx context.Context, repos repository.Repositories, orderID string) (model.LedgerEntry, error) {
			tx, err := repos.Transactions().GetByOrderID(ctx, orderID)
			if err != nil {
				return nil, err
			}
			if tx == nil {
				return nil, domainErrors.ErrLedgerNotFound
			}
			return tx, nil
		},
		stale: func(ctx context.Context, repos repository.Repositories, olderThan time.Time, limit int) ([]model.LedgerEntry, error) {
			rows, err := repos.Transactions().ListStalePending(ctx, olderThan, limit)
			if err != nil {
				return nil, err
			}
			entries := make([]model.LedgerEntry, 0, len(rows))
			for _, row := range rows {
				entries = append(entries, row)
			}
			return entries, nil
		},
	}
}

// DonationLedger reconciles donations. Both the Donation row and its
// donation-typed Transaction receive every event; no enrollment is derived.
func DonationLedger() LedgerKind {
	return LedgerKind{
		Name:              "donation",
		OrderPrefix:       DonationOrderPrefix,
		DerivesEnrollment: false,
		NotFoundMessage:   "Donation not found",
		ForeignMessage:    "Not a donation",
		lock: func(ctx context.Context, repos repository.Repositories, orderID string) (*ledgerSet, error) {
			donation, err := repos.Donations().GetByOrderIDForUpdate(ctx, orderID)
			if err != nil {
				return nil, err
			}
			if donation == nil {
				return nil, domainErrors.ErrLedgerNotFound
			}
			set := &ledgerSet{entries: []model.LedgerEntry{donation}}

			tx, err := repos.Transactions().GetByIDForUpdate(ctx, donation.TransactionID)
			if err != nil {
				return nil, err
			}
			if tx != nil {
				set.entries = append(set.entries, tx)
			}
			return set, nil
		},
		find: func(ctx context.Context, repos repository.Repositories, orderID string) (model.LedgerEntry, error) {
			donation, err := repos.Donations().GetByOrderID(ctx, orderID)
			if err != nil {
				return nil, err
			}
			if donation == nil {
				return nil, domainErrors.ErrLedgerNotFound
			}
			return donation, nil
		},
		stale: func(ctx context.Context, repos repository.Repositories, olderThan time.Time, limit int) ([]model.LedgerEntry, error) {
			rows, err := repos.Donations().ListStalePending(ctx, olderThan, limit)
			if err != nil {
				return nil, err
			}
			entries := make([]model.LedgerEntry, 0, len(rows))
			for _, row := range rows {
				entries = append(entries, row)
			}
			return entries, nil
		},
	}
}
