package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/repository"
)

type repositories struct {
	transactions  repository.TransactionRepository
	donations     repository.DonationRepository
	enrollments   repository.EnrollmentRepository
	paymentEvents repository.PaymentEventRepository
}

func newRepositories(db *gorm.DB, logger *zap.Logger) *repositories {
	return &repositories{
		transactions:  NewTransactionRepository(db, logger),
		donations:     NewDonationRepository(db, logger),
		enrollments:   NewEnrollmentRepository(db, logger),
		paymentEvents: NewPaymentEventRepository(db),
	}
}

func (r *repositories) Transactions() repository.TransactionRepository   { return r.transactions }
func (r *repositories) Donations() repository.DonationRepository         { return r.donations }
func (r *repositories) Enrollments() repository.EnrollmentRepository     { return r.enrollments }
func (r *repositories) PaymentEvents() repository.PaymentEventRepository { return r.paymentEvents }

type unitOfWork struct {
	db     *gorm.DB
	logger *zap.Logger
	plain  *repositories
}

// NewUnitOfWork creates a UnitOfWork backed by one database transaction per Do
func NewUnitOfWork(db *gorm.DB, logger *zap.Logger) repository.UnitOfWork {
	return &unitOfWork{
		db:     db,
		logger: logger,
		plain:  newRepositories(db, logger),
	}
}

func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, newRepositories(tx, u.logger))
	})
}

func (u *unitOfWork) Repositories() repository.Repositories {
	return u.plain
}
