package repository

import (
	"context"
	"time"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
)

// TransactionRepository defines ledger operations on the transactions table.
// Lookups return (nil, nil) when no row matches.
type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error

	GetByOrderID(ctx context.Context, orderID string) (*model.Transaction, error)

	// GetByOrderIDForUpdate locks the row until the surrounding unit of work ends
	GetByOrderIDForUpdate(ctx context.Context, orderID string) (*model.Transaction, error)

	GetByIDForUpdate(ctx context.Context, id int64) (*model.Transaction, error)

	// Save persists every mutable column of an existing row
	Save(ctx context.Context, tx *model.Transaction) error

	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.Transaction, int64, error)

	// ListStalePending returns purchase rows still pending that were created before olderThan
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*model.Transaction, error)
}

// DonationRepository defines ledger operations on the donations table
type DonationRepository interface {
	Create(ctx context.Context, donation *model.Donation) error
	GetByOrderID(ctx context.Context, orderID string) (*model.Donation, error)
	GetByOrderIDForUpdate(ctx context.Context, orderID string) (*model.Donation, error)
	Save(ctx context.Context, donation *model.Donation) error
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*model.Donation, error)
}

// EnrollmentRepository stores course enrollments
type EnrollmentRepository interface {
	// Create inserts the enrollment. It returns errors.ErrEnrollmentExists when
	// the (user_id, course_id) pair is already taken.
	Create(ctx context.Context, enrollment *model.Enrollment) error

	GetByUserAndCourse(ctx context.Context, userID, courseID int64) (*model.Enrollment, error)
}

// PaymentEventRepository is the append-only payment history
type PaymentEventRepository interface {
	// Append assigns the next sequence number for the event's ledger row and inserts it
	Append(ctx context.Context, event *model.PaymentEvent) error

	ListByLedger(ctx context.Context, ledger string, ledgerID int64) ([]*model.PaymentEvent, error)
}

// Repositories groups the stores that take part in one unit of work
type Repositories interface {
	Transactions() TransactionRepository
	Donations() DonationRepository
	Enrollments() EnrollmentRepository
	PaymentEvents() PaymentEventRepository
}

// UnitOfWork runs a function atomically. Row locks taken inside fn are held
// until fn returns.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error

	// Repositories returns stores bound to no transaction, for plain reads
	Repositories() Repositories
}
