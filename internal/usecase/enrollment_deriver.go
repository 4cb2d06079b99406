package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/errors"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/repository"
)

// EnrollmentDeriver turns a completed purchase into an enrollment.
type EnrollmentDeriver struct {
	uow    repository.UnitOfWork
	logger *zap.Logger
	now    func() time.Time
}

// NewEnrollmentDeriver creates a new EnrollmentDeriver
func NewEnrollmentDeriver(uow repository.UnitOfWork, logger *zap.Logger) *EnrollmentDeriver {
	return &EnrollmentDeriver{
		uow:    uow,
		logger: logger,
		now:    time.Now,
	}
}

// EnsureEnrollment returns the enrollment for the transaction's user and
// course, creating it if needed. It is safe to call repeatedly and
// concurrently; the boolean is true only for the call that inserted the row.
func (d *EnrollmentDeriver) EnsureEnrollment(ctx context.Context, tx *model.Transaction) (*model.Enrollment, bool, error) {
	var (
		enrollment *model.Enrollment
		created    bool
	)
	err := d.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		enrollment, created, err = d.ensureWithin(ctx, repos.Enrollments(), tx)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return enrollment, created, nil
}

func (d *EnrollmentDeriver) ensureWithin(ctx context.Context, enrollments repository.EnrollmentRepository, tx *model.Transaction) (*model.Enrollment, bool, error) {
	existing, err := enrollments.GetByUserAndCourse(ctx, tx.UserID, tx.CourseID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up enrollment: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	orderID := tx.OrderID
	enrollment := &model.Enrollment{
		UserID:     tx.UserID,
		CourseID:   tx.CourseID,
		Status:     model.EnrollmentStatusActive,
		EnrolledAt: d.now(),
		OrderID:    &orderID,
	}

	err = enrollments.Create(ctx, enrollment)
	if errors.Is(err, domainErrors.ErrEnrollmentExists) {
		// Lost the race to a concurrent writer; the unique index decided.
		existing, err = enrollments.GetByUserAndCourse(ctx, tx.UserID, tx.CourseID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to fetch existing enrollment: %w", err)
		}
		if existing == nil {
			return nil, false, fmt.Errorf("enrollment for user %d course %d reported as existing but not found", tx.UserID, tx.CourseID)
		}
		d.logger.Info("Enrollment already existed",
			zap.Int64("user_id", tx.UserID),
			zap.Int64("course_id", tx.CourseID),
			zap.String("order_id", tx.OrderID))
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create enrollment: %w", err)
	}

	d.logger.Info("Enrollment created",
		zap.Int64("enrollment_id", enrollment.ID),
		zap.Int64("user_id", tx.UserID),
		zap.Int64("course_id", tx.CourseID),
		zap.String("order_id", tx.OrderID))
	return enrollment, true, nil
}
