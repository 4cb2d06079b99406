package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainErrors "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/errors"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/repository"
)

const uniqueViolation = "23505"

type enrollmentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *gorm.DB, logger *zap.Logger) repository.EnrollmentRepository {
	return &enrollmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts with ON CONFLICT (user_id, course_id) DO NOTHING so a lost
// race does not abort the surrounding database transaction.
func (r *enrollmentRepository) Create(ctx context.Context, enrollment *model.Enrollment) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(enrollment)

	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainErrors.ErrEnrollmentExists
		}
		r.logger.Error("Failed to create enrollment",
			zap.Int64("user_id", enrollment.UserID),
			zap.Int64("course_id", enrollment.CourseID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to create enrollment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainErrors.ErrEnrollmentExists
	}
	return nil
}

func (r *enrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID int64) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return &enrollment, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
