package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/repository"
)

type courseRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *gorm.DB, logger *zap.Logger) repository.CourseRepository {
	return &courseRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a course by ID
func (r *courseRepository) GetByID(ctx context.Context, id int64) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get course", zap.Int64("course_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

// Upsert creates or updates a course keyed by its ID
func (r *courseRepository) Upsert(ctx context.Context, course *model.Course) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"instructor_id", "title", "price", "is_published", "updated_at"}),
		}).
		Create(course).Error
	if err != nil {
		r.logger.Error("Failed to upsert course", zap.Int64("course_id", course.ID), zap.Error(err))
		return fmt.Errorf("failed to upsert course: %w", err)
	}
	return nil
}

type promoCodeRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPromoCodeRepository creates a new promo code repository
func NewPromoCodeRepository(db *gorm.DB, logger *zap.Logger) repository.PromoCodeRepository {
	return &promoCodeRepository{
		db:     db,
		logger: logger,
	}
}

// GetByCode retrieves a promo code, matching case-insensitively
func (r *promoCodeRepository) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	var promo model.PromoCode
	err := r.db.WithContext(ctx).Where("UPPER(code) = UPPER(?)", code).First(&promo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get promo code", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	return &promo, nil
}

// Upsert creates or updates a promo code keyed by its code
func (r *promoCodeRepository) Upsert(ctx context.Context, promo *model.PromoCode) error {
	existing, err := r.GetByCode(ctx, promo.Code)
	if err != nil {
		return err
	}

	if existing != nil {
		promo.ID = existing.ID
		promo.UsedCount = existing.UsedCount
		promo.CreatedAt = existing.CreatedAt
		if err := r.db.WithContext(ctx).Save(promo).Error; err != nil {
			return fmt.Errorf("failed to update promo code: %w", err)
		}
		return nil
	}

	if err := r.db.WithContext(ctx).Create(promo).Error; err != nil {
		return fmt.Errorf("failed to create promo code: %w", err)
	}
	return nil
}
