package repository

import (
	"context"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
)

// CourseRepository reads the course catalog
type CourseRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Course, error)
	Upsert(ctx context.Context, course *model.Course) error
}

// PromoCodeRepository reads promo codes
type PromoCodeRepository interface {
	GetByCode(ctx context.Context, code string) (*model.PromoCode, error)
	Upsert(ctx context.Context, promo *model.PromoCode) error
}
