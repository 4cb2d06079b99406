package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/adapter/repository"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/adapter/repository/memory"
	domainRepo "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	UnitOfWork domainRepo.UnitOfWork
	Courses    domainRepo.CourseRepository
	PromoCodes domainRepo.PromoCodeRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		UnitOfWork: repository.NewUnitOfWork(db, logger),
		Courses:    repository.NewCourseRepository(db, logger),
		PromoCodes: repository.NewPromoCodeRepository(db, logger),
	}
}

// NewMemoryRepositories backs every repository with an in-process store
func NewMemoryRepositories(store *memory.Store) *Repositories {
	return &Repositories{
		UnitOfWork: store,
		Courses:    store.Courses(),
		PromoCodes: store.PromoCodes(),
	}
}
