package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/config"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/pkg/logger"
)

const (
	connectAttempts = 5
	connectBackoff  = 500 * time.Millisecond
	slowQuery       = 200 * time.Millisecond
)

// NewConnection opens the ledger database and waits until it answers a ping.
// Postgres often starts after the service in compose setups, so the ping is
// retried with a doubling backoff until ctx is done.
func NewConnection(ctx context.Context, cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: cfg.DSN()}), &gorm.Config{
		Logger:                                   logger.NewGormLogger(log, gormlogger.Warn, slowQuery, true),
		DisableForeignKeyConstraintWhenMigrating: true,
		PrepareStmt:                              true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	backoff := connectBackoff
	for attempt := 1; ; attempt++ {
		err = sqlDB.PingContext(ctx)
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			sqlDB.Close()
			return nil, fmt.Errorf("database not reachable after %d attempts: %w", attempt, err)
		}

		log.Warn("Database not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-ctx.Done():
			sqlDB.Close()
			return nil, fmt.Errorf("database connect cancelled: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	log.Info("Database connection established",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name))

	return db, nil
}

// Close releases the connection pool
func Close(db *gorm.DB, log *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	log.Info("Database connection closed")
	return nil
}
