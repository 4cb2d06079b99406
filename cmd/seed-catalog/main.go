package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/config"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/infrastructure/database"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/pkg/logger"
)

func main() {
	catalogPath := flag.String("file", "configs/catalog.yaml", "path to the catalog YAML file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.Database.Driver != "postgres" {
		zapLogger.Fatal("Catalog seeding needs the postgres driver", zap.String("driver", cfg.Database.Driver))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Initialize database connection
	db, err := database.NewConnection(ctx, &cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	repos := database.NewRepositories(db, zapLogger)

	zapLogger.Info("Seeding catalog from YAML", zap.String("path", *catalogPath))

	catalog, err := loadCatalogFromYAML(*catalogPath)
	if err != nil {
		zapLogger.Fatal("Failed to load catalog from YAML", zap.Error(err))
	}

	coursesSeeded := 0
	for _, course := range catalog.Courses {
		if err := repos.Courses.Upsert(ctx, course); err != nil {
			zapLogger.Error("Failed to upsert course",
				zap.Int64("course_id", course.ID),
				zap.Error(err))
			continue
		}
		coursesSeeded++
	}

	promosSeeded := 0
	for _, promo := range catalog.PromoCodes {
		if err := repos.PromoCodes.Upsert(ctx, promo); err != nil {
			zapLogger.Error("Failed to upsert promo code",
				zap.String("code", promo.Code),
				zap.Error(err))
			continue
		}
		promosSeeded++
	}

	zapLogger.Info("Catalog seeding completed",
		zap.Int("courses_seeded", coursesSeeded),
		zap.Int("promo_codes_seeded", promosSeeded))
}
