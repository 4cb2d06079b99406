package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	grpcHandlers "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/adapter/handler/grpc"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/adapter/repository/memory"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/config"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/infrastructure/database"
	grpcServer "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/infrastructure/grpc"
	httpServer "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/infrastructure/http"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/infrastructure/provider"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/usecase"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/pkg/logger"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:         cfg.Log.Level,
		Format:        cfg.Log.Format,
		Output:        cfg.Log.Output,
		FilePath:      cfg.Log.FilePath,
		Development:   cfg.Log.Development,
		ServiceName:   cfg.Service.Name,
		Version:       cfg.Service.Version,
		Environment:   cfg.Service.Environment,
		SampleInitial: cfg.Log.SampleInitial,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize repositories
	var (
		repos       *database.Repositories
		healthCheck grpcHandlers.CheckFunc
	)
	switch cfg.Database.Driver {
	case "memory":
		zapLogger.Warn("Using in-memory ledger store, data is lost on restart")
		repos = database.NewMemoryRepositories(memory.NewStore())
	default:
		db, err := database.NewConnection(ctx, &cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer func() {
			if err := database.Close(db, zapLogger); err != nil {
				zapLogger.Error("Failed to close database connection", zap.Error(err))
			}
		}()

		// Run database migrations
		if err := database.Migrate(db, zapLogger); err != nil {
			zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
		}

		sqlDB, err := db.DB()
		if err != nil {
			zapLogger.Fatal("Failed to get database handle", zap.Error(err))
		}
		healthCheck = sqlDB.PingContext
		repos = database.NewRepositories(db, zapLogger)
	}

	// Event publisher
	var publisher messaging.Publisher = messaging.NoopPublisher{}
	if cfg.Redis.Enabled {
		publisher, err = messaging.NewRedisPublisher(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
		}
	}
	defer publisher.Close()

	// Payment gateway
	gateway, err := provider.NewFactory(&cfg.Gateway, zapLogger).GetProviderFromString(cfg.Gateway.Provider)
	if err != nil {
		zapLogger.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}

	// Use cases
	deriver := usecase.NewEnrollmentDeriver(repos.UnitOfWork, zapLogger)
	purchases := usecase.NewReconciliationEngine(usecase.PurchaseLedger(), repos.UnitOfWork, deriver, publisher, zapLogger)
	donations := usecase.NewReconciliationEngine(usecase.DonationLedger(), repos.UnitOfWork, deriver, publisher, zapLogger)
	checkout := usecase.NewCheckoutService(
		repos.UnitOfWork,
		repos.Courses,
		repos.PromoCodes,
		gateway,
		purchases,
		donations,
		deriver,
		publisher,
		usecase.CheckoutConfig{
			Currency:          cfg.Gateway.Currency,
			GatewayTimeout:    cfg.Gateway.Timeout,
			ExposeErrorDetail: !cfg.IsProduction(),
		},
		zapLogger,
	)
	payments := usecase.NewPaymentUsecase(repos.UnitOfWork, zapLogger)
	sweeper := usecase.NewPendingSweeper(repos.UnitOfWork, gateway, usecase.SweeperConfig{
		Interval:    cfg.Reconciliation.SweepInterval,
		BatchSize:   cfg.Reconciliation.SweepBatchSize,
		StaleAfter:  cfg.Reconciliation.StaleAfter,
		ExpireAfter: cfg.Reconciliation.ExpireAfter,
	}, zapLogger, purchases, donations)

	// Initialize servers
	health := grpcHandlers.NewHealthHandler(healthCheck, zapLogger)
	grpcSrv := grpcServer.NewServer(cfg, zapLogger, health)
	httpSrv := httpServer.NewServer(cfg, zapLogger, httpServer.Services{
		Gateway:   gateway,
		Checkout:  checkout,
		Purchases: purchases,
		Donations: donations,
		Payments:  payments,
	})

	// Background workers
	go sweeper.Run(ctx)
	go health.Watch(ctx, 30*time.Second)

	// Start servers
	go func() {
		if err := grpcSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start gRPC server", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down servers...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	// Shutdown servers
	if err := grpcSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
	}

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Servers shut down successfully")
}
