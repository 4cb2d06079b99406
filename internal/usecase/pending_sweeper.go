package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/provider"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/repository"
)

// SweeperConfig controls the pending sweeper
type SweeperConfig struct {
	Interval    time.Duration
	BatchSize   int
	StaleAfter  time.Duration
	ExpireAfter time.Duration
}

// PendingSweeper asks the gateway about entries that stayed pending, for
// when neither delivery channel ever reached us.
type PendingSweeper struct {
	uow     repository.UnitOfWork
	gateway provider.PaymentProvider
	engines []*ReconciliationEngine
	cfg     SweeperConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewPendingSweeper creates a new PendingSweeper
func NewPendingSweeper(uow repository.UnitOfWork, gateway provider.PaymentProvider, cfg SweeperConfig, logger *zap.Logger, engines ...*ReconciliationEngine) *PendingSweeper {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &PendingSweeper{
		uow:     uow,
		gateway: gateway,
		engines: engines,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Run sweeps every Interval until ctx is cancelled. A zero interval disables it.
func (s *PendingSweeper) Run(ctx context.Context) {
	if s.cfg.Interval <= 0 {
		s.logger.Info("Pending sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info("Pending sweeper started", zap.Duration("interval", s.cfg.Interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Pending sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("Pending sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce runs one pass over every ledger kind and returns how many entries
// were reconciled.
func (s *PendingSweeper) SweepOnce(ctx context.Context) (int, error) {
	now := s.now()
	reconciled := 0

	for _, engine := range s.engines {
		entries, err := engine.kind.stale(ctx, s.uow.Repositories(), now.Add(-s.cfg.StaleAfter), s.cfg.BatchSize)
		if err != nil {
			return reconciled, err
		}
		if len(entries) == 0 {
			continue
		}

		s.logger.Info("Found stale pending entries",
			zap.String("ledger", engine.kind.Name),
			zap.Int("count", len(entries)))

		for _, entry := range entries {
			ok, stop := s.sweepEntry(ctx, engine, entry, now)
			if stop {
				return reconciled, nil
			}
			if ok {
				reconciled++
			}
		}
	}
	return reconciled, nil
}

// sweepEntry returns stop=true when the gateway cannot answer status queries at all.
func (s *PendingSweeper) sweepEntry(ctx context.Context, engine *ReconciliationEngine, entry model.LedgerEntry, now time.Time) (bool, bool) {
	orderID := entry.EntryOrderID()

	var ev GatewayEvent
	n, err := s.gateway.CheckStatus(ctx, orderID)
	switch {
	case err == nil:
		ev = EventFromNotification(n, model.ChannelStatusPoll)
	case provider.HasCode(err, provider.CodeNotSupported):
		s.logger.Debug("Gateway does not support status polling",
			zap.String("provider", s.gateway.GetProviderName()))
		return false, true
	case provider.HasCode(err, provider.CodeNotFound):
		if now.Sub(entry.EntryCreatedAt()) < s.cfg.ExpireAfter {
			return false, false
		}
		ev = GatewayEvent{
			Channel:           model.ChannelStatusPoll,
			OrderID:           orderID,
			TransactionStatus: string(model.GatewayStatusExpire),
			Payload: map[string]interface{}{
				"reason": "no gateway record after expiry window",
			},
		}
	default:
		s.logger.Warn("Failed to check gateway status",
			zap.String("order_id", orderID),
			zap.Error(err))
		return false, false
	}

	if _, err := engine.Reconcile(ctx, ev); err != nil {
		s.logger.Warn("Failed to reconcile polled status",
			zap.String("order_id", orderID),
			zap.Error(err))
		return false, false
	}
	return true, false
}
