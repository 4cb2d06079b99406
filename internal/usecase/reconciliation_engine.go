package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/errors"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/provider"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/repository"
)

// ReconcileResult describes what one event did to the primary ledger entry.
type ReconcileResult struct {
	Ledger         string
	OrderID        string
	UserID         int64
	CourseID       int64
	Amount         int64
	PreviousStatus model.TransactionStatus
	Status         model.TransactionStatus
	Changed        bool
	// Stale is set when the ordering guard kept the current status
	Stale bool
	// Anomaly is set when the gateway status was not recognised
	Anomaly           bool
	Enrollment        *model.Enrollment
	EnrollmentCreated bool
}

// LedgerSnapshot is a read-only view of a ledger entry.
type LedgerSnapshot struct {
	Ledger   string
	OrderID  string
	UserID   int64
	CourseID int64
	Status   model.TransactionStatus
}

// ReconciliationEngine applies gateway status reports to one ledger kind.
type ReconciliationEngine struct {
	kind      LedgerKind
	uow       repository.UnitOfWork
	deriver   *EnrollmentDeriver
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewReconciliationEngine creates an engine for the given ledger kind
func NewReconciliationEngine(kind LedgerKind, uow repository.UnitOfWork, deriver *EnrollmentDeriver, publisher EventPublisher, logger *zap.Logger) *ReconciliationEngine {
	return &ReconciliationEngine{
		kind:      kind,
		uow:       uow,
		deriver:   deriver,
		publisher: publisher,
		logger:    logger.With(zap.String("ledger", kind.Name)),
		now:       time.Now,
	}
}

// Kind returns the ledger kind this engine reconciles
func (e *ReconciliationEngine) Kind() LedgerKind {
	return e.kind
}

// Reconcile applies one event. It returns domain errors ErrForeignLedger when
// the order id belongs to another ledger kind and ErrLedgerNotFound when no
// row matches; neither case mutates anything.
func (e *ReconciliationEngine) Reconcile(ctx context.Context, ev GatewayEvent) (*ReconcileResult, error) {
	if !e.kind.Owns(ev.OrderID) {
		return nil, domainErrors.ErrForeignLedger
	}

	next, anomaly := ResolveStatus(ev.TransactionStatus, ev.FraudStatus, ev.PaymentType)
	if anomaly {
		e.logger.Warn("Unrecognized gateway transaction status",
			zap.String("order_id", ev.OrderID),
			zap.String("transaction_status", ev.TransactionStatus),
			zap.String("channel", string(ev.Channel)))
	}

	result := &ReconcileResult{
		Ledger:  e.kind.Name,
		OrderID: ev.OrderID,
		Anomaly: anomaly,
	}

	err := e.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		set, err := e.kind.lock(ctx, repos, ev.OrderID)
		if err != nil {
			return err
		}

		receivedAt := e.now()
		for i, entry := range set.entries {
			previous, applied, err := e.applyEvent(ctx, repos, entry, ev, next, receivedAt)
			if err != nil {
				return err
			}
			if i == 0 {
				result.PreviousStatus = previous
				result.Status = entry.CurrentStatus()
				result.Changed = previous != result.Status
				result.Stale = !applied
				result.UserID = entry.EntryUserID()
				result.CourseID = entry.EntryCourseID()
				result.Amount = entry.EntryAmount()
			}
		}

		if !e.kind.DerivesEnrollment || set.purchase == nil {
			return nil
		}
		if !result.Changed || result.Status != model.TransactionStatusCompleted {
			return nil
		}

		enrollment, created, err := e.deriver.ensureWithin(ctx, repos.Enrollments(), set.purchase)
		if err != nil {
			return err
		}
		result.Enrollment = enrollment
		result.EnrollmentCreated = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.audit(ev, result)
	e.publish(ctx, ev, result)
	return result, nil
}

func (e *ReconciliationEngine) applyEvent(ctx context.Context, repos repository.Repositories, entry model.LedgerEntry, ev GatewayEvent, next model.TransactionStatus, receivedAt time.Time) (model.TransactionStatus, bool, error) {
	previous := entry.CurrentStatus()
	applied, note := admitTransition(previous, entry.StatusEventTime(), next, ev.EventTime)

	if ev.Amount != nil && *ev.Amount != entry.EntryAmount() {
		e.logger.Warn("Gateway amount differs from ledger amount",
			zap.String("order_id", entry.EntryOrderID()),
			zap.String("table", entry.LedgerName()),
			zap.Int64("ledger_amount", entry.EntryAmount()),
			zap.Int64("gateway_amount", *ev.Amount))
	}

	if applied {
		if next != previous {
			entry.ApplyStatus(next, ev.EventTime, receivedAt)
		}
		entry.SetPaymentMethod(ev.PaymentType)
	}

	event := &model.PaymentEvent{
		Ledger:            entry.LedgerName(),
		LedgerID:          entry.EntryID(),
		OrderID:           entry.EntryOrderID(),
		Channel:           ev.Channel,
		TransactionStatus: ev.TransactionStatus,
		FraudStatus:       ev.FraudStatus,
		PaymentType:       ev.PaymentType,
		PreviousStatus:    previous,
		ResultStatus:      entry.CurrentStatus(),
		Applied:           applied,
		Note:              note,
		EventAt:           ev.EventTime,
		Payload:           encodePayload(ev.Payload),
	}
	if err := repos.PaymentEvents().Append(ctx, event); err != nil {
		return previous, applied, fmt.Errorf("failed to append payment event: %w", err)
	}

	entry.SetDetails(mergeEventDetails(entry.Details(), ev, entry.CurrentStatus(), applied, event.Sequence, receivedAt))
	if err := saveEntry(ctx, repos, entry); err != nil {
		return previous, applied, err
	}
	return previous, applied, nil
}

// MarkGatewayFailure records a failed charge-token request: pending entries
// move to failed and the error with its stack trace is merged into
// payment_details.
func (e *ReconciliationEngine) MarkGatewayFailure(ctx context.Context, orderID string, cause error, stackTrace string) error {
	return e.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		set, err := e.kind.lock(ctx, repos, orderID)
		if err != nil {
			return err
		}

		now := e.now()
		for _, entry := range set.entries {
			previous := entry.CurrentStatus()
			if previous == model.TransactionStatusPending {
				entry.ApplyStatus(model.TransactionStatusFailed, nil, now)
			}

			event := &model.PaymentEvent{
				Ledger:         entry.LedgerName(),
				LedgerID:       entry.EntryID(),
				OrderID:        entry.EntryOrderID(),
				Channel:        model.ChannelCheckout,
				PreviousStatus: previous,
				ResultStatus:   entry.CurrentStatus(),
				Applied:        previous == model.TransactionStatusPending,
				Note:           "gateway error",
				Payload: encodePayload(map[string]interface{}{
					"error":       cause.Error(),
					"stack_trace": stackTrace,
				}),
			}
			if err := repos.PaymentEvents().Append(ctx, event); err != nil {
				return fmt.Errorf("failed to append payment event: %w", err)
			}

			entry.SetDetails(mergeFailureDetails(entry.Details(), cause.Error(), stackTrace, event.Sequence, now))
			if err := saveEntry(ctx, repos, entry); err != nil {
				return err
			}
		}

		e.logger.Warn("Ledger entry marked failed after gateway error",
			zap.String("order_id", orderID),
			zap.Error(cause))
		return nil
	})
}

// Lookup reads the stored status without taking locks or writing.
func (e *ReconciliationEngine) Lookup(ctx context.Context, orderID string) (*LedgerSnapshot, error) {
	if !e.kind.Owns(orderID) {
		return nil, domainErrors.ErrForeignLedger
	}
	entry, err := e.kind.find(ctx, e.uow.Repositories(), orderID)
	if err != nil {
		return nil, err
	}
	return &LedgerSnapshot{
		Ledger:   e.kind.Name,
		OrderID:  entry.EntryOrderID(),
		UserID:   entry.EntryUserID(),
		CourseID: entry.EntryCourseID(),
		Status:   entry.CurrentStatus(),
	}, nil
}

func (e *ReconciliationEngine) audit(ev GatewayEvent, result *ReconcileResult) {
	fields := []zap.Field{
		zap.String("order_id", result.OrderID),
		zap.String("channel", string(ev.Channel)),
		zap.String("transaction_status", ev.TransactionStatus),
		zap.String("old_status", string(result.PreviousStatus)),
		zap.String("new_status", string(result.Status)),
		zap.Bool("changed", result.Changed),
	}
	if result.Stale {
		e.logger.Warn("Stale payment event ignored", fields...)
		return
	}
	if result.EnrollmentCreated {
		fields = append(fields, zap.Int64("enrollment_id", result.Enrollment.ID))
	}
	e.logger.Info("Ledger status reconciled", fields...)
}

func (e *ReconciliationEngine) publish(ctx context.Context, ev GatewayEvent, result *ReconcileResult) {
	if result.Changed {
		publishBestEffort(ctx, e.publisher, e.logger, ChannelStatusChanged, StatusChangedMessage{
			Ledger:         result.Ledger,
			OrderID:        result.OrderID,
			UserID:         result.UserID,
			CourseID:       result.CourseID,
			Amount:         result.Amount,
			PreviousStatus: result.PreviousStatus,
			Status:         result.Status,
			Channel:        ev.Channel,
		})
	}
	if result.EnrollmentCreated {
		publishEnrollmentCreated(ctx, e.publisher, e.logger, result.Enrollment)
	}
}

func saveEntry(ctx context.Context, repos repository.Repositories, entry model.LedgerEntry) error {
	switch row := entry.(type) {
	case *model.Transaction:
		if err := repos.Transactions().Save(ctx, row); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
	case *model.Donation:
		if err := repos.Donations().Save(ctx, row); err != nil {
			return fmt.Errorf("failed to save donation: %w", err)
		}
	default:
		return fmt.Errorf("unsupported ledger entry %T", entry)
	}
	return nil
}

// EventFromNotification converts a verified gateway notification.
func EventFromNotification(n *provider.Notification, channel model.EventChannel) GatewayEvent {
	return GatewayEvent{
		Channel:           channel,
		OrderID:           n.OrderID,
		TransactionStatus: n.TransactionStatus,
		FraudStatus:       n.FraudStatus,
		PaymentType:       n.PaymentType,
		Amount:            n.Amount,
		EventTime:         n.EventTime,
		Payload:           n.Raw,
	}
}
