package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
)

// Channels published after a committed change.
const (
	ChannelStatusChanged     = "payment.status_changed"
	ChannelEnrollmentCreated = "enrollment.created"
)

// EventPublisher publishes domain events. Implemented by pkg/messaging.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// StatusChangedMessage is published when a ledger entry changes status
type StatusChangedMessage struct {
	Ledger         string                  `json:"ledger"`
	OrderID        string                  `json:"order_id"`
	UserID         int64                   `json:"user_id"`
	CourseID       int64                   `json:"course_id"`
	Amount         int64                   `json:"amount"`
	PreviousStatus model.TransactionStatus `json:"previous_status"`
	Status         model.TransactionStatus `json:"status"`
	Channel        model.EventChannel      `json:"channel"`
}

// EnrollmentCreatedMessage is published when a new enrollment is inserted
type EnrollmentCreatedMessage struct {
	EnrollmentID int64     `json:"enrollment_id"`
	UserID       int64     `json:"user_id"`
	CourseID     int64     `json:"course_id"`
	OrderID      string    `json:"order_id"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}

// publishBestEffort never fails the caller; ledger state is already committed.
func publishBestEffort(ctx context.Context, publisher EventPublisher, logger *zap.Logger, channel string, message interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, channel, message); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("channel", channel),
			zap.Error(err))
	}
}

func publishEnrollmentCreated(ctx context.Context, publisher EventPublisher, logger *zap.Logger, e *model.Enrollment) {
	orderID := ""
	if e.OrderID != nil {
		orderID = *e.OrderID
	}
	publishBestEffort(ctx, publisher, logger, ChannelEnrollmentCreated, EnrollmentCreatedMessage{
		EnrollmentID: e.ID,
		UserID:       e.UserID,
		CourseID:     e.CourseID,
		OrderID:      orderID,
		EnrolledAt:   e.EnrolledAt,
	})
}
