package model

import (
	"time"

	"gorm.io/datatypes"
)

// EventChannel names where a payment event came from.
type EventChannel string

const (
	ChannelCheckout     EventChannel = "checkout"
	ChannelRedirect     EventChannel = "redirect"
	ChannelNotification EventChannel = "notification"
	ChannelStatusPoll   EventChannel = "status_poll"
)

// PaymentEvent is one entry of a ledger row's payment history. Rows are only
// ever inserted.
type PaymentEvent struct {
	ID                int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Ledger            string            `gorm:"not null;size:20;uniqueIndex:idx_payment_events_sequence" json:"ledger"`
	LedgerID          int64             `gorm:"not null;uniqueIndex:idx_payment_events_sequence" json:"ledger_id"`
	Sequence          int               `gorm:"not null;uniqueIndex:idx_payment_events_sequence" json:"sequence"`
	OrderID           string            `gorm:"not null;size:64;index" json:"order_id"`
	Channel           EventChannel      `gorm:"not null;size:20" json:"channel"`
	TransactionStatus string            `gorm:"size:50" json:"transaction_status,omitempty"`
	FraudStatus       string            `gorm:"size:50" json:"fraud_status,omitempty"`
	PaymentType       string            `gorm:"size:50" json:"payment_type,omitempty"`
	PreviousStatus    TransactionStatus `gorm:"size:20" json:"previous_status"`
	ResultStatus      TransactionStatus `gorm:"size:20" json:"result_status"`
	Applied           bool              `gorm:"not null" json:"applied"`
	Note              string            `gorm:"size:255" json:"note,omitempty"`
	EventAt           *time.Time        `json:"event_at,omitempty"`
	Payload           datatypes.JSON    `gorm:"type:jsonb" json:"payload,omitempty"`
	CreatedAt         time.Time         `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (PaymentEvent) TableName() string {
	return "payment_events"
}
