package model

import "time"

// Transaction is a purchase or donation ledger row. It is never hard-deleted.
type Transaction struct {
	ID             int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID  string            `gorm:"column:transaction_id;uniqueIndex;not null;size:64" json:"transaction_id"`
	OrderID        string            `gorm:"uniqueIndex;not null;size:64" json:"order_id"`
	UserID         int64             `gorm:"not null;index" json:"user_id"`
	CourseID       int64             `gorm:"not null;index" json:"course_id"`
	Amount         int64             `gorm:"not null" json:"amount"`
	DiscountAmount int64             `gorm:"not null;default:0" json:"discount_amount"`
	PromoCode      *string           `gorm:"size:64" json:"promo_code,omitempty"`
	Currency       string            `gorm:"not null;size:3;default:'IDR'" json:"currency"`
	PaymentMethod  string            `gorm:"size:50" json:"payment_method,omitempty"`
	Status         TransactionStatus `gorm:"not null;size:20;default:'pending';index" json:"status"`
	Type           TransactionType   `gorm:"not null;size:20;default:'purchase'" json:"type"`
	PaymentDetails JSONB             `gorm:"type:jsonb" json:"payment_details,omitempty"`
	StatusEventAt  *time.Time        `json:"status_event_at,omitempty"`
	PaidAt         *time.Time        `json:"paid_at,omitempty"`
	CreatedAt      time.Time         `gorm:"default:now()" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Transaction) TableName() string {
	return LedgerTransactions
}

func (t *Transaction) LedgerName() string               { return LedgerTransactions }
func (t *Transaction) EntryID() int64                   { return t.ID }
func (t *Transaction) EntryUserID() int64               { return t.UserID }
func (t *Transaction) EntryCourseID() int64             { return t.CourseID }
func (t *Transaction) EntryAmount() int64               { return t.Amount }
func (t *Transaction) EntryCreatedAt() time.Time        { return t.CreatedAt }
func (t *Transaction) EntryOrderID() string             { return t.OrderID }
func (t *Transaction) CurrentStatus() TransactionStatus { return t.Status }
func (t *Transaction) StatusEventTime() *time.Time      { return t.StatusEventAt }
func (t *Transaction) Details() JSONB                   { return t.PaymentDetails }
func (t *Transaction) SetDetails(details JSONB)         { t.PaymentDetails = details }

// ApplyStatus sets the status and the gateway time that produced it. A nil
// eventAt clears the stored time, so only gateway clocks are ever compared.
func (t *Transaction) ApplyStatus(status TransactionStatus, eventAt *time.Time, now time.Time) {
	t.Status = status
	t.StatusEventAt = eventAt
	if status == TransactionStatusCompleted && t.PaidAt == nil {
		t.PaidAt = &now
	}
}

func (t *Transaction) SetPaymentMethod(method string) {
	if method != "" {
		t.PaymentMethod = method
	}
}
