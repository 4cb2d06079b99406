package model

import "time"

// Donation is a voluntary contribution to a course. It shares its order id
// with the donation-typed Transaction it points at.
type Donation struct {
	ID             int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID  int64             `gorm:"column:transaction_id;uniqueIndex;not null" json:"transaction_id"`
	OrderID        string            `gorm:"uniqueIndex;not null;size:64" json:"order_id"`
	UserID         int64             `gorm:"not null;index" json:"user_id"`
	CourseID       int64             `gorm:"not null;index" json:"course_id"`
	Amount         int64             `gorm:"not null" json:"amount"`
	Currency       string            `gorm:"not null;size:3;default:'IDR'" json:"currency"`
	Message        string            `gorm:"size:500" json:"message,omitempty"`
	PaymentMethod  string            `gorm:"size:50" json:"payment_method,omitempty"`
	Status         TransactionStatus `gorm:"not null;size:20;default:'pending';index" json:"status"`
	PaymentDetails JSONB             `gorm:"type:jsonb" json:"payment_details,omitempty"`
	StatusEventAt  *time.Time        `json:"status_event_at,omitempty"`
	PaidAt         *time.Time        `json:"paid_at,omitempty"`
	CreatedAt      time.Time         `gorm:"default:now()" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"default:now()" json:"updated_at"`

	Transaction *Transaction `gorm:"foreignKey:TransactionID" json:"-"`
}

// TableName specifies the table name for GORM
func (Donation) TableName() string {
	return LedgerDonations
}

func (d *Donation) LedgerName() string               { return LedgerDonations }
func (d *Donation) EntryID() int64                   { return d.ID }
func (d *Donation) EntryUserID() int64               { return d.UserID }
func (d *Donation) EntryCourseID() int64             { return d.CourseID }
func (d *Donation) EntryAmount() int64               { return d.Amount }
func (d *Donation) EntryCreatedAt() time.Time        { return d.CreatedAt }
func (d *Donation) EntryOrderID() string             { return d.OrderID }
func (d *Donation) CurrentStatus() TransactionStatus { return d.Status }
func (d *Donation) StatusEventTime() *time.Time      { return d.StatusEventAt }
func (d *Donation) Details() JSONB                   { return d.PaymentDetails }
func (d *Donation) SetDetails(details JSONB)         { d.PaymentDetails = details }

// ApplyStatus sets the status and the gateway time that produced it. A nil
// eventAt clears the stored time, so only gateway clocks are ever compared.
func (d *Donation) ApplyStatus(status TransactionStatus, eventAt *time.Time, now time.Time) {
	d.Status = status
	d.StatusEventAt = eventAt
	if status == TransactionStatusCompleted && d.PaidAt == nil {
		d.PaidAt = &now
	}
}

func (d *Donation) SetPaymentMethod(method string) {
	if method != "" {
		d.PaymentMethod = method
	}
}
