package model

import "time"

// Ledger table names, also used as the discriminator of payment_events.
const (
	LedgerTransactions = "transactions"
	LedgerDonations    = "donations"
)

// LedgerEntry is the part of a Transaction or Donation row that the
// reconciliation engine reads and writes.
type LedgerEntry interface {
	LedgerName() string
	EntryID() int64
	EntryOrderID() string
	EntryUserID() int64
	EntryCourseID() int64
	EntryAmount() int64
	EntryCreatedAt() time.Time
	CurrentStatus() TransactionStatus
	StatusEventTime() *time.Time
	Details() JSONB
	SetDetails(details JSONB)
	// ApplyStatus moves the entry to status. PaidAt is stamped only on the
	// first move into completed.
	ApplyStatus(status TransactionStatus, eventAt *time.Time, now time.Time)
	SetPaymentMethod(method string)
}
