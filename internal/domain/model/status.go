package model

import (
	"database/sql/driver"
	"strings"
)

// TransactionStatus is the reconciled state of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusChallenge TransactionStatus = "challenge"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusExpired   TransactionStatus = "expired"
	TransactionStatusCancelled TransactionStatus = "cancelled"
	TransactionStatusRefunded  TransactionStatus = "refunded"
	TransactionStatusUnknown   TransactionStatus = "unknown"
)

// AllTransactionStatuses lists every storable status
var AllTransactionStatuses = []TransactionStatus{
	TransactionStatusPending,
	TransactionStatusCompleted,
	TransactionStatusChallenge,
	TransactionStatusFailed,
	TransactionStatusExpired,
	TransactionStatusCancelled,
	TransactionStatusRefunded,
	TransactionStatusUnknown,
}

// ParseTransactionStatus maps a stored value onto the closed status set.
// Anything unrecognised becomes TransactionStatusUnknown.
func ParseTransactionStatus(s string) TransactionStatus {
	switch st := TransactionStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusChallenge,
		TransactionStatusFailed, TransactionStatusExpired, TransactionStatusCancelled,
		TransactionStatusRefunded, TransactionStatusUnknown:
		return st
	default:
		return TransactionStatusUnknown
	}
}

// IsTerminal reports whether no further automatic transition is expected.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusExpired, TransactionStatusCancelled:
		return true
	}
	return false
}

func (s TransactionStatus) String() string {
	return string(s)
}

// Scan implements sql.Scanner interface
func (s *TransactionStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = ParseTransactionStatus(v)
	case []byte:
		*s = ParseTransactionStatus(string(v))
	default:
		*s = TransactionStatusUnknown
	}
	return nil
}

// Value implements driver.Valuer interface
func (s TransactionStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionTypePurchase TransactionType = "purchase"
	TransactionTypeDonation TransactionType = "donation"
	TransactionTypeRefund   TransactionType = "refund"
	TransactionTypePayout   TransactionType = "payout"
)

// Scan implements sql.Scanner interface
func (t *TransactionType) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*t = TransactionType(v)
	case []byte:
		*t = TransactionType(v)
	default:
		*t = TransactionTypePurchase
	}
	return nil
}

// Value implements driver.Valuer interface
func (t TransactionType) Value() (driver.Value, error) {
	return string(t), nil
}

// GatewayStatus is the transaction_status vocabulary reported by the payment gateway.
type GatewayStatus string

const (
	GatewayStatusCapture    GatewayStatus = "capture"
	GatewayStatusSettlement GatewayStatus = "settlement"
	GatewayStatusPending    GatewayStatus = "pending"
	GatewayStatusDeny       GatewayStatus = "deny"
	GatewayStatusExpire     GatewayStatus = "expire"
	GatewayStatusCancel     GatewayStatus = "cancel"
	// GatewayStatusUnrecognized stands for any value outside the known set.
	GatewayStatusUnrecognized GatewayStatus = "unrecognized"
)

// ParseGatewayStatus normalises a raw transaction_status value.
func ParseGatewayStatus(raw string) GatewayStatus {
	switch st := GatewayStatus(strings.ToLower(strings.TrimSpace(raw))); st {
	case GatewayStatusCapture, GatewayStatusSettlement, GatewayStatusPending,
		GatewayStatusDeny, GatewayStatusExpire, GatewayStatusCancel:
		return st
	default:
		return GatewayStatusUnrecognized
	}
}

// FraudStatus is the gateway's fraud screening verdict.
type FraudStatus string

const (
	FraudStatusNone         FraudStatus = ""
	FraudStatusAccept       FraudStatus = "accept"
	FraudStatusChallenge    FraudStatus = "challenge"
	FraudStatusDeny         FraudStatus = "deny"
	FraudStatusUnrecognized FraudStatus = "unrecognized"
)

// ParseFraudStatus normalises a raw fraud_status value. An empty value means
// the gateway did not screen the payment.
func ParseFraudStatus(raw string) FraudStatus {
	switch st := FraudStatus(strings.ToLower(strings.TrimSpace(raw))); st {
	case FraudStatusNone, FraudStatusAccept, FraudStatusChallenge, FraudStatusDeny:
		return st
	default:
		return FraudStatusUnrecognized
	}
}

// PaymentTypeCreditCard is the only payment_type that participates in
// fraud-challenge branching.
const PaymentTypeCreditCard = "credit_card"
