package usecase

import (
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Transaction id prefixes, one per way a ledger row can be created.
const (
	TransactionIDPurchase = "PURCHASE-"
	TransactionIDFree     = "FREE-"
	TransactionIDDonation = "DONATION-"
)

const transactionIDAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// NewOrderID returns prefix + YYYYMMDD-HHMMSS + "-" + 8 hex characters.
func NewOrderID(prefix string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return prefix + now.Format("20060102-150405") + "-" + suffix
}

// NewTransactionID returns a human-auditable id such as PURCHASE-7KQ2M9XD4ARB.
func NewTransactionID(prefix string) (string, error) {
	id, err := gonanoid.Generate(transactionIDAlphabet, 12)
	if err != nil {
		return "", err
	}
	return prefix + id, nil
}
