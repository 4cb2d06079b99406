package errors

import "errors"

var (
	// ErrLedgerNotFound is returned when no ledger row matches an order id
	ErrLedgerNotFound = errors.New("ledger entry not found")
	// ErrForeignLedger is returned when an order id carries another ledger kind's prefix
	ErrForeignLedger = errors.New("order id belongs to a different ledger")
	// ErrEnrollmentExists is returned by stores when the (user, course) pair is already enrolled
	ErrEnrollmentExists = errors.New("enrollment already exists")
)
