package usecase

import (
	"strings"
	"time"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
)

// ResolveStatus maps a gateway report onto a ledger status. The second return
// value is true when the transaction_status was not recognised.
//
//	capture + credit_card + fraud challenge -> challenge
//	capture (otherwise), settlement         -> completed
//	pending                                 -> pending
//	deny                                    -> failed
//	expire                                  -> expired
//	cancel                                  -> cancelled
//	anything else                           -> unknown
func ResolveStatus(transactionStatus, fraudStatus, paymentType string) (model.TransactionStatus, bool) {
	switch model.ParseGatewayStatus(transactionStatus) {
	case model.GatewayStatusCapture:
		if strings.EqualFold(strings.TrimSpace(paymentType), model.PaymentTypeCreditCard) &&
			model.ParseFraudStatus(fraudStatus) == model.FraudStatusChallenge {
			return model.TransactionStatusChallenge, false
		}
		return model.TransactionStatusCompleted, false
	case model.GatewayStatusSettlement:
		return model.TransactionStatusCompleted, false
	case model.GatewayStatusPending:
		return model.TransactionStatusPending, false
	case model.GatewayStatusDeny:
		return model.TransactionStatusFailed, false
	case model.GatewayStatusExpire:
		return model.TransactionStatusExpired, false
	case model.GatewayStatusCancel:
		return model.TransactionStatusCancelled, false
	default:
		return model.TransactionStatusUnknown, true
	}
}

const (
	noteStaleUntimed     = "stale: terminal status kept, event carries no gateway time"
	noteStaleOlder       = "stale: event is older than the current status"
	noteStaleSameInstant = "stale: event shares the time of the current terminal status"
)

// admitTransition decides whether an event may move an entry from current to
// next. Non-terminal entries always follow the latest event. A terminal entry
// never moves for an untimed event. A timed event moves it when the terminal
// status was written without a gateway time (redirect, gateway failure), or
// when the event is newer. At the same instant only another terminal status
// is admitted.
//
// currentAt and eventAt are both gateway times; local receive times never
// reach this function.
func admitTransition(current model.TransactionStatus, currentAt *time.Time, next model.TransactionStatus, eventAt *time.Time) (bool, string) {
	if next == current || !current.IsTerminal() {
		return true, ""
	}
	if eventAt == nil {
		return false, noteStaleUntimed
	}
	if currentAt == nil {
		return true, ""
	}
	if eventAt.Before(*currentAt) {
		return false, noteStaleOlder
	}
	if eventAt.Equal(*currentAt) && !next.IsTerminal() {
		return false, noteStaleSameInstant
	}
	return true, ""
}
