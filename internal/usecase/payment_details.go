package usecase

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
)

// GatewayEvent is one status report about an order, from any channel.
type GatewayEvent struct {
	Channel           model.EventChannel
	OrderID           string
	TransactionStatus string
	FraudStatus       string
	PaymentType       string
	// Amount is the gross amount reported by the gateway, if any
	Amount *int64
	// EventTime is the gateway's own timestamp, nil when the channel has none
	EventTime *time.Time
	Payload   map[string]interface{}
}

// mergeEventDetails folds an event into the latest merged view kept on the
// ledger row. Events that were not applied are kept under last_ignored_event
// so the top-level fields always describe the stored status.
func mergeEventDetails(current model.JSONB, ev GatewayEvent, status model.TransactionStatus, applied bool, sequence int, at time.Time) model.JSONB {
	eventFields := map[string]interface{}{
		"transaction_status": ev.TransactionStatus,
		"fraud_status":       ev.FraudStatus,
		"payment_type":       ev.PaymentType,
		"channel":            string(ev.Channel),
		"updated_at":         at.UTC().Format(time.RFC3339Nano),
		"raw_response":       ev.Payload,
	}

	if !applied {
		return current.Merge(map[string]interface{}{
			"last_ignored_event": eventFields,
			"event_count":        sequence,
		})
	}

	patch := map[string]interface{}{
		"status":      string(status),
		"event_count": sequence,
	}
	for k, v := range eventFields {
		patch[k] = v
	}
	return current.Merge(patch)
}

// mergeFailureDetails records a gateway call failure on the ledger row.
func mergeFailureDetails(current model.JSONB, message, stackTrace string, sequence int, at time.Time) model.JSONB {
	return current.Merge(map[string]interface{}{
		"status":      string(model.TransactionStatusFailed),
		"channel":     string(model.ChannelCheckout),
		"error":       message,
		"stack_trace": stackTrace,
		"updated_at":  at.UTC().Format(time.RFC3339Nano),
		"event_count": sequence,
	})
}

func encodePayload(payload map[string]interface{}) datatypes.JSON {
	if payload == nil {
		return datatypes.JSON("{}")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(data)
}
