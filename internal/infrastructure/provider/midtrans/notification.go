package midtrans

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/provider"
)

const midtransTimeLayout = "2006-01-02 15:04:05"

// Midtrans reports local times in Jakarta
var jakarta = time.FixedZone("WIB", 7*60*60)

type notificationBody struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionTime   string `json:"transaction_time"`
	SettlementTime    string `json:"settlement_time"`
}

// Signature returns SHA512(order_id + status_code + gross_amount + server_key) in hex
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifyNotification checks the signature_key of a Midtrans HTTP notification.
func (m *MidtransProvider) VerifyNotification(ctx context.Context, payload []byte, header http.Header) (*provider.Notification, error) {
	var body notificationBody
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.CodeParseError,
			Message: "Failed to parse notification",
			Details: err.Error(),
		}
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.CodeParseError,
			Message: "Failed to parse notification",
			Details: err.Error(),
		}
	}

	if body.OrderID == "" || body.SignatureKey == "" {
		return nil, &provider.ProviderError{
			Code:    provider.CodeInvalidRequest,
			Message: "Notification is missing order_id or signature_key",
		}
	}

	want := Signature(body.OrderID, body.StatusCode, body.GrossAmount, m.cfg.ServerKey)
	got := strings.ToLower(body.SignatureKey)
	if subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		m.logger.Warn("MidtransProvider: Notification signature mismatch",
			zap.String("order_id", body.OrderID))
		return nil, &provider.ProviderError{
			Code:    provider.CodeInvalidSignature,
			Message: "Invalid notification signature",
		}
	}

	n := &provider.Notification{
		OrderID:           body.OrderID,
		TransactionStatus: body.TransactionStatus,
		FraudStatus:       body.FraudStatus,
		PaymentType:       body.PaymentType,
		StatusCode:        body.StatusCode,
		GrossAmount:       body.GrossAmount,
		Amount:            parseAmount(body.GrossAmount),
		EventTime:         eventTime(body.SettlementTime, body.TransactionTime),
		Raw:               raw,
	}

	if !m.cfg.VerifyWithStatusAPI {
		return n, nil
	}

	// The status API is authoritative; the notification is kept as raw payload
	current, err := m.CheckStatus(ctx, body.OrderID)
	if err != nil {
		return nil, err
	}
	n.TransactionStatus = current.TransactionStatus
	n.FraudStatus = current.FraudStatus
	if current.PaymentType != "" {
		n.PaymentType = current.PaymentType
	}
	if current.EventTime != nil {
		n.EventTime = current.EventTime
	}
	return n, nil
}

type statusResult struct {
	resp *coreapi.TransactionStatusResponse
	err  *midtrans.Error
}

// CheckStatus reads the order's current status from the Midtrans status API
// GET /v2/{order_id}/status
func (m *MidtransProvider) CheckStatus(ctx context.Context, orderID string) (*provider.Notification, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	done := make(chan statusResult, 1)
	go func() {
		resp, err := m.status.CheckTransaction(orderID)
		done <- statusResult{resp: resp, err: err}
	}()

	var res statusResult
	select {
	case <-ctx.Done():
		return nil, &provider.ProviderError{
			Code:    provider.CodeTimeout,
			Message: "Midtrans status request timed out",
			Details: ctx.Err().Error(),
		}
	case res = <-done:
	}

	if res.err != nil {
		return nil, classifySDKError(res.err)
	}
	if res.resp == nil || res.resp.StatusCode == "404" {
		return nil, &provider.ProviderError{
			Code:    provider.CodeNotFound,
			Message: "Midtrans has no record of this order",
			Details: orderID,
		}
	}

	resp := res.resp
	return &provider.Notification{
		OrderID:           resp.OrderID,
		TransactionStatus: resp.TransactionStatus,
		FraudStatus:       resp.FraudStatus,
		PaymentType:       resp.PaymentType,
		StatusCode:        resp.StatusCode,
		GrossAmount:       resp.GrossAmount,
		Amount:            parseAmount(resp.GrossAmount),
		EventTime:         eventTime(resp.SettlementTime, resp.TransactionTime),
		Raw: map[string]interface{}{
			"order_id":           resp.OrderID,
			"transaction_id":     resp.TransactionID,
			"transaction_status": resp.TransactionStatus,
			"fraud_status":       resp.FraudStatus,
			"payment_type":       resp.PaymentType,
			"status_code":        resp.StatusCode,
			"status_message":     resp.StatusMessage,
			"gross_amount":       resp.GrossAmount,
			"transaction_time":   resp.TransactionTime,
			"settlement_time":    resp.SettlementTime,
		},
	}, nil
}

// GrossAmountMinor parses Midtrans' "150000.00" into whole rupiah.
func GrossAmountMinor(grossAmount string) (int64, error) {
	d, err := decimal.NewFromString(grossAmount)
	if err != nil {
		return 0, fmt.Errorf("invalid gross_amount %q: %w", grossAmount, err)
	}
	return d.IntPart(), nil
}

func parseAmount(grossAmount string) *int64 {
	if grossAmount == "" {
		return nil
	}
	amount, err := GrossAmountMinor(grossAmount)
	if err != nil {
		return nil
	}
	return &amount
}

// eventTime prefers settlement_time over transaction_time.
func eventTime(settlement, transaction string) *time.Time {
	for _, s := range []string{settlement, transaction} {
		if s == "" {
			continue
		}
		if t, err := time.ParseInLocation(midtransTimeLayout, s, jakarta); err == nil {
			return &t
		}
	}
	return nil
}
