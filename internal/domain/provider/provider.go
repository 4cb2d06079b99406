package provider

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// PaymentProvider defines the interface for payment gateways (Midtrans, Stripe)
type PaymentProvider interface {
	// IssueChargeToken asks the gateway for a client-side charge token
	IssueChargeToken(ctx context.Context, req *ChargeRequest) (*ChargeToken, error)

	// VerifyNotification authenticates a server-to-server notification and
	// returns its normalised fields
	VerifyNotification(ctx context.Context, payload []byte, header http.Header) (*Notification, error)

	// CheckStatus fetches the gateway's current view of an order
	CheckStatus(ctx context.Context, orderID string) (*Notification, error)

	// GetProviderName returns the provider name
	GetProviderName() string
}

// ChargeRequest is a provider-agnostic charge token request
type ChargeRequest struct {
	OrderID  string       `json:"order_id" validate:"required,max=64"`
	Amount   int64        `json:"amount" validate:"gte=0"`
	Currency string       `json:"currency" validate:"required,len=3"`
	Items    []ChargeItem `json:"items" validate:"dive"`
	Customer Customer     `json:"customer"`
}

// ChargeItem is a line item shown on the gateway's payment page
type ChargeItem struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required,max=50"`
	Price    int64  `json:"price" validate:"gte=0"`
	Quantity int32  `json:"quantity" validate:"gte=1"`
}

// Customer holds the buyer details forwarded to the gateway
type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone,omitempty"`
}

// ChargeToken is what the browser needs to open the gateway's payment page
type ChargeToken struct {
	OrderID     string `json:"order_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url,omitempty"`
	// ViaFallback is set when the token came from the raw HTTP fallback path
	ViaFallback bool `json:"-"`
}

// Notification is a verified gateway report about one order
type Notification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status,omitempty"`
	PaymentType       string `json:"payment_type,omitempty"`
	StatusCode        string `json:"status_code,omitempty"`
	GrossAmount       string `json:"gross_amount,omitempty"`
	// Amount is GrossAmount in minor units, nil when absent or unparseable
	Amount    *int64                 `json:"amount,omitempty"`
	EventTime *time.Time             `json:"event_time,omitempty"`
	Raw       map[string]interface{} `json:"raw"`
}

// ProviderType represents the type of payment provider
type ProviderType string

const (
	ProviderTypeMidtrans ProviderType = "midtrans"
	ProviderTypeStripe   ProviderType = "stripe"
)

// Error codes carried by ProviderError
const (
	CodeMalformedResponse = "MALFORMED_RESPONSE"
	CodeAPIError          = "API_ERROR"
	CodeTimeout           = "TIMEOUT"
	CodeInvalidSignature  = "INVALID_SIGNATURE"
	CodeNotFound          = "NOT_FOUND"
	CodeParseError        = "PARSE_ERROR"
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeNotSupported      = "NOT_SUPPORTED"
)

// Error types for provider operations
type ProviderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// HasCode reports whether err is a ProviderError with the given code
func HasCode(err error, code string) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == code
}
