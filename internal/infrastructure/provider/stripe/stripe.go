package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/provider"
)

// Transaction statuses that Stripe events are mapped onto
const (
	statusSettlement = "settlement"
	statusPending    = "pending"
	statusDeny       = "deny"
	statusCancel     = "cancel"
)

const signatureHeader = "Stripe-Signature"

// Currencies Stripe takes in whole units
var zeroDecimal = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true, "KMF": true,
	"KRW": true, "MGA": true, "PYG": true, "RWF": true, "UGX": true, "VND": true,
	"VUV": true, "XAF": true, "XOF": true, "XPF": true,
}

type paymentIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeProvider implements the PaymentProvider interface for Stripe
// PaymentIntents. The client secret is the charge token.
type StripeProvider struct {
	intents       paymentIntentAPI
	webhookSecret string
	logger        *zap.Logger
}

// NewStripeProvider creates a new Stripe provider
func NewStripeProvider(secretKey, webhookSecret string, logger *zap.Logger) *StripeProvider {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &StripeProvider{
		intents:       sc.PaymentIntents,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// GetProviderName returns the provider name
func (s *StripeProvider) GetProviderName() string {
	return string(provider.ProviderTypeStripe)
}

// IssueChargeToken creates a PaymentIntent keyed by the order id
func (s *StripeProvider) IssueChargeToken(ctx context.Context, req *provider.ChargeRequest) (*provider.ChargeToken, error) {
	currency := strings.ToUpper(req.Currency)
	amount := req.Amount
	if !zeroDecimal[currency] {
		amount *= 100
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Customer.Email != "" {
		params.ReceiptEmail = stripe.String(req.Customer.Email)
	}
	params.AddMetadata("order_id", req.OrderID)
	params.SetIdempotencyKey(req.OrderID)
	params.Context = ctx

	intent, err := s.intents.New(params)
	if err != nil {
		s.logger.Error("StripeProvider: PaymentIntent creation failed",
			zap.String("order_id", req.OrderID),
			zap.Error(err))

		code := provider.CodeAPIError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			code = provider.CodeTimeout
		}
		return nil, &provider.ProviderError{
			Code:    code,
			Message: "Stripe API request failed",
			Details: err.Error(),
		}
	}

	return &provider.ChargeToken{
		OrderID: req.OrderID,
		Token:   intent.ClientSecret,
	}, nil
}

// VerifyNotification verifies a Stripe webhook and maps payment_intent events
// onto the gateway status vocabulary.
func (s *StripeProvider) VerifyNotification(ctx context.Context, payload []byte, header http.Header) (*provider.Notification, error) {
	event, err := webhook.ConstructEventWithOptions(payload, header.Get(signatureHeader), s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		s.logger.Warn("StripeProvider: Webhook signature verification failed", zap.Error(err))
		return nil, &provider.ProviderError{
			Code:    provider.CodeInvalidSignature,
			Message: "Invalid webhook signature",
			Details: err.Error(),
		}
	}

	if !strings.HasPrefix(string(event.Type), "payment_intent.") {
		return nil, &provider.ProviderError{
			Code:    provider.CodeNotSupported,
			Message: "Unsupported webhook event",
			Details: string(event.Type),
		}
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.CodeParseError,
			Message: "Failed to parse payment intent",
			Details: err.Error(),
		}
	}

	orderID := intent.Metadata["order_id"]
	if orderID == "" {
		return nil, &provider.ProviderError{
			Code:    provider.CodeInvalidRequest,
			Message: "Payment intent has no order_id metadata",
			Details: intent.ID,
		}
	}

	paymentType := ""
	if len(intent.PaymentMethodTypes) > 0 {
		paymentType = intent.PaymentMethodTypes[0]
	}

	amount := intent.Amount
	if !zeroDecimal[strings.ToUpper(string(intent.Currency))] {
		amount /= 100
	}

	created := time.Unix(event.Created, 0)
	raw := map[string]interface{}{
		"event_id":   event.ID,
		"event_type": string(event.Type),
	}
	for k, v := range event.Data.Object {
		raw[k] = v
	}

	return &provider.Notification{
		OrderID:           orderID,
		TransactionStatus: mapEventType(string(event.Type)),
		PaymentType:       paymentType,
		Amount:            &amount,
		EventTime:         &created,
		Raw:               raw,
	}, nil
}

// CheckStatus is not offered; Stripe delivers every change as a webhook.
func (s *StripeProvider) CheckStatus(ctx context.Context, orderID string) (*provider.Notification, error) {
	return nil, &provider.ProviderError{
		Code:    provider.CodeNotSupported,
		Message: "Stripe status polling is not supported",
	}
}

func mapEventType(eventType string) string {
	switch eventType {
	case "payment_intent.succeeded":
		return statusSettlement
	case "payment_intent.processing", "payment_intent.requires_action", "payment_intent.created":
		return statusPending
	case "payment_intent.payment_failed":
		return statusDeny
	case "payment_intent.canceled":
		return statusCancel
	default:
		return strings.TrimPrefix(eventType, "payment_intent.")
	}
}
