package midtrans

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"go.uber.org/zap"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/provider"
)

const (
	defaultSandboxSnapURL    = "https://app.sandbox.midtrans.com/snap/v1/transactions"
	defaultProductionSnapURL = "https://app.midtrans.com/snap/v1/transactions"
	defaultTimeout           = 5 * time.Second
)

// Config is everything the Midtrans facade needs. Nothing is read from
// package-level SDK state.
type Config struct {
	ServerKey    string
	ClientKey    string
	IsProduction bool
	// SnapURL is the transactions endpoint used by the raw HTTP fallback
	SnapURL string
	Timeout time.Duration
	// VerifyWithStatusAPI re-reads the status from the gateway after a
	// notification signature check
	VerifyWithStatusAPI bool
}

type snapAPI interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

type statusAPI interface {
	CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
}

// MidtransProvider implements provider.PaymentProvider on Midtrans Snap
type MidtransProvider struct {
	cfg        Config
	snap       snapAPI
	status     statusAPI
	httpClient *http.Client
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewMidtransProvider creates a Midtrans provider with its own SDK clients
func NewMidtransProvider(cfg Config, logger *zap.Logger) *MidtransProvider {
	env := midtrans.Sandbox
	if cfg.IsProduction {
		env = midtrans.Production
	}

	var snapClient snap.Client
	snapClient.New(cfg.ServerKey, env)

	var coreClient coreapi.Client
	coreClient.New(cfg.ServerKey, env)

	return newProvider(cfg, &snapClient, &coreClient, logger)
}

func newProvider(cfg Config, snapClient snapAPI, statusClient statusAPI, logger *zap.Logger) *MidtransProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.SnapURL == "" {
		cfg.SnapURL = defaultSandboxSnapURL
		if cfg.IsProduction {
			cfg.SnapURL = defaultProductionSnapURL
		}
	}
	return &MidtransProvider{
		cfg:        cfg,
		snap:       snapClient,
		status:     statusClient,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		validate:   validator.New(),
		logger:     logger,
	}
}

// GetProviderName returns the provider name
func (m *MidtransProvider) GetProviderName() string {
	return string(provider.ProviderTypeMidtrans)
}

// IssueChargeToken requests a Snap token. When the SDK fails to decode the
// gateway's reply the same request is sent once more over plain HTTP; any
// other SDK failure is returned as is.
func (m *MidtransProvider) IssueChargeToken(ctx context.Context, req *provider.ChargeRequest) (*provider.ChargeToken, error) {
	if err := m.validate.Struct(req); err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.CodeInvalidRequest,
			Message: "Invalid charge request",
			Details: err.Error(),
		}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	snapReq := buildSnapRequest(req)

	resp, err := m.createWithSDK(ctx, snapReq)
	if err == nil {
		return &provider.ChargeToken{
			OrderID:     req.OrderID,
			Token:       resp.Token,
			RedirectURL: resp.RedirectURL,
		}, nil
	}

	if !provider.HasCode(err, provider.CodeMalformedResponse) {
		return nil, err
	}

	m.logger.Warn("MidtransProvider: SDK could not parse Snap response, retrying over HTTP",
		zap.String("order_id", req.OrderID),
		zap.Error(err))

	token, fallbackErr := m.createWithHTTP(ctx, snapReq)
	if fallbackErr != nil {
		m.logger.Error("MidtransProvider: HTTP fallback failed",
			zap.String("order_id", req.OrderID),
			zap.Error(fallbackErr))
		return nil, fallbackErr
	}

	token.OrderID = req.OrderID
	token.ViaFallback = true
	return token, nil
}

type snapResult struct {
	resp *snap.Response
	err  *midtrans.Error
}

// createWithSDK bounds the SDK call by ctx; the SDK itself takes no context.
func (m *MidtransProvider) createWithSDK(ctx context.Context, req *snap.Request) (*snap.Response, error) {
	done := make(chan snapResult, 1)
	go func() {
		resp, err := m.snap.CreateTransaction(req)
		done <- snapResult{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, &provider.ProviderError{
			Code:    provider.CodeTimeout,
			Message: "Midtrans Snap request timed out",
			Details: ctx.Err().Error(),
		}
	case res := <-done:
		if res.err != nil {
			return nil, classifySDKError(res.err)
		}
		if res.resp == nil || res.resp.Token == "" {
			details := ""
			if res.resp != nil {
				details = strings.Join(res.resp.ErrorMessages, "; ")
			}
			return nil, &provider.ProviderError{
				Code:    provider.CodeAPIError,
				Message: "Midtrans Snap returned no token",
				Details: details,
			}
		}
		return res.resp, nil
	}
}

// classifySDKError turns a *midtrans.Error into a ProviderError. A JSON decode
// failure inside the SDK becomes CodeMalformedResponse.
func classifySDKError(mErr *midtrans.Error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	malformed := mErr.RawError != nil && (errors.As(mErr.RawError, &syntaxErr) || errors.As(mErr.RawError, &typeErr))
	if !malformed {
		msg := strings.ToLower(mErr.Message)
		malformed = strings.Contains(msg, "invalid body response") || strings.Contains(msg, "parse error")
	}

	if malformed {
		return &provider.ProviderError{
			Code:    provider.CodeMalformedResponse,
			Message: "Midtrans response could not be parsed",
			Details: mErr.Message,
		}
	}
	if mErr.StatusCode == http.StatusNotFound {
		return &provider.ProviderError{
			Code:    provider.CodeNotFound,
			Message: "Midtrans has no record of this order",
			Details: mErr.Message,
		}
	}
	return &provider.ProviderError{
		Code:    provider.CodeAPIError,
		Message: "Midtrans API request failed",
		Details: mErr.Message,
	}
}

func buildSnapRequest(req *provider.ChargeRequest) *snap.Request {
	items := make([]midtrans.ItemDetails, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, midtrans.ItemDetails{
			ID:    item.ID,
			Name:  item.Name,
			Price: item.Price,
			Qty:   item.Quantity,
		})
	}

	return &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.Amount,
		},
		Items: &items,
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.Customer.FirstName,
			LName: req.Customer.LastName,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
	}
}
