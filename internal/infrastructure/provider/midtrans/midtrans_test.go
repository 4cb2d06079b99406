package midtrans

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/provider"
)

const testServerKey = "SB-Mid-server-test"

type mockSnap struct {
	mock.Mock
}

func (m *mockSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	args := m.Called(req)
	var (
		resp *snap.Response
		err  *midtrans.Error
	)
	if v := args.Get(0); v != nil {
		resp = v.(*snap.Response)
	}
	if v := args.Get(1); v != nil {
		err = v.(*midtrans.Error)
	}
	return resp, err
}

type mockStatus struct {
	mock.Mock
}

func (m *mockStatus) CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error) {
	args := m.Called(orderID)
	var (
		resp *coreapi.TransactionStatusResponse
		err  *midtrans.Error
	)
	if v := args.Get(0); v != nil {
		resp = v.(*coreapi.TransactionStatusResponse)
	}
	if v := args.Get(1); v != nil {
		err = v.(*midtrans.Error)
	}
	return resp, err
}

func chargeRequest() *provider.ChargeRequest {
	return &provider.ChargeRequest{
		OrderID:  "ORDER-20250301-100000-ABCDEF12",
		Amount:   150000,
		Currency: "IDR",
		Items: []provider.ChargeItem{
			{ID: "course-1", Name: "Go for Backend Engineers", Price: 150000, Quantity: 1},
		},
		Customer: provider.Customer{FirstName: "Budi", LastName: "Santoso", Email: "budi@example.com"},
	}
}

func TestIssueChargeToken_SDKSuccess(t *testing.T) {
	snapClient := new(mockSnap)
	snapClient.On("CreateTransaction", mock.MatchedBy(func(req *snap.Request) bool {
		return req.TransactionDetails.OrderID == "ORDER-20250301-100000-ABCDEF12" &&
			req.TransactionDetails.GrossAmt == 150000 &&
			len(*req.Items) == 1
	})).Return(&snap.Response{Token: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token"}, nil).Once()

	p := newProvider(Config{ServerKey: testServerKey}, snapClient, new(mockStatus), zap.NewNop())
	token, err := p.IssueChargeToken(context.Background(), chargeRequest())
	require.NoError(t, err)

	assert.Equal(t, "snap-token", token.Token)
	assert.False(t, token.ViaFallback)
	snapClient.AssertExpectations(t)
}

func TestIssueChargeToken_FallbackOnMalformedResponse(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"fallback-token","redirect_url":"https://example.test/pay"}`))
	}))
	defer server.Close()

	snapClient := new(mockSnap)
	snapClient.On("CreateTransaction", mock.Anything).Return(nil, &midtrans.Error{
		Message:  "Invalid body response, parse error during API request to Midtrans",
		RawError: &json.SyntaxError{Offset: 1},
	}).Once()

	p := newProvider(Config{ServerKey: testServerKey, SnapURL: server.URL}, snapClient, new(mockStatus), zap.NewNop())
	token, err := p.IssueChargeToken(context.Background(), chargeRequest())
	require.NoError(t, err)

	assert.Equal(t, "fallback-token", token.Token)
	assert.True(t, token.ViaFallback)
	assert.Equal(t, "ORDER-20250301-100000-ABCDEF12", token.OrderID)
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte(testServerKey+":")), gotAuth)

	details, ok := gotBody["transaction_details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ORDER-20250301-100000-ABCDEF12", details["order_id"])
}

func TestIssueChargeToken_NoFallbackOnAPIError(t *testing.T) {
	snapClient := new(mockSnap)
	snapClient.On("CreateTransaction", mock.Anything).Return(nil, &midtrans.Error{
		Message:    "Access denied due to unauthorized transaction",
		StatusCode: http.StatusUnauthorized,
	}).Once()

	p := newProvider(Config{ServerKey: testServerKey, SnapURL: "http://127.0.0.1:1"}, snapClient, new(mockStatus), zap.NewNop())
	_, err := p.IssueChargeToken(context.Background(), chargeRequest())
	require.Error(t, err)
	assert.True(t, provider.HasCode(err, provider.CodeAPIError))
}

func TestIssueChargeToken_FallbackFailure(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   string
	}{
		{"gateway error", http.StatusBadRequest, `{"error_messages":["transaction_details.gross_amount is not equal to the sum of item_details"]}`, provider.CodeAPIError},
		{"unparseable body", http.StatusOK, `<html>oops</html>`, provider.CodeParseError},
		{"empty token", http.StatusCreated, `{"token":""}`, provider.CodeAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			snapClient := new(mockSnap)
			snapClient.On("CreateTransaction", mock.Anything).Return(nil, &midtrans.Error{Message: "invalid body response"}).Once()

			p := newProvider(Config{ServerKey: testServerKey, SnapURL: server.URL}, snapClient, new(mockStatus), zap.NewNop())
			_, err := p.IssueChargeToken(context.Background(), chargeRequest())
			require.Error(t, err)
			assert.True(t, provider.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestIssueChargeToken_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	snapClient := new(mockSnap)
	snapClient.On("CreateTransaction", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(&snap.Response{Token: "too-late"}, nil).Once()

	p := newProvider(Config{ServerKey: testServerKey, Timeout: 20 * time.Millisecond}, snapClient, new(mockStatus), zap.NewNop())
	_, err := p.IssueChargeToken(context.Background(), chargeRequest())
	require.Error(t, err)
	assert.True(t, provider.HasCode(err, provider.CodeTimeout))
}

func TestIssueChargeToken_InvalidRequest(t *testing.T) {
	p := newProvider(Config{ServerKey: testServerKey}, new(mockSnap), new(mockStatus), zap.NewNop())

	req := chargeRequest()
	req.Currency = ""
	_, err := p.IssueChargeToken(context.Background(), req)
	assert.True(t, provider.HasCode(err, provider.CodeInvalidRequest))
}

func TestClassifySDKError(t *testing.T) {
	tests := []struct {
		name string
		err  *midtrans.Error
		code string
	}{
		{"json syntax", &midtrans.Error{Message: "x", RawError: &json.SyntaxError{}}, provider.CodeMalformedResponse},
		{"json type", &midtrans.Error{Message: "x", RawError: &json.UnmarshalTypeError{Value: "number"}}, provider.CodeMalformedResponse},
		{"parse message", &midtrans.Error{Message: "Invalid body response, parse error"}, provider.CodeMalformedResponse},
		{"not found", &midtrans.Error{Message: "Transaction doesn't exist.", StatusCode: http.StatusNotFound}, provider.CodeNotFound},
		{"server error", &midtrans.Error{Message: "Internal Server Error", StatusCode: http.StatusInternalServerError}, provider.CodeAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, provider.HasCode(classifySDKError(tt.err), tt.code))
		})
	}
}

func TestNewProviderDefaults(t *testing.T) {
	sandbox := newProvider(Config{}, nil, nil, zap.NewNop())
	assert.Equal(t, defaultSandboxSnapURL, sandbox.cfg.SnapURL)
	assert.Equal(t, defaultTimeout, sandbox.cfg.Timeout)

	production := newProvider(Config{IsProduction: true}, nil, nil, zap.NewNop())
	assert.Equal(t, defaultProductionSnapURL, production.cfg.SnapURL)
	assert.Equal(t, "midtrans", production.GetProviderName())
}
