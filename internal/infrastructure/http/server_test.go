package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/adapter/repository/memory"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/config"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/provider"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/usecase"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/pkg/messaging"
)

const (
	testJWTSecret = "test-jwt-secret"
	testClientURL = "http://coursepedia.test"
	testBuyerID   = int64(7)
)

// MockGateway is a mock implementation of provider.PaymentProvider
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) IssueChargeToken(ctx context.Context, req *provider.ChargeRequest) (*provider.ChargeToken, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.ChargeToken), args.Error(1)
}

func (m *MockGateway) VerifyNotification(ctx context.Context, payload []byte, header http.Header) (*provider.Notification, error) {
	args := m.Called(ctx, payload, header)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Notification), args.Error(1)
}

func (m *MockGateway) CheckStatus(ctx context.Context, orderID string) (*provider.Notification, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Notification), args.Error(1)
}

func (m *MockGateway) GetProviderName() string {
	return "mock"
}

type testServer struct {
	store   *memory.Store
	gateway *MockGateway
	handler http.Handler
}

func newTestServer(t *testing.T, redirectWrites bool) *testServer {
	t.Helper()
	logger := zap.NewNop()
	ctx := context.Background()

	store := memory.NewStore()
	require.NoError(t, store.Courses().Upsert(ctx, &model.Course{
		ID: 1, InstructorID: 100, Title: "Go for Backend Engineers", Price: 150000, IsPublished: true,
	}))
	require.NoError(t, store.Courses().Upsert(ctx, &model.Course{
		ID: 2, InstructorID: 100, Title: "Intro to Git", Price: 0, IsPublished: true,
	}))

	gateway := new(MockGateway)
	publisher := messaging.NoopPublisher{}
	deriver := usecase.NewEnrollmentDeriver(store, logger)
	purchases := usecase.NewReconciliationEngine(usecase.PurchaseLedger(), store, deriver, publisher, logger)
	donations := usecase.NewReconciliationEngine(usecase.DonationLedger(), store, deriver, publisher, logger)
	checkout := usecase.NewCheckoutService(store, store.Courses(), store.PromoCodes(), gateway,
		purchases, donations, deriver, publisher,
		usecase.CheckoutConfig{Currency: "IDR", GatewayTimeout: time.Second, ExposeErrorDetail: true},
		logger)

	cfg := &config.Config{
		Service:        config.ServiceConfig{Name: "coursepedia", ClientURL: testClientURL, SessionSecret: "test-session-secret"},
		JWT:            config.JWTConfig{Secret: testJWTSecret},
		Reconciliation: config.ReconciliationConfig{RedirectChannelWrites: redirectWrites},
	}
	srv := NewServer(cfg, logger, Services{
		Gateway:   gateway,
		Checkout:  checkout,
		Purchases: purchases,
		Donations: donations,
		Payments:  usecase.NewPaymentUsecase(store, logger),
	})

	return &testServer{store: store, gateway: gateway, handler: srv.Handler()}
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": "budi@example.com",
		"name":  "Budi Santoso",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) checkout(t *testing.T, courseID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/courses/"+courseID+"/checkout", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "7"))
	return s.do(req)
}

// pendingOrder issues a paid checkout and returns its order id
func (s *testServer) pendingOrder(t *testing.T) string {
	t.Helper()
	s.gateway.On("IssueChargeToken", mock.Anything, mock.Anything).
		Return(&provider.ChargeToken{Token: "snap-token", RedirectURL: "https://snap.test/pay"}, nil).Once()

	rec := s.checkout(t, "1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		OrderID string `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.OrderID
}

func (s *testServer) status(t *testing.T, orderID string) model.TransactionStatus {
	t.Helper()
	tx, err := s.store.Repositories().Transactions().GetByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	require.NotNil(t, tx)
	return tx.Status
}

func flashCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "coursepedia_flash" {
			return c
		}
	}
	return nil
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, true)
	rec := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestCheckout_RequiresToken(t *testing.T) {
	s := newTestServer(t, true)
	rec := s.do(httptest.NewRequest(http.MethodPost, "/api/v1/courses/1/checkout", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_AUTH_HEADER")
}

func TestCheckout_PaidCourse(t *testing.T) {
	s := newTestServer(t, true)
	s.gateway.On("IssueChargeToken", mock.Anything, mock.MatchedBy(func(req *provider.ChargeRequest) bool {
		return req.Amount == 150000 && req.Currency == "IDR"
	})).Return(&provider.ChargeToken{Token: "snap-token"}, nil).Once()

	rec := s.checkout(t, "1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "snap-token", body["snap_token"])
	assert.True(t, strings.HasPrefix(body["order_id"].(string), "ORDER-"))
	assert.Equal(t, float64(150000), body["amount"])
	s.gateway.AssertExpectations(t)
}

func TestCheckout_FreeCourseRedirects(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.checkout(t, "2")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, testClientURL+"/courses/2", rec.Header().Get("Location"))
	assert.NotNil(t, flashCookie(rec))
	s.gateway.AssertNotCalled(t, "IssueChargeToken", mock.Anything, mock.Anything)
}

func TestCheckout_Errors(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.checkout(t, "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.checkout(t, "999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	s.gateway.On("IssueChargeToken", mock.Anything, mock.Anything).
		Return(nil, &provider.ProviderError{Code: provider.CodeAPIError, Message: "Midtrans API request failed", Details: "503"}).Once()
	rec = s.checkout(t, "1")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])
	assert.NotEmpty(t, body["error"])
}

func TestFinish_SettlesAndFlashes(t *testing.T) {
	s := newTestServer(t, true)
	orderID := s.pendingOrder(t)

	q := url.Values{"order_id": {orderID}, "transaction_status": {"settlement"}, "payment_type": {"bank_transfer"}}
	rec := s.do(httptest.NewRequest(http.MethodGet, "/payments/finish?"+q.Encode(), nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, testClientURL+"/courses/1", rec.Header().Get("Location"))
	assert.Equal(t, model.TransactionStatusCompleted, s.status(t, orderID))

	cookie := flashCookie(rec)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flash", nil)
	req.AddCookie(cookie)
	rec = s.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var flash map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flash))
	assert.Equal(t, "success", flash["message_type"])
	assert.Contains(t, flash["message"], "enrolled")

	cleared := flashCookie(rec)
	require.NotNil(t, cleared)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/flash", nil)
	req.AddCookie(cleared)
	rec = s.do(req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestFinish_ReadOnlyReportsStoredStatus(t *testing.T) {
	s := newTestServer(t, false)
	orderID := s.pendingOrder(t)

	q := url.Values{"order_id": {orderID}, "transaction_status": {"settlement"}}
	rec := s.do(httptest.NewRequest(http.MethodGet, "/payments/finish?"+q.Encode(), nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, testClientURL+"/transactions", rec.Header().Get("Location"))
	assert.Equal(t, model.TransactionStatusPending, s.status(t, orderID))
}

func TestFinish_UnknownAndForeignOrders(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		name string
		path string
	}{
		{"missing order id", "/payments/finish"},
		{"unknown order", "/payments/finish?order_id=ORDER-20250101-000000-XXXXXXXX&transaction_status=settlement"},
		{"donation order on purchase path", "/payments/finish?order_id=DONATION-20250101-000000-XXXXXXXX"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, testClientURL+"/", rec.Header().Get("Location"))
			assert.NotNil(t, flashCookie(rec))
		})
	}
}

func TestNotification(t *testing.T) {
	s := newTestServer(t, true)
	orderID := s.pendingOrder(t)
	settledAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	amount := int64(150000)

	s.gateway.On("VerifyNotification", mock.Anything, []byte("good"), mock.Anything).Return(&provider.Notification{
		OrderID:           orderID,
		TransactionStatus: "settlement",
		PaymentType:       "bank_transfer",
		Amount:            &amount,
		EventTime:         &settledAt,
		Raw:               map[string]interface{}{"order_id": orderID},
	}, nil)
	s.gateway.On("VerifyNotification", mock.Anything, []byte("forged"), mock.Anything).
		Return(nil, &provider.ProviderError{Code: provider.CodeInvalidSignature, Message: "Invalid notification signature"})
	s.gateway.On("VerifyNotification", mock.Anything, []byte("garbage"), mock.Anything).
		Return(nil, &provider.ProviderError{Code: provider.CodeParseError, Message: "Failed to parse notification"})
	s.gateway.On("VerifyNotification", mock.Anything, []byte("unknown"), mock.Anything).Return(&provider.Notification{
		OrderID: "ORDER-20250101-000000-ZZZZZZZZ", TransactionStatus: "settlement",
	}, nil)
	s.gateway.On("VerifyNotification", mock.Anything, []byte("upstream"), mock.Anything).
		Return(nil, errors.New("status api unavailable"))

	post := func(path, body string) *httptest.ResponseRecorder {
		return s.do(httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	}

	rec := post("/payments/notification", "forged")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = post("/payments/notification", "garbage")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post("/payments/notification", "unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Transaction not found", rec.Body.String())

	rec = post("/payments/notification", "upstream")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = post("/donations/notification", "good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Not a donation", rec.Body.String())
	assert.Equal(t, model.TransactionStatusPending, s.status(t, orderID))

	rec = post("/payments/notification", "good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, model.TransactionStatusCompleted, s.status(t, orderID))

	// redelivery is acknowledged without a second state change
	rec = post("/payments/notification", "good")
	assert.Equal(t, http.StatusOK, rec.Code)

	enrollment, err := s.store.Repositories().Enrollments().GetByUserAndCourse(context.Background(), testBuyerID, 1)
	require.NoError(t, err)
	assert.NotNil(t, enrollment)
}

func TestTransactions(t *testing.T) {
	s := newTestServer(t, true)
	orderID := s.pendingOrder(t)

	get := func(path, user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", bearer(t, user))
		return s.do(req)
	}

	rec := get("/api/v1/transactions?page=1&limit=10", "7")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data []struct {
			OrderID string `json:"order_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, orderID, page.Data[0].OrderID)

	rec = get("/api/v1/transactions/"+orderID, "7")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get("/api/v1/transactions/"+orderID, "8")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Transaction not found")
}
