package usecase

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/adapter/repository/memory"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/provider"
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

type publishedMessage struct {
	channel string
	message interface{}
}

// recordingPublisher keeps every published message
type recordingPublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, publishedMessage{channel: channel, message: message})
	return nil
}

func (p *recordingPublisher) count(channel string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, m := range p.messages {
		if m.channel == channel {
			n++
		}
	}
	return n
}

const (
	testInstructorID = int64(100)
	testBuyerID      = int64(7)
	testCourseID     = int64(1)
	testCoursePrice  = int64(150000)
)

type fixture struct {
	store     *memory.Store
	gateway   *MockGateway
	publisher *recordingPublisher
	deriver   *EnrollmentDeriver
	purchases *ReconciliationEngine
	donations *ReconciliationEngine
	checkout  *CheckoutService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()

	store := memory.NewStore()
	require.NoError(t, store.Courses().Upsert(context.Background(), &model.Course{
		ID:           testCourseID,
		InstructorID: testInstructorID,
		Title:        "Go for Backend Engineers",
		Price:        testCoursePrice,
		IsPublished:  true,
	}))

	f := &fixture{
		store:     store,
		gateway:   new(MockGateway),
		publisher: &recordingPublisher{},
	}
	f.deriver = NewEnrollmentDeriver(store, logger)
	f.purchases = NewReconciliationEngine(PurchaseLedger(), store, f.deriver, f.publisher, logger)
	f.donations = NewReconciliationEngine(DonationLedger(), store, f.deriver, f.publisher, logger)
	f.checkout = NewCheckoutService(store, store.Courses(), store.PromoCodes(), f.gateway,
		f.purchases, f.donations, f.deriver, f.publisher,
		CheckoutConfig{Currency: "IDR", GatewayTimeout: time.Second, ExposeErrorDetail: true},
		logger)
	return f
}

func (f *fixture) buyer() Buyer {
	return Buyer{ID: testBuyerID, Email: "budi@example.com", Name: "Budi Santoso"}
}

// pendingPurchase creates a pending purchase row through checkout
func (f *fixture) pendingPurchase(t *testing.T) string {
	t.Helper()
	f.gateway.On("IssueChargeToken", mock.Anything, mock.MatchedBy(func(req *provider.ChargeRequest) bool {
		return req.Currency == "IDR"
	})).Return(&provider.ChargeToken{Token: "snap-token"}, nil).Once()

	result, err := f.checkout.Checkout(context.Background(), f.buyer(), CheckoutRequest{CourseID: testCourseID})
	require.NoError(t, err)
	return result.OrderID
}

func (f *fixture) transaction(t *testing.T, orderID string) *model.Transaction {
	t.Helper()
	tx, err := f.store.Repositories().Transactions().GetByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	require.NotNil(t, tx)
	return tx
}

func (f *fixture) history(t *testing.T, ledger string, id int64) []*model.PaymentEvent {
	t.Helper()
	events, err := f.store.Repositories().PaymentEvents().ListByLedger(context.Background(), ledger, id)
	require.NoError(t, err)
	return events
}

func (f *fixture) enrollment(t *testing.T) *model.Enrollment {
	t.Helper()
	e, err := f.store.Repositories().Enrollments().GetByUserAndCourse(context.Background(), testBuyerID, testCourseID)
	require.NoError(t, err)
	return e
}

func notificationEvent(orderID, status string, at *time.Time) GatewayEvent {
	return GatewayEvent{
		Channel:           model.ChannelNotification,
		OrderID:           orderID,
		TransactionStatus: status,
		PaymentType:       "bank_transfer",
		EventTime:         at,
		Payload:           map[string]interface{}{"order_id": orderID, "transaction_status": status},
	}
}

func redirectEvent(orderID, status string) GatewayEvent {
	return GatewayEvent{
		Channel:           model.ChannelRedirect,
		OrderID:           orderID,
		TransactionStatus: status,
	}
}

func timeAt(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}
