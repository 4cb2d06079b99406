package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domainErrors "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/errors"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/provider"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/repository"
	apperrors "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/pkg/errors"
)

const (
	msgGatewayUnavailable = "Failed to create payment. Please try again later."
	paymentMethodFree     = "free"
)

// Buyer is the authenticated user starting a checkout
type Buyer struct {
	ID    int64
	Email string
	Name  string
}

// CheckoutRequest starts a course purchase
type CheckoutRequest struct {
	CourseID  int64  `validate:"required,gt=0"`
	PromoCode string `validate:"omitempty,max=64"`
	// FinalAmount is the price the client displayed; it must match the server's
	FinalAmount *int64 `validate:"omitempty,gte=0"`
}

// DonationRequest starts a donation to a course
type DonationRequest struct {
	CourseID int64  `validate:"required,gt=0"`
	Amount   int64  `validate:"gte=0"`
	Message  string `validate:"max=500"`
}

// CheckoutResult is returned by Checkout and Donate
type CheckoutResult struct {
	OrderID       string
	TransactionID string
	Amount        int64
	Discount      int64
	// Free is set when no gateway call was made and the purchase is already completed
	Free        bool
	Enrollment  *model.Enrollment
	SnapToken   string
	RedirectURL string
}

// GatewayFailureError carries what the gateway facade reported. Detail is
// empty in production.
type GatewayFailureError struct {
	OrderID string
	Detail  string
}

func (e *GatewayFailureError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("payment gateway failed for order %s", e.OrderID)
	}
	return fmt.Sprintf("payment gateway failed for order %s: %s", e.OrderID, e.Detail)
}

// CheckoutConfig holds checkout settings
type CheckoutConfig struct {
	Currency       string
	GatewayTimeout time.Duration
	// ExposeErrorDetail puts the gateway error text into responses (non-production only)
	ExposeErrorDetail bool
}

// CheckoutService creates ledger entries and charge tokens
type CheckoutService struct {
	uow       repository.UnitOfWork
	courses   repository.CourseRepository
	promos    repository.PromoCodeRepository
	gateway   provider.PaymentProvider
	purchases *ReconciliationEngine
	donations *ReconciliationEngine
	deriver   *EnrollmentDeriver
	publisher EventPublisher
	validate  *validator.Validate
	cfg       CheckoutConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	uow repository.UnitOfWork,
	courses repository.CourseRepository,
	promos repository.PromoCodeRepository,
	gateway provider.PaymentProvider,
	purchases *ReconciliationEngine,
	donations *ReconciliationEngine,
	deriver *EnrollmentDeriver,
	publisher EventPublisher,
	cfg CheckoutConfig,
	logger *zap.Logger,
) *CheckoutService {
	if cfg.Currency == "" {
		cfg.Currency = "IDR"
	}
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = 5 * time.Second
	}
	return &CheckoutService{
		uow:       uow,
		courses:   courses,
		promos:    promos,
		gateway:   gateway,
		purchases: purchases,
		donations: donations,
		deriver:   deriver,
		publisher: publisher,
		validate:  validator.New(),
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Checkout starts a purchase of a course. User errors are returned before any
// ledger write or gateway call.
func (s *CheckoutService) Checkout(ctx context.Context, buyer Buyer, req CheckoutRequest) (*CheckoutResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "Invalid checkout request", err)
	}

	course, err := s.loadCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if course.InstructorID == buyer.ID {
		return nil, apperrors.NewAppError(apperrors.ErrUnauthorized, domainErrors.ErrSelfEnrollment.Error(), domainErrors.ErrSelfEnrollment)
	}

	existing, err := s.uow.Repositories().Enrollments().GetByUserAndCourse(ctx, buyer.ID, course.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to check enrollment")
	}
	if existing != nil {
		return nil, apperrors.NewAppError(apperrors.ErrConflict, domainErrors.ErrAlreadyEnrolled.Error(), domainErrors.ErrAlreadyEnrolled)
	}

	discount, promoCode, err := s.applyPromo(ctx, req.PromoCode, course.Price)
	if err != nil {
		return nil, err
	}
	amount := course.Price - discount

	if req.FinalAmount != nil && *req.FinalAmount != amount {
		mismatch := &domainErrors.AmountMismatchError{Expected: amount, Provided: *req.FinalAmount}
		return nil, apperrors.NewAppError(apperrors.ErrUnprocessable, "The price of this course has changed. Please review your order.", mismatch)
	}

	if amount == 0 {
		return s.freeCheckout(ctx, buyer, course, discount, promoCode)
	}

	orderID := NewOrderID(PurchaseOrderPrefix, s.now())
	transactionID, err := NewTransactionID(TransactionIDPurchase)
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to generate transaction id")
	}

	tx := &model.Transaction{
		TransactionID:  transactionID,
		OrderID:        orderID,
		UserID:         buyer.ID,
		CourseID:       course.ID,
		Amount:         amount,
		DiscountAmount: discount,
		PromoCode:      promoCode,
		Currency:       s.cfg.Currency,
		Status:         model.TransactionStatusPending,
		Type:           model.TransactionTypePurchase,
	}
	if err := s.createEntries(ctx, tx, nil); err != nil {
		return nil, err
	}

	token, err := s.issueToken(ctx, s.purchases, buyer, orderID, amount, provider.ChargeItem{
		ID:       fmt.Sprintf("course-%d", course.ID),
		Name:     truncate(course.Title, 50),
		Price:    amount,
		Quantity: 1,
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{
		OrderID:       orderID,
		TransactionID: transactionID,
		Amount:        amount,
		Discount:      discount,
		SnapToken:     token.Token,
		RedirectURL:   token.RedirectURL,
	}, nil
}

// Donate starts a donation. The donation-typed Transaction and its Donation
// share one DONATION- order id.
func (s *CheckoutService) Donate(ctx context.Context, buyer Buyer, req DonationRequest) (*CheckoutResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "Invalid donation request", err)
	}
	if req.Amount <= 0 {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, domainErrors.ErrInvalidDonationAmount.Error(), domainErrors.ErrInvalidDonationAmount)
	}

	course, err := s.loadCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	orderID := NewOrderID(DonationOrderPrefix, s.now())
	transactionID, err := NewTransactionID(TransactionIDDonation)
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to generate transaction id")
	}

	tx := &model.Transaction{
		TransactionID: transactionID,
		OrderID:       orderID,
		UserID:        buyer.ID,
		CourseID:      course.ID,
		Amount:        req.Amount,
		Currency:      s.cfg.Currency,
		Status:        model.TransactionStatusPending,
		Type:          model.TransactionTypeDonation,
	}
	donation := &model.Donation{
		OrderID:  orderID,
		UserID:   buyer.ID,
		CourseID: course.ID,
		Amount:   req.Amount,
		Currency: s.cfg.Currency,
		Message:  req.Message,
		Status:   model.TransactionStatusPending,
	}
	if err := s.createEntries(ctx, tx, donation); err != nil {
		return nil, err
	}

	token, err := s.issueToken(ctx, s.donations, buyer, orderID, req.Amount, provider.ChargeItem{
		ID:       fmt.Sprintf("donation-%d", course.ID),
		Name:     truncate("Donation: "+course.Title, 50),
		Price:    req.Amount,
		Quantity: 1,
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{
		OrderID:       orderID,
		TransactionID: transactionID,
		Amount:        req.Amount,
		SnapToken:     token.Token,
		RedirectURL:   token.RedirectURL,
	}, nil
}

func (s *CheckoutService) loadCourse(ctx context.Context, courseID int64) (*model.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to load course")
	}
	if course == nil || !course.IsPublished {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, domainErrors.ErrCourseNotFound.Error(), domainErrors.ErrCourseNotFound)
	}
	return course, nil
}

func (s *CheckoutService) applyPromo(ctx context.Context, code string, price int64) (int64, *string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, nil, nil
	}

	promo, err := s.promos.GetByCode(ctx, code)
	if err != nil {
		return 0, nil, apperrors.Wrap(err, "Failed to load promo code")
	}

	var invalid error
	if promo == nil {
		invalid = domainErrors.NewPromoInvalidError(code, promoReasonDoesNotExist)
	} else {
		invalid = ValidatePromo(promo, price, s.now())
	}
	if invalid != nil {
		var pe *domainErrors.PromoInvalidError
		message := "Invalid promo code"
		if errors.As(invalid, &pe) {
			message = "Invalid promo code: " + pe.Reason
		}
		return 0, nil, apperrors.NewAppError(apperrors.ErrUnprocessable, message, invalid)
	}

	return PromoDiscount(promo, price), &promo.Code, nil
}

// freeCheckout completes a zero-amount purchase without contacting the gateway.
func (s *CheckoutService) freeCheckout(ctx context.Context, buyer Buyer, course *model.Course, discount int64, promoCode *string) (*CheckoutResult, error) {
	now := s.now()
	orderID := NewOrderID(PurchaseOrderPrefix, now)
	transactionID, err := NewTransactionID(TransactionIDFree)
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to generate transaction id")
	}

	tx := &model.Transaction{
		TransactionID:  transactionID,
		OrderID:        orderID,
		UserID:         buyer.ID,
		CourseID:       course.ID,
		Amount:         0,
		DiscountAmount: discount,
		PromoCode:      promoCode,
		Currency:       s.cfg.Currency,
		PaymentMethod:  paymentMethodFree,
		Status:         model.TransactionStatusCompleted,
		Type:           model.TransactionTypePurchase,
		PaidAt:         &now,
		PaymentDetails: model.JSONB{
			"status":       string(model.TransactionStatusCompleted),
			"channel":      string(model.ChannelCheckout),
			"payment_type": paymentMethodFree,
			"updated_at":   now.UTC().Format(time.RFC3339Nano),
			"event_count":  1,
		},
	}

	var (
		enrollment *model.Enrollment
		created    bool
	)
	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Transactions().Create(ctx, tx); err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		if err := repos.PaymentEvents().Append(ctx, &model.PaymentEvent{
			Ledger:         model.LedgerTransactions,
			LedgerID:       tx.ID,
			OrderID:        orderID,
			Channel:        model.ChannelCheckout,
			PaymentType:    paymentMethodFree,
			PreviousStatus: model.TransactionStatusPending,
			ResultStatus:   model.TransactionStatusCompleted,
			Applied:        true,
			Note:           "free checkout",
			EventAt:        &now,
			Payload:        encodePayload(nil),
		}); err != nil {
			return fmt.Errorf("failed to append payment event: %w", err)
		}

		var err error
		enrollment, created, err = s.deriver.ensureWithin(ctx, repos.Enrollments(), tx)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to enroll in free course")
	}

	s.logger.Info("Free checkout completed",
		zap.String("order_id", orderID),
		zap.Int64("user_id", buyer.ID),
		zap.Int64("course_id", course.ID),
		zap.Bool("enrollment_created", created))

	if created {
		publishEnrollmentCreated(ctx, s.publisher, s.logger, enrollment)
	}

	return &CheckoutResult{
		OrderID:       orderID,
		TransactionID: transactionID,
		Discount:      discount,
		Free:          true,
		Enrollment:    enrollment,
	}, nil
}

// createEntries writes the pending ledger rows before the gateway is contacted.
func (s *CheckoutService) createEntries(ctx context.Context, tx *model.Transaction, donation *model.Donation) error {
	now := s.now()
	details := model.JSONB{
		"status":      string(model.TransactionStatusPending),
		"channel":     string(model.ChannelCheckout),
		"updated_at":  now.UTC().Format(time.RFC3339Nano),
		"event_count": 1,
	}
	tx.PaymentDetails = details

	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Transactions().Create(ctx, tx); err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		entries := []model.LedgerEntry{tx}

		if donation != nil {
			donation.TransactionID = tx.ID
			donation.PaymentDetails = details.Merge(nil)
			if err := repos.Donations().Create(ctx, donation); err != nil {
				return fmt.Errorf("failed to create donation: %w", err)
			}
			entries = append(entries, donation)
		}

		for _, entry := range entries {
			if err := repos.PaymentEvents().Append(ctx, &model.PaymentEvent{
				Ledger:       entry.LedgerName(),
				LedgerID:     entry.EntryID(),
				OrderID:      entry.EntryOrderID(),
				Channel:      model.ChannelCheckout,
				ResultStatus: model.TransactionStatusPending,
				Applied:      true,
				Note:         "created",
				Payload:      encodePayload(nil),
			}); err != nil {
				return fmt.Errorf("failed to append payment event: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, "Failed to create transaction")
	}
	return nil
}

// issueToken calls the gateway facade within the configured timeout. On
// failure the ledger entries are marked failed before the error is returned.
func (s *CheckoutService) issueToken(ctx context.Context, engine *ReconciliationEngine, buyer Buyer, orderID string, amount int64, item provider.ChargeItem) (*provider.ChargeToken, error) {
	firstName, lastName := splitName(buyer.Name)
	req := &provider.ChargeRequest{
		OrderID:  orderID,
		Amount:   amount,
		Currency: s.cfg.Currency,
		Items:    []provider.ChargeItem{item},
		Customer: provider.Customer{
			FirstName: firstName,
			LastName:  lastName,
			Email:     buyer.Email,
		},
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()

	token, err := s.gateway.IssueChargeToken(callCtx, req)
	if err == nil {
		s.logger.Info("Charge token issued",
			zap.String("order_id", orderID),
			zap.String("provider", s.gateway.GetProviderName()),
			zap.Bool("via_fallback", token.ViaFallback))
		return token, nil
	}

	stack := string(debug.Stack())
	s.logger.Error("Payment gateway failed to issue charge token",
		zap.String("order_id", orderID),
		zap.String("provider", s.gateway.GetProviderName()),
		zap.Error(err))

	if markErr := engine.MarkGatewayFailure(ctx, orderID, err, stack); markErr != nil {
		s.logger.Error("Failed to mark ledger entry as failed",
			zap.String("order_id", orderID),
			zap.Error(markErr))
	}

	failure := &GatewayFailureError{OrderID: orderID}
	if s.cfg.ExposeErrorDetail {
		failure.Detail = err.Error()
	}
	return nil, apperrors.NewAppError(apperrors.ErrUpstream, msgGatewayUnavailable, failure)
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "Customer", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
