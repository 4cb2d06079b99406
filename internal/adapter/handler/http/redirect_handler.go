package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/errors"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/usecase"
)

// RedirectHandler serves the page the gateway sends the browser back to after
// payment. It never returns an error to the browser; every outcome becomes a
// redirect with a flash message.
type RedirectHandler struct {
	engine *usecase.ReconciliationEngine
	// writes lets this channel change ledger state; otherwise it only reports
	writes    bool
	clientURL string
	logger    *zap.Logger
}

func NewRedirectHandler(engine *usecase.ReconciliationEngine, writes bool, clientURL string, logger *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		engine:    engine,
		writes:    writes,
		clientURL: clientURL,
		logger:    logger,
	}
}

// Finish handles GET/POST /payments/finish and /donations/finish
func (h *RedirectHandler) Finish(c echo.Context) error {
	orderID := c.FormValue("order_id")
	kind := h.engine.Kind()

	if orderID == "" {
		return h.redirect(c, FlashError, "Missing order information.", h.clientURL+"/")
	}

	var (
		status   model.TransactionStatus
		courseID int64
		err      error
	)
	if h.writes {
		var result *usecase.ReconcileResult
		result, err = h.engine.Reconcile(c.Request().Context(), usecase.GatewayEvent{
			Channel:           model.ChannelRedirect,
			OrderID:           orderID,
			TransactionStatus: c.FormValue("transaction_status"),
			FraudStatus:       c.FormValue("fraud_status"),
			PaymentType:       c.FormValue("payment_type"),
			Payload:           formPayload(c),
		})
		if result != nil {
			status, courseID = result.Status, result.CourseID
		}
	} else {
		var snapshot *usecase.LedgerSnapshot
		snapshot, err = h.engine.Lookup(c.Request().Context(), orderID)
		if snapshot != nil {
			status, courseID = snapshot.Status, snapshot.CourseID
		}
	}

	switch {
	case errors.Is(err, domainErrors.ErrForeignLedger):
		return h.redirect(c, FlashError, kind.ForeignMessage, h.clientURL+"/")
	case errors.Is(err, domainErrors.ErrLedgerNotFound):
		return h.redirect(c, FlashError, kind.NotFoundMessage, h.clientURL+"/")
	case err != nil:
		h.logger.Error("Failed to process payment redirect",
			zap.String("ledger", kind.Name),
			zap.String("order_id", orderID),
			zap.Error(err))
		return h.redirect(c, FlashError, "We could not confirm your payment. Please check your transactions.", h.clientURL+"/transactions")
	}

	messageType, message := finishMessage(kind.DerivesEnrollment, status)
	target := fmt.Sprintf("%s/courses/%d", h.clientURL, courseID)
	if status != model.TransactionStatusCompleted {
		target = h.clientURL + "/transactions"
	}
	return h.redirect(c, messageType, message, target)
}

func (h *RedirectHandler) redirect(c echo.Context, messageType, message, target string) error {
	if err := setFlash(c, messageType, message); err != nil {
		h.logger.Warn("Failed to set flash message", zap.Error(err))
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func finishMessage(purchase bool, status model.TransactionStatus) (string, string) {
	switch status {
	case model.TransactionStatusCompleted:
		if purchase {
			return FlashSuccess, "Payment successful! You are now enrolled in this course."
		}
		return FlashSuccess, "Thank you for supporting the instructor!"
	case model.TransactionStatusPending:
		return FlashInfo, "Your payment is being processed. We will update you once it is confirmed."
	case model.TransactionStatusChallenge:
		return FlashInfo, "Your payment is under review by the payment provider."
	case model.TransactionStatusFailed, model.TransactionStatusExpired, model.TransactionStatusCancelled:
		return FlashError, "Your payment was not completed."
	default:
		return FlashInfo, "We could not confirm your payment status yet."
	}
}

func formPayload(c echo.Context) map[string]interface{} {
	payload := make(map[string]interface{})
	params, err := c.FormParams()
	if err != nil {
		params = c.QueryParams()
	}
	for k, v := range params {
		if len(v) > 0 {
			payload[k] = v[0]
		}
	}
	return payload
}
