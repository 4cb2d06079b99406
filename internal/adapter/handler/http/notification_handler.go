package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/errors"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/provider"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/usecase"
)

// NotificationHandler receives signed server-to-server notifications. The
// gateway retries on non-2xx, so only failures worth retrying answer 5xx.
type NotificationHandler struct {
	gateway provider.PaymentProvider
	engine  *usecase.ReconciliationEngine
	logger  *zap.Logger
}

func NewNotificationHandler(gateway provider.PaymentProvider, engine *usecase.ReconciliationEngine, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		gateway: gateway,
		engine:  engine,
		logger:  logger,
	}
}

// Handle handles POST /payments/notification and /donations/notification
func (h *NotificationHandler) Handle(c echo.Context) error {
	kind := h.engine.Kind()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.String(http.StatusInternalServerError, "Error reading request body")
	}

	n, err := h.gateway.VerifyNotification(c.Request().Context(), body, c.Request().Header)
	if err != nil {
		switch {
		case provider.HasCode(err, provider.CodeInvalidSignature):
			return c.String(http.StatusForbidden, "Invalid signature")
		case provider.HasCode(err, provider.CodeParseError), provider.HasCode(err, provider.CodeInvalidRequest):
			return c.String(http.StatusBadRequest, "Invalid notification")
		case provider.HasCode(err, provider.CodeNotSupported):
			return c.String(http.StatusOK, "Ignored")
		case provider.HasCode(err, provider.CodeNotFound):
			return c.String(http.StatusNotFound, kind.NotFoundMessage)
		}
		h.logger.Error("Failed to verify notification",
			zap.String("ledger", kind.Name),
			zap.Error(err))
		return c.String(http.StatusInternalServerError, "Error verifying notification: "+err.Error())
	}

	if !kind.Owns(n.OrderID) {
		h.logger.Debug("Notification addressed to another ledger",
			zap.String("ledger", kind.Name),
			zap.String("order_id", n.OrderID))
		return c.String(http.StatusOK, kind.ForeignMessage)
	}

	_, err = h.engine.Reconcile(c.Request().Context(), usecase.EventFromNotification(n, model.ChannelNotification))
	switch {
	case err == nil:
		return c.String(http.StatusOK, "OK")
	case errors.Is(err, domainErrors.ErrLedgerNotFound):
		h.logger.Warn("Notification for unknown order",
			zap.String("ledger", kind.Name),
			zap.String("order_id", n.OrderID))
		return c.String(http.StatusNotFound, kind.NotFoundMessage)
	case errors.Is(err, domainErrors.ErrForeignLedger):
		return c.String(http.StatusOK, kind.ForeignMessage)
	default:
		h.logger.Error("Failed to reconcile notification",
			zap.String("ledger", kind.Name),
			zap.String("order_id", n.OrderID),
			zap.Error(err))
		return c.String(http.StatusInternalServerError, "Error processing notification: "+err.Error())
	}
}
