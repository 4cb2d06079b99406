package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/entity"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/middleware/auth"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/usecase"
)

type PaymentHandler struct {
	usecase *usecase.PaymentUsecase
	logger  *zap.Logger
}

func NewPaymentHandler(usecase *usecase.PaymentUsecase, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// GetUserTransactions handles GET /api/v1/transactions
func (h *PaymentHandler) GetUserTransactions(c echo.Context) error {
	// Get authenticated user from JWT
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req entity.PageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid pagination parameters",
		})
	}

	page, err := h.usecase.GetUserTransactions(c.Request().Context(), user.UserID, req)
	if err != nil {
		return err
	}

	h.logger.Debug("Retrieved user transactions",
		zap.Int64("user_id", user.UserID),
		zap.Int("count", len(page.Data)))

	return c.JSON(http.StatusOK, page)
}

// GetTransaction handles GET /api/v1/transactions/:order_id
func (h *PaymentHandler) GetTransaction(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	detail, err := h.usecase.GetTransaction(c.Request().Context(), user.UserID, c.Param("order_id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, detail)
}
