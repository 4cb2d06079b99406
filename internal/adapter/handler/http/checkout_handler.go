package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/middleware/auth"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/usecase"
	apperrors "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/pkg/errors"
)

type CheckoutHandler struct {
	checkout  *usecase.CheckoutService
	logger    *zap.Logger
	clientURL string
}

func NewCheckoutHandler(checkout *usecase.CheckoutService, logger *zap.Logger, clientURL string) *CheckoutHandler {
	return &CheckoutHandler{
		checkout:  checkout,
		logger:    logger,
		clientURL: clientURL,
	}
}

type checkoutRequest struct {
	PromoCode   string `json:"promo_code" form:"promo_code"`
	FinalAmount *int64 `json:"final_amount" form:"final_amount"`
}

type donationRequest struct {
	Amount  int64  `json:"amount" form:"amount"`
	Message string `json:"message" form:"message"`
}

type checkoutResponse struct {
	Success     bool   `json:"success"`
	SnapToken   string `json:"snap_token"`
	OrderID     string `json:"order_id"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Amount      int64  `json:"amount"`
}

type checkoutErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Checkout handles POST /api/v1/courses/:id/checkout
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || courseID <= 0 {
		return c.JSON(http.StatusBadRequest, checkoutErrorResponse{Message: "Invalid course ID"})
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, checkoutErrorResponse{Message: "Invalid request body"})
	}

	result, err := h.checkout.Checkout(c.Request().Context(), buyerFrom(user), usecase.CheckoutRequest{
		CourseID:    courseID,
		PromoCode:   req.PromoCode,
		FinalAmount: req.FinalAmount,
	})
	if err != nil {
		return h.checkoutError(c, courseID, err)
	}

	if result.Free {
		if err := setFlash(c, FlashSuccess, "You are now enrolled in this course."); err != nil {
			h.logger.Warn("Failed to set flash message", zap.Error(err))
		}
		return c.Redirect(http.StatusSeeOther, fmt.Sprintf("%s/courses/%d", h.clientURL, courseID))
	}

	return c.JSON(http.StatusOK, checkoutResponse{
		Success:     true,
		SnapToken:   result.SnapToken,
		OrderID:     result.OrderID,
		RedirectURL: result.RedirectURL,
		Amount:      result.Amount,
	})
}

// Donate handles POST /api/v1/courses/:id/donations
func (h *CheckoutHandler) Donate(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || courseID <= 0 {
		return c.JSON(http.StatusBadRequest, checkoutErrorResponse{Message: "Invalid course ID"})
	}

	var req donationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, checkoutErrorResponse{Message: "Invalid request body"})
	}

	result, err := h.checkout.Donate(c.Request().Context(), buyerFrom(user), usecase.DonationRequest{
		CourseID: courseID,
		Amount:   req.Amount,
		Message:  req.Message,
	})
	if err != nil {
		return h.checkoutError(c, courseID, err)
	}

	return c.JSON(http.StatusOK, checkoutResponse{
		Success:     true,
		SnapToken:   result.SnapToken,
		OrderID:     result.OrderID,
		RedirectURL: result.RedirectURL,
		Amount:      result.Amount,
	})
}

// checkoutError renders {success:false, message, error}. The error field is
// only filled for gateway failures outside production.
func (h *CheckoutHandler) checkoutError(c echo.Context, courseID int64, err error) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		h.logger.Error("Checkout failed", zap.Int64("course_id", courseID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, checkoutErrorResponse{Message: "Something went wrong. Please try again later."})
	}

	status := apperrors.ToHTTPStatus(appErr.Code())
	resp := checkoutErrorResponse{Message: appErr.Message()}

	var gatewayErr *usecase.GatewayFailureError
	if errors.As(err, &gatewayErr) {
		resp.Error = gatewayErr.Detail
	}

	if status >= http.StatusInternalServerError {
		apperrors.LogError(h.logger, err, "Checkout failed", zap.Int64("course_id", courseID))
	} else {
		h.logger.Info("Checkout rejected",
			zap.Int64("course_id", courseID),
			zap.String("error_code", appErr.Code()),
			zap.Error(err))
	}
	return c.JSON(status, resp)
}

func buyerFrom(user *auth.AuthUser) usecase.Buyer {
	return usecase.Buyer{
		ID:    user.UserID,
		Email: user.Email,
		Name:  user.Name,
	}
}
