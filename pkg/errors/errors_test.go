package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestWrapKeepsCode(t *testing.T) {
	base := NewAppError(ErrNotFound, "Course not found", nil)
	wrapped := Wrap(fmt.Errorf("load: %w", base), "Failed to load course")

	assert.Equal(t, ErrNotFound, CodeOf(wrapped))
	assert.True(t, HasCode(wrapped, ErrNotFound))
	assert.True(t, Is(wrapped, base))

	plain := Wrap(New("connection reset"), "Failed to load course")
	assert.Equal(t, ErrInternal, CodeOf(plain))
	assert.Nil(t, Wrap(nil, "ignored"))
	assert.False(t, HasCode(nil, ErrInternal))
}

func TestMessageHidesCause(t *testing.T) {
	err := NewAppError(ErrUpstream, "Payment gateway unavailable", New("dial tcp: timeout"))

	assert.Equal(t, "Payment gateway unavailable", err.Message())
	assert.Contains(t, err.Error(), "dial tcp")
}

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    interface{}
	}{
		{"app error", NewAppError(ErrUnprocessable, "Invalid promo code", nil), http.StatusUnprocessableEntity, "Invalid promo code"},
		{"upstream", NewAppError(ErrUpstream, "Gateway down", New("503")), http.StatusBadGateway, "Gateway down"},
		{"echo error", echo.NewHTTPError(http.StatusTeapot, "teapot"), http.StatusTeapot, "teapot"},
		{"plain error", New("boom"), http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := ToHTTPError(tt.err)
			require.NotNil(t, he)
			assert.Equal(t, tt.status, he.Code)
			assert.Equal(t, tt.msg, he.Message)
		})
	}
	assert.Nil(t, ToHTTPError(nil))
}

func TestToGRPCError(t *testing.T) {
	st, ok := status.FromError(ToGRPCError(NewAppError(ErrNotFound, "Transaction not found", nil)))
	require.True(t, ok)
	assert.Equal(t, codes.NotFound, st.Code())
	assert.Equal(t, "Transaction not found", st.Message())

	st, _ = status.FromError(ToGRPCError(New("secret detail")))
	assert.Equal(t, codes.Internal, st.Code())
	assert.NotContains(t, st.Message(), "secret")

	original := status.Error(codes.Unavailable, "draining")
	assert.Equal(t, original, ToGRPCError(original))
	assert.NoError(t, ToGRPCError(nil))
}

func TestGetCodeMappingDefault(t *testing.T) {
	httpStatus, grpcCode := GetCodeMapping("SOMETHING_ELSE")
	assert.Equal(t, http.StatusInternalServerError, httpStatus)
	assert.Equal(t, codes.Internal, grpcCode)
}

func TestLogErrorLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	LogError(logger, NewAppError(ErrInvalidArgument, "bad", nil), "rejected")
	LogError(logger, New("boom"), "failed")
	LogError(logger, nil, "ignored")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, ErrInternal, entries[1].ContextMap()["error_code"])
}
