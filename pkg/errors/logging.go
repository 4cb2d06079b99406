package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// LogError는 에러를 코드와 함께 기록합니다. 4xx에 해당하는 코드는 Warn, 나머지는 Error 레벨입니다.
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if err == nil {
		return
	}

	code := CodeOf(err)
	status, _ := GetCodeMapping(code)

	all := append([]zap.Field{
		zap.Error(err),
		zap.String("error_code", code),
	}, fields...)

	if status < http.StatusInternalServerError {
		logger.Warn(msg, all...)
		return
	}
	logger.Error(msg, all...)
}
