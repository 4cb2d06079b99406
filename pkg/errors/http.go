package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ToHTTPStatus는 에러 코드를 HTTP 상태 코드로 변환합니다
func ToHTTPStatus(code string) int {
	httpStatus, _ := GetCodeMapping(code)
	return httpStatus
}

// ToHTTPError는 에러를 Echo HTTP 에러로 변환합니다.
// AppError는 내부 에러를 숨기고 메시지만 노출합니다
func ToHTTPError(err error) *echo.HTTPError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		he := echo.NewHTTPError(ToHTTPStatus(appErr.Code()), appErr.Message())
		he.Internal = err
		return he
	}

	// Echo 에러인 경우 그대로 반환
	if echoErr, ok := err.(*echo.HTTPError); ok {
		return echoErr
	}

	// 기본 에러는 500으로 처리
	he := echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	he.Internal = err
	return he
}
