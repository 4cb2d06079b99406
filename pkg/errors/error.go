package errors

import (
	"errors"
	"fmt"
)

// 표준 라이브러리 함수 재노출
var (
	New = errors.New
	Is  = errors.Is
	As  = errors.As
)

// AppError는 코드와 클라이언트용 메시지를 가진 애플리케이션 에러입니다.
// 원인 에러는 로그에만 남고 응답에는 노출되지 않습니다.
type AppError struct {
	code    string
	message string
	cause   error
}

// NewAppError는 새 애플리케이션 에러를 생성합니다
func NewAppError(code string, message string, cause error) *AppError {
	return &AppError{code: code, message: message, cause: cause}
}

func (e *AppError) Error() string {
	if e.cause == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %v", e.message, e.cause)
}

func (e *AppError) Code() string { return e.code }

func (e *AppError) Unwrap() error { return e.cause }

// Message는 원인 에러를 제외한 메시지를 반환합니다
func (e *AppError) Message() string { return e.message }

// Wrap은 err에 메시지를 덧붙입니다. 체인에 AppError가 있으면 그 코드를 이어받습니다.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return NewAppError(CodeOf(err), message, err)
}

// CodeOf는 에러 체인에서 가장 바깥 AppError의 코드를 찾습니다. 없으면 ErrInternal입니다
func CodeOf(err error) string {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Code()
	}
	return ErrInternal
}

// HasCode는 err의 코드가 code인지 확인합니다
func HasCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}
