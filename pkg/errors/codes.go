package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// 공통 에러 코드
const (
	ErrInternal        = "INTERNAL"
	ErrNotFound        = "NOT_FOUND"
	ErrInvalidArgument = "INVALID_ARGUMENT"
	ErrUnauthenticated = "UNAUTHENTICATED"
	ErrUnauthorized    = "UNAUTHORIZED"
	ErrConflict        = "CONFLICT"
	ErrTimeout         = "TIMEOUT"
	// 요청 형식은 맞지만 비즈니스 규칙상 처리할 수 없는 경우 (예: 유효하지 않은 프로모 코드, 금액 불일치)
	ErrUnprocessable = "UNPROCESSABLE"
	// 결제 게이트웨이 호출 실패
	ErrUpstream = "UPSTREAM"
)

type codeInfo struct {
	httpStatus int
	grpcCode   codes.Code
}

var codeTable = map[string]codeInfo{
	ErrInternal:        {http.StatusInternalServerError, codes.Internal},
	ErrNotFound:        {http.StatusNotFound, codes.NotFound},
	ErrInvalidArgument: {http.StatusBadRequest, codes.InvalidArgument},
	ErrUnauthenticated: {http.StatusUnauthorized, codes.Unauthenticated},
	ErrUnauthorized:    {http.StatusForbidden, codes.PermissionDenied},
	ErrConflict:        {http.StatusConflict, codes.AlreadyExists},
	ErrTimeout:         {http.StatusGatewayTimeout, codes.DeadlineExceeded},
	ErrUnprocessable:   {http.StatusUnprocessableEntity, codes.FailedPrecondition},
	ErrUpstream:        {http.StatusBadGateway, codes.Unavailable},
}

// GetCodeMapping은 에러 코드에 대응하는 HTTP 상태와 gRPC 코드를 반환합니다.
// 등록되지 않은 코드는 500 / Internal 입니다.
func GetCodeMapping(code string) (int, codes.Code) {
	if info, ok := codeTable[code]; ok {
		return info.httpStatus, info.grpcCode
	}
	return http.StatusInternalServerError, codes.Internal
}
