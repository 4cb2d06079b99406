package errors

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToGRPCError는 AppError를 gRPC status 에러로 변환합니다.
// 이미 status 에러이면 그대로 두고, 그 외 에러는 Internal로 감춥니다.
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var appErr *AppError
	if As(err, &appErr) {
		_, code := GetCodeMapping(appErr.Code())
		return status.Error(code, appErr.Message())
	}
	return status.Error(codes.Internal, "internal error")
}
