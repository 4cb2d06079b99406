package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestHealthHandler_Refresh(t *testing.T) {
	var checkErr error
	h := NewHealthHandler(func(ctx context.Context) error { return checkErr }, zap.NewNop())

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, h.Refresh(context.Background()))
	resp, err := h.Server().Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	checkErr = errors.New("connection refused")
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, h.Refresh(context.Background()))
	resp, err = h.Server().Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestHealthHandler_NilCheckIsServing(t *testing.T) {
	h := NewHealthHandler(nil, zap.NewNop())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, h.Refresh(context.Background()))
}
