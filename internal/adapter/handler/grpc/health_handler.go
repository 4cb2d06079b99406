package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name reported through the gRPC health service
const ServiceName = "coursepedia.payment"

// CheckFunc reports whether a dependency is usable
type CheckFunc func(ctx context.Context) error

// HealthHandler keeps the gRPC health status in line with the ledger store
type HealthHandler struct {
	server *health.Server
	check  CheckFunc
	logger *zap.Logger
}

func NewHealthHandler(check CheckFunc, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		server: health.NewServer(),
		check:  check,
		logger: logger,
	}
}

// Server returns the health service to register on a grpc.Server
func (h *HealthHandler) Server() *health.Server {
	return h.server
}

// Refresh runs the check once and publishes the result
func (h *HealthHandler) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if h.check != nil {
		if err := h.check(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return status
}

// Watch refreshes the status every interval until ctx is done
func (h *HealthHandler) Watch(ctx context.Context, interval time.Duration) {
	h.Refresh(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}
