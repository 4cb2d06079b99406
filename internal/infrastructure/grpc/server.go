package grpc

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	handlers "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/adapter/handler/grpc"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/config"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/pkg/logger"
)

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	health   *handlers.HealthHandler
	server   *grpc.Server
	listener net.Listener
}

func NewServer(cfg *config.Config, logger *zap.Logger, health *handlers.HealthHandler) *Server {
	return &Server{
		config: cfg,
		logger: logger,
		health: health,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.GRPC.Host, s.config.Server.GRPC.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener

	s.server = grpc.NewServer(logger.ServerOptions(s.logger)...)
	healthpb.RegisterHealthServer(s.server, s.health.Server())
	if !s.config.IsProduction() {
		reflection.Register(s.server)
	}

	s.logger.Info("Starting gRPC server", zap.String("address", addr))

	return s.server.Serve(listener)
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.server.Stop()
	}
	return nil
}
