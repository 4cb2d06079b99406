package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/adapter/handler/http"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/config"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/provider"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/middleware/auth"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/usecase"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/pkg/logger"
)

const devSessionSecret = "coursepedia-dev-session-secret"

// Services are the use cases the HTTP layer routes to
type Services struct {
	Gateway   provider.PaymentProvider
	Checkout  *usecase.CheckoutService
	Purchases *usecase.ReconciliationEngine
	Donations *usecase.ReconciliationEngine
	Payments  *usecase.PaymentUsecase
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	services Services
}

func NewServer(cfg *config.Config, log *zap.Logger, services Services) *Server {
	e := echo.New()
	e.HideBanner = true
	logger.WithEchoLogger(e, log)

	secret := cfg.Service.SessionSecret
	if secret == "" {
		log.Warn("service.session_secret is empty, using development secret")
		secret = devSessionSecret
	}

	// Middleware
	e.Use(middleware.Recover())
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.Service.ClientURL},
		AllowMethods:     []string{echo.GET, echo.POST},
		AllowCredentials: true,
	}))
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(secret))))

	s := &Server{
		config:   cfg,
		logger:   log,
		echo:     e,
		services: services,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	clientURL := s.config.Service.ClientURL
	writes := s.config.Reconciliation.RedirectChannelWrites

	// Initialize handlers
	checkoutHandler := handlers.NewCheckoutHandler(s.services.Checkout, s.logger, clientURL)
	paymentHandler := handlers.NewPaymentHandler(s.services.Payments, s.logger)
	flashHandler := handlers.NewFlashHandler()
	purchaseFinish := handlers.NewRedirectHandler(s.services.Purchases, writes, clientURL, s.logger)
	donationFinish := handlers.NewRedirectHandler(s.services.Donations, writes, clientURL, s.logger)
	purchaseNotification := handlers.NewNotificationHandler(s.services.Gateway, s.services.Purchases, s.logger)
	donationNotification := handlers.NewNotificationHandler(s.services.Gateway, s.services.Donations, s.logger)

	// JWT middleware configuration
	jwtConfig := auth.JWTConfig{
		Secret: s.config.JWT.Secret,
		Logger: s.logger,
		SkipPaths: []string{
			"/api/v1/flash",
		},
	}

	// API v1 routes
	v1 := s.echo.Group("/api/v1", auth.JWTMiddleware(jwtConfig))

	// Public routes (no authentication required)
	v1.GET("/flash", flashHandler.Pop)

	// Checkout
	v1.POST("/courses/:id/checkout", checkoutHandler.Checkout)
	v1.POST("/courses/:id/donations", checkoutHandler.Donate)

	// Transactions
	v1.GET("/transactions", paymentHandler.GetUserTransactions)
	v1.GET("/transactions/:order_id", paymentHandler.GetTransaction)

	// Gateway callbacks (outside API versioning)
	s.echo.GET("/payments/finish", purchaseFinish.Finish)
	s.echo.POST("/payments/finish", purchaseFinish.Finish)
	s.echo.GET("/donations/finish", donationFinish.Finish)
	s.echo.POST("/donations/finish", donationFinish.Finish)
	s.echo.POST("/payments/notification", purchaseNotification.Handle)
	s.echo.POST("/donations/notification", donationNotification.Handle)
}
