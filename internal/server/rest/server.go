// Package rest exposes the identity service as a JSON HTTP API built on fiber.
package rest

import (
	"context"
	"time"

	"github.com/dmitrijs2005/chatandpay/internal/logging"
	"github.com/dmitrijs2005/chatandpay/internal/ratelimit"
	"github.com/dmitrijs2005/chatandpay/internal/server/config"
	"github.com/dmitrijs2005/chatandpay/internal/server/metrics"
	"github.com/dmitrijs2005/chatandpay/internal/server/models"
	"github.com/dmitrijs2005/chatandpay/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const shutdownTimeout = 5 * time.Second

// IdentityService is the business API the handlers call.
type IdentityService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in services.LoginInput) (*models.User, error)
	StartPhoneAuth(ctx context.Context, phone string) (*models.User, error)
	ConfirmPhoneAuth(ctx context.Context, phone, code string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, in services.UpdateProfileInput) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

type HTTPServer struct {
	address   string
	app       *fiber.App
	identity  IdentityService
	logger    logging.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
	limiter   *ratelimit.KeyedLimiter
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, identity IdentityService,
	limiter *ratelimit.KeyedLimiter, m *metrics.Metrics) *HTTPServer {
	s := &HTTPServer{
		address:   cfg.EndpointAddrHTTP,
		identity:  identity,
		logger:    l.With("module", "http_server"),
		jwtSecret: []byte(cfg.SecretKey),
		tokenTTL:  cfg.AccessTokenValidityDuration,
		limiter:   limiter,
		metrics:   m,
		now:       time.Now,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "chatandpay identity",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.routes()
	return s
}

func (s *HTTPServer) routes() {
	s.app.Use(recover.New())
	s.app.Use(s.observe)

	s.app.Get("/healthz", s.health)
	if s.metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}

	s.app.Post("/users", s.register)
	s.app.Put("/users/:id", s.authenticate, s.updateProfile)
	s.app.Delete("/users/:id", s.authenticate, s.deleteUser)

	s.app.Post("/auth/login", s.login)
	s.app.Post("/auth/phone", s.throttle, s.startPhoneAuth)
	s.app.Post("/auth/phone/confirm", s.confirmPhoneAuth)
}

// App returns the underlying fiber app.
func (s *HTTPServer) App() *fiber.App {
	return s.app
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			s.logger.Error(context.Background(), "http shutdown", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	return s.app.Listen(s.address)
}
