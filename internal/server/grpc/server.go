// Package grpc exposes the identity service over gRPC.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/chatandpay/internal/logging"
	"github.com/dmitrijs2005/chatandpay/internal/ratelimit"
	"github.com/dmitrijs2005/chatandpay/internal/server/config"
	"github.com/dmitrijs2005/chatandpay/internal/server/metrics"
	"github.com/dmitrijs2005/chatandpay/internal/server/models"
	"github.com/dmitrijs2005/chatandpay/internal/server/services"
	"google.golang.org/grpc"
)

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

type GRPCServer struct {
	address   string
	identity  IdentityService
	logger    logging.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
	limiter   *ratelimit.KeyedLimiter
	metrics   *metrics.Metrics
	now       func() time.Time
}

var _ IdentityServer = (*GRPCServer)(nil)

func NewGRPCServer(cfg *config.Config, l logging.Logger, identity IdentityService,
	limiter *ratelimit.KeyedLimiter, m *metrics.Metrics) *GRPCServer {
	return &GRPCServer{
		address:   cfg.EndpointAddrGRPC,
		identity:  identity,
		logger:    l.With("module", "grpc_server"),
		jwtSecret: []byte(cfg.SecretKey),
		tokenTTL:  cfg.AccessTokenValidityDuration,
		limiter:   limiter,
		metrics:   m,
		now:       time.Now,
	}
}

// newServer builds the grpc.Server with the interceptor chain. Order:
// request logging and metrics, error mapping, authentication, throttling.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.observeInterceptor,
		s.errorInterceptor,
		s.accessTokenInterceptor,
		s.throttleInterceptor,
	))
	RegisterIdentityServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
