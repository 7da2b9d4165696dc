// Package server wires the identity service together: storage, migrations,
// notifier, and the gRPC and HTTP transports, with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/chatandpay/internal/logging"
	"github.com/dmitrijs2005/chatandpay/internal/ratelimit"
	"github.com/dmitrijs2005/chatandpay/internal/server/auth"
	"github.com/dmitrijs2005/chatandpay/internal/server/config"
	"github.com/dmitrijs2005/chatandpay/internal/server/metrics"
	"github.com/dmitrijs2005/chatandpay/internal/server/notifier"
	"github.com/dmitrijs2005/chatandpay/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/chatandpay/internal/server/rest"
	"github.com/dmitrijs2005/chatandpay/internal/server/services"
	"github.com/dmitrijs2005/chatandpay/internal/server/shared/db"

	gs "github.com/dmitrijs2005/chatandpay/internal/server/grpc"
)

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	servers map[string]runner
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	conn, err := db.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	n, err := notifier.New(ctx, c, logger)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("notifier init error: %w", err)
	}

	identity := services.NewIdentityService(conn, rm, auth.NewBcryptHasher(c.BcryptCost), n, c, logger)

	// one limiter and one registry shared by both transports
	limiter := ratelimit.New(c.OTPSendRate, c.OTPSendBurst, 0)
	m := metrics.New()

	return &App{
		config: c,
		logger: logger,
		db:     conn,
		servers: map[string]runner{
			"grpc": gs.NewGRPCServer(c, logger, identity, limiter, m),
			"http": rest.NewHTTPServer(c, logger, identity, limiter, m),
		},
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startServer(ctx context.Context, cancelFunc context.CancelFunc, name string, s runner) {
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped", "server", name, "error", err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or any server fails, then waits for
// both servers to stop and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	for name, s := range app.servers {
		name, s := name, s
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startServer(ctx, cancelFunc, name, s)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err.Error())
	}
	app.logger.Info(ctx, "App stopped")
}
