// Package cli is the interactive identity client: a small REPL over the
// gRPC identity API.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/chatandpay/internal/client/client"
	"github.com/dmitrijs2005/chatandpay/internal/client/config"
)

// IdentityAPI is the subset of the gRPC client the commands use.
type IdentityAPI interface {
	Register(ctx context.Context, name, phone string) (*client.User, error)
	Login(ctx context.Context, loginHandle string, password []byte) (*client.User, error)
	StartPhoneAuth(ctx context.Context, phone string) error
	ConfirmPhoneAuth(ctx context.Context, phone, code string) (*client.User, error)
	UpdateProfile(ctx context.Context, id int64, loginHandle *string, password []byte, phone string) (*client.User, error)
	DeleteUser(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
	Logout()
	Close() error
}

type App struct {
	config *config.Config
	api    IdentityAPI
	reader *bufio.Reader
	out    io.Writer
	user   *client.User
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewIdentityClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}
	return &App{config: c, api: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.api.Close()
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

func (a *App) getStatus() string {
	if a.user == nil {
		return ""
	}
	name := a.user.Phone
	if a.user.LoginHandle != nil {
		name = *a.user.LoginHandle
	}
	return "(" + name + ")"
}

// withTimeout bounds one server call by the configured request timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := 5 * time.Second
	if a.config != nil && a.config.RequestTimeout > 0 {
		timeout = a.config.RequestTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
