// Package cli implements the interactive DocVault client: a small REPL for
// logging in, uploading files with live progress and browsing folders.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/docvault/internal/client/api"
	"github.com/dmitrijs2005/docvault/internal/client/config"
)

// App holds the REPL state: the API client carrying the access token and
// the I/O streams, swappable in tests.
type App struct {
	config *config.Config
	api    *api.Client

	in  *bufio.Reader
	out io.Writer

	login string
}

// NewApp constructs the client application.
func NewApp(cfg *config.Config) (*App, error) {
	return &App{
		config: cfg,
		api:    api.NewClient(cfg.ServerEndpointAddr, cfg.RequestTimeout),
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.login != ""
}

func (a *App) showLogin() string {
	if a.login == "" {
		return "(guest)"
	}
	return a.login
}

// Run starts the REPL and blocks until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	a.Main(ctx)
}
