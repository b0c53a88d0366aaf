package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"carrinho/internal/config"
	"carrinho/internal/outbox"
	"carrinho/internal/remote"
	"carrinho/internal/service"
	"carrinho/internal/session"
	"carrinho/internal/store"
	"carrinho/internal/sync"
)

// app bundles the wired-up collaborators a command needs. Close it.
type app struct {
	cfg   config.Config
	store *store.Store
	queue *outbox.Queue
	svc   *service.Service
}

func (o *RootOptions) openApp() (*app, error) {
	cfg, err := config.Load(o.EnvFile, o.PolicyFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load configuration", err)
	}
	if o.Database != "" {
		cfg.DBPath = o.Database
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, WrapExitError(ExitCommandError, "create database directory", err)
		}
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}

	queue := outbox.New(s)
	return &app{
		cfg:   cfg,
		store: s,
		queue: queue,
		svc:   service.New(s, queue),
	}, nil
}

func (a *app) close() {
	a.store.Close()
}

// newEngine wires the sync stack. The session comes from the configured
// access token; commands that need a live remote fail fast without one.
func (a *app) newEngine() (*sync.Engine, *session.Manager, error) {
	if a.cfg.RemoteURL == "" {
		return nil, nil, NewExitError(ExitCommandError, "no remote configured: set "+config.EnvRemoteURL)
	}

	sessions := session.NewManager()
	if a.cfg.AccessToken != "" {
		if err := sessions.SetToken(a.cfg.AccessToken); err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "access token rejected", err)
		}
	}

	client := remote.NewHTTPClient(remote.Config{
		BaseURL: a.cfg.RemoteURL,
		APIKey:  a.cfg.APIKey,
		Token:   sessions.Token,
	})
	conn := session.NewConnectivity()
	engine := sync.New(a.store, a.queue, client, sessions, conn, a.cfg.Policy)
	return engine, sessions, nil
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// today is the default cart date for commands taking --date.
func today() string {
	return time.Now().Format("2006-01-02")
}

// cartForDate resolves a date flag to an existing cart.
func (a *app) cartForDate(cmd *cobra.Command, date string) (string, error) {
	cart, err := a.store.CartByDate(cmd.Context(), date)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "look up cart", err)
	}
	if cart == nil {
		return "", NewExitError(ExitFailure, fmt.Sprintf("no cart for %s", date))
	}
	return cart.ID, nil
}
