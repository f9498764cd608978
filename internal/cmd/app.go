package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/config"
	"github.com/lexai-app/lexai/internal/errors"
	"github.com/lexai-app/lexai/internal/logging"
	"github.com/lexai-app/lexai/internal/session"
	"github.com/lexai-app/lexai/internal/store"
)

// app is the wiring shared by every command that talks to the backend.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	store  store.Store
	shell  *session.Shell
	client *api.Client
}

// openApp loads the configuration, opens the store and restores the stored
// session. The client reads its bearer token from the shell.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := createLogger(cfg)

	st, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}

	shell := session.NewShell(st, logger)
	client := api.New(cfg.Backend.URL,
		api.WithTimeout(cfg.Backend.Timeout()),
		api.WithTokenSource(shell),
		api.WithLogger(logger),
	)
	shell.SetAuthenticator(client)
	shell.Restore(ctx)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  st,
		shell:  shell,
		client: client,
	}, nil
}

// Close releases the store and flushes the log.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", "error", err.Error())
	}
	_ = a.logger.Close()
}

// requireSession fails when nobody is signed in.
func (a *app) requireSession() error {
	if !a.shell.Authenticated() {
		return fmt.Errorf("%w: run 'lexai login' first", errors.ErrNotAuthenticated)
	}
	return nil
}

// backendError adds context to a failed backend call. The stored token is
// never checked locally, so a rejected one is reported with a way out.
func backendError(what string, err error) error {
	if errors.Is(err, errors.ErrUnauthorized) {
		return errors.Wrap(err, what+" (the backend rejected the stored session; run 'lexai login' again)")
	}
	return errors.Wrap(err, what)
}

// createLogger creates a logger if logging is enabled in config.
// Returns a NopLogger if logging is disabled or if creation fails.
func createLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}

	rotation := logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}
	logger, err := logging.NewLoggerWithRotation(cfg.Storage.ResolveDir(), cfg.Logging.Level, rotation)
	if err != nil {
		// Log creation failure shouldn't prevent the client from starting
		fmt.Fprintf(os.Stderr, "Warning: failed to create logger: %v\n", err)
		return logging.NopLogger()
	}
	return logger
}
