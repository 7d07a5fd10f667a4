package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/riff/internal/identity"
	"github.com/desertthunder/riff/internal/server"
	"github.com/desertthunder/riff/internal/session"
	"github.com/desertthunder/riff/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP server until interrupted.
//
// The login endpoints are disabled when no identity provider is configured.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if host := cmd.String("host"); host != "" {
		r.config.Server.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		r.config.Server.Port = port
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := r.open(ctx); err != nil {
		return err
	}

	var auth identity.Authenticator
	if err := r.config.ValidateIdentity(); err != nil {
		r.logger.Warn("identity provider not configured, login disabled", "error", err)
	} else {
		provider, err := identity.NewOIDCProvider(ctx, r.config.Identity, shared.WithLogger(r.logger, "component", "oidc"))
		if err != nil {
			return fmt.Errorf("failed to initialize identity provider: %w", err)
		}
		auth = provider
	}

	sessions, closeSessions, err := session.NewStore(ctx, r.config)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	defer func() {
		if err := closeSessions(); err != nil {
			r.logger.Warn("failed to close session store", "error", err)
		}
	}()

	srv := server.New(server.Deps{
		Config:    r.config,
		Logger:    shared.WithLogger(r.logger, "component", "http"),
		Users:     r.users,
		Favorites: r.favorites,
		Sessions:  sessions,
		Auth:      auth,
		Metrics:   r.metrics,
	})

	r.logger.Info("starting server", "addr", r.config.Server.Addr(), "sessions", sessionBackend(r.config))
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	r.logger.Info("server stopped")
	return nil
}

func sessionBackend(c *shared.Config) string {
	if c.Session.Backend == "" {
		return "memory"
	}
	return c.Session.Backend
}
