// Package servecmd implements the `hotorflop serve` command.
package servecmd

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"hotorflop/cmd/hotorflop/shared"
	"hotorflop/internal/middleware"
	"hotorflop/internal/observability"
	"hotorflop/internal/server"
)

const shutdownTimeout = 10 * time.Second

// Command implements `hotorflop serve`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the serve command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	cfg := c.ctx.Config

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "hotorflop-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		return err
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return errors.Join(err, logged("tracing", shutdownTracing(context.Background())))
	}

	return serve(cmd.Context(), srv, shutdownTracing)
}

// runner is the part of *server.Server that serve drives.
type runner interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// serve runs srv until it fails or ctx is done, then releases srv and tracing
// on either path.
func serve(ctx context.Context, srv runner, shutdownTracing func(context.Context) error) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	var startErr error
	select {
	case startErr = <-errCh:
		if startErr != nil {
			middleware.Logger.Error("server stopped", slog.String("error", startErr.Error()))
		}
	case <-ctx.Done():
		middleware.Logger.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(
		startErr,
		srv.Shutdown(shutdownCtx),
		logged("tracing", shutdownTracing(shutdownCtx)),
	)
}

func logged(what string, err error) error {
	if err != nil {
		middleware.Logger.Error("shutdown failed", slog.String("component", what), slog.String("error", err.Error()))
	}
	return err
}
