package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/loom"
	"github.com/dmitrymomot/loom/cmd/loom/guestbook"
	"github.com/dmitrymomot/loom/middlewares"
	"github.com/dmitrymomot/loom/pkg/logger"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the guestbook",
		Long: `Serve starts the HTTP server and blocks until SIGINT or SIGTERM.

Examples:
  # Serve with SQLite sessions under the XDG data directory
  loom serve

  # Serve on another address with in-memory sessions
  loom serve --addr :3000 --sessions memory`,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", "", "listen address (overrides the settings file)")
	cmd.Flags().String("sessions", "", "session store: memory, sqlite or postgres")
	cmd.Flags().Duration("shutdown-timeout", 30*time.Second, "graceful shutdown timeout")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}
	if driver, _ := cmd.Flags().GetString("sessions"); driver != "" {
		cfg.Session.Driver = driver
		if err := cfg.validate(); err != nil {
			return err
		}
	}
	shutdownTimeout, err := cmd.Flags().GetDuration("shutdown-timeout")
	if err != nil {
		return err
	}

	log, err := logger.NewFromConfig(cfg.Log, os.Stdout, middlewares.RequestIDExtractor())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open backends: %w", err)
	}

	msgs, err := guestbook.Messages()
	if err != nil {
		_ = b.Close(ctx)
		return err
	}
	app := buildApp(cfg, log, b, guestbook.NewBook(), msgs)

	log.InfoContext(ctx, "starting loom",
		"addr", cfg.Addr,
		"sessions", cfg.Session.Driver,
		"render_strategy", cfg.Engine.RenderStrategy.String(),
	)
	return app.Run(cfg.Addr,
		loom.Logger(log),
		loom.ShutdownTimeout(shutdownTimeout),
		loom.ShutdownHook(b.Close),
	)
}
