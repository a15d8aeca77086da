package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/loom/pkg/logger"
)

// NewMigrateCmd creates the migrate command.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply session store migrations",
		Long: `Migrate creates or updates the session table of the configured store.
SQLite stores are also migrated by serve; PostgreSQL stores only here.`,
		RunE: runMigrateCmd,
	}
	cmd.Flags().String("sessions", "", "session store: sqlite or postgres")
	return cmd
}

func runMigrateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	if driver, _ := cmd.Flags().GetString("sessions"); driver != "" {
		cfg.Session.Driver = driver
		if err := cfg.validate(); err != nil {
			return err
		}
	}

	log, err := logger.NewFromConfig(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := migrate(ctx, cfg, log); err != nil {
		return err
	}
	log.InfoContext(ctx, "migrations applied", "driver", cfg.Session.Driver)
	return nil
}
