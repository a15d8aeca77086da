package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loom",
		Short: "Component web engine demo server",
		Long: `loom serves a guestbook built from stateful page components.

Sessions live in memory, in a SQLite file under the XDG data directory
(the default) or in PostgreSQL. Redirect buffers can be kept in Redis so
several instances can share them.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "settings file (default: loom/settings.yaml in the XDG config dirs)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewRoutesCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configFromFlags loads the file named by --config, or the XDG one.
func configFromFlags(cmd *cobra.Command) (Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return Config{}, err
	}
	return LoadConfig(path)
}
