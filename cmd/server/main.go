// Package main is the entry point for the HanXue API server.
//
// The binary has two commands: serve (the default) runs the HTTP API and the
// background jobs, migrate applies or inspects the database schema.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hanxue/hanxue-api/internal/config"
	"github.com/hanxue/hanxue-api/internal/platform/logger"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. The root command runs serve.
func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "hanxue",
		Short:         "HanXue vocabulary review API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configFile)
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a config file (default ./config.yaml)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configFile)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:       "migrate [up|down|status|version|reset]",
		Short:     "Manage the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: migrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadAppConfig(configFile)
			if err != nil {
				return err
			}
			return runMigrations(cmd.Context(), cfg, log, args[0])
		},
	})

	return root
}

// loadAppConfig reads configuration and installs the process logger.
func loadAppConfig(configFile string) (*config.Config, *slog.Logger, error) {
	opts := config.DefaultOptions()
	opts.ConfigFile = configFile

	cfg, err := config.LoadWithOptions(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, log, nil
}

func runServe(ctx context.Context, configFile string) error {
	cfg, log, err := loadAppConfig(configFile)
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return err
	}
	return app.Run(ctx)
}
