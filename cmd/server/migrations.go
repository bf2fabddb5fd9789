package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/config"
	"github.com/hanxue/hanxue-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
)

// MigrationTableName is the table goose tracks applied versions in.
const MigrationTableName = "schema_migrations"

// migrationCommands lists the accepted arguments of the migrate command.
var migrationCommands = []string{"up", "down", "status", "version", "reset"}

// gooseMu guards goose's package-level settings.
var gooseMu sync.Mutex

// slogGooseLogger adapts goose's logger to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

var _ goose.Logger = (*slogGooseLogger)(nil)

// Printf forwards goose progress output at info level.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs at error level. It does not exit; the error reaches main
// through the goose call's return value.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// runMigrations connects to cfg.Database and executes command.
func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string) error {
	migrationLogger := logger.With(
		slog.String("component", "migrations"),
		slog.String("correlation_id", uuid.NewString()),
		slog.String("command", command),
	)

	db, err := openDatabase(ctx, cfg.Database, migrationLogger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			migrationLogger.Error("failed to close database", slog.String("error", cerr.Error()))
		}
	}()

	return executeMigration(ctx, db, migrationLogger, command)
}

// executeMigration runs one goose command against db using the embedded
// migration files.
func executeMigration(ctx context.Context, db *sql.DB, logger *slog.Logger, command string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(&slogGooseLogger{logger: logger})
	goose.SetBaseFS(postgres.Migrations)
	goose.SetTableName(MigrationTableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	dir := postgres.MigrationsDir
	logger.Info("running migration command")

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, db, dir)
	case "down":
		err = goose.DownContext(ctx, db, dir)
	case "status":
		err = goose.StatusContext(ctx, db, dir)
	case "version":
		var version int64
		version, err = goose.GetDBVersionContext(ctx, db)
		if err == nil {
			logger.Info("current schema version", slog.Int64("version", version))
		}
	case "reset":
		err = goose.ResetContext(ctx, db, dir)
	default:
		return fmt.Errorf("unknown migration command %q (want one of %s)",
			command, strings.Join(migrationCommands, ", "))
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	logger.Info("migration command completed")
	return nil
}
