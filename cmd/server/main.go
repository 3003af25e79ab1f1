// Package main implements the entry point of the Natours API server, which
// serves the tour catalogue and user accounts over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/natours-api/internal/config"
	"github.com/phrazzld/natours-api/internal/platform/logger"
	"github.com/phrazzld/natours-api/internal/platform/postgres"
	"github.com/phrazzld/natours-api/internal/platform/storage"
	"github.com/phrazzld/natours-api/internal/redact"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "natours: %v\n", err)
		os.Exit(1)
	}
}

// run parses flags, loads configuration and either applies migrations or
// serves until ctx is cancelled or the process is signalled.
func run(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	migrate := flags.String("migrate", "",
		"run a migration command (up, down, status, reset) against postgres and exit")
	configDir := flags.String("config", ".", "directory holding an optional config.yaml")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadFrom(*configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server.LogLevel)
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("environment", cfg.Environment),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("driver", cfg.Database.Driver),
		slog.String("database_url", redact.URL(cfg.Database.URL)))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *migrate != "" {
		return runMigrations(ctx, cfg, *migrate, log)
	}

	b, err := storage.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(context.Background()); err != nil {
			log.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}()

	app, err := newApplication(cfg, log, b)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// errMigrateDriver is returned when -migrate is used with a backend that has
// no schema migrations.
var errMigrateDriver = errors.New("migrations apply to the postgres driver only")

func runMigrations(ctx context.Context, cfg *config.Config, command string, log *slog.Logger) error {
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("%w (driver %q)", errMigrateDriver, cfg.Database.Driver)
	}

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	log.Info("running migrations", slog.String("command", command))
	if err := postgres.Migrate(ctx, db, command, log); err != nil {
		return err
	}
	log.Info("migrations finished", slog.String("command", command))
	return nil
}
