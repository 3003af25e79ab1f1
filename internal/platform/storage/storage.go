// Package storage opens the configured database and builds the tour and
// user stores over it.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/natours-api/internal/config"
	"github.com/phrazzld/natours-api/internal/platform/mongodb"
	"github.com/phrazzld/natours-api/internal/platform/postgres"
	"github.com/phrazzld/natours-api/internal/store"
)

// Backend is the set of stores of one database connection.
type Backend struct {
	Tours store.TourStore
	Users store.UserStore

	close func(ctx context.Context) error
}

// NewBackend assembles a Backend from existing stores. closeFn may be nil.
func NewBackend(tours store.TourStore, users store.UserStore, closeFn func(ctx context.Context) error) *Backend {
	return &Backend{Tours: tours, Users: users, close: closeFn}
}

// Close releases the underlying connection.
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open connects to the driver named in cfg.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*Backend, error) {
	if log == nil {
		log = slog.Default()
	}

	switch cfg.Driver {
	case config.DriverMongo:
		db, err := mongodb.Open(ctx, cfg.URL, cfg.Name, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		log.Info("database connection established",
			slog.String("driver", cfg.Driver),
			slog.String("database", cfg.Name))
		return NewBackend(
			mongodb.NewMongoTourStore(db.Database, log),
			mongodb.NewMongoUserStore(db.Database, log),
			db.Close,
		), nil

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		log.Info("database connection established", slog.String("driver", cfg.Driver))
		return NewBackend(
			postgres.NewPostgresTourStore(db, log),
			postgres.NewPostgresUserStore(db, log),
			func(context.Context) error { return db.Close() },
		), nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
