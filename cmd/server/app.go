package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/natours-api/internal/api"
	"github.com/phrazzld/natours-api/internal/api/shared"
	"github.com/phrazzld/natours-api/internal/config"
	"github.com/phrazzld/natours-api/internal/fault"
	"github.com/phrazzld/natours-api/internal/platform/metrics"
	"github.com/phrazzld/natours-api/internal/platform/storage"
	"github.com/phrazzld/natours-api/internal/service"
	"github.com/phrazzld/natours-api/internal/service/auth"
)

// application holds the shared dependencies of the HTTP server.
type application struct {
	config *config.Config
	logger *slog.Logger

	tourService service.TourService
	userService service.UserService
	authService service.AuthService

	metrics   *metrics.Metrics
	responder *shared.ErrorResponder
}

// newApplication wires services over the stores of b.
func newApplication(cfg *config.Config, logger *slog.Logger, b *storage.Backend) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.authService, err = service.NewAuthService(
		b.Users,
		jwtService,
		auth.NewBcryptHasher(cfg.Auth.BCryptCost),
		service.NewLogNotifier(logger),
		service.AuthServiceConfig{ResetTokenLifetime: cfg.Auth.ResetTokenLifetime()},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	app.tourService, err = service.NewTourService(b.Tours, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create tour service: %w", err)
	}

	app.userService, err = service.NewUserService(b.Users, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	mode := fault.ParseMode(cfg.Environment)
	app.responder = shared.NewErrorResponder(mode, logger, app.metrics)
	app.responder.Translate = api.MapError
	if mode == fault.ModeDevelopment {
		logger.Warn("development mode: error responses include diagnostic detail")
	}

	logger.Info("application initialized")
	return app, nil
}

// Run serves the API until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
