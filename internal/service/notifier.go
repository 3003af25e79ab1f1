package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/natours-api/internal/domain"
)

// ResetNotifier delivers password reset links to users.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, user *domain.User, resetURL string) error
}

// LogNotifier is a ResetNotifier that writes the reset link to the log
// instead of sending it. It is meant for development deployments without a
// mail transport.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier writing to logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With(slog.String("component", "reset_notifier"))}
}

// SendPasswordReset implements ResetNotifier.
func (n *LogNotifier) SendPasswordReset(ctx context.Context, user *domain.User, resetURL string) error {
	n.logger.InfoContext(ctx, "password reset requested",
		slog.String("user_id", user.ID.String()),
		slog.String("reset_url", resetURL),
		slog.String("message", "Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: "+resetURL))
	return nil
}
