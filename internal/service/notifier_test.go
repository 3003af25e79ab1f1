package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/platform/logger"
	"github.com/phrazzld/natours-api/internal/service"
)

func TestLogNotifier(t *testing.T) {
	log, buf := logger.NewTestLogger(t)
	n := service.NewLogNotifier(log)

	user := &domain.User{ID: uuid.New(), Email: "leo@example.com"}
	require.NoError(t, n.SendPasswordReset(context.Background(), user, "http://localhost/reset/abc"))

	logger.AssertLogContains(t, buf, "password reset requested")
	logger.AssertLogContains(t, buf, "http://localhost/reset/abc")
}
