package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/natours-api/internal/config"
	"github.com/phrazzld/natours-api/internal/fault"
	"github.com/phrazzld/natours-api/internal/mocks"
	"github.com/phrazzld/natours-api/internal/platform/logger"
	"github.com/phrazzld/natours-api/internal/platform/storage"
)

const testJWTSecret = "thisisasecretkeythatis32charslong!!"

func testConfig() *config.Config {
	return &config.Config{
		Environment: "production",
		Server: config.ServerConfig{
			Port:                   3000,
			LogLevel:               "debug",
			ShutdownTimeoutSeconds: 5,
		},
		Database: config.DatabaseConfig{
			Driver: config.DriverPostgres,
			URL:    "postgres://localhost:5432/natours",
			Name:   "natours",
		},
		Auth: config.AuthConfig{
			JWTSecret:                 testJWTSecret,
			TokenLifetimeMinutes:      60,
			BCryptCost:                4,
			ResetTokenLifetimeMinutes: 10,
		},
		RateLimit: config.RateLimitConfig{Requests: 100, WindowMinutes: 60},
	}
}

// testApp wires the application over in-memory stores.
type testApp struct {
	app    *application
	tours  *mocks.MockTourStore
	users  *mocks.MockUserStore
	router http.Handler
	logs   *logger.TestLogBuffer
}

func newTestApp(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()
	log, logs := logger.NewTestLogger(t)
	tours := mocks.NewMockTourStore()
	users := mocks.NewMockUserStore()

	app, err := newApplication(cfg, log, storage.NewBackend(tours, users, nil))
	require.NoError(t, err)

	return &testApp{app: app, tours: tours, users: users, router: app.setupRouter(), logs: logs}
}

func (ta *testApp) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body)).WithContext(context.Background())
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	ta.router.ServeHTTP(rec, req)
	return rec
}

// signup registers a user and returns its token.
func (ta *testApp) signup(t *testing.T, email string) string {
	t.Helper()
	rec := ta.do(t, http.MethodPost, "/api/v1/users/signup",
		`{"name":"Test User","email":"`+email+`","password":"pass1234","passwordConfirm":"pass1234"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) fault.Envelope {
	t.Helper()
	var env fault.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}
