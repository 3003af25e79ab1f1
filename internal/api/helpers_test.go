package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/natours-api/internal/api"
	"github.com/phrazzld/natours-api/internal/api/shared"
	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/fault"
	"github.com/phrazzld/natours-api/internal/platform/logger"
)

func newResponder(t *testing.T) *shared.ErrorResponder {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	rsp := shared.NewErrorResponder(fault.ModeProduction, log, nil)
	rsp.Translate = api.MapError
	return rsp
}

// asUser injects user into every request, standing in for Protect.
func asUser(user *domain.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user != nil {
				r = r.WithContext(shared.WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body)).WithContext(context.Background())
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// successBody is the decoded form of a success envelope.
type successBody struct {
	Status  string                     `json:"status"`
	Token   string                     `json:"token"`
	Results *int                       `json:"results"`
	Message string                     `json:"message"`
	Data    map[string]json.RawMessage `json:"data"`
}

func decodeSuccess(t *testing.T, rec *httptest.ResponseRecorder) successBody {
	t.Helper()
	var body successBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func decodeData[T any](t *testing.T, body successBody, name string) T {
	t.Helper()
	raw, ok := body.Data[name]
	require.True(t, ok, "missing data.%s", name)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func decodeFault(t *testing.T, rec *httptest.ResponseRecorder) fault.Envelope {
	t.Helper()
	var env fault.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func newRouter(rsp *shared.ErrorResponder, mount func(r chi.Router)) http.Handler {
	r := chi.NewRouter()
	mount(r)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		rsp.Respond(w, req, fault.Errorf(http.StatusNotFound, "Can't find %s on this server!", req.URL.Path))
	})
	return r
}

func jsonBody(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}
