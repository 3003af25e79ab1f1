package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/natours-api/internal/fault"
	"github.com/phrazzld/natours-api/internal/platform/logger"
	"github.com/phrazzld/natours-api/internal/redact"
)

// StatusSuccess is the status of every successful envelope.
const StatusSuccess = "success"

// SuccessResponse is the JSON body of every successful response.
type SuccessResponse struct {
	Status  string `json:"status"`
	Token   string `json:"token,omitempty"`
	Results *int   `json:"results,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// RespondWithData writes a success envelope with data keyed by name, e.g.
// {"status":"success","data":{"tour":{...}}}.
func RespondWithData(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	RespondWithJSON(w, r, status, SuccessResponse{
		Status: StatusSuccess,
		Data:   map[string]any{name: data},
	})
}

// RespondWithList writes a success envelope carrying a result count.
func RespondWithList[T any](w http.ResponseWriter, r *http.Request, name string, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	RespondWithJSON(w, r, http.StatusOK, SuccessResponse{
		Status:  StatusSuccess,
		Results: &n,
		Data:    map[string]any{name: items},
	})
}

// RespondWithMessage writes a success envelope carrying only a message.
func RespondWithMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondWithJSON(w, r, status, SuccessResponse{Status: StatusSuccess, Message: message})
}

// RespondNoContent writes an empty 204 response.
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// FaultObserver counts error responses by fault kind.
type FaultObserver interface {
	ObserveFault(kind fault.Kind)
}

// HandlerFunc is an HTTP handler that reports failure by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ErrorResponder turns any error into an error envelope. It is the single
// place errors leave the service.
type ErrorResponder struct {
	Mode    fault.Mode
	Logger  *slog.Logger
	Metrics FaultObserver

	// Translate, if set, rewrites an error before it is classified, e.g.
	// to turn service sentinels into faults with client messages.
	Translate func(error) error
}

// NewErrorResponder creates a responder for mode. metrics may be nil.
func NewErrorResponder(mode fault.Mode, log *slog.Logger, metrics FaultObserver) *ErrorResponder {
	if log == nil {
		log = slog.Default()
	}
	return &ErrorResponder{Mode: mode, Logger: log, Metrics: metrics}
}

// Handle adapts fn to http.HandlerFunc, sending any returned error through
// the responder.
func (rsp *ErrorResponder) Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			rsp.Respond(w, r, err)
		}
	}
}

// Respond classifies err, logs it and writes the error envelope.
//
// Log levels:
//   - unexpected faults and 5xx: ERROR, with the unredacted error and stack
//   - 429 Too Many Requests: WARN
//   - other client faults: DEBUG, redacted
func (rsp *ErrorResponder) Respond(w http.ResponseWriter, r *http.Request, err error) {
	if rsp.Translate != nil {
		err = rsp.Translate(err)
	}
	res := fault.Classify(err, rsp.Mode)

	log := logger.FromContextOrDefault(r.Context(), rsp.Logger)
	attrs := []slog.Attr{
		slog.String("trace_id", GetTraceID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status_code", res.StatusCode),
		slog.String("fault_kind", string(res.Kind)),
	}

	switch {
	case res.Unexpected || res.StatusCode >= http.StatusInternalServerError:
		attrs = append(attrs,
			slog.String("error", errorString(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)),
			slog.String("stack", fault.StackOf(err)),
		)
		log.LogAttrs(r.Context(), slog.LevelError, "unexpected error", attrs...)
	case res.StatusCode == http.StatusTooManyRequests:
		attrs = append(attrs, slog.String("error", redact.Error(err)))
		log.LogAttrs(r.Context(), slog.LevelWarn, "API error response", attrs...)
	default:
		attrs = append(attrs, slog.String("error", redact.Error(err)))
		log.LogAttrs(r.Context(), slog.LevelDebug, "API error response", attrs...)
	}

	if rsp.Metrics != nil {
		rsp.Metrics.ObserveFault(res.Kind)
	}

	RespondWithJSON(w, r, res.StatusCode, res.Envelope)
}

func errorString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
