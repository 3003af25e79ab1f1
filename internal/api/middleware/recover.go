package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/phrazzld/natours-api/internal/api/shared"
	"github.com/phrazzld/natours-api/internal/fault"
)

// Recoverer turns a panic in a handler into an unexpected fault, so it is
// logged and answered like any other error. http.ErrAbortHandler is
// re-raised for the server to handle.
func Recoverer(responder *shared.ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				responder.Respond(w, r, &fault.PanicError{Value: v, Stack: string(debug.Stack())})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
