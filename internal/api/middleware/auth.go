package middleware

import (
	"net/http"
	"strings"

	"github.com/phrazzld/natours-api/internal/api/shared"
	"github.com/phrazzld/natours-api/internal/platform/logger"
	"github.com/phrazzld/natours-api/internal/service"
)

// bearerPrefix introduces a token in the Authorization header.
const bearerPrefix = "Bearer "

// AuthMiddleware guards routes behind a valid token and role checks.
type AuthMiddleware struct {
	auth      service.AuthService
	responder *shared.ErrorResponder
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(auth service.AuthService, responder *shared.ErrorResponder) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, responder: responder}
}

// Protect resolves the bearer token to its user and stores the user in the
// request context. Requests without a valid token are rejected.
func (m *AuthMiddleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.auth.Authenticate(r.Context(), BearerToken(r))
		if err != nil {
			m.responder.Respond(w, r, err)
			return
		}

		log := logger.FromContext(r.Context()).With("user_id", user.ID.String())
		ctx := logger.WithLogger(shared.WithUser(r.Context(), user), log)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RestrictTo only lets users holding one of roles through. It must run
// after Protect.
func (m *AuthMiddleware) RestrictTo(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := shared.UserFromContext(r.Context())
			if !ok {
				m.responder.Respond(w, r, service.ErrNotLoggedIn)
				return
			}
			if !user.HasRole(roles...) {
				m.responder.Respond(w, r, service.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken returns the token of a "Bearer <token>" Authorization header,
// or "" if there is none.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(h[len(bearerPrefix):])
}
