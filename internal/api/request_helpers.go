package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/natours-api/internal/api/shared"
	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/fault"
	"github.com/phrazzld/natours-api/internal/service"
)

// idPath is the path reported for an identifier that does not parse.
const idPath = "_id"

// getPathUUID parses the named URL parameter as a UUID. A malformed value is
// reported as a CastError, like any other value of the wrong type.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &fault.CastError{Path: idPath, Value: raw, Err: err}
	}
	return id, nil
}

// getPathInt parses the named URL parameter as an integer.
func getPathInt(r *http.Request, paramName string) (int, error) {
	raw := chi.URLParam(r, paramName)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &fault.CastError{Path: paramName, Value: raw, Err: err}
	}
	return n, nil
}

// currentUser returns the user Protect stored in the request context.
func currentUser(r *http.Request) (*domain.User, error) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		return nil, service.ErrNotLoggedIn
	}
	return user, nil
}
