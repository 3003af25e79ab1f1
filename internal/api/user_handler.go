package api

import (
	"net/http"

	"github.com/phrazzld/natours-api/internal/api/shared"
	"github.com/phrazzld/natours-api/internal/query"
	"github.com/phrazzld/natours-api/internal/service"
)

// UserHandler handles the user management endpoints.
type UserHandler struct {
	users service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ListUsers handles GET /users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := h.users.ListUsers(r.Context(), query.ParamsFromValues(r.URL.Query()))
	if err != nil {
		return err
	}
	shared.RespondWithList(w, r, "users", users)
	return nil
}

// GetUser handles GET /users/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) error {
	id, err := getPathUUID(r, "id")
	if err != nil {
		return err
	}
	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		return err
	}
	shared.RespondWithData(w, r, http.StatusOK, "user", user)
	return nil
}

// UpdateUser handles PATCH /users/{id}.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) error {
	id, err := getPathUUID(r, "id")
	if err != nil {
		return err
	}
	patch, err := shared.DecodePatch(w, r)
	if err != nil {
		return err
	}
	user, err := h.users.UpdateUser(r.Context(), id, patch)
	if err != nil {
		return err
	}
	shared.RespondWithData(w, r, http.StatusOK, "user", user)
	return nil
}

// DeleteUser handles DELETE /users/{id}.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) error {
	id, err := getPathUUID(r, "id")
	if err != nil {
		return err
	}
	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		return err
	}
	shared.RespondNoContent(w)
	return nil
}

// GetMe handles GET /users/me.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) error {
	me, err := currentUser(r)
	if err != nil {
		return err
	}
	user, err := h.users.GetUser(r.Context(), me.ID)
	if err != nil {
		return err
	}
	shared.RespondWithData(w, r, http.StatusOK, "user", user)
	return nil
}

// UpdateMe handles PATCH /users/updateMe.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) error {
	me, err := currentUser(r)
	if err != nil {
		return err
	}
	patch, err := shared.DecodePatch(w, r)
	if err != nil {
		return err
	}
	user, err := h.users.UpdateMe(r.Context(), me.ID, patch)
	if err != nil {
		return err
	}
	shared.RespondWithData(w, r, http.StatusOK, "user", user)
	return nil
}

// DeleteMe handles DELETE /users/deleteMe. The account is deactivated, not
// removed.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) error {
	me, err := currentUser(r)
	if err != nil {
		return err
	}
	if err := h.users.DeleteMe(r.Context(), me.ID); err != nil {
		return err
	}
	shared.RespondNoContent(w)
	return nil
}
