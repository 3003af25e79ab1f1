package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/natours-api/internal/api/shared"
	"github.com/phrazzld/natours-api/internal/service"
)

// ResetPasswordPath is the route prefix of the link sent in reset emails.
const ResetPasswordPath = "/api/v1/users/resetPassword/"

// ResetMessage is returned once a reset link has been handed to the notifier.
const ResetMessage = "Token sent to email!"

// AuthHandler handles signup, login and password management.
type AuthHandler struct {
	auth service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup handles POST /users/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) error {
	var req service.SignupInput
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	session, err := h.auth.Signup(r.Context(), req)
	if err != nil {
		return err
	}
	respondWithSession(w, r, http.StatusCreated, session)
	return nil
}

// Login handles POST /users/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	respondWithSession(w, r, http.StatusOK, session)
	return nil
}

// ForgotPassword handles POST /users/forgotPassword.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) error {
	var req ForgotPasswordRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	if err := h.auth.ForgotPassword(r.Context(), req.Email, resetURL(r)); err != nil {
		return err
	}
	shared.RespondWithMessage(w, r, http.StatusOK, ResetMessage)
	return nil
}

// ResetPassword handles PATCH /users/resetPassword/{token}.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) error {
	var req ResetPasswordRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	session, err := h.auth.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}
	respondWithSession(w, r, http.StatusOK, session)
	return nil
}

// UpdatePassword handles PATCH /users/updateMyPassword.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) error {
	me, err := currentUser(r)
	if err != nil {
		return err
	}
	var req UpdatePasswordRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	session, err := h.auth.UpdatePassword(r.Context(), me.ID, req.PasswordCurrent, req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}
	respondWithSession(w, r, http.StatusOK, session)
	return nil
}

func respondWithSession(w http.ResponseWriter, r *http.Request, status int, session *service.Session) {
	shared.RespondWithJSON(w, r, status, shared.SuccessResponse{
		Status: shared.StatusSuccess,
		Token:  session.Token,
		Data:   map[string]any{"user": session.User},
	})
}

// resetURL builds reset links against the host the request was sent to.
func resetURL(r *http.Request) service.ResetURLFunc {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return func(token string) string {
		return fmt.Sprintf("%s://%s%s%s", scheme, r.Host, ResetPasswordPath, token)
	}
}
