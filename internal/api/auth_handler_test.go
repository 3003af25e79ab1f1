package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/natours-api/internal/api"
	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/fault"
	"github.com/phrazzld/natours-api/internal/mocks"
	"github.com/phrazzld/natours-api/internal/service"
)

const testToken = "header.payload.signature"

func newAuthRouter(t *testing.T, auth *mocks.MockAuthService, me *domain.User) http.Handler {
	t.Helper()
	h := api.NewAuthHandler(auth)
	rsp := newResponder(t)
	return newRouter(rsp, func(r chi.Router) {
		r.Route("/api/v1/users", func(r chi.Router) {
			r.Post("/signup", rsp.Handle(h.Signup))
			r.Post("/login", rsp.Handle(h.Login))
			r.Post("/forgotPassword", rsp.Handle(h.ForgotPassword))
			r.Patch("/resetPassword/{token}", rsp.Handle(h.ResetPassword))
			r.With(asUser(me)).Patch("/updateMyPassword", rsp.Handle(h.UpdatePassword))
		})
	})
}

func TestAuthHandler_Signup(t *testing.T) {
	var got service.SignupInput
	auth := &mocks.MockAuthService{
		SignupFn: func(ctx context.Context, in service.SignupInput) (*service.Session, error) {
			got = in
			user := leo()
			user.Name, user.Email = in.Name, in.Email
			return &service.Session{User: user, Token: testToken}, nil
		},
	}
	router := newAuthRouter(t, auth, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/users/signup", jsonBody(t, map[string]string{
		"name":            "Leo Gillespie",
		"email":           "leo@example.com",
		"password":        "pass1234",
		"passwordConfirm": "pass1234",
	}))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "pass1234", got.Password)
	assert.Equal(t, "pass1234", got.PasswordConfirm)

	body := decodeSuccess(t, rec)
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, testToken, body.Token)
	user := decodeData[map[string]any](t, body, "user")
	assert.Equal(t, "leo@example.com", user["email"])
	assert.NotContains(t, rec.Body.String(), "pass1234")
}

func TestAuthHandler_Login(t *testing.T) {
	auth := &mocks.MockAuthService{
		LoginFn: func(ctx context.Context, email, password string) (*service.Session, error) {
			switch {
			case email == "" || password == "":
				return nil, service.ErrMissingCredentials
			case password != "pass1234":
				return nil, service.ErrIncorrectCredentials
			}
			return &service.Session{User: leo(), Token: testToken}, nil
		},
	}
	router := newAuthRouter(t, auth, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"success", `{"email":"leo@example.com","password":"pass1234"}`, http.StatusOK, ""},
		{"missing password", `{"email":"leo@example.com"}`, http.StatusBadRequest, "Please provide email and password!"},
		{"wrong password", `{"email":"leo@example.com","password":"nope"}`, http.StatusUnauthorized, "Incorrect email or password"},
		{"empty body", "", http.StatusBadRequest, "Request body is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/v1/users/login", tt.body)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantMsg != "" {
				env := decodeFault(t, rec)
				assert.Equal(t, "fail", env.Status)
				assert.Equal(t, tt.wantMsg, env.Message)
				return
			}
			assert.Equal(t, testToken, decodeSuccess(t, rec).Token)
		})
	}
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	t.Run("sends a reset link for the request host", func(t *testing.T) {
		var link string
		auth := &mocks.MockAuthService{
			ForgotPasswordFn: func(ctx context.Context, email string, resetURL service.ResetURLFunc) error {
				link = resetURL("abc123")
				return nil
			},
		}
		router := newAuthRouter(t, auth, nil)

		rec := doRequest(t, router, http.MethodPost, "/api/v1/users/forgotPassword", `{"email":"leo@example.com"}`)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, api.ResetMessage, decodeSuccess(t, rec).Message)
		assert.Equal(t, "http://example.com/api/v1/users/resetPassword/abc123", link)
	})

	t.Run("unknown email", func(t *testing.T) {
		auth := &mocks.MockAuthService{
			ForgotPasswordFn: func(ctx context.Context, email string, resetURL service.ResetURLFunc) error {
				return service.ErrNoUserWithEmail
			},
		}
		router := newAuthRouter(t, auth, nil)

		rec := doRequest(t, router, http.MethodPost, "/api/v1/users/forgotPassword", `{"email":"who@example.com"}`)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "There is no user with that email address.", decodeFault(t, rec).Message)
	})

	t.Run("delivery failure", func(t *testing.T) {
		auth := &mocks.MockAuthService{
			ForgotPasswordFn: func(ctx context.Context, email string, resetURL service.ResetURLFunc) error {
				return service.ErrResetDelivery
			},
		}
		router := newAuthRouter(t, auth, nil)

		rec := doRequest(t, router, http.MethodPost, "/api/v1/users/forgotPassword", `{"email":"leo@example.com"}`)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		env := decodeFault(t, rec)
		assert.Equal(t, "error", env.Status)
		assert.Equal(t, "There was an error sending the email. Try again later!", env.Message)
	})
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	var gotToken string
	auth := &mocks.MockAuthService{
		ResetPasswordFn: func(ctx context.Context, token, password, confirm string) (*service.Session, error) {
			gotToken = token
			if token != "valid" {
				return nil, domain.ErrResetTokenExpired
			}
			return &service.Session{User: leo(), Token: testToken}, nil
		},
	}
	router := newAuthRouter(t, auth, nil)
	body := `{"password":"newpass123","passwordConfirm":"newpass123"}`

	rec := doRequest(t, router, http.MethodPatch, "/api/v1/users/resetPassword/valid", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "valid", gotToken)
	assert.Equal(t, testToken, decodeSuccess(t, rec).Token)

	rec = doRequest(t, router, http.MethodPatch, "/api/v1/users/resetPassword/stale", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Token is invalid or has expired", decodeFault(t, rec).Message)
}

func TestAuthHandler_UpdatePassword(t *testing.T) {
	me := leo()
	auth := &mocks.MockAuthService{
		UpdatePasswordFn: func(
			ctx context.Context,
			userID uuid.UUID,
			current, password, confirm string,
		) (*service.Session, error) {
			if userID != me.ID {
				return nil, fault.ErrInvalidToken
			}
			if current != "pass1234" {
				return nil, service.ErrWrongCurrentPassword
			}
			return &service.Session{User: me, Token: testToken}, nil
		},
	}

	t.Run("changes the password", func(t *testing.T) {
		router := newAuthRouter(t, auth, me)

		rec := doRequest(t, router, http.MethodPatch, "/api/v1/users/updateMyPassword",
			`{"passwordCurrent":"pass1234","password":"newpass123","passwordConfirm":"newpass123"}`)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, testToken, decodeSuccess(t, rec).Token)
	})

	t.Run("wrong current password", func(t *testing.T) {
		router := newAuthRouter(t, auth, me)

		rec := doRequest(t, router, http.MethodPatch, "/api/v1/users/updateMyPassword",
			`{"passwordCurrent":"guess","password":"newpass123","passwordConfirm":"newpass123"}`)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Your current password is wrong.", decodeFault(t, rec).Message)
	})

	t.Run("not logged in", func(t *testing.T) {
		router := newAuthRouter(t, auth, nil)

		rec := doRequest(t, router, http.MethodPatch, "/api/v1/users/updateMyPassword", `{}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
