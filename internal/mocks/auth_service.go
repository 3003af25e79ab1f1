package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/service"
)

// MockAuthService implements service.AuthService for testing. Every method
// delegates to its Fn field; an unset field returns zero values.
type MockAuthService struct {
	SignupFn         func(ctx context.Context, in service.SignupInput) (*service.Session, error)
	LoginFn          func(ctx context.Context, email, password string) (*service.Session, error)
	AuthenticateFn   func(ctx context.Context, token string) (*domain.User, error)
	ForgotPasswordFn func(ctx context.Context, email string, resetURL service.ResetURLFunc) error
	ResetPasswordFn  func(ctx context.Context, token, password, passwordConfirm string) (*service.Session, error)
	UpdatePasswordFn func(
		ctx context.Context,
		userID uuid.UUID,
		current, password, passwordConfirm string,
	) (*service.Session, error)
}

var _ service.AuthService = (*MockAuthService)(nil)

// Signup implements service.AuthService.
func (m *MockAuthService) Signup(ctx context.Context, in service.SignupInput) (*service.Session, error) {
	if m.SignupFn != nil {
		return m.SignupFn(ctx, in)
	}
	return nil, nil
}

// Login implements service.AuthService.
func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.Session, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, email, password)
	}
	return nil, nil
}

// Authenticate implements service.AuthService.
func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, token)
	}
	return nil, service.ErrNotLoggedIn
}

// ForgotPassword implements service.AuthService.
func (m *MockAuthService) ForgotPassword(ctx context.Context, email string, resetURL service.ResetURLFunc) error {
	if m.ForgotPasswordFn != nil {
		return m.ForgotPasswordFn(ctx, email, resetURL)
	}
	return nil
}

// ResetPassword implements service.AuthService.
func (m *MockAuthService) ResetPassword(
	ctx context.Context,
	token, password, passwordConfirm string,
) (*service.Session, error) {
	if m.ResetPasswordFn != nil {
		return m.ResetPasswordFn(ctx, token, password, passwordConfirm)
	}
	return nil, nil
}

// UpdatePassword implements service.AuthService.
func (m *MockAuthService) UpdatePassword(
	ctx context.Context,
	userID uuid.UUID,
	current, password, passwordConfirm string,
) (*service.Session, error) {
	if m.UpdatePasswordFn != nil {
		return m.UpdatePasswordFn(ctx, userID, current, password, passwordConfirm)
	}
	return nil, nil
}
