package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/service/auth"
	"github.com/phrazzld/natours-api/internal/store"
)

// DefaultResetTokenLifetime is how long a password reset token stays valid
// when no lifetime is configured.
const DefaultResetTokenLifetime = 10 * time.Minute

// SignupInput is the data a new account is registered with.
type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Photo           string `json:"photo"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Session is an authenticated user and the token proving it.
type Session struct {
	User  *domain.User
	Token string
}

// ResetURLFunc builds the link a user follows to reset their password.
type ResetURLFunc func(token string) string

// AuthService provides registration, login, token verification and
// password management.
type AuthService interface {
	// Signup registers a user and logs them in.
	Signup(ctx context.Context, in SignupInput) (*Session, error)

	// Login checks credentials and issues a token.
	Login(ctx context.Context, email, password string) (*Session, error)

	// Authenticate resolves a token to its user. The user must still
	// exist and must not have changed their password since the token was
	// issued.
	Authenticate(ctx context.Context, token string) (*domain.User, error)

	// ForgotPassword issues a reset token and sends the reset link.
	ForgotPassword(ctx context.Context, email string, resetURL ResetURLFunc) error

	// ResetPassword sets a new password using a reset token.
	ResetPassword(ctx context.Context, token, password, passwordConfirm string) (*Session, error)

	// UpdatePassword changes the password of a logged in user who proves
	// knowledge of the current one.
	UpdatePassword(
		ctx context.Context,
		userID uuid.UUID,
		current, password, passwordConfirm string,
	) (*Session, error)
}

// AuthServiceConfig holds the tunables of an AuthService.
type AuthServiceConfig struct {
	// ResetTokenLifetime defaults to DefaultResetTokenLifetime.
	ResetTokenLifetime time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// AuthServiceImpl implements the AuthService interface
type AuthServiceImpl struct {
	users    store.UserStore
	tokens   auth.JWTService
	hasher   auth.PasswordHasher
	notifier ResetNotifier
	resetTTL time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewAuthService creates an AuthService. It fails if a dependency is
// missing.
func NewAuthService(
	users store.UserStore,
	tokens auth.JWTService,
	hasher auth.PasswordHasher,
	notifier ResetNotifier,
	cfg AuthServiceConfig,
	logger *slog.Logger,
) (AuthService, error) {
	switch {
	case users == nil:
		return nil, fmt.Errorf("%w: user store", ErrMissingDependency)
	case tokens == nil:
		return nil, fmt.Errorf("%w: jwt service", ErrMissingDependency)
	case hasher == nil:
		return nil, fmt.Errorf("%w: password hasher", ErrMissingDependency)
	case notifier == nil:
		return nil, fmt.Errorf("%w: reset notifier", ErrMissingDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ResetTokenLifetime <= 0 {
		cfg.ResetTokenLifetime = DefaultResetTokenLifetime
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &AuthServiceImpl{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		notifier: notifier,
		resetTTL: cfg.ResetTokenLifetime,
		now:      cfg.Now,
		logger:   logger.With(slog.String("component", "auth_service")),
	}, nil
}

// Signup implements AuthService. New accounts always get the user role.
func (s *AuthServiceImpl) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	user := &domain.User{
		Name:            in.Name,
		Email:           in.Email,
		Photo:           in.Photo,
		Password:        in.Password,
		PasswordConfirm: in.PasswordConfirm,
		Active:          true,
	}
	user.Prepare(s.now())
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.setPassword(user); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, s.fail(ctx, "signup", err)
	}

	s.logger.InfoContext(ctx, "user signed up", slog.String("user_id", user.ID.String()))
	return s.session(ctx, user)
}

// Login implements AuthService.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrIncorrectCredentials
		}
		return nil, s.fail(ctx, "login", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.DebugContext(ctx, "login with wrong password", slog.String("user_id", user.ID.String()))
			return nil, ErrIncorrectCredentials
		}
		return nil, s.fail(ctx, "login", err)
	}

	return s.session(ctx, user)
}

// Authenticate implements AuthService.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrNotLoggedIn
	}

	claims, err := s.tokens.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrUserGone
		}
		return nil, s.fail(ctx, "authenticate", err)
	}

	if user.ChangedPasswordAfter(claims.IssuedAt) {
		return nil, ErrPasswordChanged
	}
	return user, nil
}

// ForgotPassword implements AuthService. If the link cannot be delivered the
// token is withdrawn so it can never be used.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string, resetURL ResetURLFunc) error {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if store.IsNotFoundError(err) {
			return ErrNoUserWithEmail
		}
		return s.fail(ctx, "forgot_password", err)
	}

	token, err := user.CreatePasswordResetToken(s.now(), s.resetTTL)
	if err != nil {
		return s.fail(ctx, "forgot_password", err)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return s.fail(ctx, "forgot_password", err)
	}

	if err := s.notifier.SendPasswordReset(ctx, user, resetURL(token)); err != nil {
		s.logger.ErrorContext(ctx, "failed to deliver password reset",
			slog.String("user_id", user.ID.String()),
			slog.Any("error", err))

		user.ClearPasswordReset()
		if clearErr := s.users.Update(ctx, user); clearErr != nil {
			s.logger.ErrorContext(ctx, "failed to withdraw password reset token",
				slog.String("user_id", user.ID.String()),
				slog.Any("error", clearErr))
		}
		return fmt.Errorf("%w: %w", ErrResetDelivery, err)
	}
	return nil
}

// ResetPassword implements AuthService.
func (s *AuthServiceImpl) ResetPassword(
	ctx context.Context,
	token, password, passwordConfirm string,
) (*Session, error) {
	now := s.now()
	user, err := s.users.GetByResetToken(ctx, domain.HashResetToken(token), now)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, domain.ErrResetTokenExpired
		}
		return nil, s.fail(ctx, "reset_password", err)
	}
	if !user.ResetTokenValid(token, now) {
		return nil, domain.ErrResetTokenExpired
	}

	if err := s.changePassword(user, password, passwordConfirm, now); err != nil {
		return nil, err
	}
	user.ClearPasswordReset()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, s.fail(ctx, "reset_password", err)
	}

	s.logger.InfoContext(ctx, "password reset", slog.String("user_id", user.ID.String()))
	return s.session(ctx, user)
}

// UpdatePassword implements AuthService.
func (s *AuthServiceImpl) UpdatePassword(
	ctx context.Context,
	userID uuid.UUID,
	current, password, passwordConfirm string,
) (*Session, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "update_password", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, current); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrWrongCurrentPassword
		}
		return nil, s.fail(ctx, "update_password", err)
	}

	if err := s.changePassword(user, password, passwordConfirm, s.now()); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, s.fail(ctx, "update_password", err)
	}

	s.logger.InfoContext(ctx, "password updated", slog.String("user_id", user.ID.String()))
	return s.session(ctx, user)
}

// changePassword validates and hashes a new password and records the
// change time.
func (s *AuthServiceImpl) changePassword(user *domain.User, password, confirm string, now time.Time) error {
	user.Password = password
	user.PasswordConfirm = confirm
	user.HashedPassword = ""
	if err := user.Validate(); err != nil {
		return err
	}
	if err := s.setPassword(user); err != nil {
		return err
	}
	user.MarkPasswordChanged(now)
	return nil
}

// setPassword replaces the plaintext password with its hash.
func (s *AuthServiceImpl) setPassword(user *domain.User) error {
	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""
	user.PasswordConfirm = ""
	return nil
}

func (s *AuthServiceImpl) session(ctx context.Context, user *domain.User) (*Session, error) {
	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, s.fail(ctx, "generate_token", err)
	}
	return &Session{User: user, Token: token}, nil
}

func (s *AuthServiceImpl) fail(ctx context.Context, op string, err error) error {
	if store.IsNotFoundError(err) || isClientFault(err) {
		return err
	}
	s.logger.ErrorContext(ctx, "auth operation failed",
		slog.String("operation", op),
		slog.Any("error", err))
	return NewServiceError("auth", op, err)
}
