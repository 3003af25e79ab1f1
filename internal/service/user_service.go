package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/natours-api/internal/query"
	"github.com/phrazzld/natours-api/internal/store"
)

// profileFields are the fields a user may change about themselves.
var profileFields = []string{"name", "email"}

// UserService provides account administration and self-service profile
// operations.
type UserService interface {
	// ListUsers shapes params into a query and returns the matching users.
	ListUsers(ctx context.Context, params query.Params) ([]store.Record, error)

	// GetUser returns one user.
	GetUser(ctx context.Context, id uuid.UUID) (store.Record, error)

	// UpdateUser overlays patch onto a user's profile. Passwords cannot be
	// changed this way.
	UpdateUser(ctx context.Context, id uuid.UUID, patch map[string]any) (store.Record, error)

	// DeleteUser removes a user permanently.
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// UpdateMe changes the caller's name or email. Any other field in
	// patch is ignored; password fields are rejected.
	UpdateMe(ctx context.Context, id uuid.UUID, patch map[string]any) (store.Record, error)

	// DeleteMe deactivates the caller's account.
	DeleteMe(ctx context.Context, id uuid.UUID) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users  store.UserStore
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(users store.UserStore, logger *slog.Logger) (UserService, error) {
	if users == nil {
		return nil, fmt.Errorf("%w: user store", ErrMissingDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		users:  users,
		logger: logger.With(slog.String("component", "user_service")),
		now:    time.Now,
	}, nil
}

// ListUsers implements UserService.
func (s *UserServiceImpl) ListUsers(ctx context.Context, params query.Params) ([]store.Record, error) {
	shaped, err := query.Shape(params)
	if err != nil {
		return nil, err
	}

	records, err := s.users.Find(ctx, shaped)
	if err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	return records, nil
}

// GetUser implements UserService.
func (s *UserServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (store.Record, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "get", err)
	}
	return userRecord(user)
}

// UpdateUser implements UserService.
func (s *UserServiceImpl) UpdateUser(
	ctx context.Context,
	id uuid.UUID,
	patch map[string]any,
) (store.Record, error) {
	return s.update(ctx, "update", id, patch)
}

// DeleteUser implements UserService.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return s.fail(ctx, "delete", err)
	}
	s.logger.InfoContext(ctx, "user deleted", slog.String("user_id", id.String()))
	return nil
}

// UpdateMe implements UserService.
func (s *UserServiceImpl) UpdateMe(
	ctx context.Context,
	id uuid.UUID,
	patch map[string]any,
) (store.Record, error) {
	_, hasPassword := patch["password"]
	_, hasConfirm := patch["passwordConfirm"]
	if hasPassword || hasConfirm {
		return nil, ErrPasswordUpdateRoute
	}
	return s.update(ctx, "update_me", id, filterFields(patch, profileFields...))
}

// DeleteMe implements UserService.
func (s *UserServiceImpl) DeleteMe(ctx context.Context, id uuid.UUID) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return s.fail(ctx, "delete_me", err)
	}

	user.Active = false
	if err := s.users.Update(ctx, user); err != nil {
		return s.fail(ctx, "delete_me", err)
	}

	s.logger.InfoContext(ctx, "user deactivated", slog.String("user_id", id.String()))
	return nil
}

func (s *UserServiceImpl) update(
	ctx context.Context,
	op string,
	id uuid.UUID,
	patch map[string]any,
) (store.Record, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, op, err)
	}

	if err := user.ApplyPatch(patch); err != nil {
		return nil, err
	}
	user.Prepare(s.now())
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, s.fail(ctx, op, err)
	}

	s.logger.InfoContext(ctx, "user updated", slog.String("user_id", id.String()))
	return userRecord(user)
}

func (s *UserServiceImpl) fail(ctx context.Context, op string, err error) error {
	if store.IsNotFoundError(err) || isClientFault(err) {
		return err
	}
	s.logger.ErrorContext(ctx, "user store operation failed",
		slog.String("operation", op),
		slog.Any("error", err))
	return NewServiceError("user", op, err)
}

// filterFields keeps only the allowed keys of patch.
func filterFields(patch map[string]any, allowed ...string) map[string]any {
	out := make(map[string]any, len(allowed))
	for _, k := range allowed {
		if v, ok := patch[k]; ok {
			out[k] = v
		}
	}
	return out
}
