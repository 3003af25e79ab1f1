package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/query"
)

// UserStore defines the interface for user data persistence. Deactivated
// users are invisible to every read.
type UserStore interface {
	// Find executes a shaped query and returns the projected records.
	Find(ctx context.Context, q query.Shaped) ([]Record, error)

	// Create saves a new user. The caller must have hashed the password.
	// Returns a fault.DuplicateKeyError if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByResetToken retrieves the user holding the hashed reset token,
	// provided it has not expired at now.
	// Returns ErrUserNotFound otherwise.
	GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (*domain.User, error)

	// Update replaces an existing user's details. The caller must provide a
	// complete user including HashedPassword.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user permanently.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
