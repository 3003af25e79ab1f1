package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/fault"
	"github.com/phrazzld/natours-api/internal/query"
	"github.com/phrazzld/natours-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Function fields for customizable behavior
	FindFn            func(ctx context.Context, q query.Shaped) ([]store.Record, error)
	CreateFn          func(ctx context.Context, user *domain.User) error
	GetByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn      func(ctx context.Context, email string) (*domain.User, error)
	GetByResetTokenFn func(ctx context.Context, hashedToken string, now time.Time) (*domain.User, error)
	UpdateFn          func(ctx context.Context, user *domain.User) error
	DeleteFn          func(ctx context.Context, id uuid.UUID) error

	// Data for default implementation, keyed by email
	mu          sync.Mutex
	Users       map[string]*domain.User
	LastUserID  uuid.UUID
	UpdateCalls int
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore(users ...*domain.User) *MockUserStore {
	m := &MockUserStore{Users: make(map[string]*domain.User)}
	for _, u := range users {
		m.Users[u.Email] = u
	}
	return m
}

// Find implements the UserStore interface. The default renders every
// active user with the query's projection and ignores the rest of it.
func (m *MockUserStore) Find(ctx context.Context, q query.Shaped) ([]store.Record, error) {
	if m.FindFn != nil {
		return m.FindFn(ctx, q)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := []store.Record{}
	for _, u := range m.Users {
		if !u.Active {
			continue
		}
		rec, err := store.ProjectRecord(domain.UserSchema, q.Projection, u)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Users[user.Email]; exists {
		return &fault.DuplicateKeyError{Field: "email", Value: `"` + user.Email + `"`}
	}
	m.Users[user.Email] = user
	m.LastUserID = user.ID
	return nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if u.ID == id && u.Active {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, exists := m.Users[email]
	if !exists || !u.Active {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

// GetByResetToken implements the UserStore interface
func (m *MockUserStore) GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (*domain.User, error) {
	if m.GetByResetTokenFn != nil {
		return m.GetByResetTokenFn(ctx, hashedToken, now)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if !u.Active || u.PasswordResetToken != hashedToken || u.PasswordResetExpires == nil {
			continue
		}
		if now.Before(*u.PasswordResetExpires) {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Update implements the UserStore interface
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	m.UpdateCalls++
	m.mu.Unlock()

	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for email, u := range m.Users {
		if u.ID == user.ID {
			delete(m.Users, email)
			m.Users[user.Email] = user
			return nil
		}
	}
	return store.ErrUserNotFound
}

// Delete implements the UserStore interface
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for email, u := range m.Users {
		if u.ID == id {
			delete(m.Users, email)
			return nil
		}
	}
	return store.ErrUserNotFound
}
