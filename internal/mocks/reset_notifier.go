package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/service"
)

// SentReset is one password reset delivered through MockResetNotifier.
type SentReset struct {
	UserID   string
	Email    string
	ResetURL string
}

// MockResetNotifier implements service.ResetNotifier and records what it
// was asked to send.
type MockResetNotifier struct {
	SendPasswordResetFn func(ctx context.Context, user *domain.User, resetURL string) error

	mu   sync.Mutex
	Sent []SentReset
}

var _ service.ResetNotifier = (*MockResetNotifier)(nil)

// SendPasswordReset implements the service.ResetNotifier interface
func (m *MockResetNotifier) SendPasswordReset(ctx context.Context, user *domain.User, resetURL string) error {
	if m.SendPasswordResetFn != nil {
		if err := m.SendPasswordResetFn(ctx, user, resetURL); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentReset{UserID: user.ID.String(), Email: user.Email, ResetURL: resetURL})
	return nil
}

// Last returns the most recent delivery, if any.
func (m *MockResetNotifier) Last() (SentReset, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return SentReset{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}
