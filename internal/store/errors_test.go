package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"ErrTourNotFound", ErrTourNotFound, true},
		{"wrapped ErrUserNotFound", fmt.Errorf("failed to find user: %w", ErrUserNotFound), true},
		{"ErrDuplicate", ErrDuplicate, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNotFoundError(tt.err), tt.name)
	}
}

func TestEntityNotFoundErrorsAreDistinct(t *testing.T) {
	t.Parallel()

	assert.NotErrorIs(t, ErrTourNotFound, ErrUserNotFound)
	assert.Equal(t, "entity not found: tour", ErrTourNotFound.Error())
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("database connection failed")
	err := NewStoreError("tour", "find", "query failed", cause)

	assert.Equal(t, "find operation on tour failed: query failed: database connection failed", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("user", "update", "no rows", nil)
	assert.Equal(t, "update operation on user failed: no rows", bare.Error())
}
