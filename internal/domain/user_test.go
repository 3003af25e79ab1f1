package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/natours-api/internal/fault"
)

func newSignup() *User {
	return &User{
		Name:            "Jonas Schmedtmann",
		Email:           "  Jonas@Example.io ",
		Password:        "pass1234",
		PasswordConfirm: "pass1234",
	}
}

func TestUserPrepare(t *testing.T) {
	t.Parallel()

	u := newSignup()
	u.Prepare(time.Now())

	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, "jonas@example.io", u.Email)
	assert.Equal(t, RoleUser, u.Role)
	assert.False(t, u.CreatedAt.IsZero())
	assert.NoError(t, u.Validate())
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*User)
		want   []string
	}{
		{
			name:   "missing name",
			mutate: func(u *User) { u.Name = "" },
			want:   []string{"Please tell us your name!"},
		},
		{
			name:   "invalid email",
			mutate: func(u *User) { u.Email = "not-an-email" },
			want:   []string{"Please provide a valid email"},
		},
		{
			name:   "unknown role",
			mutate: func(u *User) { u.Role = "root" },
			want:   []string{"Role is either: user, guide, lead-guide, admin"},
		},
		{
			name: "short password",
			mutate: func(u *User) {
				u.Password = "short"
				u.PasswordConfirm = "short"
			},
			want: []string{"Password must be at least 8 characters long"},
		},
		{
			name:   "confirmation mismatch",
			mutate: func(u *User) { u.PasswordConfirm = "pass4321" },
			want:   []string{"Passwords are not the same!"},
		},
		{
			name:   "confirmation missing",
			mutate: func(u *User) { u.PasswordConfirm = "" },
			want:   []string{"Please confirm your password"},
		},
		{
			name: "no password at all",
			mutate: func(u *User) {
				u.Password = ""
				u.PasswordConfirm = ""
			},
			want: []string{"Please provide a password"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u := newSignup()
			u.Prepare(time.Now())
			tt.mutate(u)

			var ve *fault.ValidationError
			require.True(t, errors.As(u.Validate(), &ve))
			assert.Equal(t, tt.want, ve.Messages())
		})
	}
}

func TestUserValidateStoredAccount(t *testing.T) {
	t.Parallel()

	u := &User{ID: uuid.New(), Name: "Lourdes", Email: "l@example.io", Role: RoleGuide, HashedPassword: "$2a$12$hash"}
	assert.NoError(t, u.Validate())
}

func TestHasRole(t *testing.T) {
	t.Parallel()

	u := &User{Role: RoleLeadGuide}
	assert.True(t, u.HasRole(RoleAdmin, RoleLeadGuide))
	assert.False(t, u.HasRole(RoleAdmin))
	assert.False(t, u.HasRole())
}

func TestChangedPasswordAfter(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	u := &User{}
	assert.False(t, u.ChangedPasswordAfter(issued), "never changed")

	u.MarkPasswordChanged(issued.Add(time.Hour))
	assert.True(t, u.ChangedPasswordAfter(issued))

	u.MarkPasswordChanged(issued)
	assert.False(t, u.ChangedPasswordAfter(issued), "change stamped a second early keeps same-instant tokens valid")
}

func TestPasswordResetToken(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	u := &User{}

	token, err := u.CreatePasswordResetToken(now, 10*time.Minute)
	require.NoError(t, err)

	assert.Len(t, token, 64)
	assert.Equal(t, HashResetToken(token), u.PasswordResetToken)
	assert.NotEqual(t, token, u.PasswordResetToken, "only the hash is kept")
	require.NotNil(t, u.PasswordResetExpires)
	assert.Equal(t, now.Add(10*time.Minute), *u.PasswordResetExpires)

	assert.True(t, u.ResetTokenValid(token, now.Add(9*time.Minute)))
	assert.False(t, u.ResetTokenValid(token, now.Add(10*time.Minute)), "expired")
	assert.False(t, u.ResetTokenValid("wrong", now))

	u.ClearPasswordReset()
	assert.False(t, u.ResetTokenValid(token, now))
}
