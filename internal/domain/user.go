package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/natours-api/internal/query"
)

// User roles.
const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// resetTokenBytes is the entropy of a password reset token.
const resetTokenBytes = 32

// User is a registered account.
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name" validate:"required"`
	Email string    `json:"email" validate:"required,email"`
	Photo string    `json:"photo,omitempty"`
	Role  string    `json:"role" validate:"oneof=user guide lead-guide admin"`

	// Password and PasswordConfirm are plaintext and only set while a
	// password is being chosen; they are never stored.
	Password        string `json:"-" validate:"omitempty,min=8"`
	PasswordConfirm string `json:"-" validate:"required_with=Password,eqfield=Password"`
	HashedPassword  string `json:"-"`

	PasswordChangedAt    *time.Time `json:"passwordChangedAt,omitempty"`
	PasswordResetToken   string     `json:"-"`
	PasswordResetExpires *time.Time `json:"-"`
	Active               bool       `json:"-"`
	CreatedAt            time.Time  `json:"-"`
}

// UserSchema is the field catalogue used to shape user queries. Credentials
// and reset state are not part of it and so can never be filtered on or
// rendered.
var UserSchema = query.NewSchema("users",
	query.Field{Name: "id", Column: "id", Type: query.UUID},
	query.Field{Name: "name", Column: "name", Type: query.String},
	query.Field{Name: "email", Column: "email", Type: query.String},
	query.Field{Name: "photo", Column: "photo", Type: query.String},
	query.Field{Name: "role", Column: "role", Type: query.String},
	query.Field{Name: "passwordChangedAt", Column: "password_changed_at", Type: query.Time},
	query.Field{Name: "active", Column: "active", Type: query.Bool, Hidden: true},
	query.Field{Name: query.CreatedField, Column: "created_at", Type: query.Time, Hidden: true},
)

// Prepare normalizes an account before it is validated and stored: it
// assigns an ID and creation time, lower-cases the email and applies the
// default role.
func (u *User) Prepare(now time.Time) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now.UTC().Truncate(time.Millisecond)
	}
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = RoleUser
	}
}

// Validate checks every rule and reports all failures together. An account
// must have either a plaintext password being set or a stored hash.
func (u *User) Validate() error {
	err := validateStruct(u)
	if u.Password != "" || u.HashedPassword != "" {
		return err
	}

	missing := newValidationError(err)
	missing.Add("password", "Please provide a password")
	return missing
}

// HasRole reports whether the user holds any of roles.
func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// ChangedPasswordAfter reports whether the password changed after a token
// issued at issuedAt. Comparison is at one-second resolution, the precision
// of token timestamps.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}

// MarkPasswordChanged records a password change. The timestamp is set one
// second in the past so a token issued in the same instant stays valid.
func (u *User) MarkPasswordChanged(now time.Time) {
	changed := now.Add(-time.Second).UTC()
	u.PasswordChangedAt = &changed
}

// CreatePasswordResetToken issues a reset token valid for ttl. The returned
// plaintext token is meant for the user; only its hash is kept on the user.
func (u *User) CreatePasswordResetToken(now time.Time, ttl time.Duration) (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(buf)

	expires := now.Add(ttl).UTC()
	u.PasswordResetToken = HashResetToken(token)
	u.PasswordResetExpires = &expires
	return token, nil
}

// ClearPasswordReset forgets any outstanding reset token.
func (u *User) ClearPasswordReset() {
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
}

// ResetTokenValid reports whether token matches the outstanding reset token
// and has not expired at now.
func (u *User) ResetTokenValid(token string, now time.Time) bool {
	if u.PasswordResetToken == "" || u.PasswordResetExpires == nil {
		return false
	}
	if !now.Before(*u.PasswordResetExpires) {
		return false
	}
	hashed := HashResetToken(token)
	return subtle.ConstantTimeCompare([]byte(hashed), []byte(u.PasswordResetToken)) == 1
}

// HashResetToken returns the stored form of a reset token.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
