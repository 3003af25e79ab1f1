package domain

import "errors"

// ErrResetTokenExpired is returned when a password reset token is used after
// its expiry or was never issued.
var ErrResetTokenExpired = errors.New("password reset token is invalid or has expired")
