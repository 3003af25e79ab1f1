package auth

import (
	"errors"

	"github.com/phrazzld/natours-api/internal/fault"
)

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token is malformed, carries a bad
	// signature or is otherwise unverifiable.
	ErrInvalidToken = fault.ErrInvalidToken

	// ErrExpiredToken indicates the token has expired.
	ErrExpiredToken = fault.ErrExpiredToken

	// ErrPasswordMismatch indicates a password did not match its hash.
	ErrPasswordMismatch = errors.New("password does not match")
)
