package fault

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Kind names a fault family. It is used for metrics labels and log attributes.
type Kind string

// Fault kinds in classification precedence order.
const (
	KindCast         Kind = "cast"
	KindDuplicateKey Kind = "duplicate_key"
	KindValidation   Kind = "validation"
	KindInvalidToken Kind = "invalid_token"
	KindExpiredToken Kind = "expired_token"
	KindOperational  Kind = "operational"
	KindUnexpected   Kind = "unexpected"
)

// CastError reports a value that could not be converted to the type of the
// field it targets, such as a malformed identifier or a non-numeric price.
type CastError struct {
	Path  string `json:"path"`
	Value string `json:"value"`
	Err   error  `json:"-"`
}

func (e *CastError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cast to %s failed for value %q: %v", e.Path, e.Value, e.Err)
	}
	return fmt.Sprintf("cast to %s failed for value %q", e.Path, e.Value)
}

func (e *CastError) Unwrap() error { return e.Err }

// DuplicateKeyError reports a uniqueness-constraint violation. Value keeps the
// quotes it was reported with, e.g. `"The Forest Hiker"`.
type DuplicateKeyError struct {
	Field string `json:"field,omitempty"`
	Value string `json:"value"`
	Err   error  `json:"-"`
}

func (e *DuplicateKeyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("duplicate key %s=%s: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("duplicate key %s=%s", e.Field, e.Value)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

// FieldError is one failed rule of a ValidationError.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field that failed validation.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.joined()
}

// Messages returns the per-field messages in reporting order.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return msgs
}

func (e *ValidationError) joined() string {
	return strings.Join(e.Messages(), ". ")
}

// Add appends a field failure.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when nothing was added, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// TokenError reports a credential token that could not be verified.
type TokenError struct {
	Expired bool  `json:"expired"`
	Err     error `json:"-"`
}

func (e *TokenError) Error() string {
	if e.Expired {
		return "token has expired"
	}
	return "invalid token"
}

func (e *TokenError) Unwrap() error { return e.Err }

// Is matches any TokenError with the same expiry flag, so wrapped copies
// still compare equal to ErrInvalidToken / ErrExpiredToken.
func (e *TokenError) Is(target error) bool {
	t, ok := target.(*TokenError)
	return ok && t.Expired == e.Expired
}

var (
	// ErrInvalidToken is returned for malformed or unverifiable tokens.
	ErrInvalidToken = &TokenError{}

	// ErrExpiredToken is returned for tokens past their expiry.
	ErrExpiredToken = &TokenError{Expired: true}
)

// AppError is an operational fault: expected, understood, and safe to show
// to the caller verbatim.
type AppError struct {
	StatusCode int    `json:"statusCode"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
	stack      string
}

// New creates an operational fault with the given client message and code.
func New(message string, statusCode int) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Status:     StatusLabel(statusCode),
		Message:    message,
		stack:      captureStack(1),
	}
}

// Wrap creates an operational fault that keeps err as its cause.
func Wrap(err error, message string, statusCode int) *AppError {
	e := New(message, statusCode)
	e.Err = err
	e.stack = captureStack(1)
	return e
}

// Errorf is New with a formatted message.
func Errorf(statusCode int, format string, args ...any) *AppError {
	e := New(fmt.Sprintf(format, args...), statusCode)
	e.stack = captureStack(1)
	return e
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Err }

// Code returns the HTTP status carried by the fault.
func (e *AppError) Code() int { return e.StatusCode }

// StackTrace returns the stack captured when the fault was created.
func (e *AppError) StackTrace() string { return e.stack }

// PanicError carries a recovered panic value and the goroutine stack at the
// time of the panic.
type PanicError struct {
	Value any    `json:"-"`
	Stack string `json:"-"`
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// StackTrace returns the stack recorded at recovery.
func (e *PanicError) StackTrace() string { return e.Stack }

// StatusLabel returns "fail" for 4xx codes and "error" for everything else.
func StatusLabel(code int) string {
	if code >= 400 && code < 500 {
		return "fail"
	}
	return "error"
}

// quotedValueRe matches the first single- or double-quoted token, honouring
// backslash escapes inside it.
var quotedValueRe = regexp.MustCompile(`"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`)

// QuotedValue extracts the first quoted value from a driver message such as
// `E11000 duplicate key error ... dup key: { name: "The Forest Hiker" }`.
// It returns the whole message when nothing is quoted.
func QuotedValue(msg string) string {
	if m := quotedValueRe.FindString(msg); m != "" {
		return m
	}
	return msg
}

// NotFound is the operational 404 for a missing resource.
func NotFound(resource string) *AppError {
	e := New(fmt.Sprintf("No %s found with that ID", resource), http.StatusNotFound)
	e.stack = captureStack(1)
	return e
}
