package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/natours-api/internal/fault"
)

// Sentinel errors for expected conditions. Callers check them with
// errors.Is; the API layer maps each to a client message.
var (
	// ErrMissingDependency is returned by constructors given a nil
	// collaborator.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrMissingCredentials is returned when a login omits the email or
	// the password.
	ErrMissingCredentials = errors.New("email and password are required")

	// ErrIncorrectCredentials is returned for an unknown email or a wrong
	// password. The two cases are deliberately indistinguishable.
	ErrIncorrectCredentials = errors.New("incorrect email or password")

	// ErrNotLoggedIn is returned when a protected operation has no token.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrUserGone is returned when a valid token names a user that no
	// longer exists or was deactivated.
	ErrUserGone = errors.New("token owner no longer exists")

	// ErrPasswordChanged is returned when the password changed after the
	// token was issued.
	ErrPasswordChanged = errors.New("password changed after token was issued")

	// ErrForbidden is returned when the caller lacks the required role.
	ErrForbidden = errors.New("insufficient permissions")

	// ErrNoUserWithEmail is returned by a password reset request for an
	// unknown address.
	ErrNoUserWithEmail = errors.New("no user with that email address")

	// ErrResetDelivery is returned when the reset notification could not
	// be sent. The issued token is withdrawn first.
	ErrResetDelivery = errors.New("failed to deliver password reset")

	// ErrWrongCurrentPassword is returned when a password change does not
	// prove knowledge of the current password.
	ErrWrongCurrentPassword = errors.New("current password is wrong")

	// ErrPasswordUpdateRoute is returned when a profile update carries
	// password fields.
	ErrPasswordUpdateRoute = errors.New("password fields are not accepted here")

	// ErrInvalidYear is returned for a monthly plan outside the calendar.
	ErrInvalidYear = errors.New("invalid year")
)

// ServiceError records which service operation failed on an unexpected
// error.
type ServiceError struct {
	Service   string
	Operation string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Operation, e.Err)
	}
	return fmt.Sprintf("%s service %s operation failed", e.Service, e.Operation)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation string, err error) *ServiceError {
	return &ServiceError{Service: service, Operation: operation, Err: err}
}

// isClientFault reports whether err is a fault caused by the request rather
// than by the system.
func isClientFault(err error) bool {
	switch fault.KindOf(err) {
	case fault.KindUnexpected:
		return false
	case fault.KindOperational:
		var appErr *fault.AppError
		return errors.As(err, &appErr) && appErr.Code() < 500
	default:
		return true
	}
}
