package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/fault"
	"github.com/phrazzld/natours-api/internal/service"
	"github.com/phrazzld/natours-api/internal/store"
)

// operationalFaults maps service and store sentinels to the fault the
// client sees. Anything not listed passes through unchanged.
var operationalFaults = []struct {
	target  error
	message string
	status  int
}{
	{service.ErrMissingCredentials, "Please provide email and password!", http.StatusBadRequest},
	{service.ErrIncorrectCredentials, "Incorrect email or password", http.StatusUnauthorized},
	{service.ErrNotLoggedIn, "You are not logged in! Please log in to get access.", http.StatusUnauthorized},
	{service.ErrUserGone, "The user belonging to this token does no longer exist.", http.StatusUnauthorized},
	{service.ErrPasswordChanged, "User recently changed password! Please log in again.", http.StatusUnauthorized},
	{service.ErrForbidden, "You do not have permission to perform this action", http.StatusForbidden},
	{service.ErrNoUserWithEmail, "There is no user with that email address.", http.StatusNotFound},
	{domain.ErrResetTokenExpired, "Token is invalid or has expired", http.StatusBadRequest},
	{service.ErrWrongCurrentPassword, "Your current password is wrong.", http.StatusUnauthorized},
	{service.ErrResetDelivery, "There was an error sending the email. Try again later!", http.StatusInternalServerError},
	{
		service.ErrPasswordUpdateRoute,
		"This route is not for password updates. Please use /updateMyPassword.",
		http.StatusBadRequest,
	},
	{store.ErrTourNotFound, "No tour found with that ID", http.StatusNotFound},
	{store.ErrUserNotFound, "No user found with that ID", http.StatusNotFound},
}

// MapError converts the sentinel errors of the service and store layers
// into faults carrying the client message. Typed faults and unknown errors
// are returned unchanged so the responder can classify them.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	// Typed faults carry their own rendering and take precedence over any
	// sentinel further down the chain.
	if fault.KindOf(err) != fault.KindUnexpected {
		return err
	}

	for _, f := range operationalFaults {
		if errors.Is(err, f.target) {
			return fault.Wrap(err, f.message, f.status)
		}
	}

	if errors.Is(err, service.ErrInvalidYear) {
		value := strings.TrimPrefix(err.Error(), service.ErrInvalidYear.Error()+": ")
		return &fault.CastError{Path: "year", Value: value, Err: err}
	}
	return err
}
