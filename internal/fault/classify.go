package fault

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Mode selects how much diagnostic detail reaches the client.
type Mode string

const (
	// ModeDevelopment returns raw faults with their detail and stack.
	// It must never be enabled on a publicly reachable instance.
	ModeDevelopment Mode = "development"

	// ModeProduction normalizes faults into minimal client messages.
	ModeProduction Mode = "production"
)

// ParseMode maps a configured environment name to a Mode. Anything other
// than "development" is treated as production.
func ParseMode(env string) Mode {
	if strings.EqualFold(strings.TrimSpace(env), string(ModeDevelopment)) {
		return ModeDevelopment
	}
	return ModeProduction
}

// GenericMessage is the only text an unexpected fault shows in production.
const GenericMessage = "Something went very wrong!"

// Envelope is the JSON body of every error response.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   any    `json:"error,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// Response is the outcome of classifying a fault.
type Response struct {
	StatusCode int
	Envelope   Envelope
	Kind       Kind

	// Unexpected is set for faults outside the known taxonomy. Callers must
	// log those with full detail before responding.
	Unexpected bool
}

// Detail is the structured description of a raw fault in development mode.
type Detail struct {
	Type    string `json:"type"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Fault   any    `json:"fault,omitempty"`
	Cause   string `json:"cause,omitempty"`
}

// Classify turns any error into a status code and envelope. It has no side
// effects; logging of unexpected faults is left to the caller.
func Classify(err error, mode Mode) Response {
	if err == nil {
		err = errors.New("nil error reached the error responder")
	}
	if mode == ModeDevelopment {
		return describe(err)
	}
	return normalize(err)
}

// KindOf reports the family of err using the classification precedence.
func KindOf(err error) Kind {
	_, kind := match(err)
	return kind
}

// match finds the first typed fault in err's chain, in precedence order.
func match(err error) (any, Kind) {
	var (
		castErr *CastError
		dupErr  *DuplicateKeyError
		valErr  *ValidationError
		tokErr  *TokenError
		appErr  *AppError
	)
	switch {
	case errors.As(err, &castErr):
		return castErr, KindCast
	case errors.As(err, &dupErr):
		return dupErr, KindDuplicateKey
	case errors.As(err, &valErr):
		return valErr, KindValidation
	case errors.As(err, &tokErr):
		if tokErr.Expired {
			return tokErr, KindExpiredToken
		}
		return tokErr, KindInvalidToken
	case errors.As(err, &appErr):
		return appErr, KindOperational
	default:
		return nil, KindUnexpected
	}
}

func normalize(err error) Response {
	f, kind := match(err)
	switch kind {
	case KindCast:
		e := f.(*CastError)
		return operational(http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s.", e.Path, e.Value), kind)
	case KindDuplicateKey:
		e := f.(*DuplicateKeyError)
		return operational(http.StatusBadRequest,
			fmt.Sprintf("Duplicate field value: %s. Please use another value!", e.Value), kind)
	case KindValidation:
		e := f.(*ValidationError)
		return operational(http.StatusBadRequest, "Invalid input data. "+e.joined(), kind)
	case KindInvalidToken:
		return operational(http.StatusUnauthorized, "Invalid token. Please login again", kind)
	case KindExpiredToken:
		return operational(http.StatusUnauthorized, "Your token has expired! Please log in again.", kind)
	case KindOperational:
		e := f.(*AppError)
		code := e.StatusCode
		if code == 0 {
			code = http.StatusInternalServerError
		}
		return operational(code, e.Message, kind)
	default:
		return Response{
			StatusCode: http.StatusInternalServerError,
			Envelope:   Envelope{Status: StatusLabel(http.StatusInternalServerError), Message: GenericMessage},
			Kind:       KindUnexpected,
			Unexpected: true,
		}
	}
}

func operational(code int, message string, kind Kind) Response {
	return Response{
		StatusCode: code,
		Envelope:   Envelope{Status: StatusLabel(code), Message: message},
		Kind:       kind,
	}
}

// describe renders the raw fault without rewriting its message.
func describe(err error) Response {
	code := http.StatusInternalServerError
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() != 0 {
		code = coder.Code()
	}

	f, kind := match(err)
	detail := Detail{
		Type:    fmt.Sprintf("%T", err),
		Kind:    kind,
		Message: err.Error(),
		Fault:   f,
	}
	if cause := errors.Unwrap(err); cause != nil {
		detail.Cause = cause.Error()
	}

	return Response{
		StatusCode: code,
		Envelope: Envelope{
			Status:  StatusLabel(code),
			Message: err.Error(),
			Error:   detail,
			Stack:   StackOf(err),
		},
		Kind:       kind,
		Unexpected: kind == KindUnexpected,
	}
}
