package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/natours-api/internal/fault"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return lowerFirst(fld.Name)
		}
		return name
	})
	return v
}

// messages maps Struct.field.rule to the message shown to clients.
var messages = map[string]string{
	"Tour.name.required":         "A tour must have a name",
	"Tour.name.max":              "A tour name must have less or equal then 40 characters",
	"Tour.name.min":              "A tour name must have more or equal then 10 characters",
	"Tour.duration.required":     "A tour must have a duration",
	"Tour.maxGroupSize.required": "A tour must have a group size",
	"Tour.difficulty.required":   "A tour must have a difficulty",
	"Tour.difficulty.oneof":      "Difficulty is either: easy, medium, difficult",
	"Tour.ratingsAverage.gte":    "Rating must be above 1.0",
	"Tour.ratingsAverage.lte":    "Rating must be below 5.0",
	"Tour.price.required":        "A tour must have a price",
	"Tour.priceDiscount.ltfield": "Discount price (%v) should be below regular price",
	"Tour.summary.required":      "A tour must have a summary",
	"Tour.imageCover.required":   "A tour must have a cover image",

	"User.name.required":                 "Please tell us your name!",
	"User.email.required":                "Please provide your email",
	"User.email.email":                   "Please provide a valid email",
	"User.role.oneof":                    "Role is either: user, guide, lead-guide, admin",
	"User.password.min":                  "Password must be at least 8 characters long",
	"User.passwordConfirm.required_with": "Please confirm your password",
	"User.passwordConfirm.eqfield":       "Passwords are not the same!",
}

// validateStruct runs the struct rules of v and converts failures into a
// single ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return newValidationError(err)
}

// newValidationError returns err as a ValidationError, converting validator
// failures and starting an empty one for a nil error.
func newValidationError(err error) *fault.ValidationError {
	var ve *fault.ValidationError
	if errors.As(err, &ve) {
		return ve
	}

	out := &fault.ValidationError{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out.Add(fe.Field(), message(fe))
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	msg, ok := messages[fe.Namespace()+"."+fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed the %s rule", fe.Field(), fe.Tag())
	}
	if strings.Contains(msg, "%v") {
		return fmt.Sprintf(msg, fe.Value())
	}
	return msg
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}
