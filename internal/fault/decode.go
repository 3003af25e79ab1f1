package fault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"
)

// DecodeError converts an error from decoding a JSON request body into a
// client fault. Type mismatches become a ValidationError on the offending
// field; anything else it does not recognise is returned unchanged.
func DecodeError(err error) error {
	if err == nil {
		return nil
	}

	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			return Wrap(err, "Request body must be a JSON object", http.StatusBadRequest)
		}
		return &ValidationError{Fields: []FieldError{{
			Field:   field,
			Message: fmt.Sprintf("Cast to %s failed for value of type %s at path %q", typeName(typeErr.Type), typeErr.Value, field),
		}}}
	case errors.As(err, &maxErr):
		return Wrap(err, "Request body is too large", http.StatusRequestEntityTooLarge)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return Wrap(err, "Request body is not valid JSON", http.StatusBadRequest)
	case errors.Is(err, io.EOF):
		return Wrap(err, "Request body is empty", http.StatusBadRequest)
	default:
		return err
	}
}

var timeType = reflect.TypeOf(time.Time{})

func typeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	if t == timeType {
		return "Date"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "Number"
	case reflect.Bool:
		return "Boolean"
	case reflect.String:
		return "String"
	case reflect.Slice, reflect.Array:
		return "Array"
	default:
		return t.String()
	}
}
