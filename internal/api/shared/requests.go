package shared

import (
	"encoding/json"
	"net/http"

	"github.com/phrazzld/natours-api/internal/fault"
)

// MaxBodyBytes bounds every JSON request body.
const MaxBodyBytes = 10 << 10

// DecodeJSON decodes the request body into v. Malformed bodies and values
// of the wrong type are reported as client faults.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fault.DecodeError(err)
	}
	return nil
}

// DecodePatch decodes the request body as a partial update keyed by client
// field name.
func DecodePatch(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	var patch map[string]any
	if err := DecodeJSON(w, r, &patch); err != nil {
		return nil, err
	}
	if patch == nil {
		patch = map[string]any{}
	}
	return patch, nil
}
