package store

import (
	"encoding/json"
	"fmt"

	"github.com/phrazzld/natours-api/internal/query"
)

// Record is one projected result row, keyed by client field name.
type Record map[string]any

// ProjectRecord renders v through its JSON form and keeps only the fields
// schema selects for proj.
func ProjectRecord(schema *query.Schema, proj query.Projection, v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s record: %w", schema.Name, err)
	}
	var all map[string]any
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("failed to decode %s record: %w", schema.Name, err)
	}

	out := make(Record, len(all))
	for _, f := range schema.Select(proj) {
		if val, ok := all[f.Name]; ok {
			out[f.Name] = val
		}
	}
	return out, nil
}
