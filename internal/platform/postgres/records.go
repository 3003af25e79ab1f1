package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/phrazzld/natours-api/internal/store"
)

// queryRecords runs a query whose single column is a JSON object and
// decodes each row into a Record.
func queryRecords(ctx context.Context, db store.DBTX, query string, args []any) ([]store.Record, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	records := []store.Record{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var rec store.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return records, nil
}

// queryObject runs a query returning one JSON object row and decodes it into
// dst. A missing row yields notFound.
func queryObject(ctx context.Context, db store.DBTX, notFound error, dst any, query string, args ...any) error {
	var raw string
	if err := db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if mapped := MapError(err); store.IsNotFoundError(mapped) {
			return notFound
		}
		return MapError(err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}
