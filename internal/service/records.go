package service

import (
	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/query"
	"github.com/phrazzld/natours-api/internal/store"
)

// entityProjection is how a single entity is rendered: everything but the
// version field.
var entityProjection = query.Projection{Fields: []string{query.VersionField}, Exclude: true}

// withDurationWeeks adds the derived durationWeeks field to a tour record
// that carries a duration.
func withDurationWeeks(rec store.Record) store.Record {
	var days float64
	switch d := rec["duration"].(type) {
	case float64:
		days = d
	case int:
		days = float64(d)
	case int32:
		days = float64(d)
	case int64:
		days = float64(d)
	default:
		return rec
	}
	rec["durationWeeks"] = domain.WeeksOf(days)
	return rec
}

func tourRecord(t *domain.Tour) (store.Record, error) {
	rec, err := store.ProjectRecord(domain.TourSchema, entityProjection, t)
	if err != nil {
		return nil, err
	}
	return withDurationWeeks(rec), nil
}

func userRecord(u *domain.User) (store.Record, error) {
	return store.ProjectRecord(domain.UserSchema, entityProjection, u)
}
