package query

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/natours-api/internal/fault"
)

var testSchema = NewSchema("tours",
	Field{Name: "id", Column: "id", Type: UUID},
	Field{Name: "name", Column: "name", Type: String},
	Field{Name: "duration", Column: "duration", Type: Int},
	Field{Name: "price", Column: "price", Type: Float},
	Field{Name: "secretTour", Column: "secret_tour", Type: Bool},
	Field{Name: "startDates", Column: "start_dates", Type: TimeList},
	Field{Name: "createdAt", Column: "created_at", Type: Time, Hidden: true},
	Field{Name: "__v", Column: "version", Type: Int},
)

func TestSchemaCast(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	tests := []struct {
		field string
		raw   string
		want  any
	}{
		{"id", id.String(), id},
		{"name", "The Forest Hiker", "The Forest Hiker"},
		{"duration", "5", 5},
		{"price", "397.5", 397.5},
		{"secretTour", "true", true},
		{"startDates", "2021-06-19", time.Date(2021, 6, 19, 0, 0, 0, 0, time.UTC)},
		{"createdAt", "2021-06-19T09:00:00Z", time.Date(2021, 6, 19, 9, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := testSchema.Cast(tt.field, tt.raw)
		require.NoError(t, err, tt.field)
		assert.Equal(t, tt.want, got, tt.field)
	}
}

func TestSchemaCastFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field string
		raw   string
	}{
		{"id", "wwwww"},
		{"duration", "five"},
		{"price", "cheap"},
		{"secretTour", "maybe"},
		{"startDates", "June"},
		{"unknown", "1"},
	}

	for _, tt := range tests {
		_, err := testSchema.Cast(tt.field, tt.raw)
		var castErr *fault.CastError
		require.True(t, errors.As(err, &castErr), tt.field)
		assert.Equal(t, tt.field, castErr.Path)
		assert.Equal(t, tt.raw, castErr.Value)
	}
}

func TestSchemaConditions(t *testing.T) {
	t.Parallel()

	conds, err := testSchema.Conditions([]Predicate{
		{Field: "duration", Op: OpGte, Values: []string{"5"}},
		{Field: "name", Op: OpEq, Values: []string{"a", "b"}},
	})
	require.NoError(t, err)
	require.Len(t, conds, 2)

	assert.Equal(t, "duration", conds[0].Field.Column)
	assert.Equal(t, OpGte, conds[0].Op)
	assert.Equal(t, []any{5}, conds[0].Values)
	assert.Equal(t, []any{"a", "b"}, conds[1].Values)
}

func TestSchemaConditionsRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pred Predicate
		path string
	}{
		{"unknown field", Predicate{Field: "colour", Op: OpEq, Values: []string{"red"}}, "colour"},
		{"list with comparison", Predicate{Field: "price", Op: OpGt, Values: []string{"1", "2"}}, "price"},
		{"bad value", Predicate{Field: "price", Op: OpGt, Values: []string{"abc"}}, "price"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := testSchema.Conditions([]Predicate{tt.pred})
			var castErr *fault.CastError
			require.True(t, errors.As(err, &castErr))
			assert.Equal(t, tt.path, castErr.Path)
		})
	}
}

func names(fields []Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Name)
	}
	return out
}

func TestSchemaSelect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		proj Projection
		want []string
	}{
		{
			name: "default excludes version and hidden",
			proj: Projection{Fields: []string{"__v"}, Exclude: true},
			want: []string{"id", "name", "duration", "price", "secretTour", "startDates"},
		},
		{
			name: "inclusion keeps id and schema order",
			proj: Projection{Fields: []string{"price", "name", "bogus"}},
			want: []string{"id", "name", "price"},
		},
		{
			name: "inclusion reveals hidden field",
			proj: Projection{Fields: []string{"createdAt"}},
			want: []string{"id", "createdAt"},
		},
		{
			name: "exclusion can drop id",
			proj: Projection{Fields: []string{"id", "startDates"}, Exclude: true},
			want: []string{"name", "duration", "price", "secretTour", "__v"},
		},
		{
			name: "empty projection renders visible fields",
			proj: Projection{},
			want: []string{"id", "name", "duration", "price", "secretTour", "startDates", "__v"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, names(testSchema.Select(tt.proj)))
		})
	}
}

func TestSchemaOrder(t *testing.T) {
	t.Parallel()

	got := testSchema.Order([]SortKey{
		{Field: "price", Desc: true},
		{Field: "bogus"},
		{Field: "startDates"},
		{Field: "name"},
	})

	require.Len(t, got, 2)
	assert.Equal(t, "price", got[0].Field.Name)
	assert.True(t, got[0].Desc)
	assert.Equal(t, "name", got[1].Field.Name)
	assert.False(t, got[1].Desc)
}
