package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/natours-api/internal/fault"
)

// Type is the storage type of a field, used to cast raw parameter values.
type Type int

const (
	String Type = iota
	Int
	Float
	Bool
	Time
	UUID
	StringList
	TimeList
)

// Field describes one field of a collection.
type Field struct {
	// Name is the field name used by clients.
	Name string
	// Column is the relational column backing the field.
	Column string
	Type   Type
	// Hidden fields are only rendered when a projection names them.
	Hidden bool
}

// IsList reports whether the field holds several values.
func (f Field) IsList() bool { return f.Type == StringList || f.Type == TimeList }

// IDField is the identifier every collection exposes.
const IDField = "id"

// Schema is the field catalogue of one collection.
type Schema struct {
	Name   string
	fields []Field
	byName map[string]Field
}

// NewSchema builds a schema. The first field must be the identifier.
func NewSchema(name string, fields ...Field) *Schema {
	s := &Schema{Name: name, fields: fields, byName: make(map[string]Field, len(fields))}
	for _, f := range fields {
		s.byName[f.Name] = f
	}
	return s
}

// Field looks a field up by its client name.
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Fields returns every field in declaration order.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Cast converts raw to the Go type of the named field. List fields cast to
// their element type. Failures are reported as a CastError on the field.
func (s *Schema) Cast(name, raw string) (any, error) {
	f, ok := s.byName[name]
	if !ok {
		return nil, &fault.CastError{Path: name, Value: raw, Err: fmt.Errorf("unknown field in %s", s.Name)}
	}
	v, err := castValue(f.Type, raw)
	if err != nil {
		return nil, &fault.CastError{Path: name, Value: raw, Err: err}
	}
	return v, nil
}

func castValue(t Type, raw string) (any, error) {
	switch t {
	case String, StringList:
		return raw, nil
	case Int:
		return strconv.Atoi(strings.TrimSpace(raw))
	case Float:
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	case Bool:
		return strconv.ParseBool(strings.TrimSpace(raw))
	case Time, TimeList:
		return parseTime(strings.TrimSpace(raw))
	case UUID:
		return uuid.Parse(strings.TrimSpace(raw))
	default:
		return nil, fmt.Errorf("unsupported field type %d", t)
	}
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

func parseTime(raw string) (time.Time, error) {
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

// Condition is a predicate resolved against a schema, with typed values.
type Condition struct {
	Field  Field
	Op     Operator
	Values []any
}

// Conditions casts every predicate of a filter. A list of values is only
// meaningful for equality; it matches any of them.
func (s *Schema) Conditions(filter []Predicate) ([]Condition, error) {
	out := make([]Condition, 0, len(filter))
	for _, p := range filter {
		f, ok := s.byName[p.Field]
		if !ok {
			return nil, &fault.CastError{
				Path:  p.Field,
				Value: strings.Join(p.Values, ","),
				Err:   fmt.Errorf("unknown field in %s", s.Name),
			}
		}
		if p.IsList() && p.Op != OpEq {
			return nil, &fault.CastError{
				Path:  p.Field,
				Value: strings.Join(p.Values, ","),
				Err:   fmt.Errorf("operator %s takes a single value", p.Op),
			}
		}
		vals := make([]any, 0, len(p.Values))
		for _, raw := range p.Values {
			v, err := s.Cast(p.Field, raw)
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
		out = append(out, Condition{Field: f, Op: p.Op, Values: vals})
	}
	return out, nil
}

// Select resolves a projection to the fields to render, in schema order.
// Unknown names are ignored. The identifier is always rendered unless it is
// excluded, and hidden fields only when they are included by name.
func (s *Schema) Select(p Projection) []Field {
	named := make(map[string]bool, len(p.Fields))
	for _, n := range p.Fields {
		named[n] = true
	}

	out := make([]Field, 0, len(s.fields))
	for _, f := range s.fields {
		var keep bool
		switch {
		case p.Exclude:
			keep = !named[f.Name] && !f.Hidden
		case len(p.Fields) == 0:
			keep = !f.Hidden
		default:
			keep = named[f.Name] || f.Name == IDField
		}
		if keep {
			out = append(out, f)
		}
	}
	return out
}

// Order is a sort key resolved against a schema.
type Order struct {
	Field Field
	Desc  bool
}

// Order resolves sort keys, dropping fields the schema does not know and
// list fields, which have no natural order.
func (s *Schema) Order(keys []SortKey) []Order {
	out := make([]Order, 0, len(keys))
	for _, k := range keys {
		f, ok := s.byName[k.Field]
		if !ok || f.IsList() {
			continue
		}
		out = append(out, Order{Field: f, Desc: k.Desc})
	}
	return out
}
