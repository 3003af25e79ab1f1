package query

import (
	"math"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/phrazzld/natours-api/internal/fault"
)

// Operator is a structured comparison operator.
type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

// Defaults applied when the request leaves a step unspecified.
const (
	DefaultPage  = 1
	DefaultLimit = 100

	// CreatedField orders results when no sort is requested.
	CreatedField = "createdAt"

	// VersionField is the internal revision counter hidden by default.
	VersionField = "__v"
)

// Predicate is one conjunct of the filter. Values holds more than one entry
// only when the request repeated the key.
type Predicate struct {
	Field  string
	Op     Operator
	Values []string
}

// IsList reports whether the predicate was given several values.
func (p Predicate) IsList() bool { return len(p.Values) > 1 }

// SortKey is one field of the sort order.
type SortKey struct {
	Field string
	Desc  bool
}

// Projection selects which fields are rendered. Exclude flips Fields from an
// allow list to a deny list.
type Projection struct {
	Fields  []string
	Exclude bool
}

// Window is the pagination bound.
type Window struct {
	Page  int
	Limit int
	Skip  int
}

// Shaped is a fully composed query. Steps never mutate a Shaped value they
// receive.
type Shaped struct {
	Filter     []Predicate
	Sort       []SortKey
	Projection Projection
	Window     Window
}

// Step is one stage of the shaping pipeline.
type Step func(Shaped, Params) (Shaped, error)

// Steps is the standard pipeline order.
var Steps = []Step{Filter, Sort, Project, Paginate}

// Shape runs the standard pipeline over params.
func Shape(params Params) (Shaped, error) {
	return Apply(Shaped{}, params, Steps...)
}

// Apply runs steps in order, stopping at the first failure.
func Apply(q Shaped, params Params, steps ...Step) (Shaped, error) {
	var err error
	for _, step := range steps {
		if q, err = step(q, params); err != nil {
			return Shaped{}, err
		}
	}
	return q, nil
}

var filterKeyRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(?:\[(gte|gt|lte|lt)\])?$`)

// Filter turns every non-reserved key into a predicate. Keys are read as
// field or field[op]; anything else fails with a client error.
func Filter(q Shaped, params Params) (Shaped, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		if !IsReserved(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	preds := make([]Predicate, 0, len(q.Filter)+len(keys))
	preds = append(preds, q.Filter...)
	for _, k := range keys {
		m := filterKeyRe.FindStringSubmatch(k)
		if m == nil {
			return q, fault.Errorf(http.StatusBadRequest, "Invalid filter parameter: %s", k)
		}
		op := OpEq
		if m[2] != "" {
			op = Operator(m[2])
		}
		preds = append(preds, Predicate{
			Field:  m[1],
			Op:     op,
			Values: append([]string(nil), params[k]...),
		})
	}

	q.Filter = preds
	return q, nil
}

// Sort reads a comma separated field list; a leading '-' sorts descending.
// Without one the newest records come first.
func Sort(q Shaped, params Params) (Shaped, error) {
	var keys []SortKey
	for _, f := range splitList(params.Get(KeySort)) {
		if desc := strings.HasPrefix(f, "-"); desc {
			if f = strings.TrimPrefix(f, "-"); f != "" {
				keys = append(keys, SortKey{Field: f, Desc: true})
			}
			continue
		}
		keys = append(keys, SortKey{Field: f})
	}
	if len(keys) == 0 {
		keys = []SortKey{{Field: CreatedField, Desc: true}}
	}

	q.Sort = keys
	return q, nil
}

// Project reads a comma separated field list. Plain names include, names
// prefixed with '-' exclude, and the two cannot be mixed. Without one the
// version field is excluded.
func Project(q Shaped, params Params) (Shaped, error) {
	fields := splitList(params.Get(KeyFields))
	if len(fields) == 0 {
		q.Projection = Projection{Fields: []string{VersionField}, Exclude: true}
		return q, nil
	}

	var incl, excl []string
	for _, f := range fields {
		if name, ok := strings.CutPrefix(f, "-"); ok {
			if name != "" {
				excl = append(excl, name)
			}
			continue
		}
		incl = append(incl, f)
	}
	if len(incl) > 0 && len(excl) > 0 {
		return q, fault.New("Projection cannot mix inclusion and exclusion", http.StatusBadRequest)
	}

	if len(excl) > 0 {
		q.Projection = Projection{Fields: excl, Exclude: true}
	} else {
		q.Projection = Projection{Fields: incl}
	}
	return q, nil
}

// Paginate reads page and limit as positive integers, falling back to the
// defaults, and derives the skip count. An out of range page is not an
// error; it simply matches nothing.
func Paginate(q Shaped, params Params) (Shaped, error) {
	page := positiveInt(params.Get(KeyPage), DefaultPage)
	limit := positiveInt(params.Get(KeyLimit), DefaultLimit)

	skip := (page - 1) * limit
	if page > 1 && skip/(page-1) != limit {
		skip = math.MaxInt
	}

	q.Window = Window{Page: page, Limit: limit, Skip: skip}
	return q, nil
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
