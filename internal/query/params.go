package query

import (
	"net/url"
	"strings"
)

// Reserved parameter keys. They carry shaping instructions and are never
// treated as filter predicates.
const (
	KeyPage   = "page"
	KeySort   = "sort"
	KeyLimit  = "limit"
	KeyFields = "fields"
)

var reserved = map[string]struct{}{
	KeyPage:   {},
	KeySort:   {},
	KeyLimit:  {},
	KeyFields: {},
}

// IsReserved reports whether key is one of the shaping keys.
func IsReserved(key string) bool {
	_, ok := reserved[key]
	return ok
}

// Params is the raw request parameter set. A key maps to every value it was
// given, in request order.
type Params map[string][]string

// Get returns the last value for key, or "" when the key is absent.
func (p Params) Get(key string) string {
	vs := p[key]
	if len(vs) == 0 {
		return ""
	}
	return vs[len(vs)-1]
}

// Has reports whether key was supplied at all.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, vs := range p {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// ParamsFromValues builds Params from a parsed query string.
//
// Keys containing '$' or '.' are dropped so that no operator or nested path
// can be smuggled into a storage filter. A key repeated in the request keeps
// only its last value unless it is listed in whitelist, in which case every
// value is kept.
func ParamsFromValues(values url.Values, whitelist ...string) Params {
	allowed := make(map[string]struct{}, len(whitelist))
	for _, w := range whitelist {
		allowed[w] = struct{}{}
	}

	out := make(Params, len(values))
	for key, vs := range values {
		if len(vs) == 0 || strings.ContainsAny(key, "$.") {
			continue
		}
		if _, ok := allowed[fieldOf(key)]; ok || len(vs) == 1 {
			out[key] = append([]string(nil), vs...)
			continue
		}
		out[key] = []string{vs[len(vs)-1]}
	}
	return out
}

// fieldOf strips an operator suffix, so price[gte] is whitelisted by price.
func fieldOf(key string) string {
	if i := strings.IndexByte(key, '['); i > 0 {
		return key[:i]
	}
	return key
}

// Preset is a fixed parameter set layered over a request, used by alias
// routes such as the five cheapest top-rated tours.
type Preset Params

// Apply returns a copy of p with every preset key overriding the request.
func (pr Preset) Apply(p Params) Params {
	out := p.Clone()
	for k, vs := range pr {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// TopCheapTours lists the five best rated tours, cheapest first on ties.
var TopCheapTours = Preset{
	KeyLimit:  {"5"},
	KeySort:   {"-ratingsAverage,price"},
	KeyFields: {"name,price,ratingsAverage,summary,difficulty"},
}
