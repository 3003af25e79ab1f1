package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsFromValues(t *testing.T) {
	t.Parallel()

	values := url.Values{
		"sort":           {"duration", "price"},
		"duration":       {"5", "9"},
		"price[gte]":     {"100", "200"},
		"name":           {"The Sea Explorer"},
		"$where":         {"1"},
		"guides.name":    {"x"},
		"ratingsAverage": {"4", "5"},
		"ratings[$ne]":   {"1"},
	}

	got := ParamsFromValues(values, "duration", "price")

	assert.Equal(t, []string{"price"}, got["sort"], "repeated key outside the whitelist keeps its last value")
	assert.Equal(t, []string{"5", "9"}, got["duration"])
	assert.Equal(t, []string{"100", "200"}, got["price[gte]"], "operator keys inherit their field's whitelisting")
	assert.Equal(t, []string{"The Sea Explorer"}, got["name"])
	assert.Equal(t, []string{"5"}, got["ratingsAverage"])
	assert.NotContains(t, got, "$where")
	assert.NotContains(t, got, "guides.name")
	assert.NotContains(t, got, "ratings[$ne]")
}

func TestParamsGet(t *testing.T) {
	t.Parallel()

	p := Params{"a": {"1", "2"}, "b": {}}

	assert.Equal(t, "2", p.Get("a"))
	assert.Equal(t, "", p.Get("b"))
	assert.Equal(t, "", p.Get("missing"))
	assert.True(t, p.Has("b"))
	assert.False(t, p.Has("missing"))
}

func TestPresetApplyOverridesRequest(t *testing.T) {
	t.Parallel()

	req := Params{KeyLimit: {"50"}, "difficulty": {"easy"}}
	got := TopCheapTours.Apply(req)

	assert.Equal(t, []string{"5"}, got[KeyLimit])
	assert.Equal(t, []string{"-ratingsAverage,price"}, got[KeySort])
	assert.Equal(t, []string{"easy"}, got["difficulty"])
	assert.Equal(t, []string{"50"}, req[KeyLimit], "request params are not modified")

	q, err := Shape(got)
	assert.NoError(t, err)
	assert.Equal(t, []SortKey{{Field: "ratingsAverage", Desc: true}, {Field: "price"}}, q.Sort)
	assert.Equal(t, 5, q.Window.Limit)
}
