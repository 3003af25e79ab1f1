package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phrazzld/natours-api/internal/query"
)

// sqlOps maps structured operators to SQL comparison operators.
var sqlOps = map[query.Operator]string{
	query.OpEq:  "=",
	query.OpGt:  ">",
	query.OpGte: ">=",
	query.OpLt:  "<",
	query.OpLte: "<=",
}

// statement accumulates positional arguments while SQL is rendered.
type statement struct {
	args []any
}

// arg registers v and returns its placeholder.
func (s *statement) arg(v any) string {
	s.args = append(s.args, v)
	return "$" + strconv.Itoa(len(s.args))
}

// jsonObject renders a jsonb_build_object expression over fields, keyed by
// client field name. NULL columns are left out, and the result is cast to
// text so it scans into a string.
func jsonObject(fields []query.Field) string {
	parts := make([]string, 0, 2*len(fields))
	for _, f := range fields {
		parts = append(parts, quoteLiteral(f.Name), f.Column)
	}
	return "jsonb_strip_nulls(jsonb_build_object(" + strings.Join(parts, ", ") + "))::text"
}

// quoteLiteral renders s as a SQL string literal. Field names come from a
// schema, never from a request, but are escaped all the same.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// renderFind renders a shaped query against table. The visible clause is
// always part of the WHERE clause.
func renderFind(schema *query.Schema, table, visible string, q query.Shaped) (string, []any, error) {
	conds, err := schema.Conditions(q.Filter)
	if err != nil {
		return "", nil, err
	}

	st := &statement{}
	where := []string{visible}
	for _, c := range conds {
		where = append(where, st.condition(c))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(jsonObject(schema.Select(q.Projection)))
	b.WriteString(" FROM ")
	b.WriteString(table)
	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(where, " AND "))
	b.WriteString(" ORDER BY ")
	b.WriteString(orderBy(schema.Order(q.Sort)))
	if q.Window.Skip > 0 {
		b.WriteString(" OFFSET ")
		b.WriteString(st.arg(q.Window.Skip))
	}
	if q.Window.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(st.arg(q.Window.Limit))
	}

	return b.String(), st.args, nil
}

// condition renders one typed predicate. Several equality values match any
// of them. On a list column a predicate holds when any element satisfies
// it.
func (st *statement) condition(c query.Condition) string {
	op := sqlOps[c.Op]
	col := c.Field.Column

	if !c.Field.IsList() {
		if len(c.Values) == 1 {
			return fmt.Sprintf("%s %s %s", col, op, st.arg(c.Values[0]))
		}
		ph := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			ph = append(ph, st.arg(v))
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(ph, ", "))
	}

	if c.Op == query.OpEq {
		alts := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			alts = append(alts, fmt.Sprintf("%s = ANY(%s)", st.arg(v), col))
		}
		if len(alts) == 1 {
			return alts[0]
		}
		return "(" + strings.Join(alts, " OR ") + ")"
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(%s) AS e WHERE e %s %s)", col, op, st.arg(c.Values[0]))
}

// orderBy renders the sort keys followed by the primary key, which keeps
// pages stable when sort values tie.
func orderBy(orders []query.Order) string {
	parts := make([]string, 0, len(orders)+1)
	for _, o := range orders {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, o.Field.Column+" "+dir)
	}
	parts = append(parts, "id ASC")
	return strings.Join(parts, ", ")
}
