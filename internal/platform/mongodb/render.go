package mongodb

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phrazzld/natours-api/internal/query"
	"github.com/phrazzld/natours-api/internal/store"
)

// idKey is the document key backing query.IDField.
const idKey = "_id"

// mongoOps maps structured operators to query operators.
var mongoOps = map[query.Operator]string{
	query.OpEq:  "$eq",
	query.OpGt:  "$gt",
	query.OpGte: "$gte",
	query.OpLt:  "$lt",
	query.OpLte: "$lte",
}

// key returns the document key of a field.
func key(f query.Field) string {
	if f.Name == query.IDField {
		return idKey
	}
	return f.Name
}

// value converts a cast filter value to its stored form.
func value(v any) any {
	switch x := v.(type) {
	case uuid.UUID:
		return x.String()
	case time.Time:
		return x.UTC()
	default:
		return v
	}
}

// renderFilter renders the conditions of a shaped query. visible is always
// the first clause. A condition on a list field matches when any element
// does, which is how array fields compare natively.
func renderFilter(schema *query.Schema, visible bson.E, filter []query.Predicate) (bson.D, error) {
	conds, err := schema.Conditions(filter)
	if err != nil {
		return nil, err
	}

	and := bson.A{bson.D{visible}}
	for _, c := range conds {
		k := key(c.Field)
		if len(c.Values) > 1 {
			in := make(bson.A, 0, len(c.Values))
			for _, v := range c.Values {
				in = append(in, value(v))
			}
			and = append(and, bson.D{{Key: k, Value: bson.D{{Key: "$in", Value: in}}}})
			continue
		}
		and = append(and, bson.D{{Key: k, Value: bson.D{{Key: mongoOps[c.Op], Value: value(c.Values[0])}}}})
	}

	if len(and) == 1 {
		return bson.D{visible}, nil
	}
	return bson.D{{Key: "$and", Value: and}}, nil
}

// renderFindOptions renders the sort, projection and window of a shaped
// query. Ties are broken by _id so paging is stable.
func renderFindOptions(schema *query.Schema, q query.Shaped) *options.FindOptions {
	opts := options.Find()

	sort := bson.D{}
	for _, o := range schema.Order(q.Sort) {
		dir := 1
		if o.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: key(o.Field), Value: dir})
	}
	sort = append(sort, bson.E{Key: idKey, Value: 1})
	opts.SetSort(sort)

	proj := bson.D{}
	withID := false
	for _, f := range schema.Select(q.Projection) {
		if f.Name == query.IDField {
			withID = true
			continue
		}
		proj = append(proj, bson.E{Key: key(f), Value: 1})
	}
	if !withID {
		proj = append(proj, bson.E{Key: idKey, Value: 0})
	}
	opts.SetProjection(proj)

	if q.Window.Skip > 0 {
		opts.SetSkip(int64(q.Window.Skip))
	}
	if q.Window.Limit > 0 {
		opts.SetLimit(int64(q.Window.Limit))
	}
	return opts
}

// toRecord converts a decoded document to a record keyed by client field
// name, with driver types replaced by plain Go values.
func toRecord(doc bson.M) store.Record {
	rec := make(store.Record, len(doc))
	for k, v := range doc {
		if k == idKey {
			k = query.IDField
		}
		rec[k] = plain(v)
	}
	return rec
}

func plain(v any) any {
	switch x := v.(type) {
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case bson.M:
		return map[string]any(toRecord(x))
	case primitive.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = plain(e.Value)
		}
		return m
	default:
		return v
	}
}
