package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phrazzld/natours-api/internal/store"
)

// findRecords runs a find and converts every document to a record.
func findRecords(
	ctx context.Context,
	coll *mongo.Collection,
	filter bson.D,
	opts *options.FindOptions,
) ([]store.Record, error) {
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, MapError(err, store.ErrNotFound)
	}
	defer func() { _ = cur.Close(ctx) }()

	recs := []store.Record{}
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		recs = append(recs, toRecord(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, MapError(err, store.ErrNotFound)
	}
	return recs, nil
}

// aggregate runs pipeline and decodes every result into out.
func aggregate(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, out any) error {
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return MapError(err, store.ErrNotFound)
	}
	defer func() { _ = cur.Close(ctx) }()

	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode aggregation results: %w", err)
	}
	return nil
}
