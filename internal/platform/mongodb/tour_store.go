package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/query"
	"github.com/phrazzld/natours-api/internal/store"
)

// tourVisible hides secret tours from every read and write but insert.
var tourVisible = bson.E{Key: "secretTour", Value: bson.D{{Key: "$ne", Value: true}}}

// MongoTourStore implements store.TourStore on a MongoDB collection.
type MongoTourStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoTourStore creates a tour store on the tours collection of db.
// If logger is nil, a default logger will be used.
func NewMongoTourStore(db *mongo.Database, logger *slog.Logger) *MongoTourStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoTourStore{
		coll:   db.Collection(ToursCollection),
		logger: logger.With(slog.String("component", "tour_store")),
	}
}

// Ensure MongoTourStore implements store.TourStore interface
var _ store.TourStore = (*MongoTourStore)(nil)

func visibleID(id uuid.UUID) bson.D {
	return bson.D{{Key: idKey, Value: id.String()}, tourVisible}
}

// Find implements store.TourStore.Find
func (s *MongoTourStore) Find(ctx context.Context, q query.Shaped) ([]store.Record, error) {
	filter, err := renderFilter(domain.TourSchema, tourVisible, q.Filter)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "finding tours", slog.Any("filter", filter))
	return findRecords(ctx, s.coll, filter, renderFindOptions(domain.TourSchema, q))
}

// GetByID implements store.TourStore.GetByID
func (s *MongoTourStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tour, error) {
	var doc tourDocument
	if err := s.coll.FindOne(ctx, visibleID(id)).Decode(&doc); err != nil {
		return nil, MapError(err, store.ErrTourNotFound)
	}
	return doc.tour()
}

// Create implements store.TourStore.Create
func (s *MongoTourStore) Create(ctx context.Context, tour *domain.Tour) error {
	if _, err := s.coll.InsertOne(ctx, newTourDocument(tour)); err != nil {
		return MapError(err, store.ErrTourNotFound)
	}
	s.logger.DebugContext(ctx, "tour inserted", slog.String("tour_id", tour.ID.String()))
	return nil
}

// CreateMany implements store.TourStore.CreateMany. The batch is inserted
// in order; if a document fails, the ones inserted before it are removed
// again.
func (s *MongoTourStore) CreateMany(ctx context.Context, tours []*domain.Tour) error {
	if len(tours) == 0 {
		return nil
	}
	docs := make([]any, len(tours))
	for i, t := range tours {
		docs[i] = newTourDocument(t)
	}

	_, err := s.coll.InsertMany(ctx, docs)
	if err == nil {
		return nil
	}

	inserted := len(tours)
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && len(bwe.WriteErrors) > 0 {
		inserted = bwe.WriteErrors[0].Index
	}
	if inserted > 0 {
		ids := make(bson.A, inserted)
		for i := range ids {
			ids[i] = tours[i].ID.String()
		}
		filter := bson.D{{Key: idKey, Value: bson.D{{Key: "$in", Value: ids}}}}
		if _, delErr := s.coll.DeleteMany(ctx, filter); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to roll back partial tour import",
				slog.Int("inserted", inserted), slog.String("error", delErr.Error()))
		}
	}
	return fmt.Errorf("%w: %w", store.ErrTransactionFailed, MapError(err, store.ErrTourNotFound))
}

// Update implements store.TourStore.Update
func (s *MongoTourStore) Update(ctx context.Context, tour *domain.Tour) error {
	res, err := s.coll.ReplaceOne(ctx, visibleID(tour.ID), newTourDocument(tour))
	if err != nil {
		return MapError(err, store.ErrTourNotFound)
	}
	if res.MatchedCount == 0 {
		return store.ErrTourNotFound
	}
	return nil
}

// Delete implements store.TourStore.Delete
func (s *MongoTourStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.DeleteOne(ctx, visibleID(id))
	if err != nil {
		return MapError(err, store.ErrTourNotFound)
	}
	if res.DeletedCount == 0 {
		return store.ErrTourNotFound
	}
	return nil
}

// DeleteAll implements store.TourStore.DeleteAll
func (s *MongoTourStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, MapError(err, store.ErrTourNotFound)
	}
	return res.DeletedCount, nil
}

type statsDocument struct {
	Difficulty string  `bson:"_id"`
	NumTours   int     `bson:"numTours"`
	NumRatings int     `bson:"numRatings"`
	AvgRating  float64 `bson:"avgRating"`
	AvgPrice   float64 `bson:"avgPrice"`
	MinPrice   float64 `bson:"minPrice"`
	MaxPrice   float64 `bson:"maxPrice"`
}

// statsPipeline groups visible tours rated at least minRating by
// difficulty, cheapest group first.
func statsPipeline(minRating float64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{tourVisible}}},
		{{Key: "$match", Value: bson.D{{Key: "ratingsAverage", Value: bson.D{{Key: "$gte", Value: minRating}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$toUpper", Value: "$difficulty"}}},
			{Key: "numTours", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "numRatings", Value: bson.D{{Key: "$sum", Value: "$ratingsQuantity"}}},
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$ratingsAverage"}}},
			{Key: "avgPrice", Value: bson.D{{Key: "$avg", Value: "$price"}}},
			{Key: "minPrice", Value: bson.D{{Key: "$min", Value: "$price"}}},
			{Key: "maxPrice", Value: bson.D{{Key: "$max", Value: "$price"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "avgPrice", Value: 1}}}},
	}
}

// Stats implements store.TourStore.Stats
func (s *MongoTourStore) Stats(ctx context.Context, minRating float64) ([]domain.TourStats, error) {
	var docs []statsDocument
	if err := aggregate(ctx, s.coll, statsPipeline(minRating), &docs); err != nil {
		return nil, err
	}

	stats := make([]domain.TourStats, 0, len(docs))
	for _, d := range docs {
		stats = append(stats, domain.TourStats(d))
	}
	return stats, nil
}

type planDocument struct {
	Month         int      `bson:"month"`
	NumTourStarts int      `bson:"numTourStarts"`
	Tours         []string `bson:"tours"`
}

// monthlyPlanPipeline counts tour starts per month of year, busiest month
// first.
func monthlyPlanPipeline(year int) mongo.Pipeline {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{tourVisible}}},
		{{Key: "$unwind", Value: "$startDates"}},
		{{Key: "$match", Value: bson.D{{Key: "startDates", Value: bson.D{
			{Key: "$gte", Value: from},
			{Key: "$lt", Value: to},
		}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$month", Value: "$startDates"}}},
			{Key: "numTourStarts", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "tours", Value: bson.D{{Key: "$push", Value: "$name"}}},
		}}},
		{{Key: "$addFields", Value: bson.D{{Key: "month", Value: "$_id"}}}},
		{{Key: "$project", Value: bson.D{{Key: "_id", Value: 0}}}},
		{{Key: "$sort", Value: bson.D{{Key: "numTourStarts", Value: -1}, {Key: "month", Value: 1}}}},
		{{Key: "$limit", Value: domain.MaxPlanMonths}},
	}
}

// MonthlyPlan implements store.TourStore.MonthlyPlan
func (s *MongoTourStore) MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlan, error) {
	var docs []planDocument
	if err := aggregate(ctx, s.coll, monthlyPlanPipeline(year), &docs); err != nil {
		return nil, err
	}

	plan := make([]domain.MonthlyPlan, 0, len(docs))
	for _, d := range docs {
		sort.Strings(d.Tours)
		plan = append(plan, domain.MonthlyPlan(d))
	}
	return plan, nil
}
