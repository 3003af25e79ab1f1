package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/fault"
	"github.com/phrazzld/natours-api/internal/query"
	"github.com/phrazzld/natours-api/internal/store"
)

const toursNS = "natours.tours"

func tourDoc(id uuid.UUID, name string) bson.D {
	return bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "name", Value: name},
		{Key: "slug", Value: domain.Slugify(name)},
		{Key: "duration", Value: int32(5)},
		{Key: "maxGroupSize", Value: int32(25)},
		{Key: "difficulty", Value: "easy"},
		{Key: "ratingsAverage", Value: 4.7},
		{Key: "ratingsQuantity", Value: int32(37)},
		{Key: "price", Value: 397.0},
		{Key: "summary", Value: "Breathtaking hike through the Canadian Banff National Park"},
		{Key: "imageCover", Value: "tour-1-cover.jpg"},
		{Key: "images", Value: bson.A{"tour-1-1.jpg"}},
		{Key: "createdAt", Value: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Key: "startDates", Value: bson.A{time.Date(2021, 4, 25, 9, 0, 0, 0, time.UTC)}},
		{Key: "secretTour", Value: false},
		{Key: "__v", Value: int32(0)},
	}
}

func sampleTour() *domain.Tour {
	t := &domain.Tour{
		Name:         "The Forest Hiker",
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   domain.DifficultyEasy,
		Price:        397,
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:   "tour-1-cover.jpg",
	}
	t.Prepare(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return t
}

func TestMongoTourStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	id := uuid.New()

	mt.Run("get by id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, toursNS, mtest.FirstBatch, tourDoc(id, "The Forest Hiker")))

		got, err := NewMongoTourStore(mt.DB, nil).GetByID(ctx, id)
		require.NoError(mt, err)
		assert.Equal(mt, id, got.ID)
		assert.Equal(mt, "the-forest-hiker", got.Slug)
		assert.Equal(mt, 5, got.Duration)
		assert.Equal(mt, []time.Time{time.Date(2021, 4, 25, 9, 0, 0, 0, time.UTC)}, got.StartDates)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, toursNS, mtest.FirstBatch))

		_, err := NewMongoTourStore(mt.DB, nil).GetByID(ctx, id)
		assert.ErrorIs(mt, err, store.ErrTourNotFound)
	})

	mt.Run("find", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, toursNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: id.String()}, {Key: "name", Value: "The Forest Hiker"}},
		))

		q, err := query.Shape(query.Params{"fields": {"name"}})
		require.NoError(mt, err)

		recs, err := NewMongoTourStore(mt.DB, nil).Find(ctx, q)
		require.NoError(mt, err)
		require.Len(mt, recs, 1)
		assert.Equal(mt, store.Record{"id": id.String(), "name": "The Forest Hiker"}, recs[0])
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: dupMessage,
		}))

		err := NewMongoTourStore(mt.DB, nil).Create(ctx, sampleTour())

		var dupErr *fault.DuplicateKeyError
		require.ErrorAs(mt, err, &dupErr)
		assert.Equal(mt, `"The Forest Hiker"`, dupErr.Value)
	})

	mt.Run("create many rolls back", func(mt *mtest.T) {
		first, second := sampleTour(), sampleTour()
		mt.AddMockResponses(
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 1, Code: 11000, Message: dupMessage}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}),
		)

		err := NewMongoTourStore(mt.DB, nil).CreateMany(ctx, []*domain.Tour{first, second})
		assert.ErrorIs(mt, err, store.ErrTransactionFailed)

		var dupErr *fault.DuplicateKeyError
		assert.ErrorAs(mt, err, &dupErr)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}))

		err := NewMongoTourStore(mt.DB, nil).Delete(ctx, id)
		assert.ErrorIs(mt, err, store.ErrTourNotFound)
	})

	mt.Run("update", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(1)},
			bson.E{Key: "nModified", Value: int32(1)},
		))

		assert.NoError(mt, NewMongoTourStore(mt.DB, nil).Update(ctx, sampleTour()))
	})

	mt.Run("stats", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, toursNS, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "EASY"},
				{Key: "numTours", Value: int32(4)},
				{Key: "numRatings", Value: int32(159)},
				{Key: "avgRating", Value: 4.675},
				{Key: "avgPrice", Value: 1272.0},
				{Key: "minPrice", Value: 397.0},
				{Key: "maxPrice", Value: 1997.0},
			},
		))

		stats, err := NewMongoTourStore(mt.DB, nil).Stats(ctx, domain.StatsMinRating)
		require.NoError(mt, err)
		require.Len(mt, stats, 1)
		assert.Equal(mt, domain.TourStats{
			Difficulty: "EASY", NumTours: 4, NumRatings: 159,
			AvgRating: 4.675, AvgPrice: 1272, MinPrice: 397, MaxPrice: 1997,
		}, stats[0])
	})

	mt.Run("monthly plan sorts tour names", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, toursNS, mtest.FirstBatch,
			bson.D{
				{Key: "numTourStarts", Value: int32(2)},
				{Key: "tours", Value: bson.A{"The Sea Explorer", "The Forest Hiker"}},
				{Key: "month", Value: int32(7)},
			},
		))

		plan, err := NewMongoTourStore(mt.DB, nil).MonthlyPlan(ctx, 2021)
		require.NoError(mt, err)
		require.Len(mt, plan, 1)
		assert.Equal(mt, 7, plan[0].Month)
		assert.Equal(mt, []string{"The Forest Hiker", "The Sea Explorer"}, plan[0].Tours)
	})
}

func TestMongoUserStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	id := uuid.New()
	changed := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	mt.Run("get by email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "natours.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id.String()},
			{Key: "name", Value: "Laura Wilson"},
			{Key: "email", Value: "laura@example.com"},
			{Key: "role", Value: "user"},
			{Key: "password", Value: "$2a$12$hash"},
			{Key: "passwordChangedAt", Value: changed},
			{Key: "active", Value: true},
			{Key: "createdAt", Value: changed},
		}))

		u, err := NewMongoUserStore(mt.DB, nil).GetByEmail(ctx, "laura@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, id, u.ID)
		assert.Equal(mt, "$2a$12$hash", u.HashedPassword)
		require.NotNil(mt, u.PasswordChangedAt)
		assert.True(mt, changed.Equal(*u.PasswordChangedAt))
		assert.Nil(mt, u.PasswordResetExpires)
	})

	mt.Run("reset token not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "natours.users", mtest.FirstBatch))

		_, err := NewMongoUserStore(mt.DB, nil).GetByResetToken(ctx, "abc", time.Now())
		assert.ErrorIs(mt, err, store.ErrUserNotFound)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}))

		err := NewMongoUserStore(mt.DB, nil).Update(ctx, &domain.User{ID: id})
		assert.ErrorIs(mt, err, store.ErrUserNotFound)
	})
}
