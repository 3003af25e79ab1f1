package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/fault"
	"github.com/phrazzld/natours-api/internal/mocks"
	"github.com/phrazzld/natours-api/internal/platform/logger"
	"github.com/phrazzld/natours-api/internal/query"
	"github.com/phrazzld/natours-api/internal/service"
	"github.com/phrazzld/natours-api/internal/store"
)

func forestHiker() *domain.Tour {
	return &domain.Tour{
		ID:           uuid.New(),
		Name:         "The Forest Hiker",
		Duration:     14,
		MaxGroupSize: 25,
		Difficulty:   domain.DifficultyEasy,
		Price:        397,
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:   "tour-1-cover.jpg",
	}
}

func newTourService(t *testing.T, tours *mocks.MockTourStore) service.TourService {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	svc, err := service.NewTourService(tours, log)
	require.NoError(t, err)
	return svc
}

func TestNewTourService(t *testing.T) {
	_, err := service.NewTourService(nil, nil)
	assert.ErrorIs(t, err, service.ErrMissingDependency)

	svc, err := service.NewTourService(mocks.NewMockTourStore(), nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestTourService_ListTours(t *testing.T) {
	t.Run("shapes params before querying", func(t *testing.T) {
		tours := mocks.NewMockTourStore()
		tours.FindFn = func(ctx context.Context, q query.Shaped) ([]store.Record, error) {
			return []store.Record{{"name": "The Sea Explorer", "duration": float64(7)}}, nil
		}
		svc := newTourService(t, tours)

		records, err := svc.ListTours(context.Background(), query.Params{
			"difficulty": {"easy"},
			"sort":       {"-price"},
			"page":       {"2"},
			"limit":      {"10"},
		})
		require.NoError(t, err)

		require.Len(t, records, 1)
		assert.Equal(t, 1.0, records[0]["durationWeeks"])

		q := tours.LastQuery
		assert.Equal(t, []query.Predicate{{Field: "difficulty", Op: query.OpEq, Values: []string{"easy"}}}, q.Filter)
		assert.Equal(t, []query.SortKey{{Field: "price", Desc: true}}, q.Sort)
		assert.Equal(t, 10, q.Window.Skip)
		assert.Equal(t, 10, q.Window.Limit)
	})

	t.Run("shaping error is returned before the store is called", func(t *testing.T) {
		tours := mocks.NewMockTourStore()
		called := false
		tours.FindFn = func(ctx context.Context, q query.Shaped) ([]store.Record, error) {
			called = true
			return nil, nil
		}
		svc := newTourService(t, tours)

		_, err := svc.ListTours(context.Background(), query.Params{"fields": {"name,-price"}})
		require.Error(t, err)
		assert.False(t, called)
		assert.Equal(t, 400, fault.Classify(err, fault.ModeProduction).StatusCode)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		tours := mocks.NewMockTourStore()
		tours.FindFn = func(ctx context.Context, q query.Shaped) ([]store.Record, error) {
			return nil, dbErr
		}
		svc := newTourService(t, tours)

		_, err := svc.ListTours(context.Background(), query.Params{})
		assert.ErrorIs(t, err, dbErr)

		var svcErr *service.ServiceError
		assert.ErrorAs(t, err, &svcErr)
	})
}

func TestTourService_GetTour(t *testing.T) {
	tour := forestHiker()
	tour.Prepare(time.Now())
	svc := newTourService(t, mocks.NewMockTourStore(tour))

	rec, err := svc.GetTour(context.Background(), tour.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Forest Hiker", rec["name"])
	assert.Equal(t, 2.0, rec["durationWeeks"])
	assert.NotContains(t, rec, "__v")
	assert.NotContains(t, rec, "createdAt")

	_, err = svc.GetTour(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrTourNotFound)
}

func TestTourService_CreateTour(t *testing.T) {
	t.Run("valid tour is prepared and stored", func(t *testing.T) {
		tours := mocks.NewMockTourStore()
		svc := newTourService(t, tours)

		in := forestHiker()
		in.ID = uuid.Nil
		rec, err := svc.CreateTour(context.Background(), in)
		require.NoError(t, err)

		assert.Equal(t, "the-forest-hiker", rec["slug"])
		assert.Equal(t, domain.DefaultRatingsAverage, rec["ratingsAverage"])
		assert.Len(t, tours.Tours, 1)
	})

	t.Run("invalid tour is rejected", func(t *testing.T) {
		tours := mocks.NewMockTourStore()
		svc := newTourService(t, tours)

		in := forestHiker()
		in.Name = "Short"
		in.PriceDiscount = 500
		_, err := svc.CreateTour(context.Background(), in)

		var valErr *fault.ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Len(t, valErr.Fields, 2)
		assert.Empty(t, tours.Tours)
	})

	t.Run("duplicate name passes through", func(t *testing.T) {
		existing := forestHiker()
		svc := newTourService(t, mocks.NewMockTourStore(existing))

		_, err := svc.CreateTour(context.Background(), forestHiker())
		resp := fault.Classify(err, fault.ModeProduction)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, `Duplicate field value: "The Forest Hiker". Please use another value!`, resp.Envelope.Message)
	})
}

func TestTourService_UpdateTour(t *testing.T) {
	t.Run("patch is applied and revalidated", func(t *testing.T) {
		tour := forestHiker()
		tour.Prepare(time.Now())
		tours := mocks.NewMockTourStore(tour)
		svc := newTourService(t, tours)

		rec, err := svc.UpdateTour(context.Background(), tour.ID, map[string]any{
			"name":  "The Northern Lights",
			"price": 1497,
		})
		require.NoError(t, err)

		assert.Equal(t, "the-northern-lights", rec["slug"])
		assert.Equal(t, 1497.0, rec["price"])
		assert.Equal(t, "The Northern Lights", tours.Tours[tour.ID].Name)
	})

	t.Run("invalid patch leaves the tour untouched", func(t *testing.T) {
		tour := forestHiker()
		tour.Prepare(time.Now())
		tours := mocks.NewMockTourStore(tour)
		svc := newTourService(t, tours)

		_, err := svc.UpdateTour(context.Background(), tour.ID, map[string]any{"difficulty": "extreme"})
		var valErr *fault.ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, domain.DifficultyEasy, tours.Tours[tour.ID].Difficulty)
	})

	t.Run("missing tour", func(t *testing.T) {
		svc := newTourService(t, mocks.NewMockTourStore())
		_, err := svc.UpdateTour(context.Background(), uuid.New(), map[string]any{"price": 1})
		assert.ErrorIs(t, err, store.ErrTourNotFound)
	})
}

func TestTourService_DeleteTour(t *testing.T) {
	tour := forestHiker()
	tours := mocks.NewMockTourStore(tour)
	svc := newTourService(t, tours)

	require.NoError(t, svc.DeleteTour(context.Background(), tour.ID))
	assert.Empty(t, tours.Tours)
	assert.ErrorIs(t, svc.DeleteTour(context.Background(), tour.ID), store.ErrTourNotFound)
}

func TestTourService_Aggregates(t *testing.T) {
	tours := mocks.NewMockTourStore()
	var gotRating float64
	tours.StatsFn = func(ctx context.Context, minRating float64) ([]domain.TourStats, error) {
		gotRating = minRating
		return []domain.TourStats{{Difficulty: "easy", NumTours: 4}}, nil
	}
	var gotYear int
	tours.MonthlyPlanFn = func(ctx context.Context, year int) ([]domain.MonthlyPlan, error) {
		gotYear = year
		return []domain.MonthlyPlan{{Month: 7, NumTourStarts: 3, Tours: []string{"a", "b", "c"}}}, nil
	}
	svc := newTourService(t, tours)

	stats, err := svc.TourStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatsMinRating, gotRating)
	assert.Len(t, stats, 1)

	plan, err := svc.MonthlyPlan(context.Background(), 2021)
	require.NoError(t, err)
	assert.Equal(t, 2021, gotYear)
	assert.Equal(t, 7, plan[0].Month)

	_, err = svc.MonthlyPlan(context.Background(), 0)
	assert.ErrorIs(t, err, service.ErrInvalidYear)
}

func TestTourService_ImportAndDeleteAll(t *testing.T) {
	t.Run("imports a valid batch", func(t *testing.T) {
		tours := mocks.NewMockTourStore()
		svc := newTourService(t, tours)

		second := forestHiker()
		second.Name = "The Sea Explorer"
		n, err := svc.ImportTours(context.Background(), []*domain.Tour{forestHiker(), second})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Len(t, tours.Tours, 2)

		deleted, err := svc.DeleteAllTours(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
	})

	t.Run("one invalid tour rejects the batch", func(t *testing.T) {
		tours := mocks.NewMockTourStore()
		svc := newTourService(t, tours)

		bad := forestHiker()
		bad.Difficulty = ""
		_, err := svc.ImportTours(context.Background(), []*domain.Tour{forestHiker(), bad})

		var valErr *fault.ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Empty(t, tours.Tours)
	})
}
