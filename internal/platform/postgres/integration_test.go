//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/fault"
	"github.com/phrazzld/natours-api/internal/platform/postgres"
	"github.com/phrazzld/natours-api/internal/query"
	"github.com/phrazzld/natours-api/internal/store"
	"github.com/phrazzld/natours-api/internal/testdb"
)

func newTour(name string, price float64, difficulty string, starts ...time.Time) *domain.Tour {
	t := &domain.Tour{
		Name:           name,
		Duration:       7,
		MaxGroupSize:   10,
		Difficulty:     difficulty,
		RatingsAverage: 4.7,
		Price:          price,
		Summary:        "A tour used by the integration tests",
		ImageCover:     "cover.jpg",
		StartDates:     starts,
	}
	t.Prepare(time.Now())
	return t
}

func TestTourStore_Integration(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		s := postgres.NewPostgresTourStore(tx, nil)
		_, err := s.DeleteAll(ctx)
		require.NoError(t, err)

		april := time.Date(2021, 4, 25, 9, 0, 0, 0, time.UTC)
		july := time.Date(2021, 7, 20, 9, 0, 0, 0, time.UTC)
		hiker := newTour("The Forest Hiker", 397, domain.DifficultyEasy, april, july)
		explorer := newTour("The Sea Explorer", 497, domain.DifficultyMedium, april)
		secret := newTour("The Secret Passage", 997, domain.DifficultyEasy, april)
		secret.SecretTour = true

		require.NoError(t, s.CreateMany(ctx, []*domain.Tour{hiker, explorer, secret}))

		t.Run("duplicate name", func(t *testing.T) {
			dup := newTour("The Forest Hiker", 100, domain.DifficultyEasy)
			err := s.Create(ctx, dup)

			var dupErr *fault.DuplicateKeyError
			require.ErrorAs(t, err, &dupErr)
			assert.Equal(t, `"The Forest Hiker"`, dupErr.Value)
		})

		t.Run("find shaped", func(t *testing.T) {
			q, err := query.Shape(query.Params{
				"price[gte]": {"400"},
				"fields":     {"name,price"},
			})
			require.NoError(t, err)

			recs, err := s.Find(ctx, q)
			require.NoError(t, err)
			require.Len(t, recs, 1)
			assert.Equal(t, "The Sea Explorer", recs[0]["name"])
			assert.NotContains(t, recs[0], "duration")
		})

		t.Run("secret tours are hidden", func(t *testing.T) {
			_, err := s.GetByID(ctx, secret.ID)
			assert.ErrorIs(t, err, store.ErrTourNotFound)
		})

		t.Run("update and get", func(t *testing.T) {
			hiker.Price = 450
			require.NoError(t, s.Update(ctx, hiker))

			got, err := s.GetByID(ctx, hiker.ID)
			require.NoError(t, err)
			assert.Equal(t, 450.0, got.Price)
			assert.Equal(t, hiker.Slug, got.Slug)
		})

		t.Run("stats", func(t *testing.T) {
			stats, err := s.Stats(ctx, domain.StatsMinRating)
			require.NoError(t, err)
			require.Len(t, stats, 2)
			assert.Equal(t, "EASY", stats[0].Difficulty)
			assert.Equal(t, 1, stats[0].NumTours)
		})

		t.Run("monthly plan", func(t *testing.T) {
			plan, err := s.MonthlyPlan(ctx, 2021)
			require.NoError(t, err)
			require.Len(t, plan, 2)
			assert.Equal(t, 4, plan[0].Month)
			assert.Equal(t, []string{"The Forest Hiker", "The Sea Explorer"}, plan[0].Tours)
		})

		t.Run("delete", func(t *testing.T) {
			require.NoError(t, s.Delete(ctx, explorer.ID))
			assert.ErrorIs(t, s.Delete(ctx, explorer.ID), store.ErrTourNotFound)
		})
	})
}

func TestUserStore_Integration(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		s := postgres.NewPostgresUserStore(tx, nil)

		u := &domain.User{
			Name:           "Laura Wilson",
			Email:          "laura-" + uuid.NewString() + "@example.com",
			Role:           domain.RoleUser,
			HashedPassword: "$2a$12$abcdefghijklmnopqrstuv",
			Active:         true,
		}
		u.Prepare(time.Now())
		require.NoError(t, s.Create(ctx, u))

		got, err := s.GetByEmail(ctx, u.Email)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, u.HashedPassword, got.HashedPassword)

		dup := *u
		dup.ID = uuid.New()
		var dupErr *fault.DuplicateKeyError
		require.ErrorAs(t, s.Create(ctx, &dup), &dupErr)

		now := time.Now()
		token, err := got.CreatePasswordResetToken(now, 10*time.Minute)
		require.NoError(t, err)
		require.NoError(t, s.Update(ctx, got))

		byToken, err := s.GetByResetToken(ctx, domain.HashResetToken(token), now)
		require.NoError(t, err)
		assert.Equal(t, u.ID, byToken.ID)

		_, err = s.GetByResetToken(ctx, domain.HashResetToken(token), now.Add(11*time.Minute))
		assert.True(t, errors.Is(err, store.ErrUserNotFound))

		got.Active = false
		require.NoError(t, s.Update(ctx, got))
		_, err = s.GetByID(ctx, u.ID)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}
