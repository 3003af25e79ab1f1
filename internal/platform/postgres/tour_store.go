package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/query"
	"github.com/phrazzld/natours-api/internal/store"
)

const (
	tourTable = "tours"

	// tourVisible hides secret tours from every read and write but insert.
	tourVisible = "secret_tour = FALSE"

	tourInsertSQL = `INSERT INTO tours (
		id, name, slug, duration, max_group_size, difficulty, ratings_average,
		ratings_quantity, price, price_discount, summary, description,
		image_cover, images, start_dates, secret_tour, version, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	tourUpdateSQL = `UPDATE tours SET
		name = $2, slug = $3, duration = $4, max_group_size = $5, difficulty = $6,
		ratings_average = $7, ratings_quantity = $8, price = $9, price_discount = $10,
		summary = $11, description = $12, image_cover = $13, images = $14,
		start_dates = $15, secret_tour = $16
	WHERE id = $1 AND ` + tourVisible

	tourStatsSQL = `SELECT upper(difficulty), count(*), sum(ratings_quantity),
		avg(ratings_average), avg(price), min(price), max(price)
	FROM tours
	WHERE ` + tourVisible + ` AND ratings_average >= $1
	GROUP BY upper(difficulty)
	ORDER BY avg(price) ASC`

	tourMonthlyPlanSQL = `SELECT extract(month FROM d AT TIME ZONE 'UTC')::int AS month,
		count(*) AS num_tour_starts,
		array_to_json(array_agg(name ORDER BY name))::text
	FROM tours, unnest(start_dates) AS d
	WHERE ` + tourVisible + ` AND d >= $1 AND d < $2
	GROUP BY month
	ORDER BY num_tour_starts DESC, month ASC
	LIMIT $3`
)

// PostgresTourStore implements the store.TourStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTourStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTourStore creates a new PostgreSQL implementation of the TourStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTourStore(db store.DBTX, logger *slog.Logger) *PostgresTourStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTourStore{
		db:     db,
		logger: logger.With(slog.String("component", "tour_store")),
	}
}

// Ensure PostgresTourStore implements store.TourStore interface
var _ store.TourStore = (*PostgresTourStore)(nil)

// WithTx returns a store that runs every statement in tx.
func (s *PostgresTourStore) WithTx(tx *sql.Tx) *PostgresTourStore {
	return &PostgresTourStore{db: tx, logger: s.logger}
}

// Find implements store.TourStore.Find
func (s *PostgresTourStore) Find(ctx context.Context, q query.Shaped) ([]store.Record, error) {
	stmt, args, err := renderFind(domain.TourSchema, tourTable, tourVisible, q)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "finding tours", slog.String("sql", stmt), slog.Int("args", len(args)))
	return queryRecords(ctx, s.db, stmt, args)
}

// GetByID implements store.TourStore.GetByID
func (s *PostgresTourStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tour, error) {
	stmt := "SELECT " + jsonObject(domain.TourSchema.Fields()) +
		" FROM " + tourTable + " WHERE id = $1 AND " + tourVisible

	var tour domain.Tour
	if err := queryObject(ctx, s.db, store.ErrTourNotFound, &tour, stmt, id); err != nil {
		return nil, err
	}
	return &tour, nil
}

// Create implements store.TourStore.Create
func (s *PostgresTourStore) Create(ctx context.Context, tour *domain.Tour) error {
	_, err := s.db.ExecContext(ctx, tourInsertSQL,
		tour.ID, tour.Name, tour.Slug, tour.Duration, tour.MaxGroupSize, tour.Difficulty,
		tour.RatingsAverage, tour.RatingsQuantity, tour.Price, nullFloat(tour.PriceDiscount),
		tour.Summary, tour.Description, tour.ImageCover, nonNil(tour.Images),
		utcTimes(tour.StartDates), tour.SecretTour, tour.Version, tour.CreatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	s.logger.DebugContext(ctx, "tour inserted", slog.String("tour_id", tour.ID.String()))
	return nil
}

// CreateMany implements store.TourStore.CreateMany. On a connection pool
// the inserts run in their own transaction; inside a transaction they join
// it.
func (s *PostgresTourStore) CreateMany(ctx context.Context, tours []*domain.Tour) error {
	insertAll := func(ctx context.Context, st *PostgresTourStore) error {
		for _, t := range tours {
			if err := st.Create(ctx, t); err != nil {
				return err
			}
		}
		return nil
	}

	db, ok := s.db.(*sql.DB)
	if !ok {
		return insertAll(ctx, s)
	}
	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return insertAll(ctx, s.WithTx(tx))
	})
}

// Update implements store.TourStore.Update
func (s *PostgresTourStore) Update(ctx context.Context, tour *domain.Tour) error {
	res, err := s.db.ExecContext(ctx, tourUpdateSQL,
		tour.ID, tour.Name, tour.Slug, tour.Duration, tour.MaxGroupSize, tour.Difficulty,
		tour.RatingsAverage, tour.RatingsQuantity, tour.Price, nullFloat(tour.PriceDiscount),
		tour.Summary, tour.Description, tour.ImageCover, nonNil(tour.Images),
		utcTimes(tour.StartDates), tour.SecretTour,
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(res, store.ErrTourNotFound)
}

// Delete implements store.TourStore.Delete
func (s *PostgresTourStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tours WHERE id = $1 AND "+tourVisible, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(res, store.ErrTourNotFound)
}

// DeleteAll implements store.TourStore.DeleteAll
func (s *PostgresTourStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tours")
	if err != nil {
		return 0, MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// Stats implements store.TourStore.Stats
func (s *PostgresTourStore) Stats(ctx context.Context, minRating float64) ([]domain.TourStats, error) {
	rows, err := s.db.QueryContext(ctx, tourStatsSQL, minRating)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	stats := []domain.TourStats{}
	for rows.Next() {
		var st domain.TourStats
		if err := rows.Scan(&st.Difficulty, &st.NumTours, &st.NumRatings,
			&st.AvgRating, &st.AvgPrice, &st.MinPrice, &st.MaxPrice); err != nil {
			return nil, fmt.Errorf("failed to scan tour stats: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return stats, nil
}

// MonthlyPlan implements store.TourStore.MonthlyPlan
func (s *PostgresTourStore) MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlan, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	rows, err := s.db.QueryContext(ctx, tourMonthlyPlanSQL, from, to, domain.MaxPlanMonths)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	plan := []domain.MonthlyPlan{}
	for rows.Next() {
		var (
			m     domain.MonthlyPlan
			names string
		)
		if err := rows.Scan(&m.Month, &m.NumTourStarts, &names); err != nil {
			return nil, fmt.Errorf("failed to scan monthly plan: %w", err)
		}
		if err := json.Unmarshal([]byte(names), &m.Tours); err != nil {
			return nil, fmt.Errorf("failed to decode monthly plan tours: %w", err)
		}
		plan = append(plan, m)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return plan, nil
}

func nullFloat(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: f != 0}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func utcTimes(ts []time.Time) []time.Time {
	out := make([]time.Time, len(ts))
	for i, t := range ts {
		out[i] = t.UTC()
	}
	return out
}
