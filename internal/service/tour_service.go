package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/query"
	"github.com/phrazzld/natours-api/internal/store"
)

// TourService provides the tour catalogue operations.
type TourService interface {
	// ListTours shapes params into a query and returns the matching tours.
	ListTours(ctx context.Context, params query.Params) ([]store.Record, error)

	// GetTour returns one tour.
	GetTour(ctx context.Context, id uuid.UUID) (store.Record, error)

	// CreateTour validates and stores a new tour.
	CreateTour(ctx context.Context, tour *domain.Tour) (store.Record, error)

	// UpdateTour overlays patch onto a stored tour and revalidates it.
	UpdateTour(ctx context.Context, id uuid.UUID, patch map[string]any) (store.Record, error)

	// DeleteTour removes one tour.
	DeleteTour(ctx context.Context, id uuid.UUID) error

	// TourStats summarises well-rated tours by difficulty.
	TourStats(ctx context.Context) ([]domain.TourStats, error)

	// MonthlyPlan counts tour starts per month of year.
	MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlan, error)

	// ImportTours validates and stores tours in one batch.
	ImportTours(ctx context.Context, tours []*domain.Tour) (int, error)

	// DeleteAllTours removes every tour.
	DeleteAllTours(ctx context.Context) (int64, error)
}

// TourServiceImpl implements the TourService interface
type TourServiceImpl struct {
	tours  store.TourStore
	logger *slog.Logger
	now    func() time.Time
}

// NewTourService creates a TourService. It fails if a dependency is missing.
func NewTourService(tours store.TourStore, logger *slog.Logger) (TourService, error) {
	if tours == nil {
		return nil, fmt.Errorf("%w: tour store", ErrMissingDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TourServiceImpl{
		tours:  tours,
		logger: logger.With(slog.String("component", "tour_service")),
		now:    time.Now,
	}, nil
}

// ListTours implements TourService.
func (s *TourServiceImpl) ListTours(ctx context.Context, params query.Params) ([]store.Record, error) {
	shaped, err := query.Shape(params)
	if err != nil {
		return nil, err
	}

	records, err := s.tours.Find(ctx, shaped)
	if err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	for _, rec := range records {
		withDurationWeeks(rec)
	}

	s.logger.DebugContext(ctx, "listed tours",
		slog.Int("count", len(records)),
		slog.Int("page", shaped.Window.Page),
		slog.Int("limit", shaped.Window.Limit))
	return records, nil
}

// GetTour implements TourService.
func (s *TourServiceImpl) GetTour(ctx context.Context, id uuid.UUID) (store.Record, error) {
	tour, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "get", err)
	}
	return tourRecord(tour)
}

// CreateTour implements TourService.
func (s *TourServiceImpl) CreateTour(ctx context.Context, tour *domain.Tour) (store.Record, error) {
	tour.ID = uuid.Nil
	tour.CreatedAt = time.Time{}
	tour.Version = 0
	tour.Prepare(s.now())
	if err := tour.Validate(); err != nil {
		return nil, err
	}

	if err := s.tours.Create(ctx, tour); err != nil {
		return nil, s.fail(ctx, "create", err)
	}

	s.logger.InfoContext(ctx, "tour created",
		slog.String("tour_id", tour.ID.String()),
		slog.String("slug", tour.Slug))
	return tourRecord(tour)
}

// UpdateTour implements TourService. The stored tour is loaded, patched,
// normalized and validated as a whole before it is written back.
func (s *TourServiceImpl) UpdateTour(
	ctx context.Context,
	id uuid.UUID,
	patch map[string]any,
) (store.Record, error) {
	tour, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "update", err)
	}

	if err := tour.ApplyPatch(patch); err != nil {
		return nil, err
	}
	tour.Prepare(s.now())
	if err := tour.Validate(); err != nil {
		return nil, err
	}

	if err := s.tours.Update(ctx, tour); err != nil {
		return nil, s.fail(ctx, "update", err)
	}

	s.logger.InfoContext(ctx, "tour updated", slog.String("tour_id", tour.ID.String()))
	return tourRecord(tour)
}

// DeleteTour implements TourService.
func (s *TourServiceImpl) DeleteTour(ctx context.Context, id uuid.UUID) error {
	if err := s.tours.Delete(ctx, id); err != nil {
		return s.fail(ctx, "delete", err)
	}
	s.logger.InfoContext(ctx, "tour deleted", slog.String("tour_id", id.String()))
	return nil
}

// TourStats implements TourService.
func (s *TourServiceImpl) TourStats(ctx context.Context) ([]domain.TourStats, error) {
	stats, err := s.tours.Stats(ctx, domain.StatsMinRating)
	if err != nil {
		return nil, s.fail(ctx, "stats", err)
	}
	return stats, nil
}

// MonthlyPlan implements TourService.
func (s *TourServiceImpl) MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlan, error) {
	if year < 1 || year > 9999 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	plan, err := s.tours.MonthlyPlan(ctx, year)
	if err != nil {
		return nil, s.fail(ctx, "monthly_plan", err)
	}
	return plan, nil
}

// ImportTours implements TourService. Every tour is validated before any
// is stored; the store writes the batch atomically.
func (s *TourServiceImpl) ImportTours(ctx context.Context, tours []*domain.Tour) (int, error) {
	now := s.now()
	for i, t := range tours {
		t.Prepare(now)
		if err := t.Validate(); err != nil {
			return 0, fmt.Errorf("tour %d (%q): %w", i, t.Name, err)
		}
	}

	if err := s.tours.CreateMany(ctx, tours); err != nil {
		return 0, s.fail(ctx, "import", err)
	}

	s.logger.InfoContext(ctx, "tours imported", slog.Int("count", len(tours)))
	return len(tours), nil
}

// DeleteAllTours implements TourService.
func (s *TourServiceImpl) DeleteAllTours(ctx context.Context) (int64, error) {
	n, err := s.tours.DeleteAll(ctx)
	if err != nil {
		return 0, s.fail(ctx, "delete_all", err)
	}
	s.logger.InfoContext(ctx, "tours deleted", slog.Int64("count", n))
	return n, nil
}

// fail logs unexpected store failures and wraps them with the operation.
// Not-found and client faults pass through untouched.
func (s *TourServiceImpl) fail(ctx context.Context, op string, err error) error {
	if store.IsNotFoundError(err) || isClientFault(err) {
		return err
	}
	s.logger.ErrorContext(ctx, "tour store operation failed",
		slog.String("operation", op),
		slog.Any("error", err))
	return NewServiceError("tour", op, err)
}
