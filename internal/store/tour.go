package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/query"
)

// TourStore defines the interface for tour persistence. Secret tours are
// invisible to every read, update, delete and aggregate; only Create and
// DeleteAll see them.
type TourStore interface {
	// Find executes a shaped query and returns the projected records in
	// order. Filters are cast through domain.TourSchema; a value that does
	// not fit its field yields a fault.CastError.
	Find(ctx context.Context, q query.Shaped) ([]Record, error)

	// GetByID retrieves a tour by ID.
	// Returns ErrTourNotFound if the tour does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tour, error)

	// Create saves a new tour.
	// Returns a fault.DuplicateKeyError if the name is taken.
	Create(ctx context.Context, tour *domain.Tour) error

	// CreateMany saves tours atomically: either all are stored or none.
	CreateMany(ctx context.Context, tours []*domain.Tour) error

	// Update replaces an existing tour with the given one.
	// Returns ErrTourNotFound if the tour does not exist.
	Update(ctx context.Context, tour *domain.Tour) error

	// Delete removes a tour.
	// Returns ErrTourNotFound if the tour does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteAll removes every tour and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)

	// Stats groups tours rated at least minRating by difficulty, ordered by
	// average price.
	Stats(ctx context.Context, minRating float64) ([]domain.TourStats, error)

	// MonthlyPlan counts tour starts per month of year, busiest month
	// first, at most domain.MaxPlanMonths entries.
	MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlan, error)
}
