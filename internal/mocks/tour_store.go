package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/fault"
	"github.com/phrazzld/natours-api/internal/query"
	"github.com/phrazzld/natours-api/internal/store"
)

// MockTourStore implements store.TourStore for testing
type MockTourStore struct {
	FindFn        func(ctx context.Context, q query.Shaped) ([]store.Record, error)
	GetByIDFn     func(ctx context.Context, id uuid.UUID) (*domain.Tour, error)
	CreateFn      func(ctx context.Context, tour *domain.Tour) error
	CreateManyFn  func(ctx context.Context, tours []*domain.Tour) error
	UpdateFn      func(ctx context.Context, tour *domain.Tour) error
	DeleteFn      func(ctx context.Context, id uuid.UUID) error
	DeleteAllFn   func(ctx context.Context) (int64, error)
	StatsFn       func(ctx context.Context, minRating float64) ([]domain.TourStats, error)
	MonthlyPlanFn func(ctx context.Context, year int) ([]domain.MonthlyPlan, error)

	// LastQuery records the most recent shaped query passed to Find.
	LastQuery query.Shaped

	mu    sync.Mutex
	Tours map[uuid.UUID]*domain.Tour
}

var _ store.TourStore = (*MockTourStore)(nil)

// NewMockTourStore creates a mock store holding tours.
func NewMockTourStore(tours ...*domain.Tour) *MockTourStore {
	m := &MockTourStore{Tours: make(map[uuid.UUID]*domain.Tour)}
	for _, t := range tours {
		m.Tours[t.ID] = t
	}
	return m
}

// Find implements the TourStore interface. The default renders every
// visible tour with the query's projection and ignores the rest of it.
func (m *MockTourStore) Find(ctx context.Context, q query.Shaped) ([]store.Record, error) {
	m.mu.Lock()
	m.LastQuery = q
	m.mu.Unlock()

	if m.FindFn != nil {
		return m.FindFn(ctx, q)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := []store.Record{}
	for _, t := range m.Tours {
		if t.SecretTour {
			continue
		}
		rec, err := store.ProjectRecord(domain.TourSchema, q.Projection, t)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// GetByID implements the TourStore interface
func (m *MockTourStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tour, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.Tours[id]
	if !ok || t.SecretTour {
		return nil, store.ErrTourNotFound
	}
	cp := *t
	return &cp, nil
}

// Create implements the TourStore interface
func (m *MockTourStore) Create(ctx context.Context, tour *domain.Tour) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, tour)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(tour)
}

// CreateMany implements the TourStore interface
func (m *MockTourStore) CreateMany(ctx context.Context, tours []*domain.Tour) error {
	if m.CreateManyFn != nil {
		return m.CreateManyFn(ctx, tours)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[uuid.UUID]*domain.Tour, len(m.Tours))
	for k, v := range m.Tours {
		snapshot[k] = v
	}
	for _, t := range tours {
		if err := m.insert(t); err != nil {
			m.Tours = snapshot
			return err
		}
	}
	return nil
}

func (m *MockTourStore) insert(tour *domain.Tour) error {
	for _, t := range m.Tours {
		if t.Name == tour.Name {
			return &fault.DuplicateKeyError{Field: "name", Value: `"` + tour.Name + `"`}
		}
	}
	m.Tours[tour.ID] = tour
	return nil
}

// Update implements the TourStore interface
func (m *MockTourStore) Update(ctx context.Context, tour *domain.Tour) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, tour)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.Tours[tour.ID]
	if !ok || t.SecretTour {
		return store.ErrTourNotFound
	}
	m.Tours[tour.ID] = tour
	return nil
}

// Delete implements the TourStore interface
func (m *MockTourStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.Tours[id]
	if !ok || t.SecretTour {
		return store.ErrTourNotFound
	}
	delete(m.Tours, id)
	return nil
}

// DeleteAll implements the TourStore interface
func (m *MockTourStore) DeleteAll(ctx context.Context) (int64, error) {
	if m.DeleteAllFn != nil {
		return m.DeleteAllFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n := int64(len(m.Tours))
	m.Tours = make(map[uuid.UUID]*domain.Tour)
	return n, nil
}

// Stats implements the TourStore interface
func (m *MockTourStore) Stats(ctx context.Context, minRating float64) ([]domain.TourStats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx, minRating)
	}
	return []domain.TourStats{}, nil
}

// MonthlyPlan implements the TourStore interface
func (m *MockTourStore) MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlan, error) {
	if m.MonthlyPlanFn != nil {
		return m.MonthlyPlanFn(ctx, year)
	}
	return []domain.MonthlyPlan{}, nil
}
