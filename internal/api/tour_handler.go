package api

import (
	"net/http"

	"github.com/phrazzld/natours-api/internal/api/shared"
	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/query"
	"github.com/phrazzld/natours-api/internal/service"
)

// TourHandler handles the tour endpoints.
type TourHandler struct {
	tours service.TourService
}

// NewTourHandler creates a new TourHandler.
func NewTourHandler(tours service.TourService) *TourHandler {
	return &TourHandler{tours: tours}
}

// tourParams reads the query string, keeping repeated values only for the
// whitelisted tour filters.
func tourParams(r *http.Request) query.Params {
	return query.ParamsFromValues(r.URL.Query(), domain.TourWhitelist...)
}

// ListTours handles GET /tours.
func (h *TourHandler) ListTours(w http.ResponseWriter, r *http.Request) error {
	return h.list(w, r, tourParams(r))
}

// TopCheapTours handles GET /tours/top-5-cheap, a preset over ListTours.
func (h *TourHandler) TopCheapTours(w http.ResponseWriter, r *http.Request) error {
	return h.list(w, r, query.TopCheapTours.Apply(tourParams(r)))
}

func (h *TourHandler) list(w http.ResponseWriter, r *http.Request, params query.Params) error {
	tours, err := h.tours.ListTours(r.Context(), params)
	if err != nil {
		return err
	}
	shared.RespondWithList(w, r, "tours", tours)
	return nil
}

// GetTour handles GET /tours/{id}.
func (h *TourHandler) GetTour(w http.ResponseWriter, r *http.Request) error {
	id, err := getPathUUID(r, "id")
	if err != nil {
		return err
	}
	tour, err := h.tours.GetTour(r.Context(), id)
	if err != nil {
		return err
	}
	shared.RespondWithData(w, r, http.StatusOK, "tour", tour)
	return nil
}

// CreateTour handles POST /tours.
func (h *TourHandler) CreateTour(w http.ResponseWriter, r *http.Request) error {
	var tour domain.Tour
	if err := shared.DecodeJSON(w, r, &tour); err != nil {
		return err
	}
	created, err := h.tours.CreateTour(r.Context(), &tour)
	if err != nil {
		return err
	}
	shared.RespondWithData(w, r, http.StatusCreated, "tour", created)
	return nil
}

// UpdateTour handles PATCH /tours/{id}.
func (h *TourHandler) UpdateTour(w http.ResponseWriter, r *http.Request) error {
	id, err := getPathUUID(r, "id")
	if err != nil {
		return err
	}
	patch, err := shared.DecodePatch(w, r)
	if err != nil {
		return err
	}
	tour, err := h.tours.UpdateTour(r.Context(), id, patch)
	if err != nil {
		return err
	}
	shared.RespondWithData(w, r, http.StatusOK, "tour", tour)
	return nil
}

// DeleteTour handles DELETE /tours/{id}.
func (h *TourHandler) DeleteTour(w http.ResponseWriter, r *http.Request) error {
	id, err := getPathUUID(r, "id")
	if err != nil {
		return err
	}
	if err := h.tours.DeleteTour(r.Context(), id); err != nil {
		return err
	}
	shared.RespondNoContent(w)
	return nil
}

// TourStats handles GET /tours/tour-stats.
func (h *TourHandler) TourStats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.tours.TourStats(r.Context())
	if err != nil {
		return err
	}
	shared.RespondWithData(w, r, http.StatusOK, "stats", stats)
	return nil
}

// MonthlyPlan handles GET /tours/monthly-plan/{year}.
func (h *TourHandler) MonthlyPlan(w http.ResponseWriter, r *http.Request) error {
	year, err := getPathInt(r, "year")
	if err != nil {
		return err
	}
	plan, err := h.tours.MonthlyPlan(r.Context(), year)
	if err != nil {
		return err
	}
	shared.RespondWithData(w, r, http.StatusOK, "plan", plan)
	return nil
}
