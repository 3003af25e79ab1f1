package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/natours-api/internal/query"
)

// Tour difficulties.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// DefaultRatingsAverage is the rating of a tour nobody has rated yet.
const DefaultRatingsAverage = 4.5

// Tour is a bookable tour listing.
type Tour struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name" validate:"required,min=10,max=40"`
	Slug            string      `json:"slug"`
	Duration        int         `json:"duration" validate:"required"`
	MaxGroupSize    int         `json:"maxGroupSize" validate:"required"`
	Difficulty      string      `json:"difficulty" validate:"required,oneof=easy medium difficult"`
	RatingsAverage  float64     `json:"ratingsAverage" validate:"gte=1,lte=5"`
	RatingsQuantity int         `json:"ratingsQuantity"`
	Price           float64     `json:"price" validate:"required"`
	PriceDiscount   float64     `json:"priceDiscount,omitempty" validate:"omitempty,ltfield=Price"`
	Summary         string      `json:"summary" validate:"required"`
	Description     string      `json:"description,omitempty"`
	ImageCover      string      `json:"imageCover" validate:"required"`
	Images          []string    `json:"images"`
	CreatedAt       time.Time   `json:"createdAt"`
	StartDates      []time.Time `json:"startDates"`
	SecretTour      bool        `json:"secretTour"`
	Version         int         `json:"__v"`
}

// TourSchema is the field catalogue used to shape tour queries.
var TourSchema = query.NewSchema("tours",
	query.Field{Name: "id", Column: "id", Type: query.UUID},
	query.Field{Name: "name", Column: "name", Type: query.String},
	query.Field{Name: "slug", Column: "slug", Type: query.String},
	query.Field{Name: "duration", Column: "duration", Type: query.Int},
	query.Field{Name: "maxGroupSize", Column: "max_group_size", Type: query.Int},
	query.Field{Name: "difficulty", Column: "difficulty", Type: query.String},
	query.Field{Name: "ratingsAverage", Column: "ratings_average", Type: query.Float},
	query.Field{Name: "ratingsQuantity", Column: "ratings_quantity", Type: query.Int},
	query.Field{Name: "price", Column: "price", Type: query.Float},
	query.Field{Name: "priceDiscount", Column: "price_discount", Type: query.Float},
	query.Field{Name: "summary", Column: "summary", Type: query.String},
	query.Field{Name: "description", Column: "description", Type: query.String},
	query.Field{Name: "imageCover", Column: "image_cover", Type: query.String},
	query.Field{Name: "images", Column: "images", Type: query.StringList},
	query.Field{Name: "createdAt", Column: "created_at", Type: query.Time, Hidden: true},
	query.Field{Name: "startDates", Column: "start_dates", Type: query.TimeList},
	query.Field{Name: "secretTour", Column: "secret_tour", Type: query.Bool},
	query.Field{Name: query.VersionField, Column: "version", Type: query.Int},
)

// TourWhitelist lists the tour filters that may be repeated in a request.
var TourWhitelist = []string{
	"duration",
	"ratingsQuantity",
	"ratingsAverage",
	"maxGroupSize",
	"difficulty",
	"price",
}

// Prepare normalizes a tour before it is validated and stored: it trims
// text fields, derives the slug and fills in defaults. A zero ID or
// creation time is assigned from now.
func (t *Tour) Prepare(now time.Time) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now.UTC().Truncate(time.Millisecond)
	}
	t.Name = strings.TrimSpace(t.Name)
	t.Summary = strings.TrimSpace(t.Summary)
	t.Description = strings.TrimSpace(t.Description)
	t.Slug = Slugify(t.Name)
	if t.RatingsAverage == 0 {
		t.RatingsAverage = DefaultRatingsAverage
	}
	if t.Images == nil {
		t.Images = []string{}
	}
	if t.StartDates == nil {
		t.StartDates = []time.Time{}
	}
}

// Validate checks every rule and reports all failures together.
func (t *Tour) Validate() error {
	return validateStruct(t)
}

// DurationWeeks is the duration expressed in weeks.
func (t *Tour) DurationWeeks() float64 {
	return WeeksOf(float64(t.Duration))
}

// WeeksOf converts a duration in days to weeks.
func WeeksOf(days float64) float64 {
	return days / 7
}

// TourStats summarises well-rated tours of one difficulty.
type TourStats struct {
	Difficulty string  `json:"_id"`
	NumTours   int     `json:"numTours"`
	NumRatings int     `json:"numRatings"`
	AvgRating  float64 `json:"avgRating"`
	AvgPrice   float64 `json:"avgPrice"`
	MinPrice   float64 `json:"minPrice"`
	MaxPrice   float64 `json:"maxPrice"`
}

// StatsMinRating is the rating threshold of the stats report.
const StatsMinRating = 4.5

// MonthlyPlan lists the tours starting in one month of a year.
type MonthlyPlan struct {
	Month         int      `json:"month"`
	NumTourStarts int      `json:"numTourStarts"`
	Tours         []string `json:"tours"`
}

// MaxPlanMonths bounds the monthly plan report.
const MaxPlanMonths = 12
