package mongodb

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/natours-api/internal/domain"
)

type tourDocument struct {
	ID              string      `bson:"_id"`
	Name            string      `bson:"name"`
	Slug            string      `bson:"slug"`
	Duration        int         `bson:"duration"`
	MaxGroupSize    int         `bson:"maxGroupSize"`
	Difficulty      string      `bson:"difficulty"`
	RatingsAverage  float64     `bson:"ratingsAverage"`
	RatingsQuantity int         `bson:"ratingsQuantity"`
	Price           float64     `bson:"price"`
	PriceDiscount   float64     `bson:"priceDiscount,omitempty"`
	Summary         string      `bson:"summary"`
	Description     string      `bson:"description,omitempty"`
	ImageCover      string      `bson:"imageCover"`
	Images          []string    `bson:"images"`
	CreatedAt       time.Time   `bson:"createdAt"`
	StartDates      []time.Time `bson:"startDates"`
	SecretTour      bool        `bson:"secretTour"`
	Version         int         `bson:"__v"`
}

func newTourDocument(t *domain.Tour) tourDocument {
	images := t.Images
	if images == nil {
		images = []string{}
	}
	starts := make([]time.Time, len(t.StartDates))
	for i, d := range t.StartDates {
		starts[i] = d.UTC()
	}
	return tourDocument{
		ID:              t.ID.String(),
		Name:            t.Name,
		Slug:            t.Slug,
		Duration:        t.Duration,
		MaxGroupSize:    t.MaxGroupSize,
		Difficulty:      t.Difficulty,
		RatingsAverage:  t.RatingsAverage,
		RatingsQuantity: t.RatingsQuantity,
		Price:           t.Price,
		PriceDiscount:   t.PriceDiscount,
		Summary:         t.Summary,
		Description:     t.Description,
		ImageCover:      t.ImageCover,
		Images:          images,
		CreatedAt:       t.CreatedAt.UTC(),
		StartDates:      starts,
		SecretTour:      t.SecretTour,
		Version:         t.Version,
	}
}

func (d tourDocument) tour() (*domain.Tour, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	starts := make([]time.Time, len(d.StartDates))
	for i, s := range d.StartDates {
		starts[i] = s.UTC()
	}
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return &domain.Tour{
		ID:              id,
		Name:            d.Name,
		Slug:            d.Slug,
		Duration:        d.Duration,
		MaxGroupSize:    d.MaxGroupSize,
		Difficulty:      d.Difficulty,
		RatingsAverage:  d.RatingsAverage,
		RatingsQuantity: d.RatingsQuantity,
		Price:           d.Price,
		PriceDiscount:   d.PriceDiscount,
		Summary:         d.Summary,
		Description:     d.Description,
		ImageCover:      d.ImageCover,
		Images:          images,
		CreatedAt:       d.CreatedAt.UTC(),
		StartDates:      starts,
		SecretTour:      d.SecretTour,
		Version:         d.Version,
	}, nil
}

type userDocument struct {
	ID                   string     `bson:"_id"`
	Name                 string     `bson:"name"`
	Email                string     `bson:"email"`
	Photo                string     `bson:"photo,omitempty"`
	Role                 string     `bson:"role"`
	Password             string     `bson:"password"`
	PasswordChangedAt    *time.Time `bson:"passwordChangedAt,omitempty"`
	PasswordResetToken   string     `bson:"passwordResetToken,omitempty"`
	PasswordResetExpires *time.Time `bson:"passwordResetExpires,omitempty"`
	Active               bool       `bson:"active"`
	CreatedAt            time.Time  `bson:"createdAt"`
}

func newUserDocument(u *domain.User) userDocument {
	return userDocument{
		ID:                   u.ID.String(),
		Name:                 u.Name,
		Email:                u.Email,
		Photo:                u.Photo,
		Role:                 u.Role,
		Password:             u.HashedPassword,
		PasswordChangedAt:    utcPtr(u.PasswordChangedAt),
		PasswordResetToken:   u.PasswordResetToken,
		PasswordResetExpires: utcPtr(u.PasswordResetExpires),
		Active:               u.Active,
		CreatedAt:            u.CreatedAt.UTC(),
	}
}

func (d userDocument) user() (*domain.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:                   id,
		Name:                 d.Name,
		Email:                d.Email,
		Photo:                d.Photo,
		Role:                 d.Role,
		HashedPassword:       d.Password,
		PasswordChangedAt:    utcPtr(d.PasswordChangedAt),
		PasswordResetToken:   d.PasswordResetToken,
		PasswordResetExpires: utcPtr(d.PasswordResetExpires),
		Active:               d.Active,
		CreatedAt:            d.CreatedAt.UTC(),
	}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
