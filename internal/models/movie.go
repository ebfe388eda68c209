package models

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrAlreadyReviewed = errors.New("movie already reviewed by user")
	ErrReviewNotFound  = errors.New("review not found")
)

type Review struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user"`
	Name      string    `json:"name"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Catalog holds the editable, descriptive part of a movie.
type Catalog struct {
	Name   string   `json:"name" validate:"required"`
	Image  string   `json:"image"`
	Year   int      `json:"year" validate:"required"`
	Genre  string   `json:"genre" validate:"required"`
	Detail string   `json:"detail" validate:"required"`
	Cast   []string `json:"cast"`
}

// Movie is the aggregate root for reviews. The review list and the two
// derived fields only change through AddReview and RemoveReview, which keep
// NumReviews == len(Reviews) and AvgRating == mean(ratings) (0 when empty).
type Movie struct {
	ID string
	Catalog
	CreatedAt time.Time
	UpdatedAt time.Time

	reviews    []Review
	numReviews int
	avgRating  float64
	rev        int64
}

func NewMovie(id string, c Catalog, now time.Time) *Movie {
	return &Movie{ID: id, Catalog: c, CreatedAt: now, UpdatedAt: now}
}

// RestoreMovie rebuilds a movie loaded from storage. Derived fields are
// recomputed from the reviews rather than trusted.
func RestoreMovie(id string, c Catalog, reviews []Review, createdAt, updatedAt time.Time, rev int64) *Movie {
	m := &Movie{
		ID:        id,
		Catalog:   c,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		reviews:   append([]Review(nil), reviews...),
		rev:       rev,
	}
	m.recompute()
	return m
}

func (m *Movie) Reviews() []Review  { return append([]Review(nil), m.reviews...) }
func (m *Movie) NumReviews() int    { return m.numReviews }
func (m *Movie) AvgRating() float64 { return m.avgRating }
func (m *Movie) Rev() int64         { return m.rev }

// MarkSaved records a successful conditional write of the review state.
func (m *Movie) MarkSaved(now time.Time) {
	m.rev++
	m.UpdatedAt = now
}

func (m *Movie) HasReviewBy(userID string) bool {
	for _, r := range m.reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// AddReview appends r unless its author already reviewed this movie.
func (m *Movie) AddReview(r Review) error {
	if m.HasReviewBy(r.UserID) {
		return ErrAlreadyReviewed
	}
	m.reviews = append(m.reviews, r)
	m.recompute()
	return nil
}

// RemoveReview drops the first review whose id matches and returns it.
func (m *Movie) RemoveReview(reviewID string) (Review, error) {
	for i, r := range m.reviews {
		if r.ID == reviewID {
			m.reviews = append(m.reviews[:i:i], m.reviews[i+1:]...)
			m.recompute()
			return r, nil
		}
	}
	return Review{}, ErrReviewNotFound
}

func (m *Movie) recompute() {
	m.numReviews = len(m.reviews)
	if m.numReviews == 0 {
		m.avgRating = 0
		return
	}
	var sum float64
	for _, r := range m.reviews {
		sum += r.Rating
	}
	m.avgRating = sum / float64(m.numReviews)
}

type movieJSON struct {
	ID string `json:"_id"`
	Catalog
	Reviews    []Review  `json:"reviews"`
	NumReviews int       `json:"numReviews"`
	AvgRating  float64   `json:"avgrating"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (m *Movie) MarshalJSON() ([]byte, error) {
	reviews := m.reviews
	if reviews == nil {
		reviews = []Review{}
	}
	return json.Marshal(movieJSON{
		ID:         m.ID,
		Catalog:    m.Catalog,
		Reviews:    reviews,
		NumReviews: m.numReviews,
		AvgRating:  m.avgRating,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	})
}

// UnmarshalJSON exists for the read cache; the revision is not carried.
func (m *Movie) UnmarshalJSON(b []byte) error {
	var v movieJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*m = *RestoreMovie(v.ID, v.Catalog, v.Reviews, v.CreatedAt, v.UpdatedAt, 0)
	return nil
}
