package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/baharkarakas/moviecatalog/internal/api/validate"
	"github.com/baharkarakas/moviecatalog/internal/apperr"
	"github.com/baharkarakas/moviecatalog/internal/cache"
	"github.com/baharkarakas/moviecatalog/internal/metrics"
	"github.com/baharkarakas/moviecatalog/internal/models"
	repo "github.com/baharkarakas/moviecatalog/internal/repository"
)

const (
	msgMovieNotFound   = "Movie not found"
	msgCommentNotFound = "Comment not found"

	curatedListSize = 10

	// A review write that loses the revision race this many times in a row
	// is reported to the client as a conflict.
	maxReviewAttempts = 3
)

type MovieService struct {
	movies repo.Movies
	genres repo.Genres
	cache  *cache.Store
	audit  *Auditor
	now    func() time.Time
}

func NewMovieService(movies repo.Movies, genres repo.Genres, c *cache.Store, audit *Auditor) *MovieService {
	return &MovieService{movies: movies, genres: genres, cache: c, audit: audit, now: time.Now}
}

// CatalogPatch carries the catalog fields a client sent; nil means unchanged.
type CatalogPatch struct {
	Name   *string   `json:"name"`
	Image  *string   `json:"image"`
	Year   *int      `json:"year"`
	Genre  *string   `json:"genre"`
	Detail *string   `json:"detail"`
	Cast   *[]string `json:"cast"`
}

func (p CatalogPatch) apply(c models.Catalog) models.Catalog {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Image != nil {
		c.Image = *p.Image
	}
	if p.Year != nil {
		c.Year = *p.Year
	}
	if p.Genre != nil {
		c.Genre = *p.Genre
	}
	if p.Detail != nil {
		c.Detail = *p.Detail
	}
	if p.Cast != nil {
		c.Cast = append([]string(nil), (*p.Cast)...)
	}
	return c
}

func normalizeCatalog(c models.Catalog) models.Catalog {
	c.Name = strings.TrimSpace(c.Name)
	c.Image = strings.TrimSpace(c.Image)
	c.Genre = strings.TrimSpace(c.Genre)
	c.Detail = strings.TrimSpace(c.Detail)
	cast := make([]string, 0, len(c.Cast))
	for _, name := range c.Cast {
		if name = strings.TrimSpace(name); name != "" {
			cast = append(cast, name)
		}
	}
	c.Cast = cast
	return c
}

// sent lists the catalog fields present in the patch by struct field name.
func (p CatalogPatch) sent() []string {
	var out []string
	for name, set := range map[string]bool{
		"Name":   p.Name != nil,
		"Year":   p.Year != nil,
		"Genre":  p.Genre != nil,
		"Detail": p.Detail != nil,
	} {
		if set {
			out = append(out, name)
		}
	}
	return out
}

func (s *MovieService) checkCatalog(ctx context.Context, c models.Catalog) error {
	if err := validate.Struct(c); err != nil {
		return apperr.Validation(err.Error())
	}
	return s.checkGenre(ctx, c.Genre)
}

func (s *MovieService) checkGenre(ctx context.Context, id string) error {
	_, err := s.genres.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.Validation(msgGenreNotFound)
	}
	if err != nil {
		return apperr.Internal("Failed to check genre", err)
	}
	return nil
}

func (s *MovieService) Create(ctx context.Context, actorID string, c models.Catalog) (*models.Movie, error) {
	c = normalizeCatalog(c)
	if err := s.checkCatalog(ctx, c); err != nil {
		return nil, err
	}
	m := models.NewMovie(models.NewID(), c, s.now().UTC())
	if err := s.movies.Create(ctx, m); err != nil {
		return nil, apperr.Internal("Failed to create movie", err)
	}
	s.cache.InvalidateMovie(ctx, "")
	s.audit.Record("movie", m.ID, actorID, "created", map[string]any{"name": m.Name})
	return m, nil
}

func (s *MovieService) List(ctx context.Context) ([]*models.Movie, error) {
	ms, err := s.movies.List(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch movies", err)
	}
	return ms, nil
}

func (s *MovieService) Get(ctx context.Context, id string) (*models.Movie, error) {
	var cached models.Movie
	if s.cache.Get(ctx, cache.MovieKey(id), &cached) {
		return &cached, nil
	}
	m, err := s.movies.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound(msgMovieNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch movie", err)
	}
	s.cache.Set(ctx, cache.MovieKey(id), m, cache.DetailTTL)
	return m, nil
}

func (s *MovieService) Update(ctx context.Context, actorID, id string, p CatalogPatch) (*models.Movie, error) {
	cur, err := s.movies.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound(msgMovieNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("Failed to update movie", err)
	}
	// Only what the client sent is checked, so a movie whose genre was
	// deleted, or a record with blank legacy fields, can still be edited.
	c := normalizeCatalog(p.apply(cur.Catalog))
	if err := validate.Partial(c, p.sent()...); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if p.Genre != nil {
		if err := s.checkGenre(ctx, c.Genre); err != nil {
			return nil, err
		}
	}
	m, err := s.movies.UpdateCatalog(ctx, id, c)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound(msgMovieNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("Failed to update movie", err)
	}
	s.cache.InvalidateMovie(ctx, id)
	s.audit.Record("movie", id, actorID, "updated", nil)
	return m, nil
}

func (s *MovieService) Delete(ctx context.Context, actorID, id string) error {
	err := s.movies.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NotFound(msgMovieNotFound)
	}
	if err != nil {
		return apperr.Internal("Failed to delete movie", err)
	}
	s.cache.InvalidateMovie(ctx, id)
	s.audit.Record("movie", id, actorID, "deleted", nil)
	return nil
}

// New returns the most recently created movies.
func (s *MovieService) New(ctx context.Context) ([]*models.Movie, error) {
	return s.curated(ctx, cache.KeyNewMovies, repo.SortCreatedAt)
}

// Top returns the most reviewed movies. Popularity is the review count, not
// the average rating.
func (s *MovieService) Top(ctx context.Context) ([]*models.Movie, error) {
	return s.curated(ctx, cache.KeyTopMovies, repo.SortNumReviews)
}

func (s *MovieService) curated(ctx context.Context, key string, field repo.SortField) ([]*models.Movie, error) {
	var cached []*models.Movie
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	ms, err := s.movies.ListSorted(ctx, field, curatedListSize)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch movies", err)
	}
	s.cache.Set(ctx, key, ms, cache.ListTTL)
	return ms, nil
}

func (s *MovieService) Random(ctx context.Context) ([]*models.Movie, error) {
	ms, err := s.movies.Sample(ctx, curatedListSize)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch movies", err)
	}
	return ms, nil
}

type ReviewInput struct {
	Rating  float64
	Comment string
}

// AddReview appends a review by u. One review per user per movie.
func (s *MovieService) AddReview(ctx context.Context, u models.User, movieID string, in ReviewInput) error {
	if math.IsNaN(in.Rating) || math.IsInf(in.Rating, 0) {
		return apperr.Validation("Rating must be a number")
	}
	comment := strings.TrimSpace(in.Comment)
	if comment == "" {
		return apperr.Validation("Comment is required")
	}

	var reviewID string
	err := s.mutateReviews(ctx, movieID, func(m *models.Movie) error {
		r := models.Review{
			ID:        models.NewID(),
			UserID:    u.ID,
			Name:      u.Username,
			Rating:    in.Rating,
			Comment:   comment,
			CreatedAt: s.now().UTC(),
		}
		if err := m.AddReview(r); err != nil {
			return apperr.Conflict("Movie already reviewed")
		}
		reviewID = r.ID
		return nil
	})
	if err != nil {
		return err
	}
	metrics.ReviewsTotal.WithLabelValues("add").Inc()
	s.audit.Record("movie", movieID, u.ID, "review_added",
		map[string]any{"review_id": reviewID, "rating": in.Rating})
	return nil
}

func (s *MovieService) RemoveReview(ctx context.Context, actorID, movieID, reviewID string) error {
	err := s.mutateReviews(ctx, movieID, func(m *models.Movie) error {
		if _, err := m.RemoveReview(reviewID); err != nil {
			return apperr.NotFound(msgCommentNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.ReviewsTotal.WithLabelValues("remove").Inc()
	s.audit.Record("movie", movieID, actorID, "review_removed", map[string]any{"review_id": reviewID})
	return nil
}

// mutateReviews loads the movie, applies fn and writes the review state back
// only if nobody else wrote in between. On a lost race it starts over from a
// fresh read, so fn always sees the latest reviews.
func (s *MovieService) mutateReviews(ctx context.Context, movieID string, fn func(*models.Movie) error) error {
	for attempt := 1; ; attempt++ {
		m, err := s.movies.GetByID(ctx, movieID)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound(msgMovieNotFound)
		}
		if err != nil {
			return apperr.Internal("Failed to load movie", err)
		}
		if err := fn(m); err != nil {
			return err
		}

		err = s.movies.SaveReviews(ctx, m)
		switch {
		case err == nil:
			s.cache.InvalidateMovie(ctx, movieID)
			return nil
		case errors.Is(err, repo.ErrStaleWrite) && attempt < maxReviewAttempts:
			metrics.ReviewRetries.Inc()
			continue
		case errors.Is(err, repo.ErrStaleWrite):
			return apperr.Conflict("Movie was modified concurrently, please retry")
		case errors.Is(err, repo.ErrNotFound):
			return apperr.NotFound(msgMovieNotFound)
		default:
			return apperr.Internal("Failed to save review", err)
		}
	}
}
