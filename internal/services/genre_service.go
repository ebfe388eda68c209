package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/baharkarakas/moviecatalog/internal/apperr"
	"github.com/baharkarakas/moviecatalog/internal/models"
	repo "github.com/baharkarakas/moviecatalog/internal/repository"
)

const (
	msgGenreNotFound = "Genre not found"
	msgGenreExists   = "Genre already exists"
)

type GenreService struct {
	r     repo.Genres
	audit *Auditor
}

func NewGenreService(r repo.Genres, audit *Auditor) *GenreService {
	return &GenreService{r: r, audit: audit}
}

func cleanGenreName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("Genre name is required")
	}
	if utf8.RuneCountInString(name) > models.MaxGenreNameLen {
		return "", apperr.Validation(fmt.Sprintf("Genre name must be at most %d characters", models.MaxGenreNameLen))
	}
	return name, nil
}

func (s *GenreService) Create(ctx context.Context, actorID, name string) (models.Genre, error) {
	name, err := cleanGenreName(name)
	if err != nil {
		return models.Genre{}, err
	}
	if _, err := s.r.GetByName(ctx, name); err == nil {
		return models.Genre{}, apperr.Conflict(msgGenreExists)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return models.Genre{}, apperr.Internal("Failed to create genre", err)
	}

	// the unique index settles concurrent creates
	g, err := s.r.Create(ctx, name)
	if errors.Is(err, repo.ErrDuplicate) {
		return models.Genre{}, apperr.Conflict(msgGenreExists)
	}
	if err != nil {
		return models.Genre{}, apperr.Internal("Failed to create genre", err)
	}
	s.audit.Record("genre", g.ID, actorID, "created", map[string]any{"name": g.Name})
	return g, nil
}

func (s *GenreService) Update(ctx context.Context, actorID, id, name string) (models.Genre, error) {
	g, err := s.Get(ctx, id)
	if err != nil {
		return models.Genre{}, err
	}
	name, err = cleanGenreName(name)
	if err != nil {
		return models.Genre{}, err
	}
	old := g.Name
	g.Name = name
	updated, err := s.r.Update(ctx, g)
	switch {
	case errors.Is(err, repo.ErrDuplicate):
		return models.Genre{}, apperr.Conflict(msgGenreExists)
	case errors.Is(err, repo.ErrNotFound):
		return models.Genre{}, apperr.NotFound(msgGenreNotFound)
	case err != nil:
		return models.Genre{}, apperr.Internal("Failed to update genre", err)
	}
	s.audit.Record("genre", id, actorID, "updated", map[string]any{"from": old, "to": name})
	return updated, nil
}

func (s *GenreService) Delete(ctx context.Context, actorID, id string) error {
	err := s.r.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NotFound(msgGenreNotFound)
	}
	if err != nil {
		return apperr.Internal("Failed to delete genre", err)
	}
	s.audit.Record("genre", id, actorID, "deleted", nil)
	return nil
}

func (s *GenreService) Get(ctx context.Context, id string) (models.Genre, error) {
	g, err := s.r.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Genre{}, apperr.NotFound(msgGenreNotFound)
	}
	if err != nil {
		return models.Genre{}, apperr.Internal("Failed to fetch genre details", err)
	}
	return g, nil
}

func (s *GenreService) List(ctx context.Context) ([]models.Genre, error) {
	gs, err := s.r.List(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch genres", err)
	}
	return gs, nil
}
