package repository

import (
	"context"
	"errors"

	"github.com/baharkarakas/moviecatalog/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrStaleWrite means the movie changed since it was loaded.
	ErrStaleWrite = errors.New("stale write")
)

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u models.User) (models.User, error)
}

type Genres interface {
	Create(ctx context.Context, name string) (models.Genre, error)
	GetByID(ctx context.Context, id string) (models.Genre, error)
	GetByName(ctx context.Context, name string) (models.Genre, error)
	List(ctx context.Context) ([]models.Genre, error)
	Update(ctx context.Context, g models.Genre) (models.Genre, error)
	Delete(ctx context.Context, id string) error
}

type SortField string

const (
	SortCreatedAt  SortField = "createdAt"
	SortNumReviews SortField = "numReviews"
)

type Movies interface {
	Create(ctx context.Context, m *models.Movie) error
	GetByID(ctx context.Context, id string) (*models.Movie, error)
	List(ctx context.Context) ([]*models.Movie, error)
	// ListSorted returns at most limit movies ordered by field, descending.
	ListSorted(ctx context.Context, field SortField, limit int) ([]*models.Movie, error)
	Sample(ctx context.Context, size int) ([]*models.Movie, error)
	UpdateCatalog(ctx context.Context, id string, c models.Catalog) (*models.Movie, error)
	// SaveReviews persists the review list and derived fields only if the
	// stored revision still equals m.Rev(); otherwise ErrStaleWrite.
	SaveReviews(ctx context.Context, m *models.Movie) error
	Delete(ctx context.Context, id string) error
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
