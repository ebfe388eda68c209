package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/moviecatalog/internal/apperr"
	"github.com/baharkarakas/moviecatalog/internal/models"
	"github.com/baharkarakas/moviecatalog/internal/repository/memory"
)

type fixture struct {
	users  *memory.Users
	genres *memory.Genres
	movies *memory.Movies
	audit  *memory.AuditLogs

	userSvc  *UserService
	genreSvc *GenreService
	movieSvc *MovieService
}

func newFixture() *fixture {
	f := &fixture{
		users:  memory.NewUsers(),
		genres: memory.NewGenres(),
		movies: memory.NewMovies(),
		audit:  memory.NewAuditLogs(),
	}
	auditor := NewAuditor(f.audit, nil)
	f.userSvc = NewUserService(f.users, auditor)
	f.genreSvc = NewGenreService(f.genres, auditor)
	f.movieSvc = NewMovieService(f.movies, f.genres, nil, auditor)
	return f
}

func (f *fixture) genre(t *testing.T, name string) models.Genre {
	t.Helper()
	g, err := f.genreSvc.Create(context.Background(), "", name)
	require.NoError(t, err)
	return g
}

func (f *fixture) movie(t *testing.T, name string) *models.Movie {
	t.Helper()
	g := f.genre(t, name+"-genre")
	m, err := f.movieSvc.Create(context.Background(), "", models.Catalog{
		Name: name, Year: 2000, Genre: g.ID, Detail: "detail",
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) user(t *testing.T, name string) models.User {
	t.Helper()
	u, err := f.userSvc.Register(context.Background(), name, name+"@example.com", "pw-"+name)
	require.NoError(t, err)
	return u
}

func requireKind(t *testing.T, err error, k apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, k, apperr.KindOf(err), err.Error())
}

func fixedNow(ts time.Time) func() time.Time { return func() time.Time { return ts } }
