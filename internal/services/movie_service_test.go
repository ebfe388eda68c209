package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/moviecatalog/internal/apperr"
	"github.com/baharkarakas/moviecatalog/internal/cache"
	"github.com/baharkarakas/moviecatalog/internal/models"
	repo "github.com/baharkarakas/moviecatalog/internal/repository"
)

func TestCreateMovieStartsUnrated(t *testing.T) {
	f := newFixture()
	m := f.movie(t, "Heat")

	got, err := f.movieSvc.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumReviews())
	assert.Equal(t, 0.0, got.AvgRating())
	assert.Empty(t, got.Reviews())
}

func TestCreateMovieRejectsUnknownGenre(t *testing.T) {
	f := newFixture()
	_, err := f.movieSvc.Create(context.Background(), "", models.Catalog{
		Name: "Heat", Year: 1995, Genre: models.NewID(), Detail: "d",
	})
	requireKind(t, err, apperr.KindValidation)
}

func TestCreateMovieRequiresFields(t *testing.T) {
	f := newFixture()
	_, err := f.movieSvc.Create(context.Background(), "", models.Catalog{Name: "Heat"})
	requireKind(t, err, apperr.KindValidation)
}

func TestReviewsKeepRunningMean(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.movie(t, "Heat")

	ratings := []float64{5, 4, 1, 3.5}
	var sum float64
	for i, r := range ratings {
		u := f.user(t, fmt.Sprintf("u%d", i))
		require.NoError(t, f.movieSvc.AddReview(ctx, u, m.ID, ReviewInput{Rating: r, Comment: "c"}))
		sum += r

		got, err := f.movieSvc.Get(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, i+1, got.NumReviews())
		assert.InDelta(t, sum/float64(i+1), got.AvgRating(), 1e-9)
	}
}

func TestSecondReviewFromSameUserConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.movie(t, "Heat")
	u := f.user(t, "ann")

	require.NoError(t, f.movieSvc.AddReview(ctx, u, m.ID, ReviewInput{Rating: 4, Comment: "good"}))
	err := f.movieSvc.AddReview(ctx, u, m.ID, ReviewInput{Rating: 1, Comment: "changed my mind"})
	requireKind(t, err, apperr.KindConflict)
	assert.Equal(t, "Movie already reviewed", apperr.Message(err, ""))

	got, err := f.movieSvc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumReviews())
	assert.Equal(t, 4.0, got.AvgRating())
}

func TestReviewAddTwoThenRemoveFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.movie(t, "Heat")
	ann, bob := f.user(t, "ann"), f.user(t, "bob")

	require.NoError(t, f.movieSvc.AddReview(ctx, ann, m.ID, ReviewInput{Rating: 4, Comment: "a"}))
	require.NoError(t, f.movieSvc.AddReview(ctx, bob, m.ID, ReviewInput{Rating: 2, Comment: "b"}))

	got, err := f.movieSvc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumReviews())
	assert.Equal(t, 3.0, got.AvgRating())

	four := got.Reviews()[0]
	require.Equal(t, 4.0, four.Rating)
	assert.Equal(t, "ann", four.Name)
	require.NoError(t, f.movieSvc.RemoveReview(ctx, "", m.ID, four.ID))

	got, err = f.movieSvc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumReviews())
	assert.Equal(t, 2.0, got.AvgRating())
}

func TestRemoveOnlyReviewResets(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.movie(t, "Heat")
	require.NoError(t, f.movieSvc.AddReview(ctx, f.user(t, "ann"), m.ID, ReviewInput{Rating: 5, Comment: "x"}))

	got, _ := f.movieSvc.Get(ctx, m.ID)
	require.NoError(t, f.movieSvc.RemoveReview(ctx, "", m.ID, got.Reviews()[0].ID))

	got, err := f.movieSvc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumReviews())
	assert.Equal(t, 0.0, got.AvgRating())
}

func TestRemoveReviewNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.movie(t, "Heat")

	err := f.movieSvc.RemoveReview(ctx, "", m.ID, models.NewID())
	requireKind(t, err, apperr.KindNotFound)
	assert.Equal(t, "Comment not found", apperr.Message(err, ""))

	err = f.movieSvc.RemoveReview(ctx, "", models.NewID(), models.NewID())
	requireKind(t, err, apperr.KindNotFound)
	assert.Equal(t, "Movie not found", apperr.Message(err, ""))
}

func TestAddReviewValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.movie(t, "Heat")
	u := f.user(t, "ann")

	requireKind(t, f.movieSvc.AddReview(ctx, u, m.ID, ReviewInput{Rating: math.NaN(), Comment: "x"}), apperr.KindValidation)
	requireKind(t, f.movieSvc.AddReview(ctx, u, m.ID, ReviewInput{Rating: 3, Comment: " "}), apperr.KindValidation)
	requireKind(t, f.movieSvc.AddReview(ctx, u, models.NewID(), ReviewInput{Rating: 3, Comment: "x"}), apperr.KindNotFound)
}

func TestConcurrentReviewsFromOneUserLandOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.movie(t, "Heat")
	u := f.user(t, "ann")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.movieSvc.AddReview(ctx, u, m.ID, ReviewInput{Rating: float64(i%5 + 1), Comment: "c"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		}
	}
	assert.Equal(t, 1, ok)
	got, err := f.movieSvc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumReviews())
}

func TestConcurrentReviewsFromManyUsersAllLand(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.movie(t, "Heat")

	users := make([]models.User, 3)
	for i := range users {
		users[i] = f.user(t, fmt.Sprintf("u%d", i))
	}
	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u models.User) {
			defer wg.Done()
			assert.NoError(t, f.movieSvc.AddReview(ctx, u, m.ID, ReviewInput{Rating: 3, Comment: "c"}))
		}(u)
	}
	wg.Wait()

	got, err := f.movieSvc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.NumReviews())
	assert.Equal(t, 3.0, got.AvgRating())
}

// racingMovies loses the first n review writes, as if another writer got in
// between each read and write.
type racingMovies struct {
	repo.Movies
	mu    sync.Mutex
	loses int
	saves int
}

func (r *racingMovies) SaveReviews(ctx context.Context, m *models.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.loses > 0 {
		r.loses--
		return repo.ErrStaleWrite
	}
	return r.Movies.SaveReviews(ctx, m)
}

func TestStaleWriteIsRetried(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.movie(t, "Heat")
	racing := &racingMovies{Movies: f.movies, loses: 2}
	svc := NewMovieService(racing, f.genres, nil, nil)

	require.NoError(t, svc.AddReview(ctx, f.user(t, "ann"), m.ID, ReviewInput{Rating: 5, Comment: "c"}))
	assert.Equal(t, 3, racing.saves)
}

func TestStaleWriteGivesUpAfterThreeAttempts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.movie(t, "Heat")
	racing := &racingMovies{Movies: f.movies, loses: 100}
	svc := NewMovieService(racing, f.genres, nil, nil)

	err := svc.AddReview(ctx, f.user(t, "ann"), m.ID, ReviewInput{Rating: 5, Comment: "c"})
	requireKind(t, err, apperr.KindConflict)
	assert.Equal(t, maxReviewAttempts, racing.saves)

	got, err := f.movieSvc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumReviews())
}

func TestUpdateMovieIsPartial(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.movie(t, "Heat")
	require.NoError(t, f.movieSvc.AddReview(ctx, f.user(t, "ann"), m.ID, ReviewInput{Rating: 4, Comment: "c"}))

	year := 1996
	got, err := f.movieSvc.Update(ctx, "", m.ID, CatalogPatch{Year: &year})
	require.NoError(t, err)
	assert.Equal(t, 1996, got.Year)
	assert.Equal(t, "Heat", got.Name)
	assert.Equal(t, 1, got.NumReviews())

	_, err = f.movieSvc.Update(ctx, "", models.NewID(), CatalogPatch{Year: &year})
	requireKind(t, err, apperr.KindNotFound)

	bad := models.NewID()
	_, err = f.movieSvc.Update(ctx, "", m.ID, CatalogPatch{Genre: &bad})
	requireKind(t, err, apperr.KindValidation)
}

func TestRenameMovieAfterItsGenreIsDeleted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.movie(t, "Heat")
	require.NoError(t, f.genreSvc.Delete(ctx, "", m.Genre))

	name := "Heat (1995)"
	got, err := f.movieSvc.Update(ctx, "", m.ID, CatalogPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Heat (1995)", got.Name)
	assert.Equal(t, m.Genre, got.Genre)

	// pointing at another missing genre is still refused
	_, err = f.movieSvc.Update(ctx, "", m.ID, CatalogPatch{Genre: &m.Genre})
	requireKind(t, err, apperr.KindValidation)
	assert.Equal(t, "Genre not found", apperr.Message(err, ""))
}

func TestUpdateLegacyMovieWithBlankFields(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	legacy := models.NewMovie(models.NewID(), models.Catalog{Name: "Old"}, time.Now().UTC())
	require.NoError(t, f.movies.Create(ctx, legacy))

	img := "https://img/old.png"
	got, err := f.movieSvc.Update(ctx, "", legacy.ID, CatalogPatch{Image: &img})
	require.NoError(t, err)
	assert.Equal(t, img, got.Image)

	blank := "  "
	_, err = f.movieSvc.Update(ctx, "", legacy.ID, CatalogPatch{Detail: &blank})
	requireKind(t, err, apperr.KindValidation)
}

func TestDeleteMovie(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.movie(t, "Heat")

	require.NoError(t, f.movieSvc.Delete(ctx, "", m.ID))
	requireKind(t, f.movieSvc.Delete(ctx, "", m.ID), apperr.KindNotFound)
	_, err := f.movieSvc.Get(ctx, m.ID)
	requireKind(t, err, apperr.KindNotFound)
}

func TestNewAndTopLists(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 12; i++ {
		f.movieSvc.now = fixedNow(base.Add(time.Duration(i) * time.Hour))
		ids = append(ids, f.movie(t, fmt.Sprintf("m%02d", i)).ID)
	}
	f.movieSvc.now = time.Now
	require.NoError(t, f.movieSvc.AddReview(ctx, f.user(t, "ann"), ids[3], ReviewInput{Rating: 2, Comment: "c"}))

	newest, err := f.movieSvc.New(ctx)
	require.NoError(t, err)
	require.Len(t, newest, 10)
	assert.Equal(t, ids[11], newest[0].ID)

	top, err := f.movieSvc.Top(ctx)
	require.NoError(t, err)
	require.Len(t, top, 10)
	assert.Equal(t, ids[3], top[0].ID)

	random, err := f.movieSvc.Random(ctx)
	require.NoError(t, err)
	assert.Len(t, random, 10)
}

func TestReviewInvalidatesCachedDetail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	f.movieSvc.cache = cache.New(rdb)

	m := f.movie(t, "Heat")
	_, err := f.movieSvc.Get(ctx, m.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(cache.MovieKey(m.ID)))

	require.NoError(t, f.movieSvc.AddReview(ctx, f.user(t, "ann"), m.ID, ReviewInput{Rating: 5, Comment: "c"}))
	assert.False(t, mr.Exists(cache.MovieKey(m.ID)))

	got, err := f.movieSvc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumReviews())
}
