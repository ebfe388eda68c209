package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
}

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb), mr
}

func TestSetThenGet(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)

	s.Set(ctx, KeyNewMovies, []item{{Name: "Heat"}}, ListTTL)
	var got []item
	require.True(t, s.Get(ctx, KeyNewMovies, &got))
	assert.Equal(t, []item{{Name: "Heat"}}, got)

	mr.FastForward(ListTTL + time.Second)
	assert.False(t, s.Get(ctx, KeyNewMovies, &got))
}

func TestInvalidateMovieDropsListsAndDetail(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)

	s.Set(ctx, KeyNewMovies, []item{}, ListTTL)
	s.Set(ctx, KeyTopMovies, []item{}, ListTTL)
	s.Set(ctx, MovieKey("abc"), item{Name: "x"}, DetailTTL)
	s.Set(ctx, MovieKey("other"), item{Name: "y"}, DetailTTL)

	s.InvalidateMovie(ctx, "abc")
	assert.False(t, mr.Exists(KeyNewMovies))
	assert.False(t, mr.Exists(KeyTopMovies))
	assert.False(t, mr.Exists(MovieKey("abc")))
	assert.True(t, mr.Exists(MovieKey("other")))
}

func TestNilClientIsANoop(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	s.Set(ctx, "k", item{}, time.Minute)
	var got item
	assert.False(t, s.Get(ctx, "k", &got))
	s.InvalidateMovie(ctx, "k")
	assert.False(t, s.Enabled())
}

func TestDownedServerCountsAsMiss(t *testing.T) {
	s, mr := newStore(t)
	mr.Close()
	var got item
	assert.False(t, s.Get(context.Background(), "k", &got))
}
