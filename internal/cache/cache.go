// Package cache keeps hot movie reads in Redis. A Store built from a nil
// client is valid and caches nothing.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	KeyNewMovies = "movies:new"
	KeyTopMovies = "movies:top"

	ListTTL   = 5 * time.Minute
	DetailTTL = 30 * time.Minute
)

func MovieKey(id string) string { return "movie:" + id }

type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

func (s *Store) Enabled() bool { return s != nil && s.rdb != nil }

// Get decodes the cached value into dst and reports whether there was a hit.
// Redis errors count as a miss.
func (s *Store) Get(ctx context.Context, key string, dst any) bool {
	if !s.Enabled() {
		return false
	}
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("cache get", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		slog.Warn("cache decode", "key", key, "err", err)
		return false
	}
	return true
}

func (s *Store) Set(ctx context.Context, key string, v any, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		slog.Warn("cache encode", "key", key, "err", err)
		return
	}
	if err := s.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		slog.Error("failed to set cache", "key", key, "error", err)
	}
}

// InvalidateMovie drops the curated lists and, when id is set, that movie's
// detail entry.
func (s *Store) InvalidateMovie(ctx context.Context, id string) {
	if !s.Enabled() {
		return
	}
	keys := []string{KeyNewMovies, KeyTopMovies}
	if id != "" {
		keys = append(keys, MovieKey(id))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.Error("failed to invalidate cache", "keys", keys, "error", err)
	}
}
