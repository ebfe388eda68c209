// Package memory provides map-backed repositories with the same contract as
// the MongoDB ones. Tests run services and handlers against them.
package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/baharkarakas/moviecatalog/internal/models"
	repo "github.com/baharkarakas/moviecatalog/internal/repository"
)

type Users struct {
	mu    sync.RWMutex
	byID  map[string]models.User
	order []string
}

func NewUsers() *Users { return &Users{byID: map[string]models.User{}} }

func (r *Users) Create(_ context.Context, u models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.byID {
		if x.Email == u.Email {
			return models.User{}, repo.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	u.ID = models.NewID()
	u.CreatedAt, u.UpdatedAt = now, now
	r.byID[u.ID] = u
	r.order = append(r.order, u.ID)
	return u, nil
}

func (r *Users) GetByID(_ context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repo.ErrNotFound
}

func (r *Users) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *Users) Update(_ context.Context, u models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[u.ID]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	for id, x := range r.byID {
		if id != u.ID && x.Email == u.Email {
			return models.User{}, repo.ErrDuplicate
		}
	}
	cur.Username, cur.Email, cur.PasswordHash = u.Username, u.Email, u.PasswordHash
	cur.UpdatedAt = time.Now().UTC()
	r.byID[u.ID] = cur
	return cur, nil
}

// SetAdmin flips the admin flag; there is no API for it, so tests use this.
func (r *Users) SetAdmin(id string, admin bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		u.IsAdmin = admin
		r.byID[id] = u
	}
}

type Genres struct {
	mu   sync.RWMutex
	byID map[string]models.Genre
}

func NewGenres() *Genres { return &Genres{byID: map[string]models.Genre{}} }

func (r *Genres) Create(_ context.Context, name string) (models.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.byID {
		if g.Name == name {
			return models.Genre{}, repo.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	g := models.Genre{ID: models.NewID(), Name: name, CreatedAt: now, UpdatedAt: now}
	r.byID[g.ID] = g
	return g, nil
}

func (r *Genres) GetByID(_ context.Context, id string) (models.Genre, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.byID[id]
	if !ok {
		return models.Genre{}, repo.ErrNotFound
	}
	return g, nil
}

func (r *Genres) GetByName(_ context.Context, name string) (models.Genre, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.byID {
		if g.Name == name {
			return g, nil
		}
	}
	return models.Genre{}, repo.ErrNotFound
}

func (r *Genres) List(_ context.Context) ([]models.Genre, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Genre, 0, len(r.byID))
	for _, g := range r.byID {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Genres) Update(_ context.Context, g models.Genre) (models.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[g.ID]
	if !ok {
		return models.Genre{}, repo.ErrNotFound
	}
	for id, x := range r.byID {
		if id != g.ID && x.Name == g.Name {
			return models.Genre{}, repo.ErrDuplicate
		}
	}
	cur.Name = g.Name
	cur.UpdatedAt = time.Now().UTC()
	r.byID[g.ID] = cur
	return cur, nil
}

func (r *Genres) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// Movies stores snapshots; callers never share a *models.Movie with the store.
type Movies struct {
	mu    sync.RWMutex
	byID  map[string]*models.Movie
	order []string
}

func NewMovies() *Movies { return &Movies{byID: map[string]*models.Movie{}} }

func clone(m *models.Movie) *models.Movie {
	c := m.Catalog
	c.Cast = append([]string(nil), m.Cast...)
	return models.RestoreMovie(m.ID, c, m.Reviews(), m.CreatedAt, m.UpdatedAt, m.Rev())
}

func (r *Movies) Create(_ context.Context, m *models.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[m.ID]; ok {
		return repo.ErrDuplicate
	}
	r.byID[m.ID] = clone(m)
	r.order = append(r.order, m.ID)
	return nil
}

func (r *Movies) GetByID(_ context.Context, id string) (*models.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(m), nil
}

func (r *Movies) List(_ context.Context) ([]*models.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Movie, 0, len(r.order))
	for _, id := range r.order {
		if m, ok := r.byID[id]; ok {
			out = append(out, clone(m))
		}
	}
	return out, nil
}

func (r *Movies) ListSorted(ctx context.Context, field repo.SortField, limit int) ([]*models.Movie, error) {
	all, _ := r.List(ctx)
	less := func(a, b *models.Movie) bool { return a.CreatedAt.After(b.CreatedAt) }
	if field == repo.SortNumReviews {
		less = func(a, b *models.Movie) bool { return a.NumReviews() > b.NumReviews() }
	}
	sort.SliceStable(all, func(i, j int) bool { return less(all[i], all[j]) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *Movies) Sample(ctx context.Context, size int) ([]*models.Movie, error) {
	all, _ := r.List(ctx)
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if len(all) > size {
		all = all[:size]
	}
	return all, nil
}

func (r *Movies) UpdateCatalog(_ context.Context, id string, c models.Catalog) (*models.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	m.Catalog = c
	m.UpdatedAt = time.Now().UTC()
	return clone(m), nil
}

func (r *Movies) SaveReviews(_ context.Context, m *models.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[m.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if cur.Rev() != m.Rev() {
		return repo.ErrStaleWrite
	}
	m.MarkSaved(time.Now().UTC())
	next := clone(m)
	next.Catalog = cur.Catalog
	r.byID[m.ID] = next
	return nil
}

func (r *Movies) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type AuditLogs struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func NewAuditLogs() *AuditLogs { return &AuditLogs{} }

func (r *AuditLogs) Create(_ context.Context, l models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, l)
	return nil
}

func (r *AuditLogs) Entries() []models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.AuditLog(nil), r.logs...)
}
