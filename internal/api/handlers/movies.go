package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/moviecatalog/internal/api/httpx"
	"github.com/baharkarakas/moviecatalog/internal/apperr"
	"github.com/baharkarakas/moviecatalog/internal/middleware"
	"github.com/baharkarakas/moviecatalog/internal/models"
	"github.com/baharkarakas/moviecatalog/internal/services"
)

type MovieHandler struct {
	Movies *services.MovieService
}

func NewMovieHandler(ms *services.MovieService) *MovieHandler { return &MovieHandler{Movies: ms} }

func (h *MovieHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c models.Catalog
	if err := httpx.DecodeJSON(r, &c); err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to create movie")
		return
	}
	m, err := h.Movies.Create(r.Context(), actorID(r), c)
	if err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to create movie")
		return
	}
	// existing clients expect 200 here, unlike genre create
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.Movies.List)
}

func (h *MovieHandler) New(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.Movies.New)
}

func (h *MovieHandler) Top(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.Movies.Top)
}

func (h *MovieHandler) Random(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.Movies.Random)
}

func (h *MovieHandler) writeList(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context) ([]*models.Movie, error)) {
	ms, err := fetch(r.Context())
	if err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to fetch movies")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ms)
}

func (h *MovieHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.Movies.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to fetch movie")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (h *MovieHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p services.CatalogPatch
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to update movie")
		return
	}
	m, err := h.Movies.Update(r.Context(), actorID(r), chi.URLParam(r, "id"), p)
	if err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to update movie")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Movies.Delete(r.Context(), actorID(r), chi.URLParam(r, "id")); err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to delete movie")
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Movie deleted successfully")
}

// rating accepts a JSON number or a numeric string.
type rating float64

func (r *rating) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return apperr.Validation("Rating must be a number")
	}
	*r = rating(f)
	return nil
}

type reviewReq struct {
	Rating  *rating `json:"rating"`
	Comment string  `json:"comment"`
}

func (h *MovieHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	var req reviewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Fail(w, r, httpx.KeyError, apperr.Validation("Rating must be a number"), "")
		return
	}
	if req.Rating == nil {
		httpx.Fail(w, r, httpx.KeyError, apperr.Validation("Rating is required"), "")
		return
	}
	u, _ := middleware.CurrentUser(r.Context())
	err := h.Movies.AddReview(r.Context(), u, chi.URLParam(r, "id"), services.ReviewInput{
		Rating:  float64(*req.Rating),
		Comment: req.Comment,
	})
	if err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to add review")
		return
	}
	httpx.WriteMessage(w, http.StatusCreated, "Review added")
}

type deleteCommentReq struct {
	MovieID  string `json:"movieId"`
	ReviewID string `json:"reviewId"`
}

func (h *MovieHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	var req deleteCommentReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to delete comment")
		return
	}
	if err := h.Movies.RemoveReview(r.Context(), actorID(r), req.MovieID, req.ReviewID); err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to delete comment")
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Comment deleted successfully")
}
