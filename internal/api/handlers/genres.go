package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/moviecatalog/internal/api/httpx"
	"github.com/baharkarakas/moviecatalog/internal/middleware"
	"github.com/baharkarakas/moviecatalog/internal/services"
)

type GenreHandler struct {
	Genres *services.GenreService
}

func NewGenreHandler(gs *services.GenreService) *GenreHandler { return &GenreHandler{Genres: gs} }

type genreReq struct {
	Name string `json:"name"`
}

func actorID(r *http.Request) string {
	u, _ := middleware.CurrentUser(r.Context())
	return u.ID
}

func (h *GenreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req genreReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to create genre")
		return
	}
	g, err := h.Genres.Create(r.Context(), actorID(r), req.Name)
	if err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to create genre")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, g)
}

func (h *GenreHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req genreReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to update genre")
		return
	}
	g, err := h.Genres.Update(r.Context(), actorID(r), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to update genre")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, g)
}

func (h *GenreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Genres.Delete(r.Context(), actorID(r), chi.URLParam(r, "id")); err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to delete genre")
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Genre deleted successfully")
}

func (h *GenreHandler) List(w http.ResponseWriter, r *http.Request) {
	gs, err := h.Genres.List(r.Context())
	if err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to fetch genres")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, gs)
}

func (h *GenreHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.Genres.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, r, httpx.KeyError, err, "Failed to fetch genre details")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, g)
}
