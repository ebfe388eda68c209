package handlers

import (
	"net/http"

	"github.com/baharkarakas/moviecatalog/internal/api/httpx"
	"github.com/baharkarakas/moviecatalog/internal/auth"
	"github.com/baharkarakas/moviecatalog/internal/middleware"
	"github.com/baharkarakas/moviecatalog/internal/models"
	"github.com/baharkarakas/moviecatalog/internal/services"
)

type UserHandler struct {
	Users        *services.UserService
	TM           *auth.TokenManager
	CookieSecure bool
}

func NewUserHandler(us *services.UserService, tm *auth.TokenManager, cookieSecure bool) *UserHandler {
	return &UserHandler{Users: us, TM: tm, CookieSecure: cookieSecure}
}

type credentialsReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) startSession(w http.ResponseWriter, r *http.Request, u models.User, status int, fallback string) {
	tok, _, err := h.TM.Generate(u.ID)
	if err != nil {
		httpx.Fail(w, r, httpx.KeyMessage, err, fallback)
		return
	}
	auth.SetSessionCookie(w, tok, h.TM.TTL(), h.CookieSecure)
	httpx.WriteJSON(w, status, u.Public())
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, r, httpx.KeyMessage, err, "Failed to create user")
		return
	}
	u, err := h.Users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		httpx.Fail(w, r, httpx.KeyMessage, err, "Failed to create user")
		return
	}
	h.startSession(w, r, u, http.StatusCreated, "Failed to create user")
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, r, httpx.KeyMessage, err, "Failed to login")
		return
	}
	u, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Fail(w, r, httpx.KeyMessage, err, "Failed to login")
		return
	}
	h.startSession(w, r, u, http.StatusOK, "Failed to login")
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.CookieSecure)
	httpx.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		httpx.Fail(w, r, httpx.KeyMessage, err, "Failed to fetch users")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	cur, _ := middleware.CurrentUser(r.Context())
	u, err := h.Users.Profile(r.Context(), cur.ID)
	if err != nil {
		httpx.Fail(w, r, httpx.KeyMessage, err, "Failed to fetch user profile")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u.Profile())
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, r, httpx.KeyMessage, err, "Failed to update profile")
		return
	}
	cur, _ := middleware.CurrentUser(r.Context())
	u, err := h.Users.UpdateProfile(r.Context(), cur.ID, services.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httpx.Fail(w, r, httpx.KeyMessage, err, "Failed to update profile")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u.Public())
}
