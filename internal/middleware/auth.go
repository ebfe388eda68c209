package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/moviecatalog/internal/api/httpx"
	"github.com/baharkarakas/moviecatalog/internal/auth"
	"github.com/baharkarakas/moviecatalog/internal/models"
	repo "github.com/baharkarakas/moviecatalog/internal/repository"
)

const (
	msgNoToken     = "Not authorized, no token."
	msgTokenFailed = "Not authorized, token failed."
	msgNotAdmin    = "Not authorized as an admin."
)

type UserLoader interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

type AuthMiddleware struct {
	TM    *auth.TokenManager
	Users UserLoader
}

func NewAuthMiddleware(tm *auth.TokenManager, users UserLoader) *AuthMiddleware {
	return &AuthMiddleware{TM: tm, Users: users}
}

// Authenticate reads the session cookie and loads its user into the context.
// The user is looked up on every request so admin changes apply at once.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.TokenFromRequest(r)
		if token == "" {
			httpx.WriteMessage(w, http.StatusUnauthorized, msgNoToken)
			return
		}
		claims, err := m.TM.Parse(token)
		if err != nil {
			httpx.WriteMessage(w, http.StatusUnauthorized, msgTokenFailed)
			return
		}
		u, err := m.Users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, repo.ErrNotFound) {
				slog.ErrorContext(r.Context(), "load session user", "user_id", claims.UserID, "err", err)
			}
			httpx.WriteMessage(w, http.StatusUnauthorized, msgTokenFailed)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}
