package middleware

import (
	"net/http"

	"github.com/baharkarakas/moviecatalog/internal/api/httpx"
	"github.com/baharkarakas/moviecatalog/internal/apperr"
)

// RequireAdmin must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r.Context())
		if !ok {
			httpx.Fail(w, r, httpx.KeyMessage, apperr.Unauthorized(msgNoToken), msgNoToken)
			return
		}
		if !u.IsAdmin {
			httpx.Fail(w, r, httpx.KeyMessage, apperr.Forbidden(msgNotAdmin), msgNotAdmin)
			return
		}
		next.ServeHTTP(w, r)
	})
}
