package middleware

import (
	"context"

	"github.com/baharkarakas/moviecatalog/internal/models"
)

type userKey struct{}

// WithUser stores the authenticated user (password hash stripped).
func WithUser(ctx context.Context, u models.User) context.Context {
	u.PasswordHash = ""
	return context.WithValue(ctx, userKey{}, u)
}

func CurrentUser(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey{}).(models.User)
	return u, ok
}
