package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/moviecatalog/internal/auth"
	"github.com/baharkarakas/moviecatalog/internal/models"
	"github.com/baharkarakas/moviecatalog/internal/repository/memory"
)

func okHandler(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

type authFixture struct {
	users *memory.Users
	tm    *auth.TokenManager
	mw    *AuthMiddleware
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	users := memory.NewUsers()
	tm := auth.NewTokenManager("secret", time.Hour)
	return authFixture{users: users, tm: tm, mw: NewAuthMiddleware(tm, users)}
}

func (f authFixture) request(t *testing.T, userID string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	tok, _, err := f.tm.Generate(userID)
	require.NoError(t, err)
	r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tok})
	return r
}

func TestAuthenticateWithoutCookie(t *testing.T) {
	f := newAuthFixture(t)
	rec := httptest.NewRecorder()
	f.mw.Authenticate(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Not authorized, no token."}`, rec.Body.String())
}

func TestAuthenticateWithGarbageToken(t *testing.T) {
	f := newAuthFixture(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	f.mw.Authenticate(http.HandlerFunc(okHandler)).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Not authorized, token failed."}`, rec.Body.String())
}

func TestAuthenticateUnknownUser(t *testing.T) {
	f := newAuthFixture(t)
	rec := httptest.NewRecorder()
	f.mw.Authenticate(http.HandlerFunc(okHandler)).ServeHTTP(rec, f.request(t, models.NewID()))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateLoadsUserWithoutPassword(t *testing.T) {
	f := newAuthFixture(t)
	u, err := f.users.Create(context.Background(), models.User{Username: "ann", Email: "ann@x.io", PasswordHash: "hash"})
	require.NoError(t, err)

	var got models.User
	h := f.mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), f.request(t, u.ID))

	assert.Equal(t, u.ID, got.ID)
	assert.Empty(t, got.PasswordHash)
}

func TestRequireAdmin(t *testing.T) {
	f := newAuthFixture(t)
	u, err := f.users.Create(context.Background(), models.User{Username: "bob", Email: "bob@x.io"})
	require.NoError(t, err)
	h := f.mw.Authenticate(RequireAdmin(http.HandlerFunc(okHandler)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, f.request(t, u.ID))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"Not authorized as an admin."}`, rec.Body.String())

	f.users.SetAdmin(u.ID, true)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, f.request(t, u.ID))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecoverAnswersGeneric500(t *testing.T) {
	rec := httptest.NewRecorder()
	Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Something went wrong!"}`, rec.Body.String())
}

func TestRequestIDSetsHeaderAndContext(t *testing.T) {
	var fromCtx string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = RequestIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, fromCtx)
	assert.Equal(t, fromCtx, rec.Header().Get(RequestIDHeader))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestTokenBucket(t *testing.T) {
	now := time.Now()
	tb := newTokenBucket(2, now)
	assert.True(t, tb.allow(now))
	assert.True(t, tb.allow(now))
	assert.False(t, tb.allow(now))
	assert.True(t, tb.allow(now.Add(time.Second)))
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(0)(http.HandlerFunc(okHandler))
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
