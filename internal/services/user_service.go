package services

import (
	"context"
	"errors"
	"strings"

	"github.com/baharkarakas/moviecatalog/internal/apperr"
	"github.com/baharkarakas/moviecatalog/internal/auth"
	"github.com/baharkarakas/moviecatalog/internal/models"
	repo "github.com/baharkarakas/moviecatalog/internal/repository"
)

const (
	msgUserNotFound    = "User not found"
	msgUserExists      = "User already exists"
	msgInvalidPassword = "Invalid Password"
)

type UserService struct {
	r     repo.Users
	audit *Auditor
}

func NewUserService(r repo.Users, audit *Auditor) *UserService {
	return &UserService{r: r, audit: audit}
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = models.NormalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return models.User{}, apperr.Validation("Please fill all the fields")
	}

	if _, err := s.r.GetByEmail(ctx, email); err == nil {
		return models.User{}, apperr.Conflict(msgUserExists)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return models.User{}, apperr.Internal("Failed to create user", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, apperr.Internal("Failed to create user", err)
	}
	u, err := s.r.Create(ctx, models.User{Username: username, Email: email, PasswordHash: hash})
	if errors.Is(err, repo.ErrDuplicate) {
		return models.User{}, apperr.Conflict(msgUserExists)
	}
	if err != nil {
		return models.User{}, apperr.Internal("Failed to create user", err)
	}
	s.audit.Record("user", u.ID, u.ID, "registered", nil)
	return u, nil
}

// Login checks credentials. Failures are Unauthorized and never issue a session.
func (s *UserService) Login(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.r.GetByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return models.User{}, apperr.Unauthorized(msgUserNotFound)
	}
	if err != nil {
		return models.User{}, apperr.Internal("Failed to login", err)
	}
	if password == "" || auth.VerifyPassword(password, u.PasswordHash) != nil {
		return models.User{}, apperr.Unauthorized(msgInvalidPassword)
	}
	return u, nil
}

func (s *UserService) Profile(ctx context.Context, id string) (models.User, error) {
	u, err := s.r.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.User{}, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return models.User{}, apperr.Internal("Failed to fetch user profile", err)
	}
	return u, nil
}

type ProfileUpdate struct {
	Username string
	Email    string
	Password string
}

// UpdateProfile applies the non-empty fields of p.
func (s *UserService) UpdateProfile(ctx context.Context, id string, p ProfileUpdate) (models.User, error) {
	u, err := s.Profile(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	var changed []string
	if v := strings.TrimSpace(p.Username); v != "" && v != u.Username {
		u.Username = v
		changed = append(changed, "username")
	}
	if v := models.NormalizeEmail(p.Email); v != "" && v != u.Email {
		other, err := s.r.GetByEmail(ctx, v)
		if err == nil && other.ID != u.ID {
			return models.User{}, apperr.Conflict(msgUserExists)
		}
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return models.User{}, apperr.Internal("Failed to update profile", err)
		}
		u.Email = v
		changed = append(changed, "email")
	}
	if p.Password != "" {
		hash, err := auth.HashPassword(p.Password)
		if err != nil {
			return models.User{}, apperr.Internal("Failed to update profile", err)
		}
		u.PasswordHash = hash
		changed = append(changed, "password")
	}

	updated, err := s.r.Update(ctx, u)
	switch {
	case errors.Is(err, repo.ErrDuplicate):
		return models.User{}, apperr.Conflict(msgUserExists)
	case errors.Is(err, repo.ErrNotFound):
		return models.User{}, apperr.NotFound(msgUserNotFound)
	case err != nil:
		return models.User{}, apperr.Internal("Failed to update profile", err)
	}
	if len(changed) > 0 {
		s.audit.Record("user", u.ID, u.ID, "profile_updated", map[string]any{"fields": changed})
	}
	return updated, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.r.List(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch users", err)
	}
	return users, nil
}
