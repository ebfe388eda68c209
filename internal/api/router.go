package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/moviecatalog/internal/api/handlers"
	"github.com/baharkarakas/moviecatalog/internal/api/httpx"
	"github.com/baharkarakas/moviecatalog/internal/auth"
	"github.com/baharkarakas/moviecatalog/internal/config"
	"github.com/baharkarakas/moviecatalog/internal/metrics"
	"github.com/baharkarakas/moviecatalog/internal/middleware"
	"github.com/baharkarakas/moviecatalog/internal/services"
	"github.com/baharkarakas/moviecatalog/internal/upload"
)

type RouterDeps struct {
	Cfg      config.Config
	TM       *auth.TokenManager
	UserSvc  *services.UserService
	GenreSvc *services.GenreService
	MovieSvc *services.MovieService
	Uploads  upload.Store
	// Users resolves the session user; usually the same store UserSvc wraps.
	Users middleware.UserLoader
}

func NewRouter(d RouterDeps) http.Handler {
	users := handlers.NewUserHandler(d.UserSvc, d.TM, d.Cfg.CookieSecure)
	genres := handlers.NewGenreHandler(d.GenreSvc)
	movies := handlers.NewMovieHandler(d.MovieSvc)
	uploads := handlers.NewUploadHandler(d.Uploads, d.Cfg.UploadMaxBytes)
	authn := middleware.NewAuthMiddleware(d.TM, d.Users).Authenticate
	admin := middleware.RequireAdmin

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recover,
		middleware.HTTPMetrics,
		middleware.RateLimit(d.Cfg.RateRPS),
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: !allowsAnyOrigin(d.Cfg.CORSOrigins),
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteMessage(w, http.StatusNotFound, httpx.MsgNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteMessage(w, http.StatusNotFound, httpx.MsgNotFound)
	})

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", users.Register)
			r.Post("/auth", users.Login)
			r.Post("/login", users.Login)
			r.Post("/logout", users.Logout)

			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Get("/profile", users.Profile)
				r.Put("/profile", users.UpdateProfile)
				r.With(admin).Get("/", users.List)
			})
		})

		r.Route("/genre", func(r chi.Router) {
			r.Get("/", genres.List)
			r.Get("/genres", genres.List)
			r.Get("/{id}", genres.Get)

			r.Group(func(r chi.Router) {
				r.Use(authn, admin)
				r.Post("/", genres.Create)
				r.Put("/{id}", genres.Update)
				r.Delete("/{id}", genres.Delete)
			})
		})

		r.Route("/movies", func(r chi.Router) {
			r.Get("/", movies.List)
			r.Get("/all-movies", movies.List)
			r.Get("/specific-movie/{id}", movies.Get)
			r.Get("/new", movies.New)
			r.Get("/new-movies", movies.New)
			r.Get("/top", movies.Top)
			r.Get("/top-movies", movies.Top)
			r.Get("/random", movies.Random)
			r.Get("/random-movies", movies.Random)
			r.Get("/{id}", movies.Get)

			r.With(authn).Post("/{id}/reviews", movies.AddReview)

			r.Group(func(r chi.Router) {
				r.Use(authn, admin)
				r.Post("/", movies.Create)
				r.Post("/create-movie", movies.Create)
				r.Put("/{id}", movies.Update)
				r.Put("/update-movie/{id}", movies.Update)
				r.Delete("/{id}", movies.Delete)
				r.Delete("/delete-movie/{id}", movies.Delete)
				r.Delete("/delete-comment", movies.DeleteComment)
				r.Delete("/reviews", movies.DeleteComment)
			})
		})

		r.Post("/upload", uploads.Upload)
	})

	return r
}

// Browsers reject credentialed responses with a wildcard origin.
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
