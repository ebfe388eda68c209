package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/baharkarakas/moviecatalog/internal/api"
	"github.com/baharkarakas/moviecatalog/internal/auth"
	"github.com/baharkarakas/moviecatalog/internal/cache"
	"github.com/baharkarakas/moviecatalog/internal/config"
	"github.com/baharkarakas/moviecatalog/internal/db"
	"github.com/baharkarakas/moviecatalog/internal/logger"
	"github.com/baharkarakas/moviecatalog/internal/metrics"
	"github.com/baharkarakas/moviecatalog/internal/repository/mongodb"
	"github.com/baharkarakas/moviecatalog/internal/repository/postgres"
	"github.com/baharkarakas/moviecatalog/internal/services"
	"github.com/baharkarakas/moviecatalog/internal/upload"
	"github.com/baharkarakas/moviecatalog/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, mdb, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Error("mongo connect", "err", err)
		os.Exit(1)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	if err := db.EnsureIndexes(ctx, mdb); err != nil {
		log.Error("mongo indexes", "err", err)
		os.Exit(1)
	}
	repos := mongodb.NewRepositories(mdb)

	metrics.Init()

	// audit trail: optional Postgres behind the worker pool
	wp := worker.NewPool(4)
	var auditor *services.Auditor
	if cfg.AuditDatabaseURL != "" {
		pool, err := openAudit(ctx, cfg)
		if err != nil {
			log.Error("audit db", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		auditor = services.NewAuditor(postgres.NewRepositories(pool).AuditLogs, wp)
	} else {
		log.Info("audit trail disabled")
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = db.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis unavailable, caching disabled", "err", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	var store upload.Store = upload.Unconfigured{}
	if cld, err := upload.NewCloudinary(cfg.Cloudinary); err != nil {
		log.Warn("image uploads disabled", "err", err)
	} else {
		store = cld
	}

	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	r := api.NewRouter(api.RouterDeps{
		Cfg:      cfg,
		TM:       tm,
		UserSvc:  services.NewUserService(repos.Users, auditor),
		GenreSvc: services.NewGenreService(repos.Genres, auditor),
		MovieSvc: services.NewMovieService(repos.Movies, repos.Genres, cache.New(rdb), auditor),
		Uploads:  store,
		Users:    repos.Users,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	// flush queued audit rows while the audit pool is still open
	wp.Stop()
}

func openAudit(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	pool, err := db.NewPool(ctx, cfg.AuditDatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return pool, nil
}
