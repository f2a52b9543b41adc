package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/actuallystonmai/video-recommendation-service/internal/cache"
	"github.com/actuallystonmai/video-recommendation-service/internal/config"
	"github.com/actuallystonmai/video-recommendation-service/internal/embedding"
	"github.com/actuallystonmai/video-recommendation-service/internal/handler"
	"github.com/actuallystonmai/video-recommendation-service/internal/logging"
	"github.com/actuallystonmai/video-recommendation-service/internal/model"
	"github.com/actuallystonmai/video-recommendation-service/internal/repository"
	"github.com/actuallystonmai/video-recommendation-service/internal/router"
	"github.com/actuallystonmai/video-recommendation-service/internal/service"
	"github.com/actuallystonmai/video-recommendation-service/seeds"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ------------ PostgreSQL ---------------
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to parse database config")
	}
	poolConfig.MaxConns = int32(cfg.Database.PoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := waitForDB(ctx, pool); err != nil {
		logging.Fatal().Err(err).Msg("database not ready")
	}
	logging.Info().Msg("connected to PostgreSQL")

	// ------------ Run Migrations ---------------
	// for migrate-down using CLI command
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := migrateDown(ctx, pool); err != nil {
			logging.Fatal().Err(err).Msg("failed to migrate down")
		}
		return
	}

	if err := migrateUp(ctx, pool); err != nil {
		logging.Fatal().Err(err).Msg("failed to migrate up")
	}

	// ------------ Redis ---------------
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to parse redis url")
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// the service degrades to uncached ranking
		logging.Warn().Err(err).Msg("redis unavailable")
	} else {
		logging.Info().Msg("connected to Redis")
	}

	// ------------ Scoring ---------------
	provider, closer, err := newEmbeddingProvider(cfg.Embedding, rdb)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to set up embedding provider")
	}
	defer closer.Close()

	repo := repository.New(pool)
	svc := service.NewService(
		repo,
		cache.NewCache(rdb, cfg.Redis.CacheTTL),
		model.NewClient(cfg.Scoring.Model(), provider),
		service.Options{
			CandidatePool: cfg.Scoring.CandidatePool,
			MaxPosts:      cfg.Scoring.MaxPosts,
			MaxLikedPosts: cfg.Scoring.MaxLikedPosts,
		},
	)

	// ------------ Setup Seed Data ---------------
	seeded, err := checkSeed(ctx, pool)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to check seed")
	}
	if seeded {
		buildProfiles(ctx, repo, svc)
	}

	// ---------------- Server --------------------
	h := handler.NewHandler(svc,
		handler.HealthCheck{Name: "postgres", Check: repo.Ping},
		handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.Setup(h, router.Options{
			RateLimit:  cfg.Server.RateLimit,
			RateWindow: cfg.Server.RateWindow,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// newEmbeddingProvider returns a cached HTTP provider, or nil when no API key
// is configured. The closer releases the sqlite cache if one was opened.
func newEmbeddingProvider(cfg config.EmbeddingConfig, rdb *redis.Client) (embedding.Provider, io.Closer, error) {
	if cfg.APIKey == "" {
		logging.Warn().Msg("no embedding API key, semantic similarity will be neutral")
		return nil, nopCloser{}, nil
	}

	httpProvider := embedding.NewHTTPProvider(embedding.HTTPConfig{
		BaseURL: cfg.URL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		RPS:     cfg.RPS,
		Burst:   cfg.Burst,
		Timeout: cfg.Timeout,
	})

	if cfg.CachePath != "" {
		store, err := embedding.OpenSQLiteStore(cfg.CachePath)
		if err != nil {
			return nil, nil, err
		}
		logging.Info().Str("path", cfg.CachePath).Msg("embedding cache: sqlite")
		return embedding.NewCachedProvider(httpProvider, store, httpProvider.Model()), store, nil
	}

	logging.Info().Msg("embedding cache: redis")
	store := embedding.NewRedisStore(rdb, cfg.CacheTTL)
	return embedding.NewCachedProvider(httpProvider, store, httpProvider.Model()), nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func waitForDB(ctx context.Context, pool *pgxpool.Pool) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		logging.Info().Int("attempt", i+1).Msg("waiting for database")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
		}
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func migrateDown(ctx context.Context, pool *pgxpool.Pool) error {
	sql, err := os.ReadFile("migrations/create_tables.down.sql")
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	logging.Info().Msg("migrations dropped successfully")
	return nil
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool) error {
	sql, err := os.ReadFile("migrations/create_tables.up.sql")
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	logging.Info().Msg("migrations applied successfully")
	return nil
}

// checkSeed seeds an empty database and reports whether it did.
func checkSeed(ctx context.Context, pool *pgxpool.Pool) (bool, error) {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM user_profiles").Scan(&count); err != nil {
		return false, fmt.Errorf("check users count: %w", err)
	}
	if count > 0 {
		logging.Info().Int("users", count).Msg("database already seeded, skipping")
		return false, nil
	}
	if err := seeds.Setup(ctx, pool); err != nil {
		return false, err
	}
	return true, nil
}

// buildProfiles scores tags for every seeded user so recommendations are
// available immediately.
func buildProfiles(ctx context.Context, repo *repository.Repository, svc *service.Service) {
	total, err := repo.CountUsers(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("count users for profile build")
		return
	}
	names, err := repo.GetUsernamesPaginated(ctx, 1, total)
	if err != nil {
		logging.Error().Err(err).Msg("list users for profile build")
		return
	}
	for _, name := range names {
		if _, err := svc.BuildProfile(ctx, name); err != nil {
			logging.Warn().Err(err).Str("username", name).Msg("profile build failed")
		}
	}
}
