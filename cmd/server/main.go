package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rrens/nl2sql/internal/api"
	"github.com/Rrens/nl2sql/internal/api/handler"
	"github.com/Rrens/nl2sql/internal/app"
	"github.com/Rrens/nl2sql/internal/config"
	"github.com/Rrens/nl2sql/internal/domain"
	"github.com/Rrens/nl2sql/internal/llm"
	"github.com/Rrens/nl2sql/internal/logging"
	"github.com/Rrens/nl2sql/internal/repository/postgres"
	"github.com/Rrens/nl2sql/internal/repository/redis"
	"github.com/Rrens/nl2sql/internal/service"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			break
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logCloser, err := logging.Setup(cfg.Logging)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer logCloser.Close()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting NL2SQL API server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ready := make(map[string]handler.Pinger)

	var attemptRepo domain.AttemptRepository
	if cfg.Database.Enabled {
		if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}

		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		attemptRepo = postgres.NewAttemptRepository(db.Pool)
		ready["database"] = db
	}

	var (
		cache       llm.Cache
		rateLimiter *redis.RateLimiter
		flusher     handler.CacheFlusher
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		if cfg.Generation.CacheEnabled {
			generationCache := redis.NewGenerationCache(redisClient, cfg.Generation.CacheTTL, logging.Component("cache"))
			cache = generationCache
			flusher = generationCache
		}
		rateLimiter = redis.NewRateLimiter(
			redisClient,
			cfg.Security.RateLimit.RequestsPerMinute,
			cfg.Security.RateLimit.Burst,
		)
		ready["redis"] = redisClient
	}

	application, err := app.New(ctx, cfg, cache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise models")
	}
	defer application.Close()

	store := service.NewCorrectionStore(cfg.Correction.SessionTTL)
	go store.RunJanitor(ctx, time.Minute, logging.Component("corrections"))

	correctionService := service.NewCorrectionService(application.SQLService, store, attemptRepo, cfg.Correction.MaxAttempts)

	deps := api.Dependencies{
		Config:            cfg,
		Registry:          application.Registry,
		SQLService:        application.SQLService,
		CorrectionService: correctionService,
		Ready:             ready,
	}
	if rateLimiter != nil {
		deps.RateLimiter = rateLimiter
	}
	if flusher != nil {
		deps.Cache = flusher
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
