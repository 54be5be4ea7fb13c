package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/naija-amebo-api/internal/api"
	"github.com/naija-amebo-api/internal/auth"
	"github.com/naija-amebo-api/internal/config"
	"github.com/naija-amebo-api/internal/database"
	"github.com/naija-amebo-api/internal/repository"
	"github.com/naija-amebo-api/internal/scheduler"
	"github.com/naija-amebo-api/internal/service"
	"github.com/naija-amebo-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Logger settings come from config, so fall back to the defaults here
		boot := logger.New("", "")
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting Naija Amebo Gist API server...")

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Server.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize presence store
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid REDIS_URL")
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	pingCancel()
	log.Info().Str("addr", redisOpts.Addr).Msg("Redis connection established")

	// Initialize repositories
	repos := repository.New(db, rdb)

	// Initialize token verification
	jwt, err := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize JWT service")
	}

	// Initialize services
	services := service.NewServices(repos, cfg, log)

	// Start background jobs
	sched := scheduler.New(services.Presence, services.Feed, cfg, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Initialize router
	router := api.NewRouter(services, jwt, db, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop background jobs
	sched.Stop(ctx)

	// Close event streams so Shutdown is not held open by them
	services.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
