package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/naija-amebo-api/internal/config"
	"github.com/rs/zerolog"
)

const pingTimeout = 5 * time.Second

// DB wraps the article and analytics store connection
type DB struct {
	*sql.DB
	log zerolog.Logger

	// schema holds the applied migration version, or 0 before RunMigrations
	schema atomic.Uint32
}

// New opens a pooled connection and waits for the server to answer a ping,
// retrying up to cfg.ConnectAttempts times.
func New(cfg *config.DatabaseConfig, log zerolog.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	wrapper := &DB{
		DB:  db,
		log: log.With().Str("component", "database").Logger(),
	}

	if err := waitForPing(context.Background(), db.PingContext, cfg.ConnectAttempts, cfg.ConnectBackoff, wrapper.log); err != nil {
		db.Close()
		return nil, err
	}

	wrapper.log.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Name).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("Database connection established")

	return wrapper, nil
}

// waitForPing calls ping until it succeeds or attempts run out
func waitForPing(ctx context.Context, ping func(context.Context) error, attempts int, backoff time.Duration, log zerolog.Logger) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		log.Warn().Err(err).
			Int("attempt", attempt).
			Dur("retry_in", backoff).
			Msg("Database not ready")

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return fmt.Errorf("failed to ping database: %w", ctx.Err())
		}
	}
	return fmt.Errorf("failed to ping database after %d attempts: %w", attempts, err)
}

// RunMigrations applies pending schema migrations from migrationsPath and
// records the resulting version.
func (db *DB) RunMigrations(migrationsPath string) error {
	db.log.Info().Str("path", migrationsPath).Msg("Running database migrations")

	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty, fix it manually before restarting", version)
	}
	db.schema.Store(uint32(version))

	db.log.Info().Uint("version", version).Msg("Migrations completed")
	return nil
}

// SchemaVersion returns the migration version applied at startup
func (db *DB) SchemaVersion() uint {
	return uint(db.schema.Load())
}

// HealthCheck pings the database
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Stats returns connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}
