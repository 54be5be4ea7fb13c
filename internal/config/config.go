package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration (presence store)
	Redis RedisConfig `yaml:"redis"`

	// Token verification
	Auth AuthConfig `yaml:"auth"`

	Articles  ArticlesConfig  `yaml:"articles"`
	Presence  PresenceConfig  `yaml:"presence"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Feeds     FeedsConfig     `yaml:"feeds"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MigrationsPath  string        `yaml:"migrations_path"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	Name         string        `yaml:"name"`
	SSLMode      string        `yaml:"sslmode"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxLifetime  time.Duration `yaml:"max_lifetime"`

	// Startup waits for the database to accept connections
	ConnectAttempts int           `yaml:"connect_attempts"`
	ConnectBackoff  time.Duration `yaml:"connect_backoff"`
}

// RedisConfig holds the presence store connection
type RedisConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig holds JWT verification settings
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// ArticlesConfig holds listing settings
type ArticlesConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// PresenceConfig holds heartbeat expiry settings
type PresenceConfig struct {
	// TTL after which an online record without heartbeats reads as offline
	TTL           time.Duration `yaml:"ttl"`
	SweepSchedule string        `yaml:"sweep_schedule"`
}

// AnalyticsConfig holds ingestion limits
type AnalyticsConfig struct {
	MaxBatchSize int `yaml:"max_batch_size"`
}

// FeedsConfig holds external news feed settings
type FeedsConfig struct {
	URLs        []string      `yaml:"urls"`
	Schedule    string        `yaml:"schedule"`
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "pretty"
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     30 * time.Second,
			// Event streams stay open indefinitely
			WriteTimeout:    0,
			ShutdownTimeout: 30 * time.Second,
			MigrationsPath:  "./migrations",
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         "5432",
			User:         "postgres",
			Password:     "postgres",
			Name:         "naija_amebo",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			MaxLifetime:  5 * time.Minute,

			ConnectAttempts: 5,
			ConnectBackoff:  2 * time.Second,
		},
		Redis: RedisConfig{
			URL: "redis://localhost:6379/0",
		},
		Auth: AuthConfig{
			Issuer:   "naija-amebo-gist",
			TokenTTL: 24 * time.Hour,
		},
		Articles: ArticlesConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Presence: PresenceConfig{
			TTL:           90 * time.Second,
			SweepSchedule: "@every 30s",
		},
		Analytics: AnalyticsConfig{
			MaxBatchSize: 500,
		},
		Feeds: FeedsConfig{
			Schedule:    "@every 30m",
			Timeout:     20 * time.Second,
			Concurrency: 4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from the optional YAML file named by CONFIG_FILE,
// then applies environment variable overrides
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.ShutdownTimeout = getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.MigrationsPath = getEnv("MIGRATIONS_PATH", c.Server.MigrationsPath)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.MaxOpenConns = getIntEnv("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getIntEnv("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.MaxLifetime = getDurationEnv("DB_MAX_LIFETIME", c.Database.MaxLifetime)
	c.Database.ConnectAttempts = getIntEnv("DB_CONNECT_ATTEMPTS", c.Database.ConnectAttempts)
	c.Database.ConnectBackoff = getDurationEnv("DB_CONNECT_BACKOFF", c.Database.ConnectBackoff)

	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.Issuer = getEnv("JWT_ISSUER", c.Auth.Issuer)
	c.Auth.TokenTTL = getDurationEnv("JWT_TOKEN_TTL", c.Auth.TokenTTL)

	c.Articles.DefaultPageSize = getIntEnv("ARTICLES_DEFAULT_PAGE_SIZE", c.Articles.DefaultPageSize)
	c.Articles.MaxPageSize = getIntEnv("ARTICLES_MAX_PAGE_SIZE", c.Articles.MaxPageSize)

	c.Presence.TTL = getDurationEnv("PRESENCE_TTL", c.Presence.TTL)
	c.Presence.SweepSchedule = getEnv("PRESENCE_SWEEP_SCHEDULE", c.Presence.SweepSchedule)

	c.Analytics.MaxBatchSize = getIntEnv("ANALYTICS_MAX_BATCH_SIZE", c.Analytics.MaxBatchSize)

	c.Feeds.URLs = getListEnv("FEED_URLS", c.Feeds.URLs)
	c.Feeds.Schedule = getEnv("FEED_SCHEDULE", c.Feeds.Schedule)
	c.Feeds.Timeout = getDurationEnv("FEED_TIMEOUT", c.Feeds.Timeout)
	c.Feeds.Concurrency = getIntEnv("FEED_CONCURRENCY", c.Feeds.Concurrency)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Articles.DefaultPageSize <= 0 || c.Articles.MaxPageSize < c.Articles.DefaultPageSize {
		return fmt.Errorf("article page sizes must be positive and max >= default")
	}
	if c.Presence.TTL <= 0 {
		return fmt.Errorf("PRESENCE_TTL must be positive")
	}
	if c.Analytics.MaxBatchSize <= 0 {
		return fmt.Errorf("ANALYTICS_MAX_BATCH_SIZE must be positive")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
