package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CONFIG_FILE", "")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error when JWT_SECRET is missing")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("PRESENCE_TTL", "2m")
	t.Setenv("FEED_URLS", "https://a.example/rss, ,https://b.example/atom")
	t.Setenv("ARTICLES_DEFAULT_PAGE_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Presence.TTL != 2*time.Minute {
		t.Errorf("Expected 2m TTL, got %v", cfg.Presence.TTL)
	}
	if len(cfg.Feeds.URLs) != 2 {
		t.Errorf("Expected 2 feed URLs, got %v", cfg.Feeds.URLs)
	}
	if cfg.Articles.DefaultPageSize != 20 {
		t.Errorf("Expected default page size to survive a bad value, got %d", cfg.Articles.DefaultPageSize)
	}
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "7070"
auth:
  jwt_secret: from-file
presence:
  ttl: 45s
feeds:
  urls:
    - https://gist.example/feed
  schedule: "@every 10m"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")
	t.Setenv("PRESENCE_TTL", "")
	t.Setenv("FEED_URLS", "")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("Expected port from file, got %s", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "from-file" {
		t.Errorf("Expected secret from file, got %s", cfg.Auth.JWTSecret)
	}
	if cfg.Presence.TTL != 45*time.Second {
		t.Errorf("Expected 45s TTL, got %v", cfg.Presence.TTL)
	}
	if len(cfg.Feeds.URLs) != 1 || cfg.Feeds.Schedule != "@every 10m" {
		t.Errorf("Unexpected feeds config: %+v", cfg.Feeds)
	}
	if cfg.Database.Name != "naija_amebo" {
		t.Errorf("Expected untouched default database name, got %s", cfg.Database.Name)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected env override of log level, got %s", cfg.Log.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", "x")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestGetDSN(t *testing.T) {
	cfg := Default()
	want := "host=localhost port=5432 user=postgres password=postgres dbname=naija_amebo sslmode=disable"
	if got := cfg.Database.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}
