package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
log:
  level: info
engine:
  daily_swipe_limit: 10
  max_candidates: 50
  timezone: America/New_York
  badge_cache_ttl: 45s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("unexpected log level: %s", cfg.Log.Level)
	}
	if cfg.Engine.DailySwipeLimit != 10 {
		t.Fatalf("unexpected daily swipe limit: %d", cfg.Engine.DailySwipeLimit)
	}
	if cfg.Engine.MaxCandidates != 50 {
		t.Fatalf("unexpected max candidates: %d", cfg.Engine.MaxCandidates)
	}
	if cfg.Engine.Timezone != "America/New_York" {
		t.Fatalf("unexpected engine timezone: %s", cfg.Engine.Timezone)
	}
	if cfg.Engine.BadgeCacheTTL != 45*time.Second {
		t.Fatalf("unexpected badge cache ttl: %s", cfg.Engine.BadgeCacheTTL)
	}

	// untouched keys keep defaults
	if cfg.Engine.DenyListDays != 30 {
		t.Fatalf("deny_list_days default should stay 30, got %d", cfg.Engine.DenyListDays)
	}
	if cfg.HTTP.ReadTimeout != 5*time.Second {
		t.Fatalf("read timeout default should stay 5s, got %s", cfg.HTTP.ReadTimeout)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Engine.DailySwipeLimit != 30 {
		t.Fatalf("unexpected default daily swipe limit: %d", cfg.Engine.DailySwipeLimit)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected default http addr: %s", cfg.HTTP.Addr)
	}
}

func TestEnvOverridesBeatYAML(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ENGINE_DAILY_SWIPE_LIMIT", "7")
	t.Setenv("POSTGRES_DSN", "postgres://env:env@db:5432/collabia")
	t.Setenv("ENGINE_BADGE_CACHE_TTL", "1m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Engine.DailySwipeLimit != 7 {
		t.Fatalf("env override ignored: %d", cfg.Engine.DailySwipeLimit)
	}
	if cfg.Postgres.DSN != "postgres://env:env@db:5432/collabia" {
		t.Fatalf("unexpected dsn: %s", cfg.Postgres.DSN)
	}
	if cfg.Engine.BadgeCacheTTL != time.Minute {
		t.Fatalf("unexpected badge cache ttl: %s", cfg.Engine.BadgeCacheTTL)
	}
}

func TestEnvOverrideRejectsGarbage(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ENGINE_DAILY_SWIPE_LIMIT", "not-a-number")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for invalid int override")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_ENV", "HTTP_ADDR", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT", "LOG_LEVEL", "POSTGRES_DSN", "REDIS_ADDR",
		"REDIS_PASSWORD", "REDIS_DB", "JWT_SECRET", "JWT_ACCESS_TTL",
		"ENGINE_DAILY_SWIPE_LIMIT", "ENGINE_DENY_LIST_DAYS",
		"ENGINE_MAX_CANDIDATES", "ENGINE_TIMEZONE", "ENGINE_BADGE_CACHE_TTL",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
