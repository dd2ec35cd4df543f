package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "LISTEN_ADDR", "GIN_MODE", "REDIS_URL", "FEED_CHANNEL",
		"MESSAGES_DIR", "ALLOWED_ORIGINS", "FEED_TTL_SEC", "WS_SEND_BUFFER",
		"WS_PING_INTERVAL_SEC",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" || cfg.WSSendBuffer != 32 || cfg.RedisURL != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.PingInterval() != 25*time.Second || cfg.FeedTTL() != time.Hour {
		t.Fatalf("durations: %v %v", cfg.PingInterval(), cfg.FeedTTL())
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "rooms.yaml")
	body := "listen_addr: \":9000\"\nredis_url: redis://file:6379/0\nallowed_origins: [a.example, b.example]\nws_send_buffer: 8\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("REDIS_URL", "redis://env:6379/1")
	t.Setenv("WS_SEND_BUFFER", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("file value lost: %q", cfg.ListenAddr)
	}
	if cfg.RedisURL != "redis://env:6379/1" {
		t.Fatalf("env should win: %q", cfg.RedisURL)
	}
	if cfg.WSSendBuffer != 8 {
		t.Fatalf("bad env value should be ignored: %d", cfg.WSSendBuffer)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "b.example" {
		t.Fatalf("origins: %v", cfg.AllowedOrigins)
	}
}

func TestLoadOriginsFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOWED_ORIGINS", " x.example , ,y.example")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "x.example" {
		t.Fatalf("origins: %v", cfg.AllowedOrigins)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("GIN_MODE", "loud")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad GIN_MODE")
	}

	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
