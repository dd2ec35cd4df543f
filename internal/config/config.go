package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// AppConfig is the server configuration. Values come from defaults, then the
// YAML file named by CONFIG_FILE, then environment variables.
type AppConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	GinMode    string `yaml:"gin_mode"`

	RedisURL    string `yaml:"redis_url"`
	FeedChannel string `yaml:"feed_channel"`
	FeedTTLSec  int    `yaml:"feed_ttl_sec"`

	AllowedOrigins []string `yaml:"allowed_origins"`
	MessagesDir    string   `yaml:"messages_dir"`

	WSSendBuffer      int `yaml:"ws_send_buffer"`
	WSPingIntervalSec int `yaml:"ws_ping_interval_sec"`
}

func defaults() *AppConfig {
	return &AppConfig{
		ListenAddr:        ":8080",
		GinMode:           "release",
		FeedChannel:       "chess-rooms:events",
		FeedTTLSec:        3600,
		WSSendBuffer:      32,
		WSPingIntervalSec: 25,
	}
}

// FeedTTL is the expiry applied to the live-room index.
func (c *AppConfig) FeedTTL() time.Duration { return time.Duration(c.FeedTTLSec) * time.Second }

// PingInterval is how often idle sockets are pinged.
func (c *AppConfig) PingInterval() time.Duration {
	return time.Duration(c.WSPingIntervalSec) * time.Second
}

func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("GIN_MODE")); v != "" {
		cfg.GinMode = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("FEED_CHANNEL")); v != "" {
		cfg.FeedChannel = v
	}
	if v := strings.TrimSpace(os.Getenv("MESSAGES_DIR")); v != "" {
		cfg.MessagesDir = v
	}
	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("FEED_TTL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FeedTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("WS_SEND_BUFFER")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WSSendBuffer = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("WS_PING_INTERVAL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WSPingIntervalSec = n
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return errors.New("LISTEN_ADDR is required")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode)
	}
	if c.WSSendBuffer <= 0 {
		return errors.New("WS_SEND_BUFFER must be positive")
	}
	if c.WSPingIntervalSec <= 0 {
		return errors.New("WS_PING_INTERVAL_SEC must be positive")
	}
	if c.FeedTTLSec <= 0 {
		return errors.New("FEED_TTL_SEC must be positive")
	}
	if c.RedisURL != "" && strings.TrimSpace(c.FeedChannel) == "" {
		return errors.New("FEED_CHANNEL is required when REDIS_URL is set")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
