package config

import (
	"encoding/hex"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultBaseURL is the public app services endpoint.
const DefaultBaseURL = "https://services.cloud.mongodb.com"

// Config holds all environment-based configuration for appsync.
type Config struct {
	// Backend application
	AppID   string `env:"APP_ID"`
	BaseURL string `env:"APP_BASE_URL" envDefault:"https://services.cloud.mongodb.com"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"`

	// Directory for the metadata database and realm files. Defaults to
	// ~/.appsync when empty.
	StateDir string `env:"APPSYNC_STATE_DIR"`

	// Optional 32-byte key, hex encoded. When set, tokens are encrypted at
	// rest in the metadata database.
	MetadataKey string `env:"APPSYNC_METADATA_KEY"`

	HTTPTimeout       time.Duration `env:"HTTP_TIMEOUT" envDefault:"60s"`
	ReconnectDebounce time.Duration `env:"RECONNECT_DEBOUNCE" envDefault:"5s"`

	// Sync websocket
	SyncProtocols   []string      `env:"SYNC_PROTOCOLS" envDefault:"com.mongodb.realm-query-sync#9,com.mongodb.realm-query-sync#8" envSeparator:","`
	MaxMessageBytes int64         `env:"WEBSOCKET_MAX_MESSAGE_BYTES" envDefault:"0"`
	ProbeAddr       string        `env:"CONNECTIVITY_PROBE_ADDR"`
	ProbeInterval   time.Duration `env:"CONNECTIVITY_PROBE_INTERVAL" envDefault:"10s"`

	// Convenience credentials for the CLI
	Email    string `env:"APP_EMAIL"`
	Password string `env:"APP_PASSWORD"`
	APIKey   string `env:"APP_API_KEY"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing credentials to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if cfg.StateDir == "" {
		dir, err := DefaultStateDir()
		if err != nil {
			return nil, err
		}

		cfg.StateDir = dir
	}

	absDir, err := filepath.Abs(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("resolving state dir to absolute path: %w", err)
	}

	cfg.StateDir = absDir
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}

func (c *Config) validate() error {
	if c.AppID == "" {
		return fmt.Errorf("APP_ID is required")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("APP_BASE_URL must be an absolute http(s) URL, got %q", c.BaseURL)
	}

	if c.MetadataKey != "" {
		if _, err := c.MetadataKeyBytes(); err != nil {
			return err
		}
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	if c.ReconnectDebounce < 0 {
		return fmt.Errorf("RECONNECT_DEBOUNCE must not be negative")
	}

	protocols := c.SyncProtocols[:0]
	for _, p := range c.SyncProtocols {
		if p = strings.TrimSpace(p); p != "" {
			protocols = append(protocols, p)
		}
	}

	if len(protocols) == 0 {
		return fmt.Errorf("SYNC_PROTOCOLS must list at least one protocol")
	}

	c.SyncProtocols = protocols

	if c.MaxMessageBytes < 0 {
		return fmt.Errorf("WEBSOCKET_MAX_MESSAGE_BYTES must not be negative")
	}

	if c.ProbeAddr != "" {
		if _, _, err := net.SplitHostPort(c.ProbeAddr); err != nil {
			return fmt.Errorf("CONNECTIVITY_PROBE_ADDR must be host:port: %w", err)
		}

		if c.ProbeInterval <= 0 {
			return fmt.Errorf("CONNECTIVITY_PROBE_INTERVAL must be positive")
		}
	}

	return nil
}

// MetadataKeyBytes decodes the metadata encryption key. It returns nil
// when no key is configured.
func (c *Config) MetadataKeyBytes() ([]byte, error) {
	if c.MetadataKey == "" {
		return nil, nil
	}

	key, err := hex.DecodeString(c.MetadataKey)
	if err != nil {
		return nil, fmt.Errorf("APPSYNC_METADATA_KEY must be hex encoded: %w", err)
	}

	if len(key) != 32 {
		return nil, fmt.Errorf("APPSYNC_METADATA_KEY must decode to 32 bytes, got %d", len(key))
	}

	return key, nil
}

// DefaultStateDir returns ~/.appsync.
func DefaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(home, ".appsync"), nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
