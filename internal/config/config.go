// ABOUTME: Configuration loading and parsing for the sweet shop client.
// ABOUTME: Supports TOML files with .env loading and environment overrides.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the complete client configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Auth      AuthConfig      `toml:"auth"`
	Inventory InventoryConfig `toml:"inventory"`
	Logging   LoggingConfig   `toml:"logging"`
}

// ServerConfig names the remote sweet shop service.
type ServerConfig struct {
	// BaseURL is the service origin without the /api/v1 suffix.
	BaseURL string `toml:"base_url"`

	RequestTimeout time.Duration `toml:"-"`

	// Raw string value for TOML unmarshaling
	RequestTimeoutRaw string `toml:"request_timeout"`
}

// AuthConfig holds credential persistence settings.
type AuthConfig struct {
	// TokenPath is the token file shared by all frontends.
	TokenPath string `toml:"token_path"`
}

// InventoryConfig holds inventory operation defaults.
type InventoryConfig struct {
	// RestockAmount is the default restock quantity when none is given.
	RestockAmount int `toml:"restock_amount"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

const (
	defaultBaseURL        = "http://localhost:8000"
	defaultRequestTimeout = 30 * time.Second
	defaultRestockAmount  = 10
)

// DefaultPath returns the config file location.
// Priority: SWEETSHOP_CONFIG env var > XDG_CONFIG_HOME/sweetshop/config.toml > ~/.config/sweetshop/config.toml
func DefaultPath() string {
	if envPath := os.Getenv("SWEETSHOP_CONFIG"); envPath != "" {
		return envPath
	}
	return filepath.Join(configDir(), "sweetshop", "config.toml")
}

// DefaultTokenPath returns the token file location used when the config does
// not name one.
func DefaultTokenPath() string {
	return filepath.Join(configDir(), "sweetshop", "token")
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".config")
}

// Load reads the config file at path, fills defaults, and applies overrides
// from a .env file and SWEETSHOP_* environment variables. A missing config
// file yields the defaults.
func Load(path string) (*Config, error) {
	// Best effort: a .env in the working directory feeds the env overrides.
	_ = godotenv.Load()

	cfg := &Config{
		Server:    ServerConfig{BaseURL: defaultBaseURL, RequestTimeout: defaultRequestTimeout},
		Auth:      AuthConfig{TokenPath: DefaultTokenPath()},
		Inventory: InventoryConfig{RestockAmount: defaultRestockAmount},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if cfg.Server.RequestTimeoutRaw != "" {
		cfg.Server.RequestTimeout, err = time.ParseDuration(cfg.Server.RequestTimeoutRaw)
		if err != nil {
			return nil, fmt.Errorf("parsing request_timeout %q: %w", cfg.Server.RequestTimeoutRaw, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides layers SWEETSHOP_* environment variables over the file.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SWEETSHOP_SERVER"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("SWEETSHOP_TOKEN_PATH"); v != "" {
		cfg.Auth.TokenPath = v
	}
	if v := os.Getenv("SWEETSHOP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SWEETSHOP_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SWEETSHOP_RESTOCK_AMOUNT"); v != "" {
		amount, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing SWEETSHOP_RESTOCK_AMOUNT %q: %w", v, err)
		}
		cfg.Inventory.RestockAmount = amount
	}
	return nil
}

// Validate checks that all configuration fields are usable.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.base_url %q is not a valid URL", c.Server.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.base_url scheme must be http or https, got %q", u.Scheme)
	}

	if c.Auth.TokenPath == "" {
		return fmt.Errorf("auth.token_path is required")
	}

	if c.Inventory.RestockAmount <= 0 {
		return fmt.Errorf("inventory.restock_amount must be positive, got %d", c.Inventory.RestockAmount)
	}

	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive")
	}

	return nil
}
