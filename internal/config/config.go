// Package config loads and validates environment-based configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Message)
}

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	Port int

	// StorageDSN selects the kv backend: postgres:// DSN, SQLite file
	// path, or empty for in-memory.
	StorageDSN string

	// Upstream endpoints; empty selects the public instances.
	OverpassURL  string
	NominatimURL string

	// Catalog documents served read-only from process start.
	RawCatalogPath string
	CatalogPath    string

	// Admin auth settings.
	AdminAPIKey string // Required to issue tokens; issuance is disabled when empty.
	JWTSecret   string // Signing key for HS256 access tokens.
	TokenTTL    time.Duration
}

// Load reads and validates the environment variables.
// Returns a ConfigError for any invalid value.
func Load() (*Config, error) {
	cfg := &Config{
		StorageDSN:     os.Getenv("STORAGE_DSN"),
		OverpassURL:    os.Getenv("OVERPASS_URL"),
		NominatimURL:   os.Getenv("NOMINATIM_URL"),
		RawCatalogPath: os.Getenv("RAW_CATALOG_PATH"),
		CatalogPath:    os.Getenv("CATALOG_PATH"),
		AdminAPIKey:    os.Getenv("ADMIN_API_KEY"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
	}

	if cfg.RawCatalogPath == "" {
		cfg.RawCatalogPath = "./data/raw.json"
	}
	if cfg.CatalogPath == "" {
		cfg.CatalogPath = "./data/stores.json"
	}

	cfg.TokenTTL = parseDurationEnv("TOKEN_TTL", 15*time.Minute)

	portStr := os.Getenv("PORT")
	if portStr == "" {
		cfg.Port = 8080
	} else {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, &ConfigError{Field: "PORT", Message: "must be a valid integer"}
		}
		if port < 1 || port > 65535 {
			return nil, &ConfigError{Field: "PORT", Message: "must be between 1 and 65535"}
		}
		cfg.Port = port
	}

	return cfg, nil
}

// Validate re-checks required fields on an already-constructed Config.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, &ConfigError{Field: "PORT", Message: "must be between 1 and 65535"})
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, &ConfigError{Field: "TOKEN_TTL", Message: "must be positive"})
	}
	return errors.Join(errs...)
}

// parseDurationEnv reads a duration from an environment variable.
// Falls back to defaultVal if the variable is unset or unparseable.
// Accepts Go duration strings like "15m", "24h", "168h".
func parseDurationEnv(key string, defaultVal time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultVal
	}
	return d
}
