package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the notedrop service.
// Environment variables are parsed from the NOTEDROP_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Store selection: sqlite (local default) or postgres
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/notedrop.db"`

	// Language model
	LLMAPIKey string `envconfig:"LLM_API_KEY" default:""`
	LLMModel  string `envconfig:"LLM_MODEL" default:"gemini-2.0-flash"`

	// Maps provider (distance matrix)
	MapsAPIKey string `envconfig:"MAPS_API_KEY" default:""`

	// Auth: "key:actor,key:actor" pairs; the hardcoded dev key is accepted
	// outside production.
	APIKeys string `envconfig:"API_KEYS" default:""`
}

// New creates a new Config by parsing environment variables.
// Example: NOTEDROP_HTTP_PORT, NOTEDROP_DB_DRIVER, NOTEDROP_LLM_API_KEY.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("NOTEDROP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("db_driver", cfg.DBDriver).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Str("llm_model", cfg.LLMModel).
		Bool("llm_key_present", cfg.LLMAPIKey != "").
		Bool("maps_key_present", cfg.MapsAPIKey != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// Validate checks driver selection and required credentials per driver.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("NOTEDROP_SQLITE_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("NOTEDROP_POSTGRES_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.IsProduction() && c.APIKeys == "" {
		return fmt.Errorf("NOTEDROP_API_KEYS must be set in production")
	}
	return nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	return &Config{
		Environment: EnvTesting,
		HTTPPort:    8080,
		DBDriver:    "sqlite",
		SQLitePath:  ":memory:",
		LLMModel:    "gemini-2.0-flash",
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
