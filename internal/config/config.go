package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/forgo/crmfixtures/internal/crm"
	"github.com/forgo/crmfixtures/internal/database"
)

// Backends
const (
	BackendMemory  = "memory"
	BackendSurreal = "surreal"
)

// Config holds all application configuration
type Config struct {
	Fixture  FixtureConfig
	Database DatabaseConfig
	Log      LogConfig
}

// FixtureConfig holds fixture generation settings
type FixtureConfig struct {
	Backend         string
	SchemaFile      string
	DefaultCurrency string
	DefaultCountry  string
	Timeout         time.Duration
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	return &Config{
		Fixture: FixtureConfig{
			Backend:         getEnv("FIXTURE_BACKEND", BackendMemory),
			SchemaFile:      getEnv("FIXTURE_SCHEMA_FILE", ""),
			DefaultCurrency: getEnv("FIXTURE_DEFAULT_CURRENCY", string(crm.USD)),
			DefaultCountry:  getEnv("FIXTURE_DEFAULT_COUNTRY", crm.DefaultCountry),
			Timeout:         getDurationEnv("FIXTURE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "8000"),
			Namespace: getEnv("DB_NAMESPACE", "crm"),
			Database:  getEnv("DB_DATABASE", "fixtures"),
			User:      getEnv("DB_USER", "root"),
			Password:  getEnv("DB_PASSWORD", "root"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

// IsSurreal returns true if fixtures are written to SurrealDB
func (c *Config) IsSurreal() bool {
	return c.Fixture.Backend == BackendSurreal
}

// DB returns the connection settings in the form the database package takes.
func (c *Config) DB() database.Config {
	return database.Config{
		Host:      c.Database.Host,
		Port:      c.Database.Port,
		User:      c.Database.User,
		Password:  c.Database.Password,
		Namespace: c.Database.Namespace,
		Database:  c.Database.Database,
	}
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Fixture validation
	if c.Fixture.Backend != BackendMemory && c.Fixture.Backend != BackendSurreal {
		errs = append(errs, fmt.Errorf("FIXTURE_BACKEND must be 'memory' or 'surreal', got '%s'", c.Fixture.Backend))
	}
	if !crm.Currency(c.Fixture.DefaultCurrency).Valid() {
		errs = append(errs, fmt.Errorf("FIXTURE_DEFAULT_CURRENCY must be one of %s, got '%s'",
			strings.Join(crm.Currencies(), ", "), c.Fixture.DefaultCurrency))
	}
	if c.Fixture.DefaultCountry == "" {
		errs = append(errs, errors.New("FIXTURE_DEFAULT_COUNTRY is required"))
	}
	if c.Fixture.Timeout <= 0 {
		errs = append(errs, errors.New("FIXTURE_TIMEOUT must be positive"))
	}

	// Database validation, only when the database is used
	if c.IsSurreal() {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required"))
		}
		if c.Database.Port == "" {
			errs = append(errs, errors.New("DB_PORT is required"))
		}
		if c.Database.Namespace == "" {
			errs = append(errs, errors.New("DB_NAMESPACE is required"))
		}
		if c.Database.Database == "" {
			errs = append(errs, errors.New("DB_DATABASE is required"))
		}
	}

	// Log validation
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be 'debug', 'info', 'warn', or 'error', got '%s'", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be 'json' or 'text', got '%s'", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
