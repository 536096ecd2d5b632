package config

import (
	"strings"
	"testing"
	"time"
)

func validBaseConfig() *Config {
	return &Config{
		Fixture: FixtureConfig{
			Backend:         BackendMemory,
			DefaultCurrency: "USD",
			DefaultCountry:  "United States",
			Timeout:         time.Minute,
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      "8000",
			Namespace: "crm",
			Database:  "fixtures",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	if err := validBaseConfig().Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestConfig_Validate_InvalidBackend(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Fixture.Backend = "soap"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid FIXTURE_BACKEND")
	}
	if !strings.Contains(err.Error(), "FIXTURE_BACKEND") {
		t.Errorf("expected error to mention FIXTURE_BACKEND, got: %v", err)
	}
}

func TestConfig_Validate_InvalidCurrency(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Fixture.DefaultCurrency = "JPY"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unsupported currency")
	}
	if !strings.Contains(err.Error(), "FIXTURE_DEFAULT_CURRENCY") {
		t.Errorf("expected error to mention FIXTURE_DEFAULT_CURRENCY, got: %v", err)
	}
}

func TestConfig_Validate_DatabaseOnlyForSurreal(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Database.Host = ""

	if err := cfg.Validate(); err != nil {
		t.Errorf("memory backend should not need DB_HOST, got: %v", err)
	}

	cfg.Fixture.Backend = BackendSurreal
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing DB_HOST")
	}
	if !strings.Contains(err.Error(), "DB_HOST") {
		t.Errorf("expected error to mention DB_HOST, got: %v", err)
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Fixture.Timeout = 0
	cfg.Log.Level = "verbose"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}

	errStr := err.Error()
	for _, key := range []string{"FIXTURE_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT"} {
		if !strings.Contains(errStr, key) {
			t.Errorf("expected error to mention %s, got: %v", key, err)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"FIXTURE_BACKEND", "FIXTURE_DEFAULT_CURRENCY", "FIXTURE_TIMEOUT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Fixture.Backend != BackendMemory {
		t.Errorf("expected memory backend, got %s", cfg.Fixture.Backend)
	}
	if cfg.Fixture.DefaultCurrency != "USD" {
		t.Errorf("expected USD, got %s", cfg.Fixture.DefaultCurrency)
	}
	if cfg.Fixture.Timeout != 60*time.Second {
		t.Errorf("expected 60s timeout, got %v", cfg.Fixture.Timeout)
	}
	if cfg.IsSurreal() {
		t.Error("expected IsSurreal to be false")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("FIXTURE_BACKEND", "surreal")
	t.Setenv("FIXTURE_TIMEOUT", "45")
	t.Setenv("DB_NAMESPACE", "qa")
	t.Setenv("DB_DATABASE", "sandbox")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsSurreal() {
		t.Error("expected IsSurreal to be true")
	}
	if cfg.Fixture.Timeout != 45*time.Second {
		t.Errorf("expected 45s timeout, got %v", cfg.Fixture.Timeout)
	}

	db := cfg.DB()
	if db.Namespace != "qa" || db.Database != "sandbox" {
		t.Errorf("unexpected database config: %+v", db)
	}
}
