// Package config manages configuration for the fixture tool.
//
// The config package loads and validates configuration from environment variables.
//
// # Configuration Loading
//
// Configuration is loaded from environment variables:
//
//	cfg, err := config.Load()
//	if err := cfg.Validate(); err != nil { ... }
//
// # Configuration Groups
//
//   - FixtureConfig: store backend, schema overlay, generated defaults
//   - DatabaseConfig: SurrealDB connection settings
//   - LogConfig: slog level and handler format
//
// # Environment Variables
//
//	FIXTURE_BACKEND          - memory or surreal (default: memory)
//	FIXTURE_SCHEMA_FILE      - YAML file of extra record types
//	FIXTURE_DEFAULT_CURRENCY - currency of generated accounts (default: USD)
//	FIXTURE_DEFAULT_COUNTRY  - billing country of generated accounts
//	FIXTURE_TIMEOUT          - deadline for one command, e.g. 30s
//	DB_HOST, DB_PORT         - SurrealDB address (default: localhost:8000)
//	DB_NAMESPACE, DB_DATABASE
//	DB_USER, DB_PASSWORD
//	LOG_LEVEL                - debug, info, warn, error (default: info)
//	LOG_FORMAT               - json or text (default: json)
package config
