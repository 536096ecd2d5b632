// Package database provides the SurrealDB connection used by the SurrealDB
// persistence gateway and the integration test harness.
//
// The Database interface provides three query methods:
//   - Query: returns one {status, result} entry per statement
//   - QueryOne: returns the first record of the first statement
//   - Execute: no return value (for DEFINE/UPDATE statements)
//
// # Batches
//
// Batches are query-text based, not connection-level. TxBuilder accumulates
// statements and wraps them in BEGIN TRANSACTION / COMMIT TRANSACTION; the
// whole text is sent in one round trip and succeeds or fails as a unit.
// AtomicBatch is the short form for statements whose results are not needed.
//
// # Error Handling
//
// Standard errors are defined for common failure cases:
//   - ErrNotFound: Record does not exist
//   - ErrConnection: Database connection issues
//   - ErrQuery: Query execution failures
//
// Use errors.Is() to check error types:
//
//	if errors.Is(err, database.ErrConnection) {
//	    // environment problem, not a fixture bug
//	}
package database

import (
	"context"
	"errors"
)

// Standard errors for database operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure (syntax error, assertion, etc.).
	ErrQuery = errors.New("query error")
)

// Database defines the interface for database operations
type Database interface {
	// Connection management
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a query and returns results
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns a single result
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
}

// Config holds database configuration
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}
