package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a fetch that matched no record.
	ErrNotFound = errors.New("record not found")

	// ErrValidation indicates the store rejected a record's content.
	ErrValidation = errors.New("record validation failed")

	// ErrAlreadyPersisted indicates Persist was called on a record that has an identifier.
	ErrAlreadyPersisted = errors.New("record already persisted")

	// ErrNotPersisted indicates Update was called on a record without an identifier.
	ErrNotPersisted = errors.New("record not persisted")

	// ErrInvalidQuery indicates a query naming fields its type does not define.
	ErrInvalidQuery = errors.New("invalid query")
)

// PersistenceError wraps a failure reported by the backing store. It is
// never retried by the fixture layer.
type PersistenceError struct {
	Op    string
	Type  string
	ID    string
	Cause error
}

func (e *PersistenceError) Error() string {
	target := e.Type
	if e.ID != "" {
		target = fmt.Sprintf("%s(%s)", e.Type, e.ID)
	}
	return fmt.Sprintf("persistence: %s %s: %v", e.Op, target, e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }
