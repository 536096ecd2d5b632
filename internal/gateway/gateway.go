// Package gateway is the boundary between the fixture layer and the record
// store behind the system under test.
//
// The fixture layer needs four operations: batch insert returning assigned
// identifiers, batch update, and filtered queries returning one or many
// typed records. Two implementations are provided:
//
//   - Memory: an in-process store that mirrors the remote validation rules,
//     used by unit tests and dry runs
//   - Surreal: a SurrealDB-backed store for integration environments
//
// Store failures are returned as *PersistenceError and are never retried
// here; the calling test decides whether to fail or rerun the scenario.
package gateway

import (
	"context"
	"fmt"

	"github.com/forgo/crmfixtures/internal/record"
)

// Op names used in PersistenceError.
const (
	OpPersist = "persist"
	OpUpdate  = "update"
	OpFetch   = "fetch"
)

// Gateway persists and retrieves records.
type Gateway interface {
	// Persist inserts unpersisted records and back-fills their identifiers.
	// The returned slice holds the same instances in the same order.
	Persist(ctx context.Context, recs ...*record.Instance) ([]*record.Instance, error)

	// Update sends the dirty fields of persisted records and marks them clean.
	Update(ctx context.Context, recs ...*record.Instance) error

	// FetchSingle returns the first match, or an error wrapping ErrNotFound.
	FetchSingle(ctx context.Context, q Query) (*record.Instance, error)

	// FetchMany returns every match, possibly none.
	FetchMany(ctx context.Context, q Query) ([]*record.Instance, error)
}

// Condition is an equality filter on one field.
type Condition struct {
	Field string
	Value any
}

// Query selects records of one type.
type Query struct {
	Type  *record.RecordType
	ID    string
	Where []Condition
	Limit int
}

// ByID selects the record of type t with identifier id.
func ByID(t *record.RecordType, id string) Query {
	return Query{Type: t, ID: id, Limit: 1}
}

// Select starts a query over all records of type t.
func Select(t *record.RecordType) Query {
	return Query{Type: t}
}

// Eq adds an equality condition on field.
func (q Query) Eq(field string, value any) Query {
	q.Where = append(append([]Condition(nil), q.Where...), Condition{Field: field, Value: value})
	return q
}

// Take limits the number of results. Zero means no limit.
func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

// normalize validates condition fields and brings condition values into the
// form record.Instance stores them in.
func (q Query) normalize() (Query, error) {
	if q.Type == nil {
		return q, fmt.Errorf("%w: no record type", ErrInvalidQuery)
	}
	conds := make([]Condition, len(q.Where))
	for i, c := range q.Where {
		f, err := q.Type.Lookup(c.Field)
		if err != nil {
			return q, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		v, err := f.Check(q.Type.Name(), c.Value)
		if err != nil {
			return q, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		conds[i] = Condition{Field: c.Field, Value: v}
	}
	q.Where = conds
	return q, nil
}
