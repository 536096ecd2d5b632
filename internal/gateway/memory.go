package gateway

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/forgo/crmfixtures/internal/record"
)

// defaultKeyPrefix is used for types registered without a key prefix.
const defaultKeyPrefix = "a00"

// FaultFunc lets tests make the store reject an operation. A non-nil return
// fails the whole batch with a PersistenceError wrapping it.
type FaultFunc func(op string, rec *record.Instance) error

type memoryRow struct {
	typ    *record.RecordType
	values record.Values
}

// Memory is an in-process record store. It enforces the same rules the
// remote store does on insert and update: required fields must be present
// and references must resolve to a persisted record of the expected type.
// Batches are all-or-nothing. Memory is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	rows  map[string]*memoryRow
	order []string
	fault FaultFunc
}

var _ Gateway = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[string]*memoryRow)}
}

// FailWith installs a fault hook; nil removes it.
func (m *Memory) FailWith(fn FaultFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fault = fn
}

// Len returns the number of stored records of the named type.
func (m *Memory) Len(typeName string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.rows {
		if r.typ.Name() == typeName {
			n++
		}
	}
	return n
}

// Persist implements Gateway.
func (m *Memory) Persist(ctx context.Context, recs ...*record.Instance) ([]*record.Instance, error) {
	for _, rec := range recs {
		if rec == nil {
			return nil, fmt.Errorf("%w: nil record", ErrValidation)
		}
		if rec.Persisted() {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyPersisted, rec.Label())
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, &PersistenceError{Op: OpPersist, Cause: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range recs {
		if err := m.check(OpPersist, rec, rec.Values()); err != nil {
			return nil, err
		}
	}

	for _, rec := range recs {
		id := mintID(rec.Type())
		m.rows[id] = &memoryRow{typ: rec.Type(), values: rec.Values()}
		m.order = append(m.order, id)
		rec.MarkPersisted(id)
	}
	return recs, nil
}

// Update implements Gateway.
func (m *Memory) Update(ctx context.Context, recs ...*record.Instance) error {
	for _, rec := range recs {
		if rec == nil {
			return fmt.Errorf("%w: nil record", ErrValidation)
		}
		if !rec.Persisted() {
			return fmt.Errorf("%w: %s", ErrNotPersisted, rec.Label())
		}
	}
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Op: OpUpdate, Cause: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	merged := make([]record.Values, len(recs))
	for i, rec := range recs {
		row, ok := m.rows[rec.ID()]
		if !ok || row.typ.Name() != rec.Type().Name() {
			return &PersistenceError{Op: OpUpdate, Type: rec.Type().Name(), ID: rec.ID(), Cause: ErrNotFound}
		}
		next := maps.Clone(row.values)
		for name, v := range rec.Changes() {
			if v == nil {
				delete(next, name)
			} else {
				next[name] = v
			}
		}
		if err := m.check(OpUpdate, rec, next); err != nil {
			return err
		}
		merged[i] = next
	}

	for i, rec := range recs {
		m.rows[rec.ID()].values = merged[i]
		rec.MarkClean()
	}
	return nil
}

// FetchSingle implements Gateway.
func (m *Memory) FetchSingle(ctx context.Context, q Query) (*record.Instance, error) {
	found, err := m.FetchMany(ctx, q.Take(1))
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, describe(q))
	}
	return found[0], nil
}

// FetchMany implements Gateway. Results are in insertion order.
func (m *Memory) FetchMany(ctx context.Context, q Query) ([]*record.Instance, error) {
	q, err := q.normalize()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &PersistenceError{Op: OpFetch, Type: q.Type.Name(), Cause: err}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.order
	if q.ID != "" {
		ids = []string{q.ID}
	}

	var out []*record.Instance
	for _, id := range ids {
		row, ok := m.rows[id]
		if !ok || row.typ.Name() != q.Type.Name() || !matches(row.values, q.Where) {
			continue
		}
		inst, err := record.Hydrate(row.typ, id, row.values)
		if err != nil {
			return nil, &PersistenceError{Op: OpFetch, Type: q.Type.Name(), ID: id, Cause: err}
		}
		out = append(out, inst)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// check applies store-side validation to the values a record would hold.
// Callers hold m.mu.
func (m *Memory) check(op string, rec *record.Instance, values record.Values) error {
	typ := rec.Type()
	fail := func(cause error) error {
		return &PersistenceError{Op: op, Type: typ.Name(), ID: rec.ID(), Cause: cause}
	}

	for _, f := range typ.Fields() {
		v, ok := values[f.Name]
		if f.Required && !ok {
			return fail(fmt.Errorf("%w: required field %s is empty", ErrValidation, f.Name))
		}
		if !ok || f.Kind != record.KindReference {
			continue
		}
		id, _ := v.(string)
		target, exists := m.rows[id]
		if !exists {
			return fail(fmt.Errorf("%w: %s references missing record %s", ErrValidation, f.Name, id))
		}
		if target.typ.Name() != f.RefType {
			return fail(fmt.Errorf("%w: %s expects %s, got %s", ErrValidation, f.Name, f.RefType, target.typ.Name()))
		}
	}

	if m.fault != nil {
		if err := m.fault(op, rec); err != nil {
			return fail(err)
		}
	}
	return nil
}

// mintID returns a 15-character CRM-style identifier.
func mintID(t *record.RecordType) string {
	prefix := t.KeyPrefix()
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	hex := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return prefix + hex[:15-len(prefix)]
}

func matches(values record.Values, conds []Condition) bool {
	for _, c := range conds {
		if !equalValue(values[c.Field], c.Value) {
			return false
		}
	}
	return true
}

func equalValue(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return a == b
}

func describe(q Query) string {
	if q.Type == nil {
		return "query"
	}
	if q.ID != "" {
		return fmt.Sprintf("%s(%s)", q.Type.Name(), q.ID)
	}
	parts := make([]string, len(q.Where))
	for i, c := range q.Where {
		parts[i] = fmt.Sprintf("%s=%v", c.Field, c.Value)
	}
	return fmt.Sprintf("%s where %s", q.Type.Name(), strings.Join(parts, " and "))
}
