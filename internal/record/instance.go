package record

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Values maps field names to values.
type Values map[string]any

// Instance is a record value tagged with its type. It is not safe for
// concurrent mutation; each scenario owns its records.
type Instance struct {
	typ    *RecordType
	id     string
	values Values
	dirty  map[string]struct{}
}

// New returns an empty, unpersisted instance of t.
func New(t *RecordType) *Instance {
	return &Instance{
		typ:    t,
		values: make(Values),
		dirty:  make(map[string]struct{}),
	}
}

// Hydrate rebuilds a persisted instance from stored values. Fields the type
// does not define are dropped so store-side metadata does not leak in.
func Hydrate(t *RecordType, id string, stored map[string]any) (*Instance, error) {
	inst := New(t)
	for name, v := range stored {
		f, ok := t.Field(name)
		if !ok {
			continue
		}
		nv, err := f.Check(t.name, v)
		if err != nil {
			return nil, err
		}
		if nv != nil {
			inst.values[name] = nv
		}
	}
	inst.id = id
	return inst, nil
}

// Type returns the record type.
func (r *Instance) Type() *RecordType { return r.typ }

// ID returns the store-assigned identifier, or "" before persistence.
func (r *Instance) ID() string { return r.id }

// Persisted reports whether the store has assigned an identifier.
func (r *Instance) Persisted() bool { return r.id != "" }

// Get returns the value of a field and whether it is set.
func (r *Instance) Get(field string) (any, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Has reports whether field holds a value.
func (r *Instance) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// String returns a string-valued field, or "" when unset.
func (r *Instance) String(field string) string {
	s, _ := r.values[field].(string)
	return s
}

// Bool returns a bool-valued field, or false when unset.
func (r *Instance) Bool(field string) bool {
	b, _ := r.values[field].(bool)
	return b
}

// Number returns a number-valued field, or 0 when unset.
func (r *Instance) Number(field string) float64 {
	n, _ := r.values[field].(float64)
	return n
}

// Time returns a date-valued field, or the zero time when unset.
func (r *Instance) Time(field string) time.Time {
	t, _ := r.values[field].(time.Time)
	return t
}

// Set validates and stores a value. A nil value unsets the field.
func (r *Instance) Set(field string, v any) error {
	f, err := r.typ.Lookup(field)
	if err != nil {
		return err
	}
	nv, err := f.Check(r.typ.name, v)
	if err != nil {
		return err
	}
	if nv == nil {
		delete(r.values, field)
	} else {
		r.values[field] = nv
	}
	if r.Persisted() {
		r.dirty[field] = struct{}{}
	}
	return nil
}

// Values returns a copy of the field values.
func (r *Instance) Values() Values {
	return maps.Clone(r.values)
}

// Dirty returns the fields changed since the last persist or update, sorted.
func (r *Instance) Dirty() []string {
	return slices.Sorted(maps.Keys(r.dirty))
}

// Changes returns the dirty fields with their current values. Unset fields
// map to nil.
func (r *Instance) Changes() Values {
	out := make(Values, len(r.dirty))
	for name := range r.dirty {
		out[name] = r.values[name]
	}
	return out
}

// MarkPersisted records the identifier assigned by the store.
func (r *Instance) MarkPersisted(id string) {
	r.id = id
	r.MarkClean()
}

// MarkClean clears the dirty set after a successful update.
func (r *Instance) MarkClean() {
	clear(r.dirty)
}

// Clone returns an independent copy, including identifier and dirty set.
func (r *Instance) Clone() *Instance {
	return &Instance{
		typ:    r.typ,
		id:     r.id,
		values: maps.Clone(r.values),
		dirty:  maps.Clone(r.dirty),
	}
}

// Label identifies the record in logs and errors.
func (r *Instance) Label() string {
	if r.id == "" {
		return fmt.Sprintf("%s(unpersisted)", r.typ.name)
	}
	return fmt.Sprintf("%s(%s)", r.typ.name, r.id)
}
