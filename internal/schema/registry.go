// Package schema holds the registry of record types known to the fixture layer.
//
// A Registry is populated once at process start, from the static CRM catalog
// and optionally a YAML overlay, then frozen. After Freeze it is read-only
// and may be shared by parallel test workers without locking.
//
//	reg := schema.NewRegistry()
//	reg.Register("Account", fields, record.WithKeyPrefix("001"))
//	reg.Freeze()
//	acct, err := reg.Type("Account")
package schema

import (
	"fmt"
	"slices"

	"github.com/forgo/crmfixtures/internal/record"
)

// Registry maps type names to record types.
type Registry struct {
	types  map[string]*record.RecordType
	frozen bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*record.RecordType)}
}

// Register validates and adds a record type.
func (r *Registry) Register(name string, fields []record.FieldDefinition, opts ...record.TypeOption) (*record.RecordType, error) {
	if r.frozen {
		return nil, fmt.Errorf("%w: cannot register %q", ErrFrozen, name)
	}
	if _, exists := r.types[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateType, name)
	}

	t, err := record.NewType(name, fields, opts...)
	if err != nil {
		return nil, err
	}
	r.types[name] = t
	return t, nil
}

// Freeze makes the registry read-only and checks that every reference
// points at a registered type.
func (r *Registry) Freeze() error {
	for _, name := range r.Names() {
		for _, f := range r.types[name].References() {
			if _, ok := r.types[f.RefType]; !ok {
				return fmt.Errorf("%s.%s: %w", name, f.Name, &UnknownTypeError{Name: f.RefType})
			}
		}
	}
	r.frozen = true
	return nil
}

// Frozen reports whether Freeze succeeded.
func (r *Registry) Frozen() bool { return r.frozen }

// Type returns the named record type.
func (r *Registry) Type(name string) (*record.RecordType, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}
	return t, nil
}

// Names returns the registered type names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
