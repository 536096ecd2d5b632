// Package builder constructs unpersisted records with defaults applied.
//
// Values are resolved in three passes, later passes winning:
//
//  1. fixed defaults from the field definitions
//  2. generated values from the unique-value generator
//  3. caller overrides
//
// A required field still empty afterwards fails the build with a
// MissingRequiredFieldError, unless its policy is PolicyRelated: those are
// filled by the linker once the parent record exists.
//
// The builder never touches the store.
package builder

import (
	"github.com/forgo/crmfixtures/internal/record"
	"github.com/forgo/crmfixtures/internal/schema"
	"github.com/forgo/crmfixtures/internal/uniq"
)

// Generator supplies values for PolicyGenerated fields.
type Generator interface {
	String(prefix string) string
	Email(stem string) string
	Phone(format uniq.PhoneFormat) string
	FirstName() string
	Street() string
	City() string
	Company() string
}

// Builder builds records for the types in a registry.
type Builder struct {
	registry *schema.Registry
	gen      Generator
}

// Option customizes a Builder.
type Option func(*Builder)

// WithGenerator replaces the random generator, typically with a
// deterministic one in tests.
func WithGenerator(g Generator) Option {
	return func(b *Builder) {
		b.gen = g
	}
}

// New creates a builder over reg.
func New(reg *schema.Registry, opts ...Option) *Builder {
	b := &Builder{
		registry: reg,
		gen:      uniq.Generator{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Registry returns the registry the builder resolves type names against.
func (b *Builder) Registry() *schema.Registry { return b.registry }

// BuildNamed resolves typeName in the registry and builds a record of it.
func (b *Builder) BuildNamed(typeName string, overrides record.Values) (*record.Instance, error) {
	t, err := b.registry.Type(typeName)
	if err != nil {
		return nil, err
	}
	return b.Build(t, overrides)
}

// Build returns a new unpersisted record of type t.
func (b *Builder) Build(t *record.RecordType, overrides record.Values) (*record.Instance, error) {
	for name := range overrides {
		if _, err := t.Lookup(name); err != nil {
			return nil, err
		}
	}

	inst := record.New(t)
	fields := t.Fields()

	for _, f := range fields {
		if f.Policy != record.PolicyFixed {
			continue
		}
		if err := inst.Set(f.Name, f.Default); err != nil {
			return nil, err
		}
	}

	for _, f := range fields {
		if f.Policy != record.PolicyGenerated {
			continue
		}
		if _, overridden := overrides[f.Name]; overridden {
			continue
		}
		if err := inst.Set(f.Name, b.generate(f)); err != nil {
			return nil, err
		}
	}

	for _, f := range fields {
		v, ok := overrides[f.Name]
		if !ok {
			continue
		}
		if err := inst.Set(f.Name, v); err != nil {
			return nil, err
		}
	}

	var missing []string
	for _, f := range fields {
		if f.Required && f.Policy != record.PolicyRelated && !inst.Has(f.Name) {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingRequiredFieldError{Type: t.Name(), Field: missing[0], Missing: missing}
	}
	return inst, nil
}

func (b *Builder) generate(f record.FieldDefinition) string {
	switch f.Format {
	case record.FormatEmail:
		return b.gen.Email(f.Prefix)
	case record.FormatPhone:
		return b.gen.Phone(uniq.PhoneFormat(f.Prefix))
	case record.FormatFirstName:
		return b.gen.FirstName()
	case record.FormatStreet:
		return b.gen.Street()
	case record.FormatCity:
		return b.gen.City()
	case record.FormatCompany:
		return b.gen.Company()
	default:
		return b.gen.String(f.Prefix)
	}
}
