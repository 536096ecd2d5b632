package record

import (
	"fmt"
	"reflect"
	"slices"
	"time"
)

// FieldKind is the semantic type of a field.
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
	KindBool
	KindDate
	KindReference
	KindEnum
)

var kindNames = map[FieldKind]string{
	KindString:    "string",
	KindNumber:    "number",
	KindBool:      "bool",
	KindDate:      "date",
	KindReference: "reference",
	KindEnum:      "enum",
}

func (k FieldKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a kind name back to its FieldKind.
func ParseKind(s string) (FieldKind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// DefaultPolicy selects how the builder fills a field the caller left unset.
type DefaultPolicy int

const (
	PolicyNone DefaultPolicy = iota
	PolicyFixed
	PolicyGenerated
	PolicyRelated
)

func (p DefaultPolicy) String() string {
	switch p {
	case PolicyNone:
		return "none"
	case PolicyFixed:
		return "fixed"
	case PolicyGenerated:
		return "generated"
	case PolicyRelated:
		return "related"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// Format selects the generator used for PolicyGenerated fields.
type Format int

const (
	// FormatToken is Prefix followed by a random token.
	FormatToken Format = iota
	// FormatEmail is a unique address; Prefix, if set, becomes the local part stem.
	FormatEmail
	// FormatPhone is a unique number; Prefix holds the country format (US, GB, DE, AU).
	FormatPhone
	// FormatFirstName, FormatStreet and FormatCity are realistic but not unique.
	FormatFirstName
	FormatStreet
	FormatCity
	// FormatCompany is a realistic company name with a unique suffix.
	FormatCompany
)

// Derivation copies Source from the record referenced through Via.
type Derivation struct {
	Via    string
	Source string
}

// FieldDefinition describes one field of a RecordType.
type FieldDefinition struct {
	Name     string
	Kind     FieldKind
	Required bool
	Policy   DefaultPolicy

	// Default is the constant used by PolicyFixed.
	Default any

	// Format and Prefix drive PolicyGenerated.
	Format Format
	Prefix string

	// RefType names the target type of a KindReference field.
	RefType string

	// Options is the closed value set of a KindEnum field.
	Options []string

	// Derive is set for value fields with PolicyRelated.
	Derive *Derivation
}

// HasDefault reports whether the builder can satisfy the field without an override.
func (f FieldDefinition) HasDefault() bool {
	return f.Policy != PolicyNone
}

// Check validates v against the field and returns its normalised form.
// A nil value is always accepted and means "unset".
func (f FieldDefinition) Check(typeName string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	invalid := func(reason string) error {
		return &InvalidValueError{Type: typeName, Field: f.Name, Value: v, Reason: reason}
	}

	switch f.Kind {
	case KindString, KindReference, KindEnum:
		s, ok := asString(v)
		if !ok {
			return nil, invalid("expected string")
		}
		if f.Kind == KindReference && s == "" {
			return nil, invalid("empty reference")
		}
		if f.Kind == KindEnum && !slices.Contains(f.Options, s) {
			return nil, invalid(fmt.Sprintf("not one of %v", f.Options))
		}
		return s, nil
	case KindNumber:
		n, ok := asFloat(v)
		if !ok {
			return nil, invalid("expected number")
		}
		return n, nil
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, invalid("expected bool")
		}
		return b, nil
	case KindDate:
		t, ok := v.(time.Time)
		if !ok {
			return nil, invalid("expected time.Time")
		}
		return t.UTC().Round(0), nil
	}
	return nil, invalid("unsupported kind " + f.Kind.String())
}

func asString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func asFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
