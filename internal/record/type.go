package record

import "fmt"

// KeyPrefixLen is the length of a record id prefix, e.g. "001" for Account.
const KeyPrefixLen = 3

// RecordType is a named, immutable schema.
type RecordType struct {
	name      string
	keyPrefix string
	fields    []FieldDefinition
	byName    map[string]int
}

// TypeOption customizes a RecordType at construction.
type TypeOption func(*RecordType)

// WithKeyPrefix sets the id prefix the store uses for records of this type.
func WithKeyPrefix(prefix string) TypeOption {
	return func(t *RecordType) {
		t.keyPrefix = prefix
	}
}

// NewType validates the field definitions and returns the type.
func NewType(name string, fields []FieldDefinition, opts ...TypeOption) (*RecordType, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidType)
	}

	t := &RecordType{
		name:   name,
		fields: make([]FieldDefinition, 0, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.keyPrefix != "" && !validKeyPrefix(t.keyPrefix) {
		return nil, fmt.Errorf("%w: %s key prefix %q must be %d letters or digits", ErrInvalidType, name, t.keyPrefix, KeyPrefixLen)
	}

	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: %s has a field without a name", ErrInvalidType, name)
		}
		if _, dup := t.byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateField, name, f.Name)
		}
		f.Options = append([]string(nil), f.Options...)
		t.byName[f.Name] = len(t.fields)
		t.fields = append(t.fields, f)
	}

	for _, f := range t.fields {
		if err := t.validateField(f); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func validKeyPrefix(p string) bool {
	if len(p) != KeyPrefixLen {
		return false
	}
	for _, c := range p {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

func (t *RecordType) validateField(f FieldDefinition) error {
	switch {
	case f.Kind == KindReference && f.RefType == "":
		return fmt.Errorf("%w: %s.%s is a reference without a target type", ErrInvalidType, t.name, f.Name)
	case f.Kind == KindEnum && len(f.Options) == 0:
		return fmt.Errorf("%w: %s.%s is an enum without options", ErrInvalidType, t.name, f.Name)
	}

	switch f.Policy {
	case PolicyFixed:
		if f.Default == nil {
			return fmt.Errorf("%w: %s.%s has a fixed policy without a default", ErrInvalidType, t.name, f.Name)
		}
		if _, err := f.Check(t.name, f.Default); err != nil {
			return err
		}
	case PolicyGenerated:
		if f.Kind != KindString {
			return fmt.Errorf("%w: %s.%s generated values must be strings", ErrInvalidType, t.name, f.Name)
		}
	case PolicyRelated:
		if f.Kind == KindReference {
			return nil
		}
		if f.Derive == nil {
			return fmt.Errorf("%w: %s.%s is related but has no derivation", ErrInvalidType, t.name, f.Name)
		}
		via, ok := t.Field(f.Derive.Via)
		if !ok || via.Kind != KindReference {
			return fmt.Errorf("%w: %s.%s derives through %q which is not a reference", ErrInvalidType, t.name, f.Name, f.Derive.Via)
		}
	}
	return nil
}

// Name returns the type name.
func (t *RecordType) Name() string { return t.name }

// KeyPrefix returns the id prefix, or "" if none was configured.
func (t *RecordType) KeyPrefix() string { return t.keyPrefix }

// Fields returns the field definitions in declaration order.
func (t *RecordType) Fields() []FieldDefinition {
	out := make([]FieldDefinition, len(t.fields))
	copy(out, t.fields)
	return out
}

// Field looks a field up by name.
func (t *RecordType) Field(name string) (FieldDefinition, bool) {
	i, ok := t.byName[name]
	if !ok {
		return FieldDefinition{}, false
	}
	return t.fields[i], true
}

// Lookup is Field returning an UnknownFieldError for undefined names.
func (t *RecordType) Lookup(name string) (FieldDefinition, error) {
	f, ok := t.Field(name)
	if !ok {
		return FieldDefinition{}, &UnknownFieldError{Type: t.name, Field: name}
	}
	return f, nil
}

// References returns the reference fields.
func (t *RecordType) References() []FieldDefinition {
	var refs []FieldDefinition
	for _, f := range t.fields {
		if f.Kind == KindReference {
			refs = append(refs, f)
		}
	}
	return refs
}

// DerivedVia returns the fields copied from the record referenced by refField.
func (t *RecordType) DerivedVia(refField string) []FieldDefinition {
	var out []FieldDefinition
	for _, f := range t.fields {
		if f.Policy == PolicyRelated && f.Derive != nil && f.Derive.Via == refField {
			out = append(out, f)
		}
	}
	return out
}

func (t *RecordType) String() string { return t.name }
