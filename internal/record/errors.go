package record

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidType indicates a malformed record type definition.
	ErrInvalidType = errors.New("invalid record type")

	// ErrDuplicateField indicates two fields with the same name in one type.
	ErrDuplicateField = errors.New("duplicate field")

	// ErrUnknownField indicates a field name the record type does not define.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidValue indicates a value that does not fit the field kind or options.
	ErrInvalidValue = errors.New("invalid field value")
)

// UnknownFieldError names the type and field of a lookup that failed.
type UnknownFieldError struct {
	Type  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s: %s.%s", ErrUnknownField, e.Type, e.Field)
}

func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }

// InvalidValueError reports a value rejected by a field definition.
type InvalidValueError struct {
	Type   string
	Field  string
	Value  any
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: %s.%s = %v (%s)", ErrInvalidValue, e.Type, e.Field, e.Value, e.Reason)
}

func (e *InvalidValueError) Unwrap() error { return ErrInvalidValue }
