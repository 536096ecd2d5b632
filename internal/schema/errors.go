package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownType indicates a lookup of a type that was never registered.
	ErrUnknownType = errors.New("unknown record type")

	// ErrDuplicateType indicates a second registration under the same name.
	ErrDuplicateType = errors.New("record type already registered")

	// ErrFrozen indicates a registration after the registry was frozen.
	ErrFrozen = errors.New("schema registry is frozen")
)

// UnknownTypeError names the record type that could not be found.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownType, e.Name)
}

func (e *UnknownTypeError) Unwrap() error { return ErrUnknownType }
