package linker

import (
	"errors"
	"fmt"
)

var (
	// ErrUnpersistedParent indicates a link to a parent that has no identifier yet.
	ErrUnpersistedParent = errors.New("parent record is not persisted")

	// ErrNotReference indicates the link field is not a reference field.
	ErrNotReference = errors.New("field is not a reference")

	// ErrTypeMismatch indicates the parent is not of the reference's target type.
	ErrTypeMismatch = errors.New("reference type mismatch")
)

// UnpersistedParentError is returned by Link when the parent has no
// identifier. It points at a scenario that links before persisting.
type UnpersistedParentError struct {
	Parent string
	Child  string
	Field  string
}

func (e *UnpersistedParentError) Error() string {
	return fmt.Sprintf("link %s.%s: parent %s is not persisted", e.Child, e.Field, e.Parent)
}

func (e *UnpersistedParentError) Unwrap() error { return ErrUnpersistedParent }
