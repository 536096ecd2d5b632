package builder

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingRequiredField indicates a required field left without a value
// after defaults, generated values and overrides were applied.
var ErrMissingRequiredField = errors.New("missing required field")

// MissingRequiredFieldError names the type and the unresolved fields. Field
// is the first in declaration order.
type MissingRequiredFieldError struct {
	Type    string
	Field   string
	Missing []string
}

func (e *MissingRequiredFieldError) Error() string {
	if len(e.Missing) > 1 {
		return fmt.Sprintf("%s: %s.{%s}", ErrMissingRequiredField, e.Type, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s: %s.%s", ErrMissingRequiredField, e.Type, e.Field)
}

func (e *MissingRequiredFieldError) Unwrap() error { return ErrMissingRequiredField }
