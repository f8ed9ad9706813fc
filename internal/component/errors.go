package component

import (
	"errors"
	"strings"
)

var (
	// ErrResourceNotFound is returned when a named spec resource has no data.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrInvalidComponentSpec is matched by every *ValidationError.
	ErrInvalidComponentSpec = errors.New("invalid component spec")

	// ErrUnresolvedGenericSpec is returned when a spec that still declares a
	// generic consumes or produces is used where a resolved spec is required.
	ErrUnresolvedGenericSpec = errors.New("unresolved generic component spec")

	// ErrNotGeneric is returned when a fixed consumes or produces is resolved.
	ErrNotGeneric = errors.New("section is not generic")
)

// ValidationError lists every rule a component document violates.
type ValidationError struct {
	// Name is the component name if the document declared one.
	Name   string
	Errors []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}

	var s strings.Builder
	s.WriteString("invalid component spec")

	if e.Name != "" {
		s.WriteString(` "`)
		s.WriteString(e.Name)
		s.WriteString(`"`)
	}

	s.WriteString(":\n  - ")
	s.WriteString(strings.Join(msgs, "\n  - "))
	return s.String()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidComponentSpec
}

func (e *ValidationError) Unwrap() []error {
	return e.Errors
}
