package schema

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTypeSchema is matched by every error returned for a type tag or
// type document that can't be interpreted.
var ErrInvalidTypeSchema = errors.New("invalid type schema")

// TypeSchemaError describes a malformed or unknown type document. Path holds
// the keys leading from the root of the type document to the offending node.
type TypeSchemaError struct {
	Path    []string
	Line    int
	Message string
}

func (e *TypeSchemaError) Error() string {
	var s strings.Builder
	s.WriteString("invalid type schema")

	if len(e.Path) > 0 {
		s.WriteString(` at "`)
		s.WriteString(strings.Join(e.Path, "."))
		s.WriteString(`"`)
	}

	if e.Line > 0 {
		fmt.Fprintf(&s, " (line %d)", e.Line)
	}

	s.WriteString(": ")
	s.WriteString(e.Message)
	return s.String()
}

func (e *TypeSchemaError) Is(target error) bool {
	return target == ErrInvalidTypeSchema
}

func typeErrorf(node *yaml.Node, path []string, format string, args ...any) *TypeSchemaError {
	err := &TypeSchemaError{
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	}

	if node != nil {
		err.Line = node.Line
	}

	return err
}
