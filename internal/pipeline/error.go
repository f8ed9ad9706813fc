package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/koskimas/fondant/internal/component"
)

// ErrInvalidPipelineDefinition is matched by every *DefinitionError.
var ErrInvalidPipelineDefinition = errors.New("invalid pipeline definition")

// DefinitionError is a resolution or propagation failure. Op, Section and
// Field locate the failure and are empty when they don't apply.
type DefinitionError struct {
	Op      string
	Section component.Section
	Field   string
	Message string
}

func (e *DefinitionError) Error() string {
	var path []string

	if e.Op != "" {
		path = append(path, fmt.Sprintf(`component "%s"`, e.Op))
	}

	if e.Section != "" && e.Field != "" {
		path = append(path, fmt.Sprintf(`%s field "%s"`, e.Section, e.Field))
	} else if e.Section != "" {
		path = append(path, string(e.Section))
	}

	path = append(path, e.Message)
	return fmt.Sprintf("%s: %s", ErrInvalidPipelineDefinition, strings.Join(path, ": "))
}

func (e *DefinitionError) Is(target error) bool {
	return target == ErrInvalidPipelineDefinition
}

func definitionErrorf(op string, section component.Section, field string, format string, args ...any) *DefinitionError {
	return &DefinitionError{
		Op:      op,
		Section: section,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
