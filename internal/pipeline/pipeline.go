// Package pipeline resolves generic component specs and propagates the
// dataset schema through an ordered chain of components.
package pipeline

import (
	"github.com/koskimas/fondant/internal/kubeflow"
	"github.com/koskimas/fondant/internal/schema"
	"github.com/rs/zerolog"
)

type Pipeline struct {
	Name        string
	Description string
	BasePath    string

	ops    []*Op
	logger zerolog.Logger
}

func New(name string, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		Name:   name,
		logger: logger.With().Str("pipeline", name).Logger(),
	}
}

// Add appends an op to the pipeline. Ops are only checked by Finalize, so a
// pipeline can be built in any state.
func (p *Pipeline) Add(op Op) *Pipeline {
	p.ops = append(p.ops, &op)
	return p
}

// Ops returns the ops in the order they were added.
func (p *Pipeline) Ops() []Op {
	out := make([]Op, len(p.ops))
	for i, op := range p.ops {
		out[i] = *op
	}

	return out
}

// Finalize resolves every op of the pipeline in order and returns the
// resolved pipeline. Errors match ErrInvalidPipelineDefinition.
func (p *Pipeline) Finalize() (*Compiled, error) {
	if p.Name == "" {
		return nil, definitionErrorf("", "", "", "pipeline name is required")
	}

	if len(p.ops) == 0 {
		return nil, definitionErrorf("", "", "", `pipeline "%s" has no components`, p.Name)
	}

	compiled := &Compiled{
		Name:        p.Name,
		Description: p.Description,
		BasePath:    p.BasePath,
		Ops:         make([]*ResolvedOp, 0, len(p.ops)),
	}

	r := &resolver{
		running: schema.MustFields(),
		logger:  p.logger,
	}

	seen := make(map[string]bool, len(p.ops))
	fileNames := make(map[string]string, len(p.ops))

	for _, op := range p.ops {
		name := op.name()

		if op.Spec == nil {
			return nil, definitionErrorf(name, "", "", "component spec is required")
		}

		if name == "" {
			return nil, definitionErrorf("", "", "", "component name is required")
		}

		if seen[name] {
			return nil, definitionErrorf(name, "", "", "duplicate component name")
		}

		seen[name] = true

		// Output files are named after the sanitized names.
		fileName := kubeflow.SanitizeName(name)
		if fileName == "" {
			return nil, definitionErrorf(name, "", "", "component name has no letters or digits")
		}

		if other, ok := fileNames[fileName]; ok {
			return nil, definitionErrorf(name, "", "", `component name collides with "%s"`, other)
		}

		fileNames[fileName] = name

		resolved, err := r.resolve(name, op)
		if err != nil {
			return nil, err
		}

		r.apply(resolved)
		compiled.Ops = append(compiled.Ops, resolved)
	}

	compiled.Schema = r.running.Clone()

	p.logger.Debug().
		Int("components", len(compiled.Ops)).
		Strs("columns", compiled.Schema.Names()).
		Msg("pipeline finalized")

	return compiled, nil
}

// resolveArguments checks the op's arguments against the spec and returns
// them merged with the declared defaults.
func resolveArguments(name string, op *Op) (map[string]any, error) {
	out := make(map[string]any)

	for argName, value := range op.Arguments {
		arg := op.Spec.Arg(argName)
		if arg == nil {
			return nil, definitionErrorf(name, "", "", `unknown argument "%s"`, argName)
		}

		if !arg.Type.Accepts(value) {
			return nil, definitionErrorf(name, "", "", `argument "%s": %v is not a valid %s`, argName, value, arg.Type)
		}

		out[argName] = value
	}

	for _, arg := range op.Spec.Args() {
		if _, ok := out[arg.Name]; ok {
			continue
		}

		if !arg.HasDefault {
			return nil, definitionErrorf(name, "", "", `missing required argument "%s"`, arg.Name)
		}

		out[arg.Name] = arg.Default
	}

	return out, nil
}
