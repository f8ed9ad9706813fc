package pipeline

import (
	"github.com/koskimas/fondant/internal/component"
	"github.com/koskimas/fondant/internal/ptr"
	"github.com/koskimas/fondant/internal/schema"
	"github.com/rs/zerolog"
)

var previousIndexType = schema.MustOf("string")

// resolver holds the running dataset schema while a pipeline is walked.
type resolver struct {
	running  *schema.Fields
	previous *ResolvedOp
	logger   zerolog.Logger
}

func (r *resolver) resolve(name string, op *Op) (*ResolvedOp, error) {
	args, err := resolveArguments(name, op)
	if err != nil {
		return nil, err
	}

	consumes, err := r.resolveConsumes(name, op)
	if err != nil {
		return nil, err
	}

	if err := checkUniqueColumns(name, component.SectionConsumes, consumes); err != nil {
		return nil, err
	}

	produces, err := r.resolveProduces(name, op)
	if err != nil {
		return nil, err
	}

	if err := checkUniqueColumns(name, component.SectionProduces, produces); err != nil {
		return nil, err
	}

	spec, err := resolveSpec(name, op.Spec, consumes, produces)
	if err != nil {
		return nil, err
	}

	return &ResolvedOp{
		Name:      name,
		Spec:      spec,
		Arguments: args,
		Consumes:  consumes,
		Produces:  produces,
	}, nil
}

// apply adds the op's produced columns to the running schema. Columns that
// already exist are overwritten. Consumed columns from outside the pipeline
// become part of the schema too.
func (r *resolver) apply(op *ResolvedOp) {
	for _, m := range op.Consumes {
		if !r.running.Has(m.column()) {
			r.running.Set(schema.NewField(m.column(), *m.Type))
		}
	}

	for _, m := range op.Produces {
		r.running.Set(schema.NewField(m.column(), *m.Type))
	}

	if idx := op.Spec.PreviousIndex(); idx != "" {
		r.running.Set(schema.NewField(idx, previousIndexType))
	}

	r.previous = op
}

func (r *resolver) resolveConsumes(name string, op *Op) ([]FieldMapping, error) {
	declared := op.Spec.FieldSet(component.SectionConsumes)
	fields := declared.Fields()

	if err := checkMappedFields(name, component.SectionConsumes, declared, op.Consumes); err != nil {
		return nil, err
	}

	out := make([]FieldMapping, 0, fields.Len())

	for _, f := range fields.List() {
		m, _ := findMapping(op.Consumes, f.Name)
		column := m.column()
		if column == "" {
			column = f.Name
		}

		if err := r.checkColumn(name, f.Name, column, f.Type); err != nil {
			return nil, err
		}

		out = append(out, FieldMapping{Field: f.Name, Column: column, Type: ptr.V(f.Type)})
	}

	if !declared.IsGeneric() {
		return out, nil
	}

	switch {
	case len(op.Consumes) > 0:
		for _, m := range op.Consumes {
			if fields.Has(m.Field) {
				continue
			}

			existing := r.running.Get(m.column())

			switch {
			case existing == nil && m.Type == nil:
				return nil, definitionErrorf(name, component.SectionConsumes, m.Field, `column "%s" doesn't exist in the dataset and the mapping has no type`, m.column())
			case existing == nil:
				// The column comes from outside the pipeline, for example
				// a dataset that already exists under the base path.
				out = append(out, FieldMapping{Field: m.Field, Column: m.column(), Type: ptr.V(*m.Type)})
				continue
			case m.Type != nil && !m.Type.Equal(existing.Type):
				return nil, definitionErrorf(name, component.SectionConsumes, m.Field, `type %s conflicts with the type %s of column "%s"`, *m.Type, existing.Type, m.column())
			}

			out = append(out, FieldMapping{Field: m.Field, Column: m.column(), Type: ptr.V(existing.Type)})
		}

		r.logger.Debug().Str("component", name).Msg("resolved generic consumes from the explicit mapping")
	case r.previous != nil:
		for _, m := range r.previous.Produces {
			if fields.Has(m.column()) {
				continue
			}

			if err := r.checkColumn(name, m.column(), m.column(), *m.Type); err != nil {
				return nil, err
			}

			out = append(out, FieldMapping{Field: m.column(), Column: m.column(), Type: ptr.V(*m.Type)})
		}

		r.logger.Debug().
			Str("component", name).
			Str("previous", r.previous.Name).
			Msg("resolved generic consumes from the previous component")
	default:
		return nil, definitionErrorf(name, component.SectionConsumes, "", "generic consumes has no previous component to infer the fields from and no explicit mapping")
	}

	return out, nil
}

func (r *resolver) resolveProduces(name string, op *Op) ([]FieldMapping, error) {
	declared := op.Spec.FieldSet(component.SectionProduces)
	fields := declared.Fields()

	if err := checkMappedFields(name, component.SectionProduces, declared, op.Produces); err != nil {
		return nil, err
	}

	out := make([]FieldMapping, 0, fields.Len())

	for _, f := range fields.List() {
		m, _ := findMapping(op.Produces, f.Name)
		column := m.column()
		if column == "" {
			column = f.Name
		}

		out = append(out, FieldMapping{Field: f.Name, Column: column, Type: ptr.V(f.Type)})
	}

	if !declared.IsGeneric() {
		return out, nil
	}

	if len(op.Produces) == 0 {
		return nil, definitionErrorf(name, component.SectionProduces, "", "generic produces requires an explicit mapping")
	}

	for _, m := range op.Produces {
		if fields.Has(m.Field) {
			continue
		}

		if m.Type == nil {
			return nil, definitionErrorf(name, component.SectionProduces, m.Field, "a type is required to resolve a generic produces")
		}

		if existing := r.running.Get(m.column()); existing != nil && !existing.Type.Equal(*m.Type) {
			return nil, definitionErrorf(name, component.SectionProduces, m.Field, `type %s conflicts with the type %s of column "%s"`, *m.Type, existing.Type, m.column())
		}

		out = append(out, FieldMapping{Field: m.Field, Column: m.column(), Type: ptr.V(*m.Type)})
	}

	r.logger.Debug().Str("component", name).Msg("resolved generic produces from the explicit mapping")
	return out, nil
}

// checkColumn checks that `column` exists in the running schema with type `t`.
func (r *resolver) checkColumn(name, field, column string, t schema.Type) error {
	existing := r.running.Get(column)
	if existing == nil {
		return definitionErrorf(name, component.SectionConsumes, field, `column "%s" doesn't exist in the dataset`, column)
	}

	if !existing.Type.Equal(t) {
		return definitionErrorf(name, component.SectionConsumes, field, `expected type %s but column "%s" has type %s`, t, column, existing.Type)
	}

	return nil
}

// checkMappedFields checks that mappings of a fixed section only name
// declared fields and don't redeclare their types.
func checkMappedFields(name string, section component.Section, declared component.FieldSet, mappings []FieldMapping) error {
	fields := declared.Fields()
	seen := make(map[string]bool, len(mappings))

	for _, m := range mappings {
		if m.Field == "" {
			return definitionErrorf(name, section, "", "mapping without a field name")
		}

		if seen[m.Field] {
			return definitionErrorf(name, section, m.Field, "mapped more than once")
		}

		seen[m.Field] = true
		f := fields.Get(m.Field)

		if f == nil && !declared.IsGeneric() {
			return definitionErrorf(name, section, m.Field, "not declared by the component")
		}

		if f != nil && m.Type != nil && !m.Type.Equal(f.Type) {
			return definitionErrorf(name, section, m.Field, "mapped type %s differs from the declared type %s", *m.Type, f.Type)
		}
	}

	return nil
}

// checkUniqueColumns checks that no two fields of one section map to the
// same dataset column.
func checkUniqueColumns(name string, section component.Section, mappings []FieldMapping) error {
	fieldsByColumn := make(map[string]string, len(mappings))

	for _, m := range mappings {
		if field, ok := fieldsByColumn[m.column()]; ok {
			return definitionErrorf(name, section, m.Field, `column "%s" is already mapped by field "%s"`, m.column(), field)
		}

		fieldsByColumn[m.column()] = m.Field
	}

	return nil
}

// resolveSpec replaces the generic sections of `spec` with the resolved
// fields. Fields are named after the component's fields, not the columns.
func resolveSpec(name string, spec *component.Spec, consumes, produces []FieldMapping) (*component.Spec, error) {
	var resolvedConsumes, resolvedProduces *schema.Fields

	if spec.IsGeneric(component.SectionConsumes) {
		resolvedConsumes = mappingFields(consumes)
	}

	if spec.IsGeneric(component.SectionProduces) {
		resolvedProduces = mappingFields(produces)
	}

	if resolvedConsumes == nil && resolvedProduces == nil {
		return spec, nil
	}

	resolved, err := spec.Resolve(resolvedConsumes, resolvedProduces)
	if err != nil {
		return nil, definitionErrorf(name, "", "", "%s", err)
	}

	return resolved, nil
}

func mappingFields(mappings []FieldMapping) *schema.Fields {
	fields := schema.MustFields()
	for _, m := range mappings {
		fields.Set(schema.NewField(m.Field, *m.Type))
	}

	return fields
}
