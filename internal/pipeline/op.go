package pipeline

import (
	"github.com/koskimas/fondant/internal/component"
	"github.com/koskimas/fondant/internal/schema"
)

// FieldMapping connects a field of a component to a column of the dataset.
// An empty Column means the column has the field's name. Type is required
// when the mapping declares a field of a generic produces.
type FieldMapping struct {
	Field  string
	Column string
	Type   *schema.Type
}

func (m FieldMapping) column() string {
	if m.Column == "" {
		return m.Field
	}

	return m.Column
}

// Op is one step of a pipeline: a component spec and the arguments and field
// mappings it's run with.
type Op struct {
	// Name defaults to the name of the spec.
	Name      string
	Spec      *component.Spec
	Arguments map[string]any
	Consumes  []FieldMapping
	Produces  []FieldMapping
}

func (o *Op) name() string {
	if o.Name != "" {
		return o.Name
	}

	if o.Spec != nil {
		return o.Spec.Name()
	}

	return ""
}

func findMapping(mappings []FieldMapping, field string) (FieldMapping, bool) {
	for _, m := range mappings {
		if m.Field == field {
			return m, true
		}
	}

	return FieldMapping{}, false
}

// ResolvedOp is an op whose spec is no longer generic. Its consumes and
// produces list every field with its dataset column and type.
type ResolvedOp struct {
	Name      string
	Spec      *component.Spec
	Arguments map[string]any
	Consumes  []FieldMapping
	Produces  []FieldMapping
}

// Columns returns the dataset columns of one side of the op.
func (r *ResolvedOp) Columns(section component.Section) *schema.Fields {
	mappings := r.Consumes
	if section == component.SectionProduces {
		mappings = r.Produces
	}

	fields := schema.MustFields()
	for _, m := range mappings {
		fields.Set(schema.NewField(m.column(), *m.Type))
	}

	return fields
}

// Compiled is a finalized pipeline.
type Compiled struct {
	Name        string
	Description string
	BasePath    string
	Ops         []*ResolvedOp

	// Schema is the dataset schema after the last op.
	Schema *schema.Fields
}

// Op returns the resolved op called `name` or nil.
func (c *Compiled) Op(name string) *ResolvedOp {
	for _, op := range c.Ops {
		if op.Name == name {
			return op
		}
	}

	return nil
}
