package schema

import (
	"fmt"
	"slices"
)

// Field is a named, typed column of a dataset.
type Field struct {
	Name string
	Type Type
}

func NewField(name string, t Type) *Field {
	return &Field{
		Name: name,
		Type: t.Clone(),
	}
}

func (f *Field) Clone() *Field {
	return &Field{
		Name: f.Name,
		Type: f.Type.Clone(),
	}
}

func (f *Field) Equal(o *Field) bool {
	return f.Name == o.Name && f.Type.Equal(o.Type)
}

func (f *Field) writeString(s *stringBuilder) {
	s.WriteString(f.Name)
	s.WriteString(" ")
	s.WriteString(f.Type.String())
}

func (f *Field) String() string {
	var s stringBuilder
	f.writeString(&s)
	return s.String()
}

// Fields is an ordered collection of fields with unique names. Declaration
// order is kept.
type Fields struct {
	list   []*Field
	byName map[string]*Field
}

func NewFields(fields ...*Field) (*Fields, error) {
	f := &Fields{
		list:   make([]*Field, 0, len(fields)),
		byName: make(map[string]*Field, len(fields)),
	}

	for _, field := range fields {
		if err := f.Add(field); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// MustFields is like NewFields but panics on duplicate names.
func MustFields(fields ...*Field) *Fields {
	f, err := NewFields(fields...)
	if err != nil {
		panic(err)
	}

	return f
}

// Add appends `field`. A field with the same name must not exist.
func (f *Fields) Add(field *Field) error {
	if _, ok := f.byName[field.Name]; ok {
		return fmt.Errorf(`duplicate field "%s"`, field.Name)
	}

	f.byName[field.Name] = field
	f.list = append(f.list, field)
	return nil
}

// Set replaces the field with the same name in place or appends `field`
// if there's no such field.
func (f *Fields) Set(field *Field) {
	if _, ok := f.byName[field.Name]; ok {
		i := slices.IndexFunc(f.list, func(c *Field) bool { return c.Name == field.Name })
		f.list[i] = field
	} else {
		f.list = append(f.list, field)
	}

	f.byName[field.Name] = field
}

// Get returns the field called `name` or nil.
func (f *Fields) Get(name string) *Field {
	if f == nil {
		return nil
	}

	return f.byName[name]
}

func (f *Fields) Has(name string) bool {
	return f.Get(name) != nil
}

// List returns the fields in declaration order.
func (f *Fields) List() []*Field {
	if f == nil {
		return nil
	}

	return slices.Clone(f.list)
}

func (f *Fields) Names() []string {
	names := make([]string, 0, f.Len())
	for _, field := range f.List() {
		names = append(names, field.Name)
	}

	return names
}

func (f *Fields) Len() int {
	if f == nil {
		return 0
	}

	return len(f.list)
}

func (f *Fields) Clone() *Fields {
	clone, _ := NewFields()

	for _, field := range f.List() {
		_ = clone.Add(field.Clone())
	}

	return clone
}

// Equal reports whether both collections hold equal fields in the same order.
func (f *Fields) Equal(o *Fields) bool {
	if f.Len() != o.Len() {
		return false
	}

	for i, field := range f.List() {
		if !field.Equal(o.list[i]) {
			return false
		}
	}

	return true
}

func (f *Fields) writeString(s *stringBuilder) {
	s.WriteString("(")
	s.WriteNewLine()
	s.Indent()

	for i, field := range f.List() {
		field.writeString(s)

		if i != f.Len()-1 {
			s.WriteString(",")
		}

		s.WriteNewLine()
	}

	s.DeIndent()
	s.WriteString(")")
}

func (f *Fields) String() string {
	var s stringBuilder
	f.writeString(&s)
	return s.String()
}
