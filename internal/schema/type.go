package schema

import (
	"fmt"
)

// Type is the data type of a dataset field. Types are values: they are never
// mutated after construction and compare structurally using Equal.
type Type struct {
	kind Kind

	// items holds the element type of a list.
	items *Type

	// fields holds the ordered sub-fields of a struct.
	fields *Fields
}

// Of resolves a scalar type tag. Composite kinds need a type document and
// can't be created from a tag alone.
func Of(tag string) (Type, error) {
	k, ok := parseKind(tag)
	if !ok {
		return Type{}, typeErrorf(nil, nil, `unknown type "%s"`, tag)
	}

	if !k.Scalar() {
		return Type{}, typeErrorf(nil, nil, `type "%s" can't be used without a type document`, tag)
	}

	return Type{kind: k}, nil
}

// MustOf is like Of but panics on an unknown tag.
func MustOf(tag string) Type {
	t, err := Of(tag)
	if err != nil {
		panic(err)
	}

	return t
}

// List returns a homogeneous list type of `items`.
func List(items Type) Type {
	clone := items.Clone()

	return Type{
		kind:  KindList,
		items: &clone,
	}
}

// Struct returns a record type of `fields`. Field names are guaranteed unique
// by Fields.
func Struct(fields *Fields) Type {
	return Type{
		kind:   KindStruct,
		fields: fields.Clone(),
	}
}

func (t Type) Kind() Kind {
	return t.kind
}

func (t Type) IsZero() bool {
	return t.kind == ""
}

func (t Type) IsList() bool {
	return t.kind == KindList
}

func (t Type) IsStruct() bool {
	return t.kind == KindStruct
}

// Items returns the element type of a list type and a zero Type otherwise.
func (t Type) Items() Type {
	if t.items == nil {
		return Type{}
	}

	return t.items.Clone()
}

// Fields returns a copy of the fields of a struct type and nil otherwise.
func (t Type) Fields() *Fields {
	if t.fields == nil {
		return nil
	}

	return t.fields.Clone()
}

// Equal reports whether `t` and `o` have the same kind and structurally equal
// nested types. Struct field order is significant.
func (t Type) Equal(o Type) bool {
	if t.kind != o.kind {
		return false
	}

	switch t.kind {
	case KindList:
		return t.items.Equal(*o.items)
	case KindStruct:
		return t.fields.Equal(o.fields)
	}

	return true
}

func (t Type) Clone() Type {
	clone := Type{kind: t.kind}

	if t.items != nil {
		items := t.items.Clone()
		clone.items = &items
	}

	if t.fields != nil {
		clone.fields = t.fields.Clone()
	}

	return clone
}

func (t Type) String() string {
	switch t.kind {
	case KindList:
		return fmt.Sprintf("list<%s>", t.items.String())
	case KindStruct:
		var s stringBuilder
		s.WriteString("struct<")

		for i, f := range t.fields.list {
			if i > 0 {
				s.WriteString(", ")
			}

			s.WriteString(f.Name)
			s.WriteString(": ")
			s.WriteString(f.Type.String())
		}

		s.WriteString(">")
		return s.String()
	case "":
		return "<invalid>"
	}

	return string(t.kind)
}
