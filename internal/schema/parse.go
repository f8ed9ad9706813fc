package schema

import (
	"slices"

	"gopkg.in/yaml.v3"
)

const (
	keyType   = "type"
	keyItems  = "items"
	keyFields = "fields"
)

// Parse interprets a type document given as YAML or JSON text, for example
// `float32` or `{type: list, items: float32}`.
func Parse(src string) (Type, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return Type{}, typeErrorf(nil, nil, "malformed type document: %s", err)
	}

	return FromNode(&doc)
}

// FromNode interprets a type document. A document is either a type tag, a
// `{type: <tag>}` mapping, a `{type: list, items: <doc>}` mapping or a
// `{type: struct, fields: {<name>: <doc>, ...}}` mapping.
func FromNode(node *yaml.Node) (Type, error) {
	return fromNode(node, nil)
}

func fromNode(node *yaml.Node, path []string) (Type, error) {
	node = resolveNode(node)
	if node == nil {
		return Type{}, typeErrorf(nil, path, "empty type document")
	}

	switch node.Kind {
	case yaml.ScalarNode:
		return fromTag(node, path)
	case yaml.MappingNode:
		return fromMapping(node, path)
	}

	return Type{}, typeErrorf(node, path, "expected a type tag or a type mapping")
}

func fromTag(node *yaml.Node, path []string) (Type, error) {
	k, ok := parseKind(node.Value)
	if !ok {
		return Type{}, typeErrorf(node, path, `unknown type "%s"`, node.Value)
	}

	if !k.Scalar() {
		return Type{}, typeErrorf(node, path, `type "%s" must be declared using a mapping`, node.Value)
	}

	return Type{kind: k}, nil
}

func fromMapping(node *yaml.Node, path []string) (Type, error) {
	var typeNode, itemsNode, fieldsNode *yaml.Node

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		switch key.Value {
		case keyType:
			typeNode = resolveNode(value)
		case keyItems:
			itemsNode = value
		case keyFields:
			fieldsNode = resolveNode(value)
		default:
			return Type{}, typeErrorf(key, path, `unexpected key "%s"`, key.Value)
		}
	}

	if typeNode == nil || typeNode.Kind != yaml.ScalarNode {
		return Type{}, typeErrorf(node, path, `missing "type"`)
	}

	k, ok := parseKind(typeNode.Value)
	if !ok {
		return Type{}, typeErrorf(typeNode, path, `unknown type "%s"`, typeNode.Value)
	}

	switch k {
	case KindList:
		if fieldsNode != nil {
			return Type{}, typeErrorf(fieldsNode, path, `"fields" is only allowed for struct types`)
		}

		if itemsNode == nil {
			return Type{}, typeErrorf(node, path, `list type requires "items"`)
		}

		items, err := fromNode(itemsNode, childPath(path, keyItems))
		if err != nil {
			return Type{}, err
		}

		return Type{kind: KindList, items: &items}, nil
	case KindStruct:
		if itemsNode != nil {
			return Type{}, typeErrorf(itemsNode, path, `"items" is only allowed for list types`)
		}

		if fieldsNode == nil || fieldsNode.Kind != yaml.MappingNode {
			return Type{}, typeErrorf(node, path, `struct type requires a "fields" mapping`)
		}

		fields, err := fieldsFromMapping(fieldsNode, childPath(path, keyFields))
		if err != nil {
			return Type{}, err
		}

		return Type{kind: KindStruct, fields: fields}, nil
	}

	if itemsNode != nil || fieldsNode != nil {
		return Type{}, typeErrorf(node, path, `scalar type "%s" takes no "items" or "fields"`, k)
	}

	return Type{kind: k}, nil
}

// FieldsFromNode interprets a mapping of field names to type documents.
func FieldsFromNode(node *yaml.Node) (*Fields, error) {
	node = resolveNode(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, typeErrorf(node, nil, "expected a mapping of field names to types")
	}

	return fieldsFromMapping(node, nil)
}

func fieldsFromMapping(node *yaml.Node, path []string) (*Fields, error) {
	fields, _ := NewFields()

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		fieldPath := childPath(path, key.Value)

		t, err := fromNode(value, fieldPath)
		if err != nil {
			return nil, err
		}

		if err := fields.Add(&Field{Name: key.Value, Type: t}); err != nil {
			return nil, typeErrorf(key, fieldPath, "%s", err)
		}
	}

	return fields, nil
}

// Node returns the canonical type document of `t`: a bare tag for scalars
// and a mapping for lists and structs.
func (t Type) Node() *yaml.Node {
	switch t.kind {
	case KindList:
		return mappingNode(
			scalarNode(keyType), scalarNode(string(KindList)),
			scalarNode(keyItems), t.items.Node(),
		)
	case KindStruct:
		return mappingNode(
			scalarNode(keyType), scalarNode(string(KindStruct)),
			scalarNode(keyFields), t.fields.Node(),
		)
	}

	return scalarNode(string(t.kind))
}

// Node returns the mapping of field names to type documents.
func (f *Fields) Node() *yaml.Node {
	content := make([]*yaml.Node, 0, 2*f.Len())

	for _, field := range f.List() {
		content = append(content, scalarNode(field.Name), field.Type.Node())
	}

	return mappingNode(content...)
}

func (t Type) MarshalYAML() (any, error) {
	return t.Node(), nil
}

func (t *Type) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := FromNode(value)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

func (f *Fields) MarshalYAML() (any, error) {
	return f.Node(), nil
}

func (f *Fields) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := FieldsFromNode(value)
	if err != nil {
		return err
	}

	*f = *parsed
	return nil
}

// resolveNode skips document and alias wrappers.
func resolveNode(node *yaml.Node) *yaml.Node {
	for node != nil {
		switch node.Kind {
		case yaml.DocumentNode:
			if len(node.Content) == 0 {
				return nil
			}
			node = node.Content[0]
		case yaml.AliasNode:
			node = node.Alias
		default:
			return node
		}
	}

	return nil
}

func childPath(path []string, elems ...string) []string {
	return append(slices.Clone(path), elems...)
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Value: value,
	}
}

func mappingNode(content ...*yaml.Node) *yaml.Node {
	return &yaml.Node{
		Kind:    yaml.MappingNode,
		Tag:     "!!map",
		Content: content,
	}
}
