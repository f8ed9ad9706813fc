package component

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/koskimas/fondant/internal/schema"
	"github.com/koskimas/fondant/internal/yamlflow"
	"gopkg.in/yaml.v3"
)

// Section names one side of a component's dataset interface.
type Section string

const (
	SectionConsumes Section = keyConsumes
	SectionProduces Section = keyProduces
)

// FieldSet is the declared content of a consumes or produces section: a fixed
// list of fields, or a generic set that is only known once the component is
// placed in a pipeline. A generic set may enumerate some of its fields.
type FieldSet struct {
	fields  *schema.Fields
	generic bool
}

// Fields returns a copy of the enumerated fields. The generic marker is not a
// field.
func (s FieldSet) Fields() *schema.Fields {
	return s.fields.Clone()
}

func (s FieldSet) IsGeneric() bool {
	return s.generic
}

// Spec is a validated component specification. The document it was parsed
// from is kept so that writing a spec reproduces the document.
type Spec struct {
	doc *yaml.Node

	name          string
	description   string
	image         string
	tags          []string
	previousIndex string

	consumes FieldSet
	produces FieldSet

	args       []*Argument
	argsByName map[string]*Argument
}

// FromDocument parses and validates a YAML or JSON component document.
func FromDocument(data []byte) (*Spec, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Errors: []error{fmt.Errorf("malformed document: %w", err)}}
	}

	return FromNode(&doc)
}

// FromFile reads a component document from `filePath`.
func FromFile(filePath string) (*Spec, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf(`failed to read component spec "%s": %w`, filePath, err)
	}

	spec, err := FromDocument(data)
	if err != nil {
		return nil, fmt.Errorf(`component spec "%s": %w`, filePath, err)
	}

	return spec, nil
}

// FromNode validates a parsed component document. The node is copied.
func FromNode(node *yaml.Node) (*Spec, error) {
	root := resolveNode(node)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, &ValidationError{Errors: []error{errors.New("component spec must be a mapping")}}
	}

	s := &Spec{doc: cloneNode(root)}
	if err := s.parse(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Spec) parse() error {
	errs := validateStructure(s.doc)

	s.consumes = FieldSet{fields: schema.MustFields()}
	s.produces = FieldSet{fields: schema.MustFields()}
	s.tags = make([]string, 0)
	s.args = make([]*Argument, 0)
	s.argsByName = make(map[string]*Argument)

	for i := 0; i+1 < len(s.doc.Content); i += 2 {
		key, value := s.doc.Content[i], s.doc.Content[i+1]

		switch key.Value {
		case keyName:
			s.name = scalarValue(value)
		case keyDescription:
			s.description = scalarValue(value)
		case keyImage:
			s.image = scalarValue(value)
			if err := validateImage(s.image); err != nil {
				errs = append(errs, err)
			}
		case keyPreviousIndex:
			s.previousIndex = scalarValue(value)
		case keyTags:
			_ = value.Decode(&s.tags)
		case keyConsumes:
			fs, fieldErrs := parseFieldSet(SectionConsumes, value)
			s.consumes = fs
			errs = append(errs, fieldErrs...)
		case keyProduces:
			fs, fieldErrs := parseFieldSet(SectionProduces, value)
			s.produces = fs
			errs = append(errs, fieldErrs...)
		case keyArgs:
			errs = append(errs, s.parseArgs(value)...)
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Name: s.name, Errors: errs}
	}

	return nil
}

func parseFieldSet(section Section, node *yaml.Node) (FieldSet, []error) {
	fs := FieldSet{fields: schema.MustFields()}
	node = resolveNode(node)

	if node == nil || node.Kind != yaml.MappingNode {
		// Reported by the structural validation.
		return fs, nil
	}

	var errs []error
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		if key.Value == keyGeneric {
			_ = value.Decode(&fs.generic)
			continue
		}

		t, err := schema.FromNode(value)
		if err != nil {
			errs = append(errs, fmt.Errorf(`%s field "%s": %w`, section, key.Value, err))
			continue
		}

		if err := fs.fields.Add(schema.NewField(key.Value, t)); err != nil {
			errs = append(errs, fmt.Errorf(`%s: %w`, section, err))
		}
	}

	return fs, errs
}

func (s *Spec) parseArgs(node *yaml.Node) []error {
	node = resolveNode(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}

	var errs []error
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		if err := validateArgEntry(key, value); err != nil {
			errs = append(errs, err)
			continue
		}

		var decl struct {
			Type        string `yaml:"type"`
			Description string `yaml:"description"`
		}

		if err := value.Decode(&decl); err != nil {
			errs = append(errs, fmt.Errorf(`argument "%s": %w`, key.Value, err))
			continue
		}

		arg := &Argument{
			Name:        key.Value,
			Description: decl.Description,
			Type:        ArgType(decl.Type),
		}

		if d := mappingValue(value, "default"); d != nil {
			arg.HasDefault = true
			if err := d.Decode(&arg.Default); err != nil {
				errs = append(errs, fmt.Errorf(`argument "%s": %w`, arg.Name, err))
			}
		}

		errs = append(errs, validateArgument(arg)...)

		s.args = append(s.args, arg)
		s.argsByName[arg.Name] = arg
	}

	return errs
}

// Validate checks the spec document again. Specs returned by this package
// are always valid.
func (s *Spec) Validate() error {
	_, err := FromNode(s.doc)
	return err
}

func (s *Spec) Name() string {
	return s.name
}

func (s *Spec) Description() string {
	return s.description
}

func (s *Spec) Image() string {
	return s.image
}

func (s *Spec) Tags() []string {
	return append([]string{}, s.tags...)
}

// PreviousIndex is the name of the column a component that re-indexes the
// dataset stores the previous index in. Empty if the index is kept.
func (s *Spec) PreviousIndex() string {
	return s.previousIndex
}

// Consumes returns the enumerated fields the component consumes.
func (s *Spec) Consumes() *schema.Fields {
	return s.consumes.Fields()
}

// Produces returns the enumerated fields the component produces.
func (s *Spec) Produces() *schema.Fields {
	return s.produces.Fields()
}

// FieldSet returns the declaration of one section.
func (s *Spec) FieldSet(section Section) FieldSet {
	if section == SectionProduces {
		return s.produces
	}

	return s.consumes
}

// IsGeneric is true if `section` is declared with the generic marker.
func (s *Spec) IsGeneric(section Section) bool {
	return s.FieldSet(section).IsGeneric()
}

// Args returns the declared arguments in declaration order.
func (s *Spec) Args() []*Argument {
	out := make([]*Argument, 0, len(s.args))
	for _, a := range s.args {
		out = append(out, a.Clone())
	}

	return out
}

// Arg returns the argument called `name` or nil.
func (s *Spec) Arg(name string) *Argument {
	if a, ok := s.argsByName[name]; ok {
		return a.Clone()
	}

	return nil
}

// DefaultArguments returns the arguments that declare a default.
func (s *Spec) DefaultArguments() []*Argument {
	out := make([]*Argument, 0, len(s.args))
	for _, a := range s.args {
		if a.HasDefault {
			out = append(out, a.Clone())
		}
	}

	return out
}

// Resolve returns a copy of the spec whose generic sections are replaced by
// concrete fields. Fields enumerated next to the generic marker are kept and
// must agree with the resolved ones. A nil argument leaves that side as is.
func (s *Spec) Resolve(consumes *schema.Fields, produces *schema.Fields) (*Spec, error) {
	clone := s.Clone()

	if consumes != nil {
		fs, err := resolveFieldSet(SectionConsumes, s.consumes, consumes)
		if err != nil {
			return nil, err
		}

		clone.consumes = fs
		clone.setSection(SectionConsumes, fs.fields)
	}

	if produces != nil {
		fs, err := resolveFieldSet(SectionProduces, s.produces, produces)
		if err != nil {
			return nil, err
		}

		clone.produces = fs
		clone.setSection(SectionProduces, fs.fields)
	}

	return clone, nil
}

func resolveFieldSet(section Section, declared FieldSet, resolved *schema.Fields) (FieldSet, error) {
	if !declared.generic {
		return FieldSet{}, fmt.Errorf(`%s: %w`, section, ErrNotGeneric)
	}

	fields := declared.fields.Clone()
	for _, f := range resolved.List() {
		if existing := fields.Get(f.Name); existing != nil {
			if !existing.Type.Equal(f.Type) {
				return FieldSet{}, fmt.Errorf(`%s field "%s" is declared as %s but resolved as %s`, section, f.Name, existing.Type, f.Type)
			}

			continue
		}

		_ = fields.Add(f.Clone())
	}

	return FieldSet{fields: fields}, nil
}

func (s *Spec) setSection(section Section, fields *schema.Fields) {
	for i := 0; i+1 < len(s.doc.Content); i += 2 {
		if s.doc.Content[i].Value == string(section) {
			s.doc.Content[i+1] = fields.Node()
			return
		}
	}

	s.doc.Content = append(s.doc.Content, stringNode(string(section)), fields.Node())
}

func (s *Spec) Clone() *Spec {
	clone := *s
	clone.doc = cloneNode(s.doc)
	clone.tags = s.Tags()
	clone.consumes = FieldSet{fields: s.consumes.Fields(), generic: s.consumes.generic}
	clone.produces = FieldSet{fields: s.produces.Fields(), generic: s.produces.generic}
	clone.args = s.Args()
	clone.argsByName = make(map[string]*Argument, len(clone.args))

	for _, a := range clone.args {
		clone.argsByName[a.Name] = a
	}

	return &clone
}

// Node returns a copy of the spec document.
func (s *Spec) Node() *yaml.Node {
	return cloneNode(s.doc)
}

// Document returns the spec document decoded into plain maps and slices.
func (s *Spec) Document() map[string]any {
	var doc map[string]any
	_ = s.doc.Decode(&doc)
	return doc
}

func (s *Spec) MarshalYAML() (any, error) {
	return s.Node(), nil
}

// Bytes returns the YAML encoding of the spec document.
func (s *Spec) Bytes() ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(s.doc); err != nil {
		return nil, fmt.Errorf("failed to encode component spec: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode component spec: %w", err)
	}

	return buf.Bytes(), nil
}

// ToFile writes the spec document to `filePath`.
func (s *Spec) ToFile(filePath string) error {
	data, err := s.Bytes()
	if err != nil {
		return err
	}

	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf(`failed to write component spec "%s": %w`, filePath, err)
	}

	return nil
}

// Equal reports whether both specs have the same document.
func (s *Spec) Equal(o *Spec) bool {
	return reflect.DeepEqual(s.Document(), o.Document())
}

// String returns `ComponentSpec(<document>)` with the document in YAML flow
// style. The document parses back into an equal spec.
func (s *Spec) String() string {
	return fmt.Sprintf("ComponentSpec(%s)", yamlflow.Format(s.doc))
}

func scalarValue(node *yaml.Node) string {
	node = resolveNode(node)
	if node == nil || node.Kind != yaml.ScalarNode {
		return ""
	}

	return node.Value
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	node = resolveNode(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}

	return nil
}

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

// cloneNode deep copies a node. Aliases are expanded so that the copy
// doesn't share nodes with the original.
func cloneNode(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nil
	}

	if node.Kind == yaml.AliasNode {
		return cloneNode(node.Alias)
	}

	clone := *node
	clone.Anchor = ""
	clone.Alias = nil
	clone.Content = make([]*yaml.Node, len(node.Content))

	for i, c := range node.Content {
		clone.Content[i] = cloneNode(c)
	}

	return &clone
}

func stringNode(value string) *yaml.Node {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Value: value,
	}
}
