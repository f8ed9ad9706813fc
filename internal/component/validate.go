package component

import (
	_ "crypto/sha256"
	_ "crypto/sha512"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/opencontainers/go-digest"
	"gopkg.in/yaml.v3"
)

const (
	keyName          = "name"
	keyDescription   = "description"
	keyImage         = "image"
	keyTags          = "tags"
	keyConsumes      = "consumes"
	keyProduces      = "produces"
	keyArgs          = "args"
	keyPreviousIndex = "previous_index"

	// keyGeneric marks a consumes or produces section as generic.
	keyGeneric = "additionalProperties"
)

var requiredKeys = []string{keyName, keyDescription, keyImage}

var (
	falseSchema = &jsonschema.Schema{Not: &jsonschema.Schema{}}

	fieldSetSchema = &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			keyGeneric: {Type: "boolean"},
		},
	}

	argSchema = &jsonschema.Schema{
		Type:     "object",
		Required: []string{"type"},
		Properties: map[string]*jsonschema.Schema{
			"type":        {Type: "string", Enum: argTypeEnum()},
			"description": {Type: "string"},
			"default":     {},
		},
		AdditionalProperties: falseSchema,
	}

	// sectionSchemas validate the value of each top-level key. Entries of the
	// args mapping are validated one by one by validateArgEntry so that every
	// bad argument is reported.
	sectionSchemas = map[string]*jsonschema.Resolved{
		keyName:          mustResolve(&jsonschema.Schema{Type: "string", Pattern: `\S`}),
		keyDescription:   mustResolve(&jsonschema.Schema{Type: "string"}),
		keyImage:         mustResolve(&jsonschema.Schema{Type: "string", Pattern: `^\S+$`}),
		keyTags:          mustResolve(&jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}}),
		keyConsumes:      mustResolve(fieldSetSchema),
		keyProduces:      mustResolve(fieldSetSchema),
		keyArgs:          mustResolve(&jsonschema.Schema{Type: "object"}),
		keyPreviousIndex: mustResolve(&jsonschema.Schema{Type: "string", Pattern: `\S`}),
	}

	resolvedArgSchema = mustResolve(argSchema)
)

func argTypeEnum() []any {
	enum := make([]any, len(ArgTypes))
	for i, t := range ArgTypes {
		enum[i] = string(t)
	}

	return enum
}

func mustResolve(s *jsonschema.Schema) *jsonschema.Resolved {
	r, err := s.Resolve(nil)
	if err != nil {
		panic(err)
	}

	return r
}

// validateStructure checks the document against the structural schema and
// returns one error per violation. `doc` must be a mapping node.
func validateStructure(doc *yaml.Node) []error {
	var errs []error
	present := make(map[string]bool)

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]
		present[key.Value] = true

		rs, ok := sectionSchemas[key.Value]
		if !ok {
			errs = append(errs, fmt.Errorf(`line %d: unexpected key "%s"`, key.Line, key.Value))
			continue
		}

		instance, err := jsonValue(value)
		if err != nil {
			errs = append(errs, fmt.Errorf(`"%s": %w`, key.Value, err))
			continue
		}

		if err := rs.Validate(instance); err != nil {
			errs = append(errs, fmt.Errorf(`"%s" (line %d): %w`, key.Value, key.Line, err))
		}
	}

	for _, k := range requiredKeys {
		if !present[k] {
			errs = append(errs, fmt.Errorf(`missing required key "%s"`, k))
		}
	}

	return errs
}

// validateArgEntry checks the shape of one entry of the args mapping.
func validateArgEntry(key *yaml.Node, value *yaml.Node) error {
	instance, err := jsonValue(value)
	if err == nil {
		err = resolvedArgSchema.Validate(instance)
	}

	if err != nil {
		return fmt.Errorf(`argument "%s" (line %d): %w`, key.Value, key.Line, err)
	}

	return nil
}

// jsonValue converts a YAML node into the value encoding/json would produce
// for the same document, which is what the schema validator expects.
func jsonValue(node *yaml.Node) (any, error) {
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("not representable as JSON: %w", err)
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// validateImage checks that a pinned image reference carries a valid digest.
func validateImage(image string) error {
	_, pinned, ok := strings.Cut(image, "@")
	if !ok {
		return nil
	}

	if _, err := digest.Parse(pinned); err != nil {
		return fmt.Errorf(`image "%s": invalid digest: %w`, image, err)
	}

	return nil
}

func validateArgument(a *Argument) []error {
	var errs []error

	if isRuntimeArgument(a.Name) {
		errs = append(errs, fmt.Errorf(`argument "%s" collides with a runtime argument`, a.Name))
	}

	if !slices.Contains(ArgTypes, a.Type) {
		errs = append(errs, fmt.Errorf(`argument "%s" has unknown type "%s"`, a.Name, a.Type))
	} else if a.HasDefault && !a.Type.Accepts(a.Default) {
		errs = append(errs, fmt.Errorf(`argument "%s": default %v is not a valid %s`, a.Name, a.Default, a.Type))
	}

	return errs
}
