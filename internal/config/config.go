package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/koskimas/fondant/internal/schema"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the project file `fondant compile` looks for.
const FileName = "fondant.yaml"

type Config struct {
	Version    int         `yaml:"version"`
	Pipeline   Pipeline    `yaml:"pipeline"`
	Components []Component `yaml:"components"`
	Output     Output      `yaml:"output"`
	Bindings   *Bindings   `yaml:"bindings"`
}

type Pipeline struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	BasePath    string `yaml:"basePath"`
}

type Component struct {
	// Spec is the path of the component spec relative to the config file.
	Spec      string         `yaml:"spec"`
	Name      string         `yaml:"name"`
	Arguments map[string]any `yaml:"arguments"`
	Consumes  Mappings       `yaml:"consumes"`
	Produces  Mappings       `yaml:"produces"`
}

type Output struct {
	Path string `yaml:"path"`
}

type Bindings struct {
	Package Package `yaml:"package"`
}

type Package struct {
	Path string `yaml:"path"`
}

// Mapping maps a field of a component to a dataset column and optionally
// declares its type. In the config file a mapping is either a column name or
// a mapping with `column` and `type` keys.
type Mapping struct {
	Field  string
	Column string
	Type   *schema.Type
}

// Mappings keeps the order of the entries in the config file.
type Mappings []Mapping

func (m *Mappings) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of fields", node.Line)
	}

	out := make(Mappings, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		mapping := Mapping{Field: key.Value}

		switch value.Kind {
		case yaml.ScalarNode:
			mapping.Column = value.Value
		case yaml.MappingNode:
			var entry struct {
				Column string     `yaml:"column"`
				Type   *yaml.Node `yaml:"type"`
			}

			if err := value.Decode(&entry); err != nil {
				return fmt.Errorf(`field "%s": %w`, key.Value, err)
			}

			mapping.Column = entry.Column

			if entry.Type != nil {
				t, err := schema.FromNode(entry.Type)
				if err != nil {
					return fmt.Errorf(`field "%s": %w`, key.Value, err)
				}

				mapping.Type = &t
			}
		default:
			return fmt.Errorf(`line %d: field "%s" must map to a column name or a mapping`, value.Line, key.Value)
		}

		out = append(out, mapping)
	}

	*m = out
	return nil
}

func Read(configPath string) (*Config, error) {
	fileData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf(`failed to read config file "%s": %w`, configPath, err)
	}

	var config Config
	if err := yaml.Unmarshal(fileData, &config); err != nil {
		return nil, fmt.Errorf(`failed to unmarshal config file "%s": %w`, configPath, err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf(`invalid config file "%s": %w`, configPath, err)
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported version %d", c.Version)
	}

	if c.Pipeline.Name == "" {
		return errors.New("pipeline.name is required")
	}

	if c.Output.Path == "" {
		return errors.New("output.path is required")
	}

	for i, comp := range c.Components {
		if comp.Spec == "" {
			return fmt.Errorf("components[%d].spec is required", i)
		}
	}

	if c.Bindings != nil && c.Bindings.Package.Path == "" {
		return errors.New("bindings.package.path is required")
	}

	return nil
}
