// Package kubeflow translates component specs into the pipeline descriptor
// executed by a Kubeflow Pipelines backend.
package kubeflow

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/koskimas/fondant/internal/component"
	"github.com/koskimas/fondant/internal/schema"
	"github.com/koskimas/fondant/internal/yamlflow"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDescriptor is returned when a descriptor document can't be read.
var ErrInvalidDescriptor = errors.New("invalid kubeflow descriptor")

var (
	executeCommand = []string{"fondant", "execute", "main"}

	parameterTypes = map[component.ArgType]ParameterType{
		component.ArgTypeStr:   ParameterTypeString,
		component.ArgTypeInt:   ParameterTypeInteger,
		component.ArgTypeFloat: ParameterTypeDouble,
		component.ArgTypeBool:  ParameterTypeBoolean,
		component.ArgTypeDict:  ParameterTypeStruct,
		component.ArgTypeList:  ParameterTypeList,
	}

	invalidNameChars = regexp.MustCompile(`[^-0-9a-z]+`)
	repeatedDashes   = regexp.MustCompile(`-+`)
)

// Descriptor is the platform descriptor of one component.
type Descriptor struct {
	doc Document
}

// FromComponentSpec builds the descriptor of a resolved component spec.
// Specs with a generic consumes or produces must be resolved first.
func FromComponentSpec(spec *component.Spec) (*Descriptor, error) {
	for _, section := range []component.Section{component.SectionConsumes, component.SectionProduces} {
		if spec.IsGeneric(section) {
			return nil, fmt.Errorf(`component "%s" has a generic %s: %w`, spec.Name(), section, component.ErrUnresolvedGenericSpec)
		}
	}

	args := append(runtimeArguments(spec), spec.Args()...)
	name := SanitizeName(spec.Name())

	componentName := "comp-" + name
	executorName := "exec-" + name

	params := make(map[string]Parameter, len(args))
	taskParams := make(map[string]TaskParameter, len(args))
	containerArgs := make([]string, 0, 2*len(args))

	for _, a := range args {
		p, ok := parameterTypes[a.Type]
		if !ok {
			return nil, fmt.Errorf(`argument "%s" has unknown type "%s"`, a.Name, a.Type)
		}

		param := Parameter{
			Description:   a.Description,
			ParameterType: p,
		}

		if a.HasDefault {
			param.IsOptional = true
			if a.Default != nil {
				param.DefaultValue = NewValue(a.Default)
			}
		}

		params[a.Name] = param
		taskParams[a.Name] = TaskParameter{ComponentInputParameter: a.Name}
		containerArgs = append(containerArgs, "--"+a.Name, fmt.Sprintf("{{$.inputs.parameters['%s']}}", a.Name))
	}

	doc := Document{
		Components: map[string]Component{
			componentName: {
				ExecutorLabel:    executorName,
				InputDefinitions: InputDefinitions{Parameters: params},
			},
		},
		DeploymentSpec: DeploymentSpec{
			Executors: map[string]Executor{
				executorName: {
					Container: Container{
						Args:    containerArgs,
						Command: append([]string{}, executeCommand...),
						Image:   spec.Image(),
					},
				},
			},
		},
		PipelineInfo: PipelineInfo{
			Name:        name,
			Description: spec.Description(),
		},
		Root: Root{
			DAG: DAG{
				Tasks: map[string]Task{
					name: {
						CachingOptions: CachingOptions{EnableCache: true},
						ComponentRef:   ComponentRef{Name: componentName},
						Inputs:         TaskInputs{Parameters: taskParams},
						TaskInfo:       TaskInfo{Name: name},
					},
				},
			},
			InputDefinitions: InputDefinitions{Parameters: cloneParameters(params)},
		},
		SchemaVersion: SchemaVersion,
		SDKVersion:    SDKVersion,
	}

	return &Descriptor{doc: doc}, nil
}

// runtimeArguments returns the runtime arguments with the consumes and
// produces defaults set to the spec's field mappings.
func runtimeArguments(spec *component.Spec) []*component.Argument {
	out := make([]*component.Argument, 0, len(component.RuntimeArguments))

	for _, a := range component.RuntimeArguments {
		a = a.Clone()

		switch a.Name {
		case string(component.SectionConsumes):
			a.Default = fieldsDefault(spec.Consumes())
		case string(component.SectionProduces):
			a.Default = fieldsDefault(spec.Produces())
		}

		out = append(out, a)
	}

	return out
}

func fieldsDefault(fields *schema.Fields) string {
	return yamlflow.Format(fields.Node())
}

func cloneParameters(params map[string]Parameter) map[string]Parameter {
	out := make(map[string]Parameter, len(params))
	for k, v := range params {
		out[k] = v
	}

	return out
}

// SanitizeName turns a component name into a name usable in descriptor keys:
// lowercase with every run of other characters replaced by a single dash.
func SanitizeName(name string) string {
	name = invalidNameChars.ReplaceAllString(strings.ToLower(name), "-")
	name = repeatedDashes.ReplaceAllString(name, "-")
	return strings.Trim(name, "-")
}

// FromDocument reads a descriptor document.
func FromDocument(data []byte) (*Descriptor, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}

	if doc.SchemaVersion == "" || len(doc.Components) == 0 {
		return nil, fmt.Errorf("%w: missing schemaVersion or components", ErrInvalidDescriptor)
	}

	return &Descriptor{doc: doc}, nil
}

// FromFile reads a descriptor document from `filePath`.
func FromFile(filePath string) (*Descriptor, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf(`failed to read kubeflow descriptor "%s": %w`, filePath, err)
	}

	d, err := FromDocument(data)
	if err != nil {
		return nil, fmt.Errorf(`kubeflow descriptor "%s": %w`, filePath, err)
	}

	return d, nil
}

// Document returns the descriptor document. The maps of the returned value
// are shared with the descriptor and must not be modified.
func (d *Descriptor) Document() Document {
	return d.doc
}

// Name is the sanitized component name.
func (d *Descriptor) Name() string {
	return d.doc.PipelineInfo.Name
}

// Parameters returns the component's input parameters.
func (d *Descriptor) Parameters() map[string]Parameter {
	for _, c := range d.doc.Components {
		return cloneParameters(c.InputDefinitions.Parameters)
	}

	return map[string]Parameter{}
}

// Bytes returns the YAML encoding of the descriptor. Equal descriptors
// always encode to the same bytes.
func (d *Descriptor) Bytes() ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(d.doc); err != nil {
		return nil, fmt.Errorf("failed to encode kubeflow descriptor: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode kubeflow descriptor: %w", err)
	}

	return buf.Bytes(), nil
}

// ToFile writes the descriptor to `filePath`.
func (d *Descriptor) ToFile(filePath string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}

	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf(`failed to write kubeflow descriptor "%s": %w`, filePath, err)
	}

	return nil
}

func (d *Descriptor) Equal(o *Descriptor) bool {
	a, errA := d.Bytes()
	b, errB := o.Bytes()
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

// String returns `KubeflowComponentSpec(<document>)` with the document in
// YAML flow style.
func (d *Descriptor) String() string {
	s, err := yamlflow.FormatValue(d.doc)
	if err != nil {
		s = fmt.Sprintf("<%s>", err)
	}

	return fmt.Sprintf("KubeflowComponentSpec(%s)", s)
}
