package kubeflow

import (
	"gopkg.in/yaml.v3"
)

const (
	SchemaVersion = "2.1.0"
	SDKVersion    = "kfp-2.6.0"
)

// ParameterType is the KFP type of an input parameter.
type ParameterType string

const (
	ParameterTypeString  ParameterType = "STRING"
	ParameterTypeInteger ParameterType = "NUMBER_INTEGER"
	ParameterTypeDouble  ParameterType = "NUMBER_DOUBLE"
	ParameterTypeBoolean ParameterType = "BOOLEAN"
	ParameterTypeStruct  ParameterType = "STRUCT"
	ParameterTypeList    ParameterType = "LIST"
)

// Document is the pipeline IR document of a single component pipeline.
// Mapping keys are written in sorted order, which makes the encoding of a
// document deterministic.
type Document struct {
	Components     map[string]Component `yaml:"components"`
	DeploymentSpec DeploymentSpec       `yaml:"deploymentSpec"`
	PipelineInfo   PipelineInfo         `yaml:"pipelineInfo"`
	Root           Root                 `yaml:"root"`
	SchemaVersion  string               `yaml:"schemaVersion"`
	SDKVersion     string               `yaml:"sdkVersion"`
}

type Component struct {
	ExecutorLabel    string           `yaml:"executorLabel"`
	InputDefinitions InputDefinitions `yaml:"inputDefinitions"`
}

type InputDefinitions struct {
	Parameters map[string]Parameter `yaml:"parameters"`
}

type Parameter struct {
	DefaultValue  Value         `yaml:"defaultValue,omitempty"`
	Description   string        `yaml:"description,omitempty"`
	IsOptional    bool          `yaml:"isOptional,omitempty"`
	ParameterType ParameterType `yaml:"parameterType"`
}

type DeploymentSpec struct {
	Executors map[string]Executor `yaml:"executors"`
}

type Executor struct {
	Container Container `yaml:"container"`
}

type Container struct {
	Args    []string `yaml:"args"`
	Command []string `yaml:"command"`
	Image   string   `yaml:"image"`
}

type PipelineInfo struct {
	Description string `yaml:"description,omitempty"`
	Name        string `yaml:"name"`
}

type Root struct {
	DAG              DAG              `yaml:"dag"`
	InputDefinitions InputDefinitions `yaml:"inputDefinitions"`
}

type DAG struct {
	Tasks map[string]Task `yaml:"tasks"`
}

type Task struct {
	CachingOptions CachingOptions `yaml:"cachingOptions"`
	ComponentRef   ComponentRef   `yaml:"componentRef"`
	Inputs         TaskInputs     `yaml:"inputs"`
	TaskInfo       TaskInfo       `yaml:"taskInfo"`
}

type CachingOptions struct {
	EnableCache bool `yaml:"enableCache"`
}

type ComponentRef struct {
	Name string `yaml:"name"`
}

type TaskInputs struct {
	Parameters map[string]TaskParameter `yaml:"parameters"`
}

type TaskParameter struct {
	ComponentInputParameter string `yaml:"componentInputParameter"`
}

type TaskInfo struct {
	Name string `yaml:"name"`
}

// Value is a parameter default. A set value is written even if it's a zero
// value such as `false` or `0`.
type Value struct {
	value any
	set   bool
}

func NewValue(v any) Value {
	return Value{value: v, set: true}
}

func (v Value) Get() (any, bool) {
	return v.value, v.set
}

func (v Value) IsZero() bool {
	return !v.set
}

func (v Value) MarshalYAML() (any, error) {
	return v.value, nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if err := node.Decode(&v.value); err != nil {
		return err
	}

	v.set = true
	return nil
}
