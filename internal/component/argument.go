package component

import (
	"reflect"
)

// ArgType is the declared type of a component argument.
type ArgType string

const (
	ArgTypeStr   ArgType = "str"
	ArgTypeInt   ArgType = "int"
	ArgTypeFloat ArgType = "float"
	ArgTypeBool  ArgType = "bool"
	ArgTypeDict  ArgType = "dict"
	ArgTypeList  ArgType = "list"
)

var ArgTypes = []ArgType{
	ArgTypeStr,
	ArgTypeInt,
	ArgTypeFloat,
	ArgTypeBool,
	ArgTypeDict,
	ArgTypeList,
}

// Accepts reports whether `v` is a valid value for an argument of type `t`.
// A nil value is accepted by every type.
func (t ArgType) Accepts(v any) bool {
	if v == nil {
		return true
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.String:
		return t == ArgTypeStr
	case reflect.Bool:
		return t == ArgTypeBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return t == ArgTypeInt || t == ArgTypeFloat
	case reflect.Float32, reflect.Float64:
		return t == ArgTypeFloat
	case reflect.Map, reflect.Struct:
		return t == ArgTypeDict
	case reflect.Slice, reflect.Array:
		return t == ArgTypeList
	}

	return false
}

// Argument is a typed argument a component accepts.
type Argument struct {
	Name        string
	Description string
	Type        ArgType

	// Default is only meaningful if HasDefault is true. A declared null
	// default makes the argument optional without a value.
	Default    any
	HasDefault bool
}

func (a *Argument) Clone() *Argument {
	clone := *a
	return &clone
}

// RuntimeArguments are passed to every component by the execution backend.
// Component arguments can't reuse these names.
var RuntimeArguments = []*Argument{
	{
		Name:        "input_manifest_path",
		Description: "Path to the input manifest",
		Type:        ArgTypeStr,
		HasDefault:  true,
	},
	{
		Name:        "metadata",
		Description: "Metadata arguments containing the run id and base path",
		Type:        ArgTypeStr,
	},
	{
		Name:        "output_manifest_path",
		Description: "Path to the output manifest",
		Type:        ArgTypeStr,
	},
	{
		Name:        "cache",
		Description: "Set to False to disable caching, True by default.",
		Type:        ArgTypeBool,
		Default:     true,
		HasDefault:  true,
	},
	{
		Name:        "cluster_type",
		Description: "The cluster type to use for the execution",
		Type:        ArgTypeStr,
		Default:     "default",
		HasDefault:  true,
	},
	{
		Name:        "client_kwargs",
		Description: "Keyword arguments to pass to the Dask client",
		Type:        ArgTypeDict,
		Default:     map[string]any{},
		HasDefault:  true,
	},
	{
		Name:        "consumes",
		Description: "A mapping of the fields the component consumes to their types",
		Type:        ArgTypeStr,
		HasDefault:  true,
	},
	{
		Name:        "produces",
		Description: "A mapping of the fields the component produces to their types",
		Type:        ArgTypeStr,
		HasDefault:  true,
	},
}

func isRuntimeArgument(name string) bool {
	for _, a := range RuntimeArguments {
		if a.Name == name {
			return true
		}
	}

	return false
}
