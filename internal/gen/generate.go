package gen

import (
	"fmt"
	"go/token"
	"os"
	"path"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"github.com/koskimas/fondant/internal/component"
	"github.com/koskimas/fondant/internal/pipeline"
	"github.com/koskimas/fondant/internal/schema"
)

const (
	idConstPipelineName = "PipelineName"
	idConstBasePath     = "BasePath"
	idVarComponents     = "Components"
	idStructDataset     = "Dataset"

	idSuffixImage     = "Image"
	idSuffixArgs      = "Args"
	idSuffixConsumes  = "Consumes"
	idSuffixProduces  = "Produces"
	idPrefixArguments = "Arguments"
)

// GenerateBindings generates a Go package with typed bindings for every
// component of a compiled pipeline: argument structs with the values the
// pipeline runs the component with, and row structs for the consumed and
// produced columns.
func GenerateBindings(packagePath string, compiled *pipeline.Compiled) *jen.File {
	f := jen.NewFile(packageName(packagePath))
	f.HeaderComment("Code generated by fondant. DO NOT EDIT.")

	genPipelineConstants(f, compiled)
	genDatasetStruct(f, compiled.Schema)

	ids := uniqueGoNames(compiled.Ops, func(op *pipeline.ResolvedOp) string { return op.Name })
	for i, op := range compiled.Ops {
		genOp(f, ids[i], op)
	}

	return f
}

// WriteBindings writes the generated package to `<workingDir>/<packagePath>.go`.
func WriteBindings(f *jen.File, workingDir string, packagePath string) error {
	filePath := path.Join(workingDir, packagePath) + ".go"

	if err := os.MkdirAll(path.Dir(filePath), 0700); err != nil {
		return fmt.Errorf(`failed to create directory for "%s": %w`, filePath, err)
	}

	if err := os.WriteFile(filePath, []byte(f.GoString()), 0600); err != nil {
		return fmt.Errorf(`failed to write bindings "%s": %w`, filePath, err)
	}

	return nil
}

func genPipelineConstants(f *jen.File, compiled *pipeline.Compiled) {
	f.Const().Defs(
		jen.Id(idConstPipelineName).Op("=").Lit(compiled.Name),
		jen.Id(idConstBasePath).Op("=").Lit(compiled.BasePath),
	)
	f.Empty()

	f.Comment(fmt.Sprintf("%s lists the components of the pipeline in execution order.", idVarComponents))
	f.Var().Id(idVarComponents).Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
		for _, op := range compiled.Ops {
			g.Lit(op.Name)
		}
	})
	f.Empty()
}

func genDatasetStruct(f *jen.File, fields *schema.Fields) {
	f.Comment(fmt.Sprintf("%s is a row of the dataset after the last component.", idStructDataset))
	f.Type().Id(idStructDataset).StructFunc(func(g *jen.Group) {
		genFields(g, fields.List(), func(field *schema.Field) string { return field.Name })
	})
	f.Empty()
}

func genOp(f *jen.File, id string, op *pipeline.ResolvedOp) {
	f.Comment(fmt.Sprintf(`%s is the image of the "%s" component.`, id+idSuffixImage, op.Name))
	f.Const().Id(id + idSuffixImage).Op("=").Lit(op.Spec.Image())
	f.Empty()

	genArgs(f, id, op)
	genMappingStruct(f, id+idSuffixConsumes, op.Consumes)
	genMappingStruct(f, id+idSuffixProduces, op.Produces)
}

func genArgs(f *jen.File, id string, op *pipeline.ResolvedOp) {
	args := op.Spec.Args()
	names := uniqueGoNames(args, func(a *component.Argument) string { return a.Name })

	f.Type().Id(id + idSuffixArgs).StructFunc(func(g *jen.Group) {
		for i, a := range args {
			g.Id(names[i]).Add(argGoType(a.Type)).Tag(map[string]string{"json": a.Name})
		}
	})
	f.Empty()

	f.Comment(fmt.Sprintf("%s%s returns the arguments the pipeline runs the component with.", idPrefixArguments, id))
	f.Func().Id(idPrefixArguments + id).Params().Id(id + idSuffixArgs).Block(
		jen.Return(jen.Id(id + idSuffixArgs).Values(jen.DictFunc(func(d jen.Dict) {
			for i, a := range args {
				if v, ok := op.Arguments[a.Name]; ok && v != nil {
					d[jen.Id(names[i])] = literal(v)
				}
			}
		}))),
	)
	f.Empty()
}

func genMappingStruct(f *jen.File, id string, mappings []pipeline.FieldMapping) {
	fields := make([]*schema.Field, len(mappings))
	columns := make(map[*schema.Field]string, len(mappings))

	for i, m := range mappings {
		fields[i] = schema.NewField(m.Field, *m.Type)
		columns[fields[i]] = m.Column
	}

	f.Type().Id(id).StructFunc(func(g *jen.Group) {
		genFields(g, fields, func(field *schema.Field) string { return columns[field] })
	})
	f.Empty()
}

func genFields(g *jen.Group, fields []*schema.Field, column func(*schema.Field) string) {
	names := uniqueGoNames(fields, func(f *schema.Field) string { return f.Name })

	for i, field := range fields {
		g.Id(names[i]).Add(goType(field.Type)).Tag(map[string]string{"json": column(field)})
	}
}

func goType(t schema.Type) *jen.Statement {
	switch t.Kind() {
	case schema.KindNull:
		return jen.Interface()
	case schema.KindBool:
		return jen.Bool()
	case schema.KindInt8:
		return jen.Int8()
	case schema.KindInt16:
		return jen.Int16()
	case schema.KindInt32:
		return jen.Int32()
	case schema.KindInt64:
		return jen.Int64()
	case schema.KindUint8:
		return jen.Uint8()
	case schema.KindUint16:
		return jen.Uint16()
	case schema.KindUint32:
		return jen.Uint32()
	case schema.KindUint64:
		return jen.Uint64()
	case schema.KindFloat16, schema.KindFloat32:
		return jen.Float32()
	case schema.KindFloat64:
		return jen.Float64()
	case schema.KindTime32, schema.KindTime64, schema.KindDuration:
		return jen.Qual("time", "Duration")
	case schema.KindTimestamp, schema.KindDate32, schema.KindDate64:
		return jen.Qual("time", "Time")
	case schema.KindBinary, schema.KindLargeBinary:
		return jen.Index().Byte()
	case schema.KindList:
		return jen.Index().Add(goType(t.Items()))
	case schema.KindStruct:
		return jen.StructFunc(func(g *jen.Group) {
			genFields(g, t.Fields().List(), func(f *schema.Field) string { return f.Name })
		})
	}

	// Strings and decimals, which are exchanged in their text form.
	return jen.String()
}

func argGoType(t component.ArgType) *jen.Statement {
	switch t {
	case component.ArgTypeInt:
		return jen.Int64()
	case component.ArgTypeFloat:
		return jen.Float64()
	case component.ArgTypeBool:
		return jen.Bool()
	case component.ArgTypeDict:
		return jen.Map(jen.String()).Interface()
	case component.ArgTypeList:
		return jen.Index().Interface()
	}

	return jen.String()
}

// literal renders an argument value decoded from YAML.
func literal(v any) jen.Code {
	switch x := v.(type) {
	case nil:
		return jen.Nil()
	case map[string]any:
		return jen.Map(jen.String()).Interface().Values(jen.DictFunc(func(d jen.Dict) {
			for k, v := range x {
				d[jen.Lit(k)] = literal(v)
			}
		}))
	case []any:
		return jen.Index().Interface().ValuesFunc(func(g *jen.Group) {
			for _, v := range x {
				g.Add(literal(v))
			}
		})
	}

	return jen.Lit(v)
}

// uniqueGoNames returns exported Go identifiers for the names of `items`.
// Names that map to the same identifier get a numeric suffix.
func uniqueGoNames[T any](items []T, name func(T) string) []string {
	out := make([]string, len(items))
	used := make(map[string]bool, len(items))

	for i, item := range items {
		id := goName(name(item))

		for n := 2; used[id]; n += 1 {
			id = fmt.Sprintf("%s%d", goName(name(item)), n)
		}

		used[id] = true
		out[i] = id
	}

	return out
}

// goName converts a component, field or argument name into an exported Go
// identifier: `num_workers` becomes `NumWorkers`.
func goName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var s strings.Builder
	for _, p := range parts {
		s.WriteString(firstUpper(p))
	}

	id := s.String()
	if id == "" || unicode.IsDigit([]rune(id)[0]) {
		id = "X" + id
	}

	return id
}

func packageName(packagePath string) string {
	name := strings.ToLower(goName(path.Base(packagePath)))
	if token.IsKeyword(name) {
		name += "pkg"
	}

	return name
}

func firstUpper(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}

	return string(unicode.ToUpper(r[0])) + string(r[1:])
}
