package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/koskimas/fondant/internal/component"
	"github.com/koskimas/fondant/internal/config"
	"github.com/koskimas/fondant/internal/gen"
	"github.com/koskimas/fondant/internal/kubeflow"
	"github.com/koskimas/fondant/internal/pg"
	"github.com/koskimas/fondant/internal/pipeline"
	"github.com/rs/zerolog"
)

const (
	componentsDir  = "components"
	descriptorsDir = "kubeflow"
	datasetFile    = "dataset.sql"
	datasetSchema  = "fondant"
)

type Settings struct {
	WorkingDir string
	Logger     zerolog.Logger
}

// Run compiles the pipeline of the `fondant.yaml` file in `s.WorkingDir` and
// writes the resolved component specs, their Kubeflow descriptors, the dataset
// table and the optional Go bindings.
func Run(s Settings) error {
	cfg, err := config.Read(filepath.Join(s.WorkingDir, config.FileName))
	if err != nil {
		return err
	}

	compiled, err := compile(s, cfg)
	if err != nil {
		return err
	}

	outDir := filepath.Join(s.WorkingDir, cfg.Output.Path)

	if err := writeComponents(s, outDir, compiled); err != nil {
		return err
	}

	if err := writeDataset(s, outDir, compiled); err != nil {
		return err
	}

	if cfg.Bindings != nil {
		f := gen.GenerateBindings(cfg.Bindings.Package.Path, compiled)

		if err := gen.WriteBindings(f, s.WorkingDir, cfg.Bindings.Package.Path); err != nil {
			return err
		}

		s.Logger.Info().Str("package", cfg.Bindings.Package.Path).Msg("wrote bindings")
	}

	s.Logger.Info().
		Str("pipeline", compiled.Name).
		Int("components", len(compiled.Ops)).
		Str("output", outDir).
		Msg("pipeline compiled")

	return nil
}

func compile(s Settings, cfg *config.Config) (*pipeline.Compiled, error) {
	p := pipeline.New(cfg.Pipeline.Name, s.Logger)
	p.Description = cfg.Pipeline.Description
	p.BasePath = cfg.Pipeline.BasePath

	for _, c := range cfg.Components {
		spec, err := component.FromFile(filepath.Join(s.WorkingDir, c.Spec))
		if err != nil {
			return nil, err
		}

		p.Add(pipeline.Op{
			Name:      c.Name,
			Spec:      spec,
			Arguments: c.Arguments,
			Consumes:  fieldMappings(c.Consumes),
			Produces:  fieldMappings(c.Produces),
		})
	}

	compiled, err := p.Finalize()
	if err != nil {
		return nil, err
	}

	s.Logger.Debug().
		Str("schema", compiled.Schema.ToArrowSchema().String()).
		Msg("dataset schema")

	return compiled, nil
}

func fieldMappings(mappings config.Mappings) []pipeline.FieldMapping {
	if len(mappings) == 0 {
		return nil
	}

	out := make([]pipeline.FieldMapping, len(mappings))
	for i, m := range mappings {
		out[i] = pipeline.FieldMapping{
			Field:  m.Field,
			Column: m.Column,
			Type:   m.Type,
		}
	}

	return out
}

func writeComponents(s Settings, outDir string, compiled *pipeline.Compiled) error {
	for _, dir := range []string{componentsDir, descriptorsDir} {
		if err := os.MkdirAll(filepath.Join(outDir, dir), 0700); err != nil {
			return fmt.Errorf(`failed to create output directory "%s": %w`, dir, err)
		}
	}

	for _, op := range compiled.Ops {
		fileName := kubeflow.SanitizeName(op.Name) + ".yaml"

		if err := op.Spec.ToFile(filepath.Join(outDir, componentsDir, fileName)); err != nil {
			return err
		}

		descriptor, err := kubeflow.FromComponentSpec(op.Spec)
		if err != nil {
			return fmt.Errorf(`component "%s": %w`, op.Name, err)
		}

		if err := descriptor.ToFile(filepath.Join(outDir, descriptorsDir, fileName)); err != nil {
			return err
		}

		s.Logger.Debug().Str("component", op.Name).Str("file", fileName).Msg("wrote component")
	}

	return nil
}

func writeDataset(s Settings, outDir string, compiled *pipeline.Compiled) error {
	name := pg.NewTableName(tableName(compiled.Name), datasetSchema)

	sql, err := pg.Export(name, compiled.Schema)
	if err != nil {
		return fmt.Errorf(`pipeline "%s": %w`, compiled.Name, err)
	}

	filePath := filepath.Join(outDir, datasetFile)
	if err := os.WriteFile(filePath, []byte(sql), 0600); err != nil {
		return fmt.Errorf(`failed to write dataset table "%s": %w`, filePath, err)
	}

	s.Logger.Debug().Str("table", name.String()).Msg("wrote dataset table")
	return nil
}

func tableName(pipelineName string) string {
	return strings.ReplaceAll(kubeflow.SanitizeName(pipelineName), "-", "_")
}

// Validate checks the component specs in `paths` and returns the errors of
// all invalid specs joined together.
func Validate(paths []string) error {
	var errs []error

	for _, p := range paths {
		if _, err := component.FromFile(p); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Descriptor returns the Kubeflow descriptor of the component spec in
// `specPath`.
func Descriptor(specPath string) ([]byte, error) {
	spec, err := component.FromFile(specPath)
	if err != nil {
		return nil, err
	}

	descriptor, err := kubeflow.FromComponentSpec(spec)
	if err != nil {
		return nil, fmt.Errorf(`file "%s": %w`, specPath, err)
	}

	return descriptor.Bytes()
}
