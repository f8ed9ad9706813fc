package pipeline

import (
	"bytes"
	"testing"

	"github.com/koskimas/fondant/internal/component"
	"github.com/koskimas/fondant/internal/schema"
	"github.com/rs/zerolog"
	assert "github.com/stretchr/testify/require"
)

const (
	loadImagesSpec = `
name: Load images
description: Loads images and their captions
image: load_images:latest
produces:
  images: binary
  captions: string
args:
  directory:
    type: str
  recursive:
    type: bool
    default: true
`

	captionSpec = `
name: Caption images
description: Captions images
image: caption_images:latest
consumes:
  images: binary
produces:
  generated_captions: string
args:
  model:
    type: str
    default: blip
  max_length:
    type: int
    default: 32
`

	embedTextSpec = `
name: Embed text
description: Embeds a text column
image: embed_text:latest
consumes:
  text: string
produces:
  embeddings:
    type: list
    items: float32
`

	writeSpec = `
name: Write to file
description: Writes every consumed field to a file
image: write_to_file:latest
consumes:
  additionalProperties: true
args:
  path:
    type: str
    default: /tmp/out
`

	loadGenericSpec = `
name: Load from files
description: Loads whatever the user asks for
image: load_from_files:latest
produces:
  additionalProperties: true
`

	dedupSpec = `
name: Deduplicate
description: Deduplicates the dataset and re-indexes it
image: dedup:latest
consumes:
  images: binary
previous_index: original_id
`
)

func mustSpec(t *testing.T, doc string) *component.Spec {
	spec, err := component.FromDocument([]byte(doc))
	assert.NoError(t, err)
	return spec
}

func newPipeline() *Pipeline {
	p := New("test", zerolog.Nop())
	p.BasePath = "/tmp/base"
	return p
}

func typeOf(t *testing.T, tag string) *schema.Type {
	typ, err := schema.Of(tag)
	assert.NoError(t, err)
	return &typ
}

func TestFinalize(t *testing.T) {
	p := newPipeline().
		Add(Op{Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/data"}}).
		Add(Op{Spec: mustSpec(t, captionSpec), Arguments: map[string]any{"max_length": 64}})

	compiled, err := p.Finalize()
	assert.NoError(t, err)

	assert.Equal(t, "test", compiled.Name)
	assert.Equal(t, "/tmp/base", compiled.BasePath)
	assert.Len(t, compiled.Ops, 2)
	assert.Equal(t, []string{"images", "captions", "generated_captions"}, compiled.Schema.Names())

	load := compiled.Op("Load images")
	assert.Equal(t, map[string]any{"directory": "/data", "recursive": true}, load.Arguments)

	caption := compiled.Op("Caption images")
	assert.Equal(t, map[string]any{"model": "blip", "max_length": 64}, caption.Arguments)
	assert.Equal(t, []string{"images"}, caption.Columns(component.SectionConsumes).Names())
}

func TestGenericConsumesFromPreviousComponent(t *testing.T) {
	p := newPipeline().
		Add(Op{Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/data"}}).
		Add(Op{Spec: mustSpec(t, writeSpec)})

	compiled, err := p.Finalize()
	assert.NoError(t, err)

	write := compiled.Op("Write to file")
	assert.False(t, write.Spec.IsGeneric(component.SectionConsumes))
	assert.Equal(t, []string{"images", "captions"}, write.Spec.Consumes().Names())
	assert.Equal(t, schema.MustOf("binary"), write.Spec.Consumes().Get("images").Type)

	// The spec added to the pipeline isn't modified.
	assert.True(t, p.Ops()[1].Spec.IsGeneric(component.SectionConsumes))
}

func TestGenericConsumesWithoutPreviousComponent(t *testing.T) {
	_, err := newPipeline().Add(Op{Spec: mustSpec(t, writeSpec)}).Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)
	assert.ErrorContains(t, err, "no previous component")

	compiled, err := newPipeline().Add(Op{
		Spec: mustSpec(t, writeSpec),
		Consumes: []FieldMapping{
			{Field: "caption", Column: "text", Type: typeOf(t, "string")},
		},
	}).Finalize()
	assert.NoError(t, err)

	write := compiled.Op("Write to file")
	assert.False(t, write.Spec.IsGeneric(component.SectionConsumes))
	assert.Equal(t, []string{"caption"}, write.Spec.Consumes().Names())
	assert.Equal(t, []string{"text"}, compiled.Schema.Names())
}

func TestGenericConsumesExplicitMapping(t *testing.T) {
	compiled, err := newPipeline().
		Add(Op{Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/data"}}).
		Add(Op{
			Spec:     mustSpec(t, writeSpec),
			Consumes: []FieldMapping{{Field: "text", Column: "captions"}},
		}).
		Finalize()
	assert.NoError(t, err)

	write := compiled.Op("Write to file")
	assert.Equal(t, []string{"text"}, write.Spec.Consumes().Names())
	assert.Equal(t, "captions", write.Consumes[0].Column)

	_, err = newPipeline().
		Add(Op{Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/data"}}).
		Add(Op{
			Spec:     mustSpec(t, writeSpec),
			Consumes: []FieldMapping{{Field: "text", Column: "captions", Type: typeOf(t, "large_string")}},
		}).
		Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)
	assert.ErrorContains(t, err, `type large_string conflicts with the type string of column "captions"`)

	_, err = newPipeline().
		Add(Op{
			Spec:     mustSpec(t, writeSpec),
			Consumes: []FieldMapping{{Field: "text"}},
		}).
		Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)
	assert.ErrorContains(t, err, "the mapping has no type")
}

func TestGenericProduces(t *testing.T) {
	_, err := newPipeline().Add(Op{Spec: mustSpec(t, loadGenericSpec)}).Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)
	assert.ErrorContains(t, err, "generic produces requires an explicit mapping")

	_, err = newPipeline().Add(Op{
		Spec:     mustSpec(t, loadGenericSpec),
		Produces: []FieldMapping{{Field: "text"}},
	}).Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)
	assert.ErrorContains(t, err, "a type is required")

	compiled, err := newPipeline().
		Add(Op{
			Spec: mustSpec(t, loadGenericSpec),
			Produces: []FieldMapping{
				{Field: "text", Type: typeOf(t, "string")},
				{Field: "score", Type: typeOf(t, "float64")},
			},
		}).
		Add(Op{Spec: mustSpec(t, embedTextSpec)}).
		Finalize()
	assert.NoError(t, err)

	load := compiled.Op("Load from files")
	assert.False(t, load.Spec.IsGeneric(component.SectionProduces))
	assert.Equal(t, []string{"text", "score"}, load.Spec.Produces().Names())
	assert.Equal(t, []string{"text", "score", "embeddings"}, compiled.Schema.Names())
}

func TestGenericProducesConflict(t *testing.T) {
	_, err := newPipeline().
		Add(Op{Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/data"}}).
		Add(Op{
			Spec:     mustSpec(t, loadGenericSpec),
			Produces: []FieldMapping{{Field: "captions", Type: typeOf(t, "binary")}},
		}).
		Finalize()

	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)

	var defErr *DefinitionError
	assert.ErrorAs(t, err, &defErr)
	assert.Equal(t, "Load from files", defErr.Op)
	assert.Equal(t, component.SectionProduces, defErr.Section)
	assert.Equal(t, "captions", defErr.Field)
}

func TestColumnMappedTwice(t *testing.T) {
	_, err := newPipeline().
		Add(Op{
			Spec: mustSpec(t, loadGenericSpec),
			Produces: []FieldMapping{
				{Field: "a", Column: "x", Type: typeOf(t, "string")},
				{Field: "b", Column: "x", Type: typeOf(t, "int64")},
			},
		}).
		Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)
	assert.ErrorContains(t, err, `produces field "b": column "x" is already mapped by field "a"`)

	_, err = newPipeline().
		Add(Op{
			Spec:      mustSpec(t, loadImagesSpec),
			Arguments: map[string]any{"directory": "/data"},
			Produces:  []FieldMapping{{Field: "captions", Column: "images"}},
		}).
		Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)
	assert.ErrorContains(t, err, `column "images" is already mapped by field "images"`)

	_, err = newPipeline().
		Add(Op{Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/data"}}).
		Add(Op{
			Spec: mustSpec(t, writeSpec),
			Consumes: []FieldMapping{
				{Field: "text", Column: "captions"},
				{Field: "caption", Column: "captions"},
			},
		}).
		Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)
	assert.ErrorContains(t, err, `consumes field "caption": column "captions" is already mapped by field "text"`)
}

func TestFixedConsumes(t *testing.T) {
	_, err := newPipeline().Add(Op{Spec: mustSpec(t, embedTextSpec)}).Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)
	assert.ErrorContains(t, err, `consumes field "text": column "text" doesn't exist in the dataset`)

	compiled, err := newPipeline().
		Add(Op{Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/data"}}).
		Add(Op{
			Spec:     mustSpec(t, embedTextSpec),
			Consumes: []FieldMapping{{Field: "text", Column: "captions"}},
		}).
		Finalize()
	assert.NoError(t, err)
	assert.Equal(t, "captions", compiled.Op("Embed text").Consumes[0].Column)

	_, err = newPipeline().
		Add(Op{Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/data"}}).
		Add(Op{
			Spec:     mustSpec(t, embedTextSpec),
			Consumes: []FieldMapping{{Field: "text", Column: "images"}},
		}).
		Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)
	assert.ErrorContains(t, err, `expected type string but column "images" has type binary`)

	_, err = newPipeline().
		Add(Op{Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/data"}}).
		Add(Op{
			Spec:     mustSpec(t, embedTextSpec),
			Consumes: []FieldMapping{{Field: "caption", Column: "captions"}},
		}).
		Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)
	assert.ErrorContains(t, err, "not declared by the component")
}

func TestProducesAlias(t *testing.T) {
	compiled, err := newPipeline().
		Add(Op{
			Spec:      mustSpec(t, loadImagesSpec),
			Arguments: map[string]any{"directory": "/data"},
			Produces:  []FieldMapping{{Field: "captions", Column: "alt_text"}},
		}).
		Finalize()
	assert.NoError(t, err)

	assert.Equal(t, []string{"images", "alt_text"}, compiled.Schema.Names())
	assert.Equal(t, []string{"images", "captions"}, compiled.Op("Load images").Spec.Produces().Names())
}

func TestProducesOverwrite(t *testing.T) {
	overwrite := `
name: Caption again
description: Replaces captions
image: caption:latest
consumes:
  images: binary
produces:
  captions: large_string
`

	compiled, err := newPipeline().
		Add(Op{Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/data"}}).
		Add(Op{Spec: mustSpec(t, overwrite)}).
		Finalize()
	assert.NoError(t, err)

	assert.Equal(t, []string{"images", "captions"}, compiled.Schema.Names())
	assert.Equal(t, schema.MustOf("large_string"), compiled.Schema.Get("captions").Type)
}

func TestPreviousIndex(t *testing.T) {
	compiled, err := newPipeline().
		Add(Op{Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/data"}}).
		Add(Op{Spec: mustSpec(t, dedupSpec)}).
		Finalize()
	assert.NoError(t, err)

	assert.Equal(t, []string{"images", "captions", "original_id"}, compiled.Schema.Names())
	assert.Equal(t, schema.MustOf("string"), compiled.Schema.Get("original_id").Type)
}

func TestArguments(t *testing.T) {
	tests := []struct {
		name      string
		arguments map[string]any
		message   string
	}{
		{
			name:      "missing required",
			arguments: map[string]any{"recursive": false},
			message:   `missing required argument "directory"`,
		},
		{
			name:      "unknown",
			arguments: map[string]any{"directory": "/data", "depth": 2},
			message:   `unknown argument "depth"`,
		},
		{
			name:      "runtime argument",
			arguments: map[string]any{"directory": "/data", "cache": false},
			message:   `unknown argument "cache"`,
		},
		{
			name:      "wrong type",
			arguments: map[string]any{"directory": "/data", "recursive": "yes"},
			message:   `argument "recursive": yes is not a valid bool`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := newPipeline().Add(Op{Spec: mustSpec(t, loadImagesSpec), Arguments: test.arguments}).Finalize()
			assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)
			assert.ErrorContains(t, err, test.message)
		})
	}
}

func TestInvalidPipelines(t *testing.T) {
	_, err := newPipeline().Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)

	_, err = New("", zerolog.Nop()).Add(Op{Spec: mustSpec(t, loadGenericSpec)}).Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)

	_, err = newPipeline().Add(Op{Name: "load"}).Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)
	assert.ErrorContains(t, err, "component spec is required")

	_, err = newPipeline().
		Add(Op{Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/a"}}).
		Add(Op{Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/b"}}).
		Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)
	assert.ErrorContains(t, err, "duplicate component name")

	_, err = newPipeline().
		Add(Op{Name: "Load text", Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/a"}}).
		Add(Op{Name: "load_text", Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/b"}}).
		Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)
	assert.ErrorContains(t, err, `component "load_text": component name collides with "Load text"`)

	_, err = newPipeline().
		Add(Op{Name: "!!!", Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/a"}}).
		Finalize()
	assert.ErrorIs(t, err, ErrInvalidPipelineDefinition)
	assert.ErrorContains(t, err, "component name has no letters or digits")

	_, err = newPipeline().
		Add(Op{Name: "a", Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/a"}}).
		Add(Op{Name: "b", Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/b"}}).
		Finalize()
	assert.NoError(t, err)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	_, err := New("logged", logger).
		Add(Op{Spec: mustSpec(t, loadImagesSpec), Arguments: map[string]any{"directory": "/data"}}).
		Add(Op{Spec: mustSpec(t, writeSpec)}).
		Finalize()
	assert.NoError(t, err)

	assert.Contains(t, buf.String(), `"pipeline":"logged"`)
	assert.Contains(t, buf.String(), "resolved generic consumes from the previous component")
	assert.Contains(t, buf.String(), "pipeline finalized")
}

func TestDefinitionError(t *testing.T) {
	err := definitionErrorf("Embed text", component.SectionConsumes, "text", "missing")
	assert.Equal(t, `invalid pipeline definition: component "Embed text": consumes field "text": missing`, err.Error())

	err = &DefinitionError{Message: "empty"}
	assert.Equal(t, "invalid pipeline definition: empty", err.Error())
}
