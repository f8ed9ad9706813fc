package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/koskimas/fondant/internal/schema"
	assert "github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	cfg, err := Read(filepath.Join("testdata", FileName))
	assert.NoError(t, err)

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "caption pipeline", cfg.Pipeline.Name)
	assert.Equal(t, "/data/base", cfg.Pipeline.BasePath)
	assert.Len(t, cfg.Components, 3)
	assert.Equal(t, "build", cfg.Output.Path)
	assert.Equal(t, "internal/bindings", cfg.Bindings.Package.Path)

	load := cfg.Components[0]
	assert.Equal(t, map[string]any{"directory": "/images"}, load.Arguments)
	assert.Empty(t, load.Consumes)

	embed := cfg.Components[1]
	assert.Equal(t, "embed", embed.Name)
	assert.Equal(t, Mappings{{Field: "text", Column: "captions"}}, embed.Consumes)
	assert.Equal(t, Mappings{{Field: "embeddings", Column: "caption_embeddings"}}, embed.Produces)

	write := cfg.Components[2]
	assert.Len(t, write.Consumes, 2)
	assert.Equal(t, "images", write.Consumes[0].Field)
	assert.Equal(t, "vectors", write.Consumes[1].Field)
	assert.True(t, write.Consumes[1].Type.Equal(schema.List(schema.MustOf("float32"))))
}

func TestReadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		message string
	}{
		{
			name:    "version",
			doc:     "version: 2\npipeline: {name: p}\noutput: {path: out}",
			message: "unsupported version 2",
		},
		{
			name:    "pipeline name",
			doc:     "version: 1\noutput: {path: out}",
			message: "pipeline.name is required",
		},
		{
			name:    "output path",
			doc:     "version: 1\npipeline: {name: p}",
			message: "output.path is required",
		},
		{
			name:    "component spec",
			doc:     "version: 1\npipeline: {name: p}\noutput: {path: out}\ncomponents: [{name: a}]",
			message: "components[0].spec is required",
		},
		{
			name:    "mapping list",
			doc:     "version: 1\npipeline: {name: p}\noutput: {path: out}\ncomponents: [{spec: a.yaml, consumes: [a]}]",
			message: "expected a mapping of fields",
		},
		{
			name:    "mapping type",
			doc:     "version: 1\npipeline: {name: p}\noutput: {path: out}\ncomponents: [{spec: a.yaml, consumes: {a: {type: text}}}]",
			message: `unknown type "text"`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), FileName)
			assert.NoError(t, os.WriteFile(configPath, []byte(test.doc), 0600))

			_, err := Read(configPath)
			assert.ErrorContains(t, err, test.message)
		})
	}

	_, err := Read(filepath.Join(t.TempDir(), FileName))
	assert.ErrorContains(t, err, "failed to read config file")
}
