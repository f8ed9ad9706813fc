package test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/koskimas/fondant/internal/cmd"
	"github.com/koskimas/fondant/internal/component"
	"github.com/koskimas/fondant/internal/kubeflow"
	"github.com/koskimas/fondant/internal/pipeline"
	"github.com/rs/zerolog"
	assert "github.com/stretchr/testify/require"
)

func TestCaptionPipeline(t *testing.T) {
	wd := copyFixture(t, "caption_pipeline")

	var logs bytes.Buffer
	err := cmd.Run(cmd.Settings{
		WorkingDir: wd,
		Logger:     zerolog.New(&logs),
	})
	assert.NoError(t, err)
	assert.Contains(t, logs.String(), "pipeline compiled")

	build := filepath.Join(wd, "build")

	for _, name := range []string{"load-images", "embed", "write-to-file"} {
		assert.FileExists(t, filepath.Join(build, "components", name+".yaml"))
		assert.FileExists(t, filepath.Join(build, "kubeflow", name+".yaml"))
	}

	writer, err := component.FromFile(filepath.Join(build, "components", "write-to-file.yaml"))
	assert.NoError(t, err)
	assert.False(t, writer.IsGeneric(component.SectionConsumes))
	assert.Equal(t, []string{"images", "vectors"}, writer.Consumes().Names())
	assert.Equal(t, "list<float32>", writer.Consumes().Get("vectors").Type.String())

	descriptor, err := kubeflow.FromFile(filepath.Join(build, "kubeflow", "write-to-file.yaml"))
	assert.NoError(t, err)

	params := descriptor.Parameters()
	consumes, ok := params["consumes"].DefaultValue.Get()
	assert.True(t, ok)
	assert.Equal(t, "{images: binary, vectors: {type: list, items: float32}}", consumes)
	assert.Equal(t, kubeflow.ParameterTypeString, params["path"].ParameterType)
	assert.False(t, params["path"].IsOptional)

	embed, err := kubeflow.FromFile(filepath.Join(build, "kubeflow", "embed.yaml"))
	assert.NoError(t, err)

	batchSize, ok := embed.Parameters()["batch_size"].DefaultValue.Get()
	assert.True(t, ok)
	assert.Equal(t, 8, batchSize)

	assert.Equal(t, `create table "fondant"."caption_pipeline" (
  "images" bytea,
  "captions" text,
  "caption_embeddings" float4[]
);
`, readFile(t, build, "dataset.sql"))

	bindings := readFile(t, wd, "internal", "bindings.go")
	assert.Contains(t, bindings, "package bindings")
	assert.Contains(t, bindings, "func ArgumentsEmbed() EmbedArgs")
	assert.Contains(t, bindings, "Vectors []float32 `json:\"caption_embeddings\"`")
}

func TestCompileIsDeterministic(t *testing.T) {
	first := copyFixture(t, "caption_pipeline")
	second := copyFixture(t, "caption_pipeline")

	assert.NoError(t, cmd.Run(cmd.Settings{WorkingDir: first, Logger: zerolog.Nop()}))
	assert.NoError(t, cmd.Run(cmd.Settings{WorkingDir: second, Logger: zerolog.Nop()}))

	for _, name := range []string{"load-images", "embed", "write-to-file"} {
		assert.Equal(t,
			readFile(t, first, "build", "kubeflow", name+".yaml"),
			readFile(t, second, "build", "kubeflow", name+".yaml"),
		)
	}

	assert.Equal(t, readFile(t, first, "internal", "bindings.go"), readFile(t, second, "internal", "bindings.go"))
}

func TestInvalidPipeline(t *testing.T) {
	err := cmd.Run(cmd.Settings{
		WorkingDir: copyFixture(t, "invalid_pipeline"),
		Logger:     zerolog.Nop(),
	})

	assert.ErrorIs(t, err, pipeline.ErrInvalidPipelineDefinition)
	assert.ErrorContains(t, err, "no previous component")
}
