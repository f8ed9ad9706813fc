package yamlflow

import (
	"strings"
	"testing"

	assert "github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFormat(t *testing.T) {
	var node yaml.Node
	assert.NoError(t, yaml.Unmarshal([]byte(`
# comment
images: binary
embeddings:
  type: list
  items: float32
tags:
  - a
  - b
`), &node))

	assert.Equal(t, "{images: binary, embeddings: {type: list, items: float32}, tags: [a, b]}", Format(&node))
	assert.Equal(t, yaml.MappingNode, node.Content[0].Kind)
	assert.NotEqual(t, yaml.FlowStyle, node.Content[0].Style)
}

func TestFormatLongDocument(t *testing.T) {
	fields := make(map[string]string)
	for _, name := range []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliett"} {
		fields[name+"_field_with_a_long_name"] = "large_string"
	}

	out, err := FormatValue(fields)
	assert.NoError(t, err)
	assert.NotContains(t, out, "\n")

	var parsed map[string]string
	assert.NoError(t, yaml.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, fields, parsed)
	assert.True(t, strings.HasPrefix(out, "{alpha_field_with_a_long_name: large_string"))
}
