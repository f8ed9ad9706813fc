// Package yamlflow renders YAML documents on a single line using flow style.
package yamlflow

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format renders `node` as a single line of flow style YAML. Comments are
// dropped. The node itself is not modified.
func Format(node *yaml.Node) string {
	flow := clone(node)
	setFlowStyle(flow)

	data, err := yaml.Marshal(flow)
	if err != nil {
		return fmt.Sprintf("<%s>", err)
	}

	// Long flow collections may still be wrapped by the emitter.
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}

	return strings.Join(lines, " ")
}

// FormatValue encodes `v` into a node and renders it using Format.
func FormatValue(v any) (string, error) {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return "", err
	}

	return Format(&node), nil
}

func setFlowStyle(node *yaml.Node) {
	switch node.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		node.Style = yaml.FlowStyle
	case yaml.ScalarNode:
		node.Style &^= yaml.LiteralStyle | yaml.FoldedStyle
	}

	node.HeadComment, node.LineComment, node.FootComment = "", "", ""

	for _, c := range node.Content {
		setFlowStyle(c)
	}
}

func clone(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nil
	}

	if node.Kind == yaml.AliasNode {
		return clone(node.Alias)
	}

	c := *node
	c.Anchor = ""
	c.Alias = nil
	c.Content = make([]*yaml.Node, len(node.Content))

	for i, child := range node.Content {
		c.Content[i] = clone(child)
	}

	return &c
}
