// Package document turns normalized trees into YAML text and wraps the
// front matter and statblock in the category's markdown layout.
package document

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

const indent = 2

// leadingIndicators cannot start a plain scalar.
const leadingIndicators = "-?:,[]{}#&*!|>'\"%@`"

// Serialize renders obj as block YAML in key order. Strings that cannot be
// written plain are double-quoted; multi-line strings use literal style.
// Trailing whitespace is trimmed and an empty object renders as "".
func Serialize(obj *tree.Object) (string, error) {
	if obj == nil {
		return "", errors.InvalidArgument("object is required")
	}
	if obj.Len() == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(toNode(obj)); err != nil {
		return "", errors.Wrap(err, "failed to encode yaml")
	}
	if err := enc.Close(); err != nil {
		return "", errors.Wrap(err, "failed to flush yaml")
	}
	return strings.TrimRight(buf.String(), " \t\r\n"), nil
}

func toNode(v tree.Value) *yaml.Node {
	switch v.Kind() {
	case tree.KindObject:
		obj, _ := tree.AsObject(v)
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		obj.Each(func(key string, value tree.Value) {
			node.Content = append(node.Content, stringNode(key), toNode(value))
		})
		return node
	case tree.KindArray:
		arr, _ := tree.AsArray(v)
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range arr.Items() {
			node.Content = append(node.Content, toNode(item))
		}
		return node
	case tree.KindString:
		return stringNode(tree.Text(v))
	case tree.KindInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: tree.Text(v)}
	case tree.KindFloat:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: tree.Text(v)}
	case tree.KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: tree.Text(v)}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func stringNode(s string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	switch {
	case strings.Contains(s, "\n"):
		node.Style = yaml.LiteralStyle
	case needsQuotes(s):
		node.Style = yaml.DoubleQuotedStyle
	}
	return node
}

// needsQuotes reports whether s would be read back as something other than
// the same string if written plain.
func needsQuotes(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return true
	}
	if strings.ContainsAny(s[:1], leadingIndicators) {
		return true
	}
	if strings.Contains(s, ": ") || strings.Contains(s, " #") || strings.HasSuffix(s, ":") || strings.ContainsRune(s, '\t') {
		return true
	}
	var decoded interface{}
	if err := yaml.Unmarshal([]byte(s), &decoded); err != nil {
		return true
	}
	str, ok := decoded.(string)
	return !ok || str != s
}
