package document

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/roach88/vantage/internal/expr"
	"github.com/roach88/vantage/internal/jsonwire"
	"github.com/roach88/vantage/internal/record"
)

// ParseYAML builds an expression from a YAML or JSON document.
// filename is only used in error positions.
func ParseYAML(data []byte, filename string, opts ...Option) (expr.Expression[jsonwire.Value], error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return expr.Expression[jsonwire.Value]{}, errorf(ErrCodeParseFailed, Position{File: filename}, "%v", err)
	}
	return FromYAML(&root, filename, opts...)
}

// FromYAML builds an expression from an already parsed YAML node.
// Used when a document is embedded in a larger file.
func FromYAML(n *yaml.Node, filename string, opts ...Option) (expr.Expression[jsonwire.Value], error) {
	tree, err := yamlNode(n, filename)
	if err != nil {
		return expr.Expression[jsonwire.Value]{}, err
	}
	return newBuilder(opts).build(tree)
}

// ValueFromYAML converts a parsed YAML node to a JSON wire value,
// keeping mapping order and number literals.
func ValueFromYAML(n *yaml.Node, filename string) (jsonwire.Value, error) {
	tree, err := yamlNode(n, filename)
	if err != nil {
		return nil, err
	}
	return tree.value()
}

// yamlNode converts a yaml.v3 node, following aliases.
func yamlNode(n *yaml.Node, filename string) (*node, error) {
	pos := Position{File: filename, Line: n.Line, Column: n.Column}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, errorf(ErrCodeTemplate, pos, "empty document")
		}
		return yamlNode(n.Content[0], filename)

	case yaml.AliasNode:
		return yamlNode(n.Alias, filename)

	case yaml.MappingNode:
		out := &node{kind: kindObject, fields: record.WithCapacity[*node](len(n.Content) / 2), pos: pos}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			child, err := yamlNode(val, filename)
			if err != nil {
				return nil, err
			}
			out.fields.Set(key.Value, child)
		}
		return out, nil

	case yaml.SequenceNode:
		out := &node{kind: kindList, items: make([]*node, 0, len(n.Content)), pos: pos}
		for _, item := range n.Content {
			child, err := yamlNode(item, filename)
			if err != nil {
				return nil, err
			}
			out.items = append(out.items, child)
		}
		return out, nil

	case yaml.ScalarNode:
		v, err := yamlScalar(n)
		if err != nil {
			return nil, errorf(ErrCodeParseFailed, pos, "%v", err)
		}
		return &node{kind: kindScalar, scalar: v, pos: pos}, nil
	}

	return nil, errorf(ErrCodeParseFailed, pos, "unsupported YAML node kind %d", n.Kind)
}

// yamlScalar decodes a scalar by its resolved tag.
// Numbers that are valid JSON keep their literal text.
func yamlScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		err := n.Decode(&b)
		return b, err
	case "!!int":
		if json.Valid([]byte(n.Value)) {
			return json.Number(n.Value), nil
		}
		var i int64
		err := n.Decode(&i)
		return i, err
	case "!!float":
		if json.Valid([]byte(n.Value)) {
			return json.Number(n.Value), nil
		}
		var f float64
		err := n.Decode(&f)
		return f, err
	default:
		return n.Value, nil
	}
}
