package stylesheet

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/style"
)

func parseYAML(data []byte) (*Sheet, error) {
	var s Sheet
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse YAML stylesheet")
	}
	return &s, nil
}

// UnmarshalYAML reads a mapping node pair by pair so document order is kept.
func (l *PropertyList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: properties must be a mapping", node.Line)
	}
	out := make(PropertyList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: property %q must be a scalar", val.Line, key.Value)
		}
		var raw any
		if err := val.Decode(&raw); err != nil {
			return fmt.Errorf("line %d: property %q: %w", val.Line, key.Value, err)
		}
		v, err := style.ValueOf(raw)
		if err != nil {
			return fmt.Errorf("line %d: property %q: %w", val.Line, key.Value, err)
		}
		out = append(out, Property{Name: key.Value, Value: v})
	}
	*l = out
	return nil
}

// MarshalYAML writes properties as a mapping in list order. Colors are
// written as quoted "#rrggbb" strings.
func (l PropertyList) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range l {
		val := &yaml.Node{}
		if c, ok := p.Value.AsColor(); ok {
			val.Kind = yaml.ScalarNode
			val.Tag = "!!str"
			val.Value = c.String()
			val.Style = yaml.DoubleQuotedStyle
		} else if err := val.Encode(p.Value.Interface()); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Name}, val)
	}
	return node, nil
}

// WriteYAML writes the stylesheet as a YAML document.
func (s *Sheet) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode stylesheet: %w", err)
	}
	return enc.Close()
}
