// Package stylesheet loads declarative style definitions and applies them to
// a style manager.
//
// A stylesheet lists styles with their properties and the default style per
// meta-target. YAML and TOML documents are supported; property order is
// taken from the document so it survives into the encoded graph.
//
//	styles:
//	  - id: 1
//	    meta_target: Task
//	    name: Default Task
//	    properties:
//	      fill: "#ff8800"
//	      shape: box
//	      border.width: 2
//	defaults:
//	  node:
//	    Task: 1
package stylesheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/style"
)

// Sheet is a parsed stylesheet.
type Sheet struct {
	Styles   []StyleDef `yaml:"styles"`
	Defaults Defaults   `yaml:"defaults,omitempty"`
}

// StyleDef declares one style. A zero ID asks Apply to allocate one.
type StyleDef struct {
	ID         style.ID     `yaml:"id,omitempty"`
	MetaTarget string       `yaml:"meta_target,omitempty"`
	Name       string       `yaml:"name,omitempty"`
	Target     string       `yaml:"target,omitempty"`
	Properties PropertyList `yaml:"properties,omitempty"`
}

// Property is a named value in document order.
type Property struct {
	Name  string
	Value style.Value
}

// PropertyList keeps properties in document order.
type PropertyList []Property

// Defaults maps meta-targets to style ids per kind.
type Defaults struct {
	Node map[string]style.ID `yaml:"node,omitempty"`
	Edge map[string]style.ID `yaml:"edge,omitempty"`
}

// For returns the default table for kind.
func (d Defaults) For(kind style.Kind) map[string]style.ID {
	if kind == style.KindEdge {
		return d.Edge
	}
	return d.Node
}

// Format identifies a stylesheet document syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the syntax from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported stylesheet extension %q", filepath.Ext(path))
}

// Load reads and parses a stylesheet file.
func Load(path string) (*Sheet, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read stylesheet %s", path)
	}
	return Parse(data, format)
}

// Parse parses a stylesheet document and validates it.
func Parse(data []byte, format Format) (*Sheet, error) {
	var (
		s   *Sheet
		err error
	)
	switch format {
	case FormatYAML:
		s, err = parseYAML(data)
	case FormatTOML:
		s, err = parseTOML(data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported stylesheet format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks property names, duplicate ids and meta-targets. It does not
// check default references, which may point at styles already in a manager.
func (s *Sheet) Validate() error {
	seen := make(map[style.ID]bool)
	for i, def := range s.Styles {
		if def.ID < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "style #%d: negative id %d", i+1, def.ID)
		}
		if def.ID != style.NoStyle {
			if seen[def.ID] {
				return errors.New(errors.ErrCodeDuplicateID, "style %d declared twice", def.ID)
			}
			seen[def.ID] = true
		}
		names := make(map[string]bool)
		for _, p := range def.Properties {
			if err := errors.ValidatePropertyName(p.Name); err != nil {
				return fmt.Errorf("style #%d: %w", i+1, err)
			}
			if names[p.Name] {
				return errors.New(errors.ErrCodeInvalidInput, "style #%d: property %q declared twice", i+1, p.Name)
			}
			names[p.Name] = true
		}
	}
	for _, kind := range []style.Kind{style.KindNode, style.KindEdge} {
		for meta := range s.Defaults.For(kind) {
			if err := errors.ValidateMetaTarget(meta); err != nil {
				return err
			}
		}
	}
	return nil
}

// FromManager builds a stylesheet describing every style and default of m.
// Entity assignments are not part of a stylesheet.
func FromManager(m *style.Manager) *Sheet {
	s := &Sheet{}
	for _, st := range m.Styles() {
		def := StyleDef{ID: st.ID, MetaTarget: st.MetaTarget, Name: st.Name, Target: st.Target}
		for name, v := range st.Properties.All() {
			def.Properties = append(def.Properties, Property{Name: name, Value: v})
		}
		s.Styles = append(s.Styles, def)
	}
	if d := m.Defaults(style.KindNode); len(d) > 0 {
		s.Defaults.Node = d
	}
	if d := m.Defaults(style.KindEdge); len(d) > 0 {
		s.Defaults.Edge = d
	}
	return s
}
