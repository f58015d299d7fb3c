package stylesheet

import (
	"maps"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/style"
)

type tomlSheet struct {
	Styles   []tomlStyle `toml:"styles"`
	Defaults struct {
		Node map[string]int32 `toml:"node"`
		Edge map[string]int32 `toml:"edge"`
	} `toml:"defaults"`
}

type tomlStyle struct {
	ID         int32          `toml:"id"`
	MetaTarget string         `toml:"meta_target"`
	Name       string         `toml:"name"`
	Target     string         `toml:"target"`
	Properties map[string]any `toml:"properties"`
}

func parseTOML(data []byte) (*Sheet, error) {
	var doc tomlSheet
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse TOML stylesheet")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown stylesheet key %q", undecoded[0].String())
	}

	order := propertyOrder(md, len(doc.Styles))
	s := &Sheet{}
	for i, ts := range doc.Styles {
		def := StyleDef{ID: style.ID(ts.ID), MetaTarget: ts.MetaTarget, Name: ts.Name, Target: ts.Target}
		for _, name := range completeOrder(order[i], ts.Properties) {
			v, err := style.ValueOf(ts.Properties[name])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "style #%d property %q", i+1, name)
			}
			def.Properties = append(def.Properties, Property{Name: name, Value: v})
		}
		s.Styles = append(s.Styles, def)
	}
	s.Defaults.Node = toIDs(doc.Defaults.Node)
	s.Defaults.Edge = toIDs(doc.Defaults.Edge)
	return s, nil
}

// propertyOrder recovers document order of property keys per [[styles]]
// table. Keys are reported in document order and array tables repeat their
// header key, which marks the start of the next style.
func propertyOrder(md toml.MetaData, n int) [][]string {
	order := make([][]string, n)
	idx := -1
	for _, key := range md.Keys() {
		switch {
		case len(key) == 1 && key[0] == "styles":
			idx++
		case len(key) == 3 && key[0] == "styles" && key[1] == "properties":
			if idx >= 0 && idx < n {
				order[idx] = append(order[idx], key[2])
			}
		}
	}
	return order
}

// completeOrder appends, sorted, any property missing from the recovered
// order, so every property is kept even if key metadata is incomplete.
func completeOrder(order []string, props map[string]any) []string {
	var out []string
	seen := make(map[string]bool, len(props))
	for _, name := range order {
		if _, ok := props[name]; ok && !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}
	for _, name := range slices.Sorted(maps.Keys(props)) {
		if !seen[name] {
			out = append(out, name)
		}
	}
	return out
}

func toIDs(m map[string]int32) map[string]style.ID {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]style.ID, len(m))
	for k, v := range m {
		out[k] = style.ID(v)
	}
	return out
}
