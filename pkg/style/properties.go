package style

import (
	"iter"
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/stylegraph/pkg/errors"
)

// Well-known property names read by the preview renderer. Hosts are free to
// use any other names.
const (
	PropFill        = "fill"
	PropBorderColor = "border.color"
	PropBorderWidth = "border.width"
	PropShape       = "shape"
	PropFontSize    = "font.size"
	PropLineColor   = "line.color"
	PropLineWidth   = "line.width"
	PropDashed      = "dashed"
)

// Properties is an insertion-ordered property bag. The zero value is an
// empty bag ready to use.
type Properties struct {
	keys   []string
	values map[string]Value
}

// Set stores a value under name. Setting an existing name keeps its
// original position. Floats must be finite so every codec can carry them.
func (p *Properties) Set(name string, v Value) error {
	if err := errors.ValidatePropertyName(name); err != nil {
		return err
	}
	if !v.IsValid() {
		return errors.New(errors.ErrCodeInvalidInput, "property %q: invalid value", name)
	}
	if f, ok := v.AsFloat(); ok && v.Type() == TypeFloat && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return errors.New(errors.ErrCodeInvalidInput, "property %q: float must be finite, got %v", name, f)
	}
	if p.values == nil {
		p.values = make(map[string]Value)
	}
	if _, exists := p.values[name]; !exists {
		p.keys = append(p.keys, name)
	}
	p.values[name] = v
	return nil
}

// Get returns the value stored under name.
func (p *Properties) Get(name string) (Value, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Delete removes name from the bag and reports whether it was present.
func (p *Properties) Delete(name string) bool {
	if _, ok := p.values[name]; !ok {
		return false
	}
	delete(p.values, name)
	p.keys = slices.DeleteFunc(p.keys, func(k string) bool { return k == name })
	return true
}

// Len returns the number of properties.
func (p *Properties) Len() int { return len(p.keys) }

// Keys returns the property names in insertion order.
func (p *Properties) Keys() []string { return slices.Clone(p.keys) }

// All iterates over the properties in insertion order.
func (p *Properties) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range p.keys {
			if !yield(k, p.values[k]) {
				return
			}
		}
	}
}

// Clone returns an independent copy of the bag.
func (p *Properties) Clone() Properties {
	return Properties{keys: slices.Clone(p.keys), values: maps.Clone(p.values)}
}

// Equal reports whether both bags hold the same entries in the same order.
func (p *Properties) Equal(o *Properties) bool {
	if !slices.Equal(p.keys, o.keys) {
		return false
	}
	for _, k := range p.keys {
		if p.values[k] != o.values[k] {
			return false
		}
	}
	return true
}
