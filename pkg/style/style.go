package style

import (
	"fmt"

	"github.com/matzehuels/stylegraph/pkg/errors"
)

// ID identifies a style within a Manager. Valid ids are strictly positive.
type ID int32

// NoStyle is returned by [Manager.Resolve] when an entity has neither an
// explicit style nor a default for its meta-target. It is a sentinel, not an
// error: callers fall back to a built-in visual style.
const NoStyle ID = 0

// Kind selects between node and edge styling.
type Kind uint8

const (
	KindNode Kind = iota
	KindEdge
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindEdge:
		return "edge"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is KindNode or KindEdge.
func (k Kind) Valid() bool { return k == KindNode || k == KindEdge }

func (k Kind) validate() error {
	if !k.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "unknown kind %d (want node or edge)", uint8(k))
	}
	return nil
}

// ParseKind parses "node" or "edge".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "node", "nodes":
		return KindNode, nil
	case "edge", "edges":
		return KindEdge, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown kind %q (want node or edge)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Style is a named set of visual properties plus the topology entities it
// currently applies to.
//
// NodeIDs and EdgeIDs should be changed through [Manager.Attach] and
// [Manager.Detach] so subscribers see the change.
type Style struct {
	ID         ID
	MetaTarget string // semantic type this style is designed for
	Name       string
	Target     string // caller-defined selector or category tag
	Properties Properties
	NodeIDs    IDSet
	EdgeIDs    IDSet
}

// Entities returns the id set for the given kind.
func (s *Style) Entities(kind Kind) *IDSet {
	if kind == KindEdge {
		return &s.EdgeIDs
	}
	return &s.NodeIDs
}

// Clone returns a deep copy of the style.
func (s *Style) Clone() *Style {
	return &Style{
		ID:         s.ID,
		MetaTarget: s.MetaTarget,
		Name:       s.Name,
		Target:     s.Target,
		Properties: s.Properties.Clone(),
		NodeIDs:    s.NodeIDs.Clone(),
		EdgeIDs:    s.EdgeIDs.Clone(),
	}
}

// Entity is a node or edge whose style can be resolved.
type Entity interface {
	// AssignedStyle returns the explicitly assigned style id, or NoStyle.
	AssignedStyle() ID
	// MetaTarget returns the semantic type name used for default lookup.
	MetaTarget() string
}

// Ref is a minimal Entity built from plain values.
type Ref struct {
	Style ID
	Meta  string
}

func (r Ref) AssignedStyle() ID  { return r.Style }
func (r Ref) MetaTarget() string { return r.Meta }
