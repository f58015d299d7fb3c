package io

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/graph"
	"github.com/matzehuels/stylegraph/pkg/style"
	"github.com/matzehuels/stylegraph/pkg/topology"
)

// Field numbers of the binary format. They are part of the format and must
// never be renumbered.
const (
	fieldGraphTopology protowire.Number = 1
	fieldGraphStyles   protowire.Number = 2

	fieldTopologyNodes  protowire.Number = 1
	fieldTopologyEdges  protowire.Number = 2
	fieldTopologyGroups protowire.Number = 3

	fieldStyledBase  protowire.Number = 1
	fieldStyledStyle protowire.Number = 2

	fieldNodeID         protowire.Number = 1
	fieldNodeMetaTarget protowire.Number = 2
	fieldNodeLabel      protowire.Number = 3
	fieldNodeMeta       protowire.Number = 4

	fieldEdgeID         protowire.Number = 1
	fieldEdgeSrc        protowire.Number = 2
	fieldEdgeDst        protowire.Number = 3
	fieldEdgeMetaTarget protowire.Number = 4
	fieldEdgeLabel      protowire.Number = 5

	fieldGroupID    protowire.Number = 1
	fieldGroupLabel protowire.Number = 2
	fieldGroupNodes protowire.Number = 3

	fieldManagerCount        protowire.Number = 1
	fieldManagerStyles       protowire.Number = 2
	fieldManagerNodeDefaults protowire.Number = 3
	fieldManagerEdgeDefaults protowire.Number = 4

	fieldStyleID         protowire.Number = 1
	fieldStyleMetaTarget protowire.Number = 2
	fieldStyleName       protowire.Number = 3
	fieldStyleTarget     protowire.Number = 4
	fieldStyleProperties protowire.Number = 5
	fieldStyleNodeIDs    protowire.Number = 6
	fieldStyleEdgeIDs    protowire.Number = 7

	fieldPropName   protowire.Number = 1
	fieldPropString protowire.Number = 2
	fieldPropInt    protowire.Number = 3
	fieldPropFloat  protowire.Number = 4
	fieldPropBool   protowire.Number = 5
	fieldPropColor  protowire.Number = 6

	fieldMapKey   protowire.Number = 1
	fieldMapValue protowire.Number = 2
)

// Encode serializes g into the binary format.
//
// The output is deterministic: the same graph always yields the same bytes.
// Nodes, edges, groups, styles, properties and id sets are written in
// insertion order; map entries are written sorted by key. The style count is
// written from the current number of styles.
func Encode(g *graph.Graph) ([]byte, error) {
	return encodeBinary(g, nil)
}

func encodeBinary(g *graph.Graph, fn ProgressFunc) ([]byte, error) {
	a := disassemble(g)
	p := a.tracker(fn)

	var topo []byte
	for _, n := range a.nodes {
		topo = appendMessage(topo, fieldTopologyNodes, encodeStyledNode(n))
		p.step()
	}
	for _, e := range a.edges {
		topo = appendMessage(topo, fieldTopologyEdges, encodeStyledEdge(e))
		p.step()
	}
	for _, gr := range a.groups {
		topo = appendMessage(topo, fieldTopologyGroups, encodeGroup(gr))
		p.step()
	}

	mgr, err := encodeManager(a, p)
	if err != nil {
		return nil, err
	}

	var out []byte
	out = appendMessage(out, fieldGraphTopology, topo)
	out = appendMessage(out, fieldGraphStyles, mgr)
	return out, nil
}

func encodeStyledNode(n styledNode) []byte {
	var base []byte
	base = appendInt32(base, fieldNodeID, int32(n.ID))
	base = appendString(base, fieldNodeMetaTarget, n.MetaTarget)
	base = appendString(base, fieldNodeLabel, n.Label)
	for _, k := range sortedKeys(n.Meta) {
		var entry []byte
		entry = appendString(entry, fieldMapKey, k)
		entry = appendString(entry, fieldMapValue, n.Meta[k])
		base = appendMessage(base, fieldNodeMeta, entry)
	}

	var b []byte
	b = appendMessage(b, fieldStyledBase, base)
	return appendInt32(b, fieldStyledStyle, int32(n.style))
}

func encodeStyledEdge(e styledEdge) []byte {
	var base []byte
	base = appendInt32(base, fieldEdgeID, int32(e.ID))
	base = appendInt32(base, fieldEdgeSrc, int32(e.From))
	base = appendInt32(base, fieldEdgeDst, int32(e.To))
	base = appendString(base, fieldEdgeMetaTarget, e.MetaTarget)
	base = appendString(base, fieldEdgeLabel, e.Label)

	var b []byte
	b = appendMessage(b, fieldStyledBase, base)
	return appendInt32(b, fieldStyledStyle, int32(e.style))
}

func encodeGroup(gr topology.Group) []byte {
	var b []byte
	b = appendInt32(b, fieldGroupID, int32(gr.ID))
	b = appendString(b, fieldGroupLabel, gr.Label)
	return appendPacked(b, fieldGroupNodes, gr.NodeIDs)
}

func encodeManager(a *assembly, p *progress) ([]byte, error) {
	var b []byte
	b = appendInt32(b, fieldManagerCount, int32(len(a.styles)))
	for _, s := range a.styles {
		sb, err := encodeStyle(s)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, fieldManagerStyles, sb)
		p.step()
	}
	b = appendDefaults(b, fieldManagerNodeDefaults, a.defaults[style.KindNode])
	b = appendDefaults(b, fieldManagerEdgeDefaults, a.defaults[style.KindEdge])
	return b, nil
}

func appendDefaults(b []byte, num protowire.Number, entries []defaultEntry) []byte {
	for _, d := range entries {
		var entry []byte
		entry = appendString(entry, fieldMapKey, d.meta)
		entry = appendInt32(entry, fieldMapValue, int32(d.id))
		b = appendMessage(b, num, entry)
	}
	return b
}

func encodeStyle(s *style.Style) ([]byte, error) {
	var b []byte
	b = appendInt32(b, fieldStyleID, int32(s.ID))
	b = appendString(b, fieldStyleMetaTarget, s.MetaTarget)
	b = appendString(b, fieldStyleName, s.Name)
	b = appendString(b, fieldStyleTarget, s.Target)
	for name, v := range s.Properties.All() {
		pb, err := encodeProperty(name, v)
		if err != nil {
			return nil, fmt.Errorf("style %d: %w", s.ID, err)
		}
		b = appendMessage(b, fieldStyleProperties, pb)
	}
	b = appendPacked(b, fieldStyleNodeIDs, s.NodeIDs.IDs())
	return appendPacked(b, fieldStyleEdgeIDs, s.EdgeIDs.IDs()), nil
}

// encodeProperty writes the name and exactly one value field. The value field
// is written even when zero so the value type survives.
func encodeProperty(name string, v style.Value) ([]byte, error) {
	var b []byte
	b = appendString(b, fieldPropName, name)
	switch v.Type() {
	case style.TypeString:
		s, _ := v.AsString()
		b = protowire.AppendTag(b, fieldPropString, protowire.BytesType)
		b = protowire.AppendString(b, s)
	case style.TypeInt:
		n, _ := v.AsInt()
		b = protowire.AppendTag(b, fieldPropInt, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(n))
	case style.TypeFloat:
		f, _ := v.AsFloat()
		b = protowire.AppendTag(b, fieldPropFloat, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(f))
	case style.TypeBool:
		x, _ := v.AsBool()
		b = protowire.AppendTag(b, fieldPropBool, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(x))
	case style.TypeColor:
		c, _ := v.AsColor()
		b = protowire.AppendTag(b, fieldPropColor, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, uint32(c))
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "property %q has no value", name)
	}
	return b, nil
}

// Decode parses the binary format into a new graph.
//
// Unknown fields are skipped. The style count on the wire is ignored and
// recomputed from the decoded styles. Malformed data, duplicate ids and
// dangling references (defaults, explicit node and edge styles, style id
// sets, edge endpoints, group members) fail with CORRUPT_GRAPH; no partial
// graph is returned.
func Decode(data []byte) (*graph.Graph, error) {
	return decodeBinary(data, nil)
}

func decodeBinary(data []byte, fn ProgressFunc) (*graph.Graph, error) {
	a := &assembly{progress: fn}
	if err := decodeGraph(a, data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptGraph, err, "malformed graph data")
	}
	return a.build()
}

func decodeGraph(a *assembly, b []byte) error {
	for f, err := range fields(b) {
		if err != nil {
			return err
		}
		switch f.num {
		case fieldGraphTopology:
			msg, err := f.bytes()
			if err != nil {
				return err
			}
			if err := decodeTopology(a, msg); err != nil {
				return fmt.Errorf("topology: %w", err)
			}
		case fieldGraphStyles:
			msg, err := f.bytes()
			if err != nil {
				return err
			}
			if err := decodeManager(a, msg); err != nil {
				return fmt.Errorf("style manager: %w", err)
			}
		}
	}
	return nil
}

func decodeTopology(a *assembly, b []byte) error {
	for f, err := range fields(b) {
		if err != nil {
			return err
		}
		if f.num < fieldTopologyNodes || f.num > fieldTopologyGroups {
			continue
		}
		msg, err := f.bytes()
		if err != nil {
			return err
		}
		switch f.num {
		case fieldTopologyNodes:
			n, err := decodeStyledNode(msg)
			if err != nil {
				return fmt.Errorf("node: %w", err)
			}
			a.nodes = append(a.nodes, n)
		case fieldTopologyEdges:
			e, err := decodeStyledEdge(msg)
			if err != nil {
				return fmt.Errorf("edge: %w", err)
			}
			a.edges = append(a.edges, e)
		case fieldTopologyGroups:
			gr, err := decodeGroup(msg)
			if err != nil {
				return fmt.Errorf("group: %w", err)
			}
			a.groups = append(a.groups, gr)
		}
	}
	return nil
}

// decodeStyled splits a Node or Edge wrapper into its base message and style.
func decodeStyled(b []byte) (base []byte, sid style.ID, err error) {
	for f, ferr := range fields(b) {
		if ferr != nil {
			return nil, 0, ferr
		}
		switch f.num {
		case fieldStyledBase:
			if base, err = f.bytes(); err != nil {
				return nil, 0, err
			}
		case fieldStyledStyle:
			v, err := f.int32()
			if err != nil {
				return nil, 0, err
			}
			sid = style.ID(v)
		}
	}
	return base, sid, nil
}

func decodeStyledNode(b []byte) (styledNode, error) {
	base, sid, err := decodeStyled(b)
	if err != nil {
		return styledNode{}, err
	}
	n := styledNode{style: sid, Node: topology.Node{Meta: topology.Metadata{}}}
	for f, err := range fields(base) {
		if err != nil {
			return styledNode{}, err
		}
		switch f.num {
		case fieldNodeID:
			v, err := f.int32()
			if err != nil {
				return styledNode{}, err
			}
			n.ID = topology.ID(v)
		case fieldNodeMetaTarget:
			if n.MetaTarget, err = f.string(); err != nil {
				return styledNode{}, err
			}
		case fieldNodeLabel:
			if n.Label, err = f.string(); err != nil {
				return styledNode{}, err
			}
		case fieldNodeMeta:
			msg, err := f.bytes()
			if err != nil {
				return styledNode{}, err
			}
			k, v, err := decodeStringEntry(msg)
			if err != nil {
				return styledNode{}, fmt.Errorf("meta: %w", err)
			}
			n.Meta[k] = v
		}
	}
	return n, nil
}

func decodeStringEntry(b []byte) (key, value string, err error) {
	for f, ferr := range fields(b) {
		if ferr != nil {
			return "", "", ferr
		}
		switch f.num {
		case fieldMapKey:
			key, err = f.string()
		case fieldMapValue:
			value, err = f.string()
		}
		if err != nil {
			return "", "", err
		}
	}
	return key, value, nil
}

func decodeStyledEdge(b []byte) (styledEdge, error) {
	base, sid, err := decodeStyled(b)
	if err != nil {
		return styledEdge{}, err
	}
	e := styledEdge{style: sid}
	for f, err := range fields(base) {
		if err != nil {
			return styledEdge{}, err
		}
		var v int32
		switch f.num {
		case fieldEdgeID, fieldEdgeSrc, fieldEdgeDst:
			if v, err = f.int32(); err != nil {
				return styledEdge{}, err
			}
		}
		switch f.num {
		case fieldEdgeID:
			e.ID = topology.ID(v)
		case fieldEdgeSrc:
			e.From = topology.ID(v)
		case fieldEdgeDst:
			e.To = topology.ID(v)
		case fieldEdgeMetaTarget:
			if e.MetaTarget, err = f.string(); err != nil {
				return styledEdge{}, err
			}
		case fieldEdgeLabel:
			if e.Label, err = f.string(); err != nil {
				return styledEdge{}, err
			}
		}
	}
	return e, nil
}

func decodeGroup(b []byte) (topology.Group, error) {
	var gr topology.Group
	for f, err := range fields(b) {
		if err != nil {
			return gr, err
		}
		switch f.num {
		case fieldGroupID:
			v, err := f.int32()
			if err != nil {
				return gr, err
			}
			gr.ID = topology.ID(v)
		case fieldGroupLabel:
			if gr.Label, err = f.string(); err != nil {
				return gr, err
			}
		case fieldGroupNodes:
			ids, err := f.int32s()
			if err != nil {
				return gr, err
			}
			for _, id := range ids {
				gr.NodeIDs = append(gr.NodeIDs, topology.ID(id))
			}
		}
	}
	return gr, nil
}

func decodeManager(a *assembly, b []byte) error {
	for f, err := range fields(b) {
		if err != nil {
			return err
		}
		switch f.num {
		case fieldManagerCount:
			// Recomputed from the decoded styles.
		case fieldManagerStyles:
			msg, err := f.bytes()
			if err != nil {
				return err
			}
			s, err := decodeStyle(msg)
			if err != nil {
				return fmt.Errorf("style: %w", err)
			}
			a.styles = append(a.styles, s)
		case fieldManagerNodeDefaults, fieldManagerEdgeDefaults:
			msg, err := f.bytes()
			if err != nil {
				return err
			}
			d, err := decodeDefaultEntry(msg)
			if err != nil {
				return fmt.Errorf("default: %w", err)
			}
			kind := style.KindNode
			if f.num == fieldManagerEdgeDefaults {
				kind = style.KindEdge
			}
			a.defaults[kind] = append(a.defaults[kind], d)
		}
	}
	return nil
}

func decodeDefaultEntry(b []byte) (defaultEntry, error) {
	var d defaultEntry
	for f, err := range fields(b) {
		if err != nil {
			return d, err
		}
		switch f.num {
		case fieldMapKey:
			if d.meta, err = f.string(); err != nil {
				return d, err
			}
		case fieldMapValue:
			v, err := f.int32()
			if err != nil {
				return d, err
			}
			d.id = style.ID(v)
		}
	}
	return d, nil
}

func decodeStyle(b []byte) (*style.Style, error) {
	s := &style.Style{}
	for f, err := range fields(b) {
		if err != nil {
			return nil, err
		}
		switch f.num {
		case fieldStyleID:
			v, err := f.int32()
			if err != nil {
				return nil, err
			}
			s.ID = style.ID(v)
		case fieldStyleMetaTarget:
			if s.MetaTarget, err = f.string(); err != nil {
				return nil, err
			}
		case fieldStyleName:
			if s.Name, err = f.string(); err != nil {
				return nil, err
			}
		case fieldStyleTarget:
			if s.Target, err = f.string(); err != nil {
				return nil, err
			}
		case fieldStyleProperties:
			msg, err := f.bytes()
			if err != nil {
				return nil, err
			}
			name, v, err := decodeProperty(msg)
			if err != nil {
				return nil, err
			}
			if err := s.Properties.Set(name, v); err != nil {
				return nil, err
			}
		case fieldStyleNodeIDs, fieldStyleEdgeIDs:
			ids, err := f.int32s()
			if err != nil {
				return nil, err
			}
			set := &s.NodeIDs
			if f.num == fieldStyleEdgeIDs {
				set = &s.EdgeIDs
			}
			for _, id := range ids {
				set.Add(topology.ID(id))
			}
		}
	}
	return s, nil
}

func decodeProperty(b []byte) (string, style.Value, error) {
	var (
		name string
		v    style.Value
	)
	for f, err := range fields(b) {
		if err != nil {
			return "", v, err
		}
		switch f.num {
		case fieldPropName:
			if name, err = f.string(); err != nil {
				return "", v, err
			}
		case fieldPropString:
			s, err := f.string()
			if err != nil {
				return "", v, err
			}
			v = style.StringValue(s)
		case fieldPropInt:
			if err := f.want(protowire.VarintType); err != nil {
				return "", v, err
			}
			v = style.IntValue(protowire.DecodeZigZag(f.v))
		case fieldPropFloat:
			if err := f.want(protowire.Fixed64Type); err != nil {
				return "", v, err
			}
			v = style.FloatValue(math.Float64frombits(f.v))
		case fieldPropBool:
			if err := f.want(protowire.VarintType); err != nil {
				return "", v, err
			}
			v = style.BoolValue(protowire.DecodeBool(f.v))
		case fieldPropColor:
			if err := f.want(protowire.Fixed32Type); err != nil {
				return "", v, err
			}
			v = style.ColorValue(style.Color(f.v))
		}
	}
	if !v.IsValid() {
		return "", v, fmt.Errorf("property %q has no value", name)
	}
	return name, v, nil
}

func sortedKeys[M ~map[K]V, K cmp.Ordered, V any](m M) []K {
	return slices.Sorted(maps.Keys(m))
}
