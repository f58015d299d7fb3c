package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/graph"
	"github.com/matzehuels/stylegraph/pkg/style"
	"github.com/matzehuels/stylegraph/pkg/topology"
)

type jsonGraph struct {
	Nodes    []jsonNode   `json:"nodes"`
	Edges    []jsonEdge   `json:"edges"`
	Groups   []jsonGroup  `json:"groups,omitempty"`
	Styles   []jsonStyle  `json:"styles"`
	Defaults jsonDefaults `json:"defaults"`
}

type jsonNode struct {
	ID         topology.ID       `json:"id"`
	MetaTarget string            `json:"meta_target,omitempty"`
	Label      string            `json:"label,omitempty"`
	Meta       topology.Metadata `json:"meta,omitempty"`
	Style      style.ID          `json:"style,omitempty"`
}

type jsonEdge struct {
	ID         topology.ID `json:"id"`
	From       topology.ID `json:"from"`
	To         topology.ID `json:"to"`
	MetaTarget string      `json:"meta_target,omitempty"`
	Label      string      `json:"label,omitempty"`
	Style      style.ID    `json:"style,omitempty"`
}

type jsonGroup struct {
	ID    topology.ID   `json:"id"`
	Label string        `json:"label,omitempty"`
	Nodes []topology.ID `json:"nodes,omitempty"`
}

type jsonStyle struct {
	ID         style.ID       `json:"id"`
	MetaTarget string         `json:"meta_target,omitempty"`
	Name       string         `json:"name,omitempty"`
	Target     string         `json:"target,omitempty"`
	Properties []jsonProperty `json:"properties,omitempty"`
	Nodes      []topology.ID  `json:"nodes,omitempty"`
	Edges      []topology.ID  `json:"edges,omitempty"`
}

type jsonProperty struct {
	Name  string          `json:"name"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type jsonDefaults struct {
	Node defaultTable `json:"node,omitempty"`
	Edge defaultTable `json:"edge,omitempty"`
}

// defaultTable is a default-style object keyed by meta-target. It keeps the
// entries in document order, duplicates included, so the assembly can
// reject repeated keys exactly as it does for the binary format.
type defaultTable []defaultEntry

func (t defaultTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(d.meta)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatInt(int64(d.id), 10))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (t *defaultTable) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*t = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("default table: want object, got %v", tok)
	}
	var out defaultTable
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		meta, _ := tok.(string)
		var id style.ID
		if err := dec.Decode(&id); err != nil {
			return fmt.Errorf("default for %q: %w", meta, err)
		}
		out = append(out, defaultEntry{meta: meta, id: id})
	}
	*t = out
	return nil
}

// WriteJSON encodes a graph as indented JSON and writes it to w.
//
// Property values carry their type so integers, floats and colors survive
// the round trip. Default tables are objects keyed by meta-target, written in
// sorted key order, so the output is deterministic.
// This format can be re-imported with [ReadJSON].
func WriteJSON(g *graph.Graph, w io.Writer) error {
	return writeJSON(g, w, nil)
}

func writeJSON(g *graph.Graph, w io.Writer, fn ProgressFunc) error {
	a := disassemble(g)
	p := a.tracker(fn)
	out := jsonGraph{
		Nodes:  make([]jsonNode, len(a.nodes)),
		Edges:  make([]jsonEdge, len(a.edges)),
		Styles: make([]jsonStyle, len(a.styles)),
	}

	for i, n := range a.nodes {
		out.Nodes[i] = jsonNode{ID: n.ID, MetaTarget: n.MetaTarget, Label: n.Label, Meta: n.Meta, Style: n.style}
		p.step()
	}
	for i, e := range a.edges {
		out.Edges[i] = jsonEdge{ID: e.ID, From: e.From, To: e.To, MetaTarget: e.MetaTarget, Label: e.Label, Style: e.style}
		p.step()
	}
	for _, gr := range a.groups {
		out.Groups = append(out.Groups, jsonGroup{ID: gr.ID, Label: gr.Label, Nodes: gr.NodeIDs})
		p.step()
	}
	for i, s := range a.styles {
		js := jsonStyle{
			ID:         s.ID,
			MetaTarget: s.MetaTarget,
			Name:       s.Name,
			Target:     s.Target,
			Nodes:      s.NodeIDs.IDs(),
			Edges:      s.EdgeIDs.IDs(),
		}
		for name, v := range s.Properties.All() {
			p, err := encodeJSONProperty(name, v)
			if err != nil {
				return fmt.Errorf("style %d: %w", s.ID, err)
			}
			js.Properties = append(js.Properties, p)
		}
		out.Styles[i] = js
		p.step()
	}
	out.Defaults.Node = a.defaults[style.KindNode]
	out.Defaults.Edge = a.defaults[style.KindEdge]

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func encodeJSONProperty(name string, v style.Value) (jsonProperty, error) {
	if !v.IsValid() {
		return jsonProperty{}, errors.New(errors.ErrCodeInvalidInput, "property %q has no value", name)
	}
	var raw any = v.Interface()
	if c, ok := v.AsColor(); ok {
		raw = c.String()
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return jsonProperty{}, err
	}
	return jsonProperty{Name: name, Type: v.Type().String(), Value: data}, nil
}

func decodeJSONProperty(p jsonProperty) (style.Value, error) {
	typ, err := style.ParseValueType(p.Type)
	if err != nil {
		return style.Value{}, err
	}
	switch typ {
	case style.TypeString:
		var s string
		err = json.Unmarshal(p.Value, &s)
		return style.StringValue(s), err
	case style.TypeInt:
		var n int64
		err = json.Unmarshal(p.Value, &n)
		return style.IntValue(n), err
	case style.TypeFloat:
		var f float64
		err = json.Unmarshal(p.Value, &f)
		return style.FloatValue(f), err
	case style.TypeBool:
		var b bool
		err = json.Unmarshal(p.Value, &b)
		return style.BoolValue(b), err
	case style.TypeColor:
		var s string
		if err := json.Unmarshal(p.Value, &s); err != nil {
			return style.Value{}, err
		}
		c, err := style.ParseColor(s)
		return style.ColorValue(c), err
	}
	return style.Value{}, fmt.Errorf("unsupported property type %q", p.Type)
}

// ReadJSON decodes a JSON graph from r.
//
// ReadJSON applies the same validation as [Decode]: duplicate ids,
// repeated meta-target keys in a default table and dangling references
// fail with CORRUPT_GRAPH. Syntax errors fail with
// INVALID_FORMAT. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*graph.Graph, error) {
	return readJSON(r, nil)
}

func readJSON(r io.Reader, fn ProgressFunc) (*graph.Graph, error) {
	var data jsonGraph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode JSON graph")
	}

	a := &assembly{progress: fn}
	for _, n := range data.Nodes {
		a.nodes = append(a.nodes, styledNode{
			Node:  topology.Node{ID: n.ID, MetaTarget: n.MetaTarget, Label: n.Label, Meta: n.Meta},
			style: n.Style,
		})
	}
	for _, e := range data.Edges {
		a.edges = append(a.edges, styledEdge{
			Edge:  topology.Edge{ID: e.ID, From: e.From, To: e.To, MetaTarget: e.MetaTarget, Label: e.Label},
			style: e.Style,
		})
	}
	for _, gr := range data.Groups {
		a.groups = append(a.groups, topology.Group{ID: gr.ID, Label: gr.Label, NodeIDs: gr.Nodes})
	}
	for _, js := range data.Styles {
		s := &style.Style{ID: js.ID, MetaTarget: js.MetaTarget, Name: js.Name, Target: js.Target}
		for _, p := range js.Properties {
			v, err := decodeJSONProperty(p)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeCorruptGraph, err, "style %d property %q", js.ID, p.Name)
			}
			if err := s.Properties.Set(p.Name, v); err != nil {
				return nil, errors.Wrap(errors.ErrCodeCorruptGraph, err, "style %d", js.ID)
			}
		}
		for _, id := range js.Nodes {
			s.NodeIDs.Add(id)
		}
		for _, id := range js.Edges {
			s.EdgeIDs.Add(id)
		}
		a.styles = append(a.styles, s)
	}
	a.defaults[style.KindNode] = data.Defaults.Node
	a.defaults[style.KindEdge] = data.Defaults.Edge
	return a.build()
}
