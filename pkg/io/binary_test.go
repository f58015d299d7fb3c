package io

import (
	"bytes"
	"maps"
	"math"
	"reflect"
	"slices"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/graph"
	"github.com/matzehuels/stylegraph/pkg/style"
	"github.com/matzehuels/stylegraph/pkg/topology"
)

// sampleGraph covers every encoded feature: typed properties, explicit and
// default styles for both kinds, groups and node metadata.
func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("build sample graph: %v", err)
		}
	}

	task := &style.Style{ID: 1, MetaTarget: "Task", Name: "Default Task", Target: "canvas"}
	must(task.Properties.Set(style.PropFill, style.ColorValue(style.RGBA(0xff, 0x88, 0, 0xff))))
	must(task.Properties.Set(style.PropShape, style.StringValue("box")))
	must(task.Properties.Set(style.PropBorderWidth, style.IntValue(-2)))
	must(task.Properties.Set(style.PropFontSize, style.FloatValue(10.5)))
	must(task.Properties.Set(style.PropDashed, style.BoolValue(false)))

	urgent := &style.Style{ID: 2, MetaTarget: "Task", Name: "Urgent"}
	must(urgent.Properties.Set(style.PropFill, style.StringValue("red")))

	flow := &style.Style{ID: 3, MetaTarget: "Flow", Name: "Flow"}
	must(flow.Properties.Set(style.PropLineWidth, style.IntValue(0)))

	for _, s := range []*style.Style{task, urgent, flow} {
		must(g.Styles().AddStyle(s))
	}
	must(g.Styles().SetDefaultStyle("Task", 1, style.KindNode))
	must(g.Styles().SetDefaultStyle("Flow", 3, style.KindEdge))

	must(g.AddNode(topology.Node{ID: 1, MetaTarget: "Task", Label: "Write", Meta: topology.Metadata{"owner": "ana", "due": "mon"}}, style.NoStyle))
	must(g.AddNode(topology.Node{ID: 2, MetaTarget: "Task", Label: "Review"}, 2))
	must(g.AddNode(topology.Node{ID: 3, Label: "Plain"}, style.NoStyle))
	must(g.AddEdge(topology.Edge{ID: 1, From: 1, To: 2, MetaTarget: "Flow"}, style.NoStyle))
	must(g.AddEdge(topology.Edge{ID: 2, From: 2, To: 3, Label: "then"}, 3))
	must(g.AddGroup(topology.Group{ID: 1, Label: "Sprint", NodeIDs: []topology.ID{2, 1}}))
	return g
}

// assertGraphsEqual compares every observable part of two graphs.
func assertGraphsEqual(t *testing.T, want, got *graph.Graph) {
	t.Helper()

	wantNodes, gotNodes := want.Nodes(), got.Nodes()
	if len(gotNodes) != len(wantNodes) {
		t.Fatalf("node count = %d, want %d", len(gotNodes), len(wantNodes))
	}
	for i := range wantNodes {
		if !reflect.DeepEqual(*gotNodes[i].Base, *wantNodes[i].Base) {
			t.Errorf("node[%d] = %+v, want %+v", i, *gotNodes[i].Base, *wantNodes[i].Base)
		}
		if gotNodes[i].StyleID != wantNodes[i].StyleID {
			t.Errorf("node[%d] style = %d, want %d", i, gotNodes[i].StyleID, wantNodes[i].StyleID)
		}
	}
	wantEdges, gotEdges := want.Edges(), got.Edges()
	if len(gotEdges) != len(wantEdges) {
		t.Fatalf("edge count = %d, want %d", len(gotEdges), len(wantEdges))
	}
	for i := range wantEdges {
		if *gotEdges[i].Base != *wantEdges[i].Base {
			t.Errorf("edge[%d] = %+v, want %+v", i, *gotEdges[i].Base, *wantEdges[i].Base)
		}
		if gotEdges[i].StyleID != wantEdges[i].StyleID {
			t.Errorf("edge[%d] style = %d, want %d", i, gotEdges[i].StyleID, wantEdges[i].StyleID)
		}
	}
	if !reflect.DeepEqual(got.Topology().Groups(), want.Topology().Groups()) {
		t.Errorf("groups = %+v, want %+v", got.Topology().Groups(), want.Topology().Groups())
	}

	wantStyles, gotStyles := want.Styles().Styles(), got.Styles().Styles()
	if len(gotStyles) != len(wantStyles) {
		t.Fatalf("style count = %d, want %d", len(gotStyles), len(wantStyles))
	}
	if got.Styles().Count() != want.Styles().Count() {
		t.Errorf("Count() = %d, want %d", got.Styles().Count(), want.Styles().Count())
	}
	for i, ws := range wantStyles {
		gs := gotStyles[i]
		if gs.ID != ws.ID || gs.MetaTarget != ws.MetaTarget || gs.Name != ws.Name || gs.Target != ws.Target {
			t.Errorf("style[%d] = {%d %q %q %q}, want {%d %q %q %q}", i,
				gs.ID, gs.MetaTarget, gs.Name, gs.Target, ws.ID, ws.MetaTarget, ws.Name, ws.Target)
		}
		if !slices.Equal(gs.Properties.Keys(), ws.Properties.Keys()) {
			t.Errorf("style %d property keys = %v, want %v", ws.ID, gs.Properties.Keys(), ws.Properties.Keys())
		}
		if !ws.Properties.Equal(&gs.Properties) {
			t.Errorf("style %d properties differ", ws.ID)
		}
		if !slices.Equal(gs.NodeIDs.IDs(), ws.NodeIDs.IDs()) {
			t.Errorf("style %d nodes = %v, want %v", ws.ID, gs.NodeIDs.IDs(), ws.NodeIDs.IDs())
		}
		if !slices.Equal(gs.EdgeIDs.IDs(), ws.EdgeIDs.IDs()) {
			t.Errorf("style %d edges = %v, want %v", ws.ID, gs.EdgeIDs.IDs(), ws.EdgeIDs.IDs())
		}
	}
	for _, kind := range []style.Kind{style.KindNode, style.KindEdge} {
		if w, g := want.Styles().Defaults(kind), got.Styles().Defaults(kind); !maps.Equal(g, w) {
			t.Errorf("%s defaults = %v, want %v", kind, g, w)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	g := sampleGraph(t)

	data, err := Encode(g)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	assertGraphsEqual(t, g, decoded)

	again, err := Encode(decoded)
	if err != nil {
		t.Fatalf("Encode(decoded) error: %v", err)
	}
	if !bytes.Equal(again, data) {
		t.Error("re-encoding a decoded graph must be byte-identical")
	}
}

func TestEncodeDeterministic(t *testing.T) {
	build := func(metas []string) *graph.Graph {
		g := graph.New()
		for i, meta := range metas {
			if err := g.Styles().AddStyle(&style.Style{ID: style.ID(i + 1), MetaTarget: meta}); err != nil {
				t.Fatal(err)
			}
		}
		// Defaults inserted in style order; the encoder must sort them.
		for i, meta := range metas {
			if err := g.Styles().SetDefaultStyle(meta, style.ID(i+1), style.KindNode); err != nil {
				t.Fatal(err)
			}
		}
		meta := topology.Metadata{}
		for _, k := range metas {
			meta[k] = k
		}
		if err := g.AddNode(topology.Node{ID: 1, Meta: meta}, style.NoStyle); err != nil {
			t.Fatal(err)
		}
		return g
	}

	first, err := Encode(build([]string{"Task", "Decision", "Note"}))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	for range 10 {
		next, err := Encode(build([]string{"Task", "Decision", "Note"}))
		if err != nil {
			t.Fatalf("Encode() error: %v", err)
		}
		if !bytes.Equal(next, first) {
			t.Fatalf("Encode() = %x, want %x", next, first)
		}
	}
}

func TestEncodeGolden(t *testing.T) {
	empty, err := Encode(graph.New())
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if want := []byte{0x0a, 0x00, 0x12, 0x00}; !bytes.Equal(empty, want) {
		t.Errorf("Encode(empty) = %x, want %x", empty, want)
	}

	g := graph.New()
	if err := g.Styles().AddStyle(&style.Style{ID: 1}); err != nil {
		t.Fatal(err)
	}
	data, err := Encode(g)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	// style_count 1, then styles[0] { id 1 }
	if want := []byte{0x0a, 0x00, 0x12, 0x06, 0x08, 0x01, 0x12, 0x02, 0x08, 0x01}; !bytes.Equal(data, want) {
		t.Errorf("Encode() = %x, want %x", data, want)
	}
}

func TestDecodeIgnoresTransmittedCount(t *testing.T) {
	var mgr []byte
	mgr = appendInt32(mgr, fieldManagerCount, 42)
	mgr = appendMessage(mgr, fieldManagerStyles, appendInt32(nil, fieldStyleID, 1))
	data := appendMessage(nil, fieldGraphStyles, mgr)

	g, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got := g.Styles().Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	var s []byte
	s = appendInt32(s, fieldStyleID, 5)
	s = appendString(s, 99, "future")
	var mgr []byte
	mgr = appendMessage(mgr, fieldManagerStyles, s)
	mgr = protowire.AppendTag(mgr, 20, protowire.Fixed64Type)
	mgr = protowire.AppendFixed64(mgr, 7)

	var data []byte
	data = appendMessage(data, fieldGraphStyles, mgr)
	data = appendInt32(data, 30, 1)

	g, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !g.Styles().Has(5) {
		t.Error("style 5 missing after skipping unknown fields")
	}
}

func TestDecodeEmpty(t *testing.T) {
	g, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode(nil) error: %v", err)
	}
	if g.Styles().Count() != 0 || g.Topology().NodeCount() != 0 {
		t.Errorf("Decode(nil) = %d styles, %d nodes, want empty", g.Styles().Count(), g.Topology().NodeCount())
	}
}

func TestDecodeCorrupt(t *testing.T) {
	node := func(id int32, sid int32) []byte {
		var b []byte
		b = appendMessage(b, fieldStyledBase, appendInt32(nil, fieldNodeID, id))
		return appendInt32(b, fieldStyledStyle, sid)
	}
	edge := func(id, src, dst int32) []byte {
		var base []byte
		base = appendInt32(base, fieldEdgeID, id)
		base = appendInt32(base, fieldEdgeSrc, src)
		base = appendInt32(base, fieldEdgeDst, dst)
		return appendMessage(nil, fieldStyledBase, base)
	}
	styleMsg := func(id int32, nodeIDs ...int32) []byte {
		b := appendInt32(nil, fieldStyleID, id)
		return appendPacked(b, fieldStyleNodeIDs, nodeIDs)
	}
	graphOf := func(topo, mgr []byte) []byte {
		var b []byte
		b = appendMessage(b, fieldGraphTopology, topo)
		return appendMessage(b, fieldGraphStyles, mgr)
	}
	defaultEntryMsg := func(meta string, id int32) []byte {
		var b []byte
		b = appendString(b, fieldMapKey, meta)
		return appendInt32(b, fieldMapValue, id)
	}

	valid, err := Encode(sampleGraph(t))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "default node style references missing style",
			data: graphOf(nil, appendMessage(nil, fieldManagerNodeDefaults, defaultEntryMsg("Task", 99))),
		},
		{
			name: "default edge style references missing style",
			data: graphOf(nil, appendMessage(nil, fieldManagerEdgeDefaults, defaultEntryMsg("Flow", 3))),
		},
		{
			name: "node references missing style",
			data: graphOf(appendMessage(nil, fieldTopologyNodes, node(1, 7)), nil),
		},
		{
			name: "style lists missing node",
			data: graphOf(nil, appendMessage(nil, fieldManagerStyles, styleMsg(1, 4))),
		},
		{
			name: "edge endpoint missing",
			data: graphOf(
				append(appendMessage(nil, fieldTopologyNodes, node(1, 0)),
					appendMessage(nil, fieldTopologyEdges, edge(1, 1, 2))...),
				nil),
		},
		{
			name: "duplicate style id",
			data: graphOf(nil, append(
				appendMessage(nil, fieldManagerStyles, styleMsg(1)),
				appendMessage(nil, fieldManagerStyles, styleMsg(1))...)),
		},
		{
			name: "duplicate node id",
			data: graphOf(append(
				appendMessage(nil, fieldTopologyNodes, node(1, 0)),
				appendMessage(nil, fieldTopologyNodes, node(1, 0))...), nil),
		},
		{
			name: "style id zero",
			data: graphOf(nil, appendMessage(nil, fieldManagerStyles, appendString(nil, fieldStyleName, "anon"))),
		},
		{
			name: "property without value",
			data: graphOf(nil, appendMessage(nil, fieldManagerStyles,
				appendMessage(appendInt32(nil, fieldStyleID, 1), fieldStyleProperties,
					appendString(nil, fieldPropName, "fill")))),
		},
		{
			name: "non-finite float property",
			data: graphOf(nil, appendMessage(nil, fieldManagerStyles,
				appendMessage(appendInt32(nil, fieldStyleID, 1), fieldStyleProperties,
					protowire.AppendFixed64(
						protowire.AppendTag(appendString(nil, fieldPropName, "opacity"), fieldPropFloat, protowire.Fixed64Type),
						math.Float64bits(math.NaN()))))),
		},
		{
			name: "wrong wire type",
			data: graphOf(nil, appendMessage(nil, fieldManagerStyles,
				protowire.AppendFixed32(protowire.AppendTag(nil, fieldStyleID, protowire.Fixed32Type), 1))),
		},
		{
			name: "truncated",
			data: valid[:len(valid)-1],
		},
		{
			name: "invalid utf-8",
			data: graphOf(nil, appendMessage(nil, fieldManagerStyles,
				appendString(appendInt32(nil, fieldStyleID, 1), fieldStyleName, "\xff\xfe"))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Decode(tt.data)
			if g != nil {
				t.Error("Decode() returned a partial graph")
			}
			if !errors.Is(err, errors.ErrCodeCorruptGraph) {
				t.Fatalf("Decode() error = %v, want CORRUPT_GRAPH", err)
			}
			if errors.Recoverable(err) {
				t.Error("CORRUPT_GRAPH must not be recoverable")
			}
		})
	}
}
