package graph

import (
	"slices"
	"testing"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/style"
	"github.com/matzehuels/stylegraph/pkg/topology"
)

// newTaskGraph builds two Task nodes joined by an edge, with style 1 as the
// Task default and style 2 available for explicit assignment.
func newTaskGraph(t *testing.T) *Graph {
	t.Helper()
	g := New()
	for _, s := range []*style.Style{
		{ID: 1, MetaTarget: "Task", Name: "Default Task"},
		{ID: 2, MetaTarget: "Task", Name: "Highlighted"},
	} {
		if err := g.Styles().AddStyle(s); err != nil {
			t.Fatalf("AddStyle(%d): %v", s.ID, err)
		}
	}
	if err := g.Styles().SetDefaultStyle("Task", 1, style.KindNode); err != nil {
		t.Fatalf("SetDefaultStyle: %v", err)
	}
	for _, id := range []topology.ID{1, 2} {
		if err := g.AddNode(topology.Node{ID: id, MetaTarget: "Task"}, style.NoStyle); err != nil {
			t.Fatalf("AddNode(%d): %v", id, err)
		}
	}
	if err := g.AddEdge(topology.Edge{ID: 10, From: 1, To: 2}, style.NoStyle); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	return g
}

func TestAddNode(t *testing.T) {
	g := newTaskGraph(t)

	tests := []struct {
		name string
		node topology.Node
		sid  style.ID
		code errors.Code
	}{
		{"unknown style", topology.Node{ID: 3}, 99, errors.ErrCodeNotFound},
		{"duplicate id", topology.Node{ID: 1}, style.NoStyle, errors.ErrCodeDuplicateID},
		{"invalid id", topology.Node{ID: 0}, style.NoStyle, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.AddNode(tt.node, tt.sid)
			if !errors.Is(err, tt.code) {
				t.Fatalf("AddNode() error = %v, want %s", err, tt.code)
			}
		})
	}
	if g.Topology().HasNode(3) {
		t.Error("failed AddNode must not leave the node behind")
	}

	if err := g.AddNode(topology.Node{ID: 3, MetaTarget: "Task"}, 2); err != nil {
		t.Fatalf("AddNode with style: %v", err)
	}
	s, _ := g.Styles().Style(2)
	if !s.NodeIDs.Contains(3) {
		t.Error("explicit style should list the new node")
	}
}

func TestAddEdgeUnknownEndpoint(t *testing.T) {
	g := newTaskGraph(t)
	err := g.AddEdge(topology.Edge{ID: 11, From: 1, To: 42}, style.NoStyle)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("AddEdge() error = %v, want NOT_FOUND", err)
	}
}

func TestSetStyle(t *testing.T) {
	g := newTaskGraph(t)

	if err := g.SetStyle(style.KindNode, 1, 2); err != nil {
		t.Fatalf("SetStyle: %v", err)
	}
	if got := g.Resolve(style.KindNode, 1); got == nil || got.ID != 2 {
		t.Errorf("Resolve(node 1) = %v, want style 2", got)
	}
	if got := g.Resolve(style.KindNode, 2); got == nil || got.ID != 1 {
		t.Errorf("Resolve(node 2) = %v, want default style 1", got)
	}

	// Reassign: node 1 moves from style 2 to style 1.
	if err := g.SetStyle(style.KindNode, 1, 1); err != nil {
		t.Fatalf("SetStyle: %v", err)
	}
	s2, _ := g.Styles().Style(2)
	s1, _ := g.Styles().Style(1)
	if s2.NodeIDs.Contains(1) || !s1.NodeIDs.Contains(1) {
		t.Errorf("entity sets after reassign: s1=%v s2=%v", s1.NodeIDs.IDs(), s2.NodeIDs.IDs())
	}

	if err := g.SetStyle(style.KindEdge, 10, 2); err != nil {
		t.Fatalf("SetStyle(edge): %v", err)
	}
	if e, _ := g.Edge(10); e.StyleID != 2 {
		t.Errorf("edge style = %d, want 2", e.StyleID)
	}

	if err := g.SetStyle(style.KindNode, 99, 1); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("SetStyle(missing node) = %v, want NOT_FOUND", err)
	}
	if err := g.SetStyle(style.KindNode, 1, 99); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("SetStyle(missing style) = %v, want NOT_FOUND", err)
	}

	g.ClearStyle(style.KindNode, 1)
	g.ClearStyle(style.KindNode, 1) // no-op
	if n, _ := g.Node(1); n.StyleID != style.NoStyle {
		t.Errorf("node 1 style after clear = %d", n.StyleID)
	}
	if s1.NodeIDs.Contains(1) {
		t.Error("ClearStyle should detach")
	}
}

func TestUnknownKind(t *testing.T) {
	g := newTaskGraph(t)
	bogus := style.Kind(7)

	if err := g.SetStyle(bogus, 1, 2); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("SetStyle(kind 7) = %v, want INVALID_INPUT", err)
	}
	if _, ok := g.Entity(bogus, 1); ok {
		t.Error("Entity(kind 7) found an entity")
	}
	if got := g.Resolve(bogus, 1); got != nil {
		t.Errorf("Resolve(kind 7) = %v, want nil", got)
	}
	g.ClearStyle(bogus, 1)
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestResolveNoStyle(t *testing.T) {
	g := newTaskGraph(t)
	if err := g.AddNode(topology.Node{ID: 5, MetaTarget: "Note"}, style.NoStyle); err != nil {
		t.Fatal(err)
	}
	if got := g.Resolve(style.KindNode, 5); got != nil {
		t.Errorf("Resolve(Note) = %v, want nil", got)
	}
	if got := g.Resolve(style.KindEdge, 10); got != nil {
		t.Errorf("Resolve(edge without default) = %v, want nil", got)
	}
	if got := g.Resolve(style.KindNode, 404); got != nil {
		t.Errorf("Resolve(missing) = %v, want nil", got)
	}
}

func TestRemoveNodeDropsReferences(t *testing.T) {
	g := newTaskGraph(t)
	_ = g.SetStyle(style.KindNode, 2, 2)
	_ = g.SetStyle(style.KindEdge, 10, 2)

	if err := g.RemoveNode(2); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	s2, _ := g.Styles().Style(2)
	if s2.NodeIDs.Len() != 0 || s2.EdgeIDs.Len() != 0 {
		t.Errorf("style 2 still lists nodes=%v edges=%v", s2.NodeIDs.IDs(), s2.EdgeIDs.IDs())
	}
	if _, ok := g.Edge(10); ok {
		t.Error("incident edge should be removed")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate after RemoveNode: %v", err)
	}
	if err := g.RemoveNode(2); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("RemoveNode twice = %v, want NOT_FOUND", err)
	}
}

func TestRemoveStyle(t *testing.T) {
	g := newTaskGraph(t)
	_ = g.SetStyle(style.KindNode, 1, 2)

	if _, err := g.RemoveStyle(1); !errors.Is(err, errors.ErrCodeInUseAsDefault) {
		t.Fatalf("RemoveStyle(default) = %v, want IN_USE_AS_DEFAULT", err)
	}

	removed, err := g.RemoveStyle(2)
	if err != nil {
		t.Fatalf("RemoveStyle: %v", err)
	}
	if removed.ID != 2 {
		t.Errorf("removed id = %d", removed.ID)
	}
	n, _ := g.Node(1)
	if n.StyleID != style.NoStyle {
		t.Errorf("node 1 keeps removed style %d", n.StyleID)
	}
	if got := g.Resolve(style.KindNode, 1); got == nil || got.ID != 1 {
		t.Errorf("node 1 should fall back to default, got %v", got)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestRestore(t *testing.T) {
	topo := topology.New()
	_ = topo.AddNode(topology.Node{ID: 1, MetaTarget: "Task"})
	mgr := style.NewManager()
	s := &style.Style{ID: 1}
	s.NodeIDs.Add(1)
	_ = mgr.AddStyle(s)

	g, err := Restore(topo, mgr, map[topology.ID]style.ID{1: 1}, nil)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if n, _ := g.Node(1); n.StyleID != 1 {
		t.Errorf("node style = %d", n.StyleID)
	}

	tests := []struct {
		name  string
		nodes map[topology.ID]style.ID
		edges map[topology.ID]style.ID
	}{
		{"node references missing style", map[topology.ID]style.ID{1: 7}, nil},
		{"assignment to missing node", map[topology.ID]style.ID{8: 1}, nil},
		{"assignment to missing edge", nil, map[topology.ID]style.ID{3: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Restore(topo, mgr, tt.nodes, tt.edges)
			if !errors.Is(err, errors.ErrCodeCorruptGraph) {
				t.Errorf("Restore() error = %v, want CORRUPT_GRAPH", err)
			}
		})
	}

	s.NodeIDs.Add(55)
	if _, err := Restore(topo, mgr, nil, nil); !errors.Is(err, errors.ErrCodeCorruptGraph) {
		t.Errorf("Restore with dangling entity set = %v, want CORRUPT_GRAPH", err)
	}
}

func TestNodesOrderAndStats(t *testing.T) {
	g := newTaskGraph(t)
	_ = g.AddNode(topology.Node{ID: 7, MetaTarget: "Note"}, 2)

	var ids []topology.ID
	for _, n := range g.Nodes() {
		ids = append(ids, n.Base.ID)
	}
	if !slices.Equal(ids, []topology.ID{1, 2, 7}) {
		t.Errorf("Nodes() order = %v", ids)
	}

	st := g.Stats()
	want := Stats{Nodes: 3, Edges: 1, Styles: 2, NodeDefaults: 1, UnstyledEdges: 1, ExplicitStyled: 1}
	if st != want {
		t.Errorf("Stats() = %+v, want %+v", st, want)
	}
}
