package graph

import (
	stderrors "errors"
	"maps"
	"slices"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/style"
	"github.com/matzehuels/stylegraph/pkg/topology"
)

// Node pairs a topology node with its explicitly assigned style.
// StyleID is style.NoStyle when the node relies on its meta-target default.
type Node struct {
	Base    *topology.Node
	StyleID style.ID
}

// AssignedStyle implements style.Entity.
func (n Node) AssignedStyle() style.ID { return n.StyleID }

// MetaTarget implements style.Entity.
func (n Node) MetaTarget() string { return n.Base.MetaTarget }

// Edge pairs a topology edge with its explicitly assigned style.
type Edge struct {
	Base    *topology.Edge
	StyleID style.ID
}

// AssignedStyle implements style.Entity.
func (e Edge) AssignedStyle() style.ID { return e.StyleID }

// MetaTarget implements style.Entity.
func (e Edge) MetaTarget() string { return e.Base.MetaTarget }

// Graph pairs a topology graph with the style manager that owns its styles.
// Each Graph has exactly one Manager.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// use without external synchronization.
type Graph struct {
	topo       *topology.Graph
	styles     *style.Manager
	nodeStyles map[topology.ID]style.ID
	edgeStyles map[topology.ID]style.ID
}

// New creates an empty Graph with an empty style manager.
func New() *Graph {
	return &Graph{
		topo:       topology.New(),
		styles:     style.NewManager(),
		nodeStyles: make(map[topology.ID]style.ID),
		edgeStyles: make(map[topology.ID]style.ID),
	}
}

// Restore assembles a Graph from already-populated parts, as produced by a
// decoder, and validates every cross reference. Explicit style assignments
// are taken as given: style entity sets are not rewritten. Returns
// CORRUPT_GRAPH if any reference dangles.
func Restore(topo *topology.Graph, styles *style.Manager, nodeStyles, edgeStyles map[topology.ID]style.ID) (*Graph, error) {
	g := &Graph{
		topo:       topo,
		styles:     styles,
		nodeStyles: maps.Clone(nodeStyles),
		edgeStyles: maps.Clone(edgeStyles),
	}
	if g.nodeStyles == nil {
		g.nodeStyles = make(map[topology.ID]style.ID)
	}
	if g.edgeStyles == nil {
		g.edgeStyles = make(map[topology.ID]style.ID)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Topology returns the underlying topology graph. Removing nodes or edges
// directly on it bypasses style bookkeeping; use the Graph methods instead.
func (g *Graph) Topology() *topology.Graph { return g.topo }

// Styles returns the graph's style manager.
func (g *Graph) Styles() *style.Manager { return g.styles }

// AddNode adds a topology node and, when sid is not NoStyle, assigns it an
// explicit style. On failure the graph is left unchanged.
func (g *Graph) AddNode(n topology.Node, sid style.ID) error {
	if sid != style.NoStyle && !g.styles.Has(sid) {
		return errors.New(errors.ErrCodeNotFound, "style %d not found", sid)
	}
	if err := g.topo.AddNode(n); err != nil {
		return topologyError(err, "add node %d", n.ID)
	}
	if sid != style.NoStyle {
		return g.SetStyle(style.KindNode, n.ID, sid)
	}
	return nil
}

// AddEdge adds a topology edge and optionally assigns it an explicit style.
func (g *Graph) AddEdge(e topology.Edge, sid style.ID) error {
	if sid != style.NoStyle && !g.styles.Has(sid) {
		return errors.New(errors.ErrCodeNotFound, "style %d not found", sid)
	}
	if err := g.topo.AddEdge(e); err != nil {
		return topologyError(err, "add edge %d", e.ID)
	}
	if sid != style.NoStyle {
		return g.SetStyle(style.KindEdge, e.ID, sid)
	}
	return nil
}

// AddGroup adds a topology group.
func (g *Graph) AddGroup(gr topology.Group) error {
	if err := g.topo.AddGroup(gr); err != nil {
		return topologyError(err, "add group %d", gr.ID)
	}
	return nil
}

// Node returns the styled node with the given id.
func (g *Graph) Node(id topology.ID) (Node, bool) {
	n, ok := g.topo.Node(id)
	if !ok {
		return Node{}, false
	}
	return Node{Base: n, StyleID: g.nodeStyles[id]}, true
}

// Edge returns the styled edge with the given id.
func (g *Graph) Edge(id topology.ID) (Edge, bool) {
	e, ok := g.topo.Edge(id)
	if !ok {
		return Edge{}, false
	}
	return Edge{Base: e, StyleID: g.edgeStyles[id]}, true
}

// Nodes returns all styled nodes in topology insertion order.
func (g *Graph) Nodes() []Node {
	base := g.topo.Nodes()
	out := make([]Node, len(base))
	for i, n := range base {
		out[i] = Node{Base: n, StyleID: g.nodeStyles[n.ID]}
	}
	return out
}

// Edges returns all styled edges in topology insertion order.
func (g *Graph) Edges() []Edge {
	base := g.topo.Edges()
	out := make([]Edge, len(base))
	for i, e := range base {
		out[i] = Edge{Base: e, StyleID: g.edgeStyles[e.ID]}
	}
	return out
}

// Entity returns the node or edge with the given id as a style.Entity.
func (g *Graph) Entity(kind style.Kind, id topology.ID) (style.Entity, bool) {
	if !kind.Valid() {
		return nil, false
	}
	if kind == style.KindEdge {
		e, ok := g.Edge(id)
		return e, ok
	}
	n, ok := g.Node(id)
	return n, ok
}

func (g *Graph) assignments(kind style.Kind) map[topology.ID]style.ID {
	if kind == style.KindEdge {
		return g.edgeStyles
	}
	return g.nodeStyles
}

func (g *Graph) exists(kind style.Kind, id topology.ID) bool {
	if kind == style.KindEdge {
		return g.topo.HasEdge(id)
	}
	return g.topo.HasNode(id)
}

// SetStyle explicitly assigns style sid to a node or edge. The entity is
// detached from its previous explicit style and attached to the new one.
// Returns NOT_FOUND if either the entity or the style does not exist.
func (g *Graph) SetStyle(kind style.Kind, id topology.ID, sid style.ID) error {
	if !kind.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "unknown kind %d", uint8(kind))
	}
	if !g.exists(kind, id) {
		return errors.New(errors.ErrCodeNotFound, "%s %d not found", kind, id)
	}
	if !g.styles.Has(sid) {
		return errors.New(errors.ErrCodeNotFound, "style %d not found", sid)
	}
	assigned := g.assignments(kind)
	if prev, ok := assigned[id]; ok && prev != sid {
		g.styles.Detach(prev, id, kind)
	}
	assigned[id] = sid
	return g.styles.Attach(sid, id, kind)
}

// ClearStyle removes the explicit style of a node or edge, so it falls back
// to its meta-target default. Clearing an unstyled entity is a no-op.
func (g *Graph) ClearStyle(kind style.Kind, id topology.ID) {
	if !kind.Valid() {
		return
	}
	assigned := g.assignments(kind)
	if prev, ok := assigned[id]; ok {
		g.styles.Detach(prev, id, kind)
		delete(assigned, id)
	}
}

// Resolve returns the effective style of a node or edge, or nil when it
// resolves to NoStyle or does not exist.
func (g *Graph) Resolve(kind style.Kind, id topology.ID) *style.Style {
	e, ok := g.Entity(kind, id)
	if !ok {
		return nil
	}
	return g.styles.ResolveStyle(e, kind)
}

// RemoveNode removes a node with its incident edges and drops their style
// references.
func (g *Graph) RemoveNode(id topology.ID) error {
	removed, err := g.topo.RemoveNode(id)
	if err != nil {
		return topologyError(err, "remove node %d", id)
	}
	g.forget(style.KindNode, id)
	for _, eid := range removed {
		g.forget(style.KindEdge, eid)
	}
	return nil
}

// RemoveEdge removes an edge and drops its style references.
func (g *Graph) RemoveEdge(id topology.ID) error {
	if err := g.topo.RemoveEdge(id); err != nil {
		return topologyError(err, "remove edge %d", id)
	}
	g.forget(style.KindEdge, id)
	return nil
}

func (g *Graph) forget(kind style.Kind, id topology.ID) {
	delete(g.assignments(kind), id)
	g.styles.DetachAll(id, kind)
}

// RemoveStyle removes a style and clears every explicit reference to it, so
// affected nodes and edges fall back to their defaults. It fails like
// style.Manager.RemoveStyle, leaving the graph unchanged.
func (g *Graph) RemoveStyle(sid style.ID) (*style.Style, error) {
	s, err := g.styles.RemoveStyle(sid)
	if err != nil {
		return nil, err
	}
	for _, assigned := range []map[topology.ID]style.ID{g.nodeStyles, g.edgeStyles} {
		maps.DeleteFunc(assigned, func(_ topology.ID, v style.ID) bool { return v == sid })
	}
	return s, nil
}

// Validate checks every reference between topology and styles:
//
//   - topology edges and groups reference existing nodes
//   - default tables reference existing styles
//   - explicit node/edge styles reference existing styles and entities
//   - style node/edge id sets reference existing entities
//
// Returns CORRUPT_GRAPH describing the first violation found.
func (g *Graph) Validate() error {
	if err := g.topo.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeCorruptGraph, err, "topology")
	}
	if err := g.styles.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeCorruptGraph, err, "style manager")
	}
	for _, kind := range []style.Kind{style.KindNode, style.KindEdge} {
		assigned := g.assignments(kind)
		for _, id := range slices.Sorted(maps.Keys(assigned)) {
			if !g.exists(kind, id) {
				return errors.New(errors.ErrCodeCorruptGraph, "style assigned to missing %s %d", kind, id)
			}
			if sid := assigned[id]; !g.styles.Has(sid) {
				return errors.New(errors.ErrCodeCorruptGraph, "%s %d references missing style %d", kind, id, sid)
			}
		}
	}
	for _, s := range g.styles.Styles() {
		for _, kind := range []style.Kind{style.KindNode, style.KindEdge} {
			for id := range s.Entities(kind).All() {
				if !g.exists(kind, id) {
					return errors.New(errors.ErrCodeCorruptGraph, "style %d lists missing %s %d", s.ID, kind, id)
				}
			}
		}
	}
	return nil
}

// Stats summarizes a graph.
type Stats struct {
	Nodes          int `json:"nodes"`
	Edges          int `json:"edges"`
	Groups         int `json:"groups"`
	Styles         int `json:"styles"`
	NodeDefaults   int `json:"node_defaults"`
	EdgeDefaults   int `json:"edge_defaults"`
	UnstyledNodes  int `json:"unstyled_nodes"`  // nodes resolving to NoStyle
	UnstyledEdges  int `json:"unstyled_edges"`  // edges resolving to NoStyle
	ExplicitStyled int `json:"explicit_styled"` // entities with an explicit style
}

// Stats computes summary counts.
func (g *Graph) Stats() Stats {
	st := Stats{
		Nodes:          g.topo.NodeCount(),
		Edges:          g.topo.EdgeCount(),
		Groups:         g.topo.GroupCount(),
		Styles:         g.styles.Count(),
		NodeDefaults:   len(g.styles.Defaults(style.KindNode)),
		EdgeDefaults:   len(g.styles.Defaults(style.KindEdge)),
		ExplicitStyled: len(g.nodeStyles) + len(g.edgeStyles),
	}
	for _, n := range g.Nodes() {
		if g.styles.Resolve(n, style.KindNode) == style.NoStyle {
			st.UnstyledNodes++
		}
	}
	for _, e := range g.Edges() {
		if g.styles.Resolve(e, style.KindEdge) == style.NoStyle {
			st.UnstyledEdges++
		}
	}
	return st
}

// topologyError maps topology sentinel errors onto coded errors.
func topologyError(err error, format string, args ...any) error {
	code := errors.ErrCodeInvalidInput
	switch {
	case stderrors.Is(err, topology.ErrDuplicateNodeID),
		stderrors.Is(err, topology.ErrDuplicateEdgeID),
		stderrors.Is(err, topology.ErrDuplicateGroupID):
		code = errors.ErrCodeDuplicateID
	case stderrors.Is(err, topology.ErrUnknownNode),
		stderrors.Is(err, topology.ErrUnknownEdge),
		stderrors.Is(err, topology.ErrUnknownGroup),
		stderrors.Is(err, topology.ErrUnknownSourceNode),
		stderrors.Is(err, topology.ErrUnknownTargetNode):
		code = errors.ErrCodeNotFound
	}
	return errors.Wrap(code, err, format, args...)
}
