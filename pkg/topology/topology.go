package topology

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidID is returned by [Graph.AddNode], [Graph.AddEdge] and
	// [Graph.AddGroup] when the identifier is not strictly positive. Zero is
	// reserved as the "unset" value of the wire format.
	ErrInvalidID = errors.New("identifier must be positive")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateEdgeID is returned by [Graph.AddEdge] when an edge with the
	// same ID already exists.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrDuplicateGroupID is returned by [Graph.AddGroup] when a group with the
	// same ID already exists.
	ErrDuplicateGroupID = errors.New("duplicate group ID")

	// ErrUnknownNode is returned when an operation references a node that
	// does not exist.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownEdge is returned by [Graph.RemoveEdge] when the edge does not
	// exist.
	ErrUnknownEdge = errors.New("unknown edge")

	// ErrUnknownGroup is returned by group operations when the group does not
	// exist.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrAlreadyGrouped is returned by [Graph.AddToGroup] when the node is
	// already a member of another group. A node belongs to at most one group.
	ErrAlreadyGrouped = errors.New("node already belongs to a group")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrInvalidGroupMember is returned by [Graph.Validate] when a group lists
	// a node that doesn't exist.
	ErrInvalidGroupMember = errors.New("invalid group member")
)

// Default meta-targets assigned to nodes and edges added without one.
const (
	DefaultNodeMetaTarget = "Node"
	DefaultEdgeMetaTarget = "Edge"
)

// ID identifies a node, edge or group. Identifiers are unique per kind:
// node 3 and edge 3 are unrelated.
type ID int32

// Metadata stores arbitrary string key-value pairs attached to nodes.
// Metadata maps are never nil after a node is added.
type Metadata map[string]string

// Node is a vertex of the topology graph.
//
// MetaTarget names the semantic type of the node ("Task", "Decision") and is
// used by style repositories to pick a default style.
type Node struct {
	ID         ID
	MetaTarget string
	Label      string
	Meta       Metadata
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID         ID
	From       ID
	To         ID
	MetaTarget string
	Label      string
}

// Group is a named set of nodes. Groups do not nest.
type Group struct {
	ID      ID
	Label   string
	NodeIDs []ID
}

// Graph is a directed graph of nodes, edges and groups with stable
// insertion-ordered iteration. Parallel edges and self loops are allowed.
//
// The zero value is not usable - use New to create a valid Graph instance.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes      map[ID]*Node
	nodeOrder  []ID
	edges      map[ID]*Edge
	edgeOrder  []ID
	groups     map[ID]*Group
	groupOrder []ID
	outgoing   map[ID][]ID // node ID -> outgoing edge IDs
	incoming   map[ID][]ID // node ID -> incoming edge IDs
	membership map[ID]ID   // node ID -> group ID
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:      make(map[ID]*Node),
		edges:      make(map[ID]*Edge),
		groups:     make(map[ID]*Group),
		outgoing:   make(map[ID][]ID),
		incoming:   make(map[ID][]ID),
		membership: make(map[ID]ID),
	}
}

// AddNode adds a node to the graph.
// Returns ErrInvalidID if the ID is not positive, or ErrDuplicateNodeID if a
// node with the same ID already exists. An empty MetaTarget defaults to
// DefaultNodeMetaTarget and a nil Meta map is initialized.
func (g *Graph) AddNode(n Node) error {
	if n.ID <= 0 {
		return ErrInvalidID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.MetaTarget == "" {
		n.MetaTarget = DefaultNodeMetaTarget
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	g.nodes[n.ID] = &n
	g.nodeOrder = append(g.nodeOrder, n.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrInvalidID, ErrDuplicateEdgeID, ErrUnknownSourceNode or
// ErrUnknownTargetNode. An empty MetaTarget defaults to DefaultEdgeMetaTarget.
func (g *Graph) AddEdge(e Edge) error {
	if e.ID <= 0 {
		return ErrInvalidID
	}
	if _, exists := g.edges[e.ID]; exists {
		return ErrDuplicateEdgeID
	}
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.MetaTarget == "" {
		e.MetaTarget = DefaultEdgeMetaTarget
	}
	g.edges[e.ID] = &e
	g.edgeOrder = append(g.edgeOrder, e.ID)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.ID)
	g.incoming[e.To] = append(g.incoming[e.To], e.ID)
	return nil
}

// AddGroup adds a group. Members listed in NodeIDs are inserted as if by
// AddToGroup, so they must exist and must not belong to another group.
func (g *Graph) AddGroup(gr Group) error {
	if gr.ID <= 0 {
		return ErrInvalidID
	}
	if _, exists := g.groups[gr.ID]; exists {
		return ErrDuplicateGroupID
	}
	for _, id := range gr.NodeIDs {
		if _, ok := g.nodes[id]; !ok {
			return ErrUnknownNode
		}
		if _, grouped := g.membership[id]; grouped {
			return ErrAlreadyGrouped
		}
	}
	members := slices.Clone(gr.NodeIDs)
	gr.NodeIDs = nil
	g.groups[gr.ID] = &gr
	g.groupOrder = append(g.groupOrder, gr.ID)
	for _, id := range members {
		if slices.Contains(gr.NodeIDs, id) {
			continue
		}
		gr.NodeIDs = append(gr.NodeIDs, id)
		g.membership[id] = gr.ID
	}
	return nil
}

// AddToGroup inserts a node into a group.
// Adding a node to the group it already belongs to is a no-op.
func (g *Graph) AddToGroup(groupID, nodeID ID) error {
	gr, ok := g.groups[groupID]
	if !ok {
		return ErrUnknownGroup
	}
	if _, ok := g.nodes[nodeID]; !ok {
		return ErrUnknownNode
	}
	if current, grouped := g.membership[nodeID]; grouped {
		if current == groupID {
			return nil
		}
		return ErrAlreadyGrouped
	}
	gr.NodeIDs = append(gr.NodeIDs, nodeID)
	g.membership[nodeID] = groupID
	return nil
}

// RemoveFromGroup removes a node from its group, if any.
func (g *Graph) RemoveFromGroup(nodeID ID) {
	groupID, ok := g.membership[nodeID]
	if !ok {
		return
	}
	gr := g.groups[groupID]
	gr.NodeIDs = slices.DeleteFunc(gr.NodeIDs, func(id ID) bool { return id == nodeID })
	delete(g.membership, nodeID)
}

// RemoveNode removes a node together with its incident edges and its group
// membership. It returns the IDs of the removed edges so callers holding
// per-edge state can drop it.
func (g *Graph) RemoveNode(id ID) ([]ID, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, ErrUnknownNode
	}
	var removed []ID
	for _, eid := range slices.Concat(g.outgoing[id], g.incoming[id]) {
		if _, ok := g.edges[eid]; !ok {
			continue // self loops appear in both lists
		}
		g.removeEdge(eid)
		removed = append(removed, eid)
	}
	g.RemoveFromGroup(id)
	delete(g.nodes, id)
	delete(g.outgoing, id)
	delete(g.incoming, id)
	g.nodeOrder = slices.DeleteFunc(g.nodeOrder, func(n ID) bool { return n == id })
	return removed, nil
}

// RemoveEdge removes an edge. Returns ErrUnknownEdge if it does not exist.
func (g *Graph) RemoveEdge(id ID) error {
	if _, ok := g.edges[id]; !ok {
		return ErrUnknownEdge
	}
	g.removeEdge(id)
	return nil
}

func (g *Graph) removeEdge(id ID) {
	e := g.edges[id]
	drop := func(eid ID) bool { return eid == id }
	g.outgoing[e.From] = slices.DeleteFunc(g.outgoing[e.From], drop)
	g.incoming[e.To] = slices.DeleteFunc(g.incoming[e.To], drop)
	delete(g.edges, id)
	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, drop)
}

// RemoveGroup removes a group. Its member nodes stay in the graph, ungrouped.
func (g *Graph) RemoveGroup(id ID) error {
	gr, ok := g.groups[id]
	if !ok {
		return ErrUnknownGroup
	}
	for _, nid := range gr.NodeIDs {
		delete(g.membership, nid)
	}
	delete(g.groups, id)
	g.groupOrder = slices.DeleteFunc(g.groupOrder, func(gid ID) bool { return gid == id })
	return nil
}

// Node returns the node with the given ID and true, or nil and false if not
// found. The returned pointer refers to the node in the graph.
func (g *Graph) Node(id ID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the edge with the given ID and true, or nil and false if not
// found.
func (g *Graph) Edge(id ID) (*Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Group returns the group with the given ID and true, or nil and false if
// not found.
func (g *Graph) Group(id ID) (*Group, bool) {
	gr, ok := g.groups[id]
	return gr, ok
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id ID) bool { _, ok := g.nodes[id]; return ok }

// HasEdge reports whether an edge with the given ID exists.
func (g *Graph) HasEdge(id ID) bool { _, ok := g.edges[id]; return ok }

// GroupOf returns the group a node belongs to, if any.
func (g *Graph) GroupOf(nodeID ID) (ID, bool) {
	id, ok := g.membership[nodeID]
	return id, ok
}

// Nodes returns all nodes in insertion order. The pointers refer to the
// nodes in the graph.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.nodeOrder))
	for i, id := range g.nodeOrder {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	edges := make([]*Edge, len(g.edgeOrder))
	for i, id := range g.edgeOrder {
		edges[i] = g.edges[id]
	}
	return edges
}

// Groups returns all groups in insertion order.
func (g *Graph) Groups() []*Group {
	groups := make([]*Group, len(g.groupOrder))
	for i, id := range g.groupOrder {
		groups[i] = g.groups[id]
	}
	return groups
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// GroupCount returns the number of groups in the graph.
func (g *Graph) GroupCount() int { return len(g.groups) }

// Children returns the IDs of nodes this node has edges to, in edge
// insertion order. A node reached by parallel edges appears once per edge.
func (g *Graph) Children(id ID) []ID {
	var out []ID
	for _, eid := range g.outgoing[id] {
		out = append(out, g.edges[eid].To)
	}
	return out
}

// Parents returns the IDs of nodes that have edges to this node.
func (g *Graph) Parents(id ID) []ID {
	var out []ID
	for _, eid := range g.incoming[id] {
		out = append(out, g.edges[eid].From)
	}
	return out
}

// OutEdges returns the IDs of edges leaving the node.
func (g *Graph) OutEdges(id ID) []ID { return slices.Clone(g.outgoing[id]) }

// InEdges returns the IDs of edges entering the node.
func (g *Graph) InEdges(id ID) []ID { return slices.Clone(g.incoming[id]) }

// OutDegree returns the number of outgoing edges from the node.
func (g *Graph) OutDegree(id ID) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (g *Graph) InDegree(id ID) int { return len(g.incoming[id]) }

// Sources returns nodes with no incoming edges, in insertion order.
func (g *Graph) Sources() []*Node {
	var sources []*Node
	for _, id := range g.nodeOrder {
		if len(g.incoming[id]) == 0 {
			sources = append(sources, g.nodes[id])
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges, in insertion order.
func (g *Graph) Sinks() []*Node {
	var sinks []*Node
	for _, id := range g.nodeOrder {
		if len(g.outgoing[id]) == 0 {
			sinks = append(sinks, g.nodes[id])
		}
	}
	return sinks
}

// NextNodeID returns one more than the largest node ID in use.
func (g *Graph) NextNodeID() ID { return nextID(g.nodeOrder) }

// NextEdgeID returns one more than the largest edge ID in use.
func (g *Graph) NextEdgeID() ID { return nextID(g.edgeOrder) }

// NextGroupID returns one more than the largest group ID in use.
func (g *Graph) NextGroupID() ID { return nextID(g.groupOrder) }

func nextID(ids []ID) ID {
	if len(ids) == 0 {
		return 1
	}
	return slices.Max(ids) + 1
}

// Validate checks graph integrity and returns nil if valid.
// Returns ErrInvalidEdgeEndpoint if an edge references a missing node, or
// ErrInvalidGroupMember if a group lists a missing node.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return ErrInvalidEdgeEndpoint
		}
		if _, ok := g.nodes[e.To]; !ok {
			return ErrInvalidEdgeEndpoint
		}
	}
	for _, gr := range g.groups {
		for _, id := range gr.NodeIDs {
			if _, ok := g.nodes[id]; !ok {
				return ErrInvalidGroupMember
			}
		}
	}
	return nil
}
