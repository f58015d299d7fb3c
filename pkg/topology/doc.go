// Package topology provides the node/edge/group graph that styled graphs are
// built on.
//
// # Overview
//
// A topology graph owns identity and adjacency: which nodes exist, which
// edges connect them, and which nodes are grouped together. It knows nothing
// about visual styles. Styles reference topology entities by [ID] and are
// layered on top by package graph.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [Graph.AddNode], edges with
// [Graph.AddEdge] and groups with [Graph.AddGroup]:
//
//	g := topology.New()
//	g.AddNode(topology.Node{ID: 1, MetaTarget: "Task", Label: "Fetch"})
//	g.AddNode(topology.Node{ID: 2, MetaTarget: "Task", Label: "Store"})
//	g.AddEdge(topology.Edge{ID: 1, From: 1, To: 2})
//
// Identifiers are strictly positive int32 values, unique per entity kind.
// Zero is reserved because the binary wire format uses it for "unset".
//
// # Ordering
//
// [Graph.Nodes], [Graph.Edges] and [Graph.Groups] return entities in
// insertion order. Encoders rely on this for byte-for-byte reproducible
// output.
//
// # Concurrency
//
// Graph is not safe for concurrent use. Hosts that share a graph across
// goroutines must synchronize access externally.
package topology
