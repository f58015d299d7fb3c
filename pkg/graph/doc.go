// Package graph pairs a topology graph with the style manager that owns its
// styles.
//
// # Architecture
//
// The package sits between the raw structure and the style repository:
//
//   - pkg/topology.Graph: nodes, edges and groups with no style information
//   - pkg/style.Manager: styles, default tables and entity sets
//   - [Graph]: both, plus the explicit style assignment of every node and edge
//
// Mutations that touch both sides go through [Graph] so they stay consistent.
// [Graph.SetStyle] detaches an entity from its previous style before attaching
// it to the new one, [Graph.RemoveNode] drops style references held by the
// node and its incident edges, and [Graph.RemoveStyle] clears explicit
// references so affected entities fall back to their meta-target default.
//
// # Resolution
//
// [Node] and [Edge] implement style.Entity, so resolution is a single call:
//
//	g := graph.New()
//	g.Styles().AddStyle(&style.Style{ID: 1, MetaTarget: "Task"})
//	g.Styles().SetDefaultStyle("Task", 1, style.KindNode)
//	g.AddNode(topology.Node{ID: 1, MetaTarget: "Task"}, style.NoStyle)
//	s := g.Resolve(style.KindNode, 1) // style 1
//
// # Validation
//
// [Graph.Validate] and [Restore] report dangling references with
// CORRUPT_GRAPH. Decoders use [Restore] to assemble a graph without
// rewriting style entity sets.
package graph
