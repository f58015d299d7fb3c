// Package pkg holds the stylegraph libraries.
//
// # Overview
//
// A styled graph is a directed graph whose nodes and edges may carry an
// explicit style, with per-meta-target default styles as the fallback. The
// libraries are layered:
//
//  1. [topology] - nodes, edges and groups without styling
//  2. [style] - styles, typed properties, the style manager and its change events
//  3. [graph] - topology and styles together, with resolution and integrity checks
//  4. [io] - the deterministic binary encoding and the JSON encoding
//  5. [stylesheet] - YAML and TOML style definitions applied to a manager
//  6. [store] - named snapshots on disk, SQLite, Redis or MongoDB
//  7. [server] - HTTP API and websocket change stream
//  8. [render/nodelink] - Graphviz diagrams drawn with resolved styles
//
// # Quick Start
//
//	g := graph.New()
//	_ = g.Styles().AddStyle(&style.Style{ID: 1, MetaTarget: "Task", Name: "Default Task"})
//	_ = g.Styles().SetDefaultStyle("Task", 1, style.KindNode)
//	_ = g.AddNode(topology.Node{ID: 1, MetaTarget: "Task"}, style.NoStyle)
//
//	data, _ := io.Marshal(ctx, g, io.FormatBinary)
//	back, _ := io.Unmarshal(ctx, data, io.FormatBinary)
//	back.Resolve(style.KindNode, 1) // style 1, from the Task default
//
// [topology]: github.com/matzehuels/stylegraph/pkg/topology
// [style]: github.com/matzehuels/stylegraph/pkg/style
// [graph]: github.com/matzehuels/stylegraph/pkg/graph
// [io]: github.com/matzehuels/stylegraph/pkg/io
// [stylesheet]: github.com/matzehuels/stylegraph/pkg/stylesheet
// [store]: github.com/matzehuels/stylegraph/pkg/store
// [server]: github.com/matzehuels/stylegraph/pkg/server
// [render/nodelink]: github.com/matzehuels/stylegraph/pkg/render/nodelink
package pkg
