// Package nodelink renders styled graphs as node-link diagrams.
//
// Every node and edge is drawn with its resolved style: the explicit style
// when one is assigned, otherwise the default for its meta-target. Style
// properties map onto Graphviz attributes:
//
//	nodes: fill, border.color, border.width, shape, font.color, font.size, label, dashed
//	edges: line.color, line.width, arrow, font.color, label, dashed
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Or pick the format by name with [Render].
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering,
// so no Graphviz installation is required.
package nodelink
