// Package render groups the visual exports of styled graphs.
//
// The [nodelink] subpackage draws graphs as Graphviz node-link diagrams
// whose colors, shapes and line styles come from each entity's resolved
// style.
//
// [nodelink]: github.com/matzehuels/stylegraph/pkg/render/nodelink
package render
