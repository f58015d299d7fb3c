package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/graph"
	"github.com/matzehuels/stylegraph/pkg/style"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the meta-target and resolved style id to labels.
	Detailed bool
	// Groups draws groups as clusters around their member nodes.
	Groups bool
}

// Style properties translated into Graphviz attributes. The first matching
// property wins; unknown properties are ignored.
var (
	nodeAttrs = []attrRule{
		{"fillcolor", []string{"fill", "fill.color", "background"}},
		{"color", []string{"border.color", "color"}},
		{"penwidth", []string{"border.width", "width"}},
		{"shape", []string{"shape"}},
		{"fontcolor", []string{"font.color", "text.color"}},
		{"fontsize", []string{"font.size"}},
	}
	edgeAttrs = []attrRule{
		{"color", []string{"line.color", "color"}},
		{"penwidth", []string{"line.width", "width"}},
		{"arrowhead", []string{"arrow", "arrowhead"}},
		{"fontcolor", []string{"font.color", "text.color"}},
	}
)

type attrRule struct {
	attr  string
	props []string
}

// ToDOT converts g to Graphviz DOT source, styling every node and edge from
// its resolved style. Output is deterministic for a given graph.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	clustered := make(map[int32]bool)
	if opts.Groups {
		for _, gr := range g.Topology().Groups() {
			fmt.Fprintf(&buf, "  subgraph \"cluster_%d\" {\n", gr.ID)
			fmt.Fprintf(&buf, "    label=%q;\n", gr.Label)
			for _, id := range gr.NodeIDs {
				if n, ok := g.Node(id); ok {
					fmt.Fprintf(&buf, "    %s;\n", nodeLine(g, n, opts))
					clustered[int32(id)] = true
				}
			}
			buf.WriteString("  }\n")
		}
	}

	for _, n := range g.Nodes() {
		if !clustered[int32(n.Base.ID)] {
			fmt.Fprintf(&buf, "  %s;\n", nodeLine(g, n, opts))
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		st := g.Resolve(style.KindEdge, e.Base.ID)
		attrs := styleAttrs(st, edgeAttrs)
		label := e.Base.Label
		if v, ok := prop(st, "label"); ok {
			label = v
		}
		if label != "" {
			attrs = append([]string{fmt.Sprintf("label=%q", label)}, attrs...)
		}
		if dashed(st) {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&buf, "  \"n%d\" -> \"n%d\"", e.Base.From, e.Base.To)
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
		}
		buf.WriteString(";\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLine(g *graph.Graph, n graph.Node, opts Options) string {
	st := g.Resolve(style.KindNode, n.Base.ID)
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(g, n, st, opts.Detailed))}
	attrs = append(attrs, styleAttrs(st, nodeAttrs)...)
	if dashed(st) {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return fmt.Sprintf("\"n%d\" [%s]", n.Base.ID, strings.Join(attrs, ", "))
}

func nodeLabel(g *graph.Graph, n graph.Node, st *style.Style, detailed bool) string {
	label := n.Base.Label
	if v, ok := prop(st, "label"); ok {
		label = v
	}
	if label == "" {
		label = strconv.Itoa(int(n.Base.ID))
	}
	if !detailed {
		return label
	}
	sid := g.Styles().Resolve(n, style.KindNode)
	return fmt.Sprintf("%s\n%s\nstyle: %d", label, n.MetaTarget(), sid)
}

func styleAttrs(st *style.Style, rules []attrRule) []string {
	var attrs []string
	for _, r := range rules {
		for _, name := range r.props {
			if v, ok := prop(st, name); ok {
				attrs = append(attrs, fmt.Sprintf("%s=%q", r.attr, v))
				break
			}
		}
	}
	return attrs
}

func prop(st *style.Style, name string) (string, bool) {
	if st == nil {
		return "", false
	}
	v, ok := st.Properties.Get(name)
	if !ok {
		return "", false
	}
	return v.String(), true
}

func dashed(st *style.Style) bool {
	if st == nil {
		return false
	}
	v, ok := st.Properties.Get("dashed")
	if !ok {
		return false
	}
	b, _ := v.AsBool()
	return b
}

// Format is an output format supported by [Render].
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat parses a format name, accepting an optional leading dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(s), ".")); f {
	case FormatDOT, FormatSVG, FormatPNG:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown render format %q (want dot, svg or png)", s)
}

// Render produces g in the given format.
func Render(ctx context.Context, g *graph.Graph, format Format, opts Options) ([]byte, error) {
	dot := ToDOT(g, opts)
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(ctx, dot)
	case FormatPNG:
		return render(ctx, dot, graphviz.PNG)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported render format %q", format)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	svg, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the drawing scales from a
// zero origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
