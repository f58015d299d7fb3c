package io

import (
	"fmt"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/graph"
	"github.com/matzehuels/stylegraph/pkg/style"
	"github.com/matzehuels/stylegraph/pkg/topology"
)

type styledNode struct {
	topology.Node
	style style.ID
}

type styledEdge struct {
	topology.Edge
	style style.ID
}

type defaultEntry struct {
	meta string
	id   style.ID
}

// assembly collects decoded parts before any cross reference is checked, so
// wire order between nodes, edges and styles does not matter.
type assembly struct {
	nodes    []styledNode
	edges    []styledEdge
	groups   []topology.Group
	styles   []*style.Style
	defaults [2][]defaultEntry // indexed by style.Kind

	progress ProgressFunc
}

// build validates the collected parts and assembles a graph. Every failure
// is reported as CORRUPT_GRAPH and no partial graph escapes.
func (a *assembly) build() (*graph.Graph, error) {
	g, err := a.assemble()
	if err != nil {
		if errors.Is(err, errors.ErrCodeCorruptGraph) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeCorruptGraph, err, "invalid graph")
	}
	return g, nil
}

func (a *assembly) assemble() (*graph.Graph, error) {
	topo := topology.New()
	nodeStyles := make(map[topology.ID]style.ID)
	edgeStyles := make(map[topology.ID]style.ID)
	p := a.tracker(a.progress)

	for _, n := range a.nodes {
		if err := topo.AddNode(n.Node); err != nil {
			return nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
		if n.style != style.NoStyle {
			nodeStyles[n.ID] = n.style
		}
		p.step()
	}
	for _, e := range a.edges {
		if err := topo.AddEdge(e.Edge); err != nil {
			return nil, fmt.Errorf("edge %d: %w", e.ID, err)
		}
		if e.style != style.NoStyle {
			edgeStyles[e.ID] = e.style
		}
		p.step()
	}
	for _, gr := range a.groups {
		if err := topo.AddGroup(gr); err != nil {
			return nil, fmt.Errorf("group %d: %w", gr.ID, err)
		}
		p.step()
	}

	mgr := style.NewManager()
	for _, s := range a.styles {
		if err := mgr.AddStyle(s); err != nil {
			return nil, fmt.Errorf("style %d: %w", s.ID, err)
		}
		p.step()
	}
	for _, kind := range []style.Kind{style.KindNode, style.KindEdge} {
		seen := make(map[string]bool)
		for _, d := range a.defaults[kind] {
			if seen[d.meta] {
				return nil, fmt.Errorf("duplicate default %s style for %q", kind, d.meta)
			}
			seen[d.meta] = true
			if err := mgr.SetDefaultStyle(d.meta, d.id, kind); err != nil {
				return nil, fmt.Errorf("default %s style for %q: %w", kind, d.meta, err)
			}
		}
	}

	return graph.Restore(topo, mgr, nodeStyles, edgeStyles)
}

// disassemble flattens a graph into the order the encoders write.
func disassemble(g *graph.Graph) *assembly {
	a := &assembly{}
	for _, n := range g.Nodes() {
		a.nodes = append(a.nodes, styledNode{Node: *n.Base, style: n.StyleID})
	}
	for _, e := range g.Edges() {
		a.edges = append(a.edges, styledEdge{Edge: *e.Base, style: e.StyleID})
	}
	for _, gr := range g.Topology().Groups() {
		a.groups = append(a.groups, *gr)
	}
	a.styles = g.Styles().Styles()
	for _, kind := range []style.Kind{style.KindNode, style.KindEdge} {
		defaults := g.Styles().Defaults(kind)
		for _, meta := range sortedKeys(defaults) {
			a.defaults[kind] = append(a.defaults[kind], defaultEntry{meta: meta, id: defaults[meta]})
		}
	}
	return a
}
