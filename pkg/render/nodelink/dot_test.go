package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/graph"
	"github.com/matzehuels/stylegraph/pkg/style"
	"github.com/matzehuels/stylegraph/pkg/topology"
)

func styledGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()

	var task, hot, dep style.Properties
	mustSet(t, &task, "fill", style.ColorValue(style.RGBA(0xee, 0xee, 0xee, 0xff)))
	mustSet(t, &task, "shape", style.StringValue("ellipse"))
	mustSet(t, &hot, "fill", style.ColorValue(style.RGBA(0xff, 0, 0, 0xff)))
	mustSet(t, &hot, "dashed", style.BoolValue(true))
	mustSet(t, &dep, "line.color", style.ColorValue(style.RGBA(0x33, 0x66, 0x99, 0xff)))
	mustSet(t, &dep, "line.width", style.IntValue(2))
	mustSet(t, &dep, "label", style.StringValue("needs"))

	for _, s := range []*style.Style{
		{ID: 1, MetaTarget: "Task", Properties: task},
		{ID: 2, MetaTarget: "Task", Properties: hot},
		{ID: 3, MetaTarget: "Dep", Properties: dep},
	} {
		if err := g.Styles().AddStyle(s); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.Styles().SetDefaultStyle("Task", 1, style.KindNode); err != nil {
		t.Fatal(err)
	}
	if err := g.Styles().SetDefaultStyle("Dep", 3, style.KindEdge); err != nil {
		t.Fatal(err)
	}
	for _, n := range []struct {
		node topology.Node
		sid  style.ID
	}{
		{topology.Node{ID: 1, MetaTarget: "Task", Label: "build"}, style.NoStyle},
		{topology.Node{ID: 2, MetaTarget: "Task", Label: "deploy"}, 2},
		{topology.Node{ID: 3, MetaTarget: "Note"}, style.NoStyle},
	} {
		if err := g.AddNode(n.node, n.sid); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AddEdge(topology.Edge{ID: 1, From: 1, To: 2, MetaTarget: "Dep"}, style.NoStyle); err != nil {
		t.Fatal(err)
	}
	if err := g.AddGroup(topology.Group{ID: 1, Label: "pipeline", NodeIDs: []topology.ID{1, 2}}); err != nil {
		t.Fatal(err)
	}
	return g
}

func mustSet(t *testing.T, p *style.Properties, name string, v style.Value) {
	t.Helper()
	if err := p.Set(name, v); err != nil {
		t.Fatal(err)
	}
}

func TestToDOT(t *testing.T) {
	g := styledGraph(t)
	dot := ToDOT(g, Options{})

	for _, want := range []string{
		`"n1" [label="build", fillcolor="#eeeeee", shape="ellipse"]`,
		`"n2" [label="deploy", fillcolor="#ff0000", style="rounded,filled,dashed"]`,
		`"n3" [label="3"]`,
		`"n1" -> "n2" [label="needs", color="#336699", penwidth="2"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "cluster_") {
		t.Error("groups should only be drawn with Options.Groups")
	}
	if dot != ToDOT(g, Options{}) {
		t.Error("ToDOT is not deterministic")
	}
}

func TestToDOTOptions(t *testing.T) {
	g := styledGraph(t)
	dot := ToDOT(g, Options{Detailed: true, Groups: true})

	if !strings.Contains(dot, `subgraph "cluster_1"`) || !strings.Contains(dot, `label="pipeline"`) {
		t.Errorf("missing group cluster:\n%s", dot)
	}
	if !strings.Contains(dot, `label="build\nTask\nstyle: 1"`) {
		t.Errorf("missing detailed label:\n%s", dot)
	}
	if n := strings.Count(dot, `"n1" [`); n != 1 {
		t.Errorf("node n1 declared %d times", n)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"svg", ".PNG", "dot"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q) error = %v", s, err)
		}
	}
	if _, err := ParseFormat("pdf"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ParseFormat(pdf) error = %v", err)
	}
}

func TestRenderDOT(t *testing.T) {
	g := styledGraph(t)
	out, err := Render(context.Background(), g, FormatDOT, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != ToDOT(g, Options{}) {
		t.Error("Render(dot) should return ToDOT output")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s", got)
	}
	if string(normalizeViewBox([]byte("<svg>"))) != "<svg>" {
		t.Error("svg without viewBox should be unchanged")
	}
}
