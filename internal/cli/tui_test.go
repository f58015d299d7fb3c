package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/stylegraph/pkg/graph"
	"github.com/matzehuels/stylegraph/pkg/style"
)

func browserGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	var p style.Properties
	if err := p.Set("shape", style.StringValue("box")); err != nil {
		t.Fatal(err)
	}
	for _, s := range []*style.Style{
		{ID: 1, Name: "Default Task", MetaTarget: "Task", Properties: p},
		{ID: 2, Name: "Flow"},
		{ID: 3},
	} {
		if err := g.Styles().AddStyle(s); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.Styles().SetDefaultStyle("Task", 1, style.KindNode); err != nil {
		t.Fatal(err)
	}
	return g
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowserNavigation(t *testing.T) {
	var m tea.Model = newBrowserModel(browserGraph(t))

	steps := []struct {
		key    string
		cursor int
	}{
		{"down", 1},
		{"j", 2},
		{"down", 2},
		{"up", 1},
		{"g", 0},
		{"G", 2},
	}
	for _, s := range steps {
		m, _ = m.Update(key(s.key))
		if got := m.(browserModel).cursor; got != s.cursor {
			t.Fatalf("after %q cursor = %d, want %d", s.key, got, s.cursor)
		}
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestBrowserScrolls(t *testing.T) {
	var m tea.Model = newBrowserModel(browserGraph(t))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 9})
	bm := m.(browserModel)
	bm.height = 2
	m = bm

	m, _ = m.Update(key("G"))
	if off := m.(browserModel).offset; off != 1 {
		t.Errorf("offset = %d, want 1", off)
	}
}

func TestBrowserView(t *testing.T) {
	m := newBrowserModel(browserGraph(t))
	view := m.View()
	for _, want := range []string{"Default Task", "shape", "box", "default node for Task", "[1/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	empty := newBrowserModel(graph.New()).View()
	if !strings.Contains(empty, "no styles") {
		t.Error("empty graph view should say no styles")
	}
}
