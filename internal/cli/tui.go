package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stylegraph/pkg/graph"
	"github.com/matzehuels/stylegraph/pkg/style"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	paneStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// browserModel is the bubbletea model for `inspect -i`: a style list on the
// left and the selected style's properties and usage on the right.
type browserModel struct {
	g      *graph.Graph
	styles []*style.Style
	cursor int
	offset int
	height int
	width  int
}

func newBrowserModel(g *graph.Graph) browserModel {
	return browserModel{
		g:      g,
		styles: g.Styles().Styles(),
		height: 15,
		width:  100,
	}
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.styles)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = max(len(m.styles)-1, 0)
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
		m.width = msg.Width
	}

	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	return m, nil
}

func (m browserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Styles"))
	b.WriteString("  ")
	s := m.g.Stats()
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d nodes · %d edges · %d styles", s.Nodes, s.Edges, s.Styles)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	if len(m.styles) == 0 {
		b.WriteString(listDimStyle.Render("  no styles"))
		return b.String()
	}

	left := m.listView()
	right := paneStyle.Width(max(m.width-lipgloss.Width(left)-4, 30)).Render(m.detailView(m.styles[m.cursor]))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.styles))))
	return b.String()
}

func (m browserModel) listView() string {
	var b strings.Builder
	end := min(m.offset+m.height, len(m.styles))
	for i := m.offset; i < end; i++ {
		st := m.styles[i]
		name := st.Name
		if name == "" {
			name = "(unnamed)"
		}
		line := fmt.Sprintf("#%-4d %-24s", st.ID, name)
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m browserModel) detailView(st *style.Style) string {
	var b strings.Builder
	b.WriteString(styleHeading(st))
	b.WriteString("\n")
	if st.Target != "" {
		b.WriteString(listDimStyle.Render("target " + st.Target))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if st.Properties.Len() > 0 {
		rows := [][]string{}
		for name, v := range st.Properties.All() {
			rows = append(rows, []string{name, v.Type().String(), v.String()})
		}
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
			Headers("Property", "Type", "Value").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == -1 {
					return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
				}
				if col == 1 {
					return listDimStyle
				}
				return lipgloss.NewStyle()
			})
		b.WriteString(t.Render())
		b.WriteString("\n")
	} else {
		b.WriteString(listDimStyle.Render("no properties"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("nodes  %s\n", formatIDs(st.NodeIDs.IDs())))
	b.WriteString(fmt.Sprintf("edges  %s\n", formatIDs(st.EdgeIDs.IDs())))
	for _, kind := range []style.Kind{style.KindNode, style.KindEdge} {
		if metas := m.g.Styles().DefaultsFor(st.ID, kind); len(metas) > 0 {
			b.WriteString(StyleSuccess.Render(fmt.Sprintf("default %s for %s", kind, strings.Join(metas, ", "))))
			b.WriteString("\n")
		}
	}
	return b.String()
}
