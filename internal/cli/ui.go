package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stylegraph/pkg/graph"
	"github.com/matzehuels/stylegraph/pkg/style"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(16)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Graph Output
// =============================================================================

// printStats prints graph counts on a single line.
func printStats(s graph.Stats) {
	parts := []string{
		fmt.Sprintf("%d nodes", s.Nodes),
		fmt.Sprintf("%d edges", s.Edges),
		fmt.Sprintf("%d styles", s.Styles),
	}
	if s.Groups > 0 {
		parts = append(parts, fmt.Sprintf("%d groups", s.Groups))
	}
	fmt.Println("  " + StyleDim.Render(strings.Join(parts, " · ")))
}

// styleHeading renders "#id name (meta)" for list output.
func styleHeading(s *style.Style) string {
	h := StyleHighlight.Render(fmt.Sprintf("#%d", s.ID))
	if s.Name != "" {
		h += " " + StyleValue.Render(s.Name)
	}
	if s.MetaTarget != "" {
		h += " " + StyleDim.Render("("+s.MetaTarget+")")
	}
	return h
}

// formatProperties renders properties as "name=value" pairs in order.
func formatProperties(p *style.Properties) string {
	var parts []string
	for name, v := range p.All() {
		parts = append(parts, name+"="+v.String())
	}
	return strings.Join(parts, " ")
}

func formatIDs[T ~int32](ids []T) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

// printStyle prints a style with its properties and attachments.
func printStyle(m *style.Manager, s *style.Style) {
	fmt.Println(styleHeading(s))
	if s.Target != "" {
		printKeyValue("  target", s.Target)
	}
	if s.Properties.Len() > 0 {
		printKeyValue("  properties", formatProperties(&s.Properties))
	}
	printKeyValue("  nodes", formatIDs(s.NodeIDs.IDs()))
	printKeyValue("  edges", formatIDs(s.EdgeIDs.IDs()))
	for _, kind := range []style.Kind{style.KindNode, style.KindEdge} {
		if metas := m.DefaultsFor(s.ID, kind); len(metas) > 0 {
			printKeyValue("  default "+kind.String(), strings.Join(metas, ", "))
		}
	}
}
