package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/theirongolddev/subcal/internal/tui/theme"
)

// RenderStatusBar renders the bottom bar: key hints on the left, state on
// the right, padded to width. The hints are cut first when space runs out.
func RenderStatusBar(width int, hints, right string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)
	rightStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)

	left := " " + hints
	if right != "" {
		right += " "
	}
	room := width - lipgloss.Width(right)
	if lipgloss.Width(left) > room {
		left = ansi.Truncate(left, max(room, 0), "")
	}
	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)

	return style.Render(left+strings.Repeat(" ", padding)) + rightStyle.Render(right)
}
