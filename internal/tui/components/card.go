// Package components provides the small widgets the timeline view is built
// from: total cards, the status bar and the monthly chart.
package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subcal/internal/tui/theme"
)

// LayoutRow distributes totalWidth into n widths that sum to exactly totalWidth.
// First items absorb the remainder from integer division.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	base := totalWidth / n
	remainder := totalWidth % n
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
		if i < remainder {
			widths[i]++
		}
	}
	return widths
}

// Total is one labeled amount shown in a card.
type Total struct {
	Label string
	Value string
	Note  string // second line under the value, optional
	Focus bool   // draw with the accent border
}

// TotalCard renders a bordered card holding one total. outerWidth includes
// the border.
func TotalCard(c Total, outerWidth int) string {
	t := theme.Active

	border := t.Border
	if c.Focus {
		border = t.BorderAccent
	}
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(max(outerWidth-2, 10)).
		Padding(0, 1)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	noteStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	content := labelStyle.Render(c.Label) + "\n" + valueStyle.Render(c.Value)
	if c.Note != "" {
		content += "\n" + noteStyle.Render(c.Note)
	}
	return cardStyle.Render(content)
}

// TotalCardRow renders cards side by side filling exactly totalWidth.
func TotalCardRow(cards []Total, totalWidth int) string {
	if len(cards) == 0 {
		return ""
	}
	widths := LayoutRow(totalWidth, len(cards))
	rendered := make([]string, len(cards))
	for i, c := range cards {
		rendered[i] = TotalCard(c, widths[i])
	}
	return CardRow(rendered)
}

// ContentCard renders a bordered content card with an optional title.
// outerWidth controls the total rendered width including border.
func ContentCard(title, body string, outerWidth int) string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(max(outerWidth-2, 10)).
		Padding(0, 1)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	content := ""
	if title != "" {
		content = titleStyle.Render(title) + "\n\n"
	}
	return cardStyle.Render(content + body)
}

// CardRow joins pre-rendered cards horizontally. Shorter cards are padded
// with the background color so the row stays rectangular.
func CardRow(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	height := 0
	for _, c := range cards {
		height = max(height, lipgloss.Height(c))
	}
	bg := theme.Active.Background
	padded := make([]string, len(cards))
	for i, c := range cards {
		padded[i] = lipgloss.Place(lipgloss.Width(c), height, lipgloss.Left, lipgloss.Top, c,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, padded...)
}

// CardInnerWidth returns the usable text width inside a card given its
// outer width (border and padding removed).
func CardInnerWidth(outerWidth int) int {
	return max(outerWidth-4, 10)
}
