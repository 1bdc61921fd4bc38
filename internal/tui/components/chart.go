package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subcal/internal/tui/theme"
)

var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders one row of block characters scaled to the peak value.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := peakOf(values)

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(math.Round(v / peak * float64(len(blocks)-1)))
		idx = min(max(idx, 1), len(blocks)-1)
		if v <= 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// BarChart renders vertical bars, one per value, with a labeled y axis and
// one label under each bar. The selected bar, when in range, is drawn in
// the bright accent. Too small an area falls back to a sparkline.
func BarChart(values []float64, labels []string, selected int, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active
	if width < 15 || height < 3 {
		return Sparkline(values, t.Accent)
	}

	ceiling := niceCeiling(peakOf(values))
	yLabelW := max(len(FormatChartLabel(ceiling))+1, 4)

	n := len(values)
	chartW := width - yLabelW - 1
	barW := min(max((chartW-(n-1))/n, 1), 6)
	rows := height - 2 // x axis and labels

	bg := lipgloss.NewStyle().Background(t.Surface)
	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	bar := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	hot := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)

	var b strings.Builder
	for row := rows; row >= 1; row-- {
		top := ceiling * float64(row) / float64(rows)
		bottom := ceiling * float64(row-1) / float64(rows)

		label := ""
		if row == rows {
			label = FormatChartLabel(ceiling)
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", yLabelW, label)))
		for i, v := range values {
			if i > 0 {
				b.WriteString(bg.Render(" "))
			}
			cell := " "
			switch {
			case v >= top:
				cell = "█"
			case v > bottom:
				idx := int((v - bottom) / (top - bottom) * 8)
				cell = string(blocks[min(max(idx, 1), 8)])
			}
			style := bar
			if i == selected {
				style = hot
			}
			b.WriteString(style.Render(strings.Repeat(cell, barW)))
		}
		b.WriteString("\n")
	}

	axisLen := n*barW + n - 1
	b.WriteString(axis.Render(fmt.Sprintf("%*s└%s", yLabelW, "0", strings.Repeat("─", axisLen))))
	b.WriteString("\n")
	b.WriteString(bg.Render(strings.Repeat(" ", yLabelW+1)))
	for i := 0; i < n; i++ {
		lbl := ""
		if i < len(labels) {
			lbl = labels[i]
		}
		cell := truncRunes(lbl, barW)
		cell += strings.Repeat(" ", barW-len([]rune(cell)))
		if i > 0 {
			b.WriteString(bg.Render(" "))
		}
		style := axis
		if i == selected {
			style = hot
		}
		b.WriteString(style.Render(cell))
	}
	return b.String()
}

func peakOf(values []float64) float64 {
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		return 1
	}
	return peak
}

// niceCeiling rounds v up to 1, 2 or 5 times a power of ten.
func niceCeiling(v float64) float64 {
	if v <= 0 {
		return 1
	}
	base := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if v <= m*base {
			return m * base
		}
	}
	return 10 * base
}

func truncRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// FormatChartLabel formats an axis amount compactly: 1500 -> "1.5k".
func FormatChartLabel(v float64) string {
	switch {
	case v >= 1e6:
		return trimZero(fmt.Sprintf("%.1f", v/1e6)) + "M"
	case v >= 1e3:
		return trimZero(fmt.Sprintf("%.1f", v/1e3)) + "k"
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
