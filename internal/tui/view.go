package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subcal/internal/cli"
	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
	"github.com/theirongolddev/subcal/internal/selection"
	"github.com/theirongolddev/subcal/internal/source"
	"github.com/theirongolddev/subcal/internal/tui/components"
	"github.com/theirongolddev/subcal/internal/tui/theme"
)

const (
	chartRows   = 5
	chartHeight = chartRows + 4 // border and title
)

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  subcal needs at least %d columns.\n",
		a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, max(a.height, 5)), max(a.height, 5))
}

func (a App) placeCard(card string) string {
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(theme.Active.Background))
}

func (a App) viewLoading() string {
	t := theme.Active
	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := logo.Render("◈ subcal") + muted.Render(" · subscription timeline") + "\n\n" +
		a.spinner.View() + muted.Render(" Loading subscriptions...")
	return a.placeCard(components.ContentCard("", body, min(a.width-4, 48)))
}

func (a App) viewForm() string {
	return a.placeCard(components.ContentCard("Add subscription", a.form.View(), min(a.width-2, 76)))
}

func (a App) viewHelp() string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	h := a.help
	h.ShowAll = true
	body := h.View(a.keys) + "\n\n" + dim.Render("Press any key to close")
	return a.placeCard(components.ContentCard("◈ Keyboard Shortcuts", body, min(a.width-4, 90)))
}

func (a App) viewMain() string {
	t := theme.Active
	e := a.engine
	today := e.Today()

	g := newGrid(e.Viewport(), a.timelineCols())
	cs := newColumnStyle(g, a.cursor, e.Selection().EffectiveSpans())
	hl := highlight{today: today, on: a.opts.Highlights}
	lod := e.Viewport().LOD()

	var tickRows []row
	tickRows = append(tickRows, yearRow(g, t, hl))
	if lod.Month {
		tickRows = append(tickRows, monthRow(g, t, hl))
	}
	if lod.Day {
		tickRows = append(tickRows, dayRow(g, t, hl))
	}
	tickRows = append(tickRows, markerRow(g, t, a.cursor, today))

	header := a.renderHeader()
	cards := a.renderCards()
	status := a.renderStatus()

	fixed := lipgloss.Height(header) + len(tickRows) + lipgloss.Height(cards) + lipgloss.Height(status)
	scheduleRows := e.Schedule(a.sortMode)
	barSpace := max(a.height-fixed, 1)
	showChart := barSpace-len(scheduleRows) >= chartHeight
	if showChart {
		barSpace -= chartHeight
	}

	gutter := lipgloss.NewStyle().Background(t.Background).Width(a.gutterWidth())
	var b strings.Builder
	for _, r := range tickRows {
		b.WriteString(gutter.Render(""))
		b.WriteString(r.render(cs, t))
		b.WriteString("\n")
	}

	shown := scheduleRows
	if len(shown) > barSpace {
		shown = shown[:max(barSpace-1, 0)]
	}
	for i, sr := range shown {
		color := t.BarColor(i, barOverride(sr.Sub.Color))
		name := lipgloss.NewStyle().Foreground(color).Background(t.Background).Bold(true).
			Width(a.gutterWidth()).MaxWidth(a.gutterWidth())
		b.WriteString(name.Render(truncStr(sr.Sub.Name, a.nameWidth())))
		b.WriteString(barRow(g, sr.Sub, e.ChargeDays(sr.Sub), color, t).render(cs, t))
		b.WriteString("\n")
	}
	if hidden := len(scheduleRows) - len(shown); hidden > 0 {
		more := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background)
		b.WriteString(more.Render(fmt.Sprintf(" +%d more", hidden)))
		b.WriteString("\n")
	}
	if len(scheduleRows) == 0 {
		empty := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background)
		b.WriteString(empty.Render(" No subscriptions yet. Press a to add one or run `subcal import`."))
		b.WriteString("\n")
	}

	body := strings.TrimSuffix(b.String(), "\n")
	body = padHeight(truncateHeight(body, len(tickRows)+barSpace), len(tickRows)+barSpace)
	body = fillLinesWithBackground(body, a.width, t.Background)

	sections := []string{header, body}
	if showChart {
		sections = append(sections, a.renderChart())
	}
	sections = append(sections, cards, status)

	output := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderHeader() string {
	t := theme.Active
	vp := a.engine.Viewport()

	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	left := logo.Render(" ◈ subcal ") +
		muted.Render(" cursor ") + accent.Render(a.cursor.ISO()+" "+a.cursor.Time().Weekday().String()[:3]) +
		muted.Render("  zoom ") + accent.Render(zoomLabel(vp.DayWidth)) +
		muted.Render(" · "+lodLabel(vp.LOD().Day, vp.LOD().Month))
	right := muted.Render("sort ") + accent.Render(string(a.sortMode)) + muted.Render(" ")

	pad := max(a.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + muted.Render(strings.Repeat(" ", pad)) + right
}

func (a App) renderCards() string {
	e := a.engine
	p := a.cursor.Parts()

	dayTotal := e.DayTotal(a.cursor)
	cards := []components.Total{
		{
			Label: "Day · " + a.cursor.ISO(),
			Value: money(dayTotal),
			Note:  a.chargesOn(a.cursor),
		},
		{
			Label: fmt.Sprintf("Month · %s %d", monthAbbr(p.Month), p.Year),
			Value: money(e.MonthTotal(p.Year, p.Month)),
		},
		{
			Label: fmt.Sprintf("Year · %d", p.Year),
			Value: money(e.YearTotal(p.Year)),
		},
	}

	sel := components.Total{Label: "Selection", Value: "-", Note: "d/m/y to select"}
	if info, ok := e.SelectionTotals(); ok {
		sel.Focus = true
		sel.Value = money(info.Total)
		if info.Label != "" {
			sel.Label = "Selection · " + info.Label
		} else {
			sel.Label = fmt.Sprintf("Selection · %d spans", len(info.Spans))
		}
		sel.Note = fmt.Sprintf("%s · %d days", info.Kind, selectedDays(info.Spans))
	}
	cards = append(cards, sel)
	return components.TotalCardRow(cards, a.width)
}

func (a App) renderChart() string {
	e := a.engine
	year := a.cursor.Parts().Year
	currency := a.chartCurrency(year)

	values := make([]float64, 12)
	labels := make([]string, 12)
	for m := range values {
		values[m] = e.MonthTotal(year, m)[currency]
		labels[m] = monthAbbr(m)
	}
	title := fmt.Sprintf("%d by month · %s", year, currency)
	inner := components.CardInnerWidth(a.width)
	chart := components.BarChart(values, labels, a.cursor.Parts().Month, inner, chartRows)
	return components.ContentCard(title, chart, a.width)
}

// chartCurrency picks the configured currency, or the one with the largest
// total in year.
func (a App) chartCurrency(year int) string {
	if a.opts.Currency != "" {
		return a.opts.Currency
	}
	total := a.engine.YearTotal(year)
	best, bestV := "USD", math.Inf(-1)
	for _, code := range total.Codes() {
		if total[code] > bestV {
			best, bestV = code, total[code]
		}
	}
	return best
}

func (a App) renderStatus() string {
	t := theme.Active
	right := a.status
	if a.loadErr != nil {
		right = lipgloss.NewStyle().Foreground(t.Error).Background(t.Surface).Render("load error: " + a.loadErr.Error())
	}
	return components.RenderStatusBar(a.width, a.help.ShortHelpView(a.keys.ShortHelp()), right)
}

// chargesOn names the subscriptions billing on d.
func (a App) chargesOn(d dayindex.Day) string {
	var names []string
	for _, s := range a.engine.Subscriptions() {
		for _, c := range a.engine.ChargeDays(s) {
			if c == d {
				names = append(names, s.Name)
				break
			}
			if c > d {
				break
			}
		}
	}
	if len(names) == 0 {
		return "no charges"
	}
	return "charges: " + strings.Join(names, ", ")
}

func money(b model.CurrencyBucket) string {
	if b.Empty() {
		return "-"
	}
	return cli.FormatTotalsTitle(b)
}

func selectedDays(spans []selection.Span) int {
	n := 0
	for _, sp := range spans {
		n += sp.Len()
	}
	return n
}

func barOverride(color string) string {
	if color == source.DefaultColor {
		return ""
	}
	return color
}

func zoomLabel(width float64) string {
	return fmt.Sprintf("%spx/day", strings.TrimSuffix(fmt.Sprintf("%.1f", width), ".0"))
}

func lodLabel(day, month bool) string {
	switch {
	case day:
		return "days"
	case month:
		return "months"
	default:
		return "years"
	}
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
