package tui

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
	"github.com/theirongolddev/subcal/internal/selection"
	"github.com/theirongolddev/subcal/internal/tui/theme"
	"github.com/theirongolddev/subcal/internal/viewport"
)

// CellPx is the width of one terminal column in viewport pixels.
const CellPx = 8.0

// column is the run of whole days under one terminal cell. Days in
// [startLo, startHi] have their left edge inside the cell; startLo > startHi
// when a single day spans several cells.
type column struct {
	first, last      dayindex.Day
	startLo, startHi dayindex.Day
	void             bool // entirely outside the supported range
}

func (c column) contains(d dayindex.Day) bool { return !c.void && d >= c.first && d <= c.last }

func (c column) overlaps(lo, hi dayindex.Day) bool {
	return !c.void && lo <= c.last && hi >= c.first
}

// boundary returns the period start that falls inside the cell, using
// periodStart to map a day to the first day of its period.
func (c column) boundary(periodStart func(dayindex.Day) dayindex.Day) (dayindex.Day, bool) {
	if c.void || c.startLo > c.startHi {
		return 0, false
	}
	b := periodStart(c.startHi)
	return b, b >= c.startLo
}

type grid struct {
	cols []column
}

// newGrid maps n terminal cells onto the visible part of vp.
func newGrid(vp *viewport.Mapper, n int) grid {
	bounds := vp.Bounds()
	g := grid{cols: make([]column, max(n, 0))}
	for i := range g.cols {
		x0 := float64(i) * CellPx
		from := vp.ScreenToDayFloat(x0)
		to := vp.ScreenToDayFloat(x0 + CellPx)
		c := column{
			first:   dayindex.Day(math.Floor(from)),
			last:    dayindex.Day(math.Ceil(to)) - 1,
			startLo: dayindex.Day(math.Ceil(from)),
			startHi: dayindex.Day(math.Ceil(to)) - 1,
		}
		c.last = max(c.last, c.first)
		if c.last < bounds.Min || c.first > bounds.Max {
			c.void = true
		}
		c.first, c.last = bounds.Clamp(c.first), bounds.Clamp(c.last)
		g.cols[i] = c
	}
	return g
}

// columnsOf reports which cells show day d.
func (g grid) columnsOf(d dayindex.Day) (lo, hi int, ok bool) {
	lo, hi = -1, -1
	for i, c := range g.cols {
		if c.contains(d) {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
	}
	return lo, hi, lo >= 0
}

// cell is one styled rune; the background comes from the column.
type cell struct {
	r    rune
	fg   lipgloss.Color
	bold bool
}

type row []cell

func blankRow(n int, fg lipgloss.Color) row {
	r := make(row, n)
	for i := range r {
		r[i] = cell{r: ' ', fg: fg}
	}
	return r
}

// put writes text at column at unless it would run past the row or touch
// a label ending after free. It returns the next free column.
func (r row) put(at, free int, text string, fg lipgloss.Color, bold bool) int {
	runes := []rune(text)
	if at < free || at+len(runes) > len(r) {
		return free
	}
	for i, ch := range runes {
		r[at+i] = cell{r: ch, fg: fg, bold: bold}
	}
	return at + len(runes) + 1
}

// columnStyle is the per-cell background: cursor beats selection.
type columnStyle struct {
	cursor   []bool
	selected []bool
}

func newColumnStyle(g grid, cursor dayindex.Day, spans []selection.Span) columnStyle {
	cs := columnStyle{
		cursor:   make([]bool, len(g.cols)),
		selected: make([]bool, len(g.cols)),
	}
	for i, c := range g.cols {
		cs.cursor[i] = c.contains(cursor)
		for _, sp := range spans {
			if c.overlaps(sp.Start, sp.End) {
				cs.selected[i] = true
				break
			}
		}
	}
	return cs
}

func (cs columnStyle) background(i int, t theme.Theme) lipgloss.Color {
	switch {
	case i < len(cs.cursor) && cs.cursor[i]:
		return t.SurfaceBright
	case i < len(cs.selected) && cs.selected[i]:
		return t.AccentDim
	default:
		return t.Background
	}
}

// render joins runs of identically styled cells into single Render calls.
func (r row) render(cs columnStyle, t theme.Theme) string {
	var b strings.Builder
	start := 0
	for i := 1; i <= len(r); i++ {
		if i < len(r) && r[i].fg == r[start].fg && r[i].bold == r[start].bold &&
			cs.background(i, t) == cs.background(start, t) {
			continue
		}
		var text strings.Builder
		for _, c := range r[start:i] {
			text.WriteRune(c.r)
		}
		style := lipgloss.NewStyle().
			Foreground(r[start].fg).
			Background(cs.background(start, t)).
			Bold(r[start].bold)
		b.WriteString(style.Render(text.String()))
		start = i
	}
	return b.String()
}

// highlight marks the calendar periods that contain today.
type highlight struct {
	today dayindex.Day
	on    Highlights
}

func (h highlight) sameYear(d dayindex.Day) bool {
	return d.Parts().Year == h.today.Parts().Year
}

func (h highlight) sameMonth(d dayindex.Day) bool {
	return dayindex.MonthStart(d) == dayindex.MonthStart(h.today)
}

// yearRow labels every year boundary. The first cell carries the year in
// view when no boundary label claims it.
func yearRow(g grid, t theme.Theme, hl highlight) row {
	r := blankRow(len(g.cols), t.TextDim)
	style := func(d dayindex.Day) (lipgloss.Color, bool) {
		if hl.on.Year && hl.sameYear(d) {
			return t.Today, true
		}
		return t.TextPrimary, true
	}
	labelRow(r, g, dayindex.YearStart, func(d dayindex.Day) string {
		return strconv.Itoa(d.Parts().Year)
	}, style)
	return r
}

// monthRow labels month boundaries with short names, falling back to a
// tick when the name does not fit.
func monthRow(g grid, t theme.Theme, hl highlight) row {
	r := blankRow(len(g.cols), t.TextDim)
	style := func(d dayindex.Day) (lipgloss.Color, bool) {
		if hl.on.Month && hl.sameMonth(d) {
			return t.Today, true
		}
		return t.TextMuted, false
	}
	labelRow(r, g, dayindex.MonthStart, func(d dayindex.Day) string {
		return monthAbbr(d.Parts().Month)
	}, style)
	return r
}

// dayRow labels day starts with the day of month.
func dayRow(g grid, t theme.Theme, hl highlight) row {
	r := blankRow(len(g.cols), t.TextDim)
	style := func(d dayindex.Day) (lipgloss.Color, bool) {
		if hl.on.Today && d == hl.today {
			return t.Today, true
		}
		return t.TextMuted, false
	}
	free := 0
	for i, c := range g.cols {
		if c.void || c.startLo > c.startHi {
			continue
		}
		fg, bold := style(c.startLo)
		free = r.put(i, free, strconv.Itoa(c.startLo.Parts().Day), fg, bold)
	}
	return r
}

func labelRow(r row, g grid, periodStart func(dayindex.Day) dayindex.Day,
	label func(dayindex.Day) string, style func(dayindex.Day) (lipgloss.Color, bool)) {
	type mark struct {
		at  int
		day dayindex.Day
	}
	var marks []mark
	for i, c := range g.cols {
		if b, ok := c.boundary(periodStart); ok {
			marks = append(marks, mark{i, b})
		}
	}
	if len(g.cols) > 0 && !g.cols[0].void {
		first := g.cols[0].first
		sticky := []rune(label(first))
		if len(marks) == 0 || marks[0].at > len(sticky) {
			marks = append([]mark{{0, first}}, marks...)
		}
	}

	free := 0
	for _, m := range marks {
		fg, bold := style(m.day)
		next := r.put(m.at, free, label(m.day), fg, bold)
		if next == free && m.at >= free && m.at < len(r) {
			r[m.at] = cell{r: '╷', fg: fg}
			next = m.at + 1
		}
		free = next
	}
}

// markerRow shows the cursor and today under the tick rows.
func markerRow(g grid, t theme.Theme, cursor, today dayindex.Day) row {
	r := blankRow(len(g.cols), t.TextDim)
	if lo, _, ok := g.columnsOf(today); ok {
		r[lo] = cell{r: '•', fg: t.Today, bold: true}
	}
	if lo, hi, ok := g.columnsOf(cursor); ok {
		r[lo+(hi-lo)/2] = cell{r: '▲', fg: t.AccentBright, bold: true}
	}
	return r
}

// barRow draws one subscription: a line while it is active and a diamond
// on each billing day. chargeDays must be sorted.
func barRow(g grid, sub model.Subscription, chargeDays []dayindex.Day, color lipgloss.Color, t theme.Theme) row {
	r := blankRow(len(g.cols), t.TextDim)
	for i, c := range g.cols {
		if c.void {
			continue
		}
		j := sort.Search(len(chargeDays), func(k int) bool { return chargeDays[k] >= c.first })
		switch {
		case j < len(chargeDays) && chargeDays[j] <= c.last:
			r[i] = cell{r: '◆', fg: t.Charge, bold: true}
		case activeWithin(sub, c.first, c.last):
			r[i] = cell{r: '━', fg: color}
		}
	}
	return r
}

func activeWithin(sub model.Subscription, lo, hi dayindex.Day) bool {
	if sub.StartDay > hi {
		return false
	}
	return sub.EndDay == nil || *sub.EndDay >= lo
}

func monthAbbr(month int) string {
	return time.Month(month + 1).String()[:3]
}
