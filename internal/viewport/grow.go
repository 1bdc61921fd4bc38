package viewport

import (
	"math"

	"github.com/theirongolddev/subcal/internal/dayindex"
)

// GrowRangeToCover extends the nearer range bound outward in whole chunks
// until day (plus the growth margin) is materialized. The range never
// shrinks. Growing the left edge shifts Scroll so the view stays put.
func (m *Mapper) GrowRangeToCover(day dayindex.Day) bool {
	day = m.opts.Bounds.Clamp(day)
	chunk := m.opts.GrowChunk
	switch {
	case day < m.RangeStart:
		need := int(m.RangeStart-day) + m.opts.GrowMargin
		return m.extendLeft(ceilDiv(need, chunk) * chunk)
	case day > m.RangeEnd:
		need := int(day-m.RangeEnd) + m.opts.GrowMargin
		return m.extendRight(ceilDiv(need, chunk) * chunk)
	}
	return false
}

// CoverSpan grows the range exactly enough to include [start, end].
func (m *Mapper) CoverSpan(start, end dayindex.Day) bool {
	start = m.opts.Bounds.Clamp(start)
	end = m.opts.Bounds.Clamp(end)
	if end < start {
		start, end = end, start
	}
	changed := false
	if start < m.RangeStart {
		changed = m.extendLeft(int(m.RangeStart - start))
	}
	if end > m.RangeEnd {
		changed = m.extendRight(int(end-m.RangeEnd)) || changed
	}
	return changed
}

// ExtendNearEdges grows the range by one chunk when the visible area of the
// given width has scrolled within the edge threshold of either end.
func (m *Mapper) ExtendNearEdges(viewportWidth float64) bool {
	b := m.opts.Bounds
	if m.RangeStart <= b.Min && m.RangeEnd >= b.Max {
		return false
	}
	threshold := float64(m.opts.EdgeThresholdDays) * m.DayWidth
	left := m.Scroll
	right := m.ContentWidth() - viewportWidth - m.Scroll
	if left < threshold && m.RangeStart > b.Min {
		return m.extendLeft(m.opts.GrowChunk)
	}
	if right < threshold && m.RangeEnd < b.Max {
		return m.extendRight(m.opts.GrowChunk)
	}
	return false
}

// ScrollToDay grows the range to include day and centers it in a visible
// area of the given width.
func (m *Mapper) ScrollToDay(day dayindex.Day, viewportWidth float64) {
	day = m.opts.Bounds.Clamp(day)
	m.GrowRangeToCover(day)
	target := m.DayToPixel(float64(day)) - math.Max(0, viewportWidth)/2
	m.Scroll = m.clampScroll(target, viewportWidth)
}

// CenterDay returns the day at the middle of a visible area.
func (m *Mapper) CenterDay(viewportWidth float64) (dayindex.Day, bool) {
	if viewportWidth <= 0 {
		return 0, false
	}
	center := m.Scroll + viewportWidth/2
	return m.RangeStart + dayindex.Day(math.Round(center/m.DayWidth)), true
}

// ClampScroll pins Scroll into [0, ContentWidth-viewportWidth].
func (m *Mapper) ClampScroll(viewportWidth float64) {
	m.Scroll = m.clampScroll(m.Scroll, viewportWidth)
}

func (m *Mapper) clampScroll(v, viewportWidth float64) float64 {
	maxScroll := math.Max(0, m.ContentWidth()-viewportWidth)
	return math.Min(math.Max(v, 0), maxScroll)
}

func (m *Mapper) extendLeft(days int) bool {
	next := max(m.opts.Bounds.Min, m.RangeStart-dayindex.Day(max(1, days)))
	added := int(m.RangeStart - next)
	if added <= 0 {
		return false
	}
	m.RangeStart = next
	m.Scroll += float64(added) * m.DayWidth
	return true
}

func (m *Mapper) extendRight(days int) bool {
	next := min(m.opts.Bounds.Max, m.RangeEnd+dayindex.Day(max(1, days)))
	if next <= m.RangeEnd {
		return false
	}
	m.RangeEnd = next
	return true
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
