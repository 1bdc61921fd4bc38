// Package viewport maps day numbers to horizontal pixels for a zoomable,
// pannable timeline and decides which tick levels are visible at a zoom.
package viewport

import (
	"math"

	"github.com/theirongolddev/subcal/internal/dayindex"
)

// Options configures zoom limits, level-of-detail thresholds and range growth.
type Options struct {
	MinWidth     float64 // px per day
	MaxWidth     float64
	Step         float64 // zoom rounding unit
	ButtonStep   float64 // ZoomIn/ZoomOut increment
	DayTicksAt   float64 // day ticks visible at or above this width
	MonthTicksAt float64 // month ticks visible at or above this width

	GrowChunk         int // days added per growth step
	GrowMargin        int // extra days beyond the requested day
	EdgeThresholdDays int // scroll distance that triggers ExtendNearEdges

	Bounds dayindex.Range
}

// DefaultOptions returns the stock zoom and LOD configuration.
func DefaultOptions() Options {
	return Options{
		MinWidth:          1,
		MaxWidth:          32,
		Step:              0.5,
		ButtonStep:        0.5,
		DayTicksAt:        15,
		MonthTicksAt:      1.5,
		GrowChunk:         365,
		GrowMargin:        30,
		EdgeThresholdDays: 140,
		Bounds:            dayindex.DefaultRange(),
	}
}

// normalized fills zero fields from the defaults and orders min/max.
func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.MinWidth <= 0 {
		o.MinWidth = def.MinWidth
	}
	if o.MaxWidth <= 0 {
		o.MaxWidth = def.MaxWidth
	}
	if o.MaxWidth < o.MinWidth {
		o.MinWidth, o.MaxWidth = o.MaxWidth, o.MinWidth
	}
	if o.Step <= 0 {
		o.Step = def.Step
	}
	if o.ButtonStep <= 0 {
		o.ButtonStep = def.ButtonStep
	}
	if o.DayTicksAt <= 0 {
		o.DayTicksAt = def.DayTicksAt
	}
	if o.MonthTicksAt <= 0 {
		o.MonthTicksAt = def.MonthTicksAt
	}
	if o.GrowChunk <= 0 {
		o.GrowChunk = def.GrowChunk
	}
	if o.GrowMargin < 0 {
		o.GrowMargin = def.GrowMargin
	}
	if o.EdgeThresholdDays <= 0 {
		o.EdgeThresholdDays = def.EdgeThresholdDays
	}
	if o.Bounds == (dayindex.Range{}) {
		o.Bounds = def.Bounds
	}
	return o
}

// LOD reports which tick levels are visible. Day implies Month; Year is
// always visible.
type LOD struct {
	Day   bool
	Month bool
	Year  bool
}

// Mapper is the viewport state. It is a plain value: copying a Mapper takes
// a snapshot.
type Mapper struct {
	opts Options

	DayWidth   float64
	RangeStart dayindex.Day
	RangeEnd   dayindex.Day
	// Scroll is the horizontal offset, in pixels, of the visible area's left
	// edge from RangeStart.
	Scroll float64
}

// New returns a mapper covering [start, end] at the given zoom width.
func New(opts Options, width float64, start, end dayindex.Day) *Mapper {
	opts = opts.normalized()
	start = opts.Bounds.Clamp(start)
	end = opts.Bounds.Clamp(end)
	if end < start {
		start, end = end, start
	}
	m := &Mapper{opts: opts, RangeStart: start, RangeEnd: end}
	m.DayWidth = m.normalizeWidth(width)
	return m
}

// Options returns the mapper's effective configuration.
func (m *Mapper) Options() Options { return m.opts }

// Bounds is the supported day range.
func (m *Mapper) Bounds() dayindex.Range { return m.opts.Bounds }

// DayToPixel returns the content-space x of the left edge of day.
func (m *Mapper) DayToPixel(day float64) float64 {
	return (day - float64(m.RangeStart)) * m.DayWidth
}

// PixelToDayFloat is the exact inverse of DayToPixel.
func (m *Mapper) PixelToDayFloat(px float64) float64 {
	return float64(m.RangeStart) + px/m.DayWidth
}

// ScreenToDayFloat converts a visible-area x into a fractional day.
func (m *Mapper) ScreenToDayFloat(x float64) float64 {
	return m.PixelToDayFloat(m.Scroll + x)
}

// DayToScreen converts a fractional day into a visible-area x.
func (m *Mapper) DayToScreen(day float64) float64 {
	return m.DayToPixel(day) - m.Scroll
}

// ScreenToDay returns the whole day under visible-area x, clamped to bounds.
func (m *Mapper) ScreenToDay(x float64) dayindex.Day {
	return m.opts.Bounds.Clamp(dayindex.Day(math.Floor(m.ScreenToDayFloat(x))))
}

// ContentWidth is the pixel width of the whole materialized range.
func (m *Mapper) ContentWidth() float64 {
	return float64(m.RangeEnd-m.RangeStart+1) * m.DayWidth
}

func (m *Mapper) normalizeWidth(w float64) float64 {
	w = roundToStep(m.clampWidth(w), m.opts.Step)
	// A step that does not divide the bounds can round past them.
	return m.clampWidth(w)
}

func (m *Mapper) clampWidth(w float64) float64 {
	return math.Min(math.Max(w, m.opts.MinWidth), m.opts.MaxWidth)
}

func roundToStep(v, step float64) float64 {
	r := math.Round(v/step) * step
	// Fix to four decimals so repeated steps compare equal.
	return math.Round(r*1e4) / 1e4
}

// SetZoom changes the day width and recomputes Scroll so anchorDay stays at
// the screen x it occupied before the change. Non-finite requests and
// requests that round to the current width are ignored. It reports whether
// the width changed.
func (m *Mapper) SetZoom(requested, anchorDay float64) bool {
	if math.IsNaN(requested) || math.IsInf(requested, 0) {
		return false
	}
	next := m.normalizeWidth(requested)
	if next == m.DayWidth {
		return false
	}
	if math.IsNaN(anchorDay) || math.IsInf(anchorDay, 0) {
		anchorDay = m.ScreenToDayFloat(0)
	}
	screenX := m.DayToScreen(anchorDay)
	m.DayWidth = next
	m.Scroll = (anchorDay-float64(m.RangeStart))*next - screenX
	return true
}

// ZoomIn widens days by one button step around anchorDay.
func (m *Mapper) ZoomIn(anchorDay float64) bool {
	return m.SetZoom(m.DayWidth+m.opts.ButtonStep, anchorDay)
}

// ZoomOut narrows days by one button step around anchorDay.
func (m *Mapper) ZoomOut(anchorDay float64) bool {
	return m.SetZoom(m.DayWidth-m.opts.ButtonStep, anchorDay)
}

// LOD returns tick visibility at the current width.
func (m *Mapper) LOD() LOD {
	return LODAt(m.DayWidth, m.opts)
}

// LODAt returns tick visibility for an arbitrary width.
func LODAt(width float64, opts Options) LOD {
	opts = opts.normalized()
	month := width >= opts.MonthTicksAt
	return LOD{
		Day:   month && width >= opts.DayTicksAt,
		Month: month,
		Year:  true,
	}
}
