// Package timeline ties the viewport, the selection set and the charge
// aggregator together behind the queries a renderer needs.
package timeline

import (
	"go.uber.org/zap"

	"github.com/theirongolddev/subcal/internal/charges"
	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
	"github.com/theirongolddev/subcal/internal/schedule"
	"github.com/theirongolddev/subcal/internal/selection"
	"github.com/theirongolddev/subcal/internal/viewport"
)

// Options configures an Engine.
type Options struct {
	Viewport     viewport.Options
	InitialWidth float64
	Today        dayindex.Day
	Memo         *charges.Memo // optional, shared between engines
	Logger       *zap.Logger
}

// Engine owns one viewport, one selection set and the totals for the
// currently materialized range. It is not safe for concurrent use; give each
// goroutine its own Engine (or a Clone).
type Engine struct {
	vp    *viewport.Mapper
	sel   *selection.Set
	memo  *charges.Memo
	log   *zap.Logger
	today dayindex.Day

	subs    []model.Subscription
	version int64
	totals  *charges.Totals
}

// New returns an engine whose range spans a year back and two years ahead of
// today.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	memo := opts.Memo
	if memo == nil {
		memo = &charges.Memo{}
	}
	if memo.Aggregator == nil {
		memo.Aggregator = &charges.Aggregator{Logger: log}
	}
	width := opts.InitialWidth
	if width <= 0 {
		width = 4
	}

	vopts := opts.Viewport
	if vopts.Bounds == (dayindex.Range{}) {
		vopts.Bounds = dayindex.DefaultRange()
	}
	today := vopts.Bounds.Clamp(opts.Today)
	vp := viewport.New(vopts, width, today-365, today+730)
	e := &Engine{
		vp:    vp,
		sel:   selection.NewSet(vp),
		memo:  memo,
		log:   log,
		today: today,
	}
	return e
}

// Clone returns an independent engine with the same state. The subscription
// slice is shared and must not be modified by either side.
func (e *Engine) Clone() *Engine {
	vp := *e.vp
	c := *e
	c.vp = &vp
	c.sel = e.sel.Clone(&vp)
	return &c
}

// Viewport exposes the viewport state. Mutating it directly bypasses the
// engine's range bookkeeping; prefer the engine methods.
func (e *Engine) Viewport() *viewport.Mapper { return e.vp }

// Selection exposes the selection set.
func (e *Engine) Selection() *selection.Set { return e.sel }

// Today is the reference day for schedules and current-period totals.
func (e *Engine) Today() dayindex.Day { return e.today }

// SetToday moves the reference day.
func (e *Engine) SetToday(d dayindex.Day) {
	e.today = e.vp.Bounds().Clamp(d)
}

// Subscriptions returns the current snapshot.
func (e *Engine) Subscriptions() []model.Subscription { return e.subs }

// SetSubscriptions installs a new snapshot. version identifies the snapshot
// for memoization and must change whenever the content does.
func (e *Engine) SetSubscriptions(subs []model.Subscription, version int64) {
	e.subs = subs
	e.version = version
	e.totals = nil
	e.coverSubscriptions()
}

// coverSubscriptions widens the range so every subscription's start, a year
// after it, and its end are materialized, plus any selected spans.
func (e *Engine) coverSubscriptions() {
	b := e.vp.Bounds()
	lo, hi := e.today-365, e.today+730
	for _, s := range e.subs {
		start := b.Clamp(s.StartDay)
		lo = min(lo, start-30)
		hi = max(hi, start+365)
		if s.EndDay != nil {
			if end := b.Clamp(*s.EndDay); end >= start {
				hi = max(hi, end+30)
			}
		}
	}
	for _, sp := range e.sel.EffectiveSpans() {
		lo = min(lo, sp.Start-30)
		hi = max(hi, sp.End+30)
	}
	if e.vp.CoverSpan(lo, hi) {
		e.totals = nil
	}
}

func (e *Engine) rangeChanged(changed bool) bool {
	if changed {
		e.totals = nil
	}
	return changed
}

// Totals returns the aggregate for the materialized range, recomputing only
// when the range or the snapshot changed.
func (e *Engine) Totals() *charges.Totals {
	if e.totals == nil || e.totals.Start != e.vp.RangeStart || e.totals.End != e.vp.RangeEnd {
		e.totals = e.memo.Aggregate(e.version, e.subs, e.vp.RangeStart, e.vp.RangeEnd)
	}
	return e.totals
}

// SetZoom changes the day width keeping anchorDay under the same screen x.
// Selections promoted by the new zoom are kept fully materialized.
func (e *Engine) SetZoom(width, anchorDay float64) bool {
	if !e.vp.SetZoom(width, anchorDay) {
		return false
	}
	e.rangeChanged(e.sel.CoverViewport())
	return true
}

// ZoomIn steps the zoom up around anchorDay.
func (e *Engine) ZoomIn(anchorDay float64) bool {
	return e.SetZoom(e.vp.DayWidth+e.vp.Options().ButtonStep, anchorDay)
}

// ZoomOut steps the zoom down around anchorDay.
func (e *Engine) ZoomOut(anchorDay float64) bool {
	return e.SetZoom(e.vp.DayWidth-e.vp.Options().ButtonStep, anchorDay)
}

// GrowRangeToCover materializes day.
func (e *Engine) GrowRangeToCover(day dayindex.Day) bool {
	return e.rangeChanged(e.vp.GrowRangeToCover(day))
}

// ScrollToDay centers day in a visible area of the given width.
func (e *Engine) ScrollToDay(day dayindex.Day, viewportWidth float64) {
	start, end := e.vp.RangeStart, e.vp.RangeEnd
	e.vp.ScrollToDay(day, viewportWidth)
	e.rangeChanged(start != e.vp.RangeStart || end != e.vp.RangeEnd)
}

// ScrollToToday centers today.
func (e *Engine) ScrollToToday(viewportWidth float64) {
	e.ScrollToDay(e.today, viewportWidth)
}

// Scrolled extends the range when the visible area nears an edge.
func (e *Engine) Scrolled(viewportWidth float64) bool {
	return e.rangeChanged(e.vp.ExtendNearEdges(viewportWidth))
}

// Toggle adds or removes a selection pick.
func (e *Engine) Toggle(kind selection.Kind, anchor dayindex.Day) selection.Result {
	res := e.sel.Toggle(kind, anchor)
	e.rangeChanged(res.RangeGrown)
	return res
}

// ClearSelection drops every pick.
func (e *Engine) ClearSelection() bool { return e.sel.Clear() }

// Schedule returns subscription rows ordered by mode as of today.
func (e *Engine) Schedule(mode schedule.SortMode) []schedule.Row {
	return schedule.Sort(e.subs, mode, e.today)
}

// ChargeDays returns the billing dates of sub inside the materialized range.
func (e *Engine) ChargeDays(sub model.Subscription) []dayindex.Day {
	return e.memo.Aggregator.ChargeDays(sub, e.vp.RangeStart, e.vp.RangeEnd)
}
