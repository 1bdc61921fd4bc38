package timeline

import (
	"math"
	"testing"

	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
	"github.com/theirongolddev/subcal/internal/schedule"
	"github.com/theirongolddev/subcal/internal/selection"
)

func day(y, m, d int) dayindex.Day { return dayindex.FromParts(y, m-1, d) }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func newEngine(t *testing.T, subs ...model.Subscription) *Engine {
	t.Helper()
	e := New(Options{Today: day(2026, 3, 10), InitialWidth: 20})
	e.SetSubscriptions(subs, 1)
	return e
}

func monthly(id string, price float64, currency string, start dayindex.Day) model.Subscription {
	return model.Subscription{ID: id, Name: id, Price: price, Currency: currency, Cycle: model.CycleMonthly, StartDay: start}
}

func TestNew_InitialRange(t *testing.T) {
	e := New(Options{Today: day(2026, 3, 10)})
	vp := e.Viewport()
	if vp.RangeStart != day(2026, 3, 10)-365 || vp.RangeEnd != day(2026, 3, 10)+730 {
		t.Fatalf("range = [%s, %s]", vp.RangeStart, vp.RangeEnd)
	}
	if vp.DayWidth != 4 {
		t.Fatalf("DayWidth = %v, want 4", vp.DayWidth)
	}
}

func TestSetSubscriptions_CoversStarts(t *testing.T) {
	e := newEngine(t, monthly("old", 10, "USD", day(2024, 2, 1)))
	if got, want := e.Viewport().RangeStart, day(2024, 2, 1)-30; got != want {
		t.Fatalf("RangeStart = %s, want %s", got, want)
	}

	e.SetSubscriptions([]model.Subscription{monthly("older", 10, "USD", day(2023, 5, 1))}, 2)
	if got := e.Viewport().RangeStart; got != dayindex.DefaultRange().Min {
		t.Fatalf("RangeStart = %s, want clamped to %s", got, dayindex.DefaultRange().Min)
	}
}

func TestTotalsQueries(t *testing.T) {
	e := newEngine(t,
		monthly("a", 31, "USD", day(2026, 1, 1)),
		monthly("b", 28, "EUR", day(2026, 2, 1)),
	)
	if v := e.MonthTotal(2026, 2)["USD"]; !approx(v, 31) {
		t.Fatalf("March USD = %v, want 31", v)
	}
	if v := e.CurrentMonthTotal()["EUR"]; !approx(v, 28) {
		t.Fatalf("current month EUR = %v", v)
	}
	if v := e.DayTotal(day(2026, 3, 5))["USD"]; !approx(v, 1) {
		t.Fatalf("day USD = %v, want 1", v)
	}
	if v := e.CurrentYearTotal()["EUR"]; v <= 0 {
		t.Fatalf("year EUR = %v", v)
	}
}

func TestSelectionTotals(t *testing.T) {
	e := newEngine(t, monthly("a", 31, "USD", day(2026, 1, 1)))

	if _, ok := e.SelectionTotals(); ok {
		t.Fatal("empty selection reported totals")
	}

	e.Toggle(selection.Month, day(2026, 3, 14))
	info, ok := e.SelectionTotals()
	if !ok || info.Kind != "month" || info.Label != "2026-03" {
		t.Fatalf("info = %+v", info)
	}
	if !approx(info.Total["USD"], 31) {
		t.Fatalf("month selection = %v, want 31", info.Total)
	}

	e.Toggle(selection.Day, day(2026, 5, 2))
	info, _ = e.SelectionTotals()
	if info.Kind != KindMulti || info.Label != "" {
		t.Fatalf("info = %+v, want multi", info)
	}
	if !approx(info.Total["USD"], 32) {
		t.Fatalf("multi selection = %v, want 32", info.Total)
	}
}

func TestSelectionTotals_PromotedDaysCountOnce(t *testing.T) {
	e := newEngine(t, monthly("a", 31, "USD", day(2026, 1, 1)))
	e.Toggle(selection.Day, day(2026, 3, 3))
	e.Toggle(selection.Day, day(2026, 3, 9))

	// At 10 px/day day ticks are hidden and both picks read as March.
	e.SetZoom(10, float64(day(2026, 3, 5)))
	info, _ := e.SelectionTotals()
	if info.Kind != "month" || !approx(info.Total["USD"], 31) {
		t.Fatalf("info = %+v, want March counted once", info)
	}
}

func TestZoomPromotionGrowsRange(t *testing.T) {
	e := New(Options{Today: day(2027, 6, 15), InitialWidth: 20})
	e.Toggle(selection.Day, day(2027, 6, 15))
	vp := e.Viewport()
	vp.RangeStart, vp.RangeEnd = day(2027, 6, 1), day(2027, 6, 30)

	e.SetZoom(1, float64(day(2027, 6, 15)))
	if vp.RangeStart != day(2027, 1, 1) || vp.RangeEnd != day(2027, 12, 31) {
		t.Fatalf("range = [%s, %s], want all of 2027", vp.RangeStart, vp.RangeEnd)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	e := newEngine(t, monthly("a", 10, "USD", day(2026, 1, 1)))
	c := e.Clone()
	c.Toggle(selection.Year, day(2026, 1, 1))
	c.SetZoom(30, float64(day(2026, 1, 1)))

	if e.Selection().Len() != 0 {
		t.Fatal("clone shares selection")
	}
	if e.Viewport().DayWidth != 20 {
		t.Fatalf("clone shares viewport, width %v", e.Viewport().DayWidth)
	}
}

func TestSchedule(t *testing.T) {
	e := newEngine(t,
		monthly("late", 10, "USD", day(2026, 1, 25)),
		monthly("early", 10, "USD", day(2026, 1, 12)),
	)
	rows := e.Schedule(schedule.SortNextCharge)
	if rows[0].Sub.ID != "early" || rows[1].Sub.ID != "late" {
		t.Fatalf("rows = %s, %s", rows[0].Sub.ID, rows[1].Sub.ID)
	}
	if got := e.ChargeDays(e.Subscriptions()[0]); len(got) == 0 || got[0] != day(2026, 1, 25) {
		t.Fatalf("ChargeDays = %v", got)
	}
}
