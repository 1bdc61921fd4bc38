package timeline

import (
	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
	"github.com/theirongolddev/subcal/internal/selection"
)

// KindMulti labels a selection made of more than one span.
const KindMulti = "multi"

// DayTotal returns the prorated amounts for one day.
func (e *Engine) DayTotal(d dayindex.Day) model.CurrencyBucket {
	e.GrowRangeToCover(d)
	return e.Totals().Day(d).Clone()
}

// MonthTotal returns the prorated amounts for a calendar month (zero based).
// Only the materialized part of the month is counted.
func (e *Engine) MonthTotal(year, month int) model.CurrencyBucket {
	return e.Totals().Month(year, month).Clone()
}

// YearTotal returns the prorated amounts for a calendar year. Only the
// materialized part of the year is counted.
func (e *Engine) YearTotal(year int) model.CurrencyBucket {
	return e.Totals().Year(year).Clone()
}

// CurrentMonthTotal is MonthTotal for today's month.
func (e *Engine) CurrentMonthTotal() model.CurrencyBucket {
	p := e.today.Parts()
	return e.MonthTotal(p.Year, p.Month)
}

// CurrentYearTotal is YearTotal for today's year.
func (e *Engine) CurrentYearTotal() model.CurrencyBucket {
	return e.YearTotal(e.today.Parts().Year)
}

// SelectionInfo summarizes the current selection.
type SelectionInfo struct {
	Kind  string // day, month, year or multi
	Label string // empty for multi
	Start dayindex.Day
	Spans []selection.Span
	Total model.CurrencyBucket
}

// SelectionTotals combines the day totals of every selected day, counting
// each day once. It reports false when nothing is selected.
func (e *Engine) SelectionTotals() (SelectionInfo, bool) {
	spans := e.sel.EffectiveSpans()
	primary, ok := e.sel.PrimarySpan()
	if !ok || len(spans) == 0 {
		return SelectionInfo{}, false
	}
	info := SelectionInfo{
		Kind:  primary.Kind.String(),
		Label: primary.Label,
		Start: primary.Start,
		Spans: spans,
	}
	if len(spans) > 1 {
		info.Kind, info.Label = KindMulti, ""
	}
	days := e.sel.Days(e.vp.RangeStart, e.vp.RangeEnd)
	info.Total = e.Totals().Sum(days)
	return info, true
}
