package charges

import (
	"math"

	"go.uber.org/zap"

	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
)

// Totals holds prorated amounts per currency for a closed day range.
type Totals struct {
	Start  dayindex.Day
	End    dayindex.Day
	Days   map[dayindex.Day]model.CurrencyBucket
	Months map[int]model.CurrencyBucket // key: year*12 + month
	Years  map[int]model.CurrencyBucket

	Skipped int // subscriptions that contributed nothing because of bad data
}

func newTotals(start, end dayindex.Day) *Totals {
	return &Totals{
		Start:  start,
		End:    end,
		Days:   make(map[dayindex.Day]model.CurrencyBucket),
		Months: make(map[int]model.CurrencyBucket),
		Years:  make(map[int]model.CurrencyBucket),
	}
}

func addTo[K comparable](m map[K]model.CurrencyBucket, key K, code string, v float64) {
	b, ok := m[key]
	if !ok {
		b = model.CurrencyBucket{}
		m[key] = b
	}
	b.Add(code, v)
	if len(b) == 0 {
		delete(m, key)
	}
}

func (t *Totals) addDays(from, to dayindex.Day, code string, perDay float64) {
	if perDay == 0 || math.IsNaN(perDay) || math.IsInf(perDay, 0) {
		return
	}
	for d := from; d <= to; d++ {
		p := d.Parts()
		addTo(t.Days, d, code, perDay)
		addTo(t.Months, dayindex.MonthKey(p), code, perDay)
		addTo(t.Years, p.Year, code, perDay)
	}
}

// Day returns the bucket for one day. The result must not be modified.
func (t *Totals) Day(d dayindex.Day) model.CurrencyBucket { return t.Days[d] }

// Month returns the bucket for a calendar month (month is zero based).
func (t *Totals) Month(year, month int) model.CurrencyBucket {
	return t.Months[year*12+month]
}

// Year returns the bucket for a calendar year.
func (t *Totals) Year(year int) model.CurrencyBucket { return t.Years[year] }

// Sum combines the day buckets of the given days into a new bucket. Callers
// pass each day once.
func (t *Totals) Sum(days []dayindex.Day) model.CurrencyBucket {
	out := model.CurrencyBucket{}
	for _, d := range days {
		out.Merge(t.Days[d])
	}
	return out
}

// Aggregator computes Totals. The zero value is ready to use.
type Aggregator struct {
	MaxPeriods int
	Logger     *zap.Logger
}

func (a *Aggregator) maxPeriods() int {
	if a == nil || a.MaxPeriods <= 0 {
		return DefaultMaxPeriods
	}
	return a.MaxPeriods
}

func (a *Aggregator) logger() *zap.Logger {
	if a == nil || a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// Aggregate prorates every subscription over [rangeStart, rangeEnd]. Records
// with a non-positive price, an unknown cycle or an end before their start
// are skipped; they never fail the pass.
func (a *Aggregator) Aggregate(subs []model.Subscription, rangeStart, rangeEnd dayindex.Day) *Totals {
	if rangeEnd < rangeStart {
		rangeStart, rangeEnd = rangeEnd, rangeStart
	}
	t := newTotals(rangeStart, rangeEnd)
	log := a.logger()
	for i := range subs {
		if reason := a.addSubscription(t, &subs[i]); reason != "" {
			t.Skipped++
			log.Debug("subscription skipped", zap.String("id", subs[i].ID), zap.String("reason", reason))
		}
	}
	return t
}

// addSubscription returns a non-empty reason when the record is degenerate.
func (a *Aggregator) addSubscription(t *Totals, sub *model.Subscription) string {
	price := sub.Price
	switch {
	case math.IsNaN(price) || math.IsInf(price, 0):
		return "non-finite price"
	case price <= 0:
		return "" // free subscriptions are legal, they just add nothing
	case !sub.Cycle.Valid():
		return "unknown cycle"
	case sub.EndDay != nil && *sub.EndDay < sub.StartDay:
		return "end before start"
	}

	end := t.End
	if sub.EndDay != nil {
		end = min(end, *sub.EndDay)
	}
	if end < t.Start || end < sub.StartDay {
		return ""
	}

	st := newStepper(sub.Cycle, sub.StartDay)
	n := st.floorStep(t.Start)
	limit := a.maxPeriods()
	for guard := 0; ; guard++ {
		if guard > limit {
			return "period limit reached"
		}
		periodStart := st.at(n)
		if periodStart > end {
			return ""
		}
		nextStart := st.at(n + 1)
		if nextStart <= periodStart {
			return "cycle does not advance"
		}
		periodEnd := nextStart - 1
		if sub.EndDay != nil {
			periodEnd = min(periodEnd, *sub.EndDay)
		}
		if periodEnd >= t.Start {
			from, to := max(periodStart, t.Start), min(periodEnd, end)
			if to >= from {
				perDay := price / float64(max(1, int(periodEnd-periodStart)+1))
				t.addDays(from, to, sub.Currency, perDay)
			}
		}
		if sub.EndDay != nil && periodEnd >= *sub.EndDay {
			return ""
		}
		n++
	}
}

// ChargeDays returns the billing dates of sub that fall inside
// [rangeStart, rangeEnd], honoring the subscription's end date.
func (a *Aggregator) ChargeDays(sub model.Subscription, rangeStart, rangeEnd dayindex.Day) []dayindex.Day {
	if !sub.Cycle.Valid() || rangeEnd < rangeStart {
		return nil
	}
	if sub.EndDay != nil {
		if *sub.EndDay < sub.StartDay {
			return nil
		}
		rangeEnd = min(rangeEnd, *sub.EndDay)
	}
	limit := a.maxPeriods()
	st := newStepper(sub.Cycle, sub.StartDay)
	n := st.ceilStep(rangeStart, limit)
	var days []dayindex.Day
	for guard := 0; guard <= limit; guard++ {
		d := st.at(n)
		if d > rangeEnd {
			break
		}
		if d >= rangeStart {
			days = append(days, d)
		}
		n++
	}
	return days
}
