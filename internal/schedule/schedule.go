// Package schedule computes a subscription's previous and next charge dates
// relative to a reference day, and orders subscription rows by them.
package schedule

import (
	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
)

// Charges holds the charge dates around today. Nil means there is none.
type Charges struct {
	Prev *dayindex.Day
	Next *dayindex.Day
}

func ptr(d dayindex.Day) *dayindex.Day { return &d }

// Compute returns the previous and next charge day of sub as of today. A
// subscription that has ended is measured against its end day, and has no
// next charge.
func Compute(sub model.Subscription, today dayindex.Day) Charges {
	start := sub.StartDay
	end := sub.EndDay
	if end != nil && *end < start {
		return Charges{}
	}
	if !sub.Cycle.Valid() {
		return Charges{}
	}

	if start > today {
		if end != nil && start > *end {
			return Charges{}
		}
		return Charges{Next: ptr(start)}
	}

	ref := today
	if end != nil && *end < today {
		ref = *end
	}
	if start > ref {
		return Charges{}
	}

	prev, next := around(sub.Cycle, start, ref)

	var out Charges
	if end == nil || (*end >= today && next <= *end) {
		out.Next = ptr(next)
	}
	if end == nil || prev <= *end {
		out.Prev = ptr(prev)
	}
	return out
}

// around returns the last charge on or before ref and the first charge on or
// after ref. Both equal ref when ref is itself a charge day. start <= ref.
func around(cycle model.Cycle, start, ref dayindex.Day) (prev, next dayindex.Day) {
	if cycle == model.CycleWeekly {
		delta := int(ref - start)
		prev = start + dayindex.Day(delta/7*7)
		next = start + dayindex.Day((delta+6)/7*7)
		return prev, next
	}

	sp, rp := start.Parts(), ref.Parts()
	var step int
	at := func(n int) dayindex.Day {
		if cycle == model.CycleYearly {
			return dayindex.FromPartsValue(dayindex.AddYearsClamped(sp, n))
		}
		return dayindex.FromPartsValue(dayindex.AddMonthsClamped(sp, n))
	}
	if cycle == model.CycleYearly {
		step = rp.Year - sp.Year
	} else {
		step = (rp.Year-sp.Year)*12 + (rp.Month - sp.Month)
	}
	step = max(0, step)

	// The candidate lands in ref's own month (or year), so one step either
	// way is enough.
	candidate := at(step)
	switch {
	case candidate == ref:
		return ref, ref
	case candidate < ref:
		return candidate, at(step + 1)
	default:
		return at(max(0, step-1)), candidate
	}
}
