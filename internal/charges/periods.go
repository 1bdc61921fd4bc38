// Package charges spreads each subscription's recurring price evenly across
// the days of its billing periods and sums the result per day, month and year.
package charges

import (
	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
)

// DefaultMaxPeriods caps how many billing periods are walked for one
// subscription, so malformed data always terminates.
const DefaultMaxPeriods = 6000

// stepper derives billing-period start days from a subscription's anchor.
// Every step is computed from the original start parts, never from the
// previous step, so a day-31 anchor returns to the 31st after short months.
type stepper struct {
	cycle model.Cycle
	start dayindex.Day
	parts dayindex.Parts
}

func newStepper(cycle model.Cycle, start dayindex.Day) stepper {
	return stepper{cycle: cycle, start: start, parts: start.Parts()}
}

// at returns the start day of billing period n (n = 0 is the start day).
func (s stepper) at(n int) dayindex.Day {
	switch s.cycle {
	case model.CycleWeekly:
		return s.start + dayindex.Day(n*7)
	case model.CycleYearly:
		return dayindex.FromPartsValue(dayindex.AddYearsClamped(s.parts, n))
	default:
		return dayindex.FromPartsValue(dayindex.AddMonthsClamped(s.parts, n))
	}
}

// floorStep estimates the last step whose period starts on or before day.
// It is exact for weekly cycles and never overshoots for monthly or yearly.
func (s stepper) floorStep(day dayindex.Day) int {
	if day <= s.start {
		return 0
	}
	var n int
	switch s.cycle {
	case model.CycleWeekly:
		return int(day-s.start) / 7
	case model.CycleYearly:
		n = day.Parts().Year - s.parts.Year
	default:
		p := day.Parts()
		n = (p.Year-s.parts.Year)*12 + (p.Month - s.parts.Month)
	}
	n = max(0, n)
	if n > 0 && s.at(n) > day {
		n--
	}
	return n
}

// ceilStep returns the first step whose period starts on or after day.
func (s stepper) ceilStep(day dayindex.Day, limit int) int {
	n := s.floorStep(day)
	for i := 0; s.at(n) < day && i < limit; i++ {
		n++
	}
	return n
}
