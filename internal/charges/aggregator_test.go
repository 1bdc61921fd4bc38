package charges

import (
	"math"
	"testing"

	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
)

func day(y, m, d int) dayindex.Day { return dayindex.FromParts(y, m-1, d) }

func sub(id string, price float64, cycle model.Cycle, start dayindex.Day) model.Subscription {
	return model.Subscription{ID: id, Name: id, Price: price, Currency: "USD", Cycle: cycle, StartDay: start}
}

func sumDays(t *Totals, code string) float64 {
	var total float64
	for _, b := range t.Days {
		total += b[code]
	}
	return total
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAggregate_ProrationConservation(t *testing.T) {
	var a Aggregator
	s := sub("s1", 30, model.CycleMonthly, day(2025, 1, 1))
	got := a.Aggregate([]model.Subscription{s}, day(2025, 1, 1), day(2025, 1, 31))

	if v := sumDays(got, "USD"); !approx(v, 30) {
		t.Fatalf("day sum = %v, want 30", v)
	}
	if v := got.Month(2025, 0)["USD"]; !approx(v, 30) {
		t.Fatalf("month total = %v, want 30", v)
	}
	if v := got.Year(2025)["USD"]; !approx(v, 30) {
		t.Fatalf("year total = %v, want 30", v)
	}
	if len(got.Days) != 31 {
		t.Fatalf("len(Days) = %d, want 31", len(got.Days))
	}
}

func TestAggregate_PeriodSpreadAcrossMonths(t *testing.T) {
	var a Aggregator
	// Period Jan 15..Feb 14 has 31 days.
	s := sub("s1", 31, model.CycleMonthly, day(2025, 1, 15))
	got := a.Aggregate([]model.Subscription{s}, day(2025, 1, 1), day(2025, 2, 14))

	if v := got.Month(2025, 0)["USD"]; !approx(v, 17) {
		t.Fatalf("January = %v, want 17", v)
	}
	if v := got.Month(2025, 1)["USD"]; !approx(v, 14) {
		t.Fatalf("February = %v, want 14", v)
	}
	if b := got.Day(day(2025, 1, 14)); b != nil {
		t.Fatalf("day before start = %v, want nil", b)
	}
}

func TestAggregate_EndDayTruncatesPeriod(t *testing.T) {
	var a Aggregator
	s := sub("s1", 31, model.CycleMonthly, day(2025, 1, 1))
	s.EndDay = model.DayPtr(day(2025, 1, 10))
	got := a.Aggregate([]model.Subscription{s}, day(2025, 1, 1), day(2025, 3, 31))

	if len(got.Days) != 10 {
		t.Fatalf("len(Days) = %d, want 10", len(got.Days))
	}
	if v := got.Day(day(2025, 1, 3))["USD"]; !approx(v, 3.1) {
		t.Fatalf("per day = %v, want 3.1", v)
	}
}

func TestAggregate_WeeklyAndYearly(t *testing.T) {
	var a Aggregator
	subs := []model.Subscription{
		sub("w", 7, model.CycleWeekly, day(2025, 1, 6)),
		sub("y", 365, model.CycleYearly, day(2025, 1, 1)),
	}
	subs[1].Currency = "EUR"
	got := a.Aggregate(subs, day(2025, 1, 1), day(2025, 12, 31))

	if v := got.Day(day(2025, 1, 5))["USD"]; v != 0 {
		t.Fatalf("weekly before start = %v", v)
	}
	if v := got.Day(day(2025, 3, 3))["USD"]; !approx(v, 1) {
		t.Fatalf("weekly per day = %v, want 1", v)
	}
	if v := got.Year(2025)["EUR"]; !approx(v, 365) {
		t.Fatalf("yearly total = %v, want 365", v)
	}
	if v := got.Day(day(2025, 7, 1))["EUR"]; !approx(v, 1) {
		t.Fatalf("yearly per day = %v, want 1", v)
	}
}

func TestAggregate_SkipsDegenerate(t *testing.T) {
	var a Aggregator
	bad := sub("bad", 10, model.CycleMonthly, day(2025, 5, 1))
	bad.EndDay = model.DayPtr(day(2025, 4, 1))
	unknown := sub("unknown", 10, model.Cycle("daily"), day(2025, 1, 1))
	nan := sub("nan", math.NaN(), model.CycleMonthly, day(2025, 1, 1))
	free := sub("free", 0, model.CycleMonthly, day(2025, 1, 1))
	good := sub("good", 28, model.CycleMonthly, day(2025, 2, 1))

	got := a.Aggregate([]model.Subscription{bad, unknown, nan, free, good}, day(2025, 2, 1), day(2025, 2, 28))
	if got.Skipped != 3 {
		t.Fatalf("Skipped = %d, want 3", got.Skipped)
	}
	if v := got.Month(2025, 1)["USD"]; !approx(v, 28) {
		t.Fatalf("February = %v, want 28", v)
	}
}

func TestAggregate_OutsideRange(t *testing.T) {
	var a Aggregator
	ended := sub("ended", 10, model.CycleMonthly, day(2024, 1, 1))
	ended.EndDay = model.DayPtr(day(2024, 6, 30))
	future := sub("future", 10, model.CycleMonthly, day(2026, 1, 1))

	got := a.Aggregate([]model.Subscription{ended, future}, day(2025, 1, 1), day(2025, 12, 31))
	if len(got.Days) != 0 || len(got.Months) != 0 || len(got.Years) != 0 {
		t.Fatalf("totals = %+v, want empty", got)
	}
}

// naiveAggregate walks every period from the start without skipping ahead.
func naiveAggregate(s model.Subscription, start, end dayindex.Day) map[dayindex.Day]float64 {
	out := map[dayindex.Day]float64{}
	st := newStepper(s.Cycle, s.StartDay)
	for n := 0; n < 10000; n++ {
		ps := st.at(n)
		if ps > end {
			break
		}
		pe := st.at(n+1) - 1
		per := s.Price / float64(pe-ps+1)
		for d := max(ps, start); d <= min(pe, end); d++ {
			out[d] += per
		}
	}
	return out
}

func TestAggregate_SkipAheadMatchesNaive(t *testing.T) {
	var a Aggregator
	starts := []dayindex.Day{day(2024, 1, 31), day(2024, 2, 29), day(2024, 3, 30), day(2024, 12, 31), day(2024, 5, 15)}
	ranges := [][2]dayindex.Day{
		{day(2025, 3, 1), day(2025, 3, 31)},
		{day(2025, 2, 28), day(2025, 3, 2)},
		{day(2026, 2, 27), day(2026, 4, 2)},
		{day(2028, 2, 28), day(2028, 3, 1)},
	}
	for _, cycle := range model.Cycles {
		for _, st := range starts {
			s := sub("s", 12, cycle, st)
			for _, r := range ranges {
				got := a.Aggregate([]model.Subscription{s}, r[0], r[1])
				want := naiveAggregate(s, r[0], r[1])
				for d := r[0]; d <= r[1]; d++ {
					if !approx(got.Day(d)["USD"], want[d]) {
						t.Fatalf("%s from %s, day %s: got %v, want %v", cycle, st, d, got.Day(d)["USD"], want[d])
					}
				}
			}
		}
	}
}

func TestTotalsSum(t *testing.T) {
	var a Aggregator
	s := sub("s", 30, model.CycleMonthly, day(2025, 4, 1))
	got := a.Aggregate([]model.Subscription{s}, day(2025, 4, 1), day(2025, 4, 30))
	b := got.Sum([]dayindex.Day{day(2025, 4, 1), day(2025, 4, 2), day(2025, 3, 1)})
	if !approx(b["USD"], 2) {
		t.Fatalf("Sum = %v, want 2", b)
	}
}

func TestChargeDays(t *testing.T) {
	var a Aggregator
	tests := []struct {
		name  string
		sub   model.Subscription
		start dayindex.Day
		end   dayindex.Day
		want  []dayindex.Day
	}{
		{
			name:  "monthly from the 31st",
			sub:   sub("m", 1, model.CycleMonthly, day(2025, 1, 31)),
			start: day(2025, 2, 1),
			end:   day(2025, 5, 1),
			want:  []dayindex.Day{day(2025, 2, 28), day(2025, 3, 31), day(2025, 4, 30)},
		},
		{
			name:  "weekly",
			sub:   sub("w", 1, model.CycleWeekly, day(2025, 1, 1)),
			start: day(2025, 1, 10),
			end:   day(2025, 1, 31),
			want:  []dayindex.Day{day(2025, 1, 15), day(2025, 1, 22), day(2025, 1, 29)},
		},
		{
			name:  "yearly leap anchor",
			sub:   sub("y", 1, model.CycleYearly, day(2024, 2, 29)),
			start: day(2024, 1, 1),
			end:   day(2028, 12, 31),
			want:  []dayindex.Day{day(2024, 2, 29), day(2025, 2, 28), day(2026, 2, 28), day(2027, 2, 28), day(2028, 2, 29)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.ChargeDays(tt.sub, tt.start, tt.end)
			if len(got) != len(tt.want) {
				t.Fatalf("ChargeDays = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ChargeDays = %v, want %v", got, tt.want)
				}
			}
		})
	}

	ended := sub("e", 1, model.CycleMonthly, day(2025, 1, 5))
	ended.EndDay = model.DayPtr(day(2025, 3, 4))
	if got := a.ChargeDays(ended, day(2025, 1, 1), day(2025, 12, 31)); len(got) != 2 {
		t.Fatalf("ChargeDays with end = %v, want 2 dates", got)
	}
}

func TestEstimates(t *testing.T) {
	subs := []model.Subscription{
		sub("w", 12, model.CycleWeekly, 0),
		sub("m", 10, model.CycleMonthly, 0),
		sub("y", 120, model.CycleYearly, 0),
		sub("bad", -1, model.CycleMonthly, 0),
	}
	subs[2].Currency = "EUR"

	monthly := GroupByCurrency(subs, EstimateMonthly)
	if !approx(monthly["USD"], 12*52.0/12+10) || !approx(monthly["EUR"], 10) {
		t.Fatalf("monthly = %v", monthly)
	}
	yearly := GroupByCurrency(subs, EstimateYearly)
	if !approx(yearly["EUR"], 120) {
		t.Fatalf("yearly = %v", yearly)
	}
	if !math.IsNaN(EstimateMonthly(subs[3])) {
		t.Fatal("negative price should not estimate")
	}
}
