package schedule

import (
	"testing"
	"time"

	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
)

func day(y, m, d int) dayindex.Day { return dayindex.FromParts(y, m-1, d) }

func dp(d dayindex.Day) *dayindex.Day { return &d }

func fmtDay(d *dayindex.Day) string {
	if d == nil {
		return "nil"
	}
	return d.ISO()
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		cycle      model.Cycle
		start      dayindex.Day
		end        *dayindex.Day
		today      dayindex.Day
		prev, next string
	}{
		{"month end anchor", model.CycleMonthly, day(2025, 1, 31), nil, day(2025, 3, 1), "2025-02-28", "2025-03-31"},
		{"monthly on charge day", model.CycleMonthly, day(2025, 1, 15), nil, day(2025, 4, 15), "2025-04-15", "2025-04-15"},
		{"monthly after charge", model.CycleMonthly, day(2025, 1, 15), nil, day(2025, 4, 20), "2025-04-15", "2025-05-15"},
		{"monthly start day", model.CycleMonthly, day(2025, 1, 15), nil, day(2025, 1, 15), "2025-01-15", "2025-01-15"},
		{"not started", model.CycleMonthly, day(2025, 6, 1), nil, day(2025, 3, 1), "nil", "2025-06-01"},
		{"weekly between", model.CycleWeekly, day(2025, 1, 1), nil, day(2025, 1, 10), "2025-01-08", "2025-01-15"},
		{"weekly on charge day", model.CycleWeekly, day(2025, 1, 1), nil, day(2025, 1, 15), "2025-01-15", "2025-01-15"},
		{"yearly leap anchor", model.CycleYearly, day(2024, 2, 29), nil, day(2025, 3, 1), "2025-02-28", "2026-02-28"},
		{"yearly before anniversary", model.CycleYearly, day(2024, 6, 1), nil, day(2025, 5, 1), "2024-06-01", "2025-06-01"},
		{"ended", model.CycleMonthly, day(2025, 1, 10), dp(day(2025, 3, 20)), day(2025, 6, 1), "2025-03-10", "nil"},
		{"next after end", model.CycleMonthly, day(2025, 1, 10), dp(day(2025, 6, 5)), day(2025, 6, 1), "2025-05-10", "nil"},
		{"next on end", model.CycleMonthly, day(2025, 1, 10), dp(day(2025, 6, 10)), day(2025, 6, 1), "2025-05-10", "2025-06-10"},
		{"end before start", model.CycleMonthly, day(2025, 5, 1), dp(day(2025, 4, 1)), day(2025, 3, 1), "nil", "nil"},
		{"unknown cycle", model.Cycle("daily"), day(2025, 1, 1), nil, day(2025, 3, 1), "nil", "nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := model.Subscription{ID: "x", Cycle: tt.cycle, StartDay: tt.start, EndDay: tt.end}
			got := Compute(s, tt.today)
			if fmtDay(got.Prev) != tt.prev || fmtDay(got.Next) != tt.next {
				t.Fatalf("Compute = prev %s next %s, want prev %s next %s", fmtDay(got.Prev), fmtDay(got.Next), tt.prev, tt.next)
			}
		})
	}
}

func TestCompute_PrevNeverAfterNext(t *testing.T) {
	start := day(2024, 1, 31)
	for _, cycle := range model.Cycles {
		s := model.Subscription{Cycle: cycle, StartDay: start}
		for today := start; today < start+800; today++ {
			got := Compute(s, today)
			if got.Prev == nil || got.Next == nil {
				t.Fatalf("%s at %s: missing dates %+v", cycle, today, got)
			}
			if *got.Prev > today || *got.Next < today || *got.Prev > *got.Next {
				t.Fatalf("%s at %s: prev %s next %s", cycle, today, got.Prev, got.Next)
			}
		}
	}
}

func TestParseSortMode(t *testing.T) {
	if m, err := ParseSortMode(""); err != nil || m != SortNextCharge {
		t.Fatalf("ParseSortMode(\"\") = %q, %v", m, err)
	}
	if m, err := ParseSortMode(" Price-Desc "); err != nil || m != SortPriceDesc {
		t.Fatalf("ParseSortMode = %q, %v", m, err)
	}
	if _, err := ParseSortMode("alphabetical"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestSort(t *testing.T) {
	today := day(2025, 3, 10)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	subs := []model.Subscription{
		{ID: "a", Price: 5, Cycle: model.CycleMonthly, StartDay: day(2025, 1, 20), CreatedAt: base},
		{ID: "b", Price: 50, Cycle: model.CycleMonthly, StartDay: day(2025, 1, 12), CreatedAt: base},
		{ID: "c", Price: 20, Cycle: model.CycleMonthly, StartDay: day(2025, 5, 1), CreatedAt: base},
		{ID: "d", Price: 20, Cycle: model.CycleMonthly, StartDay: day(2024, 1, 1), EndDay: dp(day(2024, 6, 1)), CreatedAt: base},
	}

	ids := func(rows []Row) string {
		out := ""
		for _, r := range rows {
			out += r.Sub.ID
		}
		return out
	}

	tests := []struct {
		mode SortMode
		want string
	}{
		{SortNextCharge, "bacd"},     // next: b 03-12, a 03-20, c 05-01, d none
		{SortNextChargeDesc, "cabd"}, // none sorts last
		{SortPriceAsc, "acdb"},       // c and d tie on price, next charge decides
		{SortPriceDesc, "bcda"},
		{SortStartAsc, "dbac"},
		{SortStartDesc, "cabd"},
		{SortRecentCharge, "abdc"}, // prev: a 02-20, b 02-12, d 2024-06-01, c none
		{SortRecentChargeAsc, "dbac"},
	}
	for _, tt := range tests {
		if got := ids(Sort(subs, tt.mode, today)); got != tt.want {
			t.Errorf("Sort(%s) = %s, want %s", tt.mode, got, tt.want)
		}
	}
}

func TestSort_TieBreaks(t *testing.T) {
	today := day(2025, 3, 10)
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	same := model.Subscription{Price: 1, Cycle: model.CycleMonthly, StartDay: day(2025, 2, 1)}

	x, y, z, w := same, same, same, same
	x.ID, x.CreatedAt = "x", older
	y.ID, y.CreatedAt = "y", newer
	z.ID, z.CreatedAt = "a", older
	w.ID, w.CreatedAt = "a", older

	rows := Sort([]model.Subscription{x, y, z, w}, SortNextCharge, today)
	got := []string{rows[0].Sub.ID, rows[1].Sub.ID, rows[2].Sub.ID, rows[3].Sub.ID}
	want := []string{"y", "a", "a", "x"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	// Identical keys keep input order.
	if rows[1].Sub.ID != "a" || rows[2].Sub.ID != "a" {
		t.Fatalf("order = %v", got)
	}
}
