package selection

import (
	"testing"

	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/viewport"
)

func day(y, m, d int) dayindex.Day { return dayindex.FromParts(y, m-1, d) }

func newSet(width float64) (*Set, *viewport.Mapper) {
	vp := viewport.New(viewport.DefaultOptions(), width, day(2025, 1, 1), day(2025, 12, 31))
	return NewSet(vp), vp
}

func TestPromote(t *testing.T) {
	tests := []struct {
		width     float64
		requested Kind
		want      Kind
	}{
		{20, Day, Day},
		{20, Month, Month},
		{20, Year, Year},
		{10, Day, Month},
		{10, Year, Year},
		{1, Day, Year},
		{1, Month, Year},
	}
	for _, tt := range tests {
		lod := viewport.LODAt(tt.width, viewport.DefaultOptions())
		if got := Promote(tt.requested, lod); got != tt.want {
			t.Errorf("Promote(%s) at width %v = %s, want %s", tt.requested, tt.width, got, tt.want)
		}
	}
}

func TestSpanFor(t *testing.T) {
	b := dayindex.DefaultRange()
	anchor := day(2024, 2, 14)

	tests := []struct {
		kind       Kind
		start, end dayindex.Day
		label      string
	}{
		{Day, anchor, anchor, "2024-02-14"},
		{Month, day(2024, 2, 1), day(2024, 2, 29), "2024-02"},
		{Year, day(2024, 1, 1), day(2024, 12, 31), "2024"},
	}
	for _, tt := range tests {
		got := SpanFor(tt.kind, anchor, b)
		if got.Start != tt.start || got.End != tt.end || got.Label != tt.label || got.Kind != tt.kind {
			t.Errorf("SpanFor(%s) = %+v", tt.kind, got)
		}
	}

	// Anchors outside the supported range are clamped first.
	if got := SpanFor(Day, day(2019, 5, 5), b); got.Start != b.Min {
		t.Fatalf("SpanFor out of range = %+v, want clamped to %s", got, b.Min)
	}
	narrow := dayindex.Range{Min: day(2025, 3, 10), Max: day(2025, 3, 20)}
	if got := SpanFor(Month, day(2025, 3, 15), narrow); got.Start != narrow.Min || got.End != narrow.Max {
		t.Fatalf("SpanFor month in narrow bounds = %+v", got)
	}
}

func TestToggle_SelfInverse(t *testing.T) {
	s, _ := newSet(20)
	s.Toggle(Day, day(2025, 6, 1))
	s.Toggle(Month, day(2025, 9, 10))
	before := s.EffectiveSpans()

	for _, kind := range []Kind{Day, Month, Year} {
		anchor := day(2025, 3, 17)
		if kind == Year {
			anchor = day(2024, 7, 7)
		}
		if res := s.Toggle(kind, anchor); res.Removed {
			t.Fatalf("first Toggle(%s) reported removal", kind)
		}
		res := s.Toggle(kind, anchor)
		if !res.Removed {
			t.Fatalf("second Toggle(%s) did not remove", kind)
		}
		after := s.EffectiveSpans()
		if len(after) != len(before) {
			t.Fatalf("after toggle pair for %s: %v, want %v", kind, after, before)
		}
		for i := range before {
			if after[i].key() != before[i].key() {
				t.Fatalf("after toggle pair for %s: %v, want %v", kind, after, before)
			}
		}
	}
}

func TestToggle_MonthAnchorNormalized(t *testing.T) {
	s, _ := newSet(20)
	s.Toggle(Month, day(2025, 4, 18))
	res := s.Toggle(Month, day(2025, 4, 2))
	if !res.Removed {
		t.Fatal("picking another day of the same month should toggle it off")
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestToggle_ReplacesOverlapping(t *testing.T) {
	s, _ := newSet(20)
	s.Toggle(Day, day(2025, 4, 3))
	s.Toggle(Day, day(2025, 4, 20))
	s.Toggle(Day, day(2025, 5, 1))

	res := s.Toggle(Month, day(2025, 4, 9))
	if res.Dropped != 2 {
		t.Fatalf("Dropped = %d, want 2", res.Dropped)
	}
	spans := s.EffectiveSpans()
	if len(spans) != 2 || spans[0].Kind != Day || spans[1].Kind != Month {
		t.Fatalf("spans = %v", spans)
	}
	p, ok := s.PrimarySpan()
	if !ok || p.Label != "2025-04" {
		t.Fatalf("PrimarySpan = %+v, %v", p, ok)
	}
}

func TestToggle_EffectiveOverlap(t *testing.T) {
	// Day ticks hidden: day picks act as whole months.
	s, _ := newSet(5)
	s.Toggle(Day, day(2025, 4, 3))
	res := s.Toggle(Day, day(2025, 4, 25))
	if res.Dropped != 1 {
		t.Fatalf("Dropped = %d, want 1", res.Dropped)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	spans := s.EffectiveSpans()
	if spans[0].Kind != Month || spans[0].Start != day(2025, 4, 1) {
		t.Fatalf("spans = %v", spans)
	}
}

func TestOverlapExclusivity(t *testing.T) {
	s, vp := newSet(20)
	picks := []struct {
		kind Kind
		d    dayindex.Day
	}{
		{Day, day(2025, 1, 5)}, {Day, day(2025, 1, 9)}, {Month, day(2025, 2, 2)},
		{Day, day(2025, 2, 14)}, {Year, day(2026, 3, 3)}, {Month, day(2026, 5, 1)},
		{Day, day(2025, 1, 5)}, {Day, day(2027, 1, 1)}, {Month, day(2025, 1, 20)},
	}
	for i, p := range picks {
		if i == 5 {
			vp.SetZoom(8, float64(p.d))
		}
		s.Toggle(p.kind, p.d)
		spans := s.EffectiveSpans()
		for a := range spans {
			for b := a + 1; b < len(spans); b++ {
				if spans[a].Overlaps(spans[b]) {
					t.Fatalf("after pick %d: %v overlaps %v", i, spans[a], spans[b])
				}
			}
		}
	}
}

func TestEffectiveSpans_Dedup(t *testing.T) {
	s, vp := newSet(20)
	s.Toggle(Day, day(2025, 4, 3))
	s.Toggle(Day, day(2025, 4, 10))
	vp.SetZoom(5, float64(day(2025, 4, 5)))

	if got := len(s.RequestedSpans()); got != 2 {
		t.Fatalf("RequestedSpans = %d, want 2", got)
	}
	spans := s.EffectiveSpans()
	if len(spans) != 1 || spans[0].Kind != Month {
		t.Fatalf("EffectiveSpans = %v, want one month", spans)
	}
	if days := s.Days(vp.RangeStart, vp.RangeEnd); len(days) != 30 {
		t.Fatalf("Days = %d, want 30", len(days))
	}
}

func TestToggle_GrowsRange(t *testing.T) {
	vp := viewport.New(viewport.DefaultOptions(), 20, day(2025, 6, 10), day(2025, 6, 20))
	s := NewSet(vp)
	res := s.Toggle(Year, day(2025, 6, 15))
	if !res.RangeGrown {
		t.Fatal("expected range growth")
	}
	if vp.RangeStart != day(2025, 1, 1) || vp.RangeEnd != day(2025, 12, 31) {
		t.Fatalf("range = [%s, %s]", vp.RangeStart, vp.RangeEnd)
	}
}

func TestDays_Union(t *testing.T) {
	s, _ := newSet(20)
	s.Toggle(Day, day(2025, 3, 31))
	s.Toggle(Month, day(2025, 2, 1))
	s.Toggle(Day, day(2025, 2, 28)) // replaces the February month

	days := s.Days(day(2025, 1, 1), day(2025, 12, 31))
	if len(days) != 2 || days[0] != day(2025, 2, 28) || days[1] != day(2025, 3, 31) {
		t.Fatalf("Days = %v", days)
	}
	if got := s.Days(day(2025, 3, 1), day(2025, 3, 30)); len(got) != 0 {
		t.Fatalf("clipped Days = %v, want none", got)
	}
}

func TestClear(t *testing.T) {
	s, _ := newSet(20)
	if s.Clear() {
		t.Fatal("Clear on empty set reported a change")
	}
	s.Toggle(Day, day(2025, 1, 1))
	if !s.Clear() || s.Len() != 0 {
		t.Fatal("Clear did not empty the set")
	}
	if _, ok := s.PrimarySpan(); ok {
		t.Fatal("PrimarySpan on empty set")
	}
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
		d    dayindex.Day
		err  bool
	}{
		{"month:2025-03", Month, day(2025, 3, 1), false},
		{"year:2026", Year, day(2026, 1, 1), false},
		{"day:2025-03-04", Day, day(2025, 3, 4), false},
		{"2025-03-04", Day, day(2025, 3, 4), false},
		{"MONTH:2025-03-09", Month, day(2025, 3, 9), false},
		{"month:2025-13", 0, 0, true},
		{"day:tomorrow", 0, 0, true},
	}
	for _, tt := range tests {
		k, d, err := ParseSpec(tt.in)
		if (err != nil) != tt.err || (err == nil && (k != tt.kind || d != tt.d)) {
			t.Errorf("ParseSpec(%q) = (%s, %s, %v)", tt.in, k, d, err)
		}
	}
}
