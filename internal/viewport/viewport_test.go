package viewport

import (
	"math"
	"testing"

	"github.com/theirongolddev/subcal/internal/dayindex"
)

func newTestMapper(width float64) *Mapper {
	start := dayindex.FromParts(2025, 0, 1)
	return New(DefaultOptions(), width, start, start+365)
}

func TestDayToPixelInverse(t *testing.T) {
	m := newTestMapper(12.5)
	for _, d := range []float64{float64(m.RangeStart), float64(m.RangeStart) + 0.25, float64(m.RangeEnd)} {
		px := m.DayToPixel(d)
		if got := m.PixelToDayFloat(px); math.Abs(got-d) > 1e-9 {
			t.Fatalf("PixelToDayFloat(DayToPixel(%v)) = %v", d, got)
		}
	}
	if got := m.DayToPixel(float64(m.RangeStart + 4)); got != 50 {
		t.Fatalf("DayToPixel(start+4) = %v, want 50", got)
	}
}

func TestSetZoom_ClampAndRound(t *testing.T) {
	tests := []struct {
		requested float64
		want      float64
		changed   bool
	}{
		{0.1, 1, true},
		{100, 32, true},
		{7.74, 7.5, true},
		{7.76, 8, true},
		{4, 4, false},
		{math.NaN(), 4, false},
		{math.Inf(1), 4, false},
	}
	for _, tt := range tests {
		m := newTestMapper(4)
		changed := m.SetZoom(tt.requested, float64(m.RangeStart)+10)
		if changed != tt.changed || m.DayWidth != tt.want {
			t.Errorf("SetZoom(%v) = %v, width %v; want %v, width %v", tt.requested, changed, m.DayWidth, tt.changed, tt.want)
		}
	}
}

func TestSetZoom_StepNotDividingBounds(t *testing.T) {
	opts := DefaultOptions()
	opts.Step = 3
	start := dayindex.FromParts(2025, 0, 1)
	tests := []struct {
		requested float64
		want      float64
	}{
		{100, 32},
		{32, 32},
		{31, 30},
		{28, 27},
		{0.2, 1},
		{2, 3},
	}
	for _, tt := range tests {
		m := New(opts, 9, start, start+365)
		m.SetZoom(tt.requested, float64(start))
		if m.DayWidth != tt.want {
			t.Errorf("SetZoom(%v) width = %v, want %v", tt.requested, m.DayWidth, tt.want)
		}
		if m.DayWidth < opts.MinWidth || m.DayWidth > opts.MaxWidth {
			t.Errorf("SetZoom(%v) width %v outside [%v, %v]", tt.requested, m.DayWidth, opts.MinWidth, opts.MaxWidth)
		}
	}
}

func TestSetZoom_AnchorInvariance(t *testing.T) {
	widths := []float64{1, 1.5, 3, 7.5, 15, 22, 32}
	anchors := []float64{0, 37, 250.5, 800}
	for _, from := range widths {
		for _, to := range widths {
			for _, x := range anchors {
				m := newTestMapper(from)
				m.Scroll = 300
				before := m.ScreenToDayFloat(x)
				m.SetZoom(to, before)
				after := m.ScreenToDayFloat(x)
				if math.Abs(after-before) >= m.Options().Step {
					t.Fatalf("zoom %v -> %v at x=%v moved anchor %v -> %v", from, to, x, before, after)
				}
			}
		}
	}
}

func TestZoomInOut(t *testing.T) {
	m := newTestMapper(31.5)
	if !m.ZoomIn(float64(m.RangeStart)) || m.DayWidth != 32 {
		t.Fatalf("ZoomIn width = %v, want 32", m.DayWidth)
	}
	if m.ZoomIn(float64(m.RangeStart)) {
		t.Fatal("ZoomIn at max should be a no-op")
	}
	if !m.ZoomOut(float64(m.RangeStart)) || m.DayWidth != 31.5 {
		t.Fatalf("ZoomOut width = %v, want 31.5", m.DayWidth)
	}
}

func TestLOD(t *testing.T) {
	tests := []struct {
		width float64
		want  LOD
	}{
		{32, LOD{Day: true, Month: true, Year: true}},
		{15, LOD{Day: true, Month: true, Year: true}},
		{14.5, LOD{Day: false, Month: true, Year: true}},
		{1.5, LOD{Day: false, Month: true, Year: true}},
		{1, LOD{Day: false, Month: false, Year: true}},
	}
	for _, tt := range tests {
		if got := LODAt(tt.width, DefaultOptions()); got != tt.want {
			t.Errorf("LODAt(%v) = %+v, want %+v", tt.width, got, tt.want)
		}
	}

	// Day ticks never outlive month ticks, even with odd thresholds.
	opts := DefaultOptions()
	opts.DayTicksAt = 1
	opts.MonthTicksAt = 10
	if got := LODAt(5, opts); got.Day {
		t.Fatalf("LODAt(5) = %+v, day visible with month hidden", got)
	}
}

func TestGrowRangeToCover(t *testing.T) {
	m := newTestMapper(10)
	start, end := m.RangeStart, m.RangeEnd

	if m.GrowRangeToCover(start + 5) {
		t.Fatal("day inside range should not grow")
	}

	if !m.GrowRangeToCover(end + 10) {
		t.Fatal("expected growth to the right")
	}
	if m.RangeEnd != end+365 || m.RangeStart != start {
		t.Fatalf("range = [%s, %s], want end %s", m.RangeStart, m.RangeEnd, end+365)
	}

	// 340 days past the edge plus the margin needs two chunks.
	end = m.RangeEnd
	m.GrowRangeToCover(end + 340)
	if m.RangeEnd != end+730 {
		t.Fatalf("RangeEnd = %s, want %s", m.RangeEnd, end+730)
	}
}

func TestGrowRangeToCover_LeftKeepsView(t *testing.T) {
	start := dayindex.FromParts(2026, 0, 1)
	m := New(DefaultOptions(), 8, start, start+100)
	m.Scroll = 160
	before := m.ScreenToDayFloat(40)

	if !m.GrowRangeToCover(start - 3) {
		t.Fatal("expected growth to the left")
	}
	if m.RangeStart != start-365 {
		t.Fatalf("RangeStart = %s, want %s", m.RangeStart, start-365)
	}
	if after := m.ScreenToDayFloat(40); after != before {
		t.Fatalf("visible day moved %v -> %v", before, after)
	}
}

func TestGrowRangeToCover_ClampedToBounds(t *testing.T) {
	b := dayindex.DefaultRange()
	m := New(DefaultOptions(), 8, b.Min+10, b.Max-10)
	m.GrowRangeToCover(b.Min - 5000)
	m.GrowRangeToCover(b.Max + 5000)
	if m.RangeStart != b.Min || m.RangeEnd != b.Max {
		t.Fatalf("range = [%s, %s], want bounds", m.RangeStart, m.RangeEnd)
	}
	if m.GrowRangeToCover(b.Max + 1) {
		t.Fatal("fully grown range should not report growth")
	}
}

func TestGrowRangeMonotonic(t *testing.T) {
	m := newTestMapper(5)
	days := []dayindex.Day{m.RangeStart - 1, m.RangeEnd + 900, m.RangeStart + 3, m.RangeStart - 1200, 0, 1 << 20}
	prev := m.RangeEnd - m.RangeStart
	for _, d := range days {
		m.GrowRangeToCover(d)
		if span := m.RangeEnd - m.RangeStart; span < prev {
			t.Fatalf("range shrank from %d to %d after %d", prev, span, d)
		}
		prev = m.RangeEnd - m.RangeStart
	}
}

func TestCoverSpan(t *testing.T) {
	m := newTestMapper(5)
	start, end := m.RangeStart, m.RangeEnd
	if !m.CoverSpan(start-10, end+3) {
		t.Fatal("expected growth")
	}
	if m.RangeStart != start-10 || m.RangeEnd != end+3 {
		t.Fatalf("range = [%s, %s]", m.RangeStart, m.RangeEnd)
	}
	if m.Scroll != 50 {
		t.Fatalf("Scroll = %v, want 50", m.Scroll)
	}
}

func TestExtendNearEdges(t *testing.T) {
	m := newTestMapper(2)
	m.ScrollToDay(m.RangeStart+100, 100)
	start := m.RangeStart
	if !m.ExtendNearEdges(100) {
		t.Fatal("expected extension near the left edge")
	}
	if m.RangeStart != start-365 {
		t.Fatalf("RangeStart = %s, want %s", m.RangeStart, start-365)
	}
}

func TestScrollToDayAndCenter(t *testing.T) {
	m := newTestMapper(10)
	target := m.RangeStart + 200
	m.ScrollToDay(target, 400)
	got, ok := m.CenterDay(400)
	if !ok || got != target {
		t.Fatalf("CenterDay = %s, %v; want %s", got, ok, target)
	}
	if _, ok := m.CenterDay(0); ok {
		t.Fatal("CenterDay with no width should fail")
	}
}
