package selection

import (
	"sort"

	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/viewport"
)

// Entry is one raw pick: the requested kind and its normalized anchor.
type Entry struct {
	Kind   Kind
	Anchor dayindex.Day
}

// Result describes what a Toggle did.
type Result struct {
	Removed    bool // an identical pick was toggled off
	Dropped    int  // overlapping picks replaced by the new one
	RangeGrown bool // the viewport range was widened to show the selection
}

// Set is an ordered list of picks kept disjoint at the effective granularity
// of its viewport.
type Set struct {
	vp      *viewport.Mapper
	entries []Entry
}

// NewSet returns an empty set bound to vp.
func NewSet(vp *viewport.Mapper) *Set {
	return &Set{vp: vp}
}

// Clone copies the picks onto another viewport.
func (s *Set) Clone(vp *viewport.Mapper) *Set {
	return &Set{vp: vp, entries: append([]Entry(nil), s.entries...)}
}

// Len is the number of raw picks.
func (s *Set) Len() int { return len(s.entries) }

// Entries returns a copy of the raw picks in insertion order.
func (s *Set) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// EffectiveKind promotes requested to the finest kind visible at the
// viewport's current zoom.
func (s *Set) EffectiveKind(requested Kind) Kind {
	return Promote(requested, s.vp.LOD())
}

func (s *Set) effectiveSpan(e Entry) Span {
	return SpanFor(s.EffectiveKind(e.Kind), e.Anchor, s.vp.Bounds())
}

func normalizeAnchor(kind Kind, anchor dayindex.Day, bounds dayindex.Range) dayindex.Day {
	anchor = bounds.Clamp(anchor)
	switch kind {
	case Month:
		return bounds.Clamp(dayindex.MonthStart(anchor))
	case Year:
		return bounds.Clamp(dayindex.YearStart(anchor))
	}
	return anchor
}

// Toggle adds or removes a pick. An identical existing pick is removed.
// Otherwise every pick whose effective span overlaps the new effective span
// is dropped and the new pick is appended. After an add the viewport range is
// grown to cover all effective spans.
func (s *Set) Toggle(requested Kind, anchor dayindex.Day) Result {
	anchor = normalizeAnchor(requested, anchor, s.vp.Bounds())
	for i, e := range s.entries {
		if e.Kind == requested && e.Anchor == anchor {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return Result{Removed: true}
		}
	}

	added := SpanFor(s.EffectiveKind(requested), anchor, s.vp.Bounds())
	kept := make([]Entry, 0, len(s.entries)+1)
	var res Result
	for _, e := range s.entries {
		if s.effectiveSpan(e).Overlaps(added) {
			res.Dropped++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = append(kept, Entry{Kind: requested, Anchor: anchor})
	res.RangeGrown = s.CoverViewport()
	return res
}

// CoverViewport grows the viewport range to the union of effective spans.
// Zooming out can promote picks to wider spans, so callers re-run it after a
// zoom change.
func (s *Set) CoverViewport() bool {
	spans := s.EffectiveSpans()
	if len(spans) == 0 {
		return false
	}
	lo, hi := spans[0].Start, spans[0].End
	for _, sp := range spans[1:] {
		lo = min(lo, sp.Start)
		hi = max(hi, sp.End)
	}
	return s.vp.CoverSpan(lo, hi)
}

// Clear removes every pick and reports whether anything was selected.
func (s *Set) Clear() bool {
	had := len(s.entries) > 0
	s.entries = nil
	return had
}

// EffectiveSpans returns the spans at effective granularity in insertion
// order, without duplicates.
func (s *Set) EffectiveSpans() []Span {
	return s.spans(true)
}

// RequestedSpans returns the spans at the kinds originally requested.
func (s *Set) RequestedSpans() []Span {
	return s.spans(false)
}

func (s *Set) spans(effective bool) []Span {
	if len(s.entries) == 0 {
		return nil
	}
	out := make([]Span, 0, len(s.entries))
	seen := make(map[spanKey]struct{}, len(s.entries))
	for _, e := range s.entries {
		kind := e.Kind
		if effective {
			kind = s.EffectiveKind(kind)
		}
		sp := SpanFor(kind, e.Anchor, s.vp.Bounds())
		if _, dup := seen[sp.key()]; dup {
			continue
		}
		seen[sp.key()] = struct{}{}
		out = append(out, sp)
	}
	return out
}

// PrimarySpan is the effective span of the most recent pick.
func (s *Set) PrimarySpan() (Span, bool) {
	if len(s.entries) == 0 {
		return Span{}, false
	}
	return s.effectiveSpan(s.entries[len(s.entries)-1]), true
}

// Days returns the sorted union of days covered by the effective spans,
// restricted to [lo, hi]. Each day appears once even where promoted spans
// coincide.
func (s *Set) Days(lo, hi dayindex.Day) []dayindex.Day {
	seen := make(map[dayindex.Day]struct{})
	var days []dayindex.Day
	for _, sp := range s.EffectiveSpans() {
		start, end := max(sp.Start, lo), min(sp.End, hi)
		for d := start; d <= end; d++ {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}
