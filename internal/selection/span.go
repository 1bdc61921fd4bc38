// Package selection keeps the set of day, month and year ranges picked on the
// timeline, promoting picks to a coarser granularity when the finer ticks are
// hidden at the current zoom.
package selection

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/viewport"
)

// Kind is a selection granularity. Kinds are ordered fine to coarse.
type Kind int

const (
	Day Kind = iota
	Month
	Year
)

// ParseKind accepts "day", "month" or "year" in any case. Anything else is
// treated as a day pick.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "year":
		return Year
	case "month":
		return Month
	default:
		return Day
	}
}

// Rank is the promotion order: day 0, month 1, year 2.
func (k Kind) Rank() int { return int(k) }

func kindFromRank(r int) Kind {
	switch {
	case r >= 2:
		return Year
	case r >= 1:
		return Month
	default:
		return Day
	}
}

func (k Kind) String() string {
	switch k {
	case Month:
		return "month"
	case Year:
		return "year"
	default:
		return "day"
	}
}

// LowestDisplayable is the finest kind whose ticks are visible at lod.
func LowestDisplayable(lod viewport.LOD) Kind {
	switch {
	case !lod.Month:
		return Year
	case !lod.Day:
		return Month
	default:
		return Day
	}
}

// Promote returns the coarser of requested and the lowest displayable kind.
func Promote(requested Kind, lod viewport.LOD) Kind {
	return kindFromRank(max(requested.Rank(), LowestDisplayable(lod).Rank()))
}

// Span is a closed day interval aligned to its kind's calendar boundary.
type Span struct {
	Kind  Kind
	Start dayindex.Day
	End   dayindex.Day
	Label string
}

// Overlaps reports whether two closed spans share a day.
func (s Span) Overlaps(o Span) bool {
	return s.Start <= o.End && s.End >= o.Start
}

// Contains reports whether d lies in the span.
func (s Span) Contains(d dayindex.Day) bool {
	return d >= s.Start && d <= s.End
}

// Len is the number of days in the span.
func (s Span) Len() int { return int(s.End-s.Start) + 1 }

func (s Span) String() string {
	return fmt.Sprintf("%s %s..%s", s.Kind, s.Start, s.End)
}

type spanKey struct {
	kind       Kind
	start, end dayindex.Day
}

func (s Span) key() spanKey { return spanKey{s.Kind, s.Start, s.End} }

// SpanFor returns the span of the given kind containing anchor, clamped to
// bounds: the day itself, its calendar month, or its calendar year.
func SpanFor(kind Kind, anchor dayindex.Day, bounds dayindex.Range) Span {
	anchor = bounds.Clamp(anchor)
	p := anchor.Parts()
	switch kind {
	case Year:
		return Span{
			Kind:  Year,
			Start: bounds.Clamp(dayindex.FromParts(p.Year, 0, 1)),
			End:   bounds.Clamp(dayindex.FromParts(p.Year, 11, 31)),
			Label: fmt.Sprintf("%04d", p.Year),
		}
	case Month:
		return Span{
			Kind:  Month,
			Start: bounds.Clamp(dayindex.FromParts(p.Year, p.Month, 1)),
			End:   bounds.Clamp(dayindex.FromParts(p.Year, p.Month, dayindex.DaysInMonth(p.Year, p.Month))),
			Label: fmt.Sprintf("%04d-%02d", p.Year, p.Month+1),
		}
	default:
		return Span{Kind: Day, Start: anchor, End: anchor, Label: anchor.ISO()}
	}
}

// ParseSpec parses "kind:date" pick notation such as "month:2025-03",
// "year:2025" or "day:2025-03-04". A bare date is a day pick. Month and year
// picks accept a full date too.
func ParseSpec(text string) (Kind, dayindex.Day, error) {
	kindText, dateText, found := strings.Cut(strings.TrimSpace(text), ":")
	if !found {
		kindText, dateText = "day", kindText
	}
	kind := ParseKind(kindText)
	switch kind {
	case Year:
		if len(dateText) == 4 {
			dateText += "-01-01"
		}
	case Month:
		if len(dateText) == 7 {
			dateText += "-01"
		}
	}
	d, ok := dayindex.ParseISO(dateText)
	if !ok {
		return 0, 0, fmt.Errorf("invalid selection %q", text)
	}
	return kind, d, nil
}
