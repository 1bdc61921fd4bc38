package dayindex

// Default supported calendar years (inclusive).
const (
	DefaultMinYear = 2024
	DefaultMaxYear = 2030
)

// Range is a closed interval of supported day numbers.
type Range struct {
	Min Day
	Max Day
}

// DefaultRange covers calendar years 2024 through 2030.
func DefaultRange() Range {
	return YearRange(DefaultMinYear, DefaultMaxYear)
}

// YearRange covers Jan 1 of minYear through Dec 31 of maxYear. Inverted
// arguments are swapped.
func YearRange(minYear, maxYear int) Range {
	if maxYear < minYear {
		minYear, maxYear = maxYear, minYear
	}
	return Range{Min: FromParts(minYear, 0, 1), Max: FromParts(maxYear, 11, 31)}
}

// Clamp pins d into the range.
func (r Range) Clamp(d Day) Day {
	if d < r.Min {
		return r.Min
	}
	if d > r.Max {
		return r.Max
	}
	return d
}

// Contains reports whether d lies inside the range.
func (r Range) Contains(d Day) bool {
	return d >= r.Min && d <= r.Max
}

// Len is the number of days in the range.
func (r Range) Len() int {
	return int(r.Max-r.Min) + 1
}

// MinYear returns the first supported calendar year.
func (r Range) MinYear() int { return r.Min.Parts().Year }

// MaxYear returns the last supported calendar year.
func (r Range) MaxYear() int { return r.Max.Parts().Year }
