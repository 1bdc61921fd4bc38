// Package dayindex implements calendar arithmetic over an integer day
// coordinate: days since 1970-01-01, computed at UTC midnight so time zones
// and DST never shift a date.
package dayindex

import (
	"fmt"
	"time"
)

// Day is a day number: whole days since the Unix epoch (UTC).
type Day int

// Parts is the calendar breakdown of a Day. Month is zero based (0 = January).
type Parts struct {
	Year  int
	Month int
	Day   int
}

const secondsPerDay = 24 * 60 * 60

// FromParts returns the day number of a calendar date. Out-of-range month or
// day values roll over the same way time.Date does.
func FromParts(year, month, day int) Day {
	t := time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, time.UTC)
	return fromUnix(t.Unix())
}

// FromPartsValue is FromParts for a Parts value.
func FromPartsValue(p Parts) Day {
	return FromParts(p.Year, p.Month, p.Day)
}

func fromUnix(sec int64) Day {
	d := sec / secondsPerDay
	if sec%secondsPerDay < 0 {
		d--
	}
	return Day(d)
}

// FromTime returns the day number of t's own calendar date.
func FromTime(t time.Time) Day {
	return FromParts(t.Year(), int(t.Month())-1, t.Day())
}

// Today returns the caller's local calendar date of now as a UTC day.
func Today(now time.Time) Day {
	return FromTime(now.Local())
}

// Time returns UTC midnight of d.
func (d Day) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

// Parts returns the calendar breakdown of d.
func (d Day) Parts() Parts {
	t := d.Time()
	return Parts{Year: t.Year(), Month: int(t.Month()) - 1, Day: t.Day()}
}

// ISO formats d as YYYY-MM-DD.
func (d Day) ISO() string {
	p := d.Parts()
	return fmt.Sprintf("%04d-%02d-%02d", p.Year, p.Month+1, p.Day)
}

// String implements fmt.Stringer.
func (d Day) String() string { return d.ISO() }

// DaysInMonth returns the length of a month (28..31).
func DaysInMonth(year, month int) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthsClamped shifts p by n months. The day of month is clamped to the
// target month's length instead of rolling into the next month, so Jan 31 + 1
// month is Feb 28 (or 29).
func AddMonthsClamped(p Parts, n int) Parts {
	total := p.Year*12 + p.Month + n
	year := floorDiv(total, 12)
	month := total - year*12
	return Parts{Year: year, Month: month, Day: min(p.Day, DaysInMonth(year, month))}
}

// AddYearsClamped shifts p by n years, clamping Feb 29 to Feb 28 in common years.
func AddYearsClamped(p Parts, n int) Parts {
	year := p.Year + n
	return Parts{Year: year, Month: p.Month, Day: min(p.Day, DaysInMonth(year, p.Month))}
}

// MonthKey returns the month bucket key year*12+month.
func MonthKey(p Parts) int {
	return p.Year*12 + p.Month
}

// MonthKeyParts is the inverse of MonthKey.
func MonthKeyParts(key int) (year, month int) {
	year = floorDiv(key, 12)
	return year, key - year*12
}

// MonthStart returns the first day of the month containing d.
func MonthStart(d Day) Day {
	p := d.Parts()
	return FromParts(p.Year, p.Month, 1)
}

// MonthEnd returns the last day of the month containing d.
func MonthEnd(d Day) Day {
	p := d.Parts()
	return FromParts(p.Year, p.Month, DaysInMonth(p.Year, p.Month))
}

// YearStart returns January 1st of the year containing d.
func YearStart(d Day) Day {
	return FromParts(d.Parts().Year, 0, 1)
}

// YearEnd returns December 31st of the year containing d.
func YearEnd(d Day) Day {
	return FromParts(d.Parts().Year, 11, 31)
}

// ParseISO parses a strict YYYY-MM-DD date. It fails on any other length,
// non-digit characters, or a month/day outside the calendar.
func ParseISO(text string) (Day, bool) {
	if len(text) != 10 || text[4] != '-' || text[7] != '-' {
		return 0, false
	}
	year, ok := digits(text[0:4])
	if !ok {
		return 0, false
	}
	month, ok := digits(text[5:7])
	if !ok {
		return 0, false
	}
	day, ok := digits(text[8:10])
	if !ok {
		return 0, false
	}
	if month < 1 || month > 12 {
		return 0, false
	}
	if day < 1 || day > DaysInMonth(year, month-1) {
		return 0, false
	}
	return FromParts(year, month-1, day), true
}

func digits(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
