// Package model defines domain types for subcal subscriptions and totals.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/subcal/internal/dayindex"
)

// Cycle is a subscription's billing cadence.
type Cycle string

const (
	CycleWeekly  Cycle = "weekly"
	CycleMonthly Cycle = "monthly"
	CycleYearly  Cycle = "yearly"
)

// Cycles lists the supported billing cadences in display order.
var Cycles = []Cycle{CycleWeekly, CycleMonthly, CycleYearly}

// ParseCycle accepts the canonical lower-case names, case-insensitively.
func ParseCycle(s string) (Cycle, error) {
	switch c := Cycle(strings.ToLower(strings.TrimSpace(s))); c {
	case CycleWeekly, CycleMonthly, CycleYearly:
		return c, nil
	default:
		return "", fmt.Errorf("unknown cycle %q", s)
	}
}

// Valid reports whether c is one of the supported cadences.
func (c Cycle) Valid() bool {
	switch c {
	case CycleWeekly, CycleMonthly, CycleYearly:
		return true
	}
	return false
}

// Subscription is one validated recurring charge.
type Subscription struct {
	ID        string
	Name      string
	Price     float64
	Currency  string
	Cycle     Cycle
	StartDay  dayindex.Day
	EndDay    *dayindex.Day // nil means open ended
	Color     string
	Link      string
	CreatedAt time.Time
}

// HasEnd reports whether the subscription has an end date.
func (s Subscription) HasEnd() bool { return s.EndDay != nil }

// ActiveOn reports whether d falls within [StartDay, EndDay].
func (s Subscription) ActiveOn(d dayindex.Day) bool {
	if d < s.StartDay {
		return false
	}
	return s.EndDay == nil || d <= *s.EndDay
}

// DayPtr returns a pointer to d, for optional day fields.
func DayPtr(d dayindex.Day) *dayindex.Day { return &d }
