package schedule

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
)

// SortMode selects the primary ordering of subscription rows.
type SortMode string

const (
	SortNextCharge      SortMode = "next-charge"
	SortNextChargeDesc  SortMode = "next-charge-desc"
	SortPriceAsc        SortMode = "price-asc"
	SortPriceDesc       SortMode = "price-desc"
	SortStartAsc        SortMode = "start-asc"
	SortStartDesc       SortMode = "start-desc"
	SortRecentCharge    SortMode = "recent-charge"
	SortRecentChargeAsc SortMode = "recent-charge-asc"
)

// SortModes lists every mode, default first.
var SortModes = []SortMode{
	SortNextCharge, SortNextChargeDesc,
	SortPriceAsc, SortPriceDesc,
	SortStartAsc, SortStartDesc,
	SortRecentCharge, SortRecentChargeAsc,
}

// ParseSortMode accepts a mode name in any case. An empty string selects the
// default.
func ParseSortMode(s string) (SortMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortNextCharge, nil
	}
	for _, m := range SortModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// Row is a subscription decorated with its charge dates.
type Row struct {
	Sub model.Subscription
	Charges
}

// Rows computes charge dates for each subscription in input order.
func Rows(subs []model.Subscription, today dayindex.Day) []Row {
	rows := make([]Row, len(subs))
	for i, s := range subs {
		rows[i] = Row{Sub: s, Charges: Compute(s, today)}
	}
	return rows
}

// Sort returns subs ordered by mode. Ties fall back to next charge, then
// start day, then newest creation time, then id, then input order.
func Sort(subs []model.Subscription, mode SortMode, today dayindex.Day) []Row {
	rows := Rows(subs, today)
	sort.SliceStable(rows, func(i, j int) bool {
		return compare(rows[i], rows[j], mode) < 0
	})
	return rows
}

func dayOr(d *dayindex.Day, missing float64) float64 {
	if d == nil {
		return missing
	}
	return float64(*d)
}

func finiteOr(v, missing float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return missing
	}
	return v
}

func cmp(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compare(a, b Row, mode SortMode) int {
	inf, ninf := math.Inf(1), math.Inf(-1)
	var d int
	switch mode {
	case SortPriceDesc:
		d = cmp(finiteOr(b.Sub.Price, ninf), finiteOr(a.Sub.Price, ninf))
	case SortPriceAsc:
		d = cmp(finiteOr(a.Sub.Price, inf), finiteOr(b.Sub.Price, inf))
	case SortStartAsc:
		d = cmp(float64(a.Sub.StartDay), float64(b.Sub.StartDay))
	case SortStartDesc:
		d = cmp(float64(b.Sub.StartDay), float64(a.Sub.StartDay))
	case SortRecentCharge:
		d = cmp(dayOr(b.Prev, ninf), dayOr(a.Prev, ninf))
	case SortRecentChargeAsc:
		d = cmp(dayOr(a.Prev, inf), dayOr(b.Prev, inf))
	case SortNextChargeDesc:
		d = cmp(dayOr(b.Next, ninf), dayOr(a.Next, ninf))
	default:
		d = cmp(dayOr(a.Next, inf), dayOr(b.Next, inf))
	}
	if d != 0 {
		return d
	}
	if d = cmp(dayOr(a.Next, inf), dayOr(b.Next, inf)); d != 0 {
		return d
	}
	if d = cmp(float64(a.Sub.StartDay), float64(b.Sub.StartDay)); d != 0 {
		return d
	}
	switch {
	case a.Sub.CreatedAt.After(b.Sub.CreatedAt):
		return -1
	case b.Sub.CreatedAt.After(a.Sub.CreatedAt):
		return 1
	}
	return strings.Compare(a.Sub.ID, b.Sub.ID)
}
