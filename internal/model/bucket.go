package model

import (
	"math"
	"sort"
)

// CurrencyBucket maps a currency code to an accumulated amount. A code whose
// amount sums to exactly zero is removed.
type CurrencyBucket map[string]float64

// Add accumulates amount under code. Zero and non-finite amounts are ignored.
func (b CurrencyBucket) Add(code string, amount float64) {
	if amount == 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return
	}
	next := b[code] + amount
	if next == 0 {
		delete(b, code)
		return
	}
	b[code] = next
}

// Merge adds every amount in other into b.
func (b CurrencyBucket) Merge(other CurrencyBucket) {
	for code, v := range other {
		b.Add(code, v)
	}
}

// Codes returns the currency codes sorted alphabetically.
func (b CurrencyBucket) Codes() []string {
	codes := make([]string, 0, len(b))
	for code := range b {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Clone returns an independent copy.
func (b CurrencyBucket) Clone() CurrencyBucket {
	out := make(CurrencyBucket, len(b))
	for code, v := range b {
		out[code] = v
	}
	return out
}

// Empty reports whether b holds no amounts.
func (b CurrencyBucket) Empty() bool { return len(b) == 0 }
