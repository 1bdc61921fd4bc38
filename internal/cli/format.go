// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/theirongolddev/subcal/internal/model"
)

var symbolPrinter = message.NewPrinter(language.English)

// FormatMoney formats an amount with at most two fraction digits, dropping
// trailing zeros, and comma-grouped thousands.
// e.g., 1234.5 -> "1,234.5", 12 -> "12", 0.125 -> "0.13"
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	s := decimal.NewFromFloat(v).Round(2).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err == nil {
		intPart = FormatNumber(n)
	}
	if frac != "" {
		intPart += "." + frac
	}
	if neg && intPart != "0" {
		return "-" + intPart
	}
	return intPart
}

// CurrencySymbol returns the narrow symbol for an ISO code, or the code
// itself when it is unknown.
func CurrencySymbol(code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code
	}
	return symbolPrinter.Sprint(currency.NarrowSymbol(unit))
}

// FormatTotalsInline renders a bucket for a narrow cell: one currency shows
// just the amount, several show the first code and how many more follow.
// e.g., {USD: 10} -> "10", {EUR: 5, USD: 10} -> "EUR 5.00 +1"
func FormatTotalsInline(b model.CurrencyBucket) string {
	codes := b.Codes()
	switch len(codes) {
	case 0:
		return ""
	case 1:
		return FormatMoney(b[codes[0]])
	}
	return fmt.Sprintf("%s %.2f +%d", codes[0], b[codes[0]], len(codes)-1)
}

// FormatTotalsTitle renders every currency of a bucket with its symbol.
// e.g., {EUR: 5, USD: 10.5} -> "€5 / $10.5"
func FormatTotalsTitle(b model.CurrencyBucket) string {
	codes := b.Codes()
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, CurrencySymbol(code)+FormatMoney(b[code]))
	}
	return strings.Join(parts, " / ")
}

// FormatTotalsList renders a bucket as "CODE amount" pairs, or "-" when empty.
func FormatTotalsList(b model.CurrencyBucket) string {
	codes := b.Codes()
	if len(codes) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, code+" "+FormatMoney(b[code]))
	}
	return strings.Join(parts, " / ")
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatCycle returns the short suffix shown after a price.
func FormatCycle(c model.Cycle) string {
	switch c {
	case model.CycleWeekly:
		return "/wk"
	case model.CycleYearly:
		return "/yr"
	default:
		return "/mo"
	}
}
