package pipeline

import (
	"math"
	"sort"

	"github.com/theirongolddev/subcal/internal/charges"
	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
)

// CostBreakdown splits the run rate of subscriptions active today by
// currency, sorted by converted monthly cost (highest first), then code.
// Currencies without a rate sort last.
func CostBreakdown(subs []model.Subscription, today dayindex.Day, conv Converter) []model.CurrencyCost {
	rows := make(map[string]*model.CurrencyCost)
	for _, s := range subs {
		if !s.ActiveOn(today) {
			continue
		}
		m := charges.EstimateMonthly(s)
		if math.IsNaN(m) {
			continue
		}
		row, ok := rows[s.Currency]
		if !ok {
			row = &model.CurrencyCost{Currency: s.Currency}
			rows[s.Currency] = row
		}
		row.Subscriptions++
		row.Monthly += m
		row.Yearly += m * 12
	}

	out := make([]model.CurrencyCost, 0, len(rows))
	var totalUSD float64
	for _, row := range rows {
		if conv != nil {
			if usd, ok := conv.ToUSD(row.Monthly, row.Currency); ok {
				row.MonthlyUSD = usd
				row.HasRate = true
				totalUSD += usd
			}
		}
		out = append(out, *row)
	}
	for i := range out {
		if out[i].HasRate && totalUSD > 0 {
			out[i].Share = out[i].MonthlyUSD / totalUSD
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.HasRate != b.HasRate {
			return a.HasRate
		}
		if a.MonthlyUSD != b.MonthlyUSD {
			return a.MonthlyUSD > b.MonthlyUSD
		}
		return a.Currency < b.Currency
	})
	return out
}
