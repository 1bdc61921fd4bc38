package pipeline

import (
	"github.com/theirongolddev/subcal/internal/charges"
	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
)

// Converter turns an amount in a currency into US dollars.
type Converter interface {
	ToUSD(amount float64, code string) (float64, bool)
}

// Summarize computes the overview of subs as of today. Run-rate figures only
// include subscriptions active today.
func Summarize(subs []model.Subscription, today dayindex.Day, conv Converter) model.Summary {
	sum := model.Summary{
		Total:   len(subs),
		ByCycle: make(map[model.Cycle]int),
		Monthly: model.CurrencyBucket{},
		Yearly:  model.CurrencyBucket{},
	}

	var active []model.Subscription
	for _, s := range subs {
		sum.ByCycle[s.Cycle]++
		switch {
		case s.StartDay > today:
			sum.Upcoming++
		case s.EndDay != nil && *s.EndDay < today:
			sum.Ended++
		default:
			sum.Active++
			active = append(active, s)
		}
	}

	sum.Monthly = charges.GroupByCurrency(active, charges.EstimateMonthly)
	sum.Yearly = charges.GroupByCurrency(active, charges.EstimateYearly)

	if conv != nil {
		for _, code := range sum.Monthly.Codes() {
			v, ok := conv.ToUSD(sum.Monthly[code], code)
			if !ok {
				sum.MissingRates = append(sum.MissingRates, code)
				continue
			}
			sum.MonthlyUSD += v
		}
	}
	return sum
}
