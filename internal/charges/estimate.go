package charges

import (
	"math"

	"github.com/theirongolddev/subcal/internal/model"
)

// Estimator returns a run-rate amount for one subscription, or NaN when it
// cannot be estimated.
type Estimator func(model.Subscription) float64

// EstimateMonthly normalizes a price to a monthly run rate. A week is
// counted as 52/12 of a month.
func EstimateMonthly(sub model.Subscription) float64 {
	price := sub.Price
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return math.NaN()
	}
	switch sub.Cycle {
	case model.CycleWeekly:
		return price * 52 / 12
	case model.CycleYearly:
		return price / 12
	default:
		return price
	}
}

// EstimateYearly is twelve times EstimateMonthly.
func EstimateYearly(sub model.Subscription) float64 {
	return EstimateMonthly(sub) * 12
}

// GroupByCurrency sums est over subs per currency, skipping NaN estimates.
func GroupByCurrency(subs []model.Subscription, est Estimator) model.CurrencyBucket {
	out := model.CurrencyBucket{}
	for _, s := range subs {
		out.Add(s.Currency, est(s))
	}
	return out
}
