package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/subcal/internal/model"
)

// RatesConfig holds exchange rates quoted against one US dollar: a rate of
// 7.2 for CNY means 1 USD = 7.2 CNY.
type RatesConfig struct {
	USD map[string]float64 `toml:"usd,omitempty"`
}

// DefaultUSDRates is a small fallback table used when no rate is configured.
var DefaultUSDRates = map[string]float64{
	"USD": 1,
	"EUR": 0.92,
	"GBP": 0.79,
	"JPY": 150,
	"CNY": 7.2,
}

func (r RatesConfig) validate() error {
	for code, rate := range r.USD {
		if len(code) != 3 || strings.ToUpper(code) != code {
			return fmt.Errorf("rates: invalid currency code %q", code)
		}
		if !(rate > 0) || math.IsInf(rate, 0) {
			return fmt.Errorf("rates: %s rate must be a positive number", code)
		}
	}
	return nil
}

// LookupRate returns the configured rate for code, falling back to the
// built-in table.
func (r RatesConfig) LookupRate(code string) (float64, bool) {
	code = strings.ToUpper(code)
	if code == "USD" {
		return 1, true
	}
	if rate, ok := r.USD[code]; ok && rate > 0 {
		return rate, true
	}
	rate, ok := DefaultUSDRates[code]
	return rate, ok
}

// ToUSD converts amount in code to dollars.
func (r RatesConfig) ToUSD(amount float64, code string) (float64, bool) {
	rate, ok := r.LookupRate(code)
	if !ok || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return math.NaN(), false
	}
	return amount / rate, true
}

// BucketToUSD sums a bucket in dollars and lists the codes without a rate.
func (r RatesConfig) BucketToUSD(b model.CurrencyBucket) (total float64, missing []string) {
	for _, code := range b.Codes() {
		v, ok := r.ToUSD(b[code], code)
		if !ok {
			missing = append(missing, code)
			continue
		}
		total += v
	}
	return total, missing
}
