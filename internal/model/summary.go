package model

// Summary is a point-in-time overview of a subscription set.
type Summary struct {
	Total    int
	Active   int
	Upcoming int
	Ended    int
	ByCycle  map[Cycle]int

	// Run-rate estimates over active subscriptions, per currency.
	Monthly CurrencyBucket
	Yearly  CurrencyBucket

	// MonthlyUSD is Monthly converted with the configured rates.
	// MissingRates lists currencies that could not be converted.
	MonthlyUSD   float64
	MissingRates []string
}

// CurrencyCost is one row of a per-currency cost breakdown.
type CurrencyCost struct {
	Currency      string
	Subscriptions int
	Monthly       float64
	Yearly        float64
	MonthlyUSD    float64
	HasRate       bool
	Share         float64 // of the converted monthly total, 0..1
}
