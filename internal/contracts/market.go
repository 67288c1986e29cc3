package contracts

import "time"

// Metrics is what the data service knows about a ticker.
// Nil pointers mean the service returned no value for that metric.
type Metrics struct {
	Ticker       string
	Name         string
	Price        float64
	Currency     string
	Revenue      *float64
	FreeCashFlow *float64
	Debt         *float64
	Cash         *float64
	AsOf         time.Time
}

// FetchResult is a tagged lookup result: Found carries metrics, NotFound carries nothing
type FetchResult struct {
	Found   bool
	Metrics Metrics
}

// Found wraps metrics as a successful lookup
func Found(m Metrics) FetchResult {
	return FetchResult{Found: true, Metrics: m}
}

// NotFound is the lookup result for an unknown ticker
func NotFound() FetchResult {
	return FetchResult{}
}

// FetchReport is the S0 output: the report text plus the tickers the service had no data for
type FetchReport struct {
	StageReport
	Results        []FetchResult // TickerSet order
	MissingTickers []string
}
