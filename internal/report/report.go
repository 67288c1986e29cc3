package report

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wonny/stocktracker/internal/contracts"
)

// Risk levels
const (
	RiskLow         = "Low"
	RiskModerate    = "Moderate"
	RiskHigh        = "High"
	RiskSpeculative = "Speculative"
)

// DefaultSortKey is the dashboard's initial ordering
const DefaultSortKey = "undervaluationScore"

// weights of the undervaluation score; they sum to 1
var weights = map[string]decimal.Decimal{
	"valueRank":            decimal.RequireFromString("0.25"),
	"expectedReturn":       decimal.RequireFromString("0.20"),
	"fcfQuality":           decimal.RequireFromString("0.15"),
	"roicStrength":         decimal.RequireFromString("0.15"),
	"balanceSheetStrength": decimal.RequireFromString("0.10"),
	"revenueDurability":    decimal.RequireFromString("0.10"),
	"insiderActivity":      decimal.RequireFromString("0.05"),
}

var hundredScale = decimal.NewFromInt(20)

// StockView is a record plus the values the dashboard derives from it
type StockView struct {
	contracts.StockRecord
	UndervaluationScore int    `json:"undervaluationScore"`
	RiskLevel           string `json:"riskLevel"`
	QualitySummary      string `json:"qualitySummary"`
}

// NewStockView derives the dashboard values for r
func NewStockView(r contracts.StockRecord) StockView {
	return StockView{
		StockRecord:         r,
		UndervaluationScore: UndervaluationScore(r),
		RiskLevel:           RiskLevel(r),
		QualitySummary:      QualitySummary(r),
	}
}

// UndervaluationScore is the weighted factor score on a 0-100 scale, rounded half up
func UndervaluationScore(r contracts.StockRecord) int {
	total := decimal.Zero
	for key, score := range r.FactorScores() {
		total = total.Add(weights[key].Mul(decimal.NewFromInt(int64(score)).Mul(hundredScale)))
	}
	return int(total.Round(0).IntPart())
}

// RiskLevel buckets the mean of the four quality factors
func RiskLevel(r contracts.StockRecord) string {
	sum := r.FCFQuality + r.ROICStrength + r.RevenueDurability + r.BalanceSheetStrength
	avg := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(4))

	switch {
	case avg.GreaterThanOrEqual(decimal.RequireFromString("4.3")):
		return RiskLow
	case avg.GreaterThanOrEqual(decimal.RequireFromString("3.3")):
		return RiskModerate
	case avg.GreaterThanOrEqual(decimal.RequireFromString("2.5")):
		return RiskHigh
	default:
		return RiskSpeculative
	}
}

// QualitySummary is the mean of FCF quality and ROIC strength to one decimal
func QualitySummary(r contracts.StockRecord) string {
	return decimal.NewFromInt(int64(r.FCFQuality + r.ROICStrength)).Div(decimal.NewFromInt(2)).StringFixed(1)
}

// sortValue returns the numeric value a view is ordered by
func sortValue(v StockView, key string) (decimal.Decimal, bool) {
	switch key {
	case "undervaluationScore":
		return decimal.NewFromInt(int64(v.UndervaluationScore)), true
	case "price":
		return decimal.NewFromFloat(v.Price), true
	case "qualitySummary":
		d, err := decimal.NewFromString(v.QualitySummary)
		return d, err == nil
	}
	if score, ok := v.FactorScores()[key]; ok {
		return decimal.NewFromInt(int64(score)), true
	}
	return decimal.Zero, false
}

// SortKeys lists the accepted sort keys
func SortKeys() []string {
	keys := []string{"undervaluationScore", "price", "qualitySummary"}
	factors := make([]string, 0, len(weights))
	for k := range weights {
		factors = append(factors, k)
	}
	sort.Strings(factors)
	return append(keys, factors...)
}

// Build derives views for records and orders them by key.
// price sorts ascending, every other key descending; ties go by ticker.
func Build(records []contracts.StockRecord, key string) ([]StockView, error) {
	if key == "" {
		key = DefaultSortKey
	}

	views := make([]StockView, len(records))
	for i, r := range records {
		views[i] = NewStockView(r)
	}

	if len(views) > 0 {
		if _, ok := sortValue(views[0], key); !ok {
			return nil, fmt.Errorf("unknown sort key %q", key)
		}
	} else if !validKey(key) {
		return nil, fmt.Errorf("unknown sort key %q", key)
	}

	sort.SliceStable(views, func(i, j int) bool {
		a, _ := sortValue(views[i], key)
		b, _ := sortValue(views[j], key)
		if a.Equal(b) {
			return views[i].Ticker < views[j].Ticker
		}
		if key == "price" {
			return a.LessThan(b)
		}
		return a.GreaterThan(b)
	})

	return views, nil
}

func validKey(key string) bool {
	for _, k := range SortKeys() {
		if k == key {
			return true
		}
	}
	return false
}
