package contracts

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Categories
const (
	CategoryGrowth   = "Growth"
	CategoryDividend = "Dividend"
)

// DateLayout is the ISO calendar date used for lastUpdated
const DateLayout = "2006-01-02"

// StockRecord is one entry of the report artifact.
// Field order here is the serialized key order.
type StockRecord struct {
	Category             string  `json:"category" validate:"required,oneof=Growth Dividend"`
	Ticker               string  `json:"ticker" validate:"required"`
	Name                 string  `json:"name" validate:"required"`
	Price                float64 `json:"price" validate:"gte=0"`
	DCF                  DCF     `json:"dcf"`
	FCFQuality           int     `json:"fcfQuality" validate:"min=1,max=5"`
	ROICStrength         int     `json:"roicStrength" validate:"min=1,max=5"`
	RevenueDurability    int     `json:"revenueDurability" validate:"min=1,max=5"`
	BalanceSheetStrength int     `json:"balanceSheetStrength" validate:"min=1,max=5"`
	InsiderActivity      int     `json:"insiderActivity" validate:"min=1,max=5"`
	ValueRank            int     `json:"valueRank" validate:"min=1,max=5"`
	ExpectedReturn       int     `json:"expectedReturn" validate:"min=1,max=5"`
	LastUpdated          string  `json:"lastUpdated" validate:"required,datetime=2006-01-02"`
}

// DCF holds the three valuation scenarios as "<low>-<high>" strings
type DCF struct {
	Conservative string `json:"conservative" validate:"required"`
	Base         string `json:"base" validate:"required"`
	Aggressive   string `json:"aggressive" validate:"required"`
}

// DCFRange is a parsed scenario
type DCFRange struct {
	Low  decimal.Decimal
	High decimal.Decimal
}

// ParseDCFRange parses "<low>-<high>" with 0 <= low <= high
func ParseDCFRange(s string) (DCFRange, error) {
	lowStr, highStr, ok := strings.Cut(s, "-")
	if !ok {
		return DCFRange{}, fmt.Errorf("range %q is not of the form low-high", s)
	}

	low, err := decimal.NewFromString(lowStr)
	if err != nil {
		return DCFRange{}, fmt.Errorf("range %q: low bound: %w", s, err)
	}
	high, err := decimal.NewFromString(highStr)
	if err != nil {
		return DCFRange{}, fmt.Errorf("range %q: high bound: %w", s, err)
	}

	if low.IsNegative() || high.IsNegative() {
		return DCFRange{}, fmt.Errorf("range %q has a negative bound", s)
	}
	if low.GreaterThan(high) {
		return DCFRange{}, fmt.Errorf("range %q has low above high", s)
	}

	return DCFRange{Low: low, High: high}, nil
}

// String renders the range in artifact form
func (r DCFRange) String() string {
	return r.Low.String() + "-" + r.High.String()
}

// Scenarios returns the scenarios keyed by their JSON names, in artifact order
func (d DCF) Scenarios() [][2]string {
	return [][2]string{
		{"conservative", d.Conservative},
		{"base", d.Base},
		{"aggressive", d.Aggressive},
	}
}

// FactorScores returns the seven factor scores keyed by JSON name
func (r StockRecord) FactorScores() map[string]int {
	return map[string]int{
		"fcfQuality":           r.FCFQuality,
		"roicStrength":         r.ROICStrength,
		"revenueDurability":    r.RevenueDurability,
		"balanceSheetStrength": r.BalanceSheetStrength,
		"insiderActivity":      r.InsiderActivity,
		"valueRank":            r.ValueRank,
		"expectedReturn":       r.ExpectedReturn,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Problems lists every constraint the record violates; empty means valid
func (r StockRecord) Problems() []string {
	var problems []string

	label := r.Ticker
	if label == "" {
		label = "<no ticker>"
	}

	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []string{fmt.Sprintf("%s: %v", label, err)}
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s: %s fails %s", label, fieldPath(fe), describeTag(fe)))
		}
	}

	for _, sc := range r.DCF.Scenarios() {
		if sc[1] == "" {
			continue // already reported as required
		}
		if _, err := ParseDCFRange(sc[1]); err != nil {
			problems = append(problems, fmt.Sprintf("%s: dcf.%s: %v", label, sc[0], err))
		}
	}

	return problems
}

// fieldPath turns "StockRecord.dcf.base" into "dcf.base"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describeTag(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fmt.Sprintf("%s (got %v)", fe.Tag(), fe.Value())
	}
	return fmt.Sprintf("%s=%s (got %v)", fe.Tag(), fe.Param(), fe.Value())
}
