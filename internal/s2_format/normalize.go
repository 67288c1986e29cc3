package s2_format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/stocktracker/internal/artifact"
	"github.com/wonny/stocktracker/internal/contracts"
)

var scoreFields = []string{
	"fcfQuality", "roicStrength", "revenueDurability", "balanceSheetStrength",
	"insiderActivity", "valueRank", "expectedReturn",
}

var dashReplacer = strings.NewReplacer(
	"–", "-", // en dash
	"—", "-", // em dash
	"−", "-", // minus sign
	"$", "",
	",", "",
	" ", "",
	"\t", "",
)

// Coerce turns a backend response into validated records in TickerSet order.
// Only lossless fixes are applied (fences, whitespace, currency symbols,
// "3.0" for 3, case of tickers and categories); anything else that does not
// match the artifact schema is a *contracts.SchemaValidationError.
func Coerce(text string, tickers contracts.TickerSet, runDate time.Time, overrides map[string]string) ([]contracts.StockRecord, error) {
	raw, err := ExtractJSONArray(text)
	if err != nil {
		return nil, &contracts.SchemaValidationError{Problems: []string{err.Error()}}
	}

	var items []interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&items); err != nil {
		return nil, &contracts.SchemaValidationError{Problems: []string{fmt.Sprintf("decode array: %v", err)}}
	}

	date := runDate.Format(contracts.DateLayout)
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			normalize(obj, date, overrides)
		}
	}

	cleaned, err := json.Marshal(items)
	if err != nil {
		return nil, &contracts.SchemaValidationError{Problems: []string{fmt.Sprintf("re-encode records: %v", err)}}
	}

	records, err := artifact.Parse(cleaned)
	if err != nil {
		return nil, err
	}

	return orderByTickers(records, tickers)
}

// normalize applies the lossless fixes to one decoded object in place
func normalize(obj map[string]interface{}, date string, overrides map[string]string) {
	if s, ok := obj["ticker"].(string); ok {
		obj["ticker"] = strings.ToUpper(strings.TrimSpace(s))
	}
	if s, ok := obj["name"].(string); ok {
		obj["name"] = strings.TrimSpace(s)
	}

	if s, ok := obj["category"].(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "growth":
			obj["category"] = contracts.CategoryGrowth
		case "dividend":
			obj["category"] = contracts.CategoryDividend
		}
	}
	if ticker, ok := obj["ticker"].(string); ok {
		if cat, ok := overrides[ticker]; ok {
			obj["category"] = cat
		}
	}

	if s, ok := obj["price"].(string); ok {
		cleaned := strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(s))
		if isNumberLiteral(cleaned) {
			obj["price"] = json.Number(cleaned)
		}
	}

	if dcf, ok := obj["dcf"].(map[string]interface{}); ok {
		for k, v := range dcf {
			if s, ok := v.(string); ok {
				dcf[k] = dashReplacer.Replace(s)
			}
		}
	}

	for _, key := range scoreFields {
		if v, ok := obj[key]; ok {
			obj[key] = wholeNumber(v)
		}
	}

	obj["lastUpdated"] = date
}

// wholeNumber rewrites 4.0 or "4" as 4; other values pass through untouched
func wholeNumber(v interface{}) interface{} {
	var s string
	switch n := v.(type) {
	case json.Number:
		s = n.String()
	case string:
		s = strings.TrimSpace(n)
	default:
		return v
	}

	if !isNumberLiteral(s) {
		return v
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return v
	}
	return json.Number(strconv.FormatInt(int64(f), 10))
}

// isNumberLiteral reports whether s is a finite JSON number ("+300", "NaN", "Inf" and "0x1p4" are not)
func isNumberLiteral(s string) bool {
	if !json.Valid([]byte(s)) {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// orderByTickers checks that records cover the ticker set exactly (as a
// multiset) and returns them in TickerSet order
func orderByTickers(records []contracts.StockRecord, tickers contracts.TickerSet) ([]contracts.StockRecord, error) {
	byTicker := make(map[string][]contracts.StockRecord)
	for _, r := range records {
		byTicker[r.Ticker] = append(byTicker[r.Ticker], r)
	}

	var problems []string
	want := tickers.Counts()
	for _, ticker := range uniqueInOrder(tickers) {
		got := len(byTicker[ticker])
		switch {
		case got == 0:
			problems = append(problems, fmt.Sprintf("%s: no record", ticker))
		case got != want[ticker]:
			problems = append(problems, fmt.Sprintf("%s: %d records, expected %d", ticker, got, want[ticker]))
		}
	}
	for _, r := range records {
		if want[r.Ticker] == 0 {
			problems = append(problems, fmt.Sprintf("%s: not in the ticker set", r.Ticker))
		}
	}
	if len(problems) > 0 {
		return nil, &contracts.SchemaValidationError{Problems: problems}
	}

	ordered := make([]contracts.StockRecord, 0, len(tickers))
	next := make(map[string]int)
	for _, ticker := range tickers {
		ordered = append(ordered, byTicker[ticker][next[ticker]])
		next[ticker]++
	}
	return ordered, nil
}

func uniqueInOrder(tickers contracts.TickerSet) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
