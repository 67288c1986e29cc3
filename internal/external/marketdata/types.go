package marketdata

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// realTimeQuote is the /real-time/{symbol} response
type realTimeQuote struct {
	Code      string    `json:"code"`
	Timestamp flexFloat `json:"timestamp"`
	Close     flexFloat `json:"close"`
}

// fundamentals is the subset of /fundamentals/{symbol} the fetch report uses
type fundamentals struct {
	General struct {
		Name         string `json:"Name"`
		CurrencyCode string `json:"CurrencyCode"`
	} `json:"General"`
	Highlights struct {
		RevenueTTM flexFloat `json:"RevenueTTM"`
	} `json:"Highlights"`
	Financials struct {
		BalanceSheet statement `json:"Balance_Sheet"`
		CashFlow     statement `json:"Cash_Flow"`
	} `json:"Financials"`
}

// statement holds periodic filings keyed by report date (YYYY-MM-DD)
type statement struct {
	Quarterly map[string]statementEntry `json:"quarterly"`
}

type statementEntry struct {
	Cash                   flexFloat `json:"cash"`
	ShortLongTermDebtTotal flexFloat `json:"shortLongTermDebtTotal"`
	FreeCashFlow           flexFloat `json:"freeCashFlow"`
}

// flexFloat accepts numbers, numeric strings, "NA" and null.
// The API mixes all four for the same field.
type flexFloat struct {
	Value *float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		f.Value = nil
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" || strings.EqualFold(s, "NA") || strings.EqualFold(s, "N/A") {
			f.Value = nil
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// non-numeric strings are treated as missing
			f.Value = nil
			return nil
		}
		f.Value = &v
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// latest returns the most recent non-missing value of pick
func latest(entries map[string]statementEntry, pick func(statementEntry) flexFloat) *float64 {
	dates := make([]string, 0, len(entries))
	for d := range entries {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	for _, d := range dates {
		if v := pick(entries[d]).Value; v != nil {
			return v
		}
	}
	return nil
}
