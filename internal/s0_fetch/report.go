package s0_fetch

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/stocktracker/internal/contracts"
)

// Unavailable marks a ticker the data service had nothing for
const Unavailable = "DATA UNAVAILABLE"

// renderReport writes the plain-text fetch report, one block per ticker in TickerSet order.
// Values pass through unchanged; missing metrics read "n/a".
func renderReport(tickers contracts.TickerSet, results []contracts.FetchResult, fetchedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Market data report (%d tickers, fetched %s)\n", len(tickers), fetchedAt.UTC().Format(time.RFC3339))

	for i, ticker := range tickers {
		res := results[i]
		b.WriteString("\n")
		fmt.Fprintf(&b, "%d. %s\n", i+1, ticker)

		if !res.Found {
			fmt.Fprintf(&b, "   %s: the data service returned nothing for this ticker\n", Unavailable)
			continue
		}

		m := res.Metrics
		currency := m.Currency
		if currency == "" {
			currency = "USD"
		}
		fmt.Fprintf(&b, "   Name: %s\n", m.Name)
		fmt.Fprintf(&b, "   Price: %s %s\n", formatNumber(&m.Price), currency)
		fmt.Fprintf(&b, "   Revenue (TTM): %s\n", formatNumber(m.Revenue))
		fmt.Fprintf(&b, "   Free cash flow: %s\n", formatNumber(m.FreeCashFlow))
		fmt.Fprintf(&b, "   Debt: %s\n", formatNumber(m.Debt))
		fmt.Fprintf(&b, "   Cash: %s\n", formatNumber(m.Cash))
		if !m.AsOf.IsZero() {
			fmt.Fprintf(&b, "   As of: %s\n", m.AsOf.UTC().Format(time.RFC3339))
		}
	}

	return b.String()
}

func formatNumber(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
