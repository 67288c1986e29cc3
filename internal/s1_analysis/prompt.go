package s1_analysis

import (
	"strings"
	"text/template"

	"github.com/wonny/stocktracker/internal/contracts"
)

const systemPrompt = `You are a seasoned financial analyst specialising in discounted cash flow (DCF) valuation.
You judge companies on free cash flow quality, return on invested capital, revenue durability,
balance sheet strength and insider activity. You are objective and data-driven and you always
explain your reasoning.`

// Factors lists the seven factor scores in the order they are asked for
var Factors = []struct {
	Key         string
	Description string
}{
	{"fcfQuality", "free cash flow consistency and growth"},
	{"roicStrength", "return on invested capital versus cost of capital"},
	{"revenueDurability", "recurring revenue and competitive moat"},
	{"balanceSheetStrength", "debt levels and financial flexibility"},
	{"insiderActivity", "recent insider buying and selling"},
	{"valueRank", "overall cheapness versus intrinsic value"},
	{"expectedReturn", "potential upside from the current price"},
}

var analysisTemplate = template.Must(template.New("analysis").Parse(
	`Using the market data report below, analyse each of these tickers: {{.Tickers}}.

For every ticker:

1. Estimate DCF valuation ranges per share, each as "low-high":
   - conservative (pessimistic growth and margin assumptions)
   - base (most likely assumptions)
   - aggressive (optimistic assumptions)

2. Assign integer factor scores from 1 to 5:
{{- range .Factors}}
   - {{.Key}}: {{.Description}}
{{- end}}

Scoring rubric:
   1 = very poor / very expensive / very low expected return
   3 = average / fairly valued / normal expected return
   5 = excellent / very cheap / very high expected return

3. State whether the company is better described as a Growth or a Dividend stock.

Give short reasoning for each range and score. Cover every ticker in the order listed.
If the report marks a ticker as DATA UNAVAILABLE, say so and use a price of 0 with your best
judgement for the remaining values.

--- MARKET DATA REPORT ---
{{.Context}}
--- END REPORT ---
`))

// BuildPrompt renders the analysis prompt around the upstream report
func BuildPrompt(tickers contracts.TickerSet, upstream contracts.StageReport) (contracts.Prompt, error) {
	var b strings.Builder
	err := analysisTemplate.Execute(&b, map[string]interface{}{
		"Tickers": tickers.Join(", "),
		"Factors": Factors,
		"Context": upstream.Text,
	})
	if err != nil {
		return contracts.Prompt{}, err
	}
	return contracts.Prompt{System: systemPrompt, User: b.String()}, nil
}
