package s2_format

import (
	"strings"
	"text/template"
	"time"

	"github.com/wonny/stocktracker/internal/contracts"
)

const systemPrompt = `You convert financial analysis into strict JSON. You output only JSON: no markdown,
no commentary, no trailing commas.`

var formatTemplate = template.Must(template.New("format").Parse(
	`Format the analysis below into a JSON array with exactly one object per ticker, in this order:
{{.Tickers}}.

Each object must have exactly these fields:

  {
    "category": "Growth" or "Dividend",
    "ticker": "TICKER",
    "name": "Company Name",
    "price": 0.00,
    "dcf": {
      "conservative": "low-high",
      "base": "low-high",
      "aggressive": "low-high"
    },
    "fcfQuality": 1-5,
    "roicStrength": 1-5,
    "revenueDurability": 1-5,
    "balanceSheetStrength": 1-5,
    "insiderActivity": 1-5,
    "valueRank": 1-5,
    "expectedReturn": 1-5,
    "lastUpdated": "{{.Date}}"
  }

Requirements:
- All factor scores are integers between 1 and 5
- DCF ranges are strings of the form "low-high" with low <= high (e.g. "450-500")
- price is a number, not a string
- category is either "Dividend" or "Growth"
- lastUpdated is "{{.Date}}"
- Output ONLY the JSON array

--- ANALYSIS ---
{{.Context}}
--- END ANALYSIS ---
`))

// BuildPrompt renders the format prompt for the run date
func BuildPrompt(tickers contracts.TickerSet, upstream contracts.StageReport, runDate time.Time) (contracts.Prompt, error) {
	var b strings.Builder
	err := formatTemplate.Execute(&b, map[string]string{
		"Tickers": tickers.Join(", "),
		"Date":    runDate.Format(contracts.DateLayout),
		"Context": upstream.Text,
	})
	if err != nil {
		return contracts.Prompt{}, err
	}
	return contracts.Prompt{System: systemPrompt, User: b.String()}, nil
}
