package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wonny/stocktracker/internal/brain"
	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/report"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleSeparator = "═══════════════════════════════════════════════════════════"
	separator       = "───────────────────────────────────────────────────────────"
)

// printHeader prints a boxed title
func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleSeparator)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, separator)
}

// printKeyValue prints an aligned key-value pair
func printKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// printSuccess prints a success message
func printSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// printWarning prints a warning message
func printWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// printTableHeader prints column titles and an underline
func printTableHeader(w io.Writer, columns []string, widths []int) {
	printTableRow(w, columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// printTableRow prints a table row
func printTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

// printRunHeader prints what is about to run
func printRunHeader(w io.Writer, settings brain.Settings, date time.Time) {
	printHeader(w, "Stock Tracker Pipeline")
	printKeyValue(w, "Run Date", date.Format(contracts.DateLayout), 9)
	printKeyValue(w, "Tickers", settings.Tickers.Join(", "), 9)
	printKeyValue(w, "Model", settings.LLM.Model, 9)
	printKeyValue(w, "Output", settings.OutputPath, 9)
	fmt.Fprintln(w, separator)
}

// printStages prints one progress line per stage that ran
func printStages(w io.Writer, result *brain.RunResult) {
	for i, stage := range result.Stages {
		mark := "✓"
		if !stage.Success {
			mark = "✗"
		}
		fmt.Fprintf(w, "[%s] %s %s (%dms, in=%d out=%d) [%d/%d]\n",
			stage.Stage.ShortName(), mark, stage.Stage.Description(), stage.Duration,
			stage.InputCount, stage.OutputCount, i+1, len(contracts.AllStages()))
	}
}

// printRunResult prints the run summary and the record table
func printRunResult(w io.Writer, result *brain.RunResult) {
	fmt.Fprintln(w)
	printSuccess(w, fmt.Sprintf("Run %s completed in %.2fs", result.RunID, result.Duration.Seconds()))
	printKeyValue(w, "Stages", strings.Join(result.CompletedStages, " → "), 8)
	printKeyValue(w, "Records", fmt.Sprintf("%d", len(result.Records)), 8)
	printKeyValue(w, "Artifact", result.ArtifactPath, 8)
	if len(result.MissingTickers) > 0 {
		printWarning(w, fmt.Sprintf("No market data for: %s", strings.Join(result.MissingTickers, ", ")))
	}

	if len(result.Records) == 0 {
		return
	}

	views := make([]report.StockView, 0, len(result.Records))
	for _, rec := range result.Records {
		views = append(views, report.NewStockView(rec))
	}
	fmt.Fprintln(w)
	printStockTable(w, views)
}

// printStockTable prints one row per stock with its derived dashboard values
func printStockTable(w io.Writer, views []report.StockView) {
	widths := []int{6, 8, 10, 5, 11, 7, 12}
	printTableHeader(w, []string{"Ticker", "Category", "Price", "Score", "Risk", "Quality", "Base DCF"}, widths)
	for _, v := range views {
		printTableRow(w, []string{
			v.Ticker,
			v.Category,
			fmt.Sprintf("%.2f", v.Price),
			fmt.Sprintf("%d", v.UndervaluationScore),
			v.RiskLevel,
			v.QualitySummary,
			v.DCF.Base,
		}, widths)
	}
}
