package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stocktracker/internal/brain"
	"github.com/wonny/stocktracker/internal/contracts"
)

var (
	// Global flags
	configFile string
	verbose    bool

	// Run flags
	runDate string
)

// rootCmd runs the full pipeline when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Stock Tracker - DCF 밸류에이션 리포트 생성",
	Long: `Stock Tracker CLI

3단계 파이프라인으로 종목 데이터를 수집하고 분석하여 output/stocks.json을 생성합니다.

S0 → S1 → S2

- S0: Fetch     (데이터 서비스에서 종목별 지표 수집)
- S1: Analysis  (DCF 범위 및 7개 팩터 점수)
- S2: Format    (스키마 검증 후 JSON 아티팩트 저장)

Usage:
  go run ./cmd/tracker [command]

Examples:
  go run ./cmd/tracker
  go run ./cmd/tracker --date 2025-06-30
  go run ./cmd/tracker serve --with-scheduler
  go run ./cmd/tracker config`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPipeline,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// A failure is printed as a single line on stderr.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return err
	}
	return nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default: .env search path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.Flags().StringVar(&runDate, "date", "", "run date stamped into lastUpdated (YYYY-MM-DD, default: today)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	date, err := parseRunDate(runDate, time.Now())
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printRunHeader(out, a.settings, date)

	result, err := a.orchestrator.Run(cmd.Context(), brain.RunConfig{
		Date:  date,
		RunID: brain.GenerateRunID(),
	})
	if result != nil {
		printStages(out, result)
	}
	if err != nil {
		return err
	}

	printRunResult(out, result)
	return nil
}

// parseRunDate parses the --date flag; empty means today
func parseRunDate(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return now, nil
	}
	parsed, err := time.Parse(contracts.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", raw)
	}
	return parsed, nil
}
