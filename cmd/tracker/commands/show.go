package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/stocktracker/internal/artifact"
	"github.com/wonny/stocktracker/internal/report"
)

// showCmd prints the current artifact the way the dashboard ranks it
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "현재 리포트 출력",
	Long: `마지막으로 생성된 output/stocks.json을 읽어 정렬된 표로 출력합니다.

Sort keys: undervaluationScore (기본), price, 팩터 점수 이름

Example:
  go run ./cmd/tracker show
  go run ./cmd/tracker show --sort valueRank`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

var showSort string

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVar(&showSort, "sort", report.DefaultSortKey, "정렬 키 ("+strings.Join(report.SortKeys(), ", ")+")")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadArtifactConfig()
	if err != nil {
		return err
	}

	store := artifact.NewStore(cfg.Pipeline.OutputPath)
	records, err := store.Read()
	if err != nil {
		return fmt.Errorf("read %s: %w", store.Path(), err)
	}

	views, err := report.Build(records, showSort)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Stock Report")
	printKeyValue(out, "Artifact", store.Path(), 8)
	if len(records) > 0 {
		printKeyValue(out, "Updated", records[0].LastUpdated, 8)
	}
	printKeyValue(out, "Sort", showSort, 8)
	fmt.Fprintln(out, separator)
	printStockTable(out, views)
	return nil
}
