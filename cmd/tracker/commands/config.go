package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/stocktracker/pkg/config"
)

// configCmd prints the validated configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "검증된 설정 출력 (API 키 마스킹)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		printConfig(cmd, cfg.Masked())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func printConfig(cmd *cobra.Command, cfg config.Config) {
	out := cmd.OutOrStdout()
	const width = 18

	printHeader(out, "Configuration ("+cfg.Env+")")
	printKeyValue(out, "Model", cfg.LLM.Model, width)
	printKeyValue(out, "LLM Base URL", cfg.LLM.BaseURL, width)
	printKeyValue(out, "LLM API Key", cfg.LLM.APIKey, width)
	printKeyValue(out, "Temperature", fmt.Sprintf("%.2f", cfg.LLM.Temperature), width)
	printKeyValue(out, "LLM Timeout", cfg.LLM.Timeout.String(), width)
	fmt.Fprintln(out, separator)
	printKeyValue(out, "Data Provider", cfg.Data.Provider, width)
	printKeyValue(out, "Data Base URL", cfg.Data.BaseURL, width)
	printKeyValue(out, "Data API Key", cfg.Data.APIKey, width)
	printKeyValue(out, "Data Timeout", cfg.Data.Timeout.String(), width)
	printKeyValue(out, "Rate Limit", fmt.Sprintf("%d/s", cfg.Data.RateLimit), width)
	printKeyValue(out, "Fetch Workers", fmt.Sprintf("%d", cfg.Data.Workers), width)
	fmt.Fprintln(out, separator)
	printKeyValue(out, "Tickers", strings.Join(cfg.Pipeline.Tickers, ", "), width)
	printKeyValue(out, "Output", cfg.Pipeline.OutputPath, width)
	printKeyValue(out, "Category Overrides", formatOverrides(cfg.Pipeline.CategoryOverrides), width)
	printKeyValue(out, "Port", cfg.Port, width)
	printKeyValue(out, "Schedule", cfg.ScheduleCron, width)
	printKeyValue(out, "Log", cfg.LogLevel+" / "+cfg.LogFormat, width)
}

func formatOverrides(overrides map[string]string) string {
	if len(overrides) == 0 {
		return "-"
	}
	pairs := make([]string, 0, len(overrides))
	for ticker, category := range overrides {
		pairs = append(pairs, ticker+":"+category)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ", ")
}
