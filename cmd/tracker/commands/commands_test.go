package commands

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocktracker/internal/artifact"
	"github.com/wonny/stocktracker/internal/brain"
	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/external/marketdata"
	"github.com/wonny/stocktracker/internal/external/scraper"
	"github.com/wonny/stocktracker/pkg/config"
	"github.com/wonny/stocktracker/pkg/logger"
)

func TestParseRunDate(t *testing.T) {
	now := time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "empty means today", raw: "", want: "2025-07-01"},
		{name: "explicit date", raw: "2025-06-30", want: "2025-06-30"},
		{name: "wrong layout", raw: "06/30/2025", wantErr: true},
		{name: "impossible date", raw: "2025-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRunDate(tt.raw, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format(contracts.DateLayout))
		})
	}
}

func TestNewDataClient(t *testing.T) {
	base := config.Config{
		Data: config.DataConfig{
			BaseURL:   "http://127.0.0.1:1",
			APIKey:    "key",
			Exchange:  "US",
			Timeout:   time.Second,
			RateLimit: 5,
		},
	}

	t.Run("marketdata", func(t *testing.T) {
		cfg := base
		cfg.Data.Provider = config.ProviderMarketData
		client, err := newDataClient(&cfg, logger.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &marketdata.Client{}, client)
	})

	t.Run("scrape", func(t *testing.T) {
		cfg := base
		cfg.Data.Provider = config.ProviderScrape
		client, err := newDataClient(&cfg, logger.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &scraper.Client{}, client)
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := base
		cfg.Data.Provider = "ftp"
		_, err := newDataClient(&cfg, logger.NewNop())
		var cfgErr *config.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "DATA_PROVIDER", cfgErr.Field)
	})
}

func duolRecord() contracts.StockRecord {
	return contracts.StockRecord{
		Category:             contracts.CategoryGrowth,
		Ticker:               "DUOL",
		Name:                 "Duolingo",
		Price:                300,
		DCF:                  contracts.DCF{Conservative: "250-280", Base: "300-340", Aggressive: "380-450"},
		FCFQuality:           5,
		ROICStrength:         4,
		RevenueDurability:    4,
		BalanceSheetStrength: 5,
		InsiderActivity:      3,
		ValueRank:            3,
		ExpectedReturn:       4,
		LastUpdated:          "2025-07-01",
	}
}

func TestPrintRunResult(t *testing.T) {
	result := &brain.RunResult{
		RunID:           "run_test",
		Success:         true,
		CompletedStages: []string{"S0:Fetch", "S1:Analysis", "S2:Format"},
		MissingTickers:  []string{"ZZZZ"},
		ArtifactPath:    "output/stocks.json",
		Duration:        1500 * time.Millisecond,
		Records:         []contracts.StockRecord{duolRecord()},
	}

	var buf bytes.Buffer
	printRunResult(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "Run run_test completed in 1.50s")
	assert.Contains(t, out, "S0:Fetch → S1:Analysis → S2:Format")
	assert.Contains(t, out, "No market data for: ZZZZ")
	assert.Contains(t, out, "DUOL")
	assert.Contains(t, out, "300-340")
}

func TestFormatOverrides(t *testing.T) {
	assert.Equal(t, "-", formatOverrides(nil))
	assert.Equal(t, "CMG:Growth, MA:Dividend", formatOverrides(map[string]string{"MA": "Dividend", "CMG": "Growth"}))
}

func TestShowReadsArtifactWithoutBackendSecrets(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENROUTER_MODEL", "")
	t.Setenv("DATA_API_KEY", "")

	path := filepath.Join(t.TempDir(), "stocks.json")
	t.Setenv("OUTPUT_PATH", path)

	data, err := artifact.Encode([]contracts.StockRecord{duolRecord()})
	require.NoError(t, err)
	require.NoError(t, artifact.NewStore(path).Write(data))

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, runShow(cmd, nil))
	assert.Contains(t, buf.String(), "DUOL")
	assert.Contains(t, buf.String(), "2025-07-01")

	_, err = loadConfig()
	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "the pipeline still needs backend settings")
}

func TestPrintStages(t *testing.T) {
	result := &brain.RunResult{Stages: []contracts.PipelineResult{
		{Stage: contracts.StageFetch, Success: true, InputCount: 2, OutputCount: 400, Duration: 12},
		{Stage: contracts.StageAnalysis, Success: false, InputCount: 400, Duration: 30},
	}}

	var buf bytes.Buffer
	printStages(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "[S0] ✓ Fetch prices and financial metrics (12ms, in=2 out=400) [1/3]")
	assert.Contains(t, out, "[S1] ✗ DCF ranges and factor scores (30ms, in=400 out=0) [2/3]")
}
