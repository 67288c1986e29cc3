package commands

import (
	"fmt"

	"github.com/wonny/stocktracker/internal/artifact"
	"github.com/wonny/stocktracker/internal/brain"
	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/external/llm"
	"github.com/wonny/stocktracker/internal/external/marketdata"
	"github.com/wonny/stocktracker/internal/external/scraper"
	"github.com/wonny/stocktracker/internal/s0_fetch"
	"github.com/wonny/stocktracker/internal/s1_analysis"
	"github.com/wonny/stocktracker/internal/s2_format"
	"github.com/wonny/stocktracker/pkg/config"
	"github.com/wonny/stocktracker/pkg/httputil"
	"github.com/wonny/stocktracker/pkg/logger"
)

// scraperUserAgent is sent to quote pages, which reject the default Go agent
const scraperUserAgent = "Mozilla/5.0 (compatible; stock-tracker/1.0)"

// app bundles everything a command needs to run the pipeline
type app struct {
	cfg          *config.Config
	log          *logger.Logger
	settings     brain.Settings
	store        *artifact.Store
	orchestrator *brain.Orchestrator
}

// loadConfig reads the environment (or --config) for commands that run the pipeline
func loadConfig() (*config.Config, error) {
	return applyFlags(config.LoadFrom(configFile))
}

// loadArtifactConfig reads the environment for commands that only read the artifact
func loadArtifactConfig() (*config.Config, error) {
	return applyFlags(config.LoadWithoutBackends(configFile))
}

func applyFlags(cfg *config.Config, err error) (*config.Config, error) {
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newApp wires backends, stages and the orchestrator from cfg
func newApp(cfg *config.Config) (*app, error) {
	log := logger.New(cfg)

	tickers, err := contracts.NewTickerSet(cfg.Pipeline.Tickers)
	if err != nil {
		return nil, &config.ConfigurationError{Field: "TICKERS", Reason: err.Error()}
	}

	dataClient, err := newDataClient(cfg, log)
	if err != nil {
		return nil, err
	}
	reasoning := llm.NewClient(cfg.LLM, log)
	store := artifact.NewStore(cfg.Pipeline.OutputPath)

	fetcher := s0_fetch.NewFetcher(dataClient, s0_fetch.Config{
		Workers:     cfg.Data.Workers,
		CallTimeout: cfg.Data.Timeout,
	}, log)
	analyzer := s1_analysis.NewAnalyzer(reasoning, cfg.LLM.Timeout, log)
	formatter := s2_format.NewFormatter(reasoning, store, cfg.LLM.Timeout, cfg.Pipeline.CategoryOverrides, log)

	settings := brain.Settings{
		Tickers:    tickers,
		LLM:        cfg.LLM,
		OutputPath: cfg.Pipeline.OutputPath,
	}
	orchestrator, err := brain.NewOrchestrator(settings, fetcher, analyzer, formatter, log)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:          cfg,
		log:          log,
		settings:     settings,
		store:        store,
		orchestrator: orchestrator,
	}, nil
}

// newDataClient picks the data-retrieval backend named by DATA_PROVIDER
func newDataClient(cfg *config.Config, log *logger.Logger) (contracts.DataRetrievalClient, error) {
	httpClient := httputil.NewWithTimeout(log, cfg.Data.Timeout).WithRateLimit(cfg.Data.RateLimit)

	switch cfg.Data.Provider {
	case config.ProviderMarketData:
		return marketdata.NewClient(httpClient, cfg.Data.BaseURL, cfg.Data.APIKey, cfg.Data.Exchange, log), nil
	case config.ProviderScrape:
		httpClient = httpClient.WithHeader("User-Agent", scraperUserAgent)
		return scraper.NewClient(httpClient, cfg.Data.BaseURL, log), nil
	default:
		return nil, &config.ConfigurationError{Field: "DATA_PROVIDER", Reason: fmt.Sprintf("unknown provider %q", cfg.Data.Provider)}
	}
}
