package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/pkg/config"
	"github.com/wonny/stocktracker/pkg/logger"
)

// Orchestrator coordinates the 3-stage pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	settings Settings

	// Stage components
	fetcher   contracts.Fetcher
	analyzer  contracts.Analyzer
	formatter contracts.Formatter

	logger *logger.Logger
}

// Settings is everything a run needs before any stage may start
type Settings struct {
	Tickers    contracts.TickerSet
	LLM        config.LLMConfig
	OutputPath string
}

// Validate checks the settings; the first problem found is returned as *config.ConfigurationError
func (s Settings) Validate() error {
	if err := s.LLM.Validate(); err != nil {
		return err
	}
	if len(s.Tickers) == 0 {
		return &config.ConfigurationError{Field: "TICKERS", Reason: "at least one ticker is required"}
	}
	if s.OutputPath == "" {
		return &config.ConfigurationError{Field: "OUTPUT_PATH", Reason: "is required"}
	}
	return nil
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	Date  time.Time // run date stamped into lastUpdated; today when zero
	RunID string
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           string
	Date            time.Time
	Success         bool
	Error           error
	CompletedStages []string
	Stages          []contracts.PipelineResult
	MissingTickers  []string
	Records         []contracts.StockRecord
	ArtifactPath    string
	Duration        time.Duration
}

// NewOrchestrator validates settings and creates an orchestrator.
// Invalid settings fail here, before any backend is contacted.
func NewOrchestrator(
	settings Settings,
	fetcher contracts.Fetcher,
	analyzer contracts.Analyzer,
	formatter contracts.Formatter,
	log *logger.Logger,
) (*Orchestrator, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &Orchestrator{
		settings:  settings,
		fetcher:   fetcher,
		analyzer:  analyzer,
		formatter: formatter,
		logger:    log.WithField("module", "brain"),
	}, nil
}

// Run executes the complete pipeline
// S0 → S1 → S2
// A stage failure stops the run and comes back as *contracts.StageExecutionError.
func (o *Orchestrator) Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	startTime := time.Now()

	if cfg.Date.IsZero() {
		cfg.Date = startTime
	}
	if cfg.RunID == "" {
		cfg.RunID = GenerateRunID()
	}

	result := &RunResult{
		RunID:           cfg.RunID,
		Date:            cfg.Date,
		Success:         false,
		CompletedStages: make([]string, 0, len(contracts.AllStages())),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":  cfg.RunID,
		"date":    cfg.Date.Format(contracts.DateLayout),
		"tickers": o.settings.Tickers.Join(","),
		"model":   o.settings.LLM.Model,
	}).Info("Starting pipeline run")

	fail := func(stage contracts.Stage, err error) (*RunResult, error) {
		result.Error = &contracts.StageExecutionError{Stage: stage, Err: err}
		result.Duration = time.Since(startTime)
		o.logger.WithError(err).WithFields(map[string]interface{}{
			"run_id": cfg.RunID,
			"stage":  stage,
		}).Error("Pipeline run failed")
		return result, result.Error
	}

	// S0: Fetch
	fetchReport, err := o.runS0(ctx, result)
	if err != nil {
		return fail(contracts.StageFetch, err)
	}
	result.MissingTickers = fetchReport.MissingTickers
	result.CompletedStages = append(result.CompletedStages, "S0:Fetch")

	// S1: Analysis
	analysis, err := o.runS1(ctx, result, fetchReport.StageReport)
	if err != nil {
		return fail(contracts.StageAnalysis, err)
	}
	result.CompletedStages = append(result.CompletedStages, "S1:Analysis")

	// S2: Format
	art, err := o.runS2(ctx, result, cfg, analysis)
	if err != nil {
		return fail(contracts.StageFormat, err)
	}
	result.Records = art.Records
	result.ArtifactPath = art.Path
	result.CompletedStages = append(result.CompletedStages, "S2:Format")

	// Mark success
	result.Success = true
	result.Duration = time.Since(startTime)

	o.logger.WithFields(map[string]interface{}{
		"run_id":   cfg.RunID,
		"duration": result.Duration.Seconds(),
		"stages":   len(result.CompletedStages),
		"records":  len(result.Records),
		"missing":  len(result.MissingTickers),
	}).Info("Pipeline run completed successfully")

	return result, nil
}

// runS0 executes S0: Fetch
func (o *Orchestrator) runS0(ctx context.Context, result *RunResult) (*contracts.FetchReport, error) {
	o.logger.Infof("Running %s: %s", contracts.StageFetch.ShortName(), contracts.StageFetch.Description())
	start := time.Now()

	if err := ctx.Err(); err != nil {
		result.record(contracts.StageFetch, len(o.settings.Tickers), 0, start, err)
		return nil, err
	}

	report, err := o.fetcher.Fetch(ctx, o.settings.Tickers)
	if err != nil {
		result.record(contracts.StageFetch, len(o.settings.Tickers), 0, start, err)
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.record(contracts.StageFetch, len(o.settings.Tickers), len(report.Text), start, nil)

	o.logger.WithFields(map[string]interface{}{
		"chars":   len(report.Text),
		"missing": report.MissingTickers,
	}).Info("S0 completed")

	return report, nil
}

// runS1 executes S1: Analysis
func (o *Orchestrator) runS1(ctx context.Context, result *RunResult, upstream contracts.StageReport) (contracts.StageReport, error) {
	o.logger.Infof("Running %s: %s", contracts.StageAnalysis.ShortName(), contracts.StageAnalysis.Description())
	start := time.Now()

	if err := ctx.Err(); err != nil {
		result.record(contracts.StageAnalysis, len(upstream.Text), 0, start, err)
		return contracts.StageReport{}, err
	}

	report, err := o.analyzer.Analyze(ctx, o.settings.Tickers, upstream)
	if err != nil {
		result.record(contracts.StageAnalysis, len(upstream.Text), 0, start, err)
		return contracts.StageReport{}, fmt.Errorf("analysis: %w", err)
	}
	result.record(contracts.StageAnalysis, len(upstream.Text), len(report.Text), start, nil)

	o.logger.WithField("chars", len(report.Text)).Info("S1 completed")

	return report, nil
}

// runS2 executes S2: Format
func (o *Orchestrator) runS2(ctx context.Context, result *RunResult, cfg RunConfig, upstream contracts.StageReport) (*contracts.Artifact, error) {
	o.logger.Infof("Running %s: %s", contracts.StageFormat.ShortName(), contracts.StageFormat.Description())
	start := time.Now()

	if err := ctx.Err(); err != nil {
		result.record(contracts.StageFormat, len(upstream.Text), 0, start, err)
		return nil, err
	}

	art, err := o.formatter.Format(ctx, o.settings.Tickers, upstream, cfg.Date)
	if err != nil {
		result.record(contracts.StageFormat, len(upstream.Text), 0, start, err)
		return nil, fmt.Errorf("format: %w", err)
	}
	result.record(contracts.StageFormat, len(upstream.Text), len(art.Records), start, nil)

	o.logger.WithFields(map[string]interface{}{
		"records": len(art.Records),
		"path":    art.Path,
	}).Info("S2 completed")

	return art, nil
}

// record appends the stage summary
func (r *RunResult) record(stage contracts.Stage, in, out int, start time.Time, err error) {
	pr := contracts.PipelineResult{
		Stage:       stage,
		Success:     err == nil,
		InputCount:  in,
		OutputCount: out,
		Duration:    time.Since(start).Milliseconds(),
	}
	if err != nil {
		pr.Error = err.Error()
	}
	r.Stages = append(r.Stages, pr)
}

// GenerateRunID generates a unique run ID
func GenerateRunID() string {
	return fmt.Sprintf("run_%s_%s", time.Now().Format("20060102_150405"), uuid.NewString()[:8])
}
