package s1_analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/pkg/logger"
)

// ErrEmptyAnalysis is returned when the backend answers with blank text
var ErrEmptyAnalysis = errors.New("analysis report is empty")

// Analyzer asks the reasoning backend for DCF ranges and factor scores.
// The answer is passed on as-is: nothing here checks the numbers.
// ⭐ SSOT: S1 분석 요청은 이 패키지에서만
type Analyzer struct {
	client      contracts.ReasoningClient
	callTimeout time.Duration
	logger      *logger.Logger
}

// NewAnalyzer creates a new Analyzer
func NewAnalyzer(client contracts.ReasoningClient, callTimeout time.Duration, log *logger.Logger) *Analyzer {
	return &Analyzer{
		client:      client,
		callTimeout: callTimeout,
		logger:      log.WithField("module", "s1_analysis"),
	}
}

// Analyze issues one batched call covering every ticker
func (a *Analyzer) Analyze(ctx context.Context, tickers contracts.TickerSet, upstream contracts.StageReport) (contracts.StageReport, error) {
	prompt, err := BuildPrompt(tickers, upstream)
	if err != nil {
		return contracts.StageReport{}, fmt.Errorf("build prompt: %w", err)
	}

	a.logger.WithFields(map[string]interface{}{
		"ticker_count": len(tickers),
		"context_len":  len(upstream.Text),
	}).Info("Requesting analysis")

	if a.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.callTimeout)
		defer cancel()
	}

	text, err := a.client.Complete(ctx, prompt)
	if err != nil {
		return contracts.StageReport{}, fmt.Errorf("reasoning call: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return contracts.StageReport{}, ErrEmptyAnalysis
	}

	a.logger.WithField("chars", len(text)).Info("Analysis completed")

	return contracts.StageReport{Stage: contracts.StageAnalysis, Text: text}, nil
}
