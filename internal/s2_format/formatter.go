package s2_format

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/stocktracker/internal/artifact"
	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/pkg/logger"
)

// Formatter asks the reasoning backend for the artifact JSON, validates it and writes it
// ⭐ SSOT: S2 아티팩트 생성은 이 패키지에서만
type Formatter struct {
	client      contracts.ReasoningClient
	store       *artifact.Store
	callTimeout time.Duration
	overrides   map[string]string
	logger      *logger.Logger
}

// NewFormatter creates a new Formatter.
// overrides maps tickers to a fixed category and may be nil.
func NewFormatter(client contracts.ReasoningClient, store *artifact.Store, callTimeout time.Duration, overrides map[string]string, log *logger.Logger) *Formatter {
	return &Formatter{
		client:      client,
		store:       store,
		callTimeout: callTimeout,
		overrides:   overrides,
		logger:      log.WithField("module", "s2_format"),
	}
}

// Format produces, validates and writes the artifact.
// The file is only touched once every record has passed validation.
func (f *Formatter) Format(ctx context.Context, tickers contracts.TickerSet, upstream contracts.StageReport, runDate time.Time) (*contracts.Artifact, error) {
	prompt, err := BuildPrompt(tickers, upstream, runDate)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	f.logger.WithFields(map[string]interface{}{
		"ticker_count": len(tickers),
		"context_len":  len(upstream.Text),
		"run_date":     runDate.Format(contracts.DateLayout),
	}).Info("Requesting formatted report")

	text, err := f.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("reasoning call: %w", err)
	}

	records, err := Coerce(text, tickers, runDate, f.overrides)
	if err != nil {
		f.logger.WithError(err).Warn("Formatted report rejected")
		return nil, err
	}

	data, err := artifact.Encode(records)
	if err != nil {
		return nil, err
	}
	if err := f.store.Write(data); err != nil {
		return nil, err
	}

	f.logger.WithFields(map[string]interface{}{
		"records": len(records),
		"path":    f.store.Path(),
		"bytes":   len(data),
	}).Info("Artifact written")

	return &contracts.Artifact{Path: f.store.Path(), Records: records, JSON: data}, nil
}

func (f *Formatter) complete(ctx context.Context, prompt contracts.Prompt) (string, error) {
	if f.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.callTimeout)
		defer cancel()
	}
	return f.client.Complete(ctx, prompt)
}
