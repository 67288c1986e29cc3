package s0_fetch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/pkg/logger"
)

// Fetcher looks up every ticker and assembles the fetch report
// ⭐ SSOT: S0 데이터 수집은 이 패키지에서만
type Fetcher struct {
	client  contracts.DataRetrievalClient
	config  Config
	logger  *logger.Logger
	nowFunc func() time.Time
}

// Config holds fetcher configuration
type Config struct {
	Workers     int           // Number of concurrent lookups
	CallTimeout time.Duration // Deadline for a single lookup
}

// NewFetcher creates a new Fetcher instance
func NewFetcher(client contracts.DataRetrievalClient, cfg Config, log *logger.Logger) *Fetcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Fetcher{
		client:  client,
		config:  cfg,
		logger:  log.WithField("module", "s0_fetch"),
		nowFunc: time.Now,
	}
}

// Fetch looks up every ticker with a bounded pool of workers.
// Results are slotted by position, so the report follows TickerSet order
// whatever order the lookups finish in. The first lookup error cancels the rest.
func (f *Fetcher) Fetch(ctx context.Context, tickers contracts.TickerSet) (*contracts.FetchReport, error) {
	f.logger.WithFields(map[string]interface{}{
		"ticker_count": len(tickers),
		"workers":      f.config.Workers,
	}).Info("Starting fetch")

	results := make([]contracts.FetchResult, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.config.Workers)

	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			res, err := f.lookup(gctx, ticker)
			if err != nil {
				return fmt.Errorf("lookup %s: %w", ticker, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var missing []string
	for i, res := range results {
		if !res.Found {
			missing = append(missing, tickers[i])
		}
	}

	report := &contracts.FetchReport{
		StageReport: contracts.StageReport{
			Stage: contracts.StageFetch,
			Text:  renderReport(tickers, results, f.nowFunc()),
		},
		Results:        results,
		MissingTickers: missing,
	}

	if len(missing) > 0 {
		f.logger.WithField("missing", missing).Warn("Some tickers have no data")
	}
	f.logger.WithFields(map[string]interface{}{
		"found":   len(tickers) - len(missing),
		"missing": len(missing),
		"chars":   len(report.Text),
	}).Info("Fetch completed")

	return report, nil
}

// lookup runs one lookup under its own deadline
func (f *Fetcher) lookup(ctx context.Context, ticker string) (contracts.FetchResult, error) {
	if f.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.CallTimeout)
		defer cancel()
	}

	res, err := f.client.Lookup(ctx, ticker)
	if err != nil {
		return contracts.FetchResult{}, err
	}
	if res.Found && res.Metrics.Ticker == "" {
		res.Metrics.Ticker = ticker
	}
	return res, nil
}
