package contracts

import (
	"context"
	"time"
)

// DataRetrievalClient looks up price and coarse financials for one ticker.
// A ticker the service does not know is a NotFound result, not an error;
// errors are reserved for transport and protocol failures.
// ⭐ SSOT: 데이터 백엔드 인터페이스
type DataRetrievalClient interface {
	Lookup(ctx context.Context, ticker string) (FetchResult, error)
}

// ReasoningClient is an opaque text-completion backend
// ⭐ SSOT: 추론 백엔드 인터페이스
type ReasoningClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Fetcher produces the fetch report (S0)
type Fetcher interface {
	Fetch(ctx context.Context, tickers TickerSet) (*FetchReport, error)
}

// Analyzer turns the fetch report into the analysis report (S1)
type Analyzer interface {
	Analyze(ctx context.Context, tickers TickerSet, upstream StageReport) (StageReport, error)
}

// Formatter turns the analysis report into the written artifact (S2)
type Formatter interface {
	Format(ctx context.Context, tickers TickerSet, upstream StageReport, runDate time.Time) (*Artifact, error)
}

// Prompt is a system instruction plus the task text (which embeds upstream context)
type Prompt struct {
	System string
	User   string
}

// Artifact is the validated, written report
type Artifact struct {
	Path    string        `json:"path"`
	Records []StockRecord `json:"records"`
	JSON    []byte        `json:"-"`
}
