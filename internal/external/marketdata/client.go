package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/pkg/httputil"
	"github.com/wonny/stocktracker/pkg/logger"
)

// Client handles communication with an EODHD-style market data API
// ⭐ SSOT: 시세/재무 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
	exchange   string
}

// NewClient creates a new market data client.
// Symbols are sent as TICKER.EXCHANGE (e.g. "DUOL.US").
func NewClient(httpClient *httputil.Client, baseURL, apiKey, exchange string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		exchange:   exchange,
	}
}

// errNotFound marks a symbol the service does not know
var errNotFound = errors.New("symbol not found")

// Lookup returns price and coarse financials for ticker.
// A 404 or a quote without a price is NotFound; anything else that goes wrong is an error.
func (c *Client) Lookup(ctx context.Context, ticker string) (contracts.FetchResult, error) {
	symbol := c.symbol(ticker)

	var quote realTimeQuote
	if err := c.get(ctx, "/real-time/"+url.PathEscape(symbol), &quote); err != nil {
		if errors.Is(err, errNotFound) {
			return contracts.NotFound(), nil
		}
		return contracts.FetchResult{}, fmt.Errorf("real-time quote %s: %w", symbol, err)
	}
	if quote.Close.Value == nil {
		c.logger.WithField("symbol", symbol).Debug("Quote has no price")
		return contracts.NotFound(), nil
	}

	var fund fundamentals
	if err := c.get(ctx, "/fundamentals/"+url.PathEscape(symbol), &fund); err != nil {
		if !errors.Is(err, errNotFound) {
			return contracts.FetchResult{}, fmt.Errorf("fundamentals %s: %w", symbol, err)
		}
		// price without fundamentals is still usable
		c.logger.WithField("symbol", symbol).Debug("No fundamentals for symbol")
	}

	m := contracts.Metrics{
		Ticker: ticker,
		Name:   fund.General.Name,
		Price:  *quote.Close.Value,
		AsOf:   quote.time(),
	}
	if m.Name == "" {
		m.Name = ticker
	}
	m.Currency = fund.General.CurrencyCode
	m.Revenue = fund.Highlights.RevenueTTM.Value
	m.FreeCashFlow = latest(fund.Financials.CashFlow.Quarterly, func(e statementEntry) flexFloat { return e.FreeCashFlow })
	m.Debt = latest(fund.Financials.BalanceSheet.Quarterly, func(e statementEntry) flexFloat { return e.ShortLongTermDebtTotal })
	m.Cash = latest(fund.Financials.BalanceSheet.Quarterly, func(e statementEntry) flexFloat { return e.Cash })

	return contracts.Found(m), nil
}

func (c *Client) symbol(ticker string) string {
	if c.exchange == "" || strings.HasSuffix(ticker, "."+c.exchange) {
		return ticker
	}
	return ticker + "." + c.exchange
}

// get performs a GET request and decodes the JSON body into result
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	params := url.Values{}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Endpoint: path, Message: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// unknown symbols sometimes come back as 200 with an empty body or "NA"
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "[]" || trimmed == "{}" || trimmed == `"NA"` {
		return errNotFound
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// APIError is a non-200, non-404 response
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market data API error (status %d) at %s: %s", e.StatusCode, e.Endpoint, e.Message)
}

// time converts the unix timestamp of the quote
func (q realTimeQuote) time() time.Time {
	if q.Timestamp.Value == nil {
		return time.Time{}
	}
	return time.Unix(int64(*q.Timestamp.Value), 0).UTC()
}
