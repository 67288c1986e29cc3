package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/pkg/httputil"
	"github.com/wonny/stocktracker/pkg/logger"
)

// Client reads quote pages ({baseURL}/quote/{TICKER}) and pulls the
// headline price and a key-statistics table out of the HTML
// ⭐ SSOT: 시세 페이지 스크래핑은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new quote page scraper
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Lookup fetches the quote page for ticker.
// A 404 page or a page without a readable price is NotFound.
func (c *Client) Lookup(ctx context.Context, ticker string) (contracts.FetchResult, error) {
	pageURL := fmt.Sprintf("%s/quote/%s", c.baseURL, ticker)

	resp, err := c.httpClient.Get(ctx, pageURL)
	if err != nil {
		return contracts.FetchResult{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return contracts.NotFound(), nil
	}
	if resp.StatusCode != http.StatusOK {
		return contracts.FetchResult{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return contracts.FetchResult{}, fmt.Errorf("parse quote page: %w", err)
	}

	m, ok := parseQuotePage(doc, ticker)
	if !ok {
		c.logger.WithField("ticker", ticker).Debug("Quote page has no price")
		return contracts.NotFound(), nil
	}
	m.AsOf = time.Now().UTC()

	return contracts.Found(m), nil
}

// parseQuotePage extracts metrics from a quote page.
// 구조: h1 = 회사명, [data-field=price] = 현재가, table tr = 라벨 | 값
func parseQuotePage(doc *goquery.Document, ticker string) (contracts.Metrics, bool) {
	m := contracts.Metrics{Ticker: ticker}

	m.Name = strings.TrimSpace(doc.Find("h1").First().Text())
	if m.Name == "" {
		m.Name = ticker
	}

	stats := make(map[string]string)
	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(strings.TrimSpace(cells.Eq(0).Text()))
		stats[label] = strings.TrimSpace(cells.Eq(1).Text())
	})

	priceText := strings.TrimSpace(doc.Find("[data-field=price]").First().Text())
	if priceText == "" {
		priceText = stats["price"]
	}
	price := parseAmount(priceText)
	if price == nil {
		return m, false
	}
	m.Price = *price

	if cur, ok := doc.Find("[data-field=price]").First().Attr("data-currency"); ok {
		m.Currency = cur
	}

	m.Revenue = parseAmount(stats["revenue"])
	m.FreeCashFlow = parseAmount(stats["free cash flow"])
	m.Debt = parseAmount(stats["total debt"])
	m.Cash = parseAmount(stats["total cash"])
	if m.Cash == nil {
		m.Cash = parseAmount(stats["cash"])
	}

	return m, true
}

// parseAmount parses "$1,234.5", "748.2M", "1.1B", "(95M)"; nil when the cell is empty or "N/A"
func parseAmount(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || strings.EqualFold(s, "N/A") || strings.EqualFold(s, "NA") {
		return nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	multiplier := 1.0
	if n := len(s); n > 0 {
		switch strings.ToUpper(s[n-1:]) {
		case "K":
			multiplier = 1e3
		case "M":
			multiplier = 1e6
		case "B":
			multiplier = 1e9
		case "T":
			multiplier = 1e12
		}
		if multiplier != 1 {
			s = s[:n-1]
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	v *= multiplier
	if negative {
		v = -v
	}
	return &v
}
