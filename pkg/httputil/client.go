package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/stocktracker/pkg/logger"
)

// Client is an HTTP client wrapper with rate limiting and logging.
// Requests are never retried: a failed call surfaces to the pipeline stage that made it.
// ⭐ SSOT: 모든 HTTP 요청은 이 클라이언트를 통해서만 수행
type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
	limiter    *rate.Limiter
	headers    map[string]string
}

// DefaultTimeout bounds a single request when the caller sets no deadline
const DefaultTimeout = 30 * time.Second

// New creates a new HTTP client
func New(log *logger.Logger) *Client {
	return NewWithTimeout(log, DefaultTimeout)
}

// NewWithTimeout creates a client with custom timeout
func NewWithTimeout(log *logger.Logger, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
		headers:    make(map[string]string),
	}
}

// WithRateLimit caps the client at requestsPerSecond (burst of the same size)
func (c *Client) WithRateLimit(requestsPerSecond int) *Client {
	if requestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
	return c
}

// WithHeader sets a header sent with every request
func (c *Client) WithHeader(key, value string) *Client {
	c.headers[key] = value
	return c
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}

	return c.do(req)
}

// do executes the request with rate limiting and logging
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	startTime := time.Now()
	path := req.URL.Path

	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		err = redactURL(err)
		c.logger.WithFields(map[string]interface{}{
			"method":   req.Method,
			"host":     req.URL.Host,
			"path":     path,
			"duration": duration,
			"error":    err.Error(),
		}).Error("HTTP request failed")
		return nil, err
	}

	// query strings may carry API tokens: only host and path are logged
	c.logger.WithFields(map[string]interface{}{
		"method":      req.Method,
		"host":        req.URL.Host,
		"path":        path,
		"status_code": resp.StatusCode,
		"duration":    duration,
	}).Debug("HTTP request completed")

	return resp, nil
}

// redactURL strips the query string and user info from the URL a transport
// error carries, so API tokens never reach logs or callers
func redactURL(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	u, parseErr := url.Parse(urlErr.URL)
	if parseErr != nil {
		urlErr.URL = "<redacted>"
		return err
	}
	if u.RawQuery != "" {
		u.RawQuery = "redacted"
	}
	u.User = nil
	u.Fragment = ""
	urlErr.URL = u.String()
	return err
}
