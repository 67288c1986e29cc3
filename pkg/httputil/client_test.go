package httputil

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocktracker/pkg/logger"
)

func TestNew(t *testing.T) {
	client := New(logger.NewNop())
	require.NotNil(t, client)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.Nil(t, client.limiter)
}

func TestNewWithTimeout(t *testing.T) {
	client := NewWithTimeout(logger.NewNop(), 5*time.Second)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestGetSendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "stocktracker", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(logger.NewNop()).WithHeader("User-Agent", "stocktracker")

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetDoesNotRetryServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	resp, err := New(logger.NewNop()).Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetHonorsContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(logger.NewNop()).Get(ctx, server.URL)
	assert.Error(t, err)
}

func TestRateLimitCancelled(t *testing.T) {
	client := New(logger.NewNop()).WithRateLimit(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, "http://127.0.0.1:1")
	assert.Error(t, err)
}

func TestTransportErrorHidesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL + "/real-time/DUOL.US?api_token=SECRET-TOKEN&fmt=json"
	server.Close()

	var logs bytes.Buffer
	_, err := New(logger.NewWithWriter(&logs)).Get(context.Background(), target)
	require.Error(t, err)

	assert.NotContains(t, err.Error(), "SECRET-TOKEN")
	assert.NotContains(t, logs.String(), "SECRET-TOKEN")
	assert.Contains(t, err.Error(), "/real-time/DUOL.US")

	var urlErr *url.Error
	require.True(t, errors.As(err, &urlErr), "transport errors keep their type")
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "query", in: "http://host/path?api_token=abc", want: "http://host/path?redacted"},
		{name: "user info", in: "http://user:pw@host/path", want: "http://host/path"},
		{name: "plain", in: "http://host/path", want: "http://host/path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := redactURL(&url.Error{Op: "Get", URL: tt.in, Err: errors.New("refused")})
			var urlErr *url.Error
			require.True(t, errors.As(err, &urlErr))
			assert.Equal(t, tt.want, urlErr.URL)
		})
	}

	plain := errors.New("not a url error")
	assert.Equal(t, plain, redactURL(plain))
}
