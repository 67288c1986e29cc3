package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocktracker/internal/api/handlers"
	"github.com/wonny/stocktracker/internal/artifact"
	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/scheduler"
	"github.com/wonny/stocktracker/pkg/logger"
)

func writeArtifact(t *testing.T, records []contracts.StockRecord) *artifact.Store {
	t.Helper()
	store := artifact.NewStore(filepath.Join(t.TempDir(), "stocks.json"))
	if records != nil {
		data, err := artifact.Encode(records)
		require.NoError(t, err)
		require.NoError(t, store.Write(data))
	}
	return store
}

func rec(ticker string, price float64, valueRank int) contracts.StockRecord {
	return contracts.StockRecord{
		Category: contracts.CategoryDividend, Ticker: ticker, Name: ticker + " Inc", Price: price,
		DCF:        contracts.DCF{Conservative: "10-20", Base: "20-30", Aggressive: "30-40"},
		FCFQuality: 4, ROICStrength: 4, RevenueDurability: 4, BalanceSheetStrength: 4,
		InsiderActivity: 3, ValueRank: valueRank, ExpectedReturn: 3, LastUpdated: "2026-10-19",
	}
}

func newTestRouter(store *artifact.Store, sched *scheduler.Scheduler) http.Handler {
	log := logger.NewNop()
	var runs *handlers.RunsHandler
	if sched != nil {
		runs = handlers.NewRunsHandler(sched)
	}
	return NewRouter(handlers.NewStocksHandler(store, log), runs, log)
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w, body
}

func TestHealth(t *testing.T) {
	w, body := get(t, newTestRouter(writeArtifact(t, nil), nil), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestListStocks(t *testing.T) {
	store := writeArtifact(t, []contracts.StockRecord{rec("MA", 560, 2), rec("SPGI", 480, 4)})
	router := newTestRouter(store, nil)

	w, body := get(t, router, "/api/stocks")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, "undervaluationScore", body["sort"])
	assert.Equal(t, "2026-10-19", body["lastUpdated"])

	data := body["data"].([]interface{})
	first := data[0].(map[string]interface{})
	assert.Equal(t, "SPGI", first["ticker"])
	assert.Contains(t, first, "undervaluationScore")
	assert.Equal(t, "Moderate", first["riskLevel"])
	assert.Equal(t, "4.0", first["qualitySummary"])

	w, body = get(t, router, "/api/stocks?sort=price")
	require.Equal(t, http.StatusOK, w.Code)
	data = body["data"].([]interface{})
	assert.Equal(t, "SPGI", data[0].(map[string]interface{})["ticker"])

	w, _ = get(t, router, "/api/stocks?sort=marketCap")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStock(t *testing.T) {
	router := newTestRouter(writeArtifact(t, []contracts.StockRecord{rec("MA", 560, 2)}), nil)

	w, body := get(t, router, "/api/stocks/ma")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MA", body["data"].(map[string]interface{})["ticker"])

	w, _ = get(t, router, "/api/stocks/NFLX")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListStocks_NoArtifact(t *testing.T) {
	w, body := get(t, newTestRouter(writeArtifact(t, nil), nil), "/api/stocks")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, body["error"], "not been generated")
}

func TestSortKeys(t *testing.T) {
	w, body := get(t, newTestRouter(writeArtifact(t, nil), nil), "/api/stocks/sort-keys")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body["data"], "price")
}

func TestRuns(t *testing.T) {
	router := newTestRouter(writeArtifact(t, nil), scheduler.New(logger.NewNop()))
	w, body := get(t, router, "/api/runs")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	w2 := httptest.NewRecorder()
	newTestRouter(writeArtifact(t, nil), nil).ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	assert.Equal(t, http.StatusNotFound, w2.Code)
}
