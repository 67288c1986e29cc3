package handlers

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/stocktracker/internal/artifact"
	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/report"
	"github.com/wonny/stocktracker/pkg/logger"
)

// StocksHandler serves the report artifact with the dashboard's derived values
// ⭐ SSOT: 리포트 조회 API 핸들러는 이 구조체에서만
type StocksHandler struct {
	store  *artifact.Store
	logger *logger.Logger
}

// NewStocksHandler creates a new stocks handler
func NewStocksHandler(store *artifact.Store, log *logger.Logger) *StocksHandler {
	return &StocksHandler{
		store:  store,
		logger: log,
	}
}

// ListStocks returns every record, sorted
// GET /api/stocks?sort=undervaluationScore
func (h *StocksHandler) ListStocks(w http.ResponseWriter, r *http.Request) {
	records, ok := h.load(w)
	if !ok {
		return
	}

	sortKey := r.URL.Query().Get("sort")
	views, err := report.Build(records, sortKey)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"data":        views,
		"count":       len(views),
		"sort":        firstNonEmpty(sortKey, report.DefaultSortKey),
		"lastUpdated": lastUpdated(records),
	})
}

// GetStock returns one record
// GET /api/stocks/{ticker}
func (h *StocksHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	records, ok := h.load(w)
	if !ok {
		return
	}

	for _, rec := range records {
		if rec.Ticker == ticker {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data":    report.NewStockView(rec),
			})
			return
		}
	}

	respondError(w, http.StatusNotFound, "ticker "+ticker+" is not in the report")
}

// GetSortKeys lists the accepted sort keys
// GET /api/stocks/sort-keys
func (h *StocksHandler) GetSortKeys(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    report.SortKeys(),
		"default": report.DefaultSortKey,
	})
}

// load reads the artifact, writing the error response itself on failure
func (h *StocksHandler) load(w http.ResponseWriter) ([]contracts.StockRecord, bool) {
	records, err := h.store.Read()
	if err == nil {
		return records, true
	}

	if errors.Is(err, os.ErrNotExist) {
		respondError(w, http.StatusServiceUnavailable, "report has not been generated yet")
		return nil, false
	}

	h.logger.WithError(err).WithField("path", h.store.Path()).Error("Failed to read report artifact")
	respondError(w, http.StatusInternalServerError, "Failed to read report")
	return nil, false
}

func lastUpdated(records []contracts.StockRecord) string {
	latest := ""
	for _, r := range records {
		if r.LastUpdated > latest {
			latest = r.LastUpdated
		}
	}
	return latest
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
