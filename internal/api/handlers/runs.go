package handlers

import (
	"net/http"

	"github.com/wonny/stocktracker/internal/scheduler"
)

// RunsHandler exposes scheduled pipeline runs
type RunsHandler struct {
	scheduler *scheduler.Scheduler
}

// NewRunsHandler creates a new runs handler
func NewRunsHandler(s *scheduler.Scheduler) *RunsHandler {
	return &RunsHandler{scheduler: s}
}

// GetRuns returns job statistics and the recent history of every job
// GET /api/runs
func (h *RunsHandler) GetRuns(w http.ResponseWriter, r *http.Request) {
	history := make(map[string][]scheduler.JobResult)
	for _, name := range h.scheduler.GetAllJobs() {
		results, err := h.scheduler.GetJobHistory(name)
		if err != nil {
			continue
		}
		history[name] = results
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   h.scheduler.GetJobStats(),
		"history": history,
	})
}
