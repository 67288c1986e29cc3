package scheduler

import (
	"context"
	"time"
)

// maxHistory bounds the results kept per job
const maxHistory = 50

// Job is a unit of scheduled work
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Schedule is a six-field cron expression, seconds first
	// ("0 0 18 * * 1-5" = weekdays at 6 PM), or a descriptor such as "@daily"
	Schedule() string

	// Run executes the job once and reports what the run produced.
	// The detail is recorded even when err is non-nil.
	Run(ctx context.Context) (RunDetail, error)
}

// RunDetail is what one report run produced
type RunDetail struct {
	RunID          string   `json:"run_id,omitempty"`
	Records        int      `json:"records"`
	MissingTickers []string `json:"missing_tickers,omitempty"`
	ArtifactPath   string   `json:"artifact_path,omitempty"`
	FailedStage    string   `json:"failed_stage,omitempty"`
}

// JobResult is one execution of a job
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Skipped   bool          `json:"skipped,omitempty"`
	Error     string        `json:"error,omitempty"`
	RunDetail
}

// JobHistory keeps the most recent results of one job, oldest first
type JobHistory struct {
	results []JobResult
}

func (h *JobHistory) add(result JobResult) {
	h.results = append(h.results, result)
	if len(h.results) > maxHistory {
		h.results = append([]JobResult(nil), h.results[len(h.results)-maxHistory:]...)
	}
}

// Latest returns a copy of the newest n results (all of them when n <= 0), oldest first
func (h *JobHistory) Latest(n int) []JobResult {
	if n <= 0 || n > len(h.results) {
		n = len(h.results)
	}
	out := make([]JobResult, n)
	copy(out, h.results[len(h.results)-n:])
	return out
}

// JobStats summarises the kept history of a job
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"` // 0.0 - 1.0
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`

	// from the newest run
	LastRunID          string   `json:"last_run_id,omitempty"`
	LastMissingTickers []string `json:"last_missing_tickers,omitempty"`
}

func (h *JobHistory) stats(jobName, schedule string) JobStats {
	stats := JobStats{
		JobName:   jobName,
		Schedule:  schedule,
		TotalRuns: len(h.results),
	}

	for i := range h.results {
		r := h.results[i]
		start := r.StartTime
		if r.Success {
			stats.SuccessCount++
			stats.LastSuccess = &start
		} else {
			stats.FailureCount++
			stats.LastFailure = &start
		}
		stats.LastRun = &start
		stats.LastRunID = r.RunID
		stats.LastMissingTickers = r.MissingTickers
	}

	if stats.TotalRuns > 0 {
		stats.SuccessRate = float64(stats.SuccessCount) / float64(stats.TotalRuns)
	}
	return stats
}
