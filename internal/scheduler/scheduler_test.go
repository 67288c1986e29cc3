package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocktracker/pkg/logger"
)

type testJob struct {
	name     string
	schedule string
	err      error
	block    chan struct{}
	runs     int32
}

func (j *testJob) Name() string     { return j.name }
func (j *testJob) Schedule() string { return j.schedule }
func (j *testJob) Run(ctx context.Context) (RunDetail, error) {
	n := atomic.AddInt32(&j.runs, 1)
	detail := RunDetail{RunID: fmt.Sprintf("run_%d", n)}
	if j.block != nil {
		select {
		case <-j.block:
		case <-ctx.Done():
			return detail, ctx.Err()
		}
	}
	if j.err != nil {
		detail.FailedStage = "S1_ANALYSIS"
		return detail, j.err
	}
	detail.Records = 11
	detail.MissingTickers = []string{"CRWV"}
	return detail, nil
}

func TestAddJob(t *testing.T) {
	s := New(logger.NewNop())

	require.NoError(t, s.AddJob(&testJob{name: "report", schedule: "0 0 18 * * 1-5"}))
	assert.Error(t, s.AddJob(&testJob{name: "report", schedule: "@daily"}), "duplicate name")
	assert.Error(t, s.AddJob(&testJob{name: "bad", schedule: "every day"}), "invalid cron")

	assert.Equal(t, []string{"report"}, s.GetAllJobs())
}

func TestRunJobSync_NoRetry(t *testing.T) {
	s := New(logger.NewNop())
	job := &testJob{name: "report", schedule: "@daily", err: errors.New("S1 S1_ANALYSIS failed")}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync("report")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "S1 S1_ANALYSIS failed", result.Error)
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.runs), "failed runs are not retried")

	job.err = nil
	result, err = s.RunJobSync("report")
	require.NoError(t, err)
	assert.True(t, result.Success)

	history, err := s.GetJobHistory("report")
	require.NoError(t, err)
	require.Len(t, history, 2)

	stats := s.GetJobStats()["report"]
	assert.Equal(t, 2, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	assert.InDelta(t, 0.5, stats.SuccessRate, 1e-9)
	require.NotNil(t, stats.LastSuccess)
	require.NotNil(t, stats.LastFailure)
	assert.False(t, stats.LastSuccess.Before(*stats.LastFailure))
	assert.Equal(t, "run_2", stats.LastRunID)
	assert.Equal(t, []string{"CRWV"}, stats.LastMissingTickers)

	assert.Equal(t, "run_1", history[0].RunID)
	assert.Equal(t, "S1_ANALYSIS", history[0].FailedStage)
	assert.Equal(t, 11, history[1].Records)
}

func TestRunJob_SkipsOverlap(t *testing.T) {
	s := New(logger.NewNop())
	job := &testJob{name: "report", schedule: "@daily", block: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("report"))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&job.runs) == 1 }, time.Second, 5*time.Millisecond)

	result, err := s.RunJobSync("report")
	require.NoError(t, err)
	assert.True(t, result.Skipped)

	close(job.block)
	require.Eventually(t, func() bool {
		h, _ := s.GetJobHistory("report")
		return len(h) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestStopCancelsRunningJob(t *testing.T) {
	s := New(logger.NewNop())
	job := &testJob{name: "report", schedule: "@daily", block: make(chan struct{})}
	require.NoError(t, s.AddJob(job))
	s.Start()

	done := make(chan JobResult)
	go func() {
		r, _ := s.RunJobSync("report")
		done <- r
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&job.runs) == 1 }, time.Second, 5*time.Millisecond)

	s.Stop()

	select {
	case r := <-done:
		assert.False(t, r.Success)
		assert.Contains(t, r.Error, "context canceled")
	case <-time.After(time.Second):
		t.Fatal("job did not observe cancellation")
	}
}

func TestRemoveJob(t *testing.T) {
	s := New(logger.NewNop())
	require.NoError(t, s.AddJob(&testJob{name: "report", schedule: "@daily"}))

	require.NoError(t, s.RemoveJob("report"))
	assert.Error(t, s.RemoveJob("report"))
	assert.Empty(t, s.GetAllJobs())

	_, err := s.RunJobSync("report")
	assert.Error(t, err)
}

func TestNextRun(t *testing.T) {
	s := New(logger.NewNop())
	require.NoError(t, s.AddJob(&testJob{name: "report", schedule: "@hourly"}))
	s.Start()
	defer s.Stop()

	next, err := s.NextRun("report")
	require.NoError(t, err)
	assert.True(t, next.After(time.Now()))

	_, err = s.NextRun("missing")
	assert.Error(t, err)
}

func TestJobHistoryCap(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < maxHistory+20; i++ {
		h.add(JobResult{Success: i%2 == 0, RunDetail: RunDetail{RunID: fmt.Sprintf("run_%d", i)}})
	}

	all := h.Latest(0)
	require.Len(t, all, maxHistory)
	assert.Equal(t, "run_20", all[0].RunID, "oldest results are dropped first")

	latest := h.Latest(5)
	require.Len(t, latest, 5)
	assert.Equal(t, fmt.Sprintf("run_%d", maxHistory+19), latest[4].RunID)

	latest[0].RunID = "changed"
	assert.NotEqual(t, "changed", h.Latest(5)[0].RunID, "Latest returns a copy")

	stats := h.stats("report", "@daily")
	assert.Equal(t, maxHistory, stats.TotalRuns)
	assert.InDelta(t, 0.5, stats.SuccessRate, 1e-9)
}

func TestJobHistoryEmptyStats(t *testing.T) {
	stats := (&JobHistory{}).stats("report", "@daily")
	assert.Zero(t, stats.TotalRuns)
	assert.Zero(t, stats.SuccessRate)
	assert.Nil(t, stats.LastRun)
	assert.Empty(t, stats.LastRunID)
}
