package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/stocktracker/internal/brain"
	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/scheduler"
	"github.com/wonny/stocktracker/pkg/logger"
)

// Runner runs the report pipeline
type Runner interface {
	Run(ctx context.Context, cfg brain.RunConfig) (*brain.RunResult, error)
}

// PipelineJob regenerates the stock report on a schedule
// ⭐ SSOT: 리포트 생성 스케줄은 이 Job에서만
type PipelineJob struct {
	runner   Runner
	schedule string
	logger   *logger.Logger
	nowFunc  func() time.Time
}

// NewPipelineJob creates a new pipeline job
func NewPipelineJob(runner Runner, schedule string, log *logger.Logger) *PipelineJob {
	return &PipelineJob{
		runner:   runner,
		schedule: schedule,
		logger:   log,
		nowFunc:  time.Now,
	}
}

// Name returns the job name
func (j *PipelineJob) Name() string {
	return "stock_report"
}

// Schedule returns the cron schedule (SCHEDULE_CRON, weekdays at 6 PM by default)
func (j *PipelineJob) Schedule() string {
	return j.schedule
}

// Run executes the pipeline for today's date
func (j *PipelineJob) Run(ctx context.Context) (scheduler.RunDetail, error) {
	cfg := brain.RunConfig{
		Date:  j.nowFunc(),
		RunID: brain.GenerateRunID(),
	}
	detail := scheduler.RunDetail{RunID: cfg.RunID}

	j.logger.WithField("run_id", cfg.RunID).Info("Starting scheduled report run")

	result, err := j.runner.Run(ctx, cfg)
	if result != nil {
		detail.Records = len(result.Records)
		detail.MissingTickers = result.MissingTickers
		detail.ArtifactPath = result.ArtifactPath
	}
	if err != nil {
		var stageErr *contracts.StageExecutionError
		if errors.As(err, &stageErr) {
			detail.FailedStage = string(stageErr.Stage)
		}
		return detail, fmt.Errorf("pipeline run %s: %w", cfg.RunID, err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":  cfg.RunID,
		"records": detail.Records,
		"missing": detail.MissingTickers,
		"path":    detail.ArtifactPath,
	}).Info("Scheduled report run completed")

	return detail, nil
}
