package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/stocktracker/internal/scheduler"
	"github.com/wonny/stocktracker/internal/scheduler/jobs"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "파이프라인 정기 실행",
	Long: `SCHEDULE_CRON (기본: 평일 18:00)에 맞춰 파이프라인을 실행합니다.
실패한 실행은 재시도하지 않고 다음 스케줄을 기다립니다.

Example:
  go run ./cmd/tracker schedule
  go run ./cmd/tracker schedule --run-now`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

var scheduleRunNow bool

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().BoolVar(&scheduleRunNow, "run-now", false, "시작 시 한 번 즉시 실행")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := jobs.NewPipelineJob(a.orchestrator, cfg.ScheduleCron, a.log)
	sched := scheduler.New(a.log)
	if err := sched.AddJob(job); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Stock Tracker Scheduler")
	printKeyValue(out, "Job", job.Name(), 8)
	printKeyValue(out, "Schedule", cfg.ScheduleCron, 8)
	fmt.Fprintln(out, separator)

	if scheduleRunNow {
		result, err := sched.RunJobSync(job.Name())
		if err != nil {
			return err
		}
		if result.Success {
			printSuccess(out, fmt.Sprintf("Initial run completed in %.2fs", result.Duration.Seconds()))
		} else {
			printWarning(out, fmt.Sprintf("Initial run failed: %v", result.Error))
		}
	}

	sched.Start()
	defer sched.Stop()

	if next, err := sched.NextRun(job.Name()); err == nil {
		printKeyValue(out, "Next run", next.Format("2006-01-02 15:04:05 MST"), 8)
	}

	<-ctx.Done()
	fmt.Fprintln(out, "Scheduler stopped")
	return nil
}
