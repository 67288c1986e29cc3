package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/stocktracker/internal/api"
	"github.com/wonny/stocktracker/internal/api/handlers"
	"github.com/wonny/stocktracker/internal/artifact"
	"github.com/wonny/stocktracker/internal/scheduler"
	"github.com/wonny/stocktracker/internal/scheduler/jobs"
	"github.com/wonny/stocktracker/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "대시보드 API 서버 시작",
	Long: `output/stocks.json을 읽어 대시보드 API를 제공합니다.

Endpoints:
  GET  /health                 - Health check
  GET  /api/stocks?sort=KEY    - 정렬된 종목 목록 (파생 지표 포함)
  GET  /api/stocks/sort-keys   - 지원하는 정렬 키
  GET  /api/stocks/{ticker}    - 단일 종목
  GET  /api/runs               - 스케줄 실행 이력 (--with-scheduler)

Example:
  go run ./cmd/tracker serve
  go run ./cmd/tracker serve --port 8089 --with-scheduler`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	servePort          string
	serveWithScheduler bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (기본: PORT)")
	serveCmd.Flags().BoolVar(&serveWithScheduler, "with-scheduler", false, "SCHEDULE_CRON에 맞춰 파이프라인도 실행")
}

func runServe(cmd *cobra.Command, args []string) error {
	load := loadArtifactConfig
	if serveWithScheduler {
		load = loadConfig
	}
	cfg, err := load()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	log := logger.New(cfg)
	store := artifact.NewStore(cfg.Pipeline.OutputPath)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runsHandler *handlers.RunsHandler
	if serveWithScheduler {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		log, store = a.log, a.store
		sched := scheduler.New(log)
		if err := sched.AddJob(jobs.NewPipelineJob(a.orchestrator, cfg.ScheduleCron, log)); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
		runsHandler = handlers.NewRunsHandler(sched)
	}

	router := api.NewRouter(handlers.NewStocksHandler(store, log), runsHandler, log)
	server := api.New(cfg, log, router)

	fmt.Fprintf(cmd.OutOrStdout(), "🌐 Serving %s on :%s (Ctrl+C to stop)\n", store.Path(), cfg.Port)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}
