package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/vixterm/internal/api"
	"github.com/wonny/vixterm/internal/api/handlers"
	"github.com/wonny/vixterm/internal/scheduler"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                  - Health check
  GET  /api/metrics/latest      - 최신 지표
  GET  /api/metrics             - 기간별 지표 (from, to, limit)
  GET  /api/contracts           - 날짜 기준 계약 (date)
  GET  /api/contracts/decode    - 심볼 해석 (symbol)
  POST /api/runs                - 수집 1회 실행
  GET  /api/runs/last           - 이 프로세스의 마지막 실행 결과

Example:
  go run ./cmd/vixterm api
  go run ./cmd/vixterm api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "같은 프로세스에서 스케줄러 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== vixterm API Server ===")

	d, err := buildDeps(cmd.Context(), depsOptions{})
	if err != nil {
		return err
	}
	defer d.Close()

	cfg, log := d.cfg, d.log
	if apiPort != "" {
		cfg.Port = apiPort
	}
	loc := cfg.Location()

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	var dbCheck handlers.DBChecker
	if d.db != nil {
		dbCheck = d.db
	}

	router := api.NewRouter(api.Handlers{
		Health:    handlers.NewHealthHandler(dbCheck, log),
		Metrics:   handlers.NewMetricsHandler(d.metrics, d.cache, loc, log),
		Contracts: handlers.NewContractsHandler(d.runner.Resolver(), d.cache, loc, log),
		Runs:      handlers.NewRunHandler(d.runner, d.cache, cfg.API.RunsPerMinute, cfg.Scheduler.JobTimeout, log),
	}, log)

	server := api.New(cfg, log, router)

	var sched *scheduler.Scheduler
	if apiWithScheduler {
		sched = scheduler.New(log, loc, scheduler.WithJobTimeout(cfg.Scheduler.JobTimeout))
		if err := registerJobs(sched, d); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	// Serve until Ctrl+C, then drain in-flight runs
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}
