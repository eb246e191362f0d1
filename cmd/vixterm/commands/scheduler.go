package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/vixterm/internal/scheduler"
	"github.com/wonny/vixterm/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행 (완료까지 대기)
  status  - 작업 실행 상태 조회

Example:
  go run ./cmd/vixterm scheduler start
  go run ./cmd/vixterm scheduler list
  go run ./cmd/vixterm scheduler run term_structure`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- term_structure: COLLECT_SCHEDULE (기본 평일 16:15, SCHEDULER_TIMEZONE 기준)
- raw_row_retention: RAW_ROW_RETENTION_DAYS > 0 일 때만 (기본 매일 03:30)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "작업 실행 상태 조회",
		RunE:  showStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== vixterm Scheduler ===")

	sched, d, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.Close()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, d, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.Close()

	// Entry.Next는 cron이 시작돼야 계산됨
	sched.Start()
	defer sched.Stop()

	printJobs(sched)
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		if next, err := sched.NextRun(jobName); err == nil && !next.IsZero() {
			fmt.Printf("  - %s (next: %s)\n", jobName, next.Format("2006-01-02 15:04:05 MST"))
			continue
		}
		fmt.Printf("  - %s\n", jobName)
	}
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	sched, d, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.Close()

	result, err := sched.RunJobSync(cmd.Context(), jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		msg := fmt.Sprintf("%s failed after %s (%d attempt(s)): %s", jobName, result.Duration, result.Attempts, result.Error)
		if result.TimedOut {
			msg += " [timed out]"
		}
		PrintError(msg)
		return fmt.Errorf("job %s failed", jobName)
	}
	PrintSuccess(fmt.Sprintf("%s completed in %s", jobName, result.Duration))
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	sched, d, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.Close()

	sched.Start()
	defer sched.Stop()

	stats := sched.GetJobStats()

	fmt.Println("Job Statistics:")
	fmt.Println()

	for _, jobName := range sched.GetAllJobs() {
		stat, ok := stats[jobName]
		if !ok {
			continue
		}
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}

		if stat.LastSuccess != nil {
			fmt.Printf("   Last Success: %s\n", stat.LastSuccess.Format("2006-01-02 15:04:05"))
		}

		if stat.ConsecutiveFailures > 0 {
			fmt.Printf("   Failing Streak: %d\n", stat.ConsecutiveFailures)
		}

		if stat.NextRun != nil {
			fmt.Printf("   Next Run: %s\n", stat.NextRun.Format("2006-01-02 15:04:05 MST"))
		}

		fmt.Println()
	}

	return nil
}

// initScheduler builds the shared dependencies and a scheduler with all jobs
func initScheduler(cmd *cobra.Command) (*scheduler.Scheduler, *deps, error) {
	d, err := buildDeps(cmd.Context(), depsOptions{})
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(d.log, d.cfg.Location(), scheduler.WithJobTimeout(d.cfg.Scheduler.JobTimeout))
	if err := registerJobs(sched, d); err != nil {
		d.Close()
		return nil, nil, err
	}
	return sched, d, nil
}

// registerJobs adds the term structure job and, when enabled, raw-row retention
func registerJobs(sched *scheduler.Scheduler, d *deps) error {
	cfg := d.cfg

	if err := sched.AddJob(jobs.NewTermStructureJob(d.runner, d.cache, cfg.Scheduler.CollectSchedule, d.log)); err != nil {
		return fmt.Errorf("add term structure job: %w", err)
	}

	if cfg.Scheduler.RetentionDays > 0 {
		job := jobs.NewRetentionJob(d.quotes, cfg.Scheduler.RetentionDays, cfg.Scheduler.RetentionSchedule, d.log)
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("add retention job: %w", err)
		}
	}
	return nil
}
