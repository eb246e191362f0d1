package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/vixterm/internal/contracts"
	"github.com/wonny/vixterm/pkg/logger"
	"github.com/wonny/vixterm/pkg/redis"
)

// RunExecutor performs one collection run (collector.Runner)
type RunExecutor interface {
	Run(ctx context.Context) (*contracts.RunResult, error)
}

// MetricsCache stores the latest metrics for the read API
type MetricsCache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// TermStructureJob collects the VIX term structure on a cron schedule
// ⭐ SSOT: 기간구조 수집 스케줄은 이 Job에서만
type TermStructureJob struct {
	runner   RunExecutor
	cache    MetricsCache
	schedule string
	logger   *logger.Logger
}

// NewTermStructureJob creates a new term structure job; cache may be nil
func NewTermStructureJob(runner RunExecutor, cache MetricsCache, schedule string, log *logger.Logger) *TermStructureJob {
	return &TermStructureJob{
		runner:   runner,
		cache:    cache,
		schedule: schedule,
		logger:   log.WithField("job", "term_structure"),
	}
}

// Name returns the job name
func (j *TermStructureJob) Name() string {
	return "term_structure"
}

// Schedule returns the cron schedule (with seconds)
func (j *TermStructureJob) Schedule() string {
	if j.schedule == "" {
		return "0 15 16 * * 1-5" // 평일 16:15
	}
	return j.schedule
}

// Run executes one collection run.
// A failed scrape is not a job failure (the run degrades to zero prices);
// a persistence failure is.
func (j *TermStructureJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled term structure collection")

	result, err := j.runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("collection run: %w", err)
	}

	if j.cache != nil {
		if err := j.cache.Set(ctx, redis.LatestMetricsKey(), result.Metrics, redis.TTLLatestMetrics); err != nil {
			j.logger.WithError(err).Warn("Failed to cache latest metrics")
		}
	}

	fields := map[string]interface{}{
		"m1":        result.Contracts.M1.Symbol,
		"slope":     result.Metrics.Slope,
		"structure": result.Structure,
		"duration":  result.Duration,
	}
	if result.Degraded() {
		j.logger.WithFields(fields).WithField("fetch_error", result.FetchError).Warn("Term structure collected without usable prices")
		return nil
	}

	j.logger.WithFields(fields).Info("Scheduled term structure collection completed successfully")
	return nil
}
