package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/vixterm/pkg/logger"
)

// RowPruner deletes raw quote rows older than a cutoff (storage.QuoteRepository)
type RowPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionJob prunes old raw quote rows. Metrics rows are kept forever.
type RetentionJob struct {
	pruner   RowPruner
	days     int
	schedule string
	now      func() time.Time
	logger   *logger.Logger
}

// NewRetentionJob creates a new raw-row retention job keeping `days` days
func NewRetentionJob(pruner RowPruner, days int, schedule string, log *logger.Logger) *RetentionJob {
	return &RetentionJob{
		pruner:   pruner,
		days:     days,
		schedule: schedule,
		now:      time.Now,
		logger:   log.WithField("job", "raw_row_retention"),
	}
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return "raw_row_retention"
}

// Schedule returns the cron schedule (daily at 03:30 by default)
func (j *RetentionJob) Schedule() string {
	if j.schedule == "" {
		return "0 30 3 * * *"
	}
	return j.schedule
}

// Cutoff returns the oldest run timestamp that is kept
func (j *RetentionJob) Cutoff() time.Time {
	return j.now().AddDate(0, 0, -j.days)
}

// Run executes the cleanup
func (j *RetentionJob) Run(ctx context.Context) error {
	if j.days <= 0 {
		j.logger.Debug("Retention disabled")
		return nil
	}

	cutoff := j.Cutoff()
	j.logger.WithField("cutoff", cutoff).Debug("Starting scheduled raw row cleanup")

	count, err := j.pruner.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete raw rows before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if count > 0 {
		j.logger.WithField("removed", count).Info("Raw row cleanup completed")
	}

	return nil
}
