package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vixterm/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	calls    int32
	failures int32 // fail this many times before succeeding
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }

func (j *stubJob) Run(ctx context.Context) error {
	n := atomic.AddInt32(&j.calls, 1)
	if n <= atomic.LoadInt32(&j.failures) {
		return errors.New("transient")
	}
	return nil
}

func newJob(name string) *stubJob {
	return &stubJob{name: name, schedule: "0 15 16 * * 1-5"}
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop(), time.UTC)

	require.NoError(t, s.AddJob(newJob("b")))
	require.NoError(t, s.AddJob(newJob("a")))
	assert.Error(t, s.AddJob(newJob("a")), "duplicate names are rejected")

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())
}

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := New(logger.Nop(), time.UTC)

	job := &stubJob{name: "bad", schedule: "every day"}
	assert.Error(t, s.AddJob(job))
	assert.Empty(t, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := New(logger.Nop(), time.UTC)
	require.NoError(t, s.AddJob(newJob("a")))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Empty(t, s.GetJobStats())
	assert.Error(t, s.RemoveJob("a"))
}

func TestRunJobSync_SingleAttemptByDefault(t *testing.T) {
	s := New(logger.Nop(), time.UTC)
	job := newJob("collect")
	job.failures = 1
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync(context.Background(), "collect")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "transient", result.Error)
	assert.Equal(t, 1, result.Attempts)
	assert.False(t, result.TimedOut)
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.calls))

	history, err := s.GetJobHistory("collect")
	require.NoError(t, err)
	assert.Len(t, history.Results, 1)
}

func TestRunJobSync_WithRetries(t *testing.T) {
	s := New(logger.Nop(), time.UTC, WithRetries(2, time.Millisecond))
	job := newJob("flaky")
	job.failures = 2
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync(context.Background(), "flaky")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&job.calls))
}

func TestRunJobSync_CancelledParentStopsRetries(t *testing.T) {
	s := New(logger.Nop(), time.UTC, WithRetries(5, time.Hour))
	job := newJob("flaky")
	job.failures = 10
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.RunJobSync(ctx, "flaky")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.False(t, result.TimedOut, "cancellation is not a timeout")
}

func TestRunJobSync_Unknown(t *testing.T) {
	s := New(logger.Nop(), time.UTC)

	_, err := s.RunJobSync(context.Background(), "missing")
	assert.Error(t, err)
	assert.Error(t, s.RunJob("missing"))
}

func TestJobTimeout(t *testing.T) {
	s := New(logger.Nop(), time.UTC, WithJobTimeout(10*time.Millisecond))
	job := &blockingJob{}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync(context.Background(), job.Name())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.True(t, result.TimedOut)
	assert.Contains(t, result.Error, context.DeadlineExceeded.Error())
}

type blockingJob struct{}

func (blockingJob) Name() string     { return "blocking" }
func (blockingJob) Schedule() string { return "@daily" }
func (blockingJob) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestGetJobStats(t *testing.T) {
	s := New(logger.Nop(), time.UTC)
	ok := newJob("ok")
	bad := newJob("bad")
	bad.failures = 10
	require.NoError(t, s.AddJob(ok))
	require.NoError(t, s.AddJob(bad))

	_, _ = s.RunJobSync(context.Background(), "ok")
	_, _ = s.RunJobSync(context.Background(), "bad")

	stats := s.GetJobStats()
	require.Len(t, stats, 2)

	assert.Equal(t, 1, stats["ok"].SuccessCount)
	assert.NotNil(t, stats["ok"].LastSuccess)
	assert.Equal(t, 1, stats["bad"].FailureCount)
	assert.NotNil(t, stats["bad"].LastFailure)
	assert.Nil(t, stats["bad"].LastSuccess)
	assert.Equal(t, 1, stats["bad"].ConsecutiveFailures)
	assert.Zero(t, stats["ok"].ConsecutiveFailures)
	assert.Equal(t, "0 15 16 * * 1-5", stats["ok"].Schedule)
}

func TestNextRunAfterStart(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Skip("tzdata not available")
	}

	s := New(logger.Nop(), chicago)
	require.NoError(t, s.AddJob(newJob("collect")))

	s.Start()
	defer s.Stop()

	next, err := s.NextRun("collect")
	require.NoError(t, err)
	require.False(t, next.IsZero())

	local := next.In(chicago)
	assert.Equal(t, 16, local.Hour())
	assert.Equal(t, 15, local.Minute())
	assert.NotEqual(t, time.Saturday, local.Weekday())
	assert.NotEqual(t, time.Sunday, local.Weekday())
}

func TestKVFields(t *testing.T) {
	fields := kvFields([]interface{}{"entry", 1, "next", "soon", "dangling"})
	assert.Equal(t, map[string]interface{}{"entry": 1, "next": "soon"}, fields)
}
