package handlers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/vixterm/internal/contracts"
	"github.com/wonny/vixterm/pkg/logger"
	"github.com/wonny/vixterm/pkg/redis"
)

// RunExecutor performs collection runs (collector.Runner)
type RunExecutor interface {
	Run(ctx context.Context) (*contracts.RunResult, error)
	Last() *contracts.RunResult
}

// RunHandler triggers manual collection runs
type RunHandler struct {
	runner  RunExecutor
	limiter *rate.Limiter
	cache   Cache
	timeout time.Duration
	logger  *logger.Logger
}

// NewRunHandler creates a run handler allowing perMinute manual runs (<= 0 = unlimited)
func NewRunHandler(runner RunExecutor, cache Cache, perMinute int, timeout time.Duration, log *logger.Logger) *RunHandler {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &RunHandler{
		runner:  runner,
		limiter: limiter,
		cache:   cache,
		timeout: timeout,
		logger:  log,
	}
}

// RunResponse is returned by POST /api/runs
type RunResponse struct {
	Status string               `json:"status"` // success, degraded, failed
	Result *contracts.RunResult `json:"result"`
	Error  string               `json:"error,omitempty"`
}

// Trigger runs one collection synchronously
// POST /api/runs
func (h *RunHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow() {
		w.Header().Set("Retry-After", "60")
		respondError(w, http.StatusTooManyRequests, "Too many manual runs, try again later")
		return
	}

	h.logger.Info("Manual collection run triggered")

	// 클라이언트 연결이 끊겨도 저장은 끝까지 진행
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.timeout)
	defer cancel()

	result, err := h.runner.Run(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Manual collection run failed")
		respondJSON(w, http.StatusInternalServerError, RunResponse{Status: "failed", Result: result, Error: err.Error()})
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, redis.LatestMetricsKey(), result.Metrics, redis.TTLLatestMetrics); err != nil {
			h.logger.WithError(err).Warn("Latest metrics cache write failed")
		}
	}

	status := "success"
	if result.Degraded() {
		status = "degraded"
	}
	respondJSON(w, http.StatusOK, RunResponse{Status: status, Result: result})
}

// GetLast returns the last run executed by this process
// GET /api/runs/last
func (h *RunHandler) GetLast(w http.ResponseWriter, r *http.Request) {
	last := h.runner.Last()
	if last == nil {
		respondError(w, http.StatusNotFound, "No run executed since start")
		return
	}
	respondJSON(w, http.StatusOK, last)
}
