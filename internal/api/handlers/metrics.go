package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/vixterm/internal/contracts"
	"github.com/wonny/vixterm/internal/metrics"
	"github.com/wonny/vixterm/internal/storage"
	"github.com/wonny/vixterm/pkg/logger"
	"github.com/wonny/vixterm/pkg/redis"
)

// MetricsHandler serves stored term-structure metrics
// ⭐ SSOT: 지표 조회 API 핸들러는 이 구조체에서만
type MetricsHandler struct {
	repo   contracts.MetricsRepository
	cache  Cache
	loc    *time.Location
	logger *logger.Logger
}

// NewMetricsHandler creates a new metrics handler; cache may be nil
func NewMetricsHandler(repo contracts.MetricsRepository, cache Cache, loc *time.Location, log *logger.Logger) *MetricsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &MetricsHandler{
		repo:   repo,
		cache:  cache,
		loc:    loc,
		logger: log,
	}
}

// MetricsResponse wraps a record with its derived curve shape
type MetricsResponse struct {
	Metrics   contracts.MetricsRecord `json:"metrics"`
	Structure string                  `json:"structure"`
	Cached    bool                    `json:"cached"`
}

// MetricsListResponse is the payload of GET /api/metrics
type MetricsListResponse struct {
	Count   int                       `json:"count"`
	Metrics []contracts.MetricsRecord `json:"metrics"`
}

// GetLatest returns the most recent metrics record
// GET /api/metrics/latest
func (h *MetricsHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.cache != nil {
		var rec contracts.MetricsRecord
		found, err := h.cache.Get(ctx, redis.LatestMetricsKey(), &rec)
		if err != nil {
			h.logger.WithError(err).Warn("Latest metrics cache read failed")
		}
		if found {
			respondJSON(w, http.StatusOK, MetricsResponse{Metrics: rec, Structure: metrics.Structure(rec), Cached: true})
			return
		}
	}

	rec, err := h.repo.LatestMetrics(ctx)
	if errors.Is(err, storage.ErrNoMetrics) {
		respondError(w, http.StatusNotFound, "No metrics collected yet")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest metrics")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve latest metrics")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, redis.LatestMetricsKey(), rec, redis.TTLLatestMetrics); err != nil {
			h.logger.WithError(err).Warn("Latest metrics cache write failed")
		}
	}

	respondJSON(w, http.StatusOK, MetricsResponse{Metrics: *rec, Structure: metrics.Structure(*rec)})
}

// List returns metrics in a time range, newest first
// GET /api/metrics?from=2025-01-01&to=2025-02-01&limit=100
func (h *MetricsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := parseTime(q.Get("from"), h.loc)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'from' (expected YYYY-MM-DD or RFC3339)")
		return
	}
	to, err := parseTime(q.Get("to"), h.loc)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'to' (expected YYYY-MM-DD or RFC3339)")
		return
	}
	// 날짜만 주면 그 날 끝까지 포함
	if !to.IsZero() && len(q.Get("to")) == len("2006-01-02") {
		to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		respondError(w, http.StatusBadRequest, "'to' must not be before 'from'")
		return
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, "Invalid 'limit'")
			return
		}
	}

	records, err := h.repo.ListMetrics(r.Context(), from, to, storage.ClampLimit(limit))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list metrics")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}
	if records == nil {
		records = []contracts.MetricsRecord{}
	}

	respondJSON(w, http.StatusOK, MetricsListResponse{Count: len(records), Metrics: records})
}
