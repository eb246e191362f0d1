package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/vixterm/internal/api/handlers"
	"github.com/wonny/vixterm/pkg/logger"
)

// Handlers groups the endpoint handlers mounted by NewRouter
type Handlers struct {
	Health    *handlers.HealthHandler
	Metrics   *handlers.MetricsHandler
	Contracts *handlers.ContractsHandler
	Runs      *handlers.RunHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)

	// Health check
	if h.Health != nil {
		r.HandleFunc("/health", h.Health.Check).Methods("GET")
	} else {
		r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	}

	// /api 라우트는 루트 라우터에 전체 경로로 등록 (서브라우터는 405 대신 404를 반환)

	// Metrics endpoints
	if h.Metrics != nil {
		r.HandleFunc("/api/metrics/latest", h.Metrics.GetLatest).Methods("GET")
		r.HandleFunc("/api/metrics", h.Metrics.List).Methods("GET")
	}

	// Contract endpoints
	if h.Contracts != nil {
		r.HandleFunc("/api/contracts", h.Contracts.GetContracts).Methods("GET")
		r.HandleFunc("/api/contracts/decode", h.Contracts.DecodeSymbol).Methods("GET")
	}

	// Manual runs
	if h.Runs != nil {
		r.HandleFunc("/api/runs", h.Runs.Trigger).Methods("POST")
		r.HandleFunc("/api/runs/last", h.Runs.GetLast).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler answers /health when no database is wired
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "vixterm-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
