package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vixterm/pkg/database"
	"github.com/wonny/vixterm/pkg/logger"
)

type fakeDB struct {
	health *database.Health
	err    error
}

func (f fakeDB) HealthCheck(context.Context) (*database.Health, error) { return f.health, f.err }

func serveHealth(t *testing.T, db DBChecker) (int, map[string]interface{}) {
	t.Helper()
	h := NewHealthHandler(db, logger.Nop())
	h.now = func() time.Time { return runTS }

	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthWithoutDatabase(t *testing.T) {
	code, body := serveHealth(t, nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "disabled", body["database"])
	assert.Equal(t, "2025-03-03T21:15:00Z", body["time"])
}

func TestHealthReportsPool(t *testing.T) {
	code, body := serveHealth(t, fakeDB{health: &database.Health{
		Healthy:   true,
		LatencyMS: 3,
		Pool:      database.PoolStats{MaxConns: 4, TotalConns: 1, IdleConns: 1},
	}})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	db, ok := body["database"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, db["healthy"])
	assert.Equal(t, float64(3), db["latency_ms"])
	pool := db["pool"].(map[string]interface{})
	assert.Equal(t, float64(4), pool["max_conns"])
}

func TestHealthDatabaseDown(t *testing.T) {
	err := errors.New("connection refused")
	code, body := serveHealth(t, fakeDB{
		health: &database.Health{Error: err.Error()},
		err:    err,
	})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
	db := body["database"].(map[string]interface{})
	assert.Equal(t, false, db["healthy"])
	assert.Equal(t, "connection refused", db["error"])
}
