package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vixterm/pkg/config"
)

func newBufferLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	cfg := &config.Config{Env: "development", LogLevel: level, LogFormat: "json"}
	return NewWithWriter(cfg, buf), buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	return entry
}

func TestNewSetsGlobalLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, _ := newBufferLogger(t, tt.level)
			require.NotNil(t, log)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, parseLogLevel("WARNING"))
	assert.Equal(t, zerolog.InfoLevel, parseLogLevel("nonsense"))
	assert.Equal(t, zerolog.InfoLevel, parseLogLevel(""))
}

func TestJSONOutputCarriesServiceAndEnv(t *testing.T) {
	log, buf := newBufferLogger(t, "info")

	log.Info("run finished")

	entry := decodeLine(t, buf)
	assert.Equal(t, "run finished", entry["message"])
	assert.Equal(t, "vixterm", entry["service"])
	assert.Equal(t, "development", entry["env"])
	assert.Equal(t, "info", entry["level"])
}

func TestWithFieldsAndError(t *testing.T) {
	log, buf := newBufferLogger(t, "debug")

	log.WithFields(map[string]interface{}{
		"m1": "VX/H5",
		"m2": "VX/J5",
	}).WithError(errors.New("boom")).Error("fetch failed")

	entry := decodeLine(t, buf)
	assert.Equal(t, "VX/H5", entry["m1"])
	assert.Equal(t, "VX/J5", entry["m2"])
	assert.Equal(t, "boom", entry["error"])
}

func TestWithRun(t *testing.T) {
	log, buf := newBufferLogger(t, "info")
	ts := time.Date(2025, 3, 3, 16, 15, 0, 0, time.UTC)

	log.WithRun(ts).Info("metrics saved")

	entry := decodeLine(t, buf)
	assert.Equal(t, ts.Format(zerolog.TimeFieldFormat), entry["run_ts"])
}

func TestLevelFiltering(t *testing.T) {
	log, buf := newBufferLogger(t, "warn")

	log.Info("hidden")
	log.Debugf("hidden %d", 1)
	assert.Zero(t, buf.Len())

	log.Warnf("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().WithField("k", "v").Error("discarded")
	})
}
