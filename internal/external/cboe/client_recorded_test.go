package cboe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vixterm/pkg/config"
	"github.com/wonny/vixterm/pkg/httputil"
	"github.com/wonny/vixterm/pkg/logger"
)

// Replays a recorded fetch of the live page.
// Skips when the cassette is absent and RECORD_CASSETTES != 1.
func TestClient_FetchTable_Recorded(t *testing.T) {
	cassette := filepath.Join("testdata", "cassettes", "vix_futures")
	if _, err := os.Stat(cassette + ".yaml"); os.IsNotExist(err) {
		if os.Getenv("RECORD_CASSETTES") != "1" {
			t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s.yaml", cassette)
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(cassette), 0o755))
	}

	r, err := recorder.New(cassette)
	require.NoError(t, err)
	defer func() { _ = r.Stop() }()

	cfg := config.CBOEConfig{URL: DefaultPageURL}
	httpClient := httputil.New(&config.Config{CBOE: cfg}, logger.Nop()).WithTransport(r)
	client := NewClient(httpClient, cfg, logger.Nop())

	table, err := client.FetchTable(context.Background())
	if err != nil {
		// 페이지가 JS 렌더링이면 정적 HTML에 테이블이 없을 수 있음
		assert.ErrorIs(t, err, ErrTableNotFound)
		return
	}
	assert.NotEmpty(t, table.Headers)
	assert.NotEmpty(t, table.Rows)
}
