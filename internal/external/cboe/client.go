package cboe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wonny/vixterm/internal/contracts"
	"github.com/wonny/vixterm/pkg/config"
	"github.com/wonny/vixterm/pkg/httputil"
	"github.com/wonny/vixterm/pkg/logger"
)

// DefaultPageURL is the public VIX futures quote page
const DefaultPageURL = "https://www.cboe.com/tradable_products/vix/vix_futures"

var (
	// ErrTableNotFound is returned when the page carries no <table>
	ErrTableNotFound = errors.New("futures table not found on page")
	// ErrUnexpectedStatus is returned for non-2xx page responses
	ErrUnexpectedStatus = errors.New("unexpected status from quote page")
)

// Client fetches the futures quote table
// ⭐ SSOT: CBOE 시세 페이지 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	pageURL    string
	debugPath  string
}

// NewClient creates a new CBOE client
func NewClient(httpClient *httputil.Client, cfg config.CBOEConfig, log *logger.Logger) *Client {
	pageURL := cfg.URL
	if pageURL == "" {
		pageURL = DefaultPageURL
	}

	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "cboe"),
		pageURL:    pageURL,
		debugPath:  cfg.DebugPagePath,
	}
}

// PageURL returns the page this client scrapes
func (c *Client) PageURL() string {
	return c.pageURL
}

// FetchTable downloads the page once and parses its first table
func (c *Client) FetchTable(ctx context.Context) (*contracts.QuoteTable, error) {
	c.logger.WithField("url", c.pageURL).Info("Loading quote page")

	body, err := c.httpClient.GetBody(ctx, c.pageURL)
	if err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) {
			return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, statusErr.StatusCode)
		}
		return nil, fmt.Errorf("fetch quote page: %w", err)
	}

	c.dumpPage(body)

	table, err := ParseTable(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"headers": table.Headers,
		"rows":    len(table.Rows),
	}).Info("Headers detected")

	return table, nil
}

// dumpPage writes the raw page for debugging; failures are only logged
func (c *Client) dumpPage(body []byte) {
	if c.debugPath == "" {
		return
	}

	if dir := filepath.Dir(c.debugPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			c.logger.WithError(err).Warn("Failed to create debug page directory")
			return
		}
	}
	if err := os.WriteFile(c.debugPath, body, 0o644); err != nil {
		c.logger.WithError(err).Warn("Failed to write debug page")
		return
	}
	c.logger.WithField("path", c.debugPath).Debug("Saved page for debugging")
}
