package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/vixterm/internal/contracts"
	"github.com/wonny/vixterm/internal/extractor"
	"github.com/wonny/vixterm/internal/metrics"
	"github.com/wonny/vixterm/internal/resolver"
	"github.com/wonny/vixterm/pkg/logger"
)

// sampleSymbolCount is how many scraped symbols the mismatch warning shows
const sampleSymbolCount = 5

// Runner executes one collection run: resolve, scrape, extract, calculate, persist.
// Runs are serialized; the scheduler and the API share one Runner.
// ⭐ SSOT: 수집 실행 오케스트레이션은 여기서만
type Runner struct {
	source   contracts.QuoteSource
	quotes   contracts.QuoteRepository
	metrics  contracts.MetricsRepository
	resolver *resolver.Resolver
	logger   *logger.Logger

	now func() time.Time
	loc *time.Location

	mu sync.Mutex // one run at a time

	lastMu sync.RWMutex
	last   *contracts.RunResult
}

// NewRunner creates a new Runner.
// quotes and metrics may be nil, in which case nothing is persisted (dry run).
func NewRunner(
	source contracts.QuoteSource,
	quotes contracts.QuoteRepository,
	metricsRepo contracts.MetricsRepository,
	res *resolver.Resolver,
	log *logger.Logger,
) *Runner {
	if res == nil {
		res = resolver.New()
	}

	return &Runner{
		source:   source,
		quotes:   quotes,
		metrics:  metricsRepo,
		resolver: res,
		logger:   log.WithField("module", "collector"),
		now:      time.Now,
		loc:      time.UTC,
	}
}

// WithClock replaces the wall clock used for the run timestamp
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// WithLocation sets the timezone in which "today" is evaluated
func (r *Runner) WithLocation(loc *time.Location) *Runner {
	if loc != nil {
		r.loc = loc
	}
	return r
}

// Resolver returns the contract resolver used by runs
func (r *Runner) Resolver() *resolver.Resolver {
	return r.resolver
}

// Today returns the current date in the runner's timezone
func (r *Runner) Today() time.Time {
	return r.now().In(r.loc)
}

// Last returns a copy of the most recent run result, or nil
func (r *Runner) Last() *contracts.RunResult {
	r.lastMu.RLock()
	defer r.lastMu.RUnlock()

	if r.last == nil {
		return nil
	}
	cp := *r.last
	return &cp
}

// Run performs one collection run.
// A scrape failure never aborts the run: prices stay at zero and the metrics
// record is still written. Persistence errors are joined and returned together
// with the result.
func (r *Runner) Run(ctx context.Context) (*contracts.RunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	started := r.now()
	runTS := started
	log := r.logger.WithRun(runTS)

	set := r.resolver.Resolve(started.In(r.loc))
	log.WithFields(map[string]interface{}{
		"spot": set.Spot,
		"m1":   set.M1.Symbol,
		"m2":   set.M2.Symbol,
		"m4":   set.M4.Symbol,
		"m7":   set.M7.Symbol,
	}).Info("Resolved contract symbols")

	result := &contracts.RunResult{
		RunTimestamp: runTS,
		Contracts:    set,
	}

	ex := r.scrape(ctx, set, log, result)
	result.Prices = ex.Prices
	result.RowCount = len(ex.Rows)

	rec := metrics.Calculate(ex.Prices, runTS)
	result.Metrics = rec
	result.Structure = metrics.Structure(rec)

	log.WithFields(map[string]interface{}{
		"m1m2_ratio": rec.M1M2Ratio,
		"m1m2_avg":   rec.M1M2Avg,
		"m4m7_avg":   rec.M4M7Avg,
		"slope":      rec.Slope,
		"structure":  result.Structure,
	}).Info("Computed term structure metrics")

	err := r.persist(ctx, ex, rec, log, result)
	if err != nil {
		result.PersistError = err.Error()
	}

	result.Duration = r.now().Sub(started)
	r.remember(result)

	return result, err
}

// scrape fetches the table and extracts prices; failures degrade to empty slots
func (r *Runner) scrape(ctx context.Context, set contracts.ContractSet, log *logger.Logger, result *contracts.RunResult) extractor.Result {
	if r.source == nil {
		result.FetchError = "no quote source configured"
		log.Error("No quote source configured, continuing with empty prices")
		return extractor.Empty(nil)
	}

	table, err := r.source.FetchTable(ctx)
	if err != nil {
		result.FetchError = err.Error()
		log.WithError(err).Error("Error scraping VIX futures, continuing with empty prices")
		return extractor.Empty(nil)
	}

	ex := extractor.Extract(table, set)

	log.WithFields(map[string]interface{}{
		"rows": len(ex.Rows),
		"spot": ex.Prices.Spot,
		"m1":   ex.Prices.M1,
		"m2":   ex.Prices.M2,
		"m4":   ex.Prices.M4,
		"m7":   ex.Prices.M7,
	}).Info("Fetched quote prices")

	if ex.Unparsed > 0 {
		log.WithField("unparsed", ex.Unparsed).Warn("Some matched rows had unparsable prices, stored as 0")
	}

	// 심볼 형식이 페이지와 어긋나면 전 슬롯이 0이 되므로 진단 로그를 남김
	if len(ex.Rows) > 0 && !ex.FuturesMatched() {
		log.WithFields(map[string]interface{}{
			"unmatched": ex.UnmatchedSymbols(set),
			"scraped":   ex.SampleSymbols(sampleSymbolCount),
		}).Warn("No futures row matched the computed symbols")
	}

	return ex
}

// persist writes raw rows then metrics; both are attempted
func (r *Runner) persist(ctx context.Context, ex extractor.Result, rec contracts.MetricsRecord, log *logger.Logger, result *contracts.RunResult) error {
	var errs []error

	if r.quotes != nil && len(ex.Rows) > 0 {
		table := &contracts.QuoteTable{Headers: ex.Headers, Rows: ex.Rows}
		n, err := r.quotes.SaveRawRows(ctx, table, rec.RunTimestamp)
		if err != nil {
			log.WithError(err).Error("Failed to save raw quote rows")
			errs = append(errs, fmt.Errorf("save raw rows: %w", err))
		} else {
			result.RowsSaved = n
			log.WithField("rows", n).Info("Saved raw quote rows")
		}
	}

	if r.metrics != nil {
		if err := r.metrics.SaveMetrics(ctx, rec); err != nil {
			log.WithError(err).Error("Failed to save metrics")
			errs = append(errs, fmt.Errorf("save metrics: %w", err))
		} else {
			log.Info("Saved metrics")
		}
	}

	if r.quotes == nil && r.metrics == nil {
		log.Warn("Persistence disabled, results not stored")
	}

	return errors.Join(errs...)
}

func (r *Runner) remember(result *contracts.RunResult) {
	cp := *result

	r.lastMu.Lock()
	r.last = &cp
	r.lastMu.Unlock()
}
