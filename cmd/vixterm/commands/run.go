package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/vixterm/internal/contracts"
	"github.com/wonny/vixterm/pkg/redis"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "기간구조 1회 수집",
	Long: `VIX 선물 페이지를 한 번 수집하고 지표를 계산해 저장합니다.

이 명령어는:
- 오늘 기준 M1/M2/M4/M7 계약 심볼 계산
- CBOE 페이지(또는 --html 파일)에서 가격 추출
- 원본 행을 data 스키마에, 지표를 vix_metrics에 저장

페이지 수집이 실패해도 0 가격으로 지표 행은 저장됩니다.

Example:
  go run ./cmd/vixterm run
  go run ./cmd/vixterm run --dry-run
  go run ./cmd/vixterm run --html debug_page.html --json`,
	RunE: runCollect,
}

var (
	runHTMLPath string
	runDryRun   bool
	runJSON     bool
	runTimeout  time.Duration
)

func init() {
	rootCmd.AddCommand(runCmd)

	// Flags
	runCmd.Flags().StringVar(&runHTMLPath, "html", "", "로컬 HTML 파일에서 읽기 (네트워크 사용 안 함)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "DB 저장 없이 계산만")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "결과를 JSON으로 출력")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 2*time.Minute, "전체 실행 제한 시간")
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	opts := depsOptions{htmlPath: runHTMLPath, dryRun: runDryRun}
	d, err := buildDeps(ctx, opts)
	if err != nil {
		return err
	}
	defer d.Close()

	start := time.Now()
	result, runErr := d.runner.Run(ctx)

	if shouldCacheLatest(opts, result, runErr) {
		if err := d.cache.Set(ctx, redis.LatestMetricsKey(), result.Metrics, redis.TTLLatestMetrics); err != nil {
			d.log.WithError(err).Warn("Latest metrics cache write failed")
		}
	}

	if runJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return runErr
	}

	PrintJobHeader(JobMetadata{
		JobType:   "VIX Term Structure Collection",
		Tag:       "Run",
		Timestamp: start.Format("2006-01-02 15:04:05"),
		Source:    sourceLabel(d.cfg.CBOE.URL),
	})
	if result != nil {
		PrintRunResult(result, runDryRun)
	}

	if runErr != nil {
		PrintError(runErr.Error())
		return runErr
	}
	PrintJobCompletion("Run", time.Since(start).Seconds())
	return nil
}

// shouldCacheLatest limits metrics:latest to records that were saved from a live fetch.
// dry run은 저장하지 않고, --html 재생은 과거 페이지에 현재 시각이 찍힘
func shouldCacheLatest(opts depsOptions, result *contracts.RunResult, runErr error) bool {
	return result != nil && runErr == nil && opts.persistsLatest()
}

// sourceLabel describes where prices are read from
func sourceLabel(pageURL string) string {
	if runHTMLPath != "" {
		return "file " + runHTMLPath
	}
	return pageURL
}

// PrintRunResult prints contracts, prices and metrics of one run
func PrintRunResult(result *contracts.RunResult, dryRun bool) {
	fmt.Println()
	widths := []int{6, 10, 12, 12}
	PrintTableHeader([]string{"Slot", "Symbol", "Settlement", "Price"}, widths)
	for _, slot := range contracts.AllSlots {
		settlement := "-"
		if c, ok := futureForSlot(result.Contracts, slot); ok && c.HasSettlement() {
			settlement = c.Settlement.Format("2006-01-02")
		}
		PrintTableRow([]string{
			slot.String(),
			symbolOrDash(result.Contracts.SymbolFor(slot)),
			settlement,
			fmt.Sprintf("%.2f", result.Prices.Get(slot)),
		}, widths)
	}

	fmt.Println()
	m := result.Metrics
	PrintKeyValue("M1/M2 ratio", fmt.Sprintf("%.4f", m.M1M2Ratio), 12)
	PrintKeyValue("M1M2 avg", fmt.Sprintf("%.4f", m.M1M2Avg), 12)
	PrintKeyValue("M4M7 avg", fmt.Sprintf("%.4f", m.M4M7Avg), 12)
	PrintKeyValue("Slope", fmt.Sprintf("%.4f", m.Slope), 12)
	PrintKeyValue("Structure", result.Structure, 12)
	PrintKeyValue("Rows", fmt.Sprintf("%d scraped, %d saved", result.RowCount, result.RowsSaved), 12)

	if dryRun {
		PrintInfo("dry run: nothing was persisted")
	}
	if result.FetchError != "" {
		PrintWarning("page fetch failed, metrics computed from zero prices: " + result.FetchError)
	} else if result.Prices.Filled() == 0 {
		PrintWarning("no configured symbol matched the page")
	}
}

func futureForSlot(set contracts.ContractSet, slot contracts.PriceSlot) (contracts.Contract, bool) {
	switch slot {
	case contracts.SlotM1:
		return set.M1, true
	case contracts.SlotM2:
		return set.M2, true
	case contracts.SlotM4:
		return set.M4, true
	case contracts.SlotM7:
		return set.M7, true
	}
	return contracts.Contract{}, false
}

func symbolOrDash(s contracts.Symbol) string {
	if !s.Valid() {
		return "-"
	}
	return s.String()
}
