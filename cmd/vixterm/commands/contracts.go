package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/vixterm/internal/contracts"
	"github.com/wonny/vixterm/internal/resolver"
)

// contractsCmd represents the contracts command
var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "날짜 기준 계약 심볼 조회",
	Long: `주어진 날짜(기본: 오늘)의 M1/M2/M4/M7 계약과 정산일을 출력합니다.
DB나 네트워크는 사용하지 않습니다.

Example:
  go run ./cmd/vixterm contracts
  go run ./cmd/vixterm contracts --date 2025-03-19`,
	RunE: showContracts,
}

var contractsDate string

func init() {
	rootCmd.AddCommand(contractsCmd)

	contractsCmd.Flags().StringVar(&contractsDate, "date", "", "기준 날짜 (YYYY-MM-DD)")
}

func showContracts(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	loc := cfg.Location()

	today := time.Now().In(loc)
	if contractsDate != "" {
		today, err = time.ParseInLocation("2006-01-02", contractsDate, loc)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", contractsDate, err)
		}
	}

	res := resolver.New(
		resolver.WithRoot(cfg.Contracts.FuturesRoot),
		resolver.WithSpotSymbol(cfg.Contracts.SpotSymbol),
	)
	PrintContractSet(res.Resolve(today))
	return nil
}

// PrintContractSet prints the resolved contracts as a table
func PrintContractSet(set contracts.ContractSet) {
	fmt.Printf("Contracts for %s (spot %s)\n\n", set.Today.Format("2006-01-02"), symbolOrDash(set.Spot))

	widths := []int{5, 8, 10, 12}
	PrintTableHeader([]string{"Slot", "Month", "Symbol", "Settlement"}, widths)
	for _, c := range set.Futures() {
		settlement := "-"
		if c.HasSettlement() {
			settlement = c.Settlement.Format("2006-01-02")
		}
		PrintTableRow([]string{c.Label, c.Month.String(), symbolOrDash(c.Symbol), settlement}, widths)
	}
}
