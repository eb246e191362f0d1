package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	env         string
	verbose     bool
	profilePath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vixterm",
	Short: "VIX 선물 기간구조 수집기",
	Long: `vixterm Unified CLI

CBOE VIX 선물 페이지를 수집해 현물/M1/M2/M4/M7 가격을 뽑고
기간구조 지표(M1-M2 ratio, 평균, slope)를 PostgreSQL에 저장합니다.

Usage:
  go run ./cmd/vixterm [command]

Examples:
  go run ./cmd/vixterm run
  go run ./cmd/vixterm run --html debug_page.html --dry-run
  go run ./cmd/vixterm contracts --date 2025-03-19
  go run ./cmd/vixterm scheduler start --profile config/vix_term_structure.yaml
  go run ./cmd/vixterm api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug log level)")
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "YAML collection profile layered over env (e.g. config/vix_term_structure.yaml)")
}
