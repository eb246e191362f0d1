package main

import (
	"os"

	"github.com/wonny/vixterm/cmd/vixterm/commands"
)

// main is the entry point for the vixterm CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/vixterm [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
