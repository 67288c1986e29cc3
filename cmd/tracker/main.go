package main

import (
	"os"

	"github.com/wonny/stocktracker/cmd/tracker/commands"
)

// main is the entry point for the stock tracker CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/tracker [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
