package main

import (
	"os"

	"github.com/limistah/bank-reconciliation/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
