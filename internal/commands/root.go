// Package commands implements reconctl, the operator CLI.
package commands

import (
	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "dev"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "reconctl",
		Short:   "Offline tools for bank statement reconciliation",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newClassifyCommand())
	rootCmd.AddCommand(newTokenCommand())

	return rootCmd
}
