package commands

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/limistah/bank-reconciliation/internal/adjustments"
)

func newClassifyCommand() *cobra.Command {
	var amount string

	cmd := &cobra.Command{
		Use:   "classify <description>",
		Short: "Show which adjustment category a bank movement falls in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			return runClassify(cmd.OutOrStdout(), args[0], value)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "signed movement amount, negative for debits (required)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runClassify(out io.Writer, description string, amount decimal.Decimal) error {
	category, ok := adjustments.Classify(description, amount)
	if !ok {
		fmt.Fprintln(out, "unclassified")
		return nil
	}

	side := "expense: debit category account, credit bank"
	if category.Nature() == adjustments.NatureIncome {
		side = "income: debit bank, credit category account"
	}
	fmt.Fprintf(out, "%s (%s)\n", category, side)
	return nil
}
