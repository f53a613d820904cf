package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/limistah/bank-reconciliation/internal/statement"
)

func newValidateCommand() *cobra.Command {
	var schemaPath string
	var maxRows int
	var sample int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate <statement-file>",
		Short: "Check a statement file against a YAML import schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), args[0], schemaPath, statement.Options{MaxRows: maxRows, SampleSize: sample}, asJSON)
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to the YAML schema (required)")
	_ = cmd.MarkFlagRequired("schema")
	cmd.Flags().IntVar(&maxRows, "max-rows", 0, "data rows to check (0 checks up to the default cap)")
	cmd.Flags().IntVar(&sample, "sample", 5, "parsed rows to print")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")

	return cmd
}

func runValidate(out io.Writer, filePath, schemaPath string, opts statement.Options, asJSON bool) error {
	cfg, err := loadSchema(schemaPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading statement: %w", err)
	}

	schema := statement.SchemaFromConfiguration(cfg)
	rows, err := statement.ReadRows(data, schema)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(filePath), err)
	}
	result := statement.Validate(rows, schema, opts)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "%s: %d rows, %d valid, %d errors\n",
			filepath.Base(filePath), result.TotalRows, result.ValidRows, len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  error   %s\n", e.String())
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  warning %s\n", w)
		}
		for _, c := range result.SampleRows {
			fmt.Fprintf(out, "  row %-4d %s %12s  %s\n",
				c.Row, c.TransactionDate.Format("2006-01-02"), c.Amount.StringFixed(2), c.Description)
		}
	}

	if !result.Valid {
		return fmt.Errorf("%s does not match the schema", filepath.Base(filePath))
	}
	return nil
}
