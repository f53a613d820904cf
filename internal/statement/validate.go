package statement

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultSampleSize is how many parsed rows a validation echoes back
const DefaultSampleSize = 5

// Candidate is a movement parsed from one statement row, not yet persisted
type Candidate struct {
	Row             int              `json:"row"`
	Line            int              `json:"line"`
	TransactionDate time.Time        `json:"transaction_date"`
	ValueDate       time.Time        `json:"value_date"`
	Amount          decimal.Decimal  `json:"amount"`
	Description     string           `json:"description"`
	Reference       string           `json:"reference,omitempty"`
	TransactionType string           `json:"transaction_type,omitempty"`
	Balance         *decimal.Decimal `json:"balance,omitempty"`
}

// Options tune a validation run
type Options struct {
	// MaxRows caps the data rows examined; zero means DefaultMaxRows
	MaxRows int
	// SampleSize is the number of parsed rows returned; zero means DefaultSampleSize
	SampleSize int
}

// ValidationResult reports whether a file conforms to a schema
type ValidationResult struct {
	Valid      bool                   `json:"valid"`
	Errors     []apperrors.FieldError `json:"errors"`
	Warnings   []string               `json:"warnings"`
	SampleRows []Candidate            `json:"sample_rows"`
	TotalRows  int                    `json:"total_rows"`
	ValidRows  int                    `json:"valid_rows"`
}

// Validate checks every data row of rows against schema without stopping at the first error
func Validate(rows [][]string, schema Schema, opts Options) ValidationResult {
	maxRows := opts.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	sampleSize := opts.SampleSize
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	result := ValidationResult{
		Errors:     []apperrors.FieldError{},
		Warnings:   []string{},
		SampleRows: []Candidate{},
	}

	if problems := CheckSchema(schema); len(problems) > 0 {
		result.Errors = append(result.Errors, problems...)
		return result
	}

	truncated := eachDataRow(rows, schema, maxRows, func(row, line int, cells []string) {
		result.TotalRows++
		candidate, errs, warnings := parseRow(row, line, cells, schema)
		result.Warnings = append(result.Warnings, warnings...)
		if len(errs) > 0 {
			result.Errors = append(result.Errors, errs...)
			return
		}
		result.ValidRows++
		if len(result.SampleRows) < sampleSize {
			result.SampleRows = append(result.SampleRows, candidate)
		}
	})

	if truncated {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("file has more than %d data rows; only the first %d were validated", maxRows, maxRows))
	}
	if result.TotalRows == 0 {
		result.Warnings = append(result.Warnings, "file has no data rows")
	}

	result.Valid = len(result.Errors) == 0 && result.TotalRows > 0
	return result
}

// Parse converts every data row into a Candidate. Rows with an unusable required
// field are skipped and returned as errors; the rest of the file is still parsed.
func Parse(rows [][]string, schema Schema) ([]Candidate, []apperrors.FieldError) {
	var candidates []Candidate
	var skipped []apperrors.FieldError

	eachDataRow(rows, schema, 0, func(row, line int, cells []string) {
		candidate, errs, _ := parseRow(row, line, cells, schema)
		if len(errs) > 0 {
			log.Printf("[statement] skipping row %d (line %d): %s", row, line, errs[0].Message)
			skipped = append(skipped, errs...)
			return
		}
		candidates = append(candidates, candidate)
	})

	return candidates, skipped
}

// eachDataRow calls fn for every non-blank row after the header rows. Rows are
// numbered from 1 among data rows; line is the 1-based physical line. A positive
// limit stops the walk and reports true when rows were left out.
func eachDataRow(rows [][]string, schema Schema, limit int, fn func(row, line int, cells []string)) bool {
	seen := 0
	for i := schema.HeaderRows; i < len(rows); i++ {
		cells := rows[i]
		if isBlank(cells) {
			continue
		}
		if limit > 0 && seen >= limit {
			return true
		}
		seen++
		fn(i-schema.HeaderRows+1, i+1, cells)
	}
	return false
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRow(row, line int, cells []string, schema Schema) (Candidate, []apperrors.FieldError, []string) {
	var errs []apperrors.FieldError
	var warnings []string

	fail := func(field, value, message string) {
		errs = append(errs, apperrors.FieldError{Row: row, Line: line, Field: field, Value: value, Message: message})
	}

	if need := schema.MinColumns(); len(cells) < need {
		fail("", "", fmt.Sprintf("expected at least %d columns, found %d", need, len(cells)))
		return Candidate{}, errs, nil
	}

	cell := func(field string) (string, bool) {
		idx, ok := schema.column(field)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(cells[idx]), true
	}

	candidate := Candidate{Row: row, Line: line}
	layout := schema.Layout()

	rawDate, _ := cell(models.FieldDate)
	date, err := ParseDate(rawDate, layout)
	if err != nil {
		fail(models.FieldDate, rawDate, err.Error())
	}
	candidate.TransactionDate = date

	rawAmount, _ := cell(models.FieldAmount)
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		fail(models.FieldAmount, rawAmount, err.Error())
	}
	candidate.Amount = amount

	description, _ := cell(models.FieldDescription)
	if description == "" {
		fail(models.FieldDescription, "", "description is empty")
	}
	candidate.Description = description

	if len(errs) > 0 {
		return Candidate{}, errs, nil
	}

	candidate.ValueDate = candidate.TransactionDate
	if raw, ok := cell(models.FieldValueDate); ok && raw != "" {
		if valueDate, err := ParseDate(raw, layout); err == nil {
			candidate.ValueDate = valueDate
		} else {
			warnings = append(warnings, fmt.Sprintf("row %d: value date %q ignored", row, raw))
		}
	}

	if raw, ok := cell(models.FieldReference); ok {
		candidate.Reference = raw
	}
	if raw, ok := cell(models.FieldTransactionType); ok {
		candidate.TransactionType = raw
	}
	if raw, ok := cell(models.FieldBalance); ok && raw != "" {
		if balance, err := ParseAmount(raw); err == nil {
			candidate.Balance = &balance
		} else {
			warnings = append(warnings, fmt.Sprintf("row %d: balance %q ignored", row, raw))
		}
	}

	return candidate, nil, warnings
}
