// Package statement reads bank statement files and turns their rows into
// movement candidates according to a declarative import schema.
package statement

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"github.com/limistah/bank-reconciliation/internal/models"
)

// DefaultMaxRows bounds how many data rows a single validation looks at
const DefaultMaxRows = 10000

// canonicalSampleDate is used to check that a date format round-trips
var canonicalSampleDate = time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

// Schema is the engine view of an import configuration
type Schema struct {
	Format       models.FileFormat
	Delimiter    string
	DateFormat   string
	HeaderRows   int
	FieldMapping map[string]int
}

// SchemaFromConfiguration converts a stored configuration into a Schema
func SchemaFromConfiguration(cfg *models.ImportConfiguration) Schema {
	return Schema{
		Format:       cfg.FileFormat,
		Delimiter:    cfg.Delimiter,
		DateFormat:   cfg.DateFormat,
		HeaderRows:   cfg.HeaderRows,
		FieldMapping: cfg.FieldMapping,
	}
}

// column returns the mapped index of field, if any
func (s Schema) column(field string) (int, bool) {
	idx, ok := s.FieldMapping[field]
	return idx, ok && idx >= 0
}

// MinColumns is the number of columns a data row needs to hold every mapped field
func (s Schema) MinColumns() int {
	max := -1
	for _, idx := range s.FieldMapping {
		if idx > max {
			max = idx
		}
	}
	return max + 1
}

// Layout returns the Go time layout for the schema's date format
func (s Schema) Layout() string {
	return Layout(s.DateFormat)
}

var strftimeReplacer = strings.NewReplacer(
	"%d", "02",
	"%m", "01",
	"%Y", "2006",
	"%y", "06",
	"%H", "15",
	"%M", "04",
	"%S", "05",
	"%b", "Jan",
	"%B", "January",
)

var tokenReplacer = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"DD", "02",
)

// Layout converts strftime-style ("%d/%m/%Y") or token-style ("DD/MM/YYYY")
// patterns to Go layouts. Anything else is taken as a Go layout already.
func Layout(pattern string) string {
	switch {
	case strings.Contains(pattern, "%"):
		return strftimeReplacer.Replace(pattern)
	case strings.Contains(pattern, "YY") || strings.Contains(pattern, "DD"):
		return tokenReplacer.Replace(pattern)
	default:
		return pattern
	}
}

// CheckSchema returns the structural problems of a schema. An empty result means
// the schema is usable.
func CheckSchema(s Schema) []apperrors.FieldError {
	var problems []apperrors.FieldError

	switch s.Format {
	case models.FileFormatDelimited:
		if _, err := delimiterRune(s.Delimiter); err != nil {
			problems = append(problems, apperrors.FieldError{Field: "delimiter", Value: s.Delimiter, Message: err.Error()})
		}
	case models.FileFormatSpreadsheet:
	default:
		problems = append(problems, apperrors.FieldError{Field: "file_format", Value: string(s.Format), Message: "unsupported file format"})
	}

	if s.HeaderRows < 0 {
		problems = append(problems, apperrors.FieldError{Field: "header_rows", Message: "must not be negative"})
	}

	for _, field := range models.RequiredFields {
		if _, ok := s.FieldMapping[field]; !ok {
			problems = append(problems, apperrors.FieldError{Field: "field_mapping." + field, Message: "required field is not mapped"})
		}
	}

	known := make(map[string]bool)
	for _, f := range models.RequiredFields {
		known[f] = true
	}
	for _, f := range models.OptionalFields {
		known[f] = true
	}

	fields := make([]string, 0, len(s.FieldMapping))
	for f := range s.FieldMapping {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	seen := make(map[int]string)
	for _, field := range fields {
		idx := s.FieldMapping[field]
		if !known[field] {
			problems = append(problems, apperrors.FieldError{Field: "field_mapping." + field, Message: "unknown field"})
			continue
		}
		if idx < 0 {
			problems = append(problems, apperrors.FieldError{Field: "field_mapping." + field, Message: "column index must not be negative"})
			continue
		}
		if other, dup := seen[idx]; dup {
			problems = append(problems, apperrors.FieldError{
				Field:   "field_mapping." + field,
				Message: fmt.Sprintf("column %d is already mapped to %s", idx, other),
			})
			continue
		}
		seen[idx] = field
	}

	if strings.TrimSpace(s.DateFormat) == "" {
		problems = append(problems, apperrors.FieldError{Field: "date_format", Message: "date format is required"})
	} else {
		layout := s.Layout()
		sample := canonicalSampleDate.Format(layout)
		parsed, err := time.Parse(layout, sample)
		if err != nil || !sameDay(parsed, canonicalSampleDate) {
			problems = append(problems, apperrors.FieldError{
				Field:   "date_format",
				Value:   s.DateFormat,
				Message: "date format cannot parse the sample date 2024-01-31",
			})
		}
	}

	return problems
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
