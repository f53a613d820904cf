package statement

import (
	"testing"

	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/stretchr/testify/assert"
)

func testSchema() Schema {
	return Schema{
		Format:     models.FileFormatDelimited,
		Delimiter:  ",",
		DateFormat: "%Y-%m-%d",
		HeaderRows: 1,
		FieldMapping: map[string]int{
			models.FieldDate:        0,
			models.FieldDescription: 1,
			models.FieldAmount:      2,
		},
	}
}

func TestCheckSchema_Valid(t *testing.T) {
	assert.Empty(t, CheckSchema(testSchema()))
}

func TestCheckSchema_Problems(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Schema)
		field  string
	}{
		{"missing amount", func(s *Schema) { delete(s.FieldMapping, models.FieldAmount) }, "field_mapping.amount"},
		{"bad date format", func(s *Schema) { s.DateFormat = "whenever" }, "date_format"},
		{"empty date format", func(s *Schema) { s.DateFormat = " " }, "date_format"},
		{"duplicate column", func(s *Schema) { s.FieldMapping[models.FieldReference] = 1 }, "field_mapping.reference"},
		{"negative column", func(s *Schema) { s.FieldMapping[models.FieldBalance] = -1 }, "field_mapping.balance"},
		{"unknown field", func(s *Schema) { s.FieldMapping["memo"] = 7 }, "field_mapping.memo"},
		{"long delimiter", func(s *Schema) { s.Delimiter = ";;" }, "delimiter"},
		{"unknown format", func(s *Schema) { s.Format = "PDF" }, "file_format"},
		{"negative header rows", func(s *Schema) { s.HeaderRows = -1 }, "header_rows"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSchema()
			tt.mutate(&s)
			problems := CheckSchema(s)
			if assert.NotEmpty(t, problems) {
				fields := make([]string, 0, len(problems))
				for _, p := range problems {
					fields = append(fields, p.Field)
				}
				assert.Contains(t, fields, tt.field)
			}
		})
	}
}

func TestSchema_MinColumns(t *testing.T) {
	s := testSchema()
	assert.Equal(t, 3, s.MinColumns())
	s.FieldMapping[models.FieldBalance] = 6
	assert.Equal(t, 7, s.MinColumns())
}
