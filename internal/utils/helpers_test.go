package utils

import (
	"testing"

	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	tests := map[string]string{
		"0":           "0.00",
		"5":           "5.00",
		"-5000":       "-5,000.00",
		"1234567.891": "1,234,567.89",
		"100000":      "100,000.00",
		"999.5":       "999.50",
	}
	for in, want := range tests {
		if got := FormatAmount(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatAmount(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestPaginate(t *testing.T) {
	offset, limit := Paginate(3, 20)
	if offset != 40 || limit != 20 {
		t.Errorf("Paginate(3, 20) = %d, %d", offset, limit)
	}
	offset, limit = Paginate(0, 0)
	if offset != 0 || limit != DefaultPageSize {
		t.Errorf("Paginate(0, 0) = %d, %d", offset, limit)
	}
	if _, limit = Paginate(1, 10000); limit != MaxPageSize {
		t.Errorf("expected limit capped at %d, got %d", MaxPageSize, limit)
	}
}

type sampleRequest struct {
	FileFormat string `validate:"required,oneof=DELIMITED SPREADSHEET"`
	HeaderRows int    `validate:"gte=0"`
}

func TestValidateStruct(t *testing.T) {
	if err := ValidateStruct(sampleRequest{FileFormat: "DELIMITED"}); err != nil {
		t.Errorf("expected valid struct, got %v", err)
	}

	err := ValidateStruct(sampleRequest{FileFormat: "PDF", HeaderRows: -1})
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := FieldErrors(sampleRequest{FileFormat: "PDF", HeaderRows: -1})
	if len(details) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(details))
	}
	if details[0].Field != "file_format" {
		t.Errorf("expected file_format, got %s", details[0].Field)
	}
}
