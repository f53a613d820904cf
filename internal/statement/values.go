package statement

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Excel serial numbers for 1954-10-03 and 2119-01-10; anything in between that
// fails the configured layout is read as a spreadsheet date cell.
const (
	minExcelSerial = 20000
	maxExcelSerial = 80000
)

// ParseAmount parses a signed money amount. Thousands commas, blanks and currency
// symbols are ignored; "(12.50)" and "12.50-" are read as negative.
func ParseAmount(value string) (decimal.Decimal, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.Zero, errors.New("amount is empty")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasSuffix(s, "-") {
		negative = !negative
		s = strings.TrimSuffix(s, "-")
	}

	s = strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, s)
	if s == "" || s == "-" || s == "+" {
		return decimal.Zero, fmt.Errorf("invalid amount %q", value)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", value)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount.Round(2), nil
}

// ParseDate parses value with layout and returns the UTC calendar date.
// Spreadsheet serial numbers are accepted as a fallback.
func ParseDate(value, layout string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, errors.New("date is empty")
	}

	t, err := time.Parse(layout, s)
	if err != nil && len(s) > len(layout) {
		// cells often carry a trailing time part the layout does not describe
		if short, shortErr := time.Parse(layout, strings.TrimSpace(s[:len(layout)])); shortErr == nil {
			t, err = short, nil
		}
	}
	if err != nil {
		if serial, convErr := strconv.ParseFloat(s, 64); convErr == nil && serial > minExcelSerial && serial < maxExcelSerial {
			if excelTime, excelErr := excelize.ExcelDateToTime(serial, false); excelErr == nil {
				t, err = excelTime, nil
			}
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q for format %q", value, layout)
	}

	return DateOnly(t), nil
}

// DateOnly truncates t to midnight UTC of its calendar day
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
