package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// SanitizeString trims whitespace from string
func SanitizeString(input string) string {
	return strings.TrimSpace(input)
}

// Paginate converts a 1-based page and a page size to offset and limit
func Paginate(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return (page - 1) * pageSize, pageSize
}

// FormatAmount renders a money amount with two decimals and thousands separators
func FormatAmount(amount decimal.Decimal) string {
	s := amount.Abs().StringFixed(2)
	parts := strings.SplitN(s, ".", 2)
	integerPart := parts[0]

	if len(integerPart) > 3 {
		var b strings.Builder
		lead := len(integerPart) % 3
		if lead > 0 {
			b.WriteString(integerPart[:lead])
		}
		for i := lead; i < len(integerPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(integerPart[i : i+3])
		}
		integerPart = b.String()
	}

	out := integerPart + "." + parts[1]
	if amount.IsNegative() {
		return "-" + out
	}
	return out
}
