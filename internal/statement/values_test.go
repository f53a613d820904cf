package statement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1000", "1000.00"},
		{"1,234.56", "1234.56"},
		{"-5,000", "-5000.00"},
		{"$ 12.5", "12.50"},
		{"(45.10)", "-45.10"},
		{"45.10-", "-45.10"},
		{" 0.005 ", "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "-", "12..5", "1.2.3"} {
		_, err := ParseAmount(in)
		assert.Error(t, err, "expected error for %q", in)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("01/03/2024", Layout("%d/%m/%Y"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-03-01 10:22:00", "2006-01-02")
	require.NoError(t, err)
	assert.Equal(t, 1, d.Day())

	// spreadsheet serial for 2024-03-01
	d, err = ParseDate("45352", Layout("DD/MM/YYYY"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("31/02/2024", Layout("%d/%m/%Y"))
	assert.Error(t, err)

	_, err = ParseDate("", "2006-01-02")
	assert.Error(t, err)
}

func TestLayout(t *testing.T) {
	assert.Equal(t, "02/01/2006", Layout("%d/%m/%Y"))
	assert.Equal(t, "02/01/2006", Layout("DD/MM/YYYY"))
	assert.Equal(t, "2006-01-02", Layout("2006-01-02"))
	assert.Equal(t, "02-Jan-06", Layout("%d-%b-%y"))
}

func TestContentHash(t *testing.T) {
	a := ContentHash([]byte("a,b\n"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, ContentHash([]byte("a,b\n")))
	assert.NotEqual(t, a, ContentHash([]byte("a,c\n")))
}
