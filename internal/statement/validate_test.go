package statement

import (
	"fmt"
	"strings"
	"testing"

	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const fiveRows = `date,description,amount
2024-03-01,Pago cliente,"1,000.00"
2024-03-02,COMISION MANEJO CUENTA,-5000
2024-03-03,Transferencia,not-a-number
2024-03-04,Intereses,12.34
2024-03-05,Retiro cajero,-200
`

func readTestRows(t *testing.T, data string) [][]string {
	t.Helper()
	rows, err := ReadRows([]byte(data), testSchema())
	require.NoError(t, err)
	return rows
}

func TestParse_PartialSuccess(t *testing.T) {
	rows := readTestRows(t, fiveRows)

	candidates, skipped := Parse(rows, testSchema())
	require.Len(t, candidates, 4)
	require.Len(t, skipped, 1)
	assert.Equal(t, 3, skipped[0].Row)
	assert.Equal(t, models.FieldAmount, skipped[0].Field)

	assert.Equal(t, "1000.00", candidates[0].Amount.StringFixed(2))
	assert.Equal(t, "Pago cliente", candidates[0].Description)
	assert.Equal(t, candidates[0].TransactionDate, candidates[0].ValueDate)
	assert.Equal(t, 4, candidates[2].Row)
}

func TestValidate_ReportsRowErrors(t *testing.T) {
	rows := readTestRows(t, fiveRows)

	result := Validate(rows, testSchema(), Options{})
	assert.False(t, result.Valid)
	assert.Equal(t, 5, result.TotalRows)
	assert.Equal(t, 4, result.ValidRows)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, 4, result.Errors[0].Line)
	assert.Len(t, result.SampleRows, 4)
}

func TestValidate_ValidFile(t *testing.T) {
	data := "date,description,amount\n2024-03-01,Pago,10\n\n2024-03-02,Cargo,-3\n"
	result := Validate(readTestRows(t, data), testSchema(), Options{SampleSize: 1})
	assert.True(t, result.Valid)
	assert.Equal(t, 2, result.TotalRows)
	assert.Len(t, result.SampleRows, 1)
	assert.Empty(t, result.Errors)
}

func TestValidate_ColumnCountAndDescription(t *testing.T) {
	data := "date,description,amount\n2024-03-01,Pago\n2024-03-02,,5\n"
	result := Validate(readTestRows(t, data), testSchema(), Options{})
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0].Message, "expected at least 3 columns")
	assert.Equal(t, models.FieldDescription, result.Errors[1].Field)
}

func TestValidate_RowCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("date,description,amount\n")
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "2024-03-01,Row %d,%d\n", i, i+1)
	}
	result := Validate(readTestRows(t, b.String()), testSchema(), Options{MaxRows: 10})
	assert.Equal(t, 10, result.TotalRows)
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "more than 10")
}

func TestValidate_InvalidSchema(t *testing.T) {
	s := testSchema()
	delete(s.FieldMapping, models.FieldDate)
	result := Validate([][]string{{"a"}}, s, Options{})
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestParse_OptionalFields(t *testing.T) {
	s := testSchema()
	s.Delimiter = ";"
	s.FieldMapping[models.FieldValueDate] = 3
	s.FieldMapping[models.FieldReference] = 4
	s.FieldMapping[models.FieldBalance] = 5
	data := "date;description;amount;value;ref;balance\n" +
		"2024-03-01;Pago;10;2024-03-02;R-1;n/a\n" +
		"2024-03-01;Pago;10;garbage;R-2;1010\n"
	rows, err := ReadRows([]byte(data), s)
	require.NoError(t, err)

	candidates, skipped := Parse(rows, s)
	require.Empty(t, skipped)
	require.Len(t, candidates, 2)
	assert.Equal(t, 2, candidates[0].ValueDate.Day())
	assert.Equal(t, "R-1", candidates[0].Reference)
	assert.Nil(t, candidates[0].Balance)
	assert.Equal(t, 1, candidates[1].ValueDate.Day())
	require.NotNil(t, candidates[1].Balance)
	assert.Equal(t, "1010.00", candidates[1].Balance.StringFixed(2))
}

func TestReadRows_Spreadsheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"date", "description", "amount"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"2024-03-01", "Pago cliente", "1000"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"2024-03-02", "Comision", "-5"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	s := testSchema()
	s.Format = models.FileFormatSpreadsheet
	rows, err := ReadRows(buf.Bytes(), s)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	candidates, skipped := Parse(rows, s)
	assert.Empty(t, skipped)
	require.Len(t, candidates, 2)
	assert.Equal(t, "-5.00", candidates[1].Amount.StringFixed(2))
}

func TestReadRows_Errors(t *testing.T) {
	_, err := ReadRows(nil, testSchema())
	assert.Error(t, err)

	s := testSchema()
	s.Format = models.FileFormatSpreadsheet
	_, err = ReadRows([]byte("definitely not a workbook"), s)
	assert.Error(t, err)
}

func TestReadRows_TabDelimiterAndBOM(t *testing.T) {
	s := testSchema()
	s.Delimiter = "tab"
	rows, err := ReadRows([]byte("\xEF\xBB\xBFdate\tdescription\tamount\n2024-03-01\tPago\t5\n"), s)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "date", rows[0][0])
	assert.Equal(t, "Pago", rows[1][1])
}
