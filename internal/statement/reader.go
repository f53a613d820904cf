package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/xuri/excelize/v2"
)

var (
	utf8BOM      = []byte{0xEF, 0xBB, 0xBF}
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// ReadRows splits a statement file into raw cell rows according to the schema format
func ReadRows(data []byte, schema Schema) ([][]string, error) {
	if len(data) == 0 {
		return nil, errors.New("file is empty")
	}

	switch schema.Format {
	case models.FileFormatDelimited, "":
		delimiter, err := delimiterRune(schema.Delimiter)
		if err != nil {
			return nil, err
		}
		return readDelimited(data, delimiter)
	case models.FileFormatSpreadsheet:
		return readSpreadsheet(data)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", schema.Format)
	}
}

func delimiterRune(delimiter string) (rune, error) {
	switch delimiter {
	case "":
		return ',', nil
	case "\t", `\t`, "tab", "TAB":
		return '\t', nil
	}
	if utf8.RuneCountInString(delimiter) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}
	r, _ := utf8.DecodeRuneInString(delimiter)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", delimiter)
	}
	return r, nil
}

func readDelimited(data []byte, delimiter rune) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading delimited file: %w", err)
	}
	return rows, nil
}

// readSpreadsheet reads the first sheet of an xlsx workbook, falling back to the
// legacy binary xls format.
func readSpreadsheet(data []byte) ([][]string, error) {
	xl, xlErr := excelize.OpenReader(bytes.NewReader(data))
	if xlErr == nil {
		defer xl.Close()
		rows, err := xl.GetRows(xl.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("reading spreadsheet rows: %w", err)
		}
		return rows, nil
	}

	if !bytes.HasPrefix(data, oleSignature) {
		return nil, fmt.Errorf("reading spreadsheet: %w", xlErr)
	}
	book, xlsErr := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if xlsErr != nil {
		return nil, fmt.Errorf("reading spreadsheet: %w", xlErr)
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("spreadsheet has no sheets")
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
