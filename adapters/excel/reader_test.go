package excel

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"datadash/domain/table"
	"datadash/internal/errors"
	"datadash/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestReader() *DataReader {
	return NewDataReader(DefaultExcelConfig(), logging.NewLoggerTo(&bytes.Buffer{}, logging.LogLevelError))
}

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	// a second sheet must be ignored
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Other", "A1", "ignored"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadCSV(t *testing.T) {
	tbl, err := newTestReader().Read("sales.csv", strings.NewReader("region,sales\neast,10\nwest,20\neast,30\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "sales"}, tbl.ColumnNames())
	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"sales"}, tbl.NumericColumns())
	assert.Equal(t, []float64{10, 20, 30}, tbl.Floats("sales"))
}

func TestReadCSVUppercaseExtension(t *testing.T) {
	tbl, err := newTestReader().Read("DATA.CSV", strings.NewReader("a\n1\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.NumRows())
}

func TestReadCSVShortRowsArePadded(t *testing.T) {
	tbl, err := newTestReader().Read("x.csv", strings.NewReader("a,b,c\n1,2\n\n3,4,5\n"))
	require.NoError(t, err)

	require.Equal(t, 2, tbl.NumRows())
	assert.True(t, tbl.Rows[0][2].Missing)
	assert.Equal(t, []string{"a", "b", "c"}, tbl.NumericColumns())
}

func TestReadCSVTooManyFields(t *testing.T) {
	_, err := newTestReader().Read("x.csv", strings.NewReader("a,b\n1,2\n1,2,3\n"))

	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "line 3")
}

func TestReadCSVMalformedQuotes(t *testing.T) {
	_, err := newTestReader().Read("x.csv", strings.NewReader("a,b\n\"1,2\n"))

	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := newTestReader().Read("x.csv", strings.NewReader(""))

	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestReadCSVHeaderOnly(t *testing.T) {
	tbl, err := newTestReader().Read("x.csv", strings.NewReader("a,b\n"))
	require.NoError(t, err)

	assert.Equal(t, 0, tbl.NumRows())
	assert.Equal(t, 2, tbl.NumColumns())
}

func TestReadCSVHeaderNormalization(t *testing.T) {
	tbl, err := newTestReader().Read("x.csv", strings.NewReader("\ufeffid,,id,id\n1,2,3,4\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "Unnamed: 1", "id.1", "id.2"}, tbl.ColumnNames())
}

func TestReadCSVMixedColumnIsText(t *testing.T) {
	tbl, err := newTestReader().Read("x.csv", strings.NewReader("code,qty\nA1,1\n7,NA\n"))
	require.NoError(t, err)

	col, ok := tbl.Column("code")
	require.True(t, ok)
	assert.Equal(t, table.KindText, col.Kind)
	qty, _ := tbl.Column("qty")
	assert.Equal(t, table.KindNumeric, qty.Kind)
	assert.Equal(t, []float64{1}, tbl.Floats("qty"))
}

func TestReadExcelFirstSheet(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"region", "sales"},
		{"east", 10},
		{"west", 20.5},
	})

	tbl, err := newTestReader().Read("book.xlsx", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "sales"}, tbl.ColumnNames())
	assert.Equal(t, []float64{10, 20.5}, tbl.Floats("sales"))
}

func TestReadExcelWideRowAddsUnnamedColumn(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"a"},
		{1, "extra"},
	})

	tbl, err := newTestReader().Read("book.xlsx", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "Unnamed: 1"}, tbl.ColumnNames())
}

func TestReadExcelDatesAndBooleansAreText(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"when", "flag", "sales"},
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true, 10},
		{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), false, 30},
		{time.Date(2024, 1, 3, 8, 30, 0, 0, time.UTC), true, 20},
	})

	tbl, err := newTestReader().Read("book.xlsx", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"sales"}, tbl.NumericColumns())
	first, ok := tbl.FirstNumericColumn()
	require.True(t, ok)
	assert.Equal(t, "sales", first)
	assert.Equal(t, []float64{10, 30, 20}, tbl.Floats("sales"))

	var when, flag []string
	for _, row := range tbl.Rows {
		when = append(when, row[0].Raw)
		flag = append(flag, row[1].Raw)
	}
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03 08:30:00"}, when)
	assert.Equal(t, []string{"TRUE", "FALSE", "TRUE"}, flag)
}

func TestReadExcelCustomFormats(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	dateFmt := "yyyy\\-mm\\-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	require.NoError(t, err)
	moneyFmt := "[Magenta]#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	require.NoError(t, err)

	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"day", "amount"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{45292, 1234.5}))
	require.NoError(t, f.SetCellStyle(sheet, "A2", "A2", dateStyle))
	require.NoError(t, f.SetCellStyle(sheet, "B2", "B2", moneyStyle))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tbl, err := newTestReader().Read("book.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, []string{"amount"}, tbl.NumericColumns())
	assert.Equal(t, "2024-01-01", tbl.Rows[0][0].Raw)
	assert.Equal(t, []float64{1234.5}, tbl.Floats("amount"))
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd", true},
		{"d/m/yy h:mm", true},
		{"[h]:mm:ss", true},
		{"[$-409]mmmm d, yyyy", true},
		{"0.00", false},
		{"#,##0.00;[Red]-#,##0.00", false},
		{"[Magenta]#,##0", false},
		{`0.0 "days"`, false},
		{"General", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormatCode(tt.code))
		})
	}
}

func TestReadNonWorkbookFails(t *testing.T) {
	_, err := newTestReader().Read("book.xlsx", strings.NewReader("this is not a zip"))

	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestReadSizeLimit(t *testing.T) {
	cfg := DefaultExcelConfig()
	cfg.MaxBytes = 8
	reader := NewDataReader(cfg, logging.NewLoggerTo(&bytes.Buffer{}, logging.LogLevelError))

	_, err := reader.Read("x.csv", strings.NewReader("a,b\n1,2\n3,4\n"))

	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "upload limit")
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y\n1,2\n"), 0o644))

	tbl, err := newTestReader().ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.NumRows())

	_, err = newTestReader().ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatCSV, DetectFormat("a.csv"))
	assert.Equal(t, FormatCSV, DetectFormat("a.CsV"))
	assert.Equal(t, FormatXLSX, DetectFormat("a.xlsx"))
	assert.Equal(t, FormatXLSX, DetectFormat("noext"))

	assert.True(t, HasAllowedExtension("a.XLSX"))
	assert.False(t, HasAllowedExtension("a.xls"))
	assert.False(t, HasAllowedExtension("a.txt"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, fmt.Errorf("connection reset")
}

func TestReadStreamFailureIsInvalidInput(t *testing.T) {
	for _, maxBytes := range []int64{0, 1 << 20} {
		cfg := DefaultExcelConfig()
		cfg.MaxBytes = maxBytes
		reader := NewDataReader(cfg, logging.NewLoggerTo(&bytes.Buffer{}, logging.LogLevelError))

		_, err := reader.Read("x.csv", failingReader{})

		require.Error(t, err, "max bytes %d", maxBytes)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err), "max bytes %d", maxBytes)
		assert.Contains(t, err.Error(), "connection reset")
	}
}
