package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"datadash/adapters/datareadiness/coercer"
	"datadash/domain/table"
	"datadash/internal/errors"
	"datadash/internal/logging"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// DataReader turns an uploaded CSV or Excel file into a Table
type DataReader struct {
	config  ExcelConfig
	coercer *coercer.TypeCoercer
	log     *logging.Logger
}

// NewDataReader creates a reader for both Excel and CSV uploads
func NewDataReader(config ExcelConfig, logger *logging.Logger) *DataReader {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &DataReader{
		config:  config,
		coercer: coercer.NewTypeCoercer(config.CoercionConfig),
		log:     logger.Component("DataReader"),
	}
}

// ReadFile reads a file from disk, choosing the parser from its name
func (r *DataReader) ReadFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(path)
		}
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	return r.Read(filepath.Base(path), f)
}

// Read parses src as CSV when filename ends in .csv and as the first sheet
// of a workbook otherwise. Any malformed input yields an INVALID_INPUT
// error and no partial table.
func (r *DataReader) Read(filename string, src io.Reader) (*table.Table, error) {
	data, err := r.readAll(src)
	if err != nil {
		return nil, err
	}

	format := DetectFormat(filename)
	r.log.Debug("Reading %s upload %q (%d bytes)", format, filename, len(data))

	start := time.Now()
	var sheet *rawSheet
	switch format {
	case FormatCSV:
		sheet, err = r.readCSVData(data)
	default:
		sheet, err = r.readExcelData(data)
	}
	if err != nil {
		r.log.Warn("Rejected upload %q: %v", filename, err)
		return nil, errors.InvalidInputf(err, "could not read %s", filename)
	}

	tbl := r.processRows(sheet)
	r.log.With(map[string]interface{}{
		"file":    filename,
		"columns": tbl.NumColumns(),
		"rows":    tbl.NumRows(),
	}).Info("Upload parsed in %.2fms", float64(time.Since(start).Nanoseconds())/1e6)
	return tbl, nil
}

func (r *DataReader) readAll(src io.Reader) ([]byte, error) {
	if r.config.MaxBytes > 0 {
		src = io.LimitReader(src, r.config.MaxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "failed to read upload"))
	}
	if r.config.MaxBytes > 0 && int64(len(data)) > r.config.MaxBytes {
		return nil, errors.InvalidInput(fmt.Sprintf("file exceeds the %.0f MB upload limit", float64(r.config.MaxBytes)/(1024*1024)))
	}
	return data, nil
}

// readCSVData reads comma-separated records. Blank lines are skipped, short
// records are padded later, and records wider than the header are an error.
func (r *DataReader) readCSVData(data []byte) (*rawSheet, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no columns to parse from file")
	}

	headers := rows[0]
	headers[0] = strings.TrimPrefix(headers[0], utf8BOM)

	records := rows[1:]
	for i, rec := range records {
		if len(rec) > len(headers) {
			return nil, fmt.Errorf("expected %d fields in line %d, saw %d", len(headers), i+2, len(rec))
		}
	}

	return &rawSheet{Headers: headers, Records: records}, nil
}

// readExcelData reads the first worksheet of a workbook
func (r *DataReader) readExcelData(data []byte) (*rawSheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no columns to parse from file")
	}

	// cells beyond the header row widen the header with unnamed columns
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil, fmt.Errorf("no columns to parse from file")
	}
	headers := make([]string, width)
	copy(headers, rows[0])

	decoder, err := newCellDecoder(f, sheets[0])
	if err != nil {
		return nil, err
	}
	records := rows[1:]
	for i, rec := range records {
		for j, raw := range rec {
			// records start on the second sheet row
			rec[j] = decoder.decode(j+1, i+2, raw)
		}
	}

	return &rawSheet{Headers: headers, Records: records}, nil
}

// cellDecoder turns raw cell values whose meaning lives in the cell type or
// number format back into text: booleans become TRUE/FALSE and date or
// time serials become timestamps, so neither infers as numeric
type cellDecoder struct {
	file       *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func newCellDecoder(f *excelize.File, sheet string) (*cellDecoder, error) {
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook properties: %w", err)
	}
	return &cellDecoder{
		file:       f,
		sheet:      sheet,
		date1904:   props.Date1904 != nil && *props.Date1904,
		dateStyles: make(map[int]bool),
	}, nil
}

func (d *cellDecoder) decode(col, row int, raw string) string {
	if raw == "" {
		return raw
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}

	if raw == "0" || raw == "1" {
		if typ, err := d.file.GetCellType(d.sheet, cell); err == nil && typ == excelize.CellTypeBool {
			if raw == "1" {
				return "TRUE"
			}
			return "FALSE"
		}
	}

	styleID, err := d.file.GetCellStyle(d.sheet, cell)
	if err != nil || !d.isDateStyle(styleID) {
		return raw
	}
	return d.formatSerial(serial)
}

func (d *cellDecoder) isDateStyle(styleID int) bool {
	if isDate, seen := d.dateStyles[styleID]; seen {
		return isDate
	}
	isDate := false
	if style, err := d.file.GetStyle(styleID); err == nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		} else {
			isDate = isBuiltInDateFormat(style.NumFmt)
		}
	}
	d.dateStyles[styleID] = isDate
	return isDate
}

// formatSerial renders a date serial the way a dataframe prints datetimes:
// date only at midnight, clock only below one day
func (d *cellDecoder) formatSerial(serial float64) string {
	t, err := excelize.ExcelDateToTime(serial, d.date1904)
	if err != nil {
		return strconv.FormatFloat(serial, 'f', -1, 64)
	}
	t = t.Round(time.Second)
	switch {
	case serial < 1:
		return t.Format("15:04:05")
	case t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0:
		return t.Format("2006-01-02")
	default:
		return t.Format("2006-01-02 15:04:05")
	}
}

// isBuiltInDateFormat reports whether a built-in number format id displays
// a date, a time or both
func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58:
		// East Asian date formats
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom format code contains date or
// time tokens outside quoted literals, escapes and bracketed sections
func isDateFormatCode(code string) bool {
	// only the positive section decides
	section, _, _ := strings.Cut(code, ";")
	inQuote := false
	for i := 0; i < len(section); i++ {
		ch := section[i]
		switch {
		case inQuote:
			inQuote = ch != '"'
		case ch == '"':
			inQuote = true
		case ch == '[':
			end := strings.IndexByte(section[i:], ']')
			if end < 0 {
				return false
			}
			// elapsed time such as [h]:mm is still a time; colors and
			// locales are not
			content := strings.ToLower(section[i+1 : i+end])
			if content != "" && strings.Trim(content, "hms") == "" {
				return true
			}
			i += end
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		default:
			switch ch {
			case 'y', 'Y', 'd', 'D', 'h', 'H', 's', 'S':
				return true
			}
		}
	}
	return false
}

// processRows names the columns, infers each column's kind and builds the
// row-major table
func (r *DataReader) processRows(sheet *rawSheet) *table.Table {
	names := normalizeHeaders(sheet.Headers)

	columns := make([]table.Column, len(names))
	rows := make([][]table.Cell, len(sheet.Records))
	for i := range rows {
		rows[i] = make([]table.Cell, len(names))
	}

	values := make([]string, len(sheet.Records))
	for j, name := range names {
		for i, rec := range sheet.Records {
			if j < len(rec) {
				values[i] = rec[j]
			} else {
				values[i] = ""
			}
		}

		kind, cells := r.coercer.CoerceColumn(values)
		columns[j] = table.Column{Name: name, Kind: kind}
		for i, cell := range cells {
			rows[i][j] = cell
		}
	}

	return table.New(columns, rows)
}

// normalizeHeaders names blank headers "Unnamed: <pos>" and suffixes
// repeated names with .1, .2, ...
func normalizeHeaders(headers []string) []string {
	names := make([]string, len(headers))
	used := make(map[string]bool, len(headers))

	for i, h := range headers {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for k := 1; used[name]; k++ {
			name = fmt.Sprintf("%s.%d", h, k)
		}
		used[name] = true
		names[i] = name
	}
	return names
}
