package excel

import (
	"path/filepath"
	"strings"
)

// Format is the parser chosen for an upload
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// AllowedExtensions are the upload extensions offered by the file picker
var AllowedExtensions = []string{".csv", ".xlsx"}

// DetectFormat picks CSV for a .csv name and the workbook parser for
// anything else
func DetectFormat(filename string) Format {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return FormatCSV
	}
	return FormatXLSX
}

// HasAllowedExtension reports whether the upload control would accept the name
func HasAllowedExtension(filename string) bool {
	ext := filepath.Ext(filename)
	for _, allowed := range AllowedExtensions {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}

// rawSheet is the header and records of a parsed file before coercion
type rawSheet struct {
	Headers []string
	Records [][]string
}
