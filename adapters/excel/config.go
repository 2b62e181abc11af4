package excel

import (
	"datadash/adapters/datareadiness/coercer"
)

// ExcelConfig holds configuration for reading uploaded spreadsheets
type ExcelConfig struct {
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
	MaxBytes       int64                  `json:"max_bytes"` // 0 disables the size check
}

// DefaultExcelConfig returns sensible defaults for upload processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		CoercionConfig: coercer.DefaultCoercionConfig(),
		MaxBytes:       200 * 1024 * 1024,
	}
}
