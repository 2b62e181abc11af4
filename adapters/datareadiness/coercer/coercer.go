package coercer

import (
	"math"
	"strconv"
	"strings"

	"datadash/domain/table"
)

// TypeCoercer handles deterministic cell coercion and column type inference
type TypeCoercer struct {
	config  CoercionConfig
	missing map[string]struct{}
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64  `json:"numeric_threshold"` // share of non-missing values that must parse as numbers
	MissingMarkers   []string `json:"missing_markers"`   // cell texts read as missing
}

// DefaultMissingMarkers mirrors the usual dataframe NA spellings
var DefaultMissingMarkers = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// DefaultCoercionConfig returns the strict all-numeric rule
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 1.0,
		MissingMarkers:   DefaultMissingMarkers,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	missing := make(map[string]struct{}, len(config.MissingMarkers))
	for _, m := range config.MissingMarkers {
		missing[m] = struct{}{}
	}
	return &TypeCoercer{config: config, missing: missing}
}

// IsMissing reports whether the cell text denotes a missing value
func (c *TypeCoercer) IsMissing(raw string) bool {
	_, ok := c.missing[strings.TrimSpace(raw)]
	return ok
}

// ParseNumeric parses a cell as a finite float. Go literal forms that a
// spreadsheet user would not type (underscores, hex) are rejected.
func (c *TypeCoercer) ParseNumeric(raw string) (float64, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" || strings.ContainsAny(clean, "_xXpP") {
		return 0, false
	}
	val, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// AnalyzeTypeDistribution counts how many values of a column parse as numbers
func (c *TypeCoercer) AnalyzeTypeDistribution(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}

	for _, val := range values {
		if c.IsMissing(val) {
			analysis.MissingCount++
			continue
		}
		if _, ok := c.ParseNumeric(val); ok {
			analysis.NumericCount++
		}
	}

	valid := analysis.TotalCount - analysis.MissingCount
	if valid == 0 {
		// an all-missing column has no evidence against being numeric
		analysis.NumericRatio = 1
	} else {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(valid)
	}

	analysis.RecommendedKind = table.KindText
	if analysis.NumericRatio >= c.config.NumericThreshold {
		analysis.RecommendedKind = table.KindNumeric
	}
	return analysis
}

// CoerceColumn infers the column kind and converts every value to a cell.
// In a numeric column, values that fail to parse under a relaxed threshold
// become missing cells.
func (c *TypeCoercer) CoerceColumn(values []string) (table.ColumnKind, []table.Cell) {
	kind := c.AnalyzeTypeDistribution(values).RecommendedKind

	cells := make([]table.Cell, len(values))
	for i, val := range values {
		cells[i] = c.CoerceValue(val, kind)
	}
	return kind, cells
}

// CoerceValue converts a single value for a column of the given kind
func (c *TypeCoercer) CoerceValue(raw string, kind table.ColumnKind) table.Cell {
	if c.IsMissing(raw) {
		return table.MissingCell(raw)
	}
	if kind == table.KindNumeric {
		if num, ok := c.ParseNumeric(raw); ok {
			return table.NumericCell(raw, num)
		}
		return table.MissingCell(raw)
	}
	return table.TextCell(raw)
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int              `json:"total_count"`
	MissingCount    int              `json:"missing_count"`
	NumericCount    int              `json:"numeric_count"`
	NumericRatio    float64          `json:"numeric_ratio"`
	RecommendedKind table.ColumnKind `json:"recommended_kind"`
}
