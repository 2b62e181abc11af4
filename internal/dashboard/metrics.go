package dashboard

import (
	"math"
	"strconv"
	"strings"

	"datadash/domain/table"

	"github.com/montanaflynn/stats"
)

// Metric labels
const (
	LabelTotalRows = "Total Rows"
	LabelAverage   = "Average (First Numeric Column)"
	LabelNoNumeric = "No Numeric Data"
	LabelColumns   = "Columns"
)

// Placeholder is shown where a metric has no value
const Placeholder = "-"

// Metric is one labelled scalar in the key metrics row
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ComputeMetrics returns row count, mean of the first numeric column and
// column count of the filtered table, in display order
func ComputeMetrics(filtered *table.Table) []Metric {
	return []Metric{
		{Label: LabelTotalRows, Value: strconv.Itoa(filtered.NumRows())},
		averageMetric(filtered),
		{Label: LabelColumns, Value: strconv.Itoa(filtered.NumColumns())},
	}
}

// averageMetric uses the leftmost numeric column in original column order,
// whichever columns the chart pickers show
func averageMetric(filtered *table.Table) Metric {
	name, ok := filtered.FirstNumericColumn()
	if !ok {
		return Metric{Label: LabelNoNumeric, Value: Placeholder}
	}

	mean, err := stats.Mean(filtered.Floats(name))
	if err != nil {
		// no values left after filtering
		return Metric{Label: LabelAverage, Value: Placeholder}
	}
	return Metric{Label: LabelAverage, Value: formatDecimal(roundHalfEven(mean, 2))}
}

// roundHalfEven rounds to the given number of decimals, sending ties to the
// even digit, so 0.125 becomes 0.12
func roundHalfEven(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(v*scale) / scale
}

// formatDecimal prints a rounded value with at least one fractional digit,
// so 20 reads "20.0" and 3.14 reads "3.14"
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
