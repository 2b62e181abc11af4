// Package profiling computes the per-column summary shown in the
// "Show Summary" panel.
package profiling

import (
	"context"
	"math"
	"runtime"
	"strconv"

	"datadash/domain/table"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary describes one column. Numeric fields are NaN when they are
// undefined for the column (text columns, or too few values).
type ColumnSummary struct {
	Name     string           `json:"name"`
	Kind     table.ColumnKind `json:"kind"`
	Count    int              `json:"count"`
	Missing  int              `json:"missing"`
	Distinct int              `json:"distinct"`
	Top      string           `json:"top,omitempty"`
	TopFreq  int              `json:"top_freq,omitempty"`
	Mean     float64          `json:"mean"`
	StdDev   float64          `json:"std"`
	Min      float64          `json:"min"`
	Median   float64          `json:"median"`
	Max      float64          `json:"max"`
}

// DistributionAnalyzer summarizes table columns
type DistributionAnalyzer struct {
	workers int
}

// NewDistributionAnalyzer creates an analyzer that summarizes up to
// GOMAXPROCS columns at once
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{workers: runtime.GOMAXPROCS(0)}
}

// Summarize returns one summary per column, in column order
func (da *DistributionAnalyzer) Summarize(ctx context.Context, t *table.Table) ([]ColumnSummary, error) {
	summaries := make([]ColumnSummary, t.NumColumns())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(da.workers)
	for i, col := range t.Columns {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			summaries[i] = da.SummarizeColumn(t, col)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// SummarizeColumn computes the summary for a single column
func (da *DistributionAnalyzer) SummarizeColumn(t *table.Table, col table.Column) ColumnSummary {
	s := ColumnSummary{
		Name:   col.Name,
		Kind:   col.Kind,
		Mean:   math.NaN(),
		StdDev: math.NaN(),
		Min:    math.NaN(),
		Median: math.NaN(),
		Max:    math.NaN(),
	}

	for _, v := range t.Distinct(col.Name) {
		if v.Key == table.MissingKey {
			s.Missing = v.Count
			continue
		}
		s.Distinct++
		if v.Count > s.TopFreq {
			s.Top, s.TopFreq = v.Label, v.Count
		}
	}
	s.Count = t.NumRows() - s.Missing

	if !col.IsNumeric() {
		return s
	}
	s.Top, s.TopFreq = "", 0

	data := t.Floats(col.Name)
	if len(data) == 0 {
		return s
	}

	s.Mean, s.StdDev = stat.MeanStdDev(data, nil)
	if len(data) < 2 {
		s.StdDev = math.NaN()
	}
	s.Min = floats.Min(data)
	s.Max = floats.Max(data)
	if median, err := stats.Median(data); err == nil {
		s.Median = median
	}
	return s
}

// FormatStat renders a statistic for display; undefined values become "-"
func FormatStat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
