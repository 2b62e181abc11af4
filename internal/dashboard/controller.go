// Package dashboard recomputes the whole page from an uploaded table and
// the current widget selections: filter, key metrics and chart.
package dashboard

import (
	"bytes"
	"context"
	"io"
	"slices"
	"time"

	"datadash/domain/table"
	"datadash/internal/chart"
	"datadash/internal/errors"
	"datadash/internal/logging"
	"datadash/internal/metrics"
	"datadash/internal/profiling"
)

// NoNumericWarning replaces the chart section when nothing can be plotted
const NoNumericWarning = "No numeric columns available for visualization."

// Option is one entry of the multi-value filter picker
type Option struct {
	Key      string
	Label    string
	Count    int
	Selected bool
}

// View is everything one render of the page needs
type View struct {
	Selection Selection

	Columns  []string
	Options  []Option
	Table    *table.Table
	Filtered *table.Table

	Metrics []Metric
	Summary []profiling.ColumnSummary

	HasNumeric bool
	XOptions   []string
	YOptions   []string
	Kinds      []chart.Kind
	Chart      chart.Spec
	ChartSVG   string
	ChartError string
}

// Controller runs the load → filter → metrics → chart pipeline
type Controller struct {
	renderer *chart.Renderer
	analyzer *profiling.DistributionAnalyzer
	metrics  *metrics.Metrics
	log      *logging.Logger
}

// NewController creates a controller. m may be nil.
func NewController(renderer *chart.Renderer, m *metrics.Metrics, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &Controller{
		renderer: renderer,
		analyzer: profiling.NewDistributionAnalyzer(),
		metrics:  m,
		log:      logger.Component("Dashboard"),
	}
}

// Resolve fills every default and drops choices that do not apply to t.
// The returned selection always names existing columns.
func Resolve(t *table.Table, sel Selection) Selection {
	out := Selection{ShowRaw: sel.ShowRaw, ShowSummary: sel.ShowSummary, Kind: sel.Kind}
	if out.Kind == "" {
		out.Kind = chart.KindBar
	}

	columns := t.ColumnNames()
	if len(columns) == 0 {
		return out
	}

	out.FilterColumn = sel.FilterColumn
	if t.ColumnIndex(out.FilterColumn) < 0 {
		out.FilterColumn = columns[0]
	}
	out.PrevColumn = out.FilterColumn
	out.ValuesSet = true

	distinct := t.Distinct(out.FilterColumn)
	keepAll := !sel.ValuesSet || sel.PrevColumn != out.FilterColumn
	out.FilterValues = make([]string, 0, len(distinct))
	for _, v := range distinct {
		if keepAll || slices.Contains(sel.FilterValues, v.Key) {
			out.FilterValues = append(out.FilterValues, v.Key)
		}
	}

	out.X = sel.X
	if t.ColumnIndex(out.X) < 0 {
		out.X = columns[0]
	}
	numeric := t.NumericColumns()
	out.Y = sel.Y
	if !slices.Contains(numeric, out.Y) {
		out.Y = ""
		if len(numeric) > 0 {
			out.Y = numeric[0]
		}
	}
	return out
}

// Apply returns the rows of t matching the resolved filter selection
func Apply(t *table.Table, sel Selection) *table.Table {
	keep := make(map[string]bool, len(sel.FilterValues))
	for _, k := range sel.FilterValues {
		keep[k] = true
	}
	return t.Filter(sel.FilterColumn, keep)
}

// Build recomputes the full view for t under sel
func (c *Controller) Build(ctx context.Context, t *table.Table, sel Selection) (*View, error) {
	resolved := Resolve(t, sel)
	filtered := Apply(t, resolved)

	view := &View{
		Selection: resolved,
		Columns:   t.ColumnNames(),
		Table:     t,
		Filtered:  filtered,
		Metrics:   ComputeMetrics(filtered),
		Kinds:     chart.Kinds,
	}

	selected := make(map[string]bool, len(resolved.FilterValues))
	for _, k := range resolved.FilterValues {
		selected[k] = true
	}
	for _, v := range t.Distinct(resolved.FilterColumn) {
		view.Options = append(view.Options, Option{
			Key:      v.Key,
			Label:    v.Label,
			Count:    v.Count,
			Selected: selected[v.Key],
		})
	}

	if resolved.ShowSummary {
		summary, err := c.analyzer.Summarize(ctx, filtered)
		if err != nil {
			return nil, errors.Wrap(err, "failed to summarize columns")
		}
		view.Summary = summary
	}

	view.YOptions = filtered.NumericColumns()
	view.HasNumeric = len(view.YOptions) > 0
	if !view.HasNumeric {
		return view, nil
	}

	view.XOptions = filtered.ColumnNames()
	view.Chart = chart.Spec{X: resolved.X, Y: resolved.Y, Kind: resolved.Kind}

	var buf bytes.Buffer
	if err := c.render(&buf, filtered, view.Chart); err != nil {
		c.log.Warn("Chart render failed for %s: %v", view.Chart.Title(), err)
		view.ChartError = err.Error()
	} else {
		view.ChartSVG = buf.String()
	}
	return view, nil
}

// RenderChart writes only the chart for t under sel
func (c *Controller) RenderChart(w io.Writer, t *table.Table, sel Selection) error {
	resolved := Resolve(t, sel)
	filtered := Apply(t, resolved)
	if resolved.Y == "" {
		return errors.InvalidInput(NoNumericWarning)
	}
	return c.render(w, filtered, chart.Spec{X: resolved.X, Y: resolved.Y, Kind: resolved.Kind})
}

func (c *Controller) render(w io.Writer, filtered *table.Table, spec chart.Spec) error {
	start := time.Now()
	if err := c.renderer.Render(w, filtered, spec); err != nil {
		return errors.RenderFailed(err)
	}
	if c.metrics != nil {
		c.metrics.ObserveRender(string(spec.Kind), start)
	}
	c.log.Trace("Rendered %s chart %q over %d rows", spec.Kind, spec.Title(), filtered.NumRows())
	return nil
}
