// Package chart renders a single-series chart of two table columns to SVG.
package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	"datadash/domain/table"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"
)

// Kind is the chart type picked by the user
type Kind string

const (
	KindBar     Kind = "bar"
	KindLine    Kind = "line"
	KindScatter Kind = "scatter"
)

// Kinds lists the supported chart types in picker order
var Kinds = []Kind{KindBar, KindLine, KindScatter}

// ParseKind accepts a kind name in any case
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// Label returns the kind as shown on the radio control
func (k Kind) Label() string {
	switch k {
	case KindLine:
		return "Line"
	case KindScatter:
		return "Scatter"
	default:
		return "Bar"
	}
}

// Spec is the (x, y, kind) triple of one chart
type Spec struct {
	X    string `json:"x"`
	Y    string `json:"y"`
	Kind Kind   `json:"kind"`
}

// Title is the caption drawn above the chart
func (s Spec) Title() string {
	return fmt.Sprintf("%s by %s", s.Y, s.X)
}

// Options holds the rendered dimensions in pixels
type Options struct {
	Width  int
	Height int
}

// DefaultOptions returns the dimensions used when none are configured
func DefaultOptions() Options {
	return Options{Width: 960, Height: 480}
}

// Renderer draws charts with go-chart
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer with the given dimensions
func NewRenderer(opts Options) *Renderer {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultOptions()
	}
	return &Renderer{opts: opts}
}

// Render draws spec against t as SVG. Rows with a missing x or y are not
// plotted; a table with nothing to plot yields an empty frame, not an error.
func (r *Renderer) Render(w io.Writer, t *table.Table, spec Spec) error {
	data, err := collect(t, spec)
	if err != nil {
		return err
	}
	if len(data.ys) == 0 {
		return r.renderEmpty(w, spec)
	}

	switch spec.Kind {
	case KindLine, KindScatter:
		return r.renderXY(w, data, spec)
	default:
		return r.renderBar(w, data, spec)
	}
}

// plotData is the plottable part of the two chosen columns
type plotData struct {
	categorical bool
	categories  []string // ordinal x labels when categorical
	xs          []float64
	ys          []float64
	xKeys       []string
	xLabels     []string
}

func collect(t *table.Table, spec Spec) (*plotData, error) {
	xi := t.ColumnIndex(spec.X)
	if xi < 0 {
		return nil, fmt.Errorf("unknown x-axis column %q", spec.X)
	}
	yi := t.ColumnIndex(spec.Y)
	if yi < 0 {
		return nil, fmt.Errorf("unknown y-axis column %q", spec.Y)
	}
	if !t.Columns[yi].IsNumeric() {
		return nil, fmt.Errorf("y-axis column %q is not numeric", spec.Y)
	}

	xKind := t.Columns[xi].Kind
	data := &plotData{categorical: xKind != table.KindNumeric}
	position := make(map[string]int)

	for _, row := range t.Rows {
		x, y := row[xi], row[yi]
		if x.Missing || y.Missing {
			continue
		}
		key := x.Key(xKind)
		if data.categorical {
			p, seen := position[key]
			if !seen {
				p = len(data.categories)
				position[key] = p
				data.categories = append(data.categories, x.Raw)
			}
			data.xs = append(data.xs, float64(p))
		} else {
			data.xs = append(data.xs, x.Num)
		}
		data.ys = append(data.ys, y.Num)
		data.xKeys = append(data.xKeys, key)
		data.xLabels = append(data.xLabels, x.Raw)
	}
	return data, nil
}

// barGroup is one bar: every y value sharing an x value, stacked in row order
type barGroup struct {
	Label  string
	Values []float64
}

// Total is the height of the stacked bar
func (g barGroup) Total() float64 {
	return floats.Sum(g.Values)
}

func groupBars(data *plotData) []barGroup {
	index := make(map[string]int)
	var groups []barGroup
	for i, key := range data.xKeys {
		p, seen := index[key]
		if !seen {
			p = len(groups)
			index[key] = p
			groups = append(groups, barGroup{Label: data.xLabels[i]})
		}
		groups[p].Values = append(groups[p].Values, data.ys[i])
	}
	return groups
}

func (r *Renderer) renderBar(w io.Writer, data *plotData, spec Spec) error {
	groups := groupBars(data)

	bars := make([]gochart.Value, len(groups))
	totals := make([]float64, len(groups))
	for i, g := range groups {
		totals[i] = g.Total()
		bars[i] = gochart.Value{Label: g.Label, Value: totals[i]}
	}

	// bars grow from zero, so the range always includes it
	yRange := axisRange(append(totals, 0))

	graph := gochart.BarChart{
		Title:  spec.Title(),
		Width:  r.opts.Width,
		Height: r.opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		YAxis: gochart.YAxis{
			Name:  spec.Y,
			Range: yRange,
		},
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         bars,
	}
	return graph.Render(gochart.SVG, w)
}

func (r *Renderer) renderXY(w io.Writer, data *plotData, spec Spec) error {
	style := gochart.Style{
		StrokeWidth: 2,
		StrokeColor: gochart.ColorBlue,
	}
	if spec.Kind == KindScatter {
		style = pointStyle(gochart.ColorBlue)
	}

	xAxis := gochart.XAxis{Name: spec.X, Range: axisRange(data.xs)}
	if data.categorical {
		xAxis.Range = &gochart.ContinuousRange{Min: -0.5, Max: float64(len(data.categories)) - 0.5}
		ticks := make([]gochart.Tick, len(data.categories))
		for i, label := range data.categories {
			ticks[i] = gochart.Tick{Value: float64(i), Label: label}
		}
		xAxis.Ticks = ticks
	}

	graph := gochart.Chart{
		Title:  spec.Title(),
		Width:  r.opts.Width,
		Height: r.opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: xAxis,
		YAxis: gochart.YAxis{Name: spec.Y, Range: axisRange(data.ys)},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    spec.Y,
				XValues: data.xs,
				YValues: data.ys,
				Style:   style,
			},
		},
	}
	return graph.Render(gochart.SVG, w)
}

// renderEmpty draws bare axes. go-chart refuses series without points, so
// a single invisible point anchors the frame.
func (r *Renderer) renderEmpty(w io.Writer, spec Spec) error {
	graph := gochart.Chart{
		Title:  spec.Title(),
		Width:  r.opts.Width,
		Height: r.opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: gochart.XAxis{Name: spec.X, Range: &gochart.ContinuousRange{Min: 0, Max: 1}},
		YAxis: gochart.YAxis{Name: spec.Y, Range: &gochart.ContinuousRange{Min: 0, Max: 1}},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				XValues: []float64{0},
				YValues: []float64{0},
				Style: gochart.Style{
					StrokeWidth: gochart.Disabled,
					StrokeColor: drawing.ColorTransparent,
					DotColor:    drawing.ColorTransparent,
				},
			},
		},
	}
	return graph.Render(gochart.SVG, w)
}

// pointStyle returns a style that renders points only (no connecting line)
func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

// axisRange pads the data extent by 5%, or by a fixed margin when every
// value is equal, so go-chart never sees a zero-width range
func axisRange(values []float64) *gochart.ContinuousRange {
	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		pad := math.Abs(lo) * 0.1
		if pad == 0 {
			pad = 1
		}
		return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
	}
	pad := (hi - lo) * 0.05
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
