package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"datadash/adapters/excel"
	"datadash/domain/table"
	"datadash/internal/chart"
	"datadash/internal/dashboard"
	"datadash/internal/logging"
	"datadash/internal/profiling"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Inspect-specific flag values.
var (
	inspectColumn  string
	inspectValues  []string
	inspectX       string
	inspectY       string
	inspectKind    string
	inspectSVG     string
	inspectSummary bool
)

// inspectCmd computes the dashboard for a file without starting a server.
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the key metrics of a CSV or XLSX file",
	Long: `Load a CSV or XLSX file, apply an optional value filter and print the
same key metrics the dashboard shows. With --svg the chart is written to a
file as well.

  datadash inspect sales.csv
  datadash inspect sales.csv --column region --values east --svg east.svg
  datadash inspect sales.xlsx --x month --y revenue --kind line --svg trend.svg`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectColumn, "column", "", "column to filter on (default: first column)")
	inspectCmd.Flags().StringSliceVar(&inspectValues, "values", nil, "values of --column to keep (default: all)")
	inspectCmd.Flags().StringVar(&inspectX, "x", "", "x-axis column (default: first column)")
	inspectCmd.Flags().StringVar(&inspectY, "y", "", "y-axis column, must be numeric (default: first numeric column)")
	inspectCmd.Flags().StringVar(&inspectKind, "kind", "bar", "chart kind: bar, line or scatter")
	inspectCmd.Flags().StringVar(&inspectSVG, "svg", "", "write the chart to this SVG file")
	inspectCmd.Flags().BoolVar(&inspectSummary, "summary", false, "print per-column summary statistics")
}

func runInspect(cmd *cobra.Command, args []string) error {
	level := logging.LogLevelWarn
	if logLevel != "" {
		level = logging.ParseLevel(logLevel)
	}
	logger := logging.NewLoggerTo(cmd.ErrOrStderr(), level)

	kind, ok := chart.ParseKind(inspectKind)
	if !ok {
		return fmt.Errorf("unknown chart kind %q (want bar, line or scatter)", inspectKind)
	}

	tbl, err := excel.NewDataReader(excel.DefaultExcelConfig(), logger).ReadFile(args[0])
	if err != nil {
		return err
	}

	sel := dashboard.Selection{
		ShowSummary:  inspectSummary,
		FilterColumn: inspectColumn,
		PrevColumn:   inspectColumn,
		X:            inspectX,
		Y:            inspectY,
		Kind:         kind,
	}
	if cmd.Flags().Changed("values") {
		if tbl.ColumnIndex(inspectColumn) < 0 {
			return fmt.Errorf("--values needs --column naming one of: %s", strings.Join(tbl.ColumnNames(), ", "))
		}
		sel.ValuesSet = true
		sel.FilterValues = valueKeys(tbl, inspectColumn, inspectValues)
	}

	controller := dashboard.NewController(chart.NewRenderer(chart.DefaultOptions()), nil, logger)
	view, err := controller.Build(cmd.Context(), tbl, sel)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printView(out, filepath.Base(args[0]), view)

	if inspectSVG == "" {
		return nil
	}
	if !view.HasNumeric {
		return fmt.Errorf("no chart written: %s", dashboard.NoNumericWarning)
	}
	if view.ChartError != "" {
		return fmt.Errorf("no chart written: %s", view.ChartError)
	}
	if err := os.WriteFile(inspectSVG, []byte(view.ChartSVG), 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", inspectSVG, err)
	}
	fmt.Fprintf(out, "\n%s %s\n", color.GreenString("chart written to"), inspectSVG)
	return nil
}

// valueKeys maps value labels given on the command line to distinct-value
// keys; labels that do not occur in the column are dropped
func valueKeys(t *table.Table, column string, labels []string) []string {
	var keys []string
	for _, v := range t.Distinct(column) {
		if slices.Contains(labels, v.Label) {
			keys = append(keys, v.Key)
		}
	}
	return keys
}

func printView(out io.Writer, name string, view *dashboard.View) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	_, _ = bold.Fprintf(out, "%s\n", name)
	fmt.Fprintf(out, "%d rows x %d columns\n", view.Table.NumRows(), view.Table.NumColumns())

	var kept []string
	for _, opt := range view.Options {
		if opt.Selected {
			kept = append(kept, opt.Label)
		}
	}
	if len(kept) < len(view.Options) {
		fmt.Fprintf(out, "filter: %s in [%s]\n", view.Selection.FilterColumn, strings.Join(kept, ", "))
	}

	fmt.Fprintln(out)
	for _, m := range view.Metrics {
		fmt.Fprintf(out, "%-32s %s\n", m.Label, cyan.Sprint(m.Value))
	}

	if view.Summary != nil {
		fmt.Fprintln(out)
		printSummary(out, view.Summary)
	}

	fmt.Fprintln(out)
	if !view.HasNumeric {
		_, _ = yellow.Fprintln(out, dashboard.NoNumericWarning)
		return
	}
	fmt.Fprintf(out, "chart: %s (%s)\n", view.Chart.Title(), view.Chart.Kind.Label())
}

func printSummary(out io.Writer, summary []profiling.ColumnSummary) {
	fmt.Fprintf(out, "%-20s %-8s %7s %7s %7s %10s %10s %10s %10s %10s\n",
		"column", "type", "count", "missing", "unique", "mean", "std", "min", "median", "max")
	for _, s := range summary {
		fmt.Fprintf(out, "%-20s %-8s %7d %7d %7d %10s %10s %10s %10s %10s\n",
			s.Name, s.Kind, s.Count, s.Missing, s.Distinct,
			profiling.FormatStat(s.Mean), profiling.FormatStat(s.StdDev),
			profiling.FormatStat(s.Min), profiling.FormatStat(s.Median), profiling.FormatStat(s.Max))
	}
}
