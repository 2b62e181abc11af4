package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Global flag values.
var (
	configFile string
	logLevel   string
	noColor    bool
)

// rootCmd is the base command for datadash.
var rootCmd = &cobra.Command{
	Use:   "datadash",
	Short: "Interactive dashboard for CSV and Excel files",
	Long: `datadash serves a single-page dashboard: upload a CSV or XLSX file,
filter its rows by the values of one column, read the key metrics and plot
any column against a numeric one as a bar, line or scatter chart.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: datadash.{yaml,json,toml} in . or ./configs)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: ERROR, WARN, INFO, DEBUG or TRACE (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(versionCmd)
}
