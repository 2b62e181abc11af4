package main

import (
	"fmt"
	"os"

	"datadash/adapters/excel"
	"datadash/internal/testkit"

	"github.com/spf13/cobra"
)

// Sample-specific flag values.
var (
	sampleOrders int
	sampleSeed   int64
)

// sampleCmd writes a synthetic orders file to try the dashboard with.
var sampleCmd = &cobra.Command{
	Use:   "sample <file.csv|file.xlsx>",
	Short: "Write a synthetic orders dataset",
	Long: `Write a reproducible synthetic e-commerce orders dataset. The format
follows the file extension: .csv for comma-separated values, anything else
for an Excel workbook.`,
	Args: cobra.ExactArgs(1),
	RunE: runSample,
}

func init() {
	sampleCmd.Flags().IntVar(&sampleOrders, "orders", 500, "number of order rows")
	sampleCmd.Flags().Int64Var(&sampleSeed, "seed", 42, "random seed")
}

func runSample(cmd *cobra.Command, args []string) error {
	if sampleOrders < 0 {
		return fmt.Errorf("--orders must not be negative")
	}
	config := testkit.DefaultShoppingConfig()
	config.OrderCount = sampleOrders
	config.Seed = sampleSeed
	data := testkit.NewShoppingDataGenerator(config).Generate()

	path := args[0]
	if err := writeSample(path, data); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d orders to %s\n", len(data.Records), path)
	return nil
}

// writeSample writes data to path in the format its extension names. A
// failed write leaves no file behind.
func writeSample(path string, data *testkit.Dataset) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("cannot write %s: %w", path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if excel.DetectFormat(path) == excel.FormatCSV {
		err = data.WriteCSV(f)
	} else {
		err = data.WriteXLSX(f)
	}
	if err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}
