// Package testkit generates realistic order datasets for demos and tests.
package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// ShoppingGeneratorConfig configures the shopping data generator
type ShoppingGeneratorConfig struct {
	OrderCount     int       `json:"order_count"`
	ProductCount   int       `json:"product_count"`
	ReturnRateBase float64   `json:"return_rate_base"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Seed           int64     `json:"seed"`
}

// DefaultShoppingConfig returns sensible defaults for shopping data generation
func DefaultShoppingConfig() ShoppingGeneratorConfig {
	return ShoppingGeneratorConfig{
		OrderCount:     500,
		ProductCount:   50,
		ReturnRateBase: 0.08,
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		Seed:           42,
	}
}

// OrderHeaders are the columns of a generated dataset
var OrderHeaders = []string{
	"order_id", "order_date", "country", "device_type", "traffic_source",
	"product", "items", "cart_value", "discount_pct", "returned",
}

// Dataset is a generated table in its textual form
type Dataset struct {
	Headers []string
	Records [][]string
}

// ShoppingDataGenerator generates e-commerce order rows
type ShoppingDataGenerator struct {
	config ShoppingGeneratorConfig
	rng    *rand.Rand
}

// NewShoppingDataGenerator creates a new shopping data generator
func NewShoppingDataGenerator(config ShoppingGeneratorConfig) *ShoppingDataGenerator {
	return &ShoppingDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns one row per order, ordered by order date. The same seed
// always yields the same dataset.
func (g *ShoppingDataGenerator) Generate() *Dataset {
	records := make([][]string, 0, g.config.OrderCount)
	current := g.config.StartDate
	span := g.config.EndDate.Sub(g.config.StartDate)
	step := time.Duration(0)
	if g.config.OrderCount > 0 {
		step = span / time.Duration(g.config.OrderCount)
	}

	for i := 0; i < g.config.OrderCount; i++ {
		orderTime := current.Add(time.Duration(g.rng.Int63n(int64(step) + 1)))
		records = append(records, g.orderRecord(i, orderTime))
		current = current.Add(step)
	}
	return &Dataset{Headers: OrderHeaders, Records: records}
}

func (g *ShoppingDataGenerator) orderRecord(i int, orderTime time.Time) []string {
	source := g.randomTrafficSource()
	items := 1 + int(math.Abs(g.rng.NormFloat64()*1.5))
	cartValue := float64(items) * (20.0 + g.rng.Float64()*80.0) // $20-$100 per item

	// paid traffic often gets a discount; everyone else has none on record
	discount := ""
	if source != "organic" && g.rng.Float64() < 0.7 {
		discount = strconv.Itoa(5 + g.rng.Intn(20))
	}

	// expensive and mobile orders come back more often
	returnRate := g.config.ReturnRateBase
	if cartValue > 200 {
		returnRate += 0.05
	}
	device := g.randomDeviceType()
	if device == "mobile" {
		returnRate += 0.03
	}

	return []string{
		fmt.Sprintf("order_%05d", i+1),
		orderTime.Format("2006-01-02"),
		g.randomCountry(),
		device,
		source,
		fmt.Sprintf("product_%03d", g.rng.Intn(max(g.config.ProductCount, 1))+1),
		strconv.Itoa(items),
		strconv.FormatFloat(math.Round(cartValue*100)/100, 'f', 2, 64),
		discount,
		strconv.FormatBool(g.rng.Float64() < returnRate),
	}
}

// WriteCSV writes the dataset as comma-separated values with a header row
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(d.Records); err != nil {
		return err
	}
	return cw.Error()
}

// WriteXLSX writes the dataset as a single-sheet workbook. Numbers, dates
// and booleans are stored as typed cells; empty cells are left blank.
func (d *Dataset) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &d.Headers); err != nil {
		return err
	}
	for i, rec := range d.Records {
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = xlsxValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}

func (g *ShoppingDataGenerator) randomCountry() string {
	countries := []string{"US", "CA", "GB", "DE", "FR", "AU", "JP"}
	return countries[g.rng.Intn(len(countries))]
}

func (g *ShoppingDataGenerator) randomDeviceType() string {
	return g.weighted([]string{"mobile", "desktop", "tablet"}, []float64{0.6, 0.35, 0.05})
}

func (g *ShoppingDataGenerator) randomTrafficSource() string {
	return g.weighted(
		[]string{"organic", "paid_search", "email", "social", "direct"},
		[]float64{0.35, 0.25, 0.2, 0.15, 0.05},
	)
}

// weighted picks one of values with the given probabilities
func (g *ShoppingDataGenerator) weighted(values []string, weights []float64) string {
	r := g.rng.Float64()
	cumulative := 0.0
	for i, weight := range weights {
		cumulative += weight
		if r <= cumulative {
			return values[i]
		}
	}
	return values[0]
}

func xlsxValue(v string) interface{} {
	if v == "" {
		return nil
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t
	}
	return v
}
