package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesTable() *Table {
	return New(
		[]Column{{Name: "region", Kind: KindText}, {Name: "sales", Kind: KindNumeric}},
		[][]Cell{
			{TextCell("east"), NumericCell("10", 10)},
			{TextCell("west"), NumericCell("20", 20)},
			{TextCell("east"), NumericCell("30", 30)},
		},
	)
}

func TestDistinctKeepsFirstOccurrenceOrder(t *testing.T) {
	values := salesTable().Distinct("region")

	require.Len(t, values, 2)
	assert.Equal(t, "east", values[0].Label)
	assert.Equal(t, 2, values[0].Count)
	assert.Equal(t, "west", values[1].Label)
	assert.Equal(t, 1, values[1].Count)
}

func TestDistinctCanonicalizesNumbers(t *testing.T) {
	tbl := New(
		[]Column{{Name: "v", Kind: KindNumeric}},
		[][]Cell{{NumericCell("10", 10)}, {NumericCell("10.0", 10)}, {MissingCell("")}, {MissingCell("NA")}},
	)

	values := tbl.Distinct("v")

	require.Len(t, values, 2)
	assert.Equal(t, "10", values[0].Label)
	assert.Equal(t, 2, values[0].Count)
	assert.Equal(t, MissingKey, values[1].Key)
	assert.Equal(t, MissingLabel, values[1].Label)
}

func TestDistinctUnknownColumn(t *testing.T) {
	assert.Nil(t, salesTable().Distinct("nope"))
}

func TestFilterSubsetOfRows(t *testing.T) {
	tbl := salesTable()
	east := tbl.Distinct("region")[0]

	filtered := tbl.Filter("region", map[string]bool{east.Key: true})

	require.Equal(t, 2, filtered.NumRows())
	assert.Equal(t, tbl.NumColumns(), filtered.NumColumns())
	assert.Equal(t, []float64{10, 30}, filtered.Floats("sales"))
	// source is untouched
	assert.Equal(t, 3, tbl.NumRows())
}

func TestFilterAllValuesKeepsEveryRow(t *testing.T) {
	tbl := salesTable()
	keep := map[string]bool{}
	for _, v := range tbl.Distinct("region") {
		keep[v.Key] = true
	}

	filtered := tbl.Filter("region", keep)

	assert.Equal(t, tbl.NumRows(), filtered.NumRows())
}

func TestFilterNothingSelected(t *testing.T) {
	filtered := salesTable().Filter("region", map[string]bool{})

	assert.Equal(t, 0, filtered.NumRows())
	assert.Equal(t, 2, filtered.NumColumns())
	assert.Equal(t, []string{"region", "sales"}, filtered.ColumnNames())
}

func TestNumericColumnHelpers(t *testing.T) {
	tbl := New(
		[]Column{{Name: "a", Kind: KindText}, {Name: "b", Kind: KindNumeric}, {Name: "c", Kind: KindNumeric}},
		nil,
	)

	first, ok := tbl.FirstNumericColumn()
	require.True(t, ok)
	assert.Equal(t, "b", first)
	assert.Equal(t, []string{"b", "c"}, tbl.NumericColumns())

	textOnly := New([]Column{{Name: "a", Kind: KindText}}, nil)
	_, ok = textOnly.FirstNumericColumn()
	assert.False(t, ok)
	assert.Empty(t, textOnly.NumericColumns())
}

func TestFloatsSkipsMissing(t *testing.T) {
	tbl := New(
		[]Column{{Name: "v", Kind: KindNumeric}, {Name: "s", Kind: KindText}},
		[][]Cell{{NumericCell("1", 1), TextCell("x")}, {MissingCell(""), TextCell("y")}, {NumericCell("3", 3), TextCell("z")}},
	)

	assert.Equal(t, []float64{1, 3}, tbl.Floats("v"))
	assert.Nil(t, tbl.Floats("s"))
	assert.Nil(t, tbl.Floats("missing"))
}
