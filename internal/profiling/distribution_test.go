package profiling

import (
	"context"
	"math"
	"testing"

	"datadash/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileTable() *table.Table {
	columns := []table.Column{
		{Name: "region", Kind: table.KindText},
		{Name: "sales", Kind: table.KindNumeric},
		{Name: "blank", Kind: table.KindNumeric},
	}
	rows := [][]table.Cell{
		{table.TextCell("east"), table.NumericCell("10", 10), table.MissingCell("")},
		{table.TextCell("west"), table.NumericCell("20", 20), table.MissingCell("")},
		{table.TextCell("east"), table.NumericCell("30", 30), table.MissingCell("")},
		{table.MissingCell(""), table.MissingCell("NA"), table.MissingCell("")},
	}
	return table.New(columns, rows)
}

func TestSummarize(t *testing.T) {
	da := NewDistributionAnalyzer()

	summaries, err := da.Summarize(context.Background(), profileTable())
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	region := summaries[0]
	assert.Equal(t, "region", region.Name)
	assert.Equal(t, 3, region.Count)
	assert.Equal(t, 1, region.Missing)
	assert.Equal(t, 2, region.Distinct)
	assert.Equal(t, "east", region.Top)
	assert.Equal(t, 2, region.TopFreq)
	assert.True(t, math.IsNaN(region.Mean))

	sales := summaries[1]
	assert.Equal(t, 3, sales.Count)
	assert.Equal(t, 1, sales.Missing)
	assert.Empty(t, sales.Top)
	assert.InDelta(t, 20.0, sales.Mean, 1e-9)
	assert.InDelta(t, 10.0, sales.StdDev, 1e-9)
	assert.Equal(t, 10.0, sales.Min)
	assert.Equal(t, 20.0, sales.Median)
	assert.Equal(t, 30.0, sales.Max)

	blank := summaries[2]
	assert.Equal(t, 0, blank.Count)
	assert.Equal(t, 4, blank.Missing)
	assert.True(t, math.IsNaN(blank.Mean))
}

func TestSummarizeSingleValueHasNoStdDev(t *testing.T) {
	columns := []table.Column{{Name: "v", Kind: table.KindNumeric}}
	rows := [][]table.Cell{{table.NumericCell("7", 7)}}

	s := NewDistributionAnalyzer().SummarizeColumn(table.New(columns, rows), columns[0])

	assert.Equal(t, 7.0, s.Mean)
	assert.True(t, math.IsNaN(s.StdDev))
}

func TestSummarizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDistributionAnalyzer().Summarize(ctx, profileTable())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatStat(t *testing.T) {
	assert.Equal(t, "-", FormatStat(math.NaN()))
	assert.Equal(t, "20", FormatStat(20))
	assert.Equal(t, "3.33333", FormatStat(10.0/3))
}
