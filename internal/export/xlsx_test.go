package export

import (
	"bytes"
	"testing"

	"burnrate/internal/core"
	"burnrate/internal/runway"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fixture() runway.Summary {
	return runway.Aggregate(runway.Snapshot{
		Assets: []core.Asset{{Name: "Seed", Amount: decimal.NewFromInt(1200), Date: "2024-01-02", Category: "Equity"}},
		Spendings: []core.Spending{
			{Amount: decimal.NewFromInt(100), Date: "2024-01"},
			{Amount: decimal.NewFromInt(200), Date: "2024-02"},
		},
	})
}

func TestWriteWorkbook_SeriesAndSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, fixture(), nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SeriesSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(SeriesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, seriesHeaders, rows[0])
	assert.Equal(t, "2024-01", rows[1][0])
	assert.Equal(t, "Equity 1200.00", rows[1][4])

	assets, err := f.GetCellValue(SeriesSheet, "B3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "900", assets)

	end, err := f.GetCellValue(SummarySheet, "B4")
	require.NoError(t, err)
	assert.Equal(t, "Aug 2024", end)
}

func TestWriteWorkbook_Forecast(t *testing.T) {
	s := fixture()
	fc := runway.BuildForecast(s, []core.PredictedExpense{{
		Name: "Hire", Amount: decimal.NewFromInt(150), StartDate: "2024-03", EndDate: "2024-12",
	}})

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, s, &fc))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ForecastSheet)
	require.NoError(t, err)
	require.Len(t, rows, len(fc.Series)+1)
	assert.Equal(t, "Projected", rows[0][5])
	assert.Equal(t, "TRUE", rows[len(rows)-1][5])

	label, _ := f.GetCellValue(SummarySheet, "A5")
	assert.Equal(t, "Predicted runway (months)", label)
}

func TestWriteWorkbook_InfiniteRunway(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, runway.Aggregate(runway.Snapshot{}), nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	v, _ := f.GetCellValue(SummarySheet, "B3")
	assert.Equal(t, "N/A", v)
}

func TestWriteSeries_ReportsSheetErrors(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	st, err := newStyles(f)
	require.NoError(t, err)

	err = writeSeries(f, st, "Missing", fixture().Series, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")
}

func TestWriteWorkbook_EmptySeries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, runway.Aggregate(runway.Snapshot{}), nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SeriesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, seriesHeaders, rows[0])
}
