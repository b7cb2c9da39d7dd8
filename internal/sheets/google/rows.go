package google

import (
	"fmt"
	"math"

	"burnrate/internal/runway"

	"github.com/shopspring/decimal"
)

var seriesHeader = []any{"Month", "Assets", "Spending", "Revenue", "Burn", "New assets"}

// SeriesRows lays out the summary as sheet rows: a header, one row per
// month, a blank row and the headline figures. Amounts are plain decimal
// strings so USER_ENTERED stores them as numbers.
func SeriesRows(s runway.Summary) [][]any {
	rows := make([][]any, 0, len(s.Series)+6)
	rows = append(rows, seriesHeader)

	for _, e := range s.Series {
		injected := decimal.Zero
		for _, a := range e.NewAssets {
			injected = injected.Add(a.Amount)
		}
		rows = append(rows, []any{
			e.Date.Label(),
			amount(e.Assets),
			amount(e.Spending),
			amount(e.Revenue),
			amount(runway.BurnRate(e)),
			amount(injected),
		})
	}

	rows = append(rows,
		[]any{},
		[]any{"Avg monthly spend", amount(s.AvgMonthlySpend)},
		[]any{"Remaining assets", amount(s.RemainingAssets)},
		[]any{"Runway (months)", months(s.Runway)},
		[]any{"Runway ends", runway.EndDate(s.Series, s.Runway)},
	)
	return rows
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func months(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", f)
}
