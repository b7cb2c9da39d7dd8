package runway

import (
	"math"

	"burnrate/internal/core"

	"github.com/shopspring/decimal"
)

// MaxProjectionMonths bounds every forward simulation.
const MaxProjectionMonths = 120

// Difference compares a predicted runway with the original one.
// Percentage follows IEEE-754 division, so an original runway of zero
// yields a non-finite value.
type Difference struct {
	Months     float64
	Percentage float64
}

// Forecast is the full projection report for a set of predicted expenses.
type Forecast struct {
	Actual           Summary
	Series           []Entry
	OriginalRunway   float64
	OriginalEndDate  string
	PredictedRunway  *int
	PredictedEndDate string
	Difference       *Difference
}

// MonthlySpend returns the spend for month m: the baseline plus every
// predicted expense whose range covers m. Averaged expenses are spread
// evenly over their own range, others repeat in full each month.
func MonthlySpend(baseline decimal.Decimal, m core.Month, expenses []core.PredictedExpense) decimal.Decimal {
	spend := baseline
	for _, e := range expenses {
		if e.StartDate > m || e.EndDate < m {
			continue
		}
		if e.IsAveraged {
			span := core.MonthsBetween(e.StartDate, e.EndDate) + 1
			spend = spend.Add(e.Amount.Div(decimal.NewFromInt(int64(span))))
		} else {
			spend = spend.Add(e.Amount)
		}
	}
	return spend
}

// ProjectSeries returns the actual series followed by simulated months,
// starting the month after the last actual one with the remaining
// balance. The simulation stops once the balance is exhausted or after
// MaxProjectionMonths. Reported balances are floored at zero.
func ProjectSeries(s Summary, expenses []core.PredictedExpense) []Entry {
	last, ok := s.LastMonth()
	if !ok {
		return []Entry{}
	}

	out := make([]Entry, len(s.Series), len(s.Series)+MaxProjectionMonths)
	copy(out, s.Series)

	balance := s.RemainingAssets
	month := last.Next()
	for i := 0; balance.IsPositive() && i < MaxProjectionMonths; i++ {
		spend := MonthlySpend(s.AvgMonthlySpend, month, expenses)
		balance = balance.Sub(spend)

		out = append(out, Entry{
			Date:      month,
			Assets:    decimal.Max(balance, decimal.Zero),
			Spending:  spend,
			Revenue:   decimal.Zero,
			Projected: true,
		})
		month = month.Next()
	}

	return out
}

// PredictRunway counts the months the remaining balance lasts under the
// predicted expenses. The simulation is anchored at the earliest expense
// start month, not at the end of the actual series. ok is false when
// there are no expenses.
func PredictRunway(s Summary, expenses []core.PredictedExpense) (months int, ok bool) {
	if len(expenses) == 0 {
		return 0, false
	}

	start := expenses[0].StartDate
	for _, e := range expenses[1:] {
		if e.StartDate < start {
			start = e.StartDate
		}
	}

	balance := s.RemainingAssets
	for balance.IsPositive() && months < MaxProjectionMonths {
		balance = balance.Sub(MonthlySpend(s.AvgMonthlySpend, start.AddMonths(months), expenses))
		months++
	}
	return months, true
}

// CompareRunway reports how far predicted moves away from original.
func CompareRunway(original float64, predicted int) Difference {
	months := float64(predicted) - original
	return Difference{
		Months:     months,
		Percentage: months / original * 100,
	}
}

// EndDate returns the month the runway runs out, counted from the last
// month of the series, formatted like "Mar 2025". It is "N/A" for a
// non-finite runway or an empty series.
func EndDate(series []Entry, runway float64) string {
	if len(series) == 0 || math.IsInf(runway, 0) || math.IsNaN(runway) {
		return "N/A"
	}
	last := series[len(series)-1].Date
	return last.AddMonths(int(math.Floor(runway))).Label()
}

// BuildForecast assembles the projection report shown next to the
// actual series.
func BuildForecast(s Summary, expenses []core.PredictedExpense) Forecast {
	f := Forecast{
		Actual:          s,
		Series:          ProjectSeries(s, expenses),
		OriginalRunway:  s.Runway,
		OriginalEndDate: EndDate(s.Series, s.Runway),
	}

	if predicted, ok := PredictRunway(s, expenses); ok {
		diff := CompareRunway(s.Runway, predicted)
		f.PredictedRunway = &predicted
		f.PredictedEndDate = EndDate(s.Series, float64(predicted))
		f.Difference = &diff
	}

	return f
}
