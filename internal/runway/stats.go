package runway

import (
	"math"

	"github.com/shopspring/decimal"
)

// Stats compares the latest month with the one before it. Change values
// are percentages.
type Stats struct {
	BurnRate              decimal.Decimal
	BurnRateChange        float64
	Runway                float64
	RunwayChange          float64
	RunwayEndDate         string
	AvgMonthlySpend       decimal.Decimal
	AvgMonthlySpendChange float64
	RemainingAssets       decimal.Decimal
}

// BurnRate is the net outflow of a month: spending minus revenue,
// floored at zero.
func BurnRate(e Entry) decimal.Decimal {
	return decimal.Max(e.Spending.Sub(e.Revenue), decimal.Zero)
}

// Statistics needs at least two months of history; ok is false otherwise.
func Statistics(s Summary) (Stats, bool) {
	if len(s.Series) < 2 {
		return Stats{}, false
	}
	cur := s.Series[len(s.Series)-1]
	prev := s.Series[len(s.Series)-2]

	st := Stats{
		BurnRate:        BurnRate(cur),
		Runway:          s.Runway,
		RunwayEndDate:   EndDate(s.Series, s.Runway),
		AvgMonthlySpend: s.AvgMonthlySpend,
		RemainingAssets: s.RemainingAssets,
	}

	st.BurnRateChange = percentChange(st.BurnRate, BurnRate(prev))
	st.AvgMonthlySpendChange = percentChange(s.AvgMonthlySpend, prev.Spending)

	prevRunway := Months(prev.Assets, s.AvgMonthlySpend)
	if !math.IsInf(prevRunway, 0) {
		st.RunwayChange = (s.Runway - prevRunway) / prevRunway * 100
	}

	return st, true
}

// percentChange is zero when there is no base to compare against.
func percentChange(cur, base decimal.Decimal) float64 {
	if base.IsZero() {
		return 0
	}
	return cur.Sub(base).Div(base).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
