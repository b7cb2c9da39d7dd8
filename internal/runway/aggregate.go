// Package runway derives the monthly financial series, burn and runway
// figures from ledger snapshots, and projects them forward under
// hypothetical expenses.
package runway

import (
	"math"
	"sort"

	"burnrate/internal/core"

	"github.com/shopspring/decimal"
)

// Snapshot is a point-in-time copy of the ledgers the aggregation reads.
type Snapshot struct {
	Assets     []core.Asset
	Spendings  []core.Spending
	Revenues   []core.Revenue
	Categories []core.AssetCategory
}

// NewAsset is one asset injection shown in the month it was recorded.
type NewAsset struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Color    string          `json:"color"`
}

// Entry is one month of the financial series. Assets is the running
// balance after that month's movements.
type Entry struct {
	Date      core.Month      `json:"date"`
	Assets    decimal.Decimal `json:"assets"`
	Spending  decimal.Decimal `json:"spending"`
	Revenue   decimal.Decimal `json:"revenue"`
	NewAssets []NewAsset      `json:"newAssets,omitempty"`
	Projected bool            `json:"projected,omitempty"`
}

// Summary is the aggregated series plus its headline figures. Runway is
// +Inf when there is no spend to burn through the balance.
type Summary struct {
	Series          []Entry
	AvgMonthlySpend decimal.Decimal
	RemainingAssets decimal.Decimal
	Runway          float64
}

// Aggregate merges the asset, spending and revenue ledgers into one entry
// per calendar month, in ascending order.
//
// Only the first spending and the first revenue record of a month (in
// snapshot order) are applied. Months without a spending record do not
// count toward the average monthly spend.
func Aggregate(s Snapshot) Summary {
	colors := make(map[string]string, len(s.Categories))
	for _, c := range s.Categories {
		if _, seen := colors[c.Name]; !seen {
			colors[c.Name] = c.Color
		}
	}

	months := make(map[core.Month]struct{})
	assetsByMonth := make(map[core.Month][]core.Asset)
	for _, a := range s.Assets {
		m, ok := core.MonthOf(a.Date)
		if !ok {
			continue
		}
		months[m] = struct{}{}
		assetsByMonth[m] = append(assetsByMonth[m], a)
	}

	spendByMonth := make(map[core.Month]core.Spending)
	for _, sp := range s.Spendings {
		m, ok := core.MonthOf(sp.Date)
		if !ok {
			continue
		}
		months[m] = struct{}{}
		if _, seen := spendByMonth[m]; !seen {
			spendByMonth[m] = sp
		}
	}

	revenueByMonth := make(map[core.Month]core.Revenue)
	for _, r := range s.Revenues {
		m, ok := core.MonthOf(r.Date)
		if !ok {
			continue
		}
		months[m] = struct{}{}
		if _, seen := revenueByMonth[m]; !seen {
			revenueByMonth[m] = r
		}
	}

	ordered := make([]core.Month, 0, len(months))
	for m := range months {
		ordered = append(ordered, m)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	summary := Summary{
		Series:          make([]Entry, 0, len(ordered)),
		AvgMonthlySpend: decimal.Zero,
		RemainingAssets: decimal.Zero,
	}

	balance := decimal.Zero
	spendTotal := decimal.Zero
	spendMonths := 0

	for _, m := range ordered {
		entry := Entry{Date: m, Spending: decimal.Zero, Revenue: decimal.Zero}

		for _, a := range assetsByMonth[m] {
			balance = balance.Add(a.Amount)
			color := colors[a.Category]
			if color == "" {
				color = core.DefaultCategoryColor
			}
			entry.NewAssets = append(entry.NewAssets, NewAsset{
				Amount:   a.Amount,
				Category: a.Category,
				Color:    color,
			})
		}

		if sp, ok := spendByMonth[m]; ok {
			balance = balance.Sub(sp.Amount)
			spendTotal = spendTotal.Add(sp.Amount)
			spendMonths++
			entry.Spending = sp.Amount
		}

		if r, ok := revenueByMonth[m]; ok {
			balance = balance.Add(r.Amount)
			entry.Revenue = r.Amount
		}

		entry.Assets = balance
		summary.Series = append(summary.Series, entry)
	}

	if spendMonths > 0 {
		summary.AvgMonthlySpend = spendTotal.Div(decimal.NewFromInt(int64(spendMonths)))
	}
	summary.RemainingAssets = balance
	summary.Runway = Months(balance, summary.AvgMonthlySpend)

	return summary
}

// Months returns how many months balance lasts at the given monthly
// spend, or +Inf when spend is not positive.
func Months(balance, spend decimal.Decimal) float64 {
	if !spend.IsPositive() {
		return math.Inf(1)
	}
	return balance.Div(spend).InexactFloat64()
}

// LastMonth returns the month of the final series entry.
func (s Summary) LastMonth() (core.Month, bool) {
	if len(s.Series) == 0 {
		return "", false
	}
	return s.Series[len(s.Series)-1].Date, true
}
