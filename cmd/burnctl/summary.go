package main

import (
	"context"
	"fmt"

	"burnrate/internal/cli"
	"burnrate/internal/core"
	"burnrate/internal/runway"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Monthly series, burn and runway",
	RunE:  withApp(runSummary),
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(ctx context.Context, a *app, _ []string) error {
	summary, err := a.dashboard.FinancialData(ctx)
	if err != nil {
		return err
	}
	if len(summary.Series) == 0 {
		fmt.Println("\n  The ledger is empty.")
		fmt.Println("  Add assets and spending with `burnctl add` or `burnctl import`.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BURN RATE"))
	fmt.Println()
	fmt.Print(cli.RenderTable(seriesTable("Financial series", summary.Series)))
	fmt.Println()

	rows := [][]string{
		{"Remaining assets", core.FormatDollars(summary.RemainingAssets)},
		{"Avg monthly spend", core.FormatDollars(summary.AvgMonthlySpend)},
		{"Runway", cli.RenderRunway(finite(summary.Runway), float64(a.cfg.RunwayAlertMonths))},
		{"Runway ends", runway.EndDate(summary.Series, summary.Runway)},
	}
	if st, ok := runway.Statistics(summary); ok {
		rows = append(rows,
			[]string{"---"},
			[]string{"Burn rate", core.FormatDollars(st.BurnRate) + "  (" + cli.FormatPercent(finite(st.BurnRateChange)) + ")"},
			[]string{"Runway change", cli.FormatPercent(finite(st.RunwayChange))},
			[]string{"Spend vs last month", cli.FormatPercent(finite(st.AvgMonthlySpendChange))},
		)
	}
	fmt.Print(cli.RenderTable(cli.Table{Headers: []string{"Metric", "Value"}, Rows: rows}))
	return nil
}

// seriesTable renders entries, muting projected months.
func seriesTable(title string, series []runway.Entry) cli.Table {
	t := cli.Table{
		Title:   title,
		Headers: []string{"Month", "Assets", "Spending", "Revenue", "New assets"},
		Dim:     map[int]bool{},
	}
	for i, e := range series {
		injected := ""
		for _, na := range e.NewAssets {
			if injected != "" {
				injected += ", "
			}
			injected += na.Category + " " + core.FormatDollars(na.Amount)
		}
		t.Rows = append(t.Rows, []string{
			e.Date.Label(),
			core.FormatDollars(e.Assets),
			core.FormatDollars(e.Spending),
			core.FormatDollars(e.Revenue),
			injected,
		})
		if e.Projected {
			t.Dim[i] = true
		}
	}
	return t
}
