package main

import (
	"context"
	"errors"
	"fmt"

	"burnrate/internal/cli"
	"burnrate/internal/core"

	"github.com/spf13/cobra"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Project runway under the predicted expenses of a scenario file",
	RunE:  withApp(runForecast),
}

func init() {
	forecastCmd.Flags().StringVarP(&flagScenario, "scenario", "s", "", "TOML scenario file with [[expense]] entries")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(ctx context.Context, a *app, _ []string) error {
	if flagScenario == "" {
		return errors.New("--scenario is required")
	}
	sc, err := loadScenario()
	if err != nil {
		return err
	}

	fc, expenses, err := a.dashboard.Forecast(ctx, sc.Expenses)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("RUNWAY FORECAST"))
	fmt.Println()

	exp := cli.Table{Title: "Predicted expenses", Headers: []string{"Name", "Amount", "From", "To", "Spread"}}
	for _, e := range expenses {
		spread := "monthly"
		if e.IsAveraged {
			spread = "averaged"
		}
		exp.Rows = append(exp.Rows, []string{e.Name, core.FormatDollars(e.Amount), e.StartDate.Label(), e.EndDate.Label(), spread})
	}
	fmt.Print(cli.RenderTable(exp))
	fmt.Println()

	fmt.Print(cli.RenderTable(seriesTable("Projected series", fc.Series)))
	fmt.Println()

	alert := float64(a.cfg.RunwayAlertMonths)
	rows := [][]string{
		{"Current runway", cli.RenderRunway(finite(fc.OriginalRunway), alert)},
		{"Current end", fc.OriginalEndDate},
	}
	if fc.PredictedRunway != nil {
		predicted := float64(*fc.PredictedRunway)
		rows = append(rows,
			[]string{"---"},
			[]string{"Predicted runway", cli.RenderRunway(&predicted, alert)},
			[]string{"Predicted end", fc.PredictedEndDate},
		)
	}
	if fc.Difference != nil {
		rows = append(rows, []string{"Difference", fmt.Sprintf("%s months (%s)",
			formatSigned(finite(fc.Difference.Months)), cli.FormatPercent(finite(fc.Difference.Percentage)))})
	}
	fmt.Print(cli.RenderTable(cli.Table{Headers: []string{"Metric", "Value"}, Rows: rows}))
	return nil
}

func formatSigned(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f", *p)
}
