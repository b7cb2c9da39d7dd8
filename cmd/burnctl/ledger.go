package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"burnrate/internal/auth"
	"burnrate/internal/core"

	"github.com/spf13/cobra"
)

var (
	flagMonth    string
	flagCategory string
	flagNote     string
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import a bank CSV export as one month of spending",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening CSV: %w", err)
		}
		defer f.Close()

		res, err := a.importer.ImportCSV(ctx, f, flagMonth)
		if err != nil {
			return err
		}
		fmt.Printf("  Imported spending #%d: %s from %d transactions (%d rows without a readable date)\n",
			res.SpendingID, core.FormatDollars(res.TotalAmount), res.Imported, res.Skipped)
		return nil
	}),
}

var exportCmd = &cobra.Command{
	Use:   "export <out.xlsx>",
	Short: "Write the series, and a forecast with --scenario, as an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		sc, err := loadScenario()
		if err != nil {
			return err
		}
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("creating workbook: %w", err)
		}
		if err := a.dashboard.ExportXLSX(ctx, f, sc.Expenses); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Println("  Wrote", args[0])
		return nil
	}),
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an asset, a month of spending or a month of revenue",
}

var addSpendingCmd = &cobra.Command{
	Use:   "spending <YYYY-MM> <amount>",
	Short: "Record a month's total spending",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		amount, err := core.ParseAmount(args[1])
		if err != nil {
			return err
		}
		id, err := a.ledger.CreateSpending(ctx, core.Spending{Date: args[0], Amount: amount})
		if err != nil {
			return err
		}
		fmt.Printf("  Recorded spending #%d\n", id)
		return nil
	}),
}

var addRevenueCmd = &cobra.Command{
	Use:   "revenue <YYYY-MM> <amount>",
	Short: "Record a month's revenue",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		amount, err := core.ParseAmount(args[1])
		if err != nil {
			return err
		}
		id, err := a.ledger.CreateRevenue(ctx, core.Revenue{Date: args[0], Amount: amount})
		if err != nil {
			return err
		}
		fmt.Printf("  Recorded revenue #%d\n", id)
		return nil
	}),
}

var addAssetCmd = &cobra.Command{
	Use:   "asset <name> <YYYY-MM-DD> <amount>",
	Short: "Record an asset injection such as a funding round",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		amount, err := core.ParseAmount(args[2])
		if err != nil {
			return err
		}
		id, err := a.ledger.CreateAsset(ctx, core.Asset{
			Name:     args[0],
			Date:     args[1],
			Amount:   amount,
			Category: flagCategory,
			Note:     flagNote,
		})
		if err != nil {
			return err
		}
		fmt.Printf("  Recorded asset #%d\n", id)
		return nil
	}),
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print a bcrypt hash for DASHBOARD_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if strings.TrimSpace(args[0]) == "" {
			return fmt.Errorf("password must not be empty")
		}
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&flagMonth, "month", "", "Spending month, YYYY-MM")
	_ = importCmd.MarkFlagRequired("month")

	exportCmd.Flags().StringVarP(&flagScenario, "scenario", "s", "", "TOML scenario file to add a forecast sheet")

	addAssetCmd.Flags().StringVar(&flagCategory, "category", "Equity", "Asset category")
	addAssetCmd.Flags().StringVar(&flagNote, "note", "", "Free-form note")
	addCmd.AddCommand(addSpendingCmd, addRevenueCmd, addAssetCmd)

	rootCmd.AddCommand(importCmd, exportCmd, addCmd, hashPasswordCmd)
}
