package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"burnrate/internal/core"
	"burnrate/internal/export"
	"burnrate/internal/ledger"
	"burnrate/internal/runway"

	"github.com/google/uuid"
)

// DashboardService derives the financial views from a fresh ledger
// snapshot on every call. Nothing derived is stored.
type DashboardService struct {
	ledger ledger.Snapshotter
}

func NewDashboardService(l ledger.Snapshotter) *DashboardService {
	return &DashboardService{ledger: l}
}

// FinancialData returns the aggregated monthly series and its headline
// figures.
func (s *DashboardService) FinancialData(ctx context.Context) (runway.Summary, error) {
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return runway.Summary{}, fmt.Errorf("load ledger snapshot: %w", err)
	}
	return runway.Aggregate(snap), nil
}

// Forecast projects the current series under the given expenses. Expenses
// without an ID receive one; the normalized list is returned alongside the
// report so callers can keep it.
func (s *DashboardService) Forecast(ctx context.Context, expenses []core.PredictedExpense) (runway.Forecast, []core.PredictedExpense, error) {
	normalized, err := PrepareExpenses(expenses)
	if err != nil {
		return runway.Forecast{}, nil, err
	}

	summary, err := s.FinancialData(ctx)
	if err != nil {
		return runway.Forecast{}, nil, err
	}

	return runway.BuildForecast(summary, normalized), normalized, nil
}

// Statistics compares the latest month with the previous one. ok is false
// with fewer than two months of history.
func (s *DashboardService) Statistics(ctx context.Context) (runway.Stats, bool, error) {
	summary, err := s.FinancialData(ctx)
	if err != nil {
		return runway.Stats{}, false, err
	}
	st, ok := runway.Statistics(summary)
	return st, ok, nil
}

// ExportXLSX writes the series, and the forecast when expenses are given,
// as an Excel workbook.
func (s *DashboardService) ExportXLSX(ctx context.Context, w io.Writer, expenses []core.PredictedExpense) error {
	summary, err := s.FinancialData(ctx)
	if err != nil {
		return err
	}

	var fc *runway.Forecast
	if len(expenses) > 0 {
		normalized, err := PrepareExpenses(expenses)
		if err != nil {
			return err
		}
		f := runway.BuildForecast(summary, normalized)
		fc = &f
	}

	return export.WriteWorkbook(w, summary, fc)
}

// PrepareExpenses validates each expense and assigns missing IDs. The
// input slice is not modified.
func PrepareExpenses(expenses []core.PredictedExpense) ([]core.PredictedExpense, error) {
	out := make([]core.PredictedExpense, 0, len(expenses))
	for i, e := range expenses {
		e.Name = strings.TrimSpace(e.Name)
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("predicted expense %d: %w", i+1, err)
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		out = append(out, e)
	}
	return out, nil
}
