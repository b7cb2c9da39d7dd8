package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"burnrate/internal/core"
	"burnrate/internal/ledger/memory"
	"burnrate/internal/runway"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	must := func(_ int64, err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(store.CreateAsset(ctx, core.Asset{Name: "Seed", Amount: amt("1200"), Date: "2024-01-03", Category: "Equity"}))
	must(store.CreateSpending(ctx, core.Spending{Amount: amt("100"), Date: "2024-01"}))
	must(store.CreateSpending(ctx, core.Spending{Amount: amt("200"), Date: "2024-02"}))
	must(store.CreateRevenue(ctx, core.Revenue{Amount: amt("50"), Date: "2024-02"}))
	return store
}

func TestDashboardService_FinancialData(t *testing.T) {
	svc := NewDashboardService(seededStore(t))

	s, err := svc.FinancialData(context.Background())
	if err != nil {
		t.Fatalf("financial data: %v", err)
	}
	if len(s.Series) != 2 || !s.RemainingAssets.Equal(amt("950")) || !s.AvgMonthlySpend.Equal(amt("150")) {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestDashboardService_ForecastAssignsIDs(t *testing.T) {
	svc := NewDashboardService(seededStore(t))
	input := []core.PredictedExpense{
		{Name: "Hire", Amount: amt("300"), StartDate: "2024-03", EndDate: "2024-12"},
		{ID: "keep-me", Name: "Audit", Amount: amt("600"), StartDate: "2024-06", EndDate: "2024-11", IsAveraged: true},
	}

	fc, expenses, err := svc.Forecast(context.Background(), input)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if expenses[0].ID == "" || expenses[1].ID != "keep-me" {
		t.Fatalf("unexpected ids: %q %q", expenses[0].ID, expenses[1].ID)
	}
	if input[0].ID != "" {
		t.Fatal("input slice must not be modified")
	}
	if fc.PredictedRunway == nil || fc.Difference == nil {
		t.Fatalf("expected predicted runway and difference: %+v", fc)
	}
	if *fc.PredictedRunway >= int(fc.OriginalRunway) {
		t.Fatalf("extra expenses should shorten the runway: predicted %d, original %.2f", *fc.PredictedRunway, fc.OriginalRunway)
	}
}

func TestDashboardService_ForecastRejectsInvalidExpense(t *testing.T) {
	svc := NewDashboardService(seededStore(t))

	_, _, err := svc.Forecast(context.Background(), []core.PredictedExpense{
		{Name: "Backwards", Amount: amt("1"), StartDate: "2025-05", EndDate: "2025-01"},
	})
	if !errors.Is(err, core.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestDashboardService_Statistics(t *testing.T) {
	svc := NewDashboardService(seededStore(t))

	st, ok, err := svc.Statistics(context.Background())
	if err != nil || !ok {
		t.Fatalf("statistics: ok=%v err=%v", ok, err)
	}
	if !st.BurnRate.Equal(amt("150")) || st.RunwayEndDate != "Aug 2024" {
		t.Fatalf("unexpected stats: %+v", st)
	}

	_, ok, _ = NewDashboardService(memory.New()).Statistics(context.Background())
	if ok {
		t.Fatal("empty ledger should have no statistics")
	}
}

type failingSnapshotter struct{}

func (failingSnapshotter) Snapshot(context.Context) (runway.Snapshot, error) {
	return runway.Snapshot{}, errors.New("disk on fire")
}

func TestDashboardService_SnapshotError(t *testing.T) {
	svc := NewDashboardService(failingSnapshotter{})
	if _, err := svc.FinancialData(context.Background()); err == nil {
		t.Fatal("expected snapshot error")
	}
	var buf bytes.Buffer
	if err := svc.ExportXLSX(context.Background(), &buf, nil); err == nil {
		t.Fatal("expected export to fail")
	}
}

func TestDashboardService_ExportXLSX(t *testing.T) {
	svc := NewDashboardService(seededStore(t))
	var buf bytes.Buffer
	if err := svc.ExportXLSX(context.Background(), &buf, nil); err != nil {
		t.Fatalf("export: %v", err)
	}
	// XLSX files are zip archives.
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Fatal("export is not a zip archive")
	}
}
