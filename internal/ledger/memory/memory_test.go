package memory

import (
	"context"
	"errors"
	"testing"

	"burnrate/internal/core"

	"github.com/shopspring/decimal"
)

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAssetCreateListOrderAndCategory(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.UpsertCategory(ctx, core.AssetCategory{Name: "Equity", Color: "#111111"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	for _, a := range []core.Asset{
		{Name: "Seed", Amount: amt("1000"), Date: "2024-01-10", Category: "Equity"},
		{Name: "Grant", Amount: amt("500"), Date: "2024-03-01", Category: "Grants"},
	} {
		if _, err := s.CreateAsset(ctx, a); err != nil {
			t.Fatalf("create asset: %v", err)
		}
	}

	assets, _ := s.ListAssets(ctx)
	if len(assets) != 2 || assets[0].Name != "Grant" || assets[1].Name != "Seed" {
		t.Fatalf("expected newest first, got %+v", assets)
	}

	cats, _ := s.ListCategories(ctx)
	if len(cats) != 2 || cats[0].Name != "Equity" || cats[1].Name != "Grants" {
		t.Fatalf("unexpected categories: %+v", cats)
	}
	if cats[0].Color != "#111111" {
		t.Fatalf("existing category color must be kept, got %q", cats[0].Color)
	}
	if cats[1].Color != "" {
		t.Fatalf("auto-created category should have no color, got %q", cats[1].Color)
	}
}

func TestUpsertCategoryKeepsID(t *testing.T) {
	ctx := context.Background()
	s := New()

	id1, _ := s.UpsertCategory(ctx, core.AssetCategory{Name: "Equity", Color: "#111111"})
	id2, _ := s.UpsertCategory(ctx, core.AssetCategory{Name: "Equity", Color: "#222222"})
	if id1 != id2 {
		t.Fatalf("upsert changed id: %d -> %d", id1, id2)
	}
	cats, _ := s.ListCategories(ctx)
	if len(cats) != 1 || cats[0].Color != "#222222" {
		t.Fatalf("unexpected categories after upsert: %+v", cats)
	}
}

func TestDeleteSpendingCascades(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.ImportSpending(ctx,
		core.Spending{Amount: amt("30"), Date: "2024-02", IsAdvanced: true},
		[]core.Transaction{
			{PaymentType: "card", Amount: amt("20"), Date: "2024-02-03"},
			{PaymentType: "cash", Amount: amt("10"), Date: "2024-02-01"},
		})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	other, _ := s.ImportSpending(ctx, core.Spending{Amount: amt("5"), Date: "2024-03"},
		[]core.Transaction{{PaymentType: "card", Amount: amt("5"), Date: "2024-03-01"}})

	txs, _ := s.ListTransactions(ctx, id)
	if len(txs) != 2 || txs[0].PaymentType != "cash" || txs[0].SpendingID != id {
		t.Fatalf("expected oldest transaction first, got %+v", txs)
	}

	if err := s.DeleteSpending(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if txs, _ := s.ListTransactions(ctx, id); len(txs) != 0 {
		t.Fatalf("transactions not cascaded: %+v", txs)
	}
	if txs, _ := s.ListTransactions(ctx, other); len(txs) != 1 {
		t.Fatalf("unrelated transactions removed: %+v", txs)
	}
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	cases := map[string]error{
		"update asset":    s.UpdateAsset(ctx, core.Asset{ID: 42}),
		"delete asset":    s.DeleteAsset(ctx, 42),
		"update spending": s.UpdateSpending(ctx, core.Spending{ID: 42}),
		"delete spending": s.DeleteSpending(ctx, 42),
		"update revenue":  s.UpdateRevenue(ctx, core.Revenue{ID: 42}),
		"delete revenue":  s.DeleteRevenue(ctx, 42),
	}
	for name, err := range cases {
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestSnapshotIsAscending(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, _ = s.CreateRevenue(ctx, core.Revenue{Amount: amt("1"), Date: "2024-05"})
	_, _ = s.CreateRevenue(ctx, core.Revenue{Amount: amt("2"), Date: "2024-01"})
	_, _ = s.CreateSpending(ctx, core.Spending{Amount: amt("3"), Date: "2024-04"})
	_, _ = s.CreateSpending(ctx, core.Spending{Amount: amt("4"), Date: "2024-04"})

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Revenues[0].Date != "2024-01" {
		t.Fatalf("revenue not ascending: %+v", snap.Revenues)
	}
	if !snap.Spendings[0].Amount.Equal(amt("3")) {
		t.Fatalf("same-month records must keep insertion order: %+v", snap.Spendings)
	}

	// Snapshot copies must not alias the store.
	snap.Revenues[0].Date = "1999-01"
	rev, _ := s.ListRevenue(ctx)
	for _, r := range rev {
		if r.Date == "1999-01" {
			t.Fatal("snapshot aliases store data")
		}
	}
}
