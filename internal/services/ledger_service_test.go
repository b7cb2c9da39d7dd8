package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"burnrate/internal/amqp"
	"burnrate/internal/core"
	"burnrate/internal/ledger/memory"

	"github.com/shopspring/decimal"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
	closed bool
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, ev *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLedgerService_CreateAssetPublishes(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewLedgerService(memory.New(), pub)

	id, err := svc.CreateAsset(ctx, core.Asset{Name: " Seed ", Amount: amt("1000"), Date: "2024-01-15", Category: "Equity"})
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected one event, got %d", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Kind != amqp.KindAsset || ev.Action != amqp.ActionCreated || ev.ID != id || ev.Date != "2024-01-15" {
		t.Fatalf("unexpected event: %+v", ev)
	}

	assets, _ := svc.ListAssets(ctx)
	if len(assets) != 1 || assets[0].Name != "Seed" {
		t.Fatalf("asset not trimmed: %+v", assets)
	}
	cats, _ := svc.ListCategories(ctx)
	if len(cats) != 1 || cats[0].Name != "Equity" {
		t.Fatalf("category not auto-created: %+v", cats)
	}
}

func TestLedgerService_Validation(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewLedgerService(memory.New(), pub)

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"asset without name", func() error {
			_, err := svc.CreateAsset(ctx, core.Asset{Amount: amt("1"), Date: "2024-01-01", Category: "x"})
			return err
		}, core.ErrEmptyName},
		{"asset without category", func() error {
			_, err := svc.CreateAsset(ctx, core.Asset{Name: "a", Amount: amt("1"), Date: "2024-01-01"})
			return err
		}, core.ErrEmptyCategory},
		{"asset with month-only date", func() error {
			_, err := svc.CreateAsset(ctx, core.Asset{Name: "a", Amount: amt("1"), Date: "2024-01", Category: "x"})
			return err
		}, core.ErrInvalidDate},
		{"spending with zero amount", func() error {
			_, err := svc.CreateSpending(ctx, core.Spending{Amount: decimal.Zero, Date: "2024-01"})
			return err
		}, core.ErrInvalidAmount},
		{"revenue with bad date", func() error {
			_, err := svc.CreateRevenue(ctx, core.Revenue{Amount: amt("1"), Date: "January"})
			return err
		}, core.ErrInvalidDate},
		{"category without color", func() error {
			_, err := svc.UpsertCategory(ctx, core.AssetCategory{Name: "Equity"})
			return err
		}, core.ErrEmptyColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !core.IsValidation(err) {
				t.Fatalf("%v should be a validation error", err)
			}
		})
	}

	if len(pub.events) != 0 {
		t.Fatalf("rejected writes must not publish, got %d events", len(pub.events))
	}
}

func TestLedgerService_NormalizesMonthDates(t *testing.T) {
	ctx := context.Background()
	svc := NewLedgerService(memory.New(), nil)

	if _, err := svc.CreateSpending(ctx, core.Spending{Amount: amt("10"), Date: "2024-03-31"}); err != nil {
		t.Fatalf("create spending: %v", err)
	}
	if _, err := svc.CreateRevenue(ctx, core.Revenue{Amount: amt("5"), Date: "2024-04"}); err != nil {
		t.Fatalf("create revenue: %v", err)
	}

	sp, _ := svc.ListSpending(ctx)
	if sp[0].Date != "2024-03" {
		t.Fatalf("spending date = %q, want 2024-03", sp[0].Date)
	}
	rv, _ := svc.ListRevenue(ctx)
	if rv[0].Date != "2024-04" {
		t.Fatalf("revenue date = %q, want 2024-04", rv[0].Date)
	}
}

func TestLedgerService_PublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewLedgerService(memory.New(), pub)

	id, err := svc.CreateRevenue(ctx, core.Revenue{Amount: amt("5"), Date: "2024-04"})
	if err != nil {
		t.Fatalf("write should succeed despite publish failure: %v", err)
	}
	if err := svc.DeleteRevenue(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(pub.events) != 2 || pub.events[1].Action != amqp.ActionDeleted {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
}

func TestLedgerService_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewLedgerService(memory.New(), nil)

	if err := svc.DeleteSpending(ctx, 99); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	err := svc.UpdateAsset(ctx, core.Asset{ID: 99, Name: "a", Amount: amt("1"), Date: "2024-01-01", Category: "x"})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLedgerService_Close(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewLedgerService(memory.New(), pub)
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !pub.closed {
		t.Fatal("publisher should be closed")
	}

	if err := (&LedgerService{}).Close(); err != nil {
		t.Fatalf("Close should not return error with nil components: %v", err)
	}
}
