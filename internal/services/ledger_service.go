package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"burnrate/internal/amqp"
	"burnrate/internal/core"
	"burnrate/internal/ledger"
)

// EventPublisher announces ledger changes to other processes.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// LedgerService validates ledger writes, stores them and announces each
// change. Announcing is best effort: a failed publish never fails the
// write.
type LedgerService struct {
	store     ledger.Store
	publisher EventPublisher
}

// NewLedgerService wires the store with an optional publisher. Pass a nil
// interface, not a typed nil pointer, to disable publishing.
func NewLedgerService(store ledger.Store, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

func (s *LedgerService) ListAssets(ctx context.Context) ([]core.Asset, error) {
	return s.store.ListAssets(ctx)
}

func (s *LedgerService) CreateAsset(ctx context.Context, a core.Asset) (int64, error) {
	a = normalizeAsset(a)
	if err := a.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.CreateAsset(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("save asset: %w", err)
	}
	s.publish(ctx, amqp.KindAsset, amqp.ActionCreated, id, a.Date)
	return id, nil
}

func (s *LedgerService) UpdateAsset(ctx context.Context, a core.Asset) error {
	a = normalizeAsset(a)
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateAsset(ctx, a); err != nil {
		return fmt.Errorf("save asset: %w", err)
	}
	s.publish(ctx, amqp.KindAsset, amqp.ActionUpdated, a.ID, a.Date)
	return nil
}

func (s *LedgerService) DeleteAsset(ctx context.Context, id int64) error {
	if err := s.store.DeleteAsset(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.KindAsset, amqp.ActionDeleted, id, "")
	return nil
}

func (s *LedgerService) ListCategories(ctx context.Context) ([]core.AssetCategory, error) {
	return s.store.ListCategories(ctx)
}

func (s *LedgerService) UpsertCategory(ctx context.Context, c core.AssetCategory) (int64, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Color = strings.TrimSpace(c.Color)
	if err := c.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.UpsertCategory(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("save asset category: %w", err)
	}
	s.publish(ctx, amqp.KindCategory, amqp.ActionUpdated, id, "")
	return id, nil
}

func (s *LedgerService) ListSpending(ctx context.Context) ([]core.Spending, error) {
	return s.store.ListSpending(ctx)
}

func (s *LedgerService) ListTransactions(ctx context.Context, spendingID int64) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, spendingID)
}

func (s *LedgerService) CreateSpending(ctx context.Context, sp core.Spending) (int64, error) {
	if err := sp.Validate(); err != nil {
		return 0, err
	}
	sp.Date = monthKey(sp.Date)
	id, err := s.store.CreateSpending(ctx, sp)
	if err != nil {
		return 0, fmt.Errorf("save spending: %w", err)
	}
	s.publish(ctx, amqp.KindSpending, amqp.ActionCreated, id, sp.Date)
	return id, nil
}

func (s *LedgerService) UpdateSpending(ctx context.Context, sp core.Spending) error {
	if err := sp.Validate(); err != nil {
		return err
	}
	sp.Date = monthKey(sp.Date)
	if err := s.store.UpdateSpending(ctx, sp); err != nil {
		return fmt.Errorf("save spending: %w", err)
	}
	s.publish(ctx, amqp.KindSpending, amqp.ActionUpdated, sp.ID, sp.Date)
	return nil
}

// DeleteSpending removes the spending together with its transactions.
func (s *LedgerService) DeleteSpending(ctx context.Context, id int64) error {
	if err := s.store.DeleteSpending(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.KindSpending, amqp.ActionDeleted, id, "")
	return nil
}

func (s *LedgerService) ListRevenue(ctx context.Context) ([]core.Revenue, error) {
	return s.store.ListRevenue(ctx)
}

func (s *LedgerService) CreateRevenue(ctx context.Context, r core.Revenue) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	r.Date = monthKey(r.Date)
	id, err := s.store.CreateRevenue(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("save revenue: %w", err)
	}
	s.publish(ctx, amqp.KindRevenue, amqp.ActionCreated, id, r.Date)
	return id, nil
}

func (s *LedgerService) UpdateRevenue(ctx context.Context, r core.Revenue) error {
	if err := r.Validate(); err != nil {
		return err
	}
	r.Date = monthKey(r.Date)
	if err := s.store.UpdateRevenue(ctx, r); err != nil {
		return fmt.Errorf("save revenue: %w", err)
	}
	s.publish(ctx, amqp.KindRevenue, amqp.ActionUpdated, r.ID, r.Date)
	return nil
}

func (s *LedgerService) DeleteRevenue(ctx context.Context, id int64) error {
	if err := s.store.DeleteRevenue(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.KindRevenue, amqp.ActionDeleted, id, "")
	return nil
}

func (s *LedgerService) publish(ctx context.Context, kind, action string, id int64, date string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping ledger event", "kind", kind, "id", id)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(kind, action, id, date)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", kind,
			"action", action,
			"id", id,
			"error", err)
	}
}

// Close closes the store and the publisher when it holds a connection.
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}

func normalizeAsset(a core.Asset) core.Asset {
	a.Name = strings.TrimSpace(a.Name)
	a.Category = strings.TrimSpace(a.Category)
	a.Note = strings.TrimSpace(a.Note)
	a.Date = strings.TrimSpace(a.Date)
	return a
}

// monthKey reduces a validated date to its "YYYY-MM" key.
func monthKey(date string) string {
	m, err := core.ParseMonth(date)
	if err != nil {
		return date
	}
	return m.String()
}
