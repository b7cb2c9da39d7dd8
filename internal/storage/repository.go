package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"burnrate/internal/core"
	"burnrate/internal/ledger"
	"burnrate/internal/runway"

	_ "modernc.org/sqlite"
)

var _ ledger.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// inTx runs fn inside a transaction, committing only when fn succeeds.
func (r *SQLiteRepository) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func affected(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListAssets(ctx context.Context) ([]core.Asset, error) {
	items, err := r.queries.ListAssets(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return items, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.AssetCategory, error) {
	items, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list asset categories: %w", err)
	}
	return items, nil
}

func (r *SQLiteRepository) ListSpending(ctx context.Context) ([]core.Spending, error) {
	items, err := r.queries.ListSpending(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list spending: %w", err)
	}
	return items, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, spendingID int64) ([]core.Transaction, error) {
	items, err := r.queries.ListTransactions(ctx, spendingID)
	if err != nil {
		return nil, fmt.Errorf("list transactions for spending %d: %w", spendingID, err)
	}
	return items, nil
}

func (r *SQLiteRepository) ListRevenue(ctx context.Context) ([]core.Revenue, error) {
	items, err := r.queries.ListRevenue(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list revenue: %w", err)
	}
	return items, nil
}

// Snapshot loads the four ledgers, each in ascending date order, inside one
// read-only transaction so they describe a single point in time.
func (r *SQLiteRepository) Snapshot(ctx context.Context) (runway.Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return runway.Snapshot{}, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	var snap runway.Snapshot
	if snap.Assets, err = q.ListAssets(ctx, true); err != nil {
		return runway.Snapshot{}, fmt.Errorf("load assets: %w", err)
	}
	if snap.Spendings, err = q.ListSpending(ctx, true); err != nil {
		return runway.Snapshot{}, fmt.Errorf("load spending: %w", err)
	}
	if snap.Revenues, err = q.ListRevenue(ctx, true); err != nil {
		return runway.Snapshot{}, fmt.Errorf("load revenue: %w", err)
	}
	if snap.Categories, err = q.ListCategories(ctx); err != nil {
		return runway.Snapshot{}, fmt.Errorf("load asset categories: %w", err)
	}
	return snap, nil
}

func (r *SQLiteRepository) CreateAsset(ctx context.Context, a core.Asset) (int64, error) {
	var id int64
	err := r.inTx(ctx, func(q *Queries) error {
		if err := q.EnsureCategory(ctx, a.Category); err != nil {
			return err
		}
		var err error
		id, err = q.CreateAsset(ctx, a)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("create asset: %w", err)
	}

	slog.InfoContext(ctx, "Asset saved to SQLite",
		"id", id,
		"name", a.Name,
		"amount", a.Amount.String(),
		"date", a.Date,
		"category", a.Category)

	return id, nil
}

func (r *SQLiteRepository) UpdateAsset(ctx context.Context, a core.Asset) error {
	err := r.inTx(ctx, func(q *Queries) error {
		if err := q.EnsureCategory(ctx, a.Category); err != nil {
			return err
		}
		return affected(q.UpdateAsset(ctx, a))
	})
	if err != nil {
		return fmt.Errorf("update asset %d: %w", a.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAsset(ctx context.Context, id int64) error {
	if err := affected(r.queries.DeleteAsset(ctx, id)); err != nil {
		return fmt.Errorf("delete asset %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) UpsertCategory(ctx context.Context, c core.AssetCategory) (int64, error) {
	id, err := r.queries.UpsertCategory(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("upsert asset category: %w", err)
	}
	slog.InfoContext(ctx, "Asset category saved to SQLite", "id", id, "name", c.Name, "color", c.Color)
	return id, nil
}

func (r *SQLiteRepository) CreateSpending(ctx context.Context, s core.Spending) (int64, error) {
	id, err := r.queries.CreateSpending(ctx, s)
	if err != nil {
		return 0, fmt.Errorf("create spending: %w", err)
	}
	slog.InfoContext(ctx, "Spending saved to SQLite", "id", id, "amount", s.Amount.String(), "date", s.Date)
	return id, nil
}

func (r *SQLiteRepository) UpdateSpending(ctx context.Context, s core.Spending) error {
	if err := affected(r.queries.UpdateSpending(ctx, s)); err != nil {
		return fmt.Errorf("update spending %d: %w", s.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteSpending(ctx context.Context, id int64) error {
	err := r.inTx(ctx, func(q *Queries) error {
		if err := q.DeleteTransactions(ctx, id); err != nil {
			return err
		}
		return affected(q.DeleteSpending(ctx, id))
	})
	if err != nil {
		return fmt.Errorf("delete spending %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) ImportSpending(ctx context.Context, s core.Spending, txs []core.Transaction) (int64, error) {
	var id int64
	err := r.inTx(ctx, func(q *Queries) error {
		var err error
		id, err = q.CreateSpending(ctx, s)
		if err != nil {
			return err
		}
		for _, t := range txs {
			t.SpendingID = id
			if _, err := q.CreateTransaction(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("import spending: %w", err)
	}

	slog.InfoContext(ctx, "Imported spending saved to SQLite",
		"id", id,
		"amount", s.Amount.String(),
		"date", s.Date,
		"transactions", len(txs))

	return id, nil
}

func (r *SQLiteRepository) CreateRevenue(ctx context.Context, rv core.Revenue) (int64, error) {
	id, err := r.queries.CreateRevenue(ctx, rv)
	if err != nil {
		return 0, fmt.Errorf("create revenue: %w", err)
	}
	slog.InfoContext(ctx, "Revenue saved to SQLite", "id", id, "amount", rv.Amount.String(), "date", rv.Date)
	return id, nil
}

func (r *SQLiteRepository) UpdateRevenue(ctx context.Context, rv core.Revenue) error {
	if err := affected(r.queries.UpdateRevenue(ctx, rv)); err != nil {
		return fmt.Errorf("update revenue %d: %w", rv.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteRevenue(ctx context.Context, id int64) error {
	if err := affected(r.queries.DeleteRevenue(ctx, id)); err != nil {
		return fmt.Errorf("delete revenue %d: %w", id, err)
	}
	return nil
}
