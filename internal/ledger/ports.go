// Package ledger declares the ports through which the application reads
// and writes the asset, spending, revenue and category ledgers.
package ledger

import (
	"context"

	"burnrate/internal/core"
	"burnrate/internal/runway"
)

// Ports for ledger storage adapters.
type (
	// Reader lists ledger records. Assets, spending and revenue are
	// returned newest first, categories by name and transactions oldest
	// first.
	Reader interface {
		ListAssets(ctx context.Context) ([]core.Asset, error)
		ListCategories(ctx context.Context) ([]core.AssetCategory, error)
		ListSpending(ctx context.Context) ([]core.Spending, error)
		ListTransactions(ctx context.Context, spendingID int64) ([]core.Transaction, error)
		ListRevenue(ctx context.Context) ([]core.Revenue, error)
	}

	// Snapshotter returns every ledger at once in ascending date order,
	// ready for aggregation.
	Snapshotter interface {
		Snapshot(ctx context.Context) (runway.Snapshot, error)
	}

	AssetWriter interface {
		CreateAsset(ctx context.Context, a core.Asset) (int64, error)
		UpdateAsset(ctx context.Context, a core.Asset) error
		DeleteAsset(ctx context.Context, id int64) error
	}

	CategoryWriter interface {
		// UpsertCategory inserts the category or replaces the color of the
		// one with the same name.
		UpsertCategory(ctx context.Context, c core.AssetCategory) (int64, error)
	}

	SpendingWriter interface {
		CreateSpending(ctx context.Context, s core.Spending) (int64, error)
		UpdateSpending(ctx context.Context, s core.Spending) error
		// DeleteSpending removes the spending and its transactions.
		DeleteSpending(ctx context.Context, id int64) error
		// ImportSpending stores a spending together with its transactions
		// atomically.
		ImportSpending(ctx context.Context, s core.Spending, txs []core.Transaction) (int64, error)
	}

	RevenueWriter interface {
		CreateRevenue(ctx context.Context, r core.Revenue) (int64, error)
		UpdateRevenue(ctx context.Context, r core.Revenue) error
		DeleteRevenue(ctx context.Context, id int64) error
	}

	Writer interface {
		AssetWriter
		CategoryWriter
		SpendingWriter
		RevenueWriter
	}

	// Store is a complete ledger backend.
	Store interface {
		Reader
		Snapshotter
		Writer
		Ping(ctx context.Context) error
		Close() error
	}
)
