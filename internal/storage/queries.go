package storage

import (
	"context"
	"database/sql"

	"burnrate/internal/core"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const (
	listAssets = `SELECT id, name, amount, date, note, category FROM assets ORDER BY date DESC, id DESC`

	listAssetsChronological = `SELECT id, name, amount, date, note, category FROM assets ORDER BY date, id`

	createAsset = `INSERT INTO assets (name, amount, date, note, category) VALUES (?, ?, ?, ?, ?)`

	updateAsset = `UPDATE assets SET name = ?, amount = ?, date = ?, note = ?, category = ? WHERE id = ?`

	deleteAsset = `DELETE FROM assets WHERE id = ?`

	listCategories = `SELECT id, name, color FROM asset_categories ORDER BY name`

	ensureCategory = `INSERT OR IGNORE INTO asset_categories (name) VALUES (?)`

	upsertCategory = `INSERT INTO asset_categories (name, color) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET color = excluded.color
RETURNING id`

	listSpending = `SELECT id, amount, date, is_advanced FROM spending ORDER BY date DESC, id DESC`

	listSpendingChronological = `SELECT id, amount, date, is_advanced FROM spending ORDER BY date, id`

	createSpending = `INSERT INTO spending (amount, date, is_advanced) VALUES (?, ?, ?)`

	updateSpending = `UPDATE spending SET amount = ?, date = ?, is_advanced = ? WHERE id = ?`

	deleteSpending = `DELETE FROM spending WHERE id = ?`

	listTransactions = `SELECT id, spending_id, payment_type, amount, date, invoice_receipt
FROM transactions WHERE spending_id = ? ORDER BY date, id`

	createTransaction = `INSERT INTO transactions (spending_id, payment_type, amount, date, invoice_receipt)
VALUES (?, ?, ?, ?, ?)`

	deleteTransactions = `DELETE FROM transactions WHERE spending_id = ?`

	listRevenue = `SELECT id, amount, date FROM revenue ORDER BY date DESC, id DESC`

	listRevenueChronological = `SELECT id, amount, date FROM revenue ORDER BY date, id`

	createRevenue = `INSERT INTO revenue (amount, date) VALUES (?, ?)`

	updateRevenue = `UPDATE revenue SET amount = ?, date = ? WHERE id = ?`

	deleteRevenue = `DELETE FROM revenue WHERE id = ?`
)

func (q *Queries) ListAssets(ctx context.Context, chronological bool) ([]core.Asset, error) {
	query := listAssets
	if chronological {
		query = listAssetsChronological
	}
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []core.Asset{}
	for rows.Next() {
		var i core.Asset
		if err := rows.Scan(&i.ID, &i.Name, &i.Amount, &i.Date, &i.Note, &i.Category); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) CreateAsset(ctx context.Context, a core.Asset) (int64, error) {
	res, err := q.db.ExecContext(ctx, createAsset, a.Name, a.Amount, a.Date, a.Note, a.Category)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateAsset(ctx context.Context, a core.Asset) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateAsset, a.Name, a.Amount, a.Date, a.Note, a.Category, a.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteAsset(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteAsset, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) ListCategories(ctx context.Context) ([]core.AssetCategory, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []core.AssetCategory{}
	for rows.Next() {
		var i core.AssetCategory
		if err := rows.Scan(&i.ID, &i.Name, &i.Color); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) EnsureCategory(ctx context.Context, name string) error {
	_, err := q.db.ExecContext(ctx, ensureCategory, name)
	return err
}

func (q *Queries) UpsertCategory(ctx context.Context, c core.AssetCategory) (int64, error) {
	row := q.db.QueryRowContext(ctx, upsertCategory, c.Name, c.Color)
	var id int64
	err := row.Scan(&id)
	return id, err
}

func (q *Queries) ListSpending(ctx context.Context, chronological bool) ([]core.Spending, error) {
	query := listSpending
	if chronological {
		query = listSpendingChronological
	}
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []core.Spending{}
	for rows.Next() {
		var i core.Spending
		if err := rows.Scan(&i.ID, &i.Amount, &i.Date, &i.IsAdvanced); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) CreateSpending(ctx context.Context, s core.Spending) (int64, error) {
	res, err := q.db.ExecContext(ctx, createSpending, s.Amount, s.Date, s.IsAdvanced)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateSpending(ctx context.Context, s core.Spending) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateSpending, s.Amount, s.Date, s.IsAdvanced, s.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteSpending(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteSpending, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) ListTransactions(ctx context.Context, spendingID int64) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, spendingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []core.Transaction{}
	for rows.Next() {
		var (
			i       core.Transaction
			invoice sql.NullString
		)
		if err := rows.Scan(&i.ID, &i.SpendingID, &i.PaymentType, &i.Amount, &i.Date, &invoice); err != nil {
			return nil, err
		}
		if invoice.Valid {
			i.InvoiceReceipt = &invoice.String
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	var invoice sql.NullString
	if t.InvoiceReceipt != nil {
		invoice = sql.NullString{String: *t.InvoiceReceipt, Valid: true}
	}
	res, err := q.db.ExecContext(ctx, createTransaction, t.SpendingID, t.PaymentType, t.Amount, t.Date, invoice)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) DeleteTransactions(ctx context.Context, spendingID int64) error {
	_, err := q.db.ExecContext(ctx, deleteTransactions, spendingID)
	return err
}

func (q *Queries) ListRevenue(ctx context.Context, chronological bool) ([]core.Revenue, error) {
	query := listRevenue
	if chronological {
		query = listRevenueChronological
	}
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []core.Revenue{}
	for rows.Next() {
		var i core.Revenue
		if err := rows.Scan(&i.ID, &i.Amount, &i.Date); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) CreateRevenue(ctx context.Context, r core.Revenue) (int64, error) {
	res, err := q.db.ExecContext(ctx, createRevenue, r.Amount, r.Date)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateRevenue(ctx context.Context, r core.Revenue) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateRevenue, r.Amount, r.Date, r.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteRevenue(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteRevenue, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
