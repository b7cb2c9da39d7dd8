package memory

import (
	"context"
	"sort"
	"sync"

	"burnrate/internal/core"
	"burnrate/internal/ledger"
	"burnrate/internal/runway"
)

var _ ledger.Store = (*Store)(nil)

// Store keeps the ledgers in process memory. It is used by the memory
// backend and by tests.
type Store struct {
	mu     sync.Mutex
	nextID int64

	assets       []core.Asset
	categories   []core.AssetCategory
	spending     []core.Spending
	transactions []core.Transaction
	revenue      []core.Revenue
}

func New() *Store {
	return &Store{}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) ListAssets(_ context.Context) ([]core.Asset, error) {
	s.mu.Lock()
	out := append([]core.Asset(nil), s.assets...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return newerFirst(out[i].Date, out[j].Date, out[i].ID, out[j].ID) })
	return out, nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.AssetCategory, error) {
	s.mu.Lock()
	out := append([]core.AssetCategory(nil), s.categories...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListSpending(_ context.Context) ([]core.Spending, error) {
	s.mu.Lock()
	out := append([]core.Spending(nil), s.spending...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return newerFirst(out[i].Date, out[j].Date, out[i].ID, out[j].ID) })
	return out, nil
}

func (s *Store) ListTransactions(_ context.Context, spendingID int64) ([]core.Transaction, error) {
	s.mu.Lock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.SpendingID == spendingID {
			out = append(out, t)
		}
	}
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return olderFirst(out[i].Date, out[j].Date, out[i].ID, out[j].ID) })
	return out, nil
}

func (s *Store) ListRevenue(_ context.Context) ([]core.Revenue, error) {
	s.mu.Lock()
	out := append([]core.Revenue(nil), s.revenue...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return newerFirst(out[i].Date, out[j].Date, out[i].ID, out[j].ID) })
	return out, nil
}

// Snapshot returns copies of every ledger sorted by ascending date.
func (s *Store) Snapshot(_ context.Context) (runway.Snapshot, error) {
	s.mu.Lock()
	snap := runway.Snapshot{
		Assets:     append([]core.Asset(nil), s.assets...),
		Spendings:  append([]core.Spending(nil), s.spending...),
		Revenues:   append([]core.Revenue(nil), s.revenue...),
		Categories: append([]core.AssetCategory(nil), s.categories...),
	}
	s.mu.Unlock()

	a, sp, r := snap.Assets, snap.Spendings, snap.Revenues
	sort.SliceStable(a, func(i, j int) bool { return olderFirst(a[i].Date, a[j].Date, a[i].ID, a[j].ID) })
	sort.SliceStable(sp, func(i, j int) bool { return olderFirst(sp[i].Date, sp[j].Date, sp[i].ID, sp[j].ID) })
	sort.SliceStable(r, func(i, j int) bool { return olderFirst(r[i].Date, r[j].Date, r[i].ID, r[j].ID) })
	return snap, nil
}

func (s *Store) CreateAsset(_ context.Context, a core.Asset) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCategory(a.Category)
	a.ID = s.id()
	s.assets = append(s.assets, a)
	return a.ID, nil
}

func (s *Store) UpdateAsset(_ context.Context, a core.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assets {
		if s.assets[i].ID == a.ID {
			s.ensureCategory(a.Category)
			s.assets[i] = a
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) DeleteAsset(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assets {
		if s.assets[i].ID == id {
			s.assets = append(s.assets[:i], s.assets[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

// ensureCategory inserts a colorless category unless one with the name
// exists. Callers hold s.mu.
func (s *Store) ensureCategory(name string) {
	for _, c := range s.categories {
		if c.Name == name {
			return
		}
	}
	s.categories = append(s.categories, core.AssetCategory{ID: s.id(), Name: name})
}

func (s *Store) UpsertCategory(_ context.Context, c core.AssetCategory) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].Name == c.Name {
			s.categories[i].Color = c.Color
			return s.categories[i].ID, nil
		}
	}
	c.ID = s.id()
	s.categories = append(s.categories, c)
	return c.ID, nil
}

func (s *Store) CreateSpending(_ context.Context, sp core.Spending) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp.ID = s.id()
	s.spending = append(s.spending, sp)
	return sp.ID, nil
}

func (s *Store) UpdateSpending(_ context.Context, sp core.Spending) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.spending {
		if s.spending[i].ID == sp.ID {
			s.spending[i] = sp
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) DeleteSpending(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i := range s.spending {
		if s.spending[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.ErrNotFound
	}

	kept := s.transactions[:0]
	for _, t := range s.transactions {
		if t.SpendingID != id {
			kept = append(kept, t)
		}
	}
	s.transactions = kept
	s.spending = append(s.spending[:idx], s.spending[idx+1:]...)
	return nil
}

func (s *Store) ImportSpending(_ context.Context, sp core.Spending, txs []core.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp.ID = s.id()
	s.spending = append(s.spending, sp)
	for _, t := range txs {
		t.ID = s.id()
		t.SpendingID = sp.ID
		s.transactions = append(s.transactions, t)
	}
	return sp.ID, nil
}

func (s *Store) CreateRevenue(_ context.Context, r core.Revenue) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	s.revenue = append(s.revenue, r)
	return r.ID, nil
}

func (s *Store) UpdateRevenue(_ context.Context, r core.Revenue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.revenue {
		if s.revenue[i].ID == r.ID {
			s.revenue[i] = r
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) DeleteRevenue(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.revenue {
		if s.revenue[i].ID == id {
			s.revenue = append(s.revenue[:i], s.revenue[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func newerFirst(da, db string, ia, ib int64) bool {
	if da != db {
		return da > db
	}
	return ia > ib
}

func olderFirst(da, db string, ia, ib int64) bool {
	if da != db {
		return da < db
	}
	return ia < ib
}
