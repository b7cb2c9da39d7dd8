package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"burnrate/internal/amqp"
	"burnrate/internal/core"
	"burnrate/internal/ledger"

	"github.com/shopspring/decimal"
)

// CSV columns read by the importer. Other columns are ignored.
const (
	ColumnAmount      = "Amount"
	ColumnDate        = "Date"
	ColumnPaymentType = "Payment Type"
	ColumnInvoice     = "Invoice/Receipt"
)

// AmountError reports a CSV amount cell that is not a positive number.
type AmountError struct {
	Raw string
}

func (e *AmountError) Error() string {
	return "Invalid amount found in CSV: " + e.Raw
}

func (e *AmountError) Unwrap() error { return core.ErrInvalidAmount }

// ImportResult summarizes a stored CSV import.
type ImportResult struct {
	SpendingID  int64           `json:"spendingId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Imported    int             `json:"imported"`
	Skipped     int             `json:"skipped"`
}

// ImportService turns a bank or card CSV export into one advanced Spending
// with its Transactions.
type ImportService struct {
	store     ledger.SpendingWriter
	publisher EventPublisher
}

func NewImportService(store ledger.SpendingWriter, publisher EventPublisher) *ImportService {
	return &ImportService{store: store, publisher: publisher}
}

// ImportCSV parses r and stores the spending for the given month. Rows
// with an empty amount are ignored. Rows whose date cannot be read still
// count toward the total but are not kept as transactions.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader, date string) (ImportResult, error) {
	month, err := core.ParseMonth(date)
	if err != nil {
		return ImportResult{}, err
	}

	txs, total, skipped, err := ParseTransactionsCSV(r)
	if err != nil {
		return ImportResult{}, err
	}
	if total.IsZero() {
		return ImportResult{}, core.ErrNoTransactions
	}

	spending := core.Spending{Amount: total, Date: month.String(), IsAdvanced: true}
	id, err := s.store.ImportSpending(ctx, spending, txs)
	if err != nil {
		return ImportResult{}, fmt.Errorf("store imported spending: %w", err)
	}

	slog.InfoContext(ctx, "CSV spending imported",
		"spending_id", id,
		"month", month,
		"total", total.String(),
		"transactions", len(txs),
		"skipped_dates", skipped)

	if s.publisher != nil {
		if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(amqp.KindSpending, amqp.ActionImported, id, month.String())); err != nil {
			slog.ErrorContext(ctx, "Failed to publish ledger event", "kind", amqp.KindSpending, "id", id, "error", err)
		}
	}

	return ImportResult{
		SpendingID:  id,
		TotalAmount: total,
		Imported:    len(txs),
		Skipped:     skipped,
	}, nil
}

// ParseTransactionsCSV reads a headed CSV. It returns the transactions
// with a readable date, the sum of every amount, and how many rows were
// dropped for an unreadable date.
func ParseTransactionsCSV(r io.Reader) (txs []core.Transaction, total decimal.Decimal, skipped int, err error) {
	total = decimal.Zero

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, total, 0, nil
	}
	if err != nil {
		return nil, total, 0, fmt.Errorf("%w: read header: %v", core.ErrInvalidCSV, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := cols[ColumnAmount]; !ok {
		return nil, total, 0, fmt.Errorf("%w: missing %q column", core.ErrInvalidCSV, ColumnAmount)
	}

	cell := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, total, 0, fmt.Errorf("%w: %v", core.ErrInvalidCSV, err)
		}

		raw := cell(rec, ColumnAmount)
		if raw == "" {
			continue
		}
		amount, err := core.ParseAmount(raw)
		if err != nil {
			return nil, total, 0, &AmountError{Raw: raw}
		}
		total = total.Add(amount)

		day, ok := normalizeCSVDate(cell(rec, ColumnDate))
		if !ok {
			skipped++
			continue
		}

		t := core.Transaction{
			PaymentType: cell(rec, ColumnPaymentType),
			Amount:      amount,
			Date:        day,
		}
		if inv := cell(rec, ColumnInvoice); inv != "" {
			t.InvoiceReceipt = &inv
		}
		txs = append(txs, t)
	}

	return txs, total, skipped, nil
}

// normalizeCSVDate accepts "YYYY-MM-DD" or US "M/D/YYYY" and returns the
// ISO form.
func normalizeCSVDate(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	if _, err := core.ParseDay(s); err == nil {
		return s, true
	}
	t, err := time.Parse("1/2/2006", s)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}
