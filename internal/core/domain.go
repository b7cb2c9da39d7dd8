package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCategoryColor is used when an asset's category has no color.
const DefaultCategoryColor = "#000000"

type (
	Asset struct {
		ID       int64           `json:"id"`
		Name     string          `json:"name"`
		Amount   decimal.Decimal `json:"amount"`
		Date     string          `json:"date"`
		Note     string          `json:"note"`
		Category string          `json:"category"`
	}

	AssetCategory struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}

	// Spending is one month's total spend. IsAdvanced marks that
	// per-transaction detail exists for it.
	Spending struct {
		ID         int64           `json:"id"`
		Amount     decimal.Decimal `json:"amount"`
		Date       string          `json:"date"`
		IsAdvanced bool            `json:"is_advanced"`
	}

	Transaction struct {
		ID             int64           `json:"id"`
		SpendingID     int64           `json:"spending_id"`
		PaymentType    string          `json:"payment_type"`
		Amount         decimal.Decimal `json:"amount"`
		Date           string          `json:"date"`
		InvoiceReceipt *string         `json:"invoice_receipt"`
	}

	Revenue struct {
		ID     int64           `json:"id"`
		Amount decimal.Decimal `json:"amount"`
		Date   string          `json:"date"`
	}

	// PredictedExpense is a hypothetical future cost over an inclusive
	// month range. It is never stored in the ledger.
	PredictedExpense struct {
		ID         string          `json:"id" toml:"id"`
		Name       string          `json:"name" toml:"name"`
		Amount     decimal.Decimal `json:"amount" toml:"amount"`
		StartDate  Month           `json:"startDate" toml:"start"`
		EndDate    Month           `json:"endDate" toml:"end"`
		IsAveraged bool            `json:"isAveraged" toml:"averaged"`
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidRange   = errors.New("start month after end month")
	ErrEmptyName      = errors.New("empty name")
	ErrEmptyCategory  = errors.New("empty category")
	ErrEmptyColor     = errors.New("empty color")
	ErrNameTooLong    = errors.New("name too long (max 200 characters)")
	ErrNotFound       = errors.New("record not found")
	ErrNoTransactions = errors.New("total amount cannot be zero")
	ErrInvalidCSV     = errors.New("invalid CSV")
)

// IsValidation reports whether err is one of the input validation errors.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount, ErrInvalidDate, ErrInvalidRange, ErrEmptyName,
		ErrEmptyCategory, ErrEmptyColor, ErrNameTooLong, ErrNoTransactions,
		ErrInvalidCSV,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyName
	}
	if len(s) > 200 {
		return ErrNameTooLong
	}
	return nil
}

func (a Asset) Validate() error {
	if err := validateName(a.Name); err != nil {
		return err
	}
	if err := validateAmount(a.Amount); err != nil {
		return err
	}
	if _, err := ParseDay(a.Date); err != nil {
		return err
	}
	if strings.TrimSpace(a.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (c AssetCategory) Validate() error {
	if err := validateName(c.Name); err != nil {
		return err
	}
	if strings.TrimSpace(c.Color) == "" {
		return ErrEmptyColor
	}
	return nil
}

func (s Spending) Validate() error {
	if err := validateAmount(s.Amount); err != nil {
		return err
	}
	if _, err := ParseMonth(s.Date); err != nil {
		return err
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := validateAmount(t.Amount); err != nil {
		return err
	}
	if _, err := ParseDay(t.Date); err != nil {
		return err
	}
	return nil
}

func (r Revenue) Validate() error {
	if err := validateAmount(r.Amount); err != nil {
		return err
	}
	if _, err := ParseMonth(r.Date); err != nil {
		return err
	}
	return nil
}

func (p PredictedExpense) Validate() error {
	if err := validateName(p.Name); err != nil {
		return err
	}
	if err := validateAmount(p.Amount); err != nil {
		return err
	}
	if !p.StartDate.Valid() || !p.EndDate.Valid() {
		return ErrInvalidDate
	}
	if p.StartDate > p.EndDate {
		return ErrInvalidRange
	}
	return nil
}
