// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from user
// input and CSV exports, and for formatting them for display.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a positive monetary amount.
//
// Currency symbols and thousands separators as written by spreadsheet and
// bank exports are stripped before parsing:
//
//	ParseAmount("1200")       -> 1200, nil
//	ParseAmount("$1,234.50")  -> 1234.5, nil
//	ParseAmount("0")          -> ErrInvalidAmount
//	ParseAmount("abc")        -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("$", "", ",", "").Replace(s)
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// FormatDollars formats an amount as "$1,234.56". Negative amounts get a
// leading minus sign.
func FormatDollars(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "$" + b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}
