// Package currency converts between decimal amounts at the edges and the signed
// minor-unit integers the ledger stores.
package currency

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-ledger/internal/ledger"
)

// Lookup returns the currency definition for an ISO 4217 code.
func Lookup(code string) (*money.Currency, error) {
	cur := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code)))
	if cur == nil {
		return nil, ledger.NewValidationError("unknown currency %q", code)
	}
	return cur, nil
}

// ParseMinor parses a decimal string such as "-120.50" into minor units of code.
// Amounts with more decimals than the currency allows are rejected.
func ParseMinor(s, code string) (int64, error) {
	cur, err := Lookup(code)
	if err != nil {
		return 0, err
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, ledger.NewValidationError("invalid amount %q", s)
	}
	scaled := amount.Shift(int32(cur.Fraction))
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, ledger.NewValidationError("amount %q has more than %d decimal places", s, cur.Fraction)
	}
	if !scaled.Equal(decimal.NewFromInt(scaled.IntPart())) {
		return 0, ledger.NewValidationError("amount %q is out of range", s)
	}
	return scaled.IntPart(), nil
}

// ParseOptionalMinor is ParseMinor for an optional value.
func ParseOptionalMinor(s *string, code string) (*int64, error) {
	if s == nil {
		return nil, nil
	}
	v, err := ParseMinor(*s, code)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Decimal renders minor units as a plain decimal string, e.g. -12000 USD is
// "-120.00".
func Decimal(minor int64, code string) string {
	fraction := 2
	if cur, err := Lookup(code); err == nil {
		fraction = cur.Fraction
	}
	return decimal.New(minor, -int32(fraction)).StringFixed(int32(fraction))
}

// Display renders minor units with the currency's symbol and grouping, e.g.
// "-$1,200.00".
func Display(minor int64, code string) string {
	return money.New(minor, strings.ToUpper(code)).Display()
}
