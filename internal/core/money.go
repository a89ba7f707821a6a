// Package core provides money parsing and handling utilities.
//
// Amounts are stored as integer cents. Parsing and formatting go through
// shopspring/decimal so that user input such as "12,345" never touches
// floating point.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Zero is accepted; negative
// values, signs and malformed input are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (half-up)
//	ParseDecimalToCents("0") -> 0, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return centsFromDecimal(d)
}

// ParseMoney is ParseDecimalToCents wrapped in a Money.
func ParseMoney(s string) (Money, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// MoneyFromDecimal converts a decimal amount to Money, rounding half-up to cents.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents, err := centsFromDecimal(d)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

func centsFromDecimal(d decimal.Decimal) (int64, error) {
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0)
	if !cents.IsInteger() || cents.GreaterThan(decimal.NewFromInt(1<<62)) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two decimals, e.g. "12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// CentsString formats a signed cents value (such as a period net) with two decimals.
func CentsString(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
