// Package core holds the budgeting domain: entities, validation and the
// pure rules behind budget alerts, goal milestones and keyword categories.
//
// This file contains the Money type and its conversions to and from
// decimal amounts as they appear on the wire.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a signed amount in cents. Positive values are income, negative
// values are expenses.
type Money struct {
	Cents int64
}

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(1<<53 - 1)
)

// MoneyFromDecimal converts a decimal amount to cents with half-up rounding
// on the third decimal place.
//
// Examples:
//
//	MoneyFromDecimal(decimal.RequireFromString("12.345")) -> 1235 cents
//	MoneyFromDecimal(decimal.RequireFromString("-50"))    -> -5000 cents
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Mul(hundred).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return Money{}, fmt.Errorf("%w: %s is out of range", ErrInvalidAmount, d.String())
	}
	return Money{Cents: cents.IntPart()}, nil
}

// ParseMoney parses a signed decimal string. Both dot and comma are accepted
// as the decimal separator.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	return MoneyFromDecimal(d)
}

// Cents builds a Money value.
func Cents(c int64) Money { return Money{Cents: c} }

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with two decimals, e.g. "-12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Float returns the amount in currency units for JSON and chart rendering.
// Arithmetic stays on cents.
func (m Money) Float() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) IsIncome() bool  { return m.Cents > 0 }
func (m Money) IsExpense() bool { return m.Cents < 0 }

// MarshalJSON encodes the amount as a bare JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// Percent returns part/whole as a whole-number percentage, rounded half-up.
// A non-positive whole yields zero.
func Percent(part, whole Money) int64 {
	if whole.Cents <= 0 {
		return 0
	}
	return part.Decimal().Div(whole.Decimal()).Mul(hundred).Round(0).IntPart()
}
