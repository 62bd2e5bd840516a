// Package money provides fixed-point currency arithmetic. Amounts are
// carried as arbitrary-precision decimals and only rounded to the minor
// unit at well-defined points, never through a binary float.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// minorUnits is the number of decimal places of the currency minor unit.
const minorUnits = 2

// Money is an exact currency amount.
type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// FromCents builds an amount from integer minor units.
func FromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -minorUnits)}
}

// FromDecimal wraps an exact decimal amount.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d}
}

// Parse reads a decimal string such as "543.75".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return Money{d: d}, nil
}

// MustParse is Parse for trusted literals, panicking on malformed input.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + o exactly.
func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

// Sub returns m - o exactly.
func (m Money) Sub(o Money) Money {
	return Money{d: m.d.Sub(o.d)}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{d: m.d.Neg()}
}

// MulQuantity returns m × qty rounded half-up to the minor unit. Line
// amounts are rounded per multiplication so sums cannot drift.
func (m Money) MulQuantity(qty decimal.Decimal) Money {
	return Money{d: m.d.Mul(qty).Round(minorUnits)}
}

// PercentOf returns pct% of m, rounded half-up to the minor unit.
func (m Money) PercentOf(pct decimal.Decimal) Money {
	return Money{d: m.d.Mul(pct).Div(decimal.NewFromInt(100)).Round(minorUnits)}
}

// RateOf returns m × rate (rate in [0,1]) rounded half-up to the minor
// unit. Used for tax amounts.
func (m Money) RateOf(rate decimal.Decimal) Money {
	return Money{d: m.d.Mul(rate).Round(minorUnits)}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

// Cmp compares two amounts: -1 if m < o, 0 if equal, +1 if m > o.
func (m Money) Cmp(o Money) int {
	return m.d.Cmp(o.d)
}

// LessThan reports m < o.
func (m Money) LessThan(o Money) bool {
	return m.d.LessThan(o.d)
}

// GreaterThan reports m > o.
func (m Money) GreaterThan(o Money) bool {
	return m.d.GreaterThan(o.d)
}

// Equal reports m == o by value.
func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	return Money{d: m.d.Abs()}
}

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// String renders the amount fixed to the minor unit, e.g. "543.75".
func (m Money) String() string {
	return m.d.StringFixed(minorUnits)
}

// MarshalJSON renders the amount as a JSON string to keep clients away
// from float parsing.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare number literal.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("money: unmarshal: %w", err)
	}
	m.d = d
	return nil
}

// Value implements driver.Valuer; amounts are stored as numeric text.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner for numeric columns.
func (m *Money) Scan(src any) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("money: scan: %w", err)
	}
	m.d = d
	return nil
}

// Sum adds a series of amounts.
func Sum(amounts ...Money) Money {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
