/*
Package generic provides the domain-agnostic vocabulary of the stay engine.

PURPOSE:
  Calendar dates, half-open stay intervals, reporting periods, weeks, money
  and the shared error taxonomy. Nothing in here knows about rooms, guests
  or staff; the stay and shift packages build on top of it.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: An exact count of minor currency units (cents) with a currency
  - ResourceID / BookingID / StaffID: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Precision: Money is an integer count of minor units. Splits and sums
     are exact; decimal.Decimal is used only at the edges (parse/format)
  2. Type Safety: Strong typing for IDs prevents mixing resource/staff IDs
  3. Local dates: No timezone arithmetic anywhere

USAGE:
  total := generic.NewMoney(1_000_001, "EUR")
  fmt.Println(total.Decimal()) // 10000.01

SEE ALSO:
  - interval.go: StayInterval arithmetic
  - period.go: ReportingPeriod and Week
  - errors.go: Error taxonomy
*/
package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Minor currency units
// =============================================================================

// DefaultExponent is the number of minor-unit digits (2 = cents).
const DefaultExponent = 2

type Money struct {
	Minor    int64  `json:"minor"`
	Currency string `json:"currency,omitempty"`
}

func NewMoney(minor int64, currency string) Money {
	return Money{Minor: minor, Currency: currency}
}

// ParseMoney parses a major-unit string ("1234.50") into minor units.
// More fractional digits than the exponent allows is an error, never rounded.
func ParseMoney(s string, currency string, exponent int32) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, ErrInvalidAmount)
	}
	return MoneyFromDecimal(d, currency, exponent)
}

// MoneyFromDecimal converts a major-unit decimal into minor units.
func MoneyFromDecimal(d decimal.Decimal, currency string, exponent int32) (Money, error) {
	scaled := d.Shift(exponent)
	if !scaled.Equal(scaled.Truncate(0)) {
		return Money{}, fmt.Errorf("%s has more than %d decimals: %w", d, exponent, ErrInvalidAmount)
	}
	if !scaled.BigInt().IsInt64() {
		return Money{}, fmt.Errorf("%s out of range: %w", d, ErrInvalidAmount)
	}
	return Money{Minor: scaled.IntPart(), Currency: currency}, nil
}

// Decimal returns the major-unit value using DefaultExponent.
func (m Money) Decimal() decimal.Decimal { return m.DecimalWithExponent(DefaultExponent) }

func (m Money) DecimalWithExponent(exponent int32) decimal.Decimal {
	return decimal.New(m.Minor, -exponent)
}

func (m Money) Zero() Money              { return Money{Currency: m.Currency} }
func (m Money) Add(b Money) Money        { return Money{Minor: m.Minor + b.Minor, Currency: m.Currency} }
func (m Money) Sub(b Money) Money        { return Money{Minor: m.Minor - b.Minor, Currency: m.Currency} }
func (m Money) IsNegative() bool         { return m.Minor < 0 }
func (m Money) IsZero() bool             { return m.Minor == 0 }
func (m Money) GreaterThan(b Money) bool { return m.Minor > b.Minor }
func (m Money) Equal(b Money) bool       { return m.Minor == b.Minor }

func (m Money) String() string {
	if m.Currency == "" {
		return m.Decimal().StringFixed(DefaultExponent)
	}
	return m.Decimal().StringFixed(DefaultExponent) + " " + m.Currency
}

// SumMoney adds a list of amounts. The currency of the first entry wins.
func SumMoney(amounts ...Money) Money {
	var total Money
	for i, a := range amounts {
		if i == 0 {
			total.Currency = a.Currency
		}
		total.Minor += a.Minor
	}
	return total
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ResourceID string
type BookingID string
type StaffID string
type AssignmentID string
