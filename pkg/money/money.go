// Package money provides a fixed-point monetary value object.
//
// Amounts are stored as int64 paise (two decimal places) in a single implicit
// currency. Arithmetic never silently overflows and parsing goes through
// shopspring/decimal so "40.00" means exactly 4000 smallest units.
package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when a string cannot be parsed as a
	// monetary amount or carries more than two decimal places.
	ErrInvalidAmount = errors.New("invalid monetary amount")

	// ErrOverflow is returned when an arithmetic operation would exceed the
	// representable range.
	ErrOverflow = errors.New("monetary amount overflows")
)

// Money is an immutable fixed-point amount with two decimal places.
type Money struct {
	units int64
}

// Zero is the zero amount.
var Zero = Money{}

// FromUnits builds a Money from an amount already expressed in the smallest
// unit. Used for hydrating from the store and for test fixtures.
func FromUnits(units int64) Money {
	return Money{units: units}
}

// Parse converts a decimal string such as "40.00" into Money. Amounts with
// more than two decimal places are rejected rather than rounded.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, ErrInvalidAmount
	}
	return fromDecimal(d)
}

// FromFloat converts a float64 request value into Money. The value is
// rounded half-up to two decimal places before conversion, matching how
// amounts arrive from JSON bodies.
func FromFloat(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Zero, ErrInvalidAmount
	}
	return fromDecimal(decimal.NewFromFloat(f).Round(2))
}

func fromDecimal(d decimal.Decimal) (Money, error) {
	if d.Exponent() < -2 {
		return Zero, ErrInvalidAmount
	}
	units := d.Shift(2)
	if !units.IsInteger() || !units.BigInt().IsInt64() {
		return Zero, ErrInvalidAmount
	}
	return Money{units: units.IntPart()}, nil
}

// Units returns the amount in the smallest unit.
func (m Money) Units() int64 { return m.units }

// Float returns the amount in main units. Only for read-model responses;
// arithmetic stays on Units.
func (m Money) Float() float64 {
	return decimal.New(m.units, -2).InexactFloat64()
}

// Add returns m + other, guarding against overflow.
func (m Money) Add(other Money) (Money, error) {
	sum := m.units + other.units
	if (other.units > 0 && sum < m.units) || (other.units < 0 && sum > m.units) {
		return Zero, ErrOverflow
	}
	return Money{units: sum}, nil
}

// Sub returns m - other, guarding against overflow.
func (m Money) Sub(other Money) (Money, error) {
	return m.Add(Money{units: -other.units})
}

// Cmp compares m to other: -1 if less, 0 if equal, +1 if greater.
func (m Money) Cmp(other Money) int {
	switch {
	case m.units < other.units:
		return -1
	case m.units > other.units:
		return 1
	default:
		return 0
	}
}

// GreaterThan reports m > other.
func (m Money) GreaterThan(other Money) bool { return m.Cmp(other) > 0 }

// LessThan reports m < other.
func (m Money) LessThan(other Money) bool { return m.Cmp(other) < 0 }

// Equals reports m == other.
func (m Money) Equals(other Money) bool { return m.Cmp(other) == 0 }

// IsPositive reports m > 0.
func (m Money) IsPositive() bool { return m.units > 0 }

// IsNegative reports m < 0.
func (m Money) IsNegative() bool { return m.units < 0 }

// IsZero reports m == 0.
func (m Money) IsZero() bool { return m.units == 0 }

// String formats the amount with exactly two decimal places, e.g. "40.00".
func (m Money) String() string {
	return decimal.New(m.units, -2).StringFixed(2)
}
