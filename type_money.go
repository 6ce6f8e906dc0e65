package pdv

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DisplayCurrency is the ISO 4217 code used to print Money values.
var DisplayCurrency = "BRL"

// moneyPlaces is the number of fraction digits kept at the boundaries
// (persistence and user input).
const moneyPlaces = 2

// Money represents an amount of cash in the register currency.
//
// Arithmetic is exact: two amounts computed from the same prices are always
// Equal, which is what the daily "fully retired" check relies on.
type Money struct {
	value decimal.Decimal // as major unit value
}

func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value)}
}

// ParseMoney parses a user supplied amount like "12.50" or "12,50".
// It rejects non numbers and amounts with more than two fraction digits.
func ParseMoney(s string) (Money, error) {
	v, err := parseDecimal(s)
	if err != nil {
		return Money{}, &ValidationError{Field: "amount", Value: s, Reason: "not a number"}
	}
	if !v.Equal(v.Truncate(moneyPlaces)) {
		return Money{}, &ValidationError{Field: "amount", Value: s, Reason: "more than two decimal places"}
	}
	return Money{value: v}, nil
}

// currency returns the display currency.
func currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, DisplayCurrency).Currency()
}

// String returns the string representation of the money value, e.g. "R$12,50".
func (m Money) String() string {
	cur := currency()
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool    { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg()} }
func (m Money) Add(n Money) Money               { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money               { return Money{value: m.value.Sub(n.value)} }
func (m Money) Mul(q Quantity) Money            { return Money{value: m.value.Mul(q.value)} }
func (m Money) Round() Money                    { return Money{value: m.value.Round(moneyPlaces)} }

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal { return m.value }

// Ptr returns a pointer to a copy of m, for optional fields.
func (m Money) Ptr() *Money { return &m }

// MarshalJSON writes the amount as a plain number rounded to cents.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.Round(moneyPlaces).String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	return m.value.UnmarshalJSON(b)
}
