package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidCurrency = errors.New("money: invalid currency code")

// minorDigits is the exponent of the minor unit for every supported currency.
const minorDigits = 2

// Money keeps amounts in integer minor units (cents) to avoid floating point issues.
type Money struct {
	Amount   int64  `json:"amount" bson:"amount"`
	Currency string `json:"currency" bson:"currency"`
}

// New constructs a Money value validating minimal invariants.
func New(amount int64, currency string) (Money, error) {
	if len(strings.TrimSpace(currency)) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	return Money{Amount: amount, Currency: currency}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal converts a major-unit decimal (12.34) into minor units, rounding half-up.
func FromDecimal(major decimal.Decimal, currency string) (Money, error) {
	minor := major.Shift(minorDigits).Round(0)
	return New(minor.IntPart(), currency)
}

// Decimal returns the amount in minor units as a decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.Amount)
}

// Major returns the amount expressed in major units (cents shifted by two digits).
func (m Money) Major() decimal.Decimal {
	return decimal.New(m.Amount, -minorDigits)
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount < 0
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Major().StringFixed(minorDigits), m.Currency)
}
