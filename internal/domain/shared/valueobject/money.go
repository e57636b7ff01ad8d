package valueobject

import (
	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	INR Currency = "INR"
	USD Currency = "USD"
)

// DefaultCurrency is the store currency
const DefaultCurrency = INR

// CurrencyPlaces is the precision used for every stored or displayed amount
const CurrencyPlaces = 2

// RoundMoney rounds to currency precision (half away from zero)
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// MoneyEqual compares two amounts within half a paisa
func MoneyEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(decimal.NewFromFloat(0.005))
}

// WithinTolerance reports whether a and b differ by no more than tol
func WithinTolerance(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}
