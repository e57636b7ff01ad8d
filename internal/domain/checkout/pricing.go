package checkout

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
)

// TaxRate is applied to the subtotal only
var TaxRate = decimal.RequireFromString("0.18")

// TotalTolerance is the largest accepted difference between a client-computed
// total and the server's
var TotalTolerance = decimal.RequireFromString("0.01")

// Totals is the priced breakdown of a checkout
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals prices items with the selected shipping option:
// total = subtotal + shipping.rate + 18% of subtotal, each rounded to 2 places.
// No free-shipping threshold applies here.
func ComputeTotals(items []valueobject.LineItem, option shipping.Option) Totals {
	subtotal := valueobject.SumLineItems(items)
	ship := valueobject.RoundMoney(option.Rate)
	tax := EstimateTax(subtotal)
	return Totals{
		Subtotal: subtotal,
		Shipping: ship,
		Tax:      tax,
		Total:    valueobject.RoundMoney(subtotal.Add(ship).Add(tax)),
	}
}

// EstimateTax returns the tax on a subtotal
func EstimateTax(subtotal decimal.Decimal) decimal.Decimal {
	return valueobject.RoundMoney(subtotal.Mul(TaxRate))
}
