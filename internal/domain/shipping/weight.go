package shipping

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

var (
	// PerItemWeightKg is the fallback weight per unit when product weights are unknown
	PerItemWeightKg = decimal.RequireFromString("0.5")
	// MinWeightKg is the smallest parcel weight quoted
	MinWeightKg = decimal.RequireFromString("0.5")
)

// EstimateWeight returns the parcel weight in kg. When every item carries a
// product weight the real weights are summed; otherwise 0.5kg per unit is used.
// The result is never below MinWeightKg.
func EstimateWeight(items []valueobject.LineItem) decimal.Decimal {
	known := len(items) > 0
	actual := decimal.Zero
	for _, item := range items {
		if !item.WeightKg.IsPositive() {
			known = false
			break
		}
		actual = actual.Add(item.WeightKg.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	weight := actual
	if !known {
		weight = PerItemWeightKg.Mul(decimal.NewFromInt(int64(valueobject.TotalQuantity(items))))
	}
	if weight.LessThan(MinWeightKg) {
		return MinWeightKg
	}
	return weight
}
