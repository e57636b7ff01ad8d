package valueobject

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemKey identifies a line by product variant
type LineItemKey struct {
	ProductID uuid.UUID
	Color     string
	Size      string
}

// NewLineItemKey builds a key, folding case and whitespace of color and size
func NewLineItemKey(productID uuid.UUID, color, size string) LineItemKey {
	return LineItemKey{
		ProductID: productID,
		Color:     strings.ToLower(strings.TrimSpace(color)),
		Size:      strings.ToLower(strings.TrimSpace(size)),
	}
}

// LineItem is the single item shape used by carts, orders and checkout
type LineItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	WeightKg  decimal.Decimal `json:"weightKg,omitempty"`
}

// Key returns the identity of the line
func (l LineItem) Key() LineItemKey {
	return NewLineItemKey(l.ProductID, l.Color, l.Size)
}

// LineTotal returns unitPrice * quantity
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SumLineItems returns the currency-rounded sum of all line totals
func SumLineItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return RoundMoney(total)
}

// TotalQuantity sums quantities
func TotalQuantity(items []LineItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
