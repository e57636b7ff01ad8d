package cart

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ErrItemNotFound is returned when updating a line that is not in the cart
var ErrItemNotFound = shared.NewDomainError("CART_ITEM_NOT_FOUND", "Item is not in the cart")

// Cart holds the line items of one customer
type Cart struct {
	shared.BaseAggregateRoot
	CustomerID uuid.UUID
	Items      []valueobject.LineItem
}

// NewCart creates an empty cart for a customer
func NewCart(customerID uuid.UUID) *Cart {
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Items:             []valueobject.LineItem{},
	}
}

// Find returns the line with the given key
func (c *Cart) Find(key valueobject.LineItemKey) (valueobject.LineItem, bool) {
	if i := c.indexOf(key); i >= 0 {
		return c.Items[i], true
	}
	return valueobject.LineItem{}, false
}

// AddItem merges item into the cart. available is the variant's stock;
// the merged quantity must not exceed it.
func (c *Cart) AddItem(item valueobject.LineItem, available int) error {
	if item.ProductID == uuid.Nil {
		return shared.NewValidationError("", "productId")
	}
	if item.Quantity < 1 {
		return shared.NewValidationError("Quantity must be at least 1", "quantity")
	}

	i := c.indexOf(item.Key())
	want := item.Quantity
	if i >= 0 {
		want += c.Items[i].Quantity
	}
	if want > available {
		return insufficientStock(item, available)
	}

	if i >= 0 {
		c.Items[i].Quantity = want
		c.Items[i].UnitPrice = item.UnitPrice
	} else {
		c.Items = append(c.Items, item)
	}
	c.touch()
	return nil
}

// UpdateQuantity sets a line's quantity clamped to [1, available].
// A quantity of zero or less removes the line. It returns the resulting
// quantity (0 when removed).
func (c *Cart) UpdateQuantity(key valueobject.LineItemKey, quantity, available int) (int, error) {
	i := c.indexOf(key)
	if i < 0 {
		if quantity <= 0 {
			return 0, nil
		}
		return 0, ErrItemNotFound
	}
	if quantity <= 0 {
		c.RemoveItem(key)
		return 0, nil
	}
	if available < 1 {
		return c.Items[i].Quantity, insufficientStock(c.Items[i], available)
	}
	if quantity > available {
		quantity = available
	}
	c.Items[i].Quantity = quantity
	c.touch()
	return quantity, nil
}

// RemoveItem removes a line. Removing a missing line is a no-op and returns false.
func (c *Cart) RemoveItem(key valueobject.LineItemKey) bool {
	i := c.indexOf(key)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.touch()
	return true
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []valueobject.LineItem{}
	c.touch()
}

// Total is the sum of unitPrice * quantity rounded to currency precision
func (c *Cart) Total() decimal.Decimal {
	return valueobject.SumLineItems(c.Items)
}

// ItemCount is the total number of units in the cart
func (c *Cart) ItemCount() int {
	return valueobject.TotalQuantity(c.Items)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) indexOf(key valueobject.LineItemKey) int {
	for i := range c.Items {
		if c.Items[i].Key() == key {
			return i
		}
	}
	return -1
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func insufficientStock(item valueobject.LineItem, available int) error {
	return shared.NewDomainError(shared.CodeInsufficientStock,
		fmt.Sprintf("Only %d available for %s (%s/%s)", max(available, 0), item.Name, item.Color, item.Size))
}
