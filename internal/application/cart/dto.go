package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// AddItemRequest adds a product variant to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Color     string    `json:"color" binding:"max=50"`
	Size      string    `json:"size" binding:"max=20"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=100"`
}

// UpdateItemRequest sets a line's quantity; zero or less removes it
type UpdateItemRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Color     string    `json:"color"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
}

// RemoveItemRequest identifies the line to drop
type RemoveItemRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Color     string    `json:"color"`
	Size      string    `json:"size"`
}

// Summary is shown under the cart. Shipping is quoted at checkout.
type Summary struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	EstimatedTax decimal.Decimal `json:"estimatedTax"`
	ItemCount    int             `json:"itemCount"`
}

// CartResponse is the cart with its summary
type CartResponse struct {
	Items   []valueobject.LineItem `json:"items"`
	Summary Summary                `json:"summary"`
}

// ToCartResponse converts a domain cart
func ToCartResponse(c *cart.Cart) CartResponse {
	items := c.Items
	if items == nil {
		items = []valueobject.LineItem{}
	}
	subtotal := c.Total()
	return CartResponse{
		Items: items,
		Summary: Summary{
			Subtotal:     subtotal,
			EstimatedTax: checkout.EstimateTax(subtotal),
			ItemCount:    c.ItemCount(),
		},
	}
}
