package cart

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository persists carts, one per customer
type CartRepository interface {
	// FindByCustomer returns the customer's cart or shared.ErrNotFound
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*Cart, error)

	// Save replaces the stored cart lines with the aggregate's lines
	Save(ctx context.Context, cart *Cart) error
}
