package wishlist

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// MaxItems caps a wishlist
const MaxItems = 200

// Wishlist is the set of products a customer saved
type Wishlist struct {
	CustomerID uuid.UUID
	ProductIDs []uuid.UUID
}

// New returns an empty wishlist
func New(customerID uuid.UUID) *Wishlist {
	return &Wishlist{CustomerID: customerID, ProductIDs: make([]uuid.UUID, 0)}
}

// Contains reports whether the product is saved
func (w *Wishlist) Contains(productID uuid.UUID) bool {
	for _, id := range w.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// Add saves a product. Adding a saved product changes nothing and returns false.
func (w *Wishlist) Add(productID uuid.UUID) (bool, error) {
	if productID == uuid.Nil {
		return false, shared.NewValidationError("Product ID is required", "productId")
	}
	if w.Contains(productID) {
		return false, nil
	}
	if len(w.ProductIDs) >= MaxItems {
		return false, shared.NewDomainError("WISHLIST_FULL", "Wishlist is full")
	}
	w.ProductIDs = append(w.ProductIDs, productID)
	return true, nil
}

// Remove drops a product; removing an absent product returns false
func (w *Wishlist) Remove(productID uuid.UUID) bool {
	for i, id := range w.ProductIDs {
		if id == productID {
			w.ProductIDs = append(w.ProductIDs[:i], w.ProductIDs[i+1:]...)
			return true
		}
	}
	return false
}

// Repository persists wishlists. FindByCustomer returns an empty wishlist
// when none was saved yet.
type Repository interface {
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*Wishlist, error)
	Add(ctx context.Context, customerID, productID uuid.UUID) error
	Remove(ctx context.Context, customerID, productID uuid.UUID) error
}
