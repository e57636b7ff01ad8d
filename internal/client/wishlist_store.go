package client

import (
	"context"
	"sync"

	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	wishlistapp "github.com/storefront/backend/internal/application/wishlist"
	"go.uber.org/zap"
)

// WishlistAPI is the wishlist part of the backend
type WishlistAPI interface {
	GetWishlist(ctx context.Context) (*wishlistapp.Response, error)
	AddToWishlist(ctx context.Context, productID uuid.UUID) (*wishlistapp.Response, error)
	RemoveFromWishlist(ctx context.Context, productID uuid.UUID) (*wishlistapp.Response, error)
}

// WishlistStore mirrors the customer's saved products
type WishlistStore struct {
	api    WishlistAPI
	logger *zap.Logger

	mu       sync.RWMutex
	ids      map[uuid.UUID]struct{}
	products []catalogapp.ProductResponse
}

// NewWishlistStore creates an empty store
func NewWishlistStore(api WishlistAPI, logger *zap.Logger) *WishlistStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WishlistStore{api: api, logger: logger, ids: make(map[uuid.UUID]struct{})}
}

// Fetch loads the wishlist
func (s *WishlistStore) Fetch(ctx context.Context) ([]catalogapp.ProductResponse, error) {
	resp, err := s.api.GetWishlist(ctx)
	if err != nil {
		return nil, err
	}
	s.apply(resp)
	return resp.Products, nil
}

// Contains reports whether a product is saved
func (s *WishlistStore) Contains(productID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[productID]
	return ok
}

// Products returns the saved products still on sale
func (s *WishlistStore) Products() []catalogapp.ProductResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

// Toggle saves the product when absent and removes it otherwise. It
// returns whether the product is saved afterwards.
func (s *WishlistStore) Toggle(ctx context.Context, productID uuid.UUID) (bool, error) {
	var (
		resp *wishlistapp.Response
		err  error
	)
	if s.Contains(productID) {
		resp, err = s.api.RemoveFromWishlist(ctx, productID)
	} else {
		resp, err = s.api.AddToWishlist(ctx, productID)
	}
	if err != nil {
		return s.Contains(productID), err
	}
	s.apply(resp)
	return s.Contains(productID), nil
}

func (s *WishlistStore) apply(resp *wishlistapp.Response) {
	ids := make(map[uuid.UUID]struct{}, len(resp.ProductIDs))
	for _, id := range resp.ProductIDs {
		ids[id] = struct{}{}
	}
	s.mu.Lock()
	s.ids = ids
	s.products = resp.Products
	s.mu.Unlock()
}
