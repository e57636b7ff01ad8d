package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// CartAPI is the cart part of the backend
type CartAPI interface {
	GetCart(ctx context.Context) (*cartapp.CartResponse, error)
	AddToCart(ctx context.Context, req cartapp.AddItemRequest) (*cartapp.CartResponse, error)
	UpdateCartItem(ctx context.Context, req cartapp.UpdateItemRequest) (*cartapp.CartResponse, error)
	RemoveCartItem(ctx context.Context, req cartapp.RemoveItemRequest) (*cartapp.CartResponse, error)
	ClearCart(ctx context.Context) (*cartapp.CartResponse, error)
}

// StockLookup reports how many units of a variant can be bought
type StockLookup interface {
	AvailableStock(ctx context.Context, productID uuid.UUID, color, size string) (int, error)
}

// CartStore mirrors the server cart. Local state changes only after the
// backend accepted the mutation, and is replaced by the server's answer.
type CartStore struct {
	api    CartAPI
	stock  StockLookup
	logger *zap.Logger

	mu      sync.RWMutex
	items   []valueobject.LineItem
	summary cartapp.Summary
	loaded  bool
}

// NewCartStore creates an empty store
func NewCartStore(api CartAPI, stock StockLookup, logger *zap.Logger) *CartStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartStore{api: api, stock: stock, logger: logger}
}

// Load replaces local state with the server cart
func (s *CartStore) Load(ctx context.Context) error {
	resp, err := s.api.GetCart(ctx)
	if err != nil {
		return err
	}
	s.apply(resp)
	return nil
}

// Items returns a copy of the lines
func (s *CartStore) Items() []valueobject.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]valueobject.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Summary returns the server's cart summary from the last response
func (s *CartStore) Summary() cartapp.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// Total is the sum of unitPrice*quantity rounded to 2 places
func (s *CartStore) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return valueobject.SumLineItems(s.items)
}

// ItemCount sums quantities
func (s *CartStore) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return valueobject.TotalQuantity(s.items)
}

// AddItem adds quantity units of a variant. Merging into an existing line
// fails with INSUFFICIENT_STOCK when the result exceeds the variant stock.
func (s *CartStore) AddItem(ctx context.Context, item valueobject.LineItem) error {
	if item.Quantity < 1 {
		return shared.NewValidationError("Quantity must be at least 1", "quantity")
	}
	available, err := s.stock.AvailableStock(ctx, item.ProductID, item.Color, item.Size)
	if err != nil {
		return err
	}
	current, _ := s.quantityOf(item.Key())
	if current+item.Quantity > available {
		return fmt.Errorf("%w: only %d available", shared.ErrInsufficientStock, available)
	}

	resp, err := s.api.AddToCart(ctx, cartapp.AddItemRequest{
		ProductID: item.ProductID,
		Color:     item.Color,
		Size:      item.Size,
		Quantity:  item.Quantity,
	})
	if err != nil {
		return err
	}
	s.apply(resp)
	return nil
}

// UpdateQuantity sets a line's quantity, clamped to [1, available stock].
// A quantity of zero or less removes the line.
func (s *CartStore) UpdateQuantity(ctx context.Context, productID uuid.UUID, color, size string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID, color, size)
	}
	available, err := s.stock.AvailableStock(ctx, productID, color, size)
	if err != nil {
		return err
	}
	if available < 1 {
		return fmt.Errorf("%w: variant is out of stock", shared.ErrInsufficientStock)
	}
	if quantity > available {
		quantity = available
	}

	resp, err := s.api.UpdateCartItem(ctx, cartapp.UpdateItemRequest{
		ProductID: productID,
		Color:     color,
		Size:      size,
		Quantity:  quantity,
	})
	if err != nil {
		return err
	}
	s.apply(resp)
	return nil
}

// RemoveItem drops a line. Removing a line the loaded cart does not hold
// is a no-op.
func (s *CartStore) RemoveItem(ctx context.Context, productID uuid.UUID, color, size string) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if _, ok := s.quantityOf(valueobject.NewLineItemKey(productID, color, size)); loaded && !ok {
		return nil
	}

	resp, err := s.api.RemoveCartItem(ctx, cartapp.RemoveItemRequest{ProductID: productID, Color: color, Size: size})
	if err != nil {
		return err
	}
	s.apply(resp)
	return nil
}

// Clear empties the cart
func (s *CartStore) Clear(ctx context.Context) error {
	resp, err := s.api.ClearCart(ctx)
	if err != nil {
		return err
	}
	s.apply(resp)
	return nil
}

func (s *CartStore) quantityOf(key valueobject.LineItemKey) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.Key() == key {
			return it.Quantity, true
		}
	}
	return 0, false
}

func (s *CartStore) apply(resp *cartapp.CartResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]valueobject.LineItem(nil), resp.Items...)
	s.summary = resp.Summary
	s.loaded = true
}
