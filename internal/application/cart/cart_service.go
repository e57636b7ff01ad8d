package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// CartService manages the server-side cart of each customer
type CartService struct {
	cartRepo    cart.CartRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(cartRepo cart.CartRepository, productRepo catalog.ProductRepository, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{cartRepo: cartRepo, productRepo: productRepo, logger: logger}
}

// Get returns the customer's cart, empty if none was saved yet
func (s *CartService) Get(ctx context.Context, customerID uuid.UUID) (*CartResponse, error) {
	c, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

// AddItem merges a variant into the cart. The unit price comes from the catalog.
func (s *CartService) AddItem(ctx context.Context, customerID uuid.UUID, req AddItemRequest) (*CartResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available")
		}
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available")
	}
	variant, ok := product.Variant(req.Color, req.Size)
	if !ok {
		return nil, shared.NewDomainError("VARIANT_NOT_FOUND", "Selected color and size do not exist")
	}

	c, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	item := valueobject.LineItem{
		ProductID: product.ID,
		Name:      product.Name,
		Color:     variant.Color,
		Size:      variant.Size,
		Quantity:  req.Quantity,
		UnitPrice: product.Price,
		ImageURL:  product.PrimaryImage(),
		WeightKg:  product.WeightKg,
	}
	if err := c.AddItem(item, variant.Stock); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Debug("cart item added",
		zap.String("customer_id", customerID.String()),
		zap.String("product_id", product.ID.String()),
		zap.Int("quantity", req.Quantity))

	resp := ToCartResponse(c)
	return &resp, nil
}

// UpdateQuantity clamps the quantity to the variant stock; zero or less removes the line
func (s *CartService) UpdateQuantity(ctx context.Context, customerID uuid.UUID, req UpdateItemRequest) (*CartResponse, error) {
	c, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}

	key := valueobject.NewLineItemKey(req.ProductID, req.Color, req.Size)
	available := 0
	if req.Quantity > 0 {
		product, err := s.productRepo.FindByID(ctx, req.ProductID)
		switch {
		case err == nil:
			available = product.AvailableStock(req.Color, req.Size)
		case !errors.Is(err, shared.ErrNotFound):
			return nil, err
		}
	}
	if _, err := c.UpdateQuantity(key, req.Quantity, available); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

// RemoveItem drops a line; a missing line is not an error
func (s *CartService) RemoveItem(ctx context.Context, customerID uuid.UUID, req RemoveItemRequest) (*CartResponse, error) {
	c, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c.RemoveItem(valueobject.NewLineItemKey(req.ProductID, req.Color, req.Size)) {
		if err := s.cartRepo.Save(ctx, c); err != nil {
			return nil, err
		}
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, customerID uuid.UUID) (*CartResponse, error) {
	c, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !c.IsEmpty() {
		c.Clear()
		if err := s.cartRepo.Save(ctx, c); err != nil {
			return nil, err
		}
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

// load returns the stored cart or a new empty one
func (s *CartService) load(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error) {
	c, err := s.cartRepo.FindByCustomer(ctx, customerID)
	if errors.Is(err, shared.ErrNotFound) {
		return cart.NewCart(customerID), nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
