package wishlist

import (
	"context"

	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/wishlist"
	"go.uber.org/zap"
)

// AddRequest saves a product to the wishlist
type AddRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
}

// Response lists saved products. Products no longer sold are dropped from
// Products but kept in ProductIDs so the client can still toggle them.
type Response struct {
	ProductIDs []uuid.UUID                  `json:"productIds"`
	Products   []catalogapp.ProductResponse `json:"products"`
}

// Service manages customer wishlists
type Service struct {
	repo     wishlist.Repository
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewService creates a wishlist service
func NewService(repo wishlist.Repository, products catalog.ProductRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, products: products, logger: logger}
}

// Get returns the customer's wishlist with product details
func (s *Service) Get(ctx context.Context, customerID uuid.UUID) (*Response, error) {
	w, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, w)
}

// Add saves a product; adding it twice is not an error
func (s *Service) Add(ctx context.Context, customerID uuid.UUID, productID uuid.UUID) (*Response, error) {
	w, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if w.Contains(productID) {
		return s.toResponse(ctx, w)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, catalog.ErrProductUnavailable
	}

	added, err := w.Add(productID)
	if err != nil {
		return nil, err
	}
	if added {
		if err := s.repo.Add(ctx, customerID, productID); err != nil {
			return nil, err
		}
		s.logger.Debug("wishlist item added",
			zap.String("customer_id", customerID.String()),
			zap.String("product_id", productID.String()))
	}
	return s.toResponse(ctx, w)
}

// Remove drops a product; removing an absent product is not an error
func (s *Service) Remove(ctx context.Context, customerID uuid.UUID, productID uuid.UUID) (*Response, error) {
	w, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if w.Remove(productID) {
		if err := s.repo.Remove(ctx, customerID, productID); err != nil {
			return nil, err
		}
	}
	return s.toResponse(ctx, w)
}

func (s *Service) toResponse(ctx context.Context, w *wishlist.Wishlist) (*Response, error) {
	resp := &Response{
		ProductIDs: append([]uuid.UUID{}, w.ProductIDs...),
		Products:   []catalogapp.ProductResponse{},
	}
	if len(w.ProductIDs) == 0 {
		return resp, nil
	}

	products, err := s.products.FindByIDs(ctx, w.ProductIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	// keep wishlist order
	for _, id := range w.ProductIDs {
		if p, ok := byID[id]; ok && p.IsActive() {
			resp.Products = append(resp.Products, catalogapp.ToProductResponse(p))
		}
	}
	return resp, nil
}
