package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// MaxImageSize is the largest accepted product image
const MaxImageSize = 5 << 20

// DefaultListCacheTTL is how long a public listing stays cached
const DefaultListCacheTTL = 5 * time.Minute

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageStorage stores product images and returns their public URL.
// Implemented by the infrastructure layer (S3 compatible stores).
type ImageStorage interface {
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	DeleteObject(ctx context.Context, key string) error
	// KeyFromURL maps a public URL back to its storage key
	KeyFromURL(url string) (string, bool)
}

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
	cache       catalog.ProductCache
	cacheTTL    time.Duration
	storage     ImageStorage
	publisher   shared.EventPublisher
	logger      *zap.Logger
	group       singleflight.Group
}

// ProductServiceOption configures a ProductService
type ProductServiceOption func(*ProductService)

// WithProductCache caches public listings
func WithProductCache(cache catalog.ProductCache, ttl time.Duration) ProductServiceOption {
	return func(s *ProductService) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithImageStorage enables image uploads
func WithImageStorage(storage ImageStorage) ProductServiceOption {
	return func(s *ProductService) {
		s.storage = storage
	}
}

// WithProductEventPublisher publishes product events after each write
func WithProductEventPublisher(p shared.EventPublisher) ProductServiceOption {
	return func(s *ProductService) {
		s.publisher = p
	}
}

// WithProductLogger sets the logger
func WithProductLogger(logger *zap.Logger) ProductServiceOption {
	return func(s *ProductService) {
		s.logger = logger
	}
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, opts ...ProductServiceOption) *ProductService {
	s := &ProductService{
		productRepo: productRepo,
		cacheTTL:    DefaultListCacheTTL,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns active products for the storefront. Results are cached and
// concurrent misses for the same page share one query.
func (s *ProductService) List(ctx context.Context, f ProductListFilter) (*ProductListResult, error) {
	f.Status = string(catalog.ProductStatusActive)
	key := listCacheKey(f)

	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("product cache read failed", zap.String("key", key), zap.Error(err))
		} else if data != nil {
			var cached ProductListResult
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		result, err := s.query(ctx, f)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if data, err := json.Marshal(result); err == nil {
				if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
					s.logger.Warn("product cache write failed", zap.String("key", key), zap.Error(err))
				}
			}
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ProductListResult), nil
}

// AdminList lists products in any status, uncached
func (s *ProductService) AdminList(ctx context.Context, f ProductListFilter) (*ProductListResult, error) {
	return s.query(ctx, f)
}

func (s *ProductService) query(ctx context.Context, f ProductListFilter) (*ProductListResult, error) {
	filter := toDomainFilter(f)
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{
		Items:    ToProductResponses(products),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// Get returns one product. Inactive products are hidden from the storefront.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() && !includeInactive {
		return nil, shared.ErrNotFound
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.Category, req.Price)
	if err != nil {
		return nil, err
	}
	if req.Description != "" || !req.WeightKg.IsZero() {
		if err := product.Update(req.Name, req.Description, req.Category, req.Price, req.WeightKg); err != nil {
			return nil, err
		}
	}
	if len(req.Variants) > 0 {
		if err := product.SetVariants(toVariants(req.Variants)); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// Update applies the non-nil fields of req
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, desc, category := product.Name, product.Description, product.Category
	price, weight := product.Price, product.WeightKg
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		desc = *req.Description
	}
	if req.Category != nil {
		category = *req.Category
	}
	if req.Price != nil {
		price = *req.Price
	}
	if req.WeightKg != nil {
		weight = *req.WeightKg
	}
	if err := product.Update(name, desc, category, price, weight); err != nil {
		return nil, err
	}
	if req.Variants != nil {
		if err := product.SetVariants(toVariants(req.Variants)); err != nil {
			return nil, err
		}
	}
	if req.Active != nil && *req.Active != product.IsActive() {
		if *req.Active {
			err = product.Activate()
		} else {
			err = product.Deactivate()
		}
		if err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete deactivates a product. Orders keep referring to it.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !product.IsActive() {
		return nil
	}
	if err := product.Deactivate(); err != nil {
		return err
	}
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return err
	}
	s.afterWrite(ctx, product)
	return nil
}

// AdjustStock changes a variant's stock
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.AdjustStock(req.Color, req.Size, req.Delta); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// UploadImage stores an image and appends it to the product gallery
func (s *ProductService) UploadImage(ctx context.Context, id uuid.UUID, filename, contentType string, size int64, body io.Reader) (*ProductResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_NOT_CONFIGURED", "Image storage is not configured")
	}
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, shared.NewValidationError("Only JPEG, PNG and WebP images are accepted", "image")
	}
	if size <= 0 || size > MaxImageSize {
		return nil, shared.NewValidationError(fmt.Sprintf("Image must be between 1 byte and %d bytes", MaxImageSize), "image")
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := path.Join("products", id.String(), uuid.NewString()+ext)
	url, err := s.storage.PutObject(ctx, key, body, size, contentType)
	if err != nil {
		s.logger.Error("image upload failed",
			zap.String("product_id", id.String()),
			zap.String("filename", filename),
			zap.Error(err))
		return nil, err
	}

	product.AddImage(url)
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		// the object is orphaned without a product row pointing at it
		if delErr := s.storage.DeleteObject(ctx, key); delErr != nil {
			s.logger.Warn("orphaned product image", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	s.afterWrite(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// RemoveImage drops an image from the gallery and deletes the object
func (s *ProductService) RemoveImage(ctx context.Context, id uuid.UUID, url string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.RemoveImage(url)
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}
	if s.storage != nil {
		if key, ok := s.storage.KeyFromURL(url); ok {
			if err := s.storage.DeleteObject(ctx, key); err != nil {
				s.logger.Warn("failed to delete product image", zap.String("key", key), zap.Error(err))
			}
		}
	}
	s.afterWrite(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// PriceItems resolves client line items against the catalog: name, price,
// image and weight come from the product, and every quantity is checked
// against the variant's stock.
func (s *ProductService) PriceItems(ctx context.Context, items []valueobject.LineItem) ([]valueobject.LineItem, error) {
	if len(items) == 0 {
		return nil, shared.NewValidationError("At least one item is required", "products")
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	// quantities of the same variant add up across lines
	wanted := make(map[valueobject.LineItemKey]int, len(items))
	priced := make([]valueobject.LineItem, 0, len(items))
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok || !p.IsActive() {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", fmt.Sprintf("Product %s is not available", item.ProductID))
		}
		if item.Quantity < 1 {
			return nil, shared.NewValidationError("Quantity must be at least 1", "quantity")
		}
		wanted[item.Key()] += item.Quantity
		if available := p.AvailableStock(item.Color, item.Size); wanted[item.Key()] > available {
			return nil, shared.NewDomainError(shared.CodeInsufficientStock,
				fmt.Sprintf("Only %d available for %s (%s/%s)", available, p.Name, item.Color, item.Size))
		}
		priced = append(priced, FromProduct(p, item.Color, item.Size, item.Quantity))
	}
	return priced, nil
}

// FromProduct builds a line item from catalog data
func FromProduct(p *catalog.Product, color, size string, quantity int) valueobject.LineItem {
	if v, ok := p.Variant(color, size); ok {
		color, size = v.Color, v.Size
	}
	return valueobject.LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Color:     color,
		Size:      size,
		Quantity:  quantity,
		UnitPrice: p.Price,
		ImageURL:  p.PrimaryImage(),
		WeightKg:  p.WeightKg,
	}
}

// afterWrite publishes pending events and drops cached listings
func (s *ProductService) afterWrite(ctx context.Context, product *catalog.Product) {
	if s.cache != nil {
		if err := s.cache.InvalidateAll(ctx); err != nil {
			s.logger.Warn("product cache invalidation failed", zap.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, product.GetDomainEvents()...); err != nil {
			s.logger.Warn("failed to publish product events",
				zap.String("product_id", product.ID.String()),
				zap.Error(err))
		}
	}
	product.ClearDomainEvents()
}

func toDomainFilter(f ProductListFilter) shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = strings.TrimSpace(f.Search)
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		filter.Filters["category"] = c
	}
	return filter
}

func listCacheKey(f ProductListFilter) string {
	filter := toDomainFilter(f)
	return fmt.Sprintf("list:%d:%d:%s:%s:%s:%s",
		filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir,
		strings.ToLower(filter.Search), strings.ToLower(f.Category))
}
