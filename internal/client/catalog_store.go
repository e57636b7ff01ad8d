package client

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// catalogPageSize is the largest page the listing endpoint serves
const catalogPageSize = 100

// CatalogAPI is the part of the backend the catalog store reads
type CatalogAPI interface {
	ListProducts(ctx context.Context, f catalogapp.ProductListFilter) (*ProductPage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error)
}

// CatalogStore caches the product list for the session. The list is
// fetched once and reused until Refresh.
type CatalogStore struct {
	api    CatalogAPI
	logger *zap.Logger
	group  singleflight.Group

	mu       sync.RWMutex
	products []catalogapp.ProductResponse
	byID     map[uuid.UUID]catalogapp.ProductResponse
	loaded   bool
}

// NewCatalogStore creates an empty store
func NewCatalogStore(api CatalogAPI, logger *zap.Logger) *CatalogStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogStore{api: api, logger: logger, byID: make(map[uuid.UUID]catalogapp.ProductResponse)}
}

// Products returns every active product, loading them on first use
func (s *CatalogStore) Products(ctx context.Context) ([]catalogapp.ProductResponse, error) {
	s.mu.RLock()
	if s.loaded {
		out := s.products
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()
	return s.load(ctx)
}

// Refresh drops the cached list and loads it again
func (s *CatalogStore) Refresh(ctx context.Context) ([]catalogapp.ProductResponse, error) {
	s.mu.Lock()
	s.loaded = false
	s.mu.Unlock()
	return s.load(ctx)
}

func (s *CatalogStore) load(ctx context.Context) ([]catalogapp.ProductResponse, error) {
	v, err, coalesced := s.group.Do("products", func() (any, error) {
		s.mu.RLock()
		if s.loaded {
			cached := s.products
			s.mu.RUnlock()
			return cached, nil
		}
		s.mu.RUnlock()

		products, err := s.fetchAll(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.products = products
		s.byID = make(map[uuid.UUID]catalogapp.ProductResponse, len(products))
		for _, p := range products {
			s.byID[p.ID] = p
		}
		s.loaded = true
		s.mu.Unlock()
		return products, nil
	})
	if err != nil {
		s.logger.Warn("catalog load failed", zap.Error(err))
		return nil, err
	}
	if coalesced {
		s.logger.Debug("catalog load coalesced")
	}
	return v.([]catalogapp.ProductResponse), nil
}

func (s *CatalogStore) fetchAll(ctx context.Context) ([]catalogapp.ProductResponse, error) {
	var all []catalogapp.ProductResponse
	for page := 1; ; page++ {
		res, err := s.api.ListProducts(ctx, catalogapp.ProductListFilter{Page: page, PageSize: catalogPageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, res.Items...)
		if len(res.Items) < catalogPageSize || int64(len(all)) >= res.Meta.Total {
			return all, nil
		}
	}
}

// Product returns a product from the cache, fetching it when absent
func (s *CatalogStore) Product(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error) {
	s.mu.RLock()
	p, ok := s.byID[id]
	s.mu.RUnlock()
	if ok {
		return &p, nil
	}

	v, err, _ := s.group.Do("product:"+id.String(), func() (any, error) {
		return s.api.GetProduct(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	fetched := v.(*catalogapp.ProductResponse)
	s.mu.Lock()
	s.byID[id] = *fetched
	s.mu.Unlock()
	return fetched, nil
}

// AvailableStock returns the stock of a variant. Color and size compare
// case-insensitively.
func (s *CatalogStore) AvailableStock(ctx context.Context, productID uuid.UUID, color, size string) (int, error) {
	p, err := s.Product(ctx, productID)
	if err != nil {
		return 0, err
	}
	for _, v := range p.Variants {
		if strings.EqualFold(v.Color, strings.TrimSpace(color)) && strings.EqualFold(v.Size, strings.TrimSpace(size)) {
			return v.Stock, nil
		}
	}
	if len(p.Variants) == 0 {
		return p.TotalStock, nil
	}
	return 0, shared.NewValidationError("Unknown product variant", "color", "size")
}
