package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockProductCache is a mock implementation of ProductCache
type MockProductCache struct {
	mock.Mock
}

func (m *MockProductCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockProductCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return m.Called(ctx, key, data, ttl).Error(0)
}

func (m *MockProductCache) InvalidateAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockImageStorage is a mock implementation of ImageStorage
type MockImageStorage struct {
	mock.Mock
}

func (m *MockImageStorage) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, body, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockImageStorage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockImageStorage) KeyFromURL(url string) (string, bool) {
	args := m.Called(url)
	return args.String(0), args.Bool(1)
}

func createTestProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Linen Shirt", "shirts", decimal.NewFromInt(1100))
	require.NoError(t, err)
	require.NoError(t, p.SetVariants([]catalog.Variant{
		{Color: "Blue", Size: "M", Stock: 3},
		{Color: "White", Size: "L", Stock: 0},
	}))
	p.ClearDomainEvents()
	return p
}

func TestProductService_Create(t *testing.T) {
	repo := new(MockProductRepository)
	cache := new(MockProductCache)
	svc := NewProductService(repo, WithProductCache(cache, time.Minute))
	ctx := context.Background()

	repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)
	cache.On("InvalidateAll", ctx).Return(nil)

	resp, err := svc.Create(ctx, CreateProductRequest{
		Name:        "Linen Shirt",
		Description: "Breathable",
		Category:    "shirts",
		Price:       decimal.RequireFromString("1099.999"),
		WeightKg:    decimal.RequireFromString("0.3"),
		Variants:    []VariantInput{{Color: "Blue", Size: "M", Stock: 4}},
	})

	require.NoError(t, err)
	assert.Equal(t, "1100", resp.Price.String())
	assert.Equal(t, "Breathable", resp.Description)
	assert.Equal(t, 4, resp.TotalStock)
	assert.True(t, resp.Active)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestProductService_Create_DuplicateVariant(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo)

	_, err := svc.Create(context.Background(), CreateProductRequest{
		Name:     "Shirt",
		Price:    decimal.NewFromInt(10),
		Variants: []VariantInput{{Color: "Blue", Size: "M"}, {Color: "blue", Size: "m"}},
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_Get(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo)
	ctx := context.Background()
	p := createTestProduct(t)
	require.NoError(t, p.Deactivate())

	repo.On("FindByID", ctx, p.ID).Return(p, nil)

	_, err := svc.Get(ctx, p.ID, false)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	resp, err := svc.Get(ctx, p.ID, true)
	require.NoError(t, err)
	assert.False(t, resp.Active)
}

func TestProductService_List_CacheHit(t *testing.T) {
	repo := new(MockProductRepository)
	cache := new(MockProductCache)
	svc := NewProductService(repo, WithProductCache(cache, time.Minute))
	ctx := context.Background()

	cache.On("Get", ctx, mock.Anything).Return([]byte(`{"items":[],"total":7,"page":1,"pageSize":20}`), nil)

	result, err := svc.List(ctx, ProductListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.Total)
	repo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

func TestProductService_List_CacheMissForcesActive(t *testing.T) {
	repo := new(MockProductRepository)
	cache := new(MockProductCache)
	svc := NewProductService(repo, WithProductCache(cache, time.Minute))
	ctx := context.Background()
	p := createTestProduct(t)

	cache.On("Get", ctx, mock.Anything).Return(nil, nil)
	cache.On("Set", ctx, mock.Anything, mock.Anything, time.Minute).Return(nil)
	isActiveFilter := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["status"] == "active" && f.Filters["category"] == "shirts"
	})
	repo.On("FindAll", ctx, isActiveFilter).Return([]catalog.Product{*p}, nil)
	repo.On("Count", ctx, isActiveFilter).Return(int64(1), nil)

	result, err := svc.List(ctx, ProductListFilter{Category: "shirts", Status: "inactive"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, p.ID, result.Items[0].ID)
	cache.AssertCalled(t, "Set", ctx, mock.Anything, mock.Anything, time.Minute)
}

type slowRepo struct {
	MockProductRepository
	calls atomic.Int32
}

func (r *slowRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	r.calls.Add(1)
	time.Sleep(50 * time.Millisecond)
	return []catalog.Product{}, nil
}

func (r *slowRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return 0, nil
}

func TestProductService_List_CoalescesConcurrentMisses(t *testing.T) {
	repo := &slowRepo{}
	svc := NewProductService(repo)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.List(context.Background(), ProductListFilter{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, repo.calls.Load(), int32(8))
}

func TestProductService_Update(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo)
	ctx := context.Background()
	p := createTestProduct(t)

	repo.On("FindByID", ctx, p.ID).Return(p, nil)
	repo.On("SaveWithLock", ctx, p).Return(nil)

	price := decimal.NewFromInt(999)
	inactive := false
	resp, err := svc.Update(ctx, p.ID, UpdateProductRequest{Price: &price, Active: &inactive})
	require.NoError(t, err)
	assert.True(t, price.Equal(resp.Price))
	assert.Equal(t, "Linen Shirt", resp.Name)
	assert.False(t, resp.Active)
}

func TestProductService_Update_ConcurrentModification(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo)
	ctx := context.Background()
	p := createTestProduct(t)

	repo.On("FindByID", ctx, p.ID).Return(p, nil)
	repo.On("SaveWithLock", ctx, p).Return(shared.ErrConcurrencyConflict)

	name := "New"
	_, err := svc.Update(ctx, p.ID, UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestProductService_Delete_IsSoft(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo)
	ctx := context.Background()
	p := createTestProduct(t)

	repo.On("FindByID", ctx, p.ID).Return(p, nil)
	repo.On("SaveWithLock", ctx, p).Return(nil).Once()

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.False(t, p.IsActive())

	// second delete is a no-op
	require.NoError(t, svc.Delete(ctx, p.ID))
	repo.AssertNumberOfCalls(t, "SaveWithLock", 1)
}

func TestProductService_AdjustStock(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo)
	ctx := context.Background()
	p := createTestProduct(t)
	repo.On("FindByID", ctx, p.ID).Return(p, nil)
	repo.On("SaveWithLock", ctx, p).Return(nil)

	resp, err := svc.AdjustStock(ctx, p.ID, AdjustStockRequest{Color: "blue", Size: "m", Delta: 5})
	require.NoError(t, err)
	assert.Equal(t, 8, resp.TotalStock)

	_, err = svc.AdjustStock(ctx, p.ID, AdjustStockRequest{Color: "Blue", Size: "M", Delta: -100})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
}

func TestProductService_UploadImage(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and appends", func(t *testing.T) {
		repo := new(MockProductRepository)
		storage := new(MockImageStorage)
		svc := NewProductService(repo, WithImageStorage(storage))
		p := createTestProduct(t)
		body := bytes.NewReader([]byte("png"))

		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		repo.On("SaveWithLock", ctx, p).Return(nil)
		storage.On("PutObject", ctx, mock.MatchedBy(func(key string) bool {
			return len(key) > 0 && key[len(key)-4:] == ".png"
		}), body, int64(3), "image/png").Return("https://cdn.example.com/p.png", nil)

		resp, err := svc.UploadImage(ctx, p.ID, "p.png", "image/png", 3, body)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://cdn.example.com/p.png"}, resp.Images)
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		svc := NewProductService(new(MockProductRepository), WithImageStorage(new(MockImageStorage)))
		_, err := svc.UploadImage(ctx, uuid.New(), "a.gif", "image/gif", 3, bytes.NewReader(nil))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("removes object when save fails", func(t *testing.T) {
		repo := new(MockProductRepository)
		storage := new(MockImageStorage)
		svc := NewProductService(repo, WithImageStorage(storage))
		p := createTestProduct(t)

		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		repo.On("SaveWithLock", ctx, p).Return(errors.New("db down"))
		storage.On("PutObject", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("u", nil)
		storage.On("DeleteObject", ctx, mock.Anything).Return(nil)

		_, err := svc.UploadImage(ctx, p.ID, "a.jpg", "image/jpeg", 10, bytes.NewReader(nil))
		assert.Error(t, err)
		storage.AssertCalled(t, "DeleteObject", ctx, mock.Anything)
	})
}

func TestProductService_PriceItems(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo)
	ctx := context.Background()
	p := createTestProduct(t)
	repo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*p}, nil)

	t.Run("uses catalog price and canonical variant", func(t *testing.T) {
		items, err := svc.PriceItems(ctx, []valueobject.LineItem{
			{ProductID: p.ID, Color: "blue", Size: "m", Quantity: 2, UnitPrice: decimal.NewFromInt(1)},
		})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, decimal.NewFromInt(1100).Equal(items[0].UnitPrice))
		assert.Equal(t, "Blue", items[0].Color)
		assert.Equal(t, "Linen Shirt", items[0].Name)
	})

	t.Run("sums duplicate lines against stock", func(t *testing.T) {
		_, err := svc.PriceItems(ctx, []valueobject.LineItem{
			{ProductID: p.ID, Color: "Blue", Size: "M", Quantity: 2},
			{ProductID: p.ID, Color: "Blue", Size: "M", Quantity: 2},
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.PriceItems(ctx, []valueobject.LineItem{{ProductID: uuid.New(), Quantity: 1}})
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "PRODUCT_UNAVAILABLE", de.Code)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.PriceItems(ctx, nil)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}
