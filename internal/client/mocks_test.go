package client

import (
	"context"

	"github.com/google/uuid"
	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	notificationapp "github.com/storefront/backend/internal/application/notification"
	orderapp "github.com/storefront/backend/internal/application/order"
	wishlistapp "github.com/storefront/backend/internal/application/wishlist"
	"github.com/stretchr/testify/mock"
)

type MockCatalogAPI struct {
	mock.Mock
}

func (m *MockCatalogAPI) ListProducts(ctx context.Context, f catalogapp.ProductListFilter) (*ProductPage, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProductPage), args.Error(1)
}

func (m *MockCatalogAPI) GetProduct(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

type MockCartAPI struct {
	mock.Mock
}

func (m *MockCartAPI) cart(args mock.Arguments) (*cartapp.CartResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartapp.CartResponse), args.Error(1)
}

func (m *MockCartAPI) GetCart(ctx context.Context) (*cartapp.CartResponse, error) {
	return m.cart(m.Called(ctx))
}

func (m *MockCartAPI) AddToCart(ctx context.Context, req cartapp.AddItemRequest) (*cartapp.CartResponse, error) {
	return m.cart(m.Called(ctx, req))
}

func (m *MockCartAPI) UpdateCartItem(ctx context.Context, req cartapp.UpdateItemRequest) (*cartapp.CartResponse, error) {
	return m.cart(m.Called(ctx, req))
}

func (m *MockCartAPI) RemoveCartItem(ctx context.Context, req cartapp.RemoveItemRequest) (*cartapp.CartResponse, error) {
	return m.cart(m.Called(ctx, req))
}

func (m *MockCartAPI) ClearCart(ctx context.Context) (*cartapp.CartResponse, error) {
	return m.cart(m.Called(ctx))
}

type MockStockLookup struct {
	mock.Mock
}

func (m *MockStockLookup) AvailableStock(ctx context.Context, productID uuid.UUID, color, size string) (int, error) {
	args := m.Called(ctx, productID, color, size)
	return args.Int(0), args.Error(1)
}

type MockOrderAPI struct {
	mock.Mock
}

func (m *MockOrderAPI) GetOrders(ctx context.Context) ([]orderapp.OrderResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]orderapp.OrderResponse), args.Error(1)
}

func (m *MockOrderAPI) GetOrder(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

func (m *MockOrderAPI) CancelOrder(ctx context.Context, orderID uuid.UUID, reason string) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, orderID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

type MockWishlistAPI struct {
	mock.Mock
}

func (m *MockWishlistAPI) list(args mock.Arguments) (*wishlistapp.Response, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wishlistapp.Response), args.Error(1)
}

func (m *MockWishlistAPI) GetWishlist(ctx context.Context) (*wishlistapp.Response, error) {
	return m.list(m.Called(ctx))
}

func (m *MockWishlistAPI) AddToWishlist(ctx context.Context, productID uuid.UUID) (*wishlistapp.Response, error) {
	return m.list(m.Called(ctx, productID))
}

func (m *MockWishlistAPI) RemoveFromWishlist(ctx context.Context, productID uuid.UUID) (*wishlistapp.Response, error) {
	return m.list(m.Called(ctx, productID))
}

type MockNotificationAPI struct {
	mock.Mock
}

func (m *MockNotificationAPI) ListNotifications(ctx context.Context, f notificationapp.ListFilter) (*notificationapp.ListResult, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notificationapp.ListResult), args.Error(1)
}

func (m *MockNotificationAPI) UnreadNotificationCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationAPI) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockNotificationAPI) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
