package client

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func line(id uuid.UUID, qty int, price string) valueobject.LineItem {
	return valueobject.LineItem{
		ProductID: id,
		Name:      "Tee",
		Color:     "Black",
		Size:      "M",
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
	}
}

func cartOf(items ...valueobject.LineItem) *cartapp.CartResponse {
	return &cartapp.CartResponse{
		Items:   items,
		Summary: cartapp.Summary{Subtotal: valueobject.SumLineItems(items), ItemCount: valueobject.TotalQuantity(items)},
	}
}

func newCartStore(t *testing.T, items ...valueobject.LineItem) (*CartStore, *MockCartAPI, *MockStockLookup) {
	t.Helper()
	api := new(MockCartAPI)
	stock := new(MockStockLookup)
	store := NewCartStore(api, stock, nil)

	api.On("GetCart", mock.Anything).Return(cartOf(items...), nil).Once()
	require.NoError(t, store.Load(context.Background()))
	return store, api, stock
}

func TestCartStore_AddItem(t *testing.T) {
	id := uuid.New()

	t.Run("adds after backend accepts", func(t *testing.T) {
		store, api, stock := newCartStore(t)
		stock.On("AvailableStock", mock.Anything, id, "Black", "M").Return(5, nil)
		api.On("AddToCart", mock.Anything, cartapp.AddItemRequest{ProductID: id, Color: "Black", Size: "M", Quantity: 2}).
			Return(cartOf(line(id, 2, "500")), nil)

		require.NoError(t, store.AddItem(context.Background(), line(id, 2, "500")))
		assert.Equal(t, 2, store.ItemCount())
		assert.True(t, decimal.NewFromInt(1000).Equal(store.Total()))
		api.AssertExpectations(t)
	})

	t.Run("merge beyond stock is rejected without a call", func(t *testing.T) {
		store, api, stock := newCartStore(t, line(id, 3, "500"))
		stock.On("AvailableStock", mock.Anything, id, "Black", "M").Return(4, nil)

		err := store.AddItem(context.Background(), line(id, 2, "500"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.Equal(t, 3, store.ItemCount())
		api.AssertNotCalled(t, "AddToCart", mock.Anything, mock.Anything)
	})

	t.Run("backend failure leaves state unchanged", func(t *testing.T) {
		store, api, stock := newCartStore(t)
		stock.On("AvailableStock", mock.Anything, id, "Black", "M").Return(5, nil)
		api.On("AddToCart", mock.Anything, mock.Anything).Return(nil, &APIError{Code: shared.CodeNetwork, Message: "boom"})

		err := store.AddItem(context.Background(), line(id, 1, "500"))
		assert.ErrorIs(t, err, ErrNetwork)
		assert.Empty(t, store.Items())
	})

	t.Run("zero quantity is invalid", func(t *testing.T) {
		store, _, _ := newCartStore(t)
		err := store.AddItem(context.Background(), line(id, 0, "500"))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestCartStore_UpdateQuantity(t *testing.T) {
	id := uuid.New()

	t.Run("clamps to stock", func(t *testing.T) {
		store, api, stock := newCartStore(t, line(id, 1, "500"))
		stock.On("AvailableStock", mock.Anything, id, "Black", "M").Return(3, nil)
		api.On("UpdateCartItem", mock.Anything, cartapp.UpdateItemRequest{ProductID: id, Color: "Black", Size: "M", Quantity: 3}).
			Return(cartOf(line(id, 3, "500")), nil)

		require.NoError(t, store.UpdateQuantity(context.Background(), id, "Black", "M", 10))
		assert.Equal(t, 3, store.ItemCount())
	})

	t.Run("zero removes the line", func(t *testing.T) {
		store, api, _ := newCartStore(t, line(id, 1, "500"))
		api.On("RemoveCartItem", mock.Anything, cartapp.RemoveItemRequest{ProductID: id, Color: "Black", Size: "M"}).
			Return(cartOf(), nil)

		require.NoError(t, store.UpdateQuantity(context.Background(), id, "Black", "M", 0))
		assert.Empty(t, store.Items())
	})

	t.Run("out of stock", func(t *testing.T) {
		store, _, stock := newCartStore(t, line(id, 1, "500"))
		stock.On("AvailableStock", mock.Anything, id, "Black", "M").Return(0, nil)

		err := store.UpdateQuantity(context.Background(), id, "Black", "M", 2)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})
}

func TestCartStore_RemoveItemIsIdempotent(t *testing.T) {
	store, api, _ := newCartStore(t)

	require.NoError(t, store.RemoveItem(context.Background(), uuid.New(), "Black", "M"))
	api.AssertNotCalled(t, "RemoveCartItem", mock.Anything, mock.Anything)
}

func TestCartStore_TotalIsExactSum(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	store, _, _ := newCartStore(t, line(a, 2, "500"), line(b, 1, "1200"))

	assert.True(t, decimal.NewFromInt(2200).Equal(store.Total()))
	assert.Equal(t, 3, store.ItemCount())
}

func TestCartStore_Clear(t *testing.T) {
	store, api, _ := newCartStore(t, line(uuid.New(), 1, "99.99"))
	api.On("ClearCart", mock.Anything).Return(cartOf(), nil)

	require.NoError(t, store.Clear(context.Background()))
	assert.Empty(t, store.Items())
	assert.True(t, store.Total().IsZero())
}
