package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// OrderCacheTTL is how long fetched orders are served without refetching
const OrderCacheTTL = 10 * time.Minute

// OrderAPI is the order part of the backend
type OrderAPI interface {
	GetOrders(ctx context.Context) ([]orderapp.OrderResponse, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID, reason string) (*orderapp.OrderResponse, error)
}

type cachedOrder struct {
	order     orderapp.OrderResponse
	fetchedAt time.Time
}

// OrderStore caches the customer's order history and order details.
// A failed refresh keeps the previous data and records LastError.
type OrderStore struct {
	api    OrderAPI
	logger *zap.Logger
	now    func() time.Time
	group  singleflight.Group

	mu        sync.RWMutex
	orders    []orderapp.OrderResponse
	listAt    time.Time
	details   map[uuid.UUID]cachedOrder
	lastError error
}

// OrderStoreOption configures an OrderStore
type OrderStoreOption func(*OrderStore)

// WithOrderClock replaces time.Now
func WithOrderClock(now func() time.Time) OrderStoreOption {
	return func(s *OrderStore) { s.now = now }
}

// NewOrderStore creates an empty store
func NewOrderStore(api OrderAPI, logger *zap.Logger, opts ...OrderStoreOption) *OrderStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &OrderStore{
		api:     api,
		logger:  logger,
		now:     time.Now,
		details: make(map[uuid.UUID]cachedOrder),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LastError is the error of the most recent failed fetch, nil after a success
func (s *OrderStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// FetchOrders returns the order history. Cached data younger than
// OrderCacheTTL is returned without a request unless force is set. On
// failure the cached list is returned together with the error.
func (s *OrderStore) FetchOrders(ctx context.Context, force bool) ([]orderapp.OrderResponse, error) {
	s.mu.RLock()
	fresh := !s.listAt.IsZero() && s.now().Sub(s.listAt) < OrderCacheTTL
	cached := s.orders
	s.mu.RUnlock()
	if fresh && !force {
		return cached, nil
	}

	v, err, _ := s.group.Do("orders", func() (any, error) {
		return s.api.GetOrders(ctx)
	})
	if err != nil {
		s.fail(err)
		return cached, err
	}

	orders := v.([]orderapp.OrderResponse)
	now := s.now()
	s.mu.Lock()
	s.orders = orders
	s.listAt = now
	for _, o := range orders {
		s.details[o.ID] = cachedOrder{order: o, fetchedAt: now}
	}
	s.lastError = nil
	s.mu.Unlock()
	return orders, nil
}

// FetchOrderDetails returns one order, cached per order id
func (s *OrderStore) FetchOrderDetails(ctx context.Context, orderID uuid.UUID, force bool) (*orderapp.OrderResponse, error) {
	s.mu.RLock()
	entry, ok := s.details[orderID]
	s.mu.RUnlock()
	if ok && !force && s.now().Sub(entry.fetchedAt) < OrderCacheTTL {
		o := entry.order
		return &o, nil
	}

	v, err, _ := s.group.Do("order:"+orderID.String(), func() (any, error) {
		return s.api.GetOrder(ctx, orderID)
	})
	if err != nil {
		s.fail(err)
		if ok {
			o := entry.order
			return &o, err
		}
		return nil, err
	}

	fetched := v.(*orderapp.OrderResponse)
	s.store(*fetched)
	return fetched, nil
}

// CancelOrder cancels an order. The reason is required and checked before
// any request is made.
func (s *OrderStore) CancelOrder(ctx context.Context, orderID uuid.UUID, reason string) (*orderapp.OrderResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewValidationError("A cancellation reason is required", "reason")
	}

	updated, err := s.api.CancelOrder(ctx, orderID, reason)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	s.store(*updated)
	s.logger.Info("order cancelled", zap.String("order_id", orderID.String()))
	return updated, nil
}

// store writes an order into both caches
func (s *OrderStore) store(o orderapp.OrderResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[o.ID] = cachedOrder{order: o, fetchedAt: s.now()}
	for i := range s.orders {
		if s.orders[i].ID == o.ID {
			updated := make([]orderapp.OrderResponse, len(s.orders))
			copy(updated, s.orders)
			updated[i] = o
			s.orders = updated
			break
		}
	}
	s.lastError = nil
}

func (s *OrderStore) fail(err error) {
	s.logger.Warn("order fetch failed", zap.Error(err))
	s.mu.Lock()
	s.lastError = err
	s.mu.Unlock()
}

// CanCancel reports whether the customer may still cancel: the order is
// Pending or Processing and pickup has not been reached.
func CanCancel(o orderapp.OrderResponse, now time.Time) bool {
	if !order.Status(o.Status).IsCancellable() {
		return false
	}
	return o.PickupScheduledAt == nil || now.Before(*o.PickupScheduledAt)
}
