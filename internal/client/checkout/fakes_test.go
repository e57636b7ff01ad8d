package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	orderapp "github.com/storefront/backend/internal/application/order"
	shippingapp "github.com/storefront/backend/internal/application/shipping"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/mock"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) CheckServiceability(ctx context.Context, req shippingapp.ServiceabilityRequest) (*shippingapp.ServiceabilityResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shippingapp.ServiceabilityResponse), args.Error(1)
}

func (m *MockAPI) CreateOrder(ctx context.Context, req orderapp.CreateOrderRequest) (*orderapp.CreateOrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.CreateOrderResponse), args.Error(1)
}

func (m *MockAPI) ConfirmOrder(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

func (m *MockAPI) ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

type MockPayments struct {
	mock.Mock
}

func (m *MockPayments) Open(ctx context.Context, req PaymentRequest) (PaymentResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(PaymentResult), args.Error(1)
}

type MockCart struct {
	mock.Mock
}

func (m *MockCart) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// recordingNavigator counts every navigation
type recordingNavigator struct {
	mu            sync.Mutex
	productPages  []string
	confirmations []Confirmation
	failures      []Failure
}

func (n *recordingNavigator) ProductPage(returnTo string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.productPages = append(n.productPages, returnTo)
}

func (n *recordingNavigator) Confirmation(c Confirmation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, c)
}

func (n *recordingNavigator) Failure(f Failure) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, f)
}

func (n *recordingNavigator) total() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.productPages) + len(n.confirmations) + len(n.failures)
}

// manualClock hands out a ticker the test drives by hand
type manualClock struct {
	mu      sync.Mutex
	ticks   chan time.Time
	stopped int
}

func newManualClock() *manualClock {
	return &manualClock{ticks: make(chan time.Time)}
}

func (c *manualClock) Now() time.Time { return time.Unix(0, 0) }

func (c *manualClock) Tick(time.Duration) (<-chan time.Time, func()) {
	return c.ticks, func() {
		c.mu.Lock()
		c.stopped++
		c.mu.Unlock()
	}
}

// Fire delivers n ticks and returns how many were received
func (c *manualClock) Fire(n int) int {
	for i := 0; i < n; i++ {
		select {
		case c.ticks <- time.Unix(0, 0):
		case <-time.After(100 * time.Millisecond):
			return i
		}
	}
	return n
}

func (c *manualClock) Stops() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

func validForm() valueobject.Address {
	return valueobject.Address{
		FirstName: "Asha",
		LastName:  "Rao",
		Email:     "asha@example.com",
		Phone:     "9876543210",
		Address:   "12 MG Road",
		City:      "Bengaluru",
		State:     "Karnataka",
		ZipCode:   "560001",
		Country:   "India",
	}
}

func cartItems() []valueobject.LineItem {
	return []valueobject.LineItem{
		{ProductID: uuid.New(), Name: "Product A", Color: "Black", Size: "M", Quantity: 2, UnitPrice: decimal.NewFromInt(500)},
		{ProductID: uuid.New(), Name: "Product B", Color: "White", Size: "L", Quantity: 1, UnitPrice: decimal.NewFromInt(1200)},
	}
}

func couriers(rates ...int64) *shippingapp.ServiceabilityResponse {
	resp := &shippingapp.ServiceabilityResponse{Success: true}
	for i, r := range rates {
		resp.Couriers = append(resp.Couriers, shippingapp.CourierResponse{
			CourierCompanyID:      i + 1,
			CourierName:           "Courier",
			Rate:                  decimal.NewFromInt(r),
			EstimatedDeliveryDays: 3,
		})
	}
	return resp
}
