package handler

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	identityapp "github.com/storefront/backend/internal/application/identity"
	ordersapp "github.com/storefront/backend/internal/application/order"
	shippingapp "github.com/storefront/backend/internal/application/shipping"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/stretchr/testify/mock"
)

// MockOrderUseCase implements OrderUseCase and AdminOrderUseCase
type MockOrderUseCase struct {
	mock.Mock
}

func (m *MockOrderUseCase) CreateOrder(ctx context.Context, caller *ordersapp.Caller, req ordersapp.CreateOrderRequest) (*ordersapp.CreateOrderResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersapp.CreateOrderResponse), args.Error(1)
}

func (m *MockOrderUseCase) ConfirmOrder(ctx context.Context, caller *ordersapp.Caller, orderID uuid.UUID) (*ordersapp.OrderResponse, error) {
	args := m.Called(ctx, caller, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersapp.OrderResponse), args.Error(1)
}

func (m *MockOrderUseCase) ConfirmPayment(ctx context.Context, caller *ordersapp.Caller, orderID uuid.UUID) (*ordersapp.OrderResponse, error) {
	args := m.Called(ctx, caller, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersapp.OrderResponse), args.Error(1)
}

func (m *MockOrderUseCase) GetOrders(ctx context.Context, caller *ordersapp.Caller, f ordersapp.OrderListFilter) (*ordersapp.OrderListResult, error) {
	args := m.Called(ctx, caller, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersapp.OrderListResult), args.Error(1)
}

func (m *MockOrderUseCase) GetOrder(ctx context.Context, caller *ordersapp.Caller, orderID uuid.UUID) (*ordersapp.OrderResponse, error) {
	args := m.Called(ctx, caller, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersapp.OrderResponse), args.Error(1)
}

func (m *MockOrderUseCase) GetOrderEntity(ctx context.Context, caller *ordersapp.Caller, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, caller, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderUseCase) CancelOrder(ctx context.Context, caller *ordersapp.Caller, orderID uuid.UUID, reason string) (*ordersapp.OrderResponse, error) {
	args := m.Called(ctx, caller, orderID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersapp.OrderResponse), args.Error(1)
}

func (m *MockOrderUseCase) AdminList(ctx context.Context, f ordersapp.OrderListFilter) (*ordersapp.OrderListResult, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersapp.OrderListResult), args.Error(1)
}

func (m *MockOrderUseCase) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, req ordersapp.UpdateStatusRequest) (*ordersapp.OrderResponse, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersapp.OrderResponse), args.Error(1)
}

func (m *MockOrderUseCase) Dashboard(ctx context.Context) (*ordersapp.DashboardResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersapp.DashboardResponse), args.Error(1)
}

// MockInvoiceRenderer implements InvoiceRenderer
type MockInvoiceRenderer struct {
	mock.Mock
}

func (m *MockInvoiceRenderer) Invoice(ctx context.Context, o *order.Order) ([]byte, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockCatalogUseCase implements CatalogUseCase
type MockCatalogUseCase struct {
	mock.Mock
}

func (m *MockCatalogUseCase) product(args mock.Arguments) (*catalogapp.ProductResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockCatalogUseCase) List(ctx context.Context, f catalogapp.ProductListFilter) (*catalogapp.ProductListResult, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductListResult), args.Error(1)
}

func (m *MockCatalogUseCase) AdminList(ctx context.Context, f catalogapp.ProductListFilter) (*catalogapp.ProductListResult, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductListResult), args.Error(1)
}

func (m *MockCatalogUseCase) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, id, includeInactive))
}

func (m *MockCatalogUseCase) Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, req))
}

func (m *MockCatalogUseCase) Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, id, req))
}

func (m *MockCatalogUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogUseCase) AdjustStock(ctx context.Context, id uuid.UUID, req catalogapp.AdjustStockRequest) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, id, req))
}

func (m *MockCatalogUseCase) UploadImage(ctx context.Context, id uuid.UUID, filename, contentType string, size int64, body io.Reader) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, id, filename, contentType, size, body))
}

func (m *MockCatalogUseCase) RemoveImage(ctx context.Context, id uuid.UUID, url string) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, id, url))
}

// MockAuthUseCase implements AuthUseCase
type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) RequestOTP(ctx context.Context, req identityapp.SignupRequest) (*identityapp.RequestOTPResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.RequestOTPResult), args.Error(1)
}

func (m *MockAuthUseCase) VerifyOTP(ctx context.Context, req identityapp.VerifyOTPRequest) (*identityapp.LoginResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.LoginResult), args.Error(1)
}

func (m *MockAuthUseCase) Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.LoginResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.LoginResult), args.Error(1)
}

func (m *MockAuthUseCase) Logout(ctx context.Context, jti string, remaining time.Duration) error {
	return m.Called(ctx, jti, remaining).Error(0)
}

// MockWebhookProcessor implements WebhookProcessor
type MockWebhookProcessor struct {
	mock.Mock
}

func (m *MockWebhookProcessor) HandleWebhook(ctx context.Context, payload []byte, timestamp, signature string) error {
	return m.Called(ctx, payload, timestamp, signature).Error(0)
}

// MockWebhookRecorder implements WebhookRecorder
type MockWebhookRecorder struct {
	mock.Mock
}

func (m *MockWebhookRecorder) RecordWebhook(ctx context.Context, outcome string) {
	m.Called(ctx, outcome)
}

// MockServiceabilityChecker implements ServiceabilityChecker
type MockServiceabilityChecker struct {
	mock.Mock
}

func (m *MockServiceabilityChecker) CheckServiceability(ctx context.Context, req shippingapp.ServiceabilityRequest) (*shippingapp.ServiceabilityResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shippingapp.ServiceabilityResponse), args.Error(1)
}

// MockPinger implements Pinger
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
