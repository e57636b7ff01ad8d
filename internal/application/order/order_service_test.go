package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type orderFixture struct {
	orders    *MockOrderRepository
	products  *MockProductRepository
	pricer    *MockPricer
	gateway   *MockGateway
	publisher *MockPublisher
	idem      *MockIdempotencyStore
	svc       *OrderService
	caller    *Caller
	product   *catalog.Product
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	p, err := catalog.NewProduct("Kurta", "ethnic", decimal.NewFromInt(1100))
	require.NoError(t, err)
	require.NoError(t, p.SetVariants([]catalog.Variant{{Color: "Red", Size: "M", Stock: 5}}))

	f := &orderFixture{
		orders:    new(MockOrderRepository),
		products:  new(MockProductRepository),
		pricer:    new(MockPricer),
		gateway:   new(MockGateway),
		publisher: new(MockPublisher),
		idem:      new(MockIdempotencyStore),
		caller:    &Caller{UserID: uuid.New()},
		product:   p,
	}
	f.svc = NewOrderService(f.orders, f.products, f.pricer, f.gateway,
		Config{ReturnURL: "https://shop.example.com/orders/{order_id}", NotifyURL: "https://api.example.com/webhook"},
		WithEventPublisher(f.publisher),
		WithIdempotencyStore(f.idem),
		WithClock(func() time.Time { return fixedNow }),
	)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	return f
}

func testAddress() valueobject.Address {
	return valueobject.Address{
		FirstName: "Asha", LastName: "Rao", Email: "asha@example.com", Phone: "9876543210",
		Address: "12 MG Road", City: "Bengaluru", State: "Karnataka", ZipCode: "560001",
	}
}

func (f *orderFixture) pricedItems(qty int) []valueobject.LineItem {
	return []valueobject.LineItem{{
		ProductID: f.product.ID, Name: "Kurta", Color: "Red", Size: "M",
		Quantity: qty, UnitPrice: decimal.NewFromInt(1100),
	}}
}

func (f *orderFixture) createRequest(total string) CreateOrderRequest {
	return CreateOrderRequest{
		Products:     []OrderItemInput{{ProductID: f.product.ID, Color: "Red", Size: "M", Quantity: 2}},
		TotalAmount:  decimal.RequireFromString(total),
		Address:      testAddress(),
		ShippingInfo: ShippingInfoInput{CourierID: 2, CourierName: "Xpressbees", Rate: decimal.NewFromInt(80), EstimatedDeliveryDays: 5},
	}
}

func (f *orderFixture) pendingOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(f.caller.customerID(), f.pricedItems(2), order.Amounts{
		Subtotal: decimal.NewFromInt(2200), Shipping: decimal.NewFromInt(80),
		Tax: decimal.NewFromInt(396), Total: decimal.NewFromInt(2676),
	}, shipping.Option{CourierID: 2, CourierName: "Xpressbees", Rate: decimal.NewFromInt(80)}, testAddress(), valueobject.Address{})
	require.NoError(t, err)
	require.NoError(t, o.AttachPaymentSession("session_abc", "cf_order_1"))
	o.ClearDomainEvents()
	return o
}

func TestOrderService_CreateOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	f.pricer.On("PriceItems", ctx, mock.Anything).Return(f.pricedItems(2), nil)
	f.orders.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
	f.orders.On("SaveWithLock", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
	f.gateway.On("CreateSession", ctx, mock.MatchedBy(func(r *payment.CreateSessionRequest) bool {
		return r.Amount.Equal(decimal.NewFromInt(2676)) &&
			r.Customer.Email == "asha@example.com" &&
			r.ReturnURL == "https://shop.example.com/orders/"+r.OrderID.String() &&
			r.ExpiresAt.Equal(fixedNow.Add(DefaultSessionTTL))
	})).Return(&payment.Session{GatewayOrderID: "cf_1", PaymentSessionID: "session_1"}, nil)

	resp, err := f.svc.CreateOrder(ctx, f.caller, f.createRequest("2676"))
	require.NoError(t, err)

	assert.Equal(t, "session_1", resp.PaymentSessionID)
	assert.Equal(t, "Pending", resp.Order.Status)
	assert.Equal(t, "PENDING", resp.Order.PaymentStatus)
	assert.True(t, decimal.NewFromInt(2200).Equal(resp.Order.Subtotal))
	assert.True(t, decimal.NewFromInt(396).Equal(resp.Order.TaxAmount))
	assert.True(t, decimal.NewFromInt(2676).Equal(resp.Order.TotalAmount))
	assert.Equal(t, resp.Order.Address, resp.Order.BillingAddress)
	assert.Equal(t, &f.caller.UserID, resp.Order.CustomerID)

	f.publisher.AssertCalled(t, "Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == order.EventTypeOrderPlaced
	}))
}

func TestOrderService_CreateOrder_AcceptsTotalWithinTolerance(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.pricer.On("PriceItems", ctx, mock.Anything).Return(f.pricedItems(2), nil)
	f.orders.On("Save", ctx, mock.Anything).Return(nil)
	f.orders.On("SaveWithLock", ctx, mock.Anything).Return(nil)
	f.gateway.On("CreateSession", ctx, mock.Anything).Return(&payment.Session{PaymentSessionID: "s"}, nil)

	_, err := f.svc.CreateOrder(ctx, f.caller, f.createRequest("2676.01"))
	assert.NoError(t, err)
}

func TestOrderService_CreateOrder_TotalMismatch(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.pricer.On("PriceItems", ctx, mock.Anything).Return(f.pricedItems(2), nil)

	_, err := f.svc.CreateOrder(ctx, f.caller, f.createRequest("2600"))

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.CodeValidation, de.Code)
	assert.Equal(t, []string{"totalAmount"}, de.Fields)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.gateway.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrder_MissingAddressFields(t *testing.T) {
	f := newOrderFixture(t)
	req := f.createRequest("2676")
	req.Address.City = ""
	req.Address.Phone = " "

	_, err := f.svc.CreateOrder(context.Background(), f.caller, req)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, []string{"city", "phone"}, de.Fields)
	f.pricer.AssertNotCalled(t, "PriceItems", mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrder_GatewayFailure(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.pricer.On("PriceItems", ctx, mock.Anything).Return(f.pricedItems(2), nil)
	f.orders.On("Save", ctx, mock.Anything).Return(nil)
	f.gateway.On("CreateSession", ctx, mock.Anything).Return(nil, payment.ErrGatewayUnavailable)

	_, err := f.svc.CreateOrder(ctx, f.caller, f.createRequest("2676"))
	assert.ErrorIs(t, err, payment.ErrGatewayUnavailable)
	f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestOrderService_ConfirmOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	o := f.pendingOrder(t)
	paidAt := fixedNow.Add(-time.Minute)

	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
	f.orders.On("SaveWithLock", ctx, o).Return(nil)
	f.gateway.On("FetchOrder", ctx, "cf_order_1").Return(&payment.OrderStatus{Status: payment.GatewayStatusPaid, PaidAt: &paidAt}, nil).Once()
	f.products.On("FindByID", ctx, f.product.ID).Return(f.product, nil)
	f.products.On("SaveWithLock", ctx, f.product).Return(nil)

	resp, err := f.svc.ConfirmOrder(ctx, f.caller, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", resp.PaymentStatus)
	assert.Equal(t, "Processing", resp.Status)
	assert.Equal(t, &paidAt, resp.PaidAt)
	assert.Equal(t, 3, f.product.AvailableStock("Red", "M"), "stock deducted once")

	// confirming again is a no-op without another gateway call
	resp, err = f.svc.ConfirmPayment(ctx, f.caller, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", resp.PaymentStatus)
	f.gateway.AssertNumberOfCalls(t, "FetchOrder", 1)
	assert.Equal(t, 3, f.product.AvailableStock("Red", "M"))
}

func TestOrderService_ConfirmOrder_NotPaid(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	o := f.pendingOrder(t)
	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
	f.gateway.On("FetchOrder", ctx, "cf_order_1").Return(&payment.OrderStatus{Status: payment.GatewayStatusActive}, nil)

	_, err := f.svc.ConfirmOrder(ctx, f.caller, o.ID)
	assert.ErrorIs(t, err, shared.ErrPayment)
	assert.False(t, o.IsPaid())
}

func TestOrderService_ConfirmOrder_ConcurrentWinner(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	o := f.pendingOrder(t)
	paid := f.pendingOrder(t)
	_, err := paid.ConfirmPayment(fixedNow)
	require.NoError(t, err)
	paid.ID = o.ID

	f.orders.On("FindByID", ctx, o.ID).Return(o, nil).Once()
	f.orders.On("FindByID", ctx, o.ID).Return(paid, nil).Once()
	f.orders.On("SaveWithLock", ctx, o).Return(shared.ErrConcurrencyConflict)
	f.gateway.On("FetchOrder", ctx, "cf_order_1").Return(&payment.OrderStatus{Status: payment.GatewayStatusPaid}, nil)

	resp, err := f.svc.ConfirmOrder(ctx, f.caller, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", resp.PaymentStatus)
	f.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestOrderService_GetOrder_Ownership(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	o := f.pendingOrder(t)
	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

	_, err := f.svc.GetOrder(ctx, &Caller{UserID: uuid.New()}, o.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.svc.GetOrder(ctx, nil, o.ID)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	resp, err := f.svc.GetOrder(ctx, &Caller{UserID: uuid.New(), IsAdmin: true}, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, resp.OrderNumber)
	assert.True(t, resp.CanCancel)
}

func TestOrderService_GetOrders(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	o := f.pendingOrder(t)
	f.orders.On("FindByCustomer", ctx, f.caller.UserID, mock.Anything).Return([]order.Order{*o}, nil)
	f.orders.On("Count", ctx, mock.MatchedBy(func(fl shared.Filter) bool {
		return fl.Filters["customer_id"] == f.caller.UserID
	})).Return(int64(1), nil)

	result, err := f.svc.GetOrders(ctx, f.caller, OrderListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	require.Len(t, result.Items, 1)

	_, err = f.svc.GetOrders(ctx, nil, OrderListFilter{})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestOrderService_CancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a reason before any lookup", func(t *testing.T) {
		f := newOrderFixture(t)
		_, err := f.svc.CancelOrder(ctx, f.caller, uuid.New(), "  ")
		assert.ErrorIs(t, err, shared.ErrValidation)
		f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("cancels pending order", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.pendingOrder(t)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(nil)

		resp, err := f.svc.CancelOrder(ctx, f.caller, o.ID, "Ordered by mistake")
		require.NoError(t, err)
		assert.Equal(t, "Canceled", resp.Status)
		assert.Equal(t, "Ordered by mistake", resp.CancelReason)
		assert.Equal(t, fixedNow, *resp.CancelledAt)
		f.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("restocks paid order", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.pendingOrder(t)
		_, err := o.ConfirmPayment(fixedNow)
		require.NoError(t, err)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(nil)
		f.products.On("FindByID", ctx, f.product.ID).Return(f.product, nil)
		f.products.On("SaveWithLock", ctx, f.product).Return(nil)

		_, err = f.svc.CancelOrder(ctx, f.caller, o.ID, "Changed my mind")
		require.NoError(t, err)
		assert.Equal(t, 7, f.product.AvailableStock("Red", "M"))
	})

	t.Run("shipped order cannot be cancelled", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.pendingOrder(t)
		require.NoError(t, o.SetStatus(order.StatusShipped, "", fixedNow))
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.svc.CancelOrder(ctx, f.caller, o.ID, "late")
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestOrderService_AdminUpdateStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	o := f.pendingOrder(t)
	pickup := fixedNow.Add(24 * time.Hour)
	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
	f.orders.On("SaveWithLock", ctx, o).Return(nil)

	resp, err := f.svc.AdminUpdateStatus(ctx, o.ID, UpdateStatusRequest{
		Status: "Out for Delivery", AWB: "AWB123", PickupScheduledAt: &pickup,
	})
	require.NoError(t, err)
	assert.Equal(t, "Out for Delivery", resp.Status)
	assert.Equal(t, "AWB123", resp.AWB)
	assert.Len(t, resp.StatusHistory, 2)

	_, err = f.svc.AdminUpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "Lost"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestOrderService_AdminList_RejectsUnknownStatus(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.svc.AdminList(context.Background(), OrderListFilter{Status: "Returned"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestOrderService_Dashboard(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.orders.On("CountByStatus", ctx).Return(map[order.Status]int64{
		order.StatusPending: 2, order.StatusDelivered: 3,
	}, nil)
	f.orders.On("SumCompletedRevenue", ctx).Return(decimal.RequireFromString("10000.456"), nil)
	f.products.On("Count", ctx, mock.Anything).Return(int64(12), nil)

	resp, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.TotalOrders)
	assert.Equal(t, int64(0), resp.OrdersByStatus["Shipped"])
	assert.Equal(t, "10000.46", resp.Revenue.StringFixed(2))
	assert.Equal(t, int64(12), resp.ProductCount)
}

func TestOrderService_HandleWebhook(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{}`)

	success := func(o *order.Order) *payment.Notification {
		return &payment.Notification{
			EventID: "evt_1", Type: "PAYMENT_SUCCESS_WEBHOOK", PaymentStatus: "SUCCESS",
			GatewayOrderID: o.GatewayOrderID, Amount: o.TotalAmount, ReceivedAt: fixedNow,
		}
	}

	t.Run("confirms once", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.pendingOrder(t)
		f.gateway.On("VerifyWebhook", payload, "ts", "sig").Return(success(o), nil)
		f.idem.On("MarkProcessed", ctx, "payment_webhook:evt_1", WebhookDedupTTL).Return(true, nil).Once()
		f.idem.On("MarkProcessed", ctx, "payment_webhook:evt_1", WebhookDedupTTL).Return(false, nil).Once()
		f.orders.On("FindByGatewayOrderID", ctx, "cf_order_1").Return(o, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(nil)
		f.products.On("FindByID", ctx, f.product.ID).Return(f.product, nil)
		f.products.On("SaveWithLock", ctx, f.product).Return(nil)

		require.NoError(t, f.svc.HandleWebhook(ctx, payload, "ts", "sig"))
		assert.True(t, o.IsPaid())
		require.NoError(t, f.svc.HandleWebhook(ctx, payload, "ts", "sig"))
		f.orders.AssertNumberOfCalls(t, "FindByGatewayOrderID", 1)
	})

	t.Run("bad signature", func(t *testing.T) {
		f := newOrderFixture(t)
		f.gateway.On("VerifyWebhook", payload, "ts", "bad").Return(nil, payment.ErrGatewayInvalidCallback)
		assert.ErrorIs(t, f.svc.HandleWebhook(ctx, payload, "ts", "bad"), payment.ErrGatewayInvalidCallback)
	})

	t.Run("amount mismatch", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.pendingOrder(t)
		n := success(o)
		n.Amount = decimal.NewFromInt(1)
		f.gateway.On("VerifyWebhook", payload, "ts", "sig").Return(n, nil)
		f.idem.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(true, nil)
		f.idem.On("Release", mock.Anything, "payment_webhook:evt_1").Return(nil)
		f.orders.On("FindByGatewayOrderID", ctx, "cf_order_1").Return(o, nil)

		assert.ErrorIs(t, f.svc.HandleWebhook(ctx, payload, "ts", "sig"), shared.ErrPayment)
		assert.False(t, o.IsPaid())
	})

	t.Run("failed apply releases the event for redelivery", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.pendingOrder(t)
		f.gateway.On("VerifyWebhook", payload, "ts", "sig").Return(success(o), nil)
		f.idem.On("MarkProcessed", ctx, "payment_webhook:evt_1", WebhookDedupTTL).Return(true, nil).Twice()
		f.idem.On("Release", mock.Anything, "payment_webhook:evt_1").Return(nil).Once()
		f.orders.On("FindByGatewayOrderID", ctx, "cf_order_1").Return(nil, errors.New("connection reset")).Once()
		f.orders.On("FindByGatewayOrderID", ctx, "cf_order_1").Return(o, nil).Once()
		f.orders.On("SaveWithLock", ctx, o).Return(nil)
		f.products.On("FindByID", ctx, f.product.ID).Return(f.product, nil)
		f.products.On("SaveWithLock", ctx, f.product).Return(nil)

		require.Error(t, f.svc.HandleWebhook(ctx, payload, "ts", "sig"))
		assert.False(t, o.IsPaid())

		require.NoError(t, f.svc.HandleWebhook(ctx, payload, "ts", "sig"))
		assert.True(t, o.IsPaid())
		f.idem.AssertNumberOfCalls(t, "Release", 1)
	})

	t.Run("successful apply keeps the claim", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.pendingOrder(t)
		f.gateway.On("VerifyWebhook", payload, "ts", "sig").Return(success(o), nil)
		f.idem.On("MarkProcessed", ctx, "payment_webhook:evt_1", WebhookDedupTTL).Return(true, nil).Once()
		f.orders.On("FindByGatewayOrderID", ctx, "cf_order_1").Return(o, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(nil)
		f.products.On("FindByID", ctx, f.product.ID).Return(f.product, nil)
		f.products.On("SaveWithLock", ctx, f.product).Return(nil)

		require.NoError(t, f.svc.HandleWebhook(ctx, payload, "ts", "sig"))
		f.idem.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	})

	t.Run("idempotency store failure still processes", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.pendingOrder(t)
		f.gateway.On("VerifyWebhook", payload, "ts", "sig").Return(success(o), nil)
		f.idem.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
		f.orders.On("FindByGatewayOrderID", ctx, "cf_order_1").Return(o, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(nil)
		f.products.On("FindByID", ctx, mock.Anything).Return(nil, shared.ErrNotFound)

		require.NoError(t, f.svc.HandleWebhook(ctx, payload, "ts", "sig"))
		assert.True(t, o.IsPaid())
	})
}

func TestOrderService_ReconcilePending(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	paid := f.pendingOrder(t)
	paid.GatewayOrderID = "cf_paid"
	active := f.pendingOrder(t)
	active.GatewayOrderID = "cf_active"
	broken := f.pendingOrder(t)
	broken.GatewayOrderID = "cf_broken"

	f.orders.On("FindAwaitingPayment", ctx, fixedNow.Add(-15*time.Minute), 50).
		Return([]order.Order{*paid, *active, *broken}, nil)
	f.gateway.On("FetchOrder", ctx, "cf_paid").Return(&payment.OrderStatus{Status: payment.GatewayStatusPaid}, nil)
	f.gateway.On("FetchOrder", ctx, "cf_active").Return(&payment.OrderStatus{Status: payment.GatewayStatusActive}, nil)
	f.gateway.On("FetchOrder", ctx, "cf_broken").Return(nil, payment.ErrGatewayUnavailable)
	f.orders.On("SaveWithLock", ctx, mock.Anything).Return(nil)
	f.products.On("FindByID", ctx, f.product.ID).Return(f.product, nil)
	f.products.On("SaveWithLock", ctx, f.product).Return(nil)

	result, err := f.svc.ReconcilePending(ctx, 15*time.Minute, 50)
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Checked: 3, Confirmed: 1, Failed: 1}, result)
}
