package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
	"go.uber.org/zap"
)

// DefaultSessionTTL bounds how long a hosted checkout stays payable
const DefaultSessionTTL = 30 * time.Minute

// Caller is the authenticated user behind a request. A nil *Caller is a guest.
type Caller struct {
	UserID  uuid.UUID
	IsAdmin bool
}

func (c *Caller) customerID() *uuid.UUID {
	if c == nil {
		return nil
	}
	id := c.UserID
	return &id
}

// ItemPricer re-reads line items from the catalog and checks stock
type ItemPricer interface {
	PriceItems(ctx context.Context, items []valueobject.LineItem) ([]valueobject.LineItem, error)
}

// RateQuoter re-quotes shipping for a parcel
type RateQuoter interface {
	QuoteItems(ctx context.Context, deliveryPostcode string, items []valueobject.LineItem) ([]shipping.Option, error)
}

// Counter counts rows for the dashboard
type Counter interface {
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// Config holds the gateway redirect settings
type Config struct {
	// ReturnURL may contain {order_id}; the gateway sends the shopper back there
	ReturnURL  string
	NotifyURL  string
	SessionTTL time.Duration
	Currency   string
}

// OrderService handles the order lifecycle from checkout to delivery
type OrderService struct {
	orderRepo   order.OrderRepository
	productRepo catalog.ProductRepository
	pricer      ItemPricer
	gateway     payment.Gateway
	publisher   shared.EventPublisher
	idempotency shared.IdempotencyStore
	quoter      RateQuoter
	users       Counter
	config      Config
	logger      *zap.Logger
	now         func() time.Time
}

// OrderServiceOption configures an OrderService
type OrderServiceOption func(*OrderService)

// WithEventPublisher publishes order events after each write
func WithEventPublisher(p shared.EventPublisher) OrderServiceOption {
	return func(s *OrderService) { s.publisher = p }
}

// WithIdempotencyStore dedupes webhook deliveries
func WithIdempotencyStore(store shared.IdempotencyStore) OrderServiceOption {
	return func(s *OrderService) { s.idempotency = store }
}

// WithRateQuoter makes CreateOrder check the shipping rate with the courier
func WithRateQuoter(q RateQuoter) OrderServiceOption {
	return func(s *OrderService) { s.quoter = q }
}

// WithUserCounter adds the user count to the dashboard
func WithUserCounter(c Counter) OrderServiceOption {
	return func(s *OrderService) { s.users = c }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) OrderServiceOption {
	return func(s *OrderService) { s.logger = logger }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) OrderServiceOption {
	return func(s *OrderService) { s.now = now }
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo order.OrderRepository,
	productRepo catalog.ProductRepository,
	pricer ItemPricer,
	gateway payment.Gateway,
	config Config,
	opts ...OrderServiceOption,
) *OrderService {
	if config.SessionTTL <= 0 {
		config.SessionTTL = DefaultSessionTTL
	}
	if config.Currency == "" {
		config.Currency = string(valueobject.DefaultCurrency)
	}
	s := &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		pricer:      pricer,
		gateway:     gateway,
		config:      config,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder validates and prices the request, persists a Pending order and
// opens a hosted payment session for it.
func (s *OrderService) CreateOrder(ctx context.Context, caller *Caller, req CreateOrderRequest) (*CreateOrderResponse, error) {
	address := req.Address.Normalize()
	if missing := address.MissingFields(); len(missing) > 0 {
		return nil, shared.NewValidationError("", missing...)
	}
	billing := address
	if req.BillingAddress != nil && !req.BillingAddress.IsEmpty() {
		billing = req.BillingAddress.Normalize()
	}
	option := req.ShippingInfo.option()
	if option.IsZero() {
		return nil, shared.NewValidationError("A shipping option must be selected", checkout.FieldShippingOption)
	}

	items, err := s.pricer.PriceItems(ctx, req.lineItems())
	if err != nil {
		return nil, err
	}
	if s.quoter != nil {
		if err := s.verifyRate(ctx, address.ZipCode, items, option); err != nil {
			return nil, err
		}
	}

	totals := checkout.ComputeTotals(items, option)
	if !valueobject.WithinTolerance(req.TotalAmount, totals.Total, checkout.TotalTolerance) {
		s.logger.Warn("order total mismatch",
			zap.String("client_total", req.TotalAmount.String()),
			zap.String("server_total", totals.Total.String()))
		return nil, shared.NewValidationError(
			fmt.Sprintf("Order total %s does not match the expected %s", req.TotalAmount.StringFixed(2), totals.Total.StringFixed(2)),
			"totalAmount")
	}

	o, err := order.NewOrder(caller.customerID(), items, order.Amounts{
		Subtotal: totals.Subtotal,
		Shipping: totals.Shipping,
		Tax:      totals.Tax,
		Total:    totals.Total,
	}, option, address, billing)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	customerRef := "guest_" + o.ID.String()[:8]
	if caller != nil {
		customerRef = caller.UserID.String()
	}
	session, err := s.gateway.CreateSession(ctx, &payment.CreateSessionRequest{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Amount:      o.TotalAmount,
		Currency:    s.config.Currency,
		Customer: payment.Customer{
			ID:    customerRef,
			Name:  address.FullName(),
			Email: address.Email,
			Phone: address.Phone,
		},
		ReturnURL: strings.ReplaceAll(s.config.ReturnURL, "{order_id}", o.ID.String()),
		NotifyURL: s.config.NotifyURL,
		ExpiresAt: s.now().Add(s.config.SessionTTL),
	})
	if err != nil {
		s.logger.Error("payment session creation failed",
			zap.String("order_id", o.ID.String()),
			zap.String("order_number", o.OrderNumber),
			zap.Error(err))
		return nil, err
	}

	if err := o.AttachPaymentSession(session.PaymentSessionID, session.GatewayOrderID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o)

	s.logger.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.TotalAmount.String()),
		zap.Int("items", o.ItemCount()))

	return &CreateOrderResponse{
		Order:            ToOrderResponse(o, s.now()),
		PaymentSessionID: session.PaymentSessionID,
	}, nil
}

// ConfirmOrder verifies payment after the hosted checkout reported success
func (s *OrderService) ConfirmOrder(ctx context.Context, caller *Caller, orderID uuid.UUID) (*OrderResponse, error) {
	return s.confirm(ctx, caller, orderID)
}

// ConfirmPayment verifies payment when the shopper returns through the redirect
func (s *OrderService) ConfirmPayment(ctx context.Context, caller *Caller, orderID uuid.UUID) (*OrderResponse, error) {
	return s.confirm(ctx, caller, orderID)
}

func (s *OrderService) confirm(ctx context.Context, caller *Caller, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.loadForCaller(ctx, caller, orderID)
	if err != nil {
		return nil, err
	}
	if o.IsPaid() {
		resp := ToOrderResponse(o, s.now())
		return &resp, nil
	}
	if o.GatewayOrderID == "" {
		return nil, shared.NewDomainError(shared.CodePayment, "Order has no payment session")
	}

	status, err := s.gateway.FetchOrder(ctx, o.GatewayOrderID)
	if err != nil {
		return nil, err
	}
	if !status.Status.IsSuccess() {
		return nil, shared.NewDomainError(shared.CodePayment,
			fmt.Sprintf("Payment not completed (status %s)", status.Status))
	}

	paidAt := s.now()
	if status.PaidAt != nil {
		paidAt = *status.PaidAt
	}
	o, err = s.markPaid(ctx, o, paidAt)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o, s.now())
	return &resp, nil
}

// markPaid confirms payment, deducts stock and publishes OrderPaid.
// A concurrent confirmation that already won is not an error.
func (s *OrderService) markPaid(ctx context.Context, o *order.Order, paidAt time.Time) (*order.Order, error) {
	changed, err := o.ConfirmPayment(paidAt)
	if err != nil {
		return nil, err
	}
	if !changed {
		return o, nil
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			fresh, findErr := s.orderRepo.FindByID(ctx, o.ID)
			if findErr == nil && fresh.IsPaid() {
				return fresh, nil
			}
		}
		return nil, err
	}

	s.adjustStock(ctx, o, -1)
	s.publish(ctx, o)

	s.logger.Info("order paid",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("gateway_order_id", o.GatewayOrderID))
	return o, nil
}

// GetOrders lists the caller's orders, newest first
func (s *OrderService) GetOrders(ctx context.Context, caller *Caller, f OrderListFilter) (*OrderListResult, error) {
	if caller == nil {
		return nil, shared.ErrUnauthorized
	}
	filter := toDomainFilter(f)
	orders, err := s.orderRepo.FindByCustomer(ctx, caller.UserID, filter)
	if err != nil {
		return nil, err
	}
	filter.Filters["customer_id"] = caller.UserID
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{
		Items:    toOrderResponses(orders, s.now()),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// GetOrder returns one order to its owner or an admin
func (s *OrderService) GetOrder(ctx context.Context, caller *Caller, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.loadForCaller(ctx, caller, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o, s.now())
	return &resp, nil
}

// GetOrderEntity returns the domain order for rendering (invoice)
func (s *OrderService) GetOrderEntity(ctx context.Context, caller *Caller, orderID uuid.UUID) (*order.Order, error) {
	return s.loadForCaller(ctx, caller, orderID)
}

// CancelOrder cancels an order on behalf of its customer
func (s *OrderService) CancelOrder(ctx context.Context, caller *Caller, orderID uuid.UUID, reason string) (*OrderResponse, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewValidationError("Cancellation reason is required", "reason")
	}
	o, err := s.loadForCaller(ctx, caller, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Cancel(reason, s.now()); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	if o.IsPaid() {
		s.adjustStock(ctx, o, 1)
	}
	s.publish(ctx, o)

	s.logger.Info("order cancelled",
		zap.String("order_id", o.ID.String()),
		zap.String("reason", o.CancelReason))

	resp := ToOrderResponse(o, s.now())
	return &resp, nil
}

// AdminList lists all orders with status and search filters
func (s *OrderService) AdminList(ctx context.Context, f OrderListFilter) (*OrderListResult, error) {
	filter := toDomainFilter(f)
	if f.Status != "" {
		status := order.Status(f.Status)
		if !status.IsValid() {
			return nil, shared.NewValidationError(fmt.Sprintf("Unknown order status %q", f.Status), "status")
		}
		filter.Filters["status"] = status.String()
	}
	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{
		Items:    toOrderResponses(orders, s.now()),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// AdminUpdateStatus moves an order to any status and records tracking data
func (s *OrderService) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	wasCanceled := o.Status == order.StatusCanceled

	now := s.now()
	o.AssignAWB(req.AWB)
	if req.PickupScheduledAt != nil {
		o.SchedulePickup(*req.PickupScheduledAt)
	}
	if err := o.SetStatus(order.Status(req.Status), req.Note, now); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	if !wasCanceled && o.Status == order.StatusCanceled && o.IsPaid() {
		s.adjustStock(ctx, o, 1)
	}
	s.publish(ctx, o)

	s.logger.Info("order status updated",
		zap.String("order_id", o.ID.String()),
		zap.String("status", o.Status.String()))

	resp := ToOrderResponse(o, now)
	return &resp, nil
}

// Dashboard summarizes orders, revenue, products and users
func (s *OrderService) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orderRepo.SumCompletedRevenue(ctx)
	if err != nil {
		return nil, err
	}
	resp := &DashboardResponse{
		OrdersByStatus: make(map[string]int64, len(order.AllStatuses())),
		Revenue:        valueobject.RoundMoney(revenue),
	}
	for _, st := range order.AllStatuses() {
		resp.OrdersByStatus[st.String()] = counts[st]
		resp.TotalOrders += counts[st]
	}
	if s.productRepo != nil {
		if resp.ProductCount, err = s.productRepo.Count(ctx, shared.DefaultFilter()); err != nil {
			return nil, err
		}
	}
	if s.users != nil {
		if resp.UserCount, err = s.users.Count(ctx, shared.DefaultFilter()); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (s *OrderService) loadForCaller(ctx context.Context, caller *Caller, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID == nil {
		return o, nil
	}
	if caller == nil {
		return nil, shared.ErrUnauthorized
	}
	if !caller.IsAdmin && !o.IsOwnedBy(caller.UserID) {
		// do not reveal other customers' orders
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (s *OrderService) verifyRate(ctx context.Context, postcode string, items []valueobject.LineItem, picked shipping.Option) error {
	options, err := s.quoter.QuoteItems(ctx, postcode, items)
	if err != nil {
		return err
	}
	if len(options) == 0 {
		return shared.ErrNoServiceableCourier
	}
	quoted, ok := shipping.FindByCourier(options, picked.CourierID)
	if !ok || !valueobject.WithinTolerance(quoted.Rate, picked.Rate, checkout.TotalTolerance) {
		return shared.NewValidationError("Shipping rate has changed, please re-check delivery options", checkout.FieldShippingOption)
	}
	return nil
}

// adjustStock moves stock for every line: sign -1 deducts, +1 restocks.
// Failures are logged; payment has already been taken at this point.
func (s *OrderService) adjustStock(ctx context.Context, o *order.Order, sign int) {
	if s.productRepo == nil {
		return
	}
	for _, item := range o.Items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err == nil {
			if err = product.AdjustStock(item.Color, item.Size, sign*item.Quantity); err == nil {
				err = s.productRepo.SaveWithLock(ctx, product)
			}
		}
		if err != nil {
			s.logger.Error("stock adjustment failed",
				zap.String("order_id", o.ID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Int("delta", sign*item.Quantity),
				zap.Error(err))
		}
	}
}

func (s *OrderService) publish(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	if s.publisher != nil && len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish order events",
				zap.String("order_id", o.ID.String()),
				zap.Error(err))
		}
	}
	o.ClearDomainEvents()
}

func toDomainFilter(f OrderListFilter) shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter.Search = strings.TrimSpace(f.Search)
	return filter
}
