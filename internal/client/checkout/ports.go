package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	orderapp "github.com/storefront/backend/internal/application/order"
	shippingapp "github.com/storefront/backend/internal/application/shipping"
	checkoutdomain "github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
)

// Clock supplies time and the countdown ticker
type Clock interface {
	Now() time.Time
	// Tick returns a channel firing every d and a func that stops it
	Tick(d time.Duration) (<-chan time.Time, func())
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Tick(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Confirmation is the snapshot shown after a verified payment
type Confirmation struct {
	OrderID     uuid.UUID
	OrderNumber string
	Address     valueobject.Address
	Items       []valueobject.LineItem
	Shipping    shipping.Option
	Totals      checkoutdomain.Totals
}

// Failure is shown after a failed payment
type Failure struct {
	OrderID uuid.UUID
	Status  string
	Message string
}

// Navigator moves the shopper to another view
type Navigator interface {
	ProductPage(returnTo string)
	Confirmation(c Confirmation)
	Failure(f Failure)
}

// PaymentRequest opens the hosted checkout for a created order
type PaymentRequest struct {
	OrderID          uuid.UUID
	OrderNumber      string
	PaymentSessionID string
	Amount           decimal.Decimal
}

// PaymentResult is what the hosted checkout reported
type PaymentResult struct {
	Outcome checkoutdomain.Outcome
	Message string
}

// PaymentCheckout opens the gateway's hosted checkout and blocks until it settles
type PaymentCheckout interface {
	Open(ctx context.Context, req PaymentRequest) (PaymentResult, error)
}

// API is the part of the backend checkout talks to
type API interface {
	CheckServiceability(ctx context.Context, req shippingapp.ServiceabilityRequest) (*shippingapp.ServiceabilityResponse, error)
	CreateOrder(ctx context.Context, req orderapp.CreateOrderRequest) (*orderapp.CreateOrderResponse, error)
	ConfirmOrder(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error)
	ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error)
}

// CartClearer empties the cart after a paid cart checkout
type CartClearer interface {
	Clear(ctx context.Context) error
}
