package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByGatewayOrderID finds the order a payment gateway order belongs to
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Order, error)

	// FindByCustomer lists a customer's orders, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindAll lists orders for the admin console.
	// Supported filters: "status", "customer_id"; Search matches order number,
	// customer name and email.
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindAwaitingPayment returns PENDING orders with a payment session created before the cutoff
	FindAwaitingPayment(ctx context.Context, createdBefore time.Time, limit int) ([]Order, error)

	// CountByStatus groups order counts by status
	CountByStatus(ctx context.Context) (map[Status]int64, error)

	// SumCompletedRevenue sums totalAmount of orders with payment COMPLETED
	SumCompletedRevenue(ctx context.Context) (decimal.Decimal, error)

	// Save creates or updates an order with its items
	Save(ctx context.Context, order *Order) error

	// SaveWithLock saves with optimistic locking on Version
	SaveWithLock(ctx context.Context, order *Order) error
}
