package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderPaid          = "OrderPaid"
	EventTypeOrderCancelled     = "OrderCancelled"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
)

// orderEventBase carries the fields every order event exposes
type orderEventBase struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID  `json:"order_id"`
	OrderNumber string     `json:"order_number"`
	CustomerID  *uuid.UUID `json:"customer_id,omitempty"`
	Status      Status     `json:"status"`
}

// RecipientID returns the customer to notify
func (e *orderEventBase) RecipientID() *uuid.UUID {
	return e.CustomerID
}

func newOrderEventBase(eventType string, o *Order) orderEventBase {
	return orderEventBase{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Status:          o.Status,
	}
}

// OrderPlacedEvent is raised when a pending order is created
type OrderPlacedEvent struct {
	orderEventBase
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		orderEventBase: newOrderEventBase(EventTypeOrderPlaced, o),
		TotalAmount:    o.TotalAmount,
		ItemCount:      o.ItemCount(),
	}
}

// OrderPaidEvent is raised when payment moves to COMPLETED
type OrderPaidEvent struct {
	orderEventBase
	TotalAmount    decimal.Decimal `json:"total_amount"`
	GatewayOrderID string          `json:"gateway_order_id"`
}

// NewOrderPaidEvent creates a new OrderPaidEvent
func NewOrderPaidEvent(o *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		orderEventBase: newOrderEventBase(EventTypeOrderPaid, o),
		TotalAmount:    o.TotalAmount,
		GatewayOrderID: o.GatewayOrderID,
	}
}

// OrderCancelledEvent is raised when the customer cancels
type OrderCancelledEvent struct {
	orderEventBase
	PreviousStatus Status `json:"previous_status"`
	Reason         string `json:"reason"`
	WasPaid        bool   `json:"was_paid"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order, previous Status) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		orderEventBase: newOrderEventBase(EventTypeOrderCancelled, o),
		PreviousStatus: previous,
		Reason:         o.CancelReason,
		WasPaid:        o.IsPaid(),
	}
}

// OrderStatusChangedEvent is raised on an admin status update
type OrderStatusChangedEvent struct {
	orderEventBase
	PreviousStatus Status `json:"previous_status"`
	AWB            string `json:"awb,omitempty"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, previous Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		orderEventBase: newOrderEventBase(EventTypeOrderStatusChanged, o),
		PreviousStatus: previous,
		AWB:            o.AWB,
	}
}
