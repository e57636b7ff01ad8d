package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
)

// OrderItemInput is one product line of a create-order request.
// Price and name are re-read from the catalog.
type OrderItemInput struct {
	ProductID uuid.UUID       `json:"productId" binding:"required"`
	Name      string          `json:"name"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity" binding:"required,min=1,max=100"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// ShippingInfoInput is the courier the customer picked
type ShippingInfoInput struct {
	CourierID             int             `json:"courierId" binding:"required"`
	CourierName           string          `json:"courierName" binding:"required"`
	Rate                  decimal.Decimal `json:"rate"`
	EstimatedDeliveryDays int             `json:"estimatedDeliveryDays"`
}

// CreateOrderRequest places an order and opens a payment session
type CreateOrderRequest struct {
	Products       []OrderItemInput     `json:"products" binding:"required,min=1,dive"`
	TotalAmount    decimal.Decimal      `json:"totalAmount" binding:"required"`
	Address        valueobject.Address  `json:"address"`
	BillingAddress *valueobject.Address `json:"billingAddress"`
	ShippingInfo   ShippingInfoInput    `json:"shippingInfo"`
}

// CreateOrderResponse carries the Pending order and its hosted checkout session
type CreateOrderResponse struct {
	Order            OrderResponse `json:"order"`
	PaymentSessionID string        `json:"paymentSessionId"`
}

// ConfirmRequest names the order whose payment should be verified
type ConfirmRequest struct {
	OrderID uuid.UUID `json:"orderId" binding:"required"`
}

// CancelOrderRequest cancels an order with a reason
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// UpdateStatusRequest is the admin status change
type UpdateStatusRequest struct {
	Status            string     `json:"status" binding:"required"`
	Note              string     `json:"note" binding:"max=500"`
	AWB               string     `json:"awb" binding:"max=64"`
	PickupScheduledAt *time.Time `json:"pickupScheduledAt"`
}

// OrderListFilter is the query of order listings
type OrderListFilter struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// StatusChangeResponse is one timeline entry
type StatusChangeResponse struct {
	Status string    `json:"status"`
	Note   string    `json:"note,omitempty"`
	At     time.Time `json:"at"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                uuid.UUID              `json:"id"`
	OrderNumber       string                 `json:"orderNumber"`
	CustomerID        *uuid.UUID             `json:"customerId"`
	Items             []valueobject.LineItem `json:"items"`
	Subtotal          decimal.Decimal        `json:"subtotal"`
	ShippingAmount    decimal.Decimal        `json:"shippingAmount"`
	TaxAmount         decimal.Decimal        `json:"taxAmount"`
	TotalAmount       decimal.Decimal        `json:"totalAmount"`
	ShippingInfo      shipping.Option        `json:"shippingInfo"`
	Address           valueobject.Address    `json:"address"`
	BillingAddress    valueobject.Address    `json:"billingAddress"`
	Status            string                 `json:"status"`
	PaymentStatus     string                 `json:"paymentStatus"`
	PaymentSessionID  string                 `json:"paymentSessionId,omitempty"`
	PaidAt            *time.Time             `json:"paidAt,omitempty"`
	CancelReason      string                 `json:"cancelReason,omitempty"`
	CancelledAt       *time.Time             `json:"cancelledAt,omitempty"`
	AWB               string                 `json:"awb,omitempty"`
	PickupScheduledAt *time.Time             `json:"pickupScheduledAt,omitempty"`
	CanCancel         bool                   `json:"canCancel"`
	StatusHistory     []StatusChangeResponse `json:"statusHistory"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
	Version           int                    `json:"version"`
}

// OrderListResult is a page of orders
type OrderListResult struct {
	Items    []OrderResponse `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

// DashboardResponse is the admin overview
type DashboardResponse struct {
	OrdersByStatus map[string]int64 `json:"ordersByStatus"`
	TotalOrders    int64            `json:"totalOrders"`
	Revenue        decimal.Decimal  `json:"revenue"`
	ProductCount   int64            `json:"productCount"`
	UserCount      int64            `json:"userCount"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *order.Order, now time.Time) OrderResponse {
	history := make([]StatusChangeResponse, len(o.StatusHistory))
	for i, h := range o.StatusHistory {
		history[i] = StatusChangeResponse{Status: h.Status.String(), Note: h.Note, At: h.At}
	}
	return OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		CustomerID:        o.CustomerID,
		Items:             o.Items,
		Subtotal:          o.Subtotal,
		ShippingAmount:    o.ShippingAmount,
		TaxAmount:         o.TaxAmount,
		TotalAmount:       o.TotalAmount,
		ShippingInfo:      o.ShippingInfo,
		Address:           o.Address,
		BillingAddress:    o.BillingAddress,
		Status:            o.Status.String(),
		PaymentStatus:     o.PaymentStatus.String(),
		PaymentSessionID:  o.PaymentSessionID,
		PaidAt:            o.PaidAt,
		CancelReason:      o.CancelReason,
		CancelledAt:       o.CancelledAt,
		AWB:               o.AWB,
		PickupScheduledAt: o.PickupScheduledAt,
		CanCancel:         o.CanCancel(now),
		StatusHistory:     history,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Version:           o.Version,
	}
}

func toOrderResponses(orders []order.Order, now time.Time) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i], now)
	}
	return out
}

func (r CreateOrderRequest) lineItems() []valueobject.LineItem {
	items := make([]valueobject.LineItem, len(r.Products))
	for i, p := range r.Products {
		items[i] = valueobject.LineItem{
			ProductID: p.ProductID,
			Name:      p.Name,
			Color:     p.Color,
			Size:      p.Size,
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice,
		}
	}
	return items
}

func (s ShippingInfoInput) option() shipping.Option {
	return shipping.Option{
		CourierID:             s.CourierID,
		CourierName:           s.CourierName,
		Rate:                  s.Rate,
		EstimatedDeliveryDays: s.EstimatedDeliveryDays,
	}
}
