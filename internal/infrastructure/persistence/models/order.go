package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
)

// OrderModel maps the orders table. CustomerName and CustomerEmail are
// copied from the shipping address so the admin search needs no json
// operators.
type OrderModel struct {
	AggregateModel
	OrderNumber       string                    `gorm:"type:varchar(30);not null;uniqueIndex"`
	CustomerID        *uuid.UUID                `gorm:"type:uuid;index"`
	CustomerName      string                    `gorm:"type:varchar(200);not null;default:''"`
	CustomerEmail     string                    `gorm:"type:varchar(200);not null;default:''"`
	Subtotal          decimal.Decimal           `gorm:"type:numeric(12,2);not null"`
	ShippingAmount    decimal.Decimal           `gorm:"type:numeric(12,2);not null"`
	TaxAmount         decimal.Decimal           `gorm:"type:numeric(12,2);not null"`
	TotalAmount       decimal.Decimal           `gorm:"type:numeric(12,2);not null"`
	ShippingInfo      JSON[shipping.Option]     `gorm:"type:jsonb;not null"`
	Address           JSON[valueobject.Address] `gorm:"type:jsonb;not null"`
	BillingAddress    JSON[valueobject.Address] `gorm:"type:jsonb;not null"`
	Status            order.Status              `gorm:"type:varchar(30);not null;index"`
	PaymentStatus     order.PaymentStatus       `gorm:"type:varchar(20);not null"`
	PaymentSessionID  string                    `gorm:"type:varchar(200);not null;default:''"`
	GatewayOrderID    string                    `gorm:"type:varchar(100);not null;default:'';index"`
	PaidAt            *time.Time
	CancelReason      string `gorm:"type:text;not null;default:''"`
	CancelledAt       *time.Time
	AWB               string `gorm:"column:awb;type:varchar(60);not null;default:''"`
	PickupScheduledAt *time.Time
	StatusHistory     JSON[[]order.StatusChange] `gorm:"type:jsonb;not null"`
	Items             []OrderItemModel           `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel maps one order line
type OrderItemModel struct {
	OrderID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position int       `gorm:"primaryKey;autoIncrement:false"`
	LineItemColumns
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the row and its lines to an Order
func (m *OrderModel) ToDomain() *order.Order {
	items := make([]valueobject.LineItem, len(m.Items))
	for i, it := range m.Items {
		items[i] = it.toLineItem()
	}
	return &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		CustomerID:        m.CustomerID,
		Items:             items,
		Subtotal:          m.Subtotal,
		ShippingAmount:    m.ShippingAmount,
		TaxAmount:         m.TaxAmount,
		TotalAmount:       m.TotalAmount,
		ShippingInfo:      m.ShippingInfo.V,
		Address:           m.Address.V,
		BillingAddress:    m.BillingAddress.V,
		Status:            m.Status,
		PaymentStatus:     m.PaymentStatus,
		PaymentSessionID:  m.PaymentSessionID,
		GatewayOrderID:    m.GatewayOrderID,
		PaidAt:            m.PaidAt,
		CancelReason:      m.CancelReason,
		CancelledAt:       m.CancelledAt,
		AWB:               m.AWB,
		PickupScheduledAt: m.PickupScheduledAt,
		StatusHistory:     nonNil(m.StatusHistory.V),
	}
}

// OrderModelFromDomain builds the row and lines for an Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		OrderNumber:       o.OrderNumber,
		CustomerID:        o.CustomerID,
		CustomerName:      o.Address.FullName(),
		CustomerEmail:     o.Address.Email,
		Subtotal:          o.Subtotal,
		ShippingAmount:    o.ShippingAmount,
		TaxAmount:         o.TaxAmount,
		TotalAmount:       o.TotalAmount,
		ShippingInfo:      NewJSON(o.ShippingInfo),
		Address:           NewJSON(o.Address),
		BillingAddress:    NewJSON(o.BillingAddress),
		Status:            o.Status,
		PaymentStatus:     o.PaymentStatus,
		PaymentSessionID:  o.PaymentSessionID,
		GatewayOrderID:    o.GatewayOrderID,
		PaidAt:            o.PaidAt,
		CancelReason:      o.CancelReason,
		CancelledAt:       o.CancelledAt,
		AWB:               o.AWB,
		PickupScheduledAt: o.PickupScheduledAt,
		StatusHistory:     NewJSON(nonNil(o.StatusHistory)),
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, it := range o.Items {
		m.Items[i] = OrderItemModel{OrderID: o.ID, Position: i, LineItemColumns: lineColumns(it)}
	}
	return m
}
