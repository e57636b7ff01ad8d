package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
)

// StatusChange is one entry of the order timeline
type StatusChange struct {
	Status Status    `json:"status"`
	Note   string    `json:"note,omitempty"`
	At     time.Time `json:"at"`
}

// Order is the aggregate root for a placed order
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber       string
	CustomerID        *uuid.UUID
	Items             []valueobject.LineItem
	Subtotal          decimal.Decimal
	ShippingAmount    decimal.Decimal
	TaxAmount         decimal.Decimal
	TotalAmount       decimal.Decimal
	ShippingInfo      shipping.Option
	Address           valueobject.Address
	BillingAddress    valueobject.Address
	Status            Status
	PaymentStatus     PaymentStatus
	PaymentSessionID  string
	GatewayOrderID    string
	PaidAt            *time.Time
	CancelReason      string
	CancelledAt       *time.Time
	AWB               string
	PickupScheduledAt *time.Time
	StatusHistory     []StatusChange
}

// Amounts are the priced totals of an order
type Amounts struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// NewOrder creates a Pending, unpaid order
func NewOrder(customerID *uuid.UUID, items []valueobject.LineItem, amounts Amounts, shippingInfo shipping.Option, address, billing valueobject.Address) (*Order, error) {
	if len(items) == 0 {
		return nil, shared.NewValidationError("Order must contain at least one item", "products")
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, shared.NewValidationError("Item quantity must be at least 1", "products")
		}
	}
	if missing := address.MissingFields(); len(missing) > 0 {
		return nil, shared.NewValidationError("", missing...)
	}
	if shippingInfo.IsZero() {
		return nil, shared.NewValidationError("A shipping option must be selected", "shippingInfo")
	}
	if !amounts.Total.IsPositive() {
		return nil, shared.NewValidationError("Order total must be positive", "totalAmount")
	}
	if billing.IsEmpty() {
		billing = address
	}

	now := time.Now()
	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Items:             append([]valueobject.LineItem(nil), items...),
		Subtotal:          amounts.Subtotal,
		ShippingAmount:    amounts.Shipping,
		TaxAmount:         amounts.Tax,
		TotalAmount:       amounts.Total,
		ShippingInfo:      shippingInfo,
		Address:           address,
		BillingAddress:    billing,
		Status:            StatusPending,
		PaymentStatus:     PaymentStatusPending,
		StatusHistory:     []StatusChange{{Status: StatusPending, Note: "Order placed", At: now}},
	}
	o.OrderNumber = NewOrderNumber(now, o.ID)

	o.AddDomainEvent(NewOrderPlacedEvent(o))

	return o, nil
}

// NewOrderNumber formats a human readable order number
func NewOrderNumber(at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), strings.ToUpper(id.String()[:8]))
}

// AttachPaymentSession records the gateway session created for this order
func (o *Order) AttachPaymentSession(sessionID, gatewayOrderID string) error {
	if o.PaymentStatus != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Order is already paid")
	}
	if strings.TrimSpace(sessionID) == "" {
		return shared.NewValidationError("Payment session id is required", "paymentSessionId")
	}
	o.PaymentSessionID = sessionID
	o.GatewayOrderID = gatewayOrderID
	o.touch()
	return nil
}

// ConfirmPayment moves paymentStatus from PENDING to COMPLETED and starts
// processing. Confirming twice is a no-op that reports false.
func (o *Order) ConfirmPayment(at time.Time) (bool, error) {
	if o.PaymentStatus == PaymentStatusCompleted {
		return false, nil
	}
	if o.Status == StatusCanceled {
		return false, shared.NewDomainError("INVALID_STATE", "Cannot confirm payment of a canceled order")
	}

	o.PaymentStatus = PaymentStatusCompleted
	o.PaidAt = &at
	if o.Status == StatusPending {
		o.appendHistory(StatusProcessing, "Payment received", at)
		o.Status = StatusProcessing
	}
	o.touch()

	o.AddDomainEvent(NewOrderPaidEvent(o))
	return true, nil
}

// CanCancel reports whether the customer may still cancel at now
func (o *Order) CanCancel(now time.Time) bool {
	if !o.Status.IsCancellable() {
		return false
	}
	if o.PickupScheduledAt != nil && !now.Before(*o.PickupScheduledAt) {
		return false
	}
	return true
}

// Cancel cancels the order on behalf of the customer
func (o *Order) Cancel(reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError("Cancellation reason is required", "reason")
	}
	if !o.Status.IsCancellable() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel an order that is %s", o.Status))
	}
	if !o.CanCancel(now) {
		return shared.NewDomainError("INVALID_STATE", "Order has already been picked up by the courier")
	}

	old := o.Status
	o.Status = StatusCanceled
	o.CancelReason = reason
	o.CancelledAt = &now
	o.appendHistory(StatusCanceled, reason, now)
	o.touch()

	o.AddDomainEvent(NewOrderCancelledEvent(o, old))
	return nil
}

// SetStatus is the admin transition. Any status may move to any other.
func (o *Order) SetStatus(status Status, note string, now time.Time) error {
	if !status.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Unknown order status %q", status), "status")
	}
	if status == o.Status {
		return nil
	}

	old := o.Status
	o.Status = status
	if status == StatusCanceled && o.CancelledAt == nil {
		o.CancelledAt = &now
		if o.CancelReason == "" {
			o.CancelReason = note
		}
	}
	o.appendHistory(status, note, now)
	o.touch()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old))
	return nil
}

// AssignAWB records the carrier tracking number
func (o *Order) AssignAWB(awb string) {
	awb = strings.TrimSpace(awb)
	if awb == "" || awb == o.AWB {
		return
	}
	o.AWB = awb
	o.touch()
}

// SchedulePickup records when the carrier collects the parcel
func (o *Order) SchedulePickup(at time.Time) {
	o.PickupScheduledAt = &at
	o.touch()
}

// IsPaid returns true once payment is COMPLETED
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusCompleted
}

// IsOwnedBy reports whether the order belongs to the customer
func (o *Order) IsOwnedBy(customerID uuid.UUID) bool {
	return o.CustomerID != nil && *o.CustomerID == customerID
}

// ItemCount returns the number of units ordered
func (o *Order) ItemCount() int {
	return valueobject.TotalQuantity(o.Items)
}

func (o *Order) appendHistory(status Status, note string, at time.Time) {
	o.StatusHistory = append(o.StatusHistory, StatusChange{Status: status, Note: note, At: at})
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}
