package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EventHandler turns order lifecycle and signup events into in-app notifications
// for the customer. Guest orders have no recipient and are skipped.
type EventHandler struct {
	repo   notification.Repository
	logger *zap.Logger
}

// NewEventHandler creates the handler
func NewEventHandler(repo notification.Repository, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{repo: repo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *EventHandler) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderPaid,
		order.EventTypeOrderStatusChanged,
		order.EventTypeOrderCancelled,
		identity.EventTypeUserRegistered,
	}
}

// Handle creates one notification per event
func (h *EventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		recipient *uuid.UUID
		orderID   *uuid.UUID
		kind      notification.Kind
		title     string
		message   string
	)

	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		recipient, orderID = e.CustomerID, &e.OrderID
		kind = notification.KindOrderPlaced
		title = "Order placed"
		message = fmt.Sprintf("Order %s for ₹%s is awaiting payment.", e.OrderNumber, e.TotalAmount.StringFixed(2))
	case *order.OrderPaidEvent:
		recipient, orderID = e.CustomerID, &e.OrderID
		kind = notification.KindOrderPaid
		title = "Payment received"
		message = fmt.Sprintf("We received ₹%s for order %s. It is now being processed.", e.TotalAmount.StringFixed(2), e.OrderNumber)
	case *order.OrderStatusChangedEvent:
		recipient, orderID = e.CustomerID, &e.OrderID
		kind = notification.KindOrderStatus
		title = "Order " + e.Status.String()
		message = fmt.Sprintf("Order %s is now %s.", e.OrderNumber, e.Status)
		if e.AWB != "" {
			message += " Tracking number: " + e.AWB + "."
		}
	case *order.OrderCancelledEvent:
		recipient, orderID = e.CustomerID, &e.OrderID
		kind = notification.KindOrderCanceled
		title = "Order canceled"
		message = fmt.Sprintf("Order %s was canceled.", e.OrderNumber)
		if e.WasPaid {
			message += " Your refund will be processed to the original payment method."
		}
	case *identity.UserRegisteredEvent:
		recipient = &e.UserID
		kind = notification.KindAccount
		title = "Welcome"
		message = fmt.Sprintf("Hi %s, your account is ready.", e.Name)
	default:
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	if recipient == nil {
		h.logger.Debug("no recipient for event", zap.String("event_type", event.EventType()))
		return nil
	}

	n, err := notification.New(*recipient, kind, title, message, orderID)
	if err != nil {
		return err
	}
	if err := h.repo.Create(ctx, n); err != nil {
		h.logger.Error("failed to create notification",
			zap.String("event_type", event.EventType()),
			zap.String("user_id", recipient.String()),
			zap.Error(err))
		return err
	}
	return nil
}
