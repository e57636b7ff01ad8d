package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Payment Gateway Errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidOrderID     = errors.New("payment: invalid order ID")
	ErrInvalidOrderNumber = errors.New("payment: invalid order number")
	ErrInvalidAmount      = errors.New("payment: invalid payment amount")
	ErrInvalidCustomer    = errors.New("payment: customer phone and email are required")

	ErrGatewayNotConfigured   = errors.New("payment: gateway not configured")
	ErrGatewayUnavailable     = errors.New("payment: gateway temporarily unavailable")
	ErrGatewayRequestFailed   = errors.New("payment: gateway request failed")
	ErrGatewayInvalidResponse = errors.New("payment: invalid gateway response")
	ErrGatewayInvalidCallback = errors.New("payment: invalid callback signature")
)

// GatewayStatus is the payment state reported by the gateway
type GatewayStatus string

const (
	GatewayStatusActive     GatewayStatus = "ACTIVE"
	GatewayStatusPaid       GatewayStatus = "PAID"
	GatewayStatusExpired    GatewayStatus = "EXPIRED"
	GatewayStatusTerminated GatewayStatus = "TERMINATED"
	GatewayStatusFailed     GatewayStatus = "FAILED"
)

// IsSuccess returns true if the payment was captured
func (s GatewayStatus) IsSuccess() bool {
	return s == GatewayStatusPaid
}

// IsFinal returns true if the gateway will not change the status again
func (s GatewayStatus) IsFinal() bool {
	switch s {
	case GatewayStatusPaid, GatewayStatusExpired, GatewayStatusTerminated, GatewayStatusFailed:
		return true
	}
	return false
}

// Customer is the payer details the hosted checkout needs
type Customer struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// CreateSessionRequest asks the gateway for a hosted checkout session
type CreateSessionRequest struct {
	OrderID     uuid.UUID
	OrderNumber string
	Amount      decimal.Decimal
	Currency    string
	Customer    Customer
	ReturnURL   string
	NotifyURL   string
	ExpiresAt   time.Time
}

// Validate validates the create session request
func (r *CreateSessionRequest) Validate() error {
	if r.OrderID == uuid.Nil {
		return ErrInvalidOrderID
	}
	if r.OrderNumber == "" {
		return ErrInvalidOrderNumber
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if r.Customer.Phone == "" || r.Customer.Email == "" {
		return ErrInvalidCustomer
	}
	return nil
}

// Session is a created hosted checkout
type Session struct {
	GatewayOrderID   string
	PaymentSessionID string
	Status           GatewayStatus
	ExpiresAt        *time.Time
}

// OrderStatus is the gateway view of one order
type OrderStatus struct {
	GatewayOrderID string
	Status         GatewayStatus
	Amount         decimal.Decimal
	PaidAt         *time.Time
}

// Notification is a verified webhook delivery
type Notification struct {
	EventID        string
	Type           string
	GatewayOrderID string
	PaymentStatus  string
	Amount         decimal.Decimal
	ReceivedAt     time.Time
}

// IsPaymentSuccess reports a captured-payment notification
func (n *Notification) IsPaymentSuccess() bool {
	return n.Type == "PAYMENT_SUCCESS_WEBHOOK" && n.PaymentStatus == "SUCCESS"
}

// Gateway is a hosted-checkout payment provider
type Gateway interface {
	// CreateSession creates a gateway order and returns its payment session id
	CreateSession(ctx context.Context, req *CreateSessionRequest) (*Session, error)

	// FetchOrder returns the gateway status of an order
	FetchOrder(ctx context.Context, gatewayOrderID string) (*OrderStatus, error)

	// VerifyWebhook checks the signature and parses a webhook body
	VerifyWebhook(payload []byte, timestamp, signature string) (*Notification, error)
}
