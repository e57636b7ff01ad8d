package checkout

import (
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
)

// Event drives a transition. The set is closed.
type Event interface {
	eventName() string
}

type (
	// Begin starts a checkout from Idle
	Begin struct {
		Mode     Mode
		Items    []valueobject.LineItem
		ReturnTo string
	}

	// EditForm updates the address while collecting it
	EditForm struct {
		Form valueobject.Address
	}

	// RequestRates starts a serviceability check; postcode and state must be present
	RequestRates struct {
		Form valueobject.Address
	}

	// RatesReceived carries the serviceability answer in provider order
	RatesReceived struct {
		Options []shipping.Option
	}

	// RatesFailed reports a failed serviceability call
	RatesFailed struct {
		Err error
	}

	// SelectShipping re-picks among the returned options
	SelectShipping struct {
		CourierID int
	}

	// Submit validates the final form before order creation
	Submit struct {
		Form valueobject.Address
	}

	// OrderPlaced carries the created order
	OrderPlaced struct {
		Order PlacedOrder
	}

	// OrderFailed reports a failed order creation
	OrderFailed struct {
		Err error
	}

	// PaymentOpened marks the hosted checkout as open
	PaymentOpened struct{}

	// PaymentSettled carries the hosted checkout result
	PaymentSettled struct {
		Outcome Outcome
		Message string
	}

	// PaymentVerified means the backend confirmed the payment
	PaymentVerified struct{}

	// PaymentRejected means the backend could not confirm the payment
	PaymentRejected struct {
		Status  string
		Message string
	}

	// Expire is fired by the Buy-Now countdown
	Expire struct{}
)

func (Begin) eventName() string           { return "Begin" }
func (EditForm) eventName() string        { return "EditForm" }
func (RequestRates) eventName() string    { return "RequestRates" }
func (RatesReceived) eventName() string   { return "RatesReceived" }
func (RatesFailed) eventName() string     { return "RatesFailed" }
func (SelectShipping) eventName() string  { return "SelectShipping" }
func (Submit) eventName() string          { return "Submit" }
func (OrderPlaced) eventName() string     { return "OrderPlaced" }
func (OrderFailed) eventName() string     { return "OrderFailed" }
func (PaymentOpened) eventName() string   { return "PaymentOpened" }
func (PaymentSettled) eventName() string  { return "PaymentSettled" }
func (PaymentVerified) eventName() string { return "PaymentVerified" }
func (PaymentRejected) eventName() string { return "PaymentRejected" }
func (Expire) eventName() string          { return "Expire" }
