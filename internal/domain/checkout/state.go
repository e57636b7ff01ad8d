package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
)

// BuyNowTimeout is how long a Buy-Now session may stay open before an order exists
const BuyNowTimeout = 600 * time.Second

// Mode distinguishes a checkout of the whole cart from a single Buy-Now item
type Mode string

const (
	ModeCart   Mode = "cart"
	ModeBuyNow Mode = "buy_now"
)

// Phase names a state
type Phase string

const (
	PhaseIdle             Phase = "Idle"
	PhaseFormEntry        Phase = "FormEntry"
	PhaseRateCheck        Phase = "RateCheck"
	PhaseRateSelected     Phase = "RateSelected"
	PhaseOrderCreated     Phase = "OrderCreated"
	PhasePaymentInFlight  Phase = "PaymentInFlight"
	PhasePaymentConfirmed Phase = "PaymentConfirmed"
	PhasePaymentFailed    Phase = "PaymentFailed"
	PhaseExpired          Phase = "Expired"
)

// State is one of the checkout states below. The set is closed.
type State interface {
	Phase() Phase
	sealed()
}

// Session is what every in-progress state knows about the checkout
type Session struct {
	Mode     Mode
	Items    []valueobject.LineItem
	Form     valueobject.Address
	ReturnTo string // page to go back to on expiry
}

// PlacedOrder is what the backend returned from order creation
type PlacedOrder struct {
	OrderID          uuid.UUID
	OrderNumber      string
	PaymentSessionID string
	Totals           Totals
}

// Outcome is what the hosted payment page reported
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeRedirect Outcome = "redirect"
	OutcomeError    Outcome = "error"
)

type (
	// Idle is the state before a checkout starts
	Idle struct{}

	// FormEntry collects the address. LastError holds the outcome of the last rate check.
	FormEntry struct {
		Session
		LastError error
	}

	// RateCheck waits for serviceability. A re-quote started from
	// RateSelected keeps the options it replaces in Prior.
	RateCheck struct {
		Session
		Prior         []shipping.Option
		PriorSelected int
	}

	// RateSelected has quotes and one selected option
	RateSelected struct {
		Session
		Options   []shipping.Option
		Selected  int
		LastError error
	}

	// OrderCreated holds a pending order with its payment session
	OrderCreated struct {
		Session
		Shipping shipping.Option
		Order    PlacedOrder
	}

	// PaymentInFlight waits for the hosted payment result and its confirmation
	PaymentInFlight struct {
		Session
		Shipping shipping.Option
		Order    PlacedOrder
		Outcome  Outcome // empty until the provider answers
	}

	// PaymentConfirmed is the terminal success state
	PaymentConfirmed struct {
		Mode     Mode
		Order    PlacedOrder
		Address  valueobject.Address
		Items    []valueobject.LineItem
		Shipping shipping.Option
	}

	// PaymentFailed is the terminal failure state
	PaymentFailed struct {
		Mode    Mode
		OrderID uuid.UUID
		Status  string
		Message string
	}

	// Expired is the terminal Buy-Now timeout state
	Expired struct {
		ReturnTo string
	}
)

func (Idle) Phase() Phase             { return PhaseIdle }
func (FormEntry) Phase() Phase        { return PhaseFormEntry }
func (RateCheck) Phase() Phase        { return PhaseRateCheck }
func (RateSelected) Phase() Phase     { return PhaseRateSelected }
func (OrderCreated) Phase() Phase     { return PhaseOrderCreated }
func (PaymentInFlight) Phase() Phase  { return PhasePaymentInFlight }
func (PaymentConfirmed) Phase() Phase { return PhasePaymentConfirmed }
func (PaymentFailed) Phase() Phase    { return PhasePaymentFailed }
func (Expired) Phase() Phase          { return PhaseExpired }

func (Idle) sealed()             {}
func (FormEntry) sealed()        {}
func (RateCheck) sealed()        {}
func (RateSelected) sealed()     {}
func (OrderCreated) sealed()     {}
func (PaymentInFlight) sealed()  {}
func (PaymentConfirmed) sealed() {}
func (PaymentFailed) sealed()    {}
func (Expired) sealed()          {}

// SelectedOption returns the chosen courier
func (s RateSelected) SelectedOption() shipping.Option {
	if s.Selected < 0 || s.Selected >= len(s.Options) {
		return shipping.Option{}
	}
	return s.Options[s.Selected]
}

// Totals prices the session with the selected option
func (s RateSelected) Totals() Totals {
	return ComputeTotals(s.Items, s.SelectedOption())
}

// IsTerminal reports whether no further transition is possible
func IsTerminal(s State) bool {
	switch s.(type) {
	case PaymentConfirmed, PaymentFailed, Expired:
		return true
	}
	return false
}

// CountdownActive reports whether a Buy-Now timer should be running in s
func CountdownActive(s State) bool {
	switch st := s.(type) {
	case FormEntry:
		return st.Mode == ModeBuyNow
	case RateCheck:
		return st.Mode == ModeBuyNow
	case RateSelected:
		return st.Mode == ModeBuyNow
	}
	return false
}
