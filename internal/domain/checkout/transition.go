package checkout

import (
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
)

// ErrInvalidTransition is returned when an event does not apply to the current state
var ErrInvalidTransition = shared.NewDomainError("INVALID_TRANSITION", "Event not allowed in current checkout state")

// Transition applies ev to s. On error the returned state is s, unchanged.
func Transition(s State, ev Event) (State, error) {
	if s == nil {
		s = Idle{}
	}
	next, err := apply(s, ev)
	if err != nil {
		return s, err
	}
	return next, nil
}

func apply(s State, ev Event) (State, error) {
	switch st := s.(type) {
	case Idle:
		if e, ok := ev.(Begin); ok {
			return begin(e)
		}
	case FormEntry:
		switch e := ev.(type) {
		case EditForm:
			st.Form = e.Form
			return st, nil
		case RequestRates:
			return requestRates(st.Session, e, nil, 0)
		case Submit:
			return nil, ValidateSubmission(e.Form, shipping.Option{})
		case Expire:
			return expire(st.Session)
		}
	case RateCheck:
		switch e := ev.(type) {
		case EditForm:
			st.Form = e.Form
			return st, nil
		case RatesReceived:
			return ratesReceived(st.Session, e), nil
		case RatesFailed:
			if len(st.Prior) > 0 {
				return RateSelected{Session: st.Session, Options: st.Prior, Selected: st.PriorSelected, LastError: e.Err}, nil
			}
			return FormEntry{Session: st.Session, LastError: e.Err}, nil
		case Expire:
			return expire(st.Session)
		}
	case RateSelected:
		return fromRateSelected(st, ev)
	case OrderCreated:
		switch e := ev.(type) {
		case PaymentOpened:
			return PaymentInFlight{Session: st.Session, Shipping: st.Shipping, Order: st.Order}, nil
		case PaymentSettled:
			if e.Outcome == OutcomeError {
				return paymentFailed(st.Mode, st.Order, "", e.Message), nil
			}
		}
	case PaymentInFlight:
		switch e := ev.(type) {
		case PaymentSettled:
			if e.Outcome == OutcomeError {
				return paymentFailed(st.Mode, st.Order, "", e.Message), nil
			}
			st.Outcome = e.Outcome
			return st, nil
		case PaymentVerified:
			return PaymentConfirmed{
				Mode:     st.Mode,
				Order:    st.Order,
				Address:  st.Form,
				Items:    st.Items,
				Shipping: st.Shipping,
			}, nil
		case PaymentRejected:
			return paymentFailed(st.Mode, st.Order, e.Status, e.Message), nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, ev.eventName(), s.Phase())
}

func begin(e Begin) (State, error) {
	if len(e.Items) == 0 {
		return nil, shared.NewValidationError("Nothing to check out", "items")
	}
	if e.Mode != ModeCart && e.Mode != ModeBuyNow {
		return nil, shared.NewValidationError("Unknown checkout mode", "mode")
	}
	return FormEntry{Session: Session{Mode: e.Mode, Items: e.Items, ReturnTo: e.ReturnTo}}, nil
}

func requestRates(sess Session, e RequestRates, prior []shipping.Option, selected int) (State, error) {
	form := e.Form.Normalize()
	if !CanQuote(form) {
		var missing []string
		if form.ZipCode == "" {
			missing = append(missing, "zipCode")
		}
		if form.State == "" {
			missing = append(missing, "state")
		}
		return nil, shared.NewValidationError("", missing...)
	}
	sess.Form = e.Form
	return RateCheck{Session: sess, Prior: prior, PriorSelected: selected}, nil
}

func ratesReceived(sess Session, e RatesReceived) State {
	idx := shipping.Cheapest(e.Options)
	if idx < 0 {
		return FormEntry{Session: sess, LastError: shared.ErrNoServiceableCourier}
	}
	return RateSelected{Session: sess, Options: e.Options, Selected: idx}
}

func fromRateSelected(st RateSelected, ev Event) (State, error) {
	switch e := ev.(type) {
	case EditForm:
		st.Form = e.Form
		return st, nil
	case RequestRates:
		return requestRates(st.Session, e, st.Options, st.Selected)
	case SelectShipping:
		for i, o := range st.Options {
			if o.CourierID == e.CourierID {
				st.Selected = i
				st.LastError = nil
				return st, nil
			}
		}
		return nil, shared.NewValidationError("Unknown shipping option", FieldShippingOption)
	case Submit:
		if err := ValidateSubmission(e.Form, st.SelectedOption()); err != nil {
			return nil, err
		}
		st.Form = e.Form
		st.LastError = nil
		return st, nil
	case OrderPlaced:
		return OrderCreated{Session: st.Session, Shipping: st.SelectedOption(), Order: e.Order}, nil
	case OrderFailed:
		st.LastError = e.Err
		return st, nil
	case Expire:
		return expire(st.Session)
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, ev.eventName(), st.Phase())
}

func expire(sess Session) (State, error) {
	if sess.Mode != ModeBuyNow {
		return nil, fmt.Errorf("%w: Expire in cart checkout", ErrInvalidTransition)
	}
	return Expired{ReturnTo: sess.ReturnTo}, nil
}

func paymentFailed(mode Mode, order PlacedOrder, status, message string) PaymentFailed {
	if message == "" {
		message = shared.ErrPayment.Message
	}
	return PaymentFailed{Mode: mode, OrderID: order.OrderID, Status: status, Message: message}
}
