// Package checkout drives a storefront checkout session: address entry,
// courier quotes, order creation and the hosted payment, on top of the
// state machine in the checkout domain package.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	orderapp "github.com/storefront/backend/internal/application/order"
	shippingapp "github.com/storefront/backend/internal/application/shipping"
	"github.com/storefront/backend/internal/client"
	checkoutdomain "github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
	"go.uber.org/zap"
)

// DefaultOriginPostcode is the warehouse postcode quotes are computed from
const DefaultOriginPostcode = "110001"

// ErrBusy is returned while a previous request of the session is still running
var ErrBusy = fmt.Errorf("%w: a checkout request is already in flight", checkoutdomain.ErrInvalidTransition)

// Orchestrator runs one checkout session. It is safe for concurrent use;
// network calls are made without holding the lock so the countdown keeps
// ticking while they run.
type Orchestrator struct {
	api      API
	payments PaymentCheckout
	nav      Navigator
	cart     CartClearer
	clock    Clock
	origin   string
	logger   *zap.Logger

	mu        sync.Mutex
	state     checkoutdomain.State
	remaining time.Duration
	stopTick  func()
	done      chan struct{}
	inFlight  bool
	navigated bool
	quotedFor string
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithClock replaces the system clock
func WithClock(c Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithOriginPostcode sets the pickup postcode of quotes
func WithOriginPostcode(postcode string) Option {
	return func(o *Orchestrator) { o.origin = postcode }
}

// WithCart sets the cart cleared after a paid cart checkout
func WithCart(c CartClearer) Option {
	return func(o *Orchestrator) { o.cart = c }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an idle orchestrator
func New(api API, payments PaymentCheckout, nav Navigator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		api:      api,
		payments: payments,
		nav:      nav,
		clock:    systemClock{},
		origin:   DefaultOriginPostcode,
		logger:   zap.NewNop(),
		state:    checkoutdomain.Idle{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// State returns the current state
func (o *Orchestrator) State() checkoutdomain.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Remaining is the Buy-Now time left, zero when no countdown runs
func (o *Orchestrator) Remaining() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopTick == nil {
		return 0
	}
	return o.remaining
}

// StartCartCheckout begins a checkout of the cart's lines
func (o *Orchestrator) StartCartCheckout(items []valueobject.LineItem, returnTo string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fire(checkoutdomain.Begin{Mode: checkoutdomain.ModeCart, Items: items, ReturnTo: returnTo})
}

// StartBuyNow begins a checkout of a single variant and starts the
// BuyNowTimeout countdown.
func (o *Orchestrator) StartBuyNow(product catalogapp.ProductResponse, color, size string, quantity int, returnTo string) error {
	if quantity < 1 {
		return shared.NewValidationError("Quantity must be at least 1", "quantity")
	}
	item := valueobject.LineItem{
		ProductID: product.ID,
		Name:      product.Name,
		Color:     color,
		Size:      size,
		Quantity:  quantity,
		UnitPrice: valueobject.RoundMoney(product.Price),
		WeightKg:  product.WeightKg,
	}
	if len(product.Images) > 0 {
		item.ImageURL = product.Images[0]
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.fire(checkoutdomain.Begin{
		Mode:     checkoutdomain.ModeBuyNow,
		Items:    []valueobject.LineItem{item},
		ReturnTo: returnTo,
	}); err != nil {
		return err
	}
	o.startCountdown()
	return nil
}

// UpdateForm stores the address. Once postcode and state are present and
// differ from the last quoted pair, rates are requested.
func (o *Orchestrator) UpdateForm(ctx context.Context, form valueobject.Address) error {
	o.mu.Lock()
	if err := o.fire(checkoutdomain.EditForm{Form: form}); err != nil {
		o.mu.Unlock()
		return err
	}
	quote := checkoutdomain.CanQuote(form) && quoteKey(form) != o.quotedFor && !o.inFlight
	o.mu.Unlock()

	if !quote {
		return nil
	}
	return o.RequestRates(ctx)
}

// RequestRates quotes couriers for the current address. On success the
// cheapest option is selected. A failed call keeps the previous options when
// there were any, otherwise returns to FormEntry, with the error recorded so
// the shopper can retry.
func (o *Orchestrator) RequestRates(ctx context.Context) error {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return ErrBusy
	}
	sess, ok := sessionOf(o.state)
	if !ok {
		o.mu.Unlock()
		return o.invalid("RequestRates")
	}
	if err := o.fire(checkoutdomain.RequestRates{Form: sess.Form}); err != nil {
		o.mu.Unlock()
		return err
	}
	o.quotedFor = quoteKey(sess.Form)
	o.inFlight = true
	o.mu.Unlock()

	resp, err := o.api.CheckServiceability(ctx, shippingapp.ServiceabilityRequest{
		PickupPostcode:   o.origin,
		DeliveryPostcode: sess.Form.Normalize().ZipCode,
		Weight:           shipping.EstimateWeight(sess.Items),
	})

	o.mu.Lock()
	defer o.mu.Unlock()
	o.inFlight = false
	if _, waiting := o.state.(checkoutdomain.RateCheck); !waiting {
		return shared.ErrSessionExpired
	}
	if err != nil {
		o.logger.Warn("rate check failed", zap.Error(err))
		_ = o.fire(checkoutdomain.RatesFailed{Err: err})
		return err
	}

	options := make([]shipping.Option, len(resp.Couriers))
	for i, c := range resp.Couriers {
		options[i] = shipping.Option{
			CourierID:             c.CourierCompanyID,
			CourierName:           c.CourierName,
			Rate:                  c.Rate,
			EstimatedDeliveryDays: c.EstimatedDeliveryDays,
		}
	}
	if err := o.fire(checkoutdomain.RatesReceived{Options: options}); err != nil {
		return err
	}
	if fe, ok := o.state.(checkoutdomain.FormEntry); ok && fe.LastError != nil {
		return fe.LastError
	}
	return nil
}

// SelectShipping picks another returned courier without re-quoting
func (o *Orchestrator) SelectShipping(courierID int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fire(checkoutdomain.SelectShipping{CourierID: courierID})
}

// Submit validates the form and creates the order. Validation failures
// never reach the network. A created order stops the countdown.
func (o *Orchestrator) Submit(ctx context.Context, form valueobject.Address) (*checkoutdomain.PlacedOrder, error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	if err := o.fire(checkoutdomain.Submit{Form: form}); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	selected := o.state.(checkoutdomain.RateSelected)
	o.inFlight = true
	o.mu.Unlock()

	totals := selected.Totals()
	option := selected.SelectedOption()
	address := form.Normalize()
	req := orderapp.CreateOrderRequest{
		Products:       make([]orderapp.OrderItemInput, len(selected.Items)),
		TotalAmount:    totals.Total,
		Address:        address,
		BillingAddress: &address,
		ShippingInfo: orderapp.ShippingInfoInput{
			CourierID:             option.CourierID,
			CourierName:           option.CourierName,
			Rate:                  option.Rate,
			EstimatedDeliveryDays: option.EstimatedDeliveryDays,
		},
	}
	for i, it := range selected.Items {
		req.Products[i] = orderapp.OrderItemInput{
			ProductID: it.ProductID,
			Name:      it.Name,
			Color:     it.Color,
			Size:      it.Size,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}

	resp, err := o.api.CreateOrder(ctx, req)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.inFlight = false
	if _, ok := o.state.(checkoutdomain.RateSelected); !ok {
		if resp != nil {
			o.logger.Warn("order created after checkout expired", zap.String("order_id", resp.Order.ID.String()))
		}
		return nil, shared.ErrSessionExpired
	}
	if err != nil {
		o.logger.Warn("order creation failed", zap.Error(err))
		_ = o.fire(checkoutdomain.OrderFailed{Err: err})
		return nil, err
	}

	placed := checkoutdomain.PlacedOrder{
		OrderID:          resp.Order.ID,
		OrderNumber:      resp.Order.OrderNumber,
		PaymentSessionID: resp.PaymentSessionID,
		Totals:           totals,
	}
	if err := o.fire(checkoutdomain.OrderPlaced{Order: placed}); err != nil {
		return nil, err
	}
	o.stopCountdown()
	o.logger.Info("order created",
		zap.String("order_id", placed.OrderID.String()),
		zap.String("order_number", placed.OrderNumber),
		zap.String("total", totals.Total.String()))
	return &placed, nil
}

// Pay opens the hosted checkout and confirms the payment with the backend.
// Success navigates to the confirmation view; anything else to the failure
// view. Both outcomes end the session.
func (o *Orchestrator) Pay(ctx context.Context) error {
	o.mu.Lock()
	created, ok := o.state.(checkoutdomain.OrderCreated)
	if !ok {
		o.mu.Unlock()
		return o.invalid("PaymentOpened")
	}
	if err := o.fire(checkoutdomain.PaymentOpened{}); err != nil {
		o.mu.Unlock()
		return err
	}
	o.mu.Unlock()

	result, err := o.payments.Open(ctx, PaymentRequest{
		OrderID:          created.Order.OrderID,
		OrderNumber:      created.Order.OrderNumber,
		PaymentSessionID: created.Order.PaymentSessionID,
		Amount:           created.Order.Totals.Total,
	})
	if err != nil {
		result = PaymentResult{Outcome: checkoutdomain.OutcomeError, Message: messageOf(err)}
	}

	o.mu.Lock()
	if err := o.fire(checkoutdomain.PaymentSettled{Outcome: result.Outcome, Message: result.Message}); err != nil {
		o.mu.Unlock()
		return err
	}
	if failed, ok := o.state.(checkoutdomain.PaymentFailed); ok {
		o.mu.Unlock()
		return o.fail(failed)
	}
	o.mu.Unlock()

	confirm := o.api.ConfirmOrder
	if result.Outcome == checkoutdomain.OutcomeRedirect {
		confirm = o.api.ConfirmPayment
	}
	confirmed, err := confirm(ctx, created.Order.OrderID)
	if err == nil && confirmed.PaymentStatus != order.PaymentStatusCompleted.String() {
		err = shared.ErrPayment
	}

	o.mu.Lock()
	if err != nil {
		status := order.PaymentStatusPending.String()
		if confirmed != nil {
			status = confirmed.PaymentStatus
		}
		_ = o.fire(checkoutdomain.PaymentRejected{Status: status, Message: messageOf(err)})
		failed, _ := o.state.(checkoutdomain.PaymentFailed)
		o.mu.Unlock()
		return o.fail(failed)
	}
	if err := o.fire(checkoutdomain.PaymentVerified{}); err != nil {
		o.mu.Unlock()
		return err
	}
	done := o.state.(checkoutdomain.PaymentConfirmed)
	navigate := o.claimNavigation()
	o.mu.Unlock()

	if done.Mode == checkoutdomain.ModeCart && o.cart != nil {
		if err := o.cart.Clear(ctx); err != nil {
			o.logger.Warn("cart clear after payment failed", zap.Error(err))
		}
	}
	o.logger.Info("payment confirmed", zap.String("order_id", done.Order.OrderID.String()))
	if navigate {
		o.nav.Confirmation(Confirmation{
			OrderID:     done.Order.OrderID,
			OrderNumber: done.Order.OrderNumber,
			Address:     done.Address,
			Items:       done.Items,
			Shipping:    done.Shipping,
			Totals:      done.Order.Totals,
		})
	}
	return nil
}

// Close stops the countdown. The session state is kept.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopCountdown()
}

func (o *Orchestrator) fail(f checkoutdomain.PaymentFailed) error {
	o.mu.Lock()
	navigate := o.claimNavigation()
	o.mu.Unlock()

	o.logger.Warn("payment failed",
		zap.String("order_id", f.OrderID.String()),
		zap.String("status", f.Status),
		zap.String("message", f.Message))
	if navigate {
		o.nav.Failure(Failure{OrderID: f.OrderID, Status: f.Status, Message: f.Message})
	}
	return fmt.Errorf("%w: %s", shared.ErrPayment, f.Message)
}

// fire applies ev; the caller holds mu
func (o *Orchestrator) fire(ev checkoutdomain.Event) error {
	next, err := checkoutdomain.Transition(o.state, ev)
	if err != nil {
		return err
	}
	o.state = next
	return nil
}

func (o *Orchestrator) invalid(event string) error {
	return fmt.Errorf("%w: %s in %s", checkoutdomain.ErrInvalidTransition, event, o.state.Phase())
}

// claimNavigation reports whether the caller may navigate; true at most once
func (o *Orchestrator) claimNavigation() bool {
	if o.navigated {
		return false
	}
	o.navigated = true
	return true
}

// startCountdown runs the Buy-Now timer; the caller holds mu
func (o *Orchestrator) startCountdown() {
	o.stopCountdown()
	ticks, stop := o.clock.Tick(time.Second)
	done := make(chan struct{})
	o.remaining = checkoutdomain.BuyNowTimeout
	o.stopTick = stop
	o.done = done

	go func() {
		for {
			// a closed done wins over a pending tick
			select {
			case <-done:
				return
			default:
			}
			select {
			case <-done:
				return
			case <-ticks:
				o.tick()
			}
		}
	}()
}

// stopCountdown is idempotent; the caller holds mu
func (o *Orchestrator) stopCountdown() {
	if o.stopTick == nil {
		return
	}
	o.stopTick()
	close(o.done)
	o.stopTick = nil
	o.done = nil
}

func (o *Orchestrator) tick() {
	o.mu.Lock()
	if o.stopTick == nil || !checkoutdomain.CountdownActive(o.state) {
		o.mu.Unlock()
		return
	}
	o.remaining -= time.Second
	if o.remaining > 0 {
		o.mu.Unlock()
		return
	}

	o.remaining = 0
	o.stopCountdown()
	if err := o.fire(checkoutdomain.Expire{}); err != nil {
		o.mu.Unlock()
		return
	}
	expired := o.state.(checkoutdomain.Expired)
	navigate := o.claimNavigation()
	o.mu.Unlock()

	o.logger.Info("buy-now checkout expired", zap.String("return_to", expired.ReturnTo))
	if navigate {
		o.nav.ProductPage(expired.ReturnTo)
	}
}

func sessionOf(s checkoutdomain.State) (checkoutdomain.Session, bool) {
	switch st := s.(type) {
	case checkoutdomain.FormEntry:
		return st.Session, true
	case checkoutdomain.RateSelected:
		return st.Session, true
	}
	return checkoutdomain.Session{}, false
}

func quoteKey(form valueobject.Address) string {
	f := form.Normalize()
	return f.ZipCode + "|" + f.State
}

// messageOf returns the text shown to the shopper for err
func messageOf(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}
