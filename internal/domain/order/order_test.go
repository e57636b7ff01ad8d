package order

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCustomerID = uuid.New()

func testAddress() valueobject.Address {
	return valueobject.Address{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha@example.com",
		Phone:     "9876543210",
		Address:   "12 MG Road",
		City:      "Bengaluru",
		State:     "Karnataka",
		ZipCode:   "560001",
	}
}

func testItems() []valueobject.LineItem {
	return []valueobject.LineItem{
		{ProductID: uuid.New(), Name: "Shirt", Color: "Blue", Size: "M", Quantity: 2, UnitPrice: decimal.NewFromInt(500)},
		{ProductID: uuid.New(), Name: "Jacket", Color: "Black", Size: "L", Quantity: 1, UnitPrice: decimal.NewFromInt(1200)},
	}
}

func testAmounts() Amounts {
	return Amounts{
		Subtotal: decimal.NewFromInt(2200),
		Shipping: decimal.NewFromInt(80),
		Tax:      decimal.NewFromInt(396),
		Total:    decimal.NewFromInt(2676),
	}
}

func testOption() shipping.Option {
	return shipping.Option{CourierID: 10, CourierName: "Delhivery", Rate: decimal.NewFromInt(80), EstimatedDeliveryDays: 4}
}

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	customer := testCustomerID
	o, err := NewOrder(&customer, testItems(), testAmounts(), testOption(), testAddress(), valueobject.Address{})
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("creates pending unpaid order", func(t *testing.T) {
		o := newTestOrder(t)

		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
		assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, o.OrderNumber)
		assert.Equal(t, o.Address, o.BillingAddress)
		assert.Equal(t, 3, o.ItemCount())
		require.Len(t, o.StatusHistory, 1)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderPlaced, events[0].EventType())
		scoped, ok := events[0].(shared.UserScopedEvent)
		require.True(t, ok)
		assert.Equal(t, testCustomerID, *scoped.RecipientID())
	})

	t.Run("rejects missing address fields", func(t *testing.T) {
		addr := testAddress()
		addr.Phone = ""
		_, err := NewOrder(nil, testItems(), testAmounts(), testOption(), addr, valueobject.Address{})
		require.Error(t, err)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, []string{"phone"}, de.Fields)
	})

	t.Run("rejects empty items", func(t *testing.T) {
		_, err := NewOrder(nil, nil, testAmounts(), testOption(), testAddress(), valueobject.Address{})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("requires a shipping option", func(t *testing.T) {
		_, err := NewOrder(nil, testItems(), testAmounts(), shipping.Option{}, testAddress(), valueobject.Address{})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestOrder_ConfirmPayment(t *testing.T) {
	t.Run("moves to completed and processing", func(t *testing.T) {
		o := newTestOrder(t)
		o.ClearDomainEvents()

		changed, err := o.ConfirmPayment(time.Now())
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, PaymentStatusCompleted, o.PaymentStatus)
		assert.Equal(t, StatusProcessing, o.Status)
		assert.NotNil(t, o.PaidAt)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderPaid, events[0].EventType())
	})

	t.Run("second confirmation is a no-op", func(t *testing.T) {
		o := newTestOrder(t)
		_, err := o.ConfirmPayment(time.Now())
		require.NoError(t, err)
		version := o.GetVersion()

		changed, err := o.ConfirmPayment(time.Now())
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, PaymentStatusCompleted, o.PaymentStatus)
		assert.Equal(t, version, o.GetVersion())
	})

	t.Run("canceled order cannot be paid", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Cancel("changed my mind", time.Now()))
		_, err := o.ConfirmPayment(time.Now())
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
	})
}

func TestOrder_Cancel(t *testing.T) {
	now := time.Now()

	t.Run("requires a reason", func(t *testing.T) {
		o := newTestOrder(t)
		err := o.Cancel("   ", now)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.Equal(t, StatusPending, o.Status)
	})

	t.Run("cancels pending order", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Cancel("ordered wrong size", now))
		assert.Equal(t, StatusCanceled, o.Status)
		assert.Equal(t, "ordered wrong size", o.CancelReason)
		require.NotNil(t, o.CancelledAt)
		assert.Equal(t, now, *o.CancelledAt)
	})

	t.Run("cancels processing order before pickup", func(t *testing.T) {
		o := newTestOrder(t)
		_, _ = o.ConfirmPayment(now)
		o.SchedulePickup(now.Add(time.Hour))
		require.NoError(t, o.Cancel("late", now))
	})

	t.Run("refuses after pickup time", func(t *testing.T) {
		o := newTestOrder(t)
		o.SchedulePickup(now.Add(-time.Minute))
		assert.False(t, o.CanCancel(now))
		err := o.Cancel("late", now)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("refuses once shipped", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.SetStatus(StatusShipped, "", now))
		err := o.Cancel("late", now)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}

func TestOrder_SetStatus(t *testing.T) {
	now := time.Now()

	t.Run("any status may follow any other", func(t *testing.T) {
		for _, from := range AllStatuses() {
			for _, to := range AllStatuses() {
				o := newTestOrder(t)
				o.Status = from
				require.NoError(t, o.SetStatus(to, "admin", now), "%s -> %s", from, to)
				assert.Equal(t, to, o.Status)
			}
		}
	})

	t.Run("records timeline and event", func(t *testing.T) {
		o := newTestOrder(t)
		o.ClearDomainEvents()
		require.NoError(t, o.SetStatus(StatusShipped, "handed to courier", now))

		last := o.StatusHistory[len(o.StatusHistory)-1]
		assert.Equal(t, StatusShipped, last.Status)
		assert.Equal(t, "handed to courier", last.Note)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		ev, ok := events[0].(*OrderStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, StatusPending, ev.PreviousStatus)
	})

	t.Run("admin cancel stamps cancelledAt", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.SetStatus(StatusCanceled, "out of stock", now))
		require.NotNil(t, o.CancelledAt)
		assert.Equal(t, "out of stock", o.CancelReason)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		o := newTestOrder(t)
		err := o.SetStatus(Status("Lost"), "", now)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestOrder_AttachPaymentSession(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AttachPaymentSession("session_abc", "cf_123"))
	assert.Equal(t, "session_abc", o.PaymentSessionID)

	assert.Error(t, o.AttachPaymentSession("", "cf_123"))

	_, _ = o.ConfirmPayment(time.Now())
	assert.Error(t, o.AttachPaymentSession("session_new", "cf_124"))
}

func TestOrder_AssignAWB(t *testing.T) {
	o := newTestOrder(t)
	v := o.GetVersion()
	o.AssignAWB("  ")
	assert.Equal(t, v, o.GetVersion())
	o.AssignAWB("AWB123")
	assert.Equal(t, "AWB123", o.AWB)
	assert.True(t, o.IsOwnedBy(testCustomerID))
	assert.False(t, o.IsOwnedBy(uuid.New()))
}
