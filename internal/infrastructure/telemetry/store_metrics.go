package telemetry

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var _ shared.EventHandler = (*StoreMetrics)(nil)

// Attribute keys shared by the storefront instruments
const (
	AttrStatus  = attribute.Key("order.status")
	AttrOutcome = attribute.Key("outcome")
	AttrCourier = attribute.Key("courier.available")
)

// StoreMetrics counts order lifecycle events from the event bus and exposes
// recorders for the payment webhook, reconciliation and shipping quotes.
type StoreMetrics struct {
	ordersPlaced    metric.Int64Counter
	ordersPaid      metric.Int64Counter
	ordersCancelled metric.Int64Counter
	statusChanges   metric.Int64Counter
	orderValue      metric.Float64Histogram
	webhooks        metric.Int64Counter
	reconciled      metric.Int64Counter
	quoteDuration   metric.Float64Histogram
}

// NewStoreMetrics creates the instruments on meter
func NewStoreMetrics(meter metric.Meter) (*StoreMetrics, error) {
	m := &StoreMetrics{}
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.ordersPlaced, "store.orders.placed", "Orders created awaiting payment"},
		{&m.ordersPaid, "store.orders.paid", "Orders whose payment completed"},
		{&m.ordersCancelled, "store.orders.cancelled", "Orders cancelled by customers"},
		{&m.statusChanges, "store.orders.status_changes", "Admin status transitions"},
		{&m.webhooks, "store.payments.webhooks", "Payment webhooks received by outcome"},
		{&m.reconciled, "store.payments.reconciled", "Pending orders checked by the reconciler"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, err
		}
	}

	if m.orderValue, err = meter.Float64Histogram("store.orders.value",
		metric.WithDescription("Order total at placement"),
		metric.WithUnit("INR"),
		metric.WithExplicitBucketBoundaries(250, 500, 1000, 2500, 5000, 10000, 25000, 50000),
	); err != nil {
		return nil, err
	}
	if m.quoteDuration, err = meter.Float64Histogram("store.shipping.quote_duration",
		metric.WithDescription("Courier serviceability lookup latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes returns the order events counted
func (m *StoreMetrics) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderPaid,
		order.EventTypeOrderCancelled,
		order.EventTypeOrderStatusChanged,
	}
}

// Handle records one order event
func (m *StoreMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		m.ordersPlaced.Add(ctx, 1)
		total, _ := e.TotalAmount.Float64()
		m.orderValue.Record(ctx, total)
	case *order.OrderPaidEvent:
		m.ordersPaid.Add(ctx, 1)
	case *order.OrderCancelledEvent:
		m.ordersCancelled.Add(ctx, 1, metric.WithAttributes(attribute.Bool("was_paid", e.WasPaid)))
	case *order.OrderStatusChangedEvent:
		m.statusChanges.Add(ctx, 1, metric.WithAttributes(AttrStatus.String(string(e.Status))))
	}
	return nil
}

// RecordWebhook counts a webhook by outcome (accepted, rejected, failed)
func (m *StoreMetrics) RecordWebhook(ctx context.Context, outcome string) {
	m.webhooks.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(outcome)))
}

// RecordReconciled counts checked orders by outcome (confirmed, pending, failed)
func (m *StoreMetrics) RecordReconciled(ctx context.Context, outcome string, n int) {
	if n > 0 {
		m.reconciled.Add(ctx, int64(n), metric.WithAttributes(AttrOutcome.String(outcome)))
	}
}

// RecordQuote records a shipping quote lookup
func (m *StoreMetrics) RecordQuote(ctx context.Context, d time.Duration, couriers int) {
	m.quoteDuration.Record(ctx, d.Seconds(), metric.WithAttributes(AttrCourier.Bool(couriers > 0)))
}
