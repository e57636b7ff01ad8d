package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaForwarder_Handle(t *testing.T) {
	w := &fakeWriter{}
	f := NewKafkaForwarder(w, []string{"OrderPaid"})
	assert.Equal(t, []string{"OrderPaid"}, f.EventTypes())

	ev := newTestEvent("OrderPaid")
	require.NoError(t, f.Handle(context.Background(), ev))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, ev.AggregateID().String(), string(msg.Key))
	assert.Equal(t, "OrderPaid", string(msg.Headers[0].Value))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, ev.EventID(), env.ID)
	assert.Equal(t, "TestAggregate", env.AggregateType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "test data", payload["data"])

	require.NoError(t, f.Close())
	assert.True(t, w.closed)
}

func TestKafkaForwarder_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	f := NewKafkaForwarder(w, nil)

	err := f.Handle(context.Background(), newTestEvent("OrderPlaced"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OrderPlaced")
	assert.ErrorIs(t, err, w.err)
}

func TestNewKafkaWriter(t *testing.T) {
	_, err := NewKafkaWriter(config.KafkaConfig{Topic: "t"})
	assert.Error(t, err)

	_, err = NewKafkaWriter(config.KafkaConfig{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	w, err := NewKafkaWriter(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "storefront.orders"})
	require.NoError(t, err)
	assert.Equal(t, "storefront.orders", w.Topic)
}
