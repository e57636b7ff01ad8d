package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ shared.EventHandler = (*KafkaForwarder)(nil)

// MessageWriter is the part of *kafka.Writer the forwarder uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaForwarder copies the events it is subscribed to onto a Kafka topic,
// keyed by aggregate id so one order's events stay on one partition.
type KafkaForwarder struct {
	writer  MessageWriter
	types   []string
	timeout time.Duration
	logger  *zap.Logger
}

// ForwarderOption configures a KafkaForwarder
type ForwarderOption func(*KafkaForwarder)

// WithForwarderLogger sets the logger
func WithForwarderLogger(logger *zap.Logger) ForwarderOption {
	return func(f *KafkaForwarder) {
		f.logger = logger
	}
}

// WithWriteTimeout bounds each write
func WithWriteTimeout(d time.Duration) ForwarderOption {
	return func(f *KafkaForwarder) {
		f.timeout = d
	}
}

// NewKafkaWriter creates a writer for the configured topic
func NewKafkaWriter(cfg config.KafkaConfig) (*kafka.Writer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}, nil
}

// NewKafkaForwarder forwards eventTypes; no types forwards everything
func NewKafkaForwarder(writer MessageWriter, eventTypes []string, opts ...ForwarderOption) *KafkaForwarder {
	f := &KafkaForwarder{
		writer:  writer,
		types:   eventTypes,
		timeout: 5 * time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// EventTypes returns the forwarded event types
func (f *KafkaForwarder) EventTypes() []string {
	return f.types
}

// Handle writes one message per event
func (f *KafkaForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	value, err := Encode(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.AggregateID().String()),
		Value: value,
		Time:  event.OccurredAt(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
			{Key: "event_id", Value: []byte(event.EventID().String())},
		},
	}
	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to forward %s to kafka: %w", event.EventType(), err)
	}

	f.logger.Debug("event forwarded",
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID().String()),
	)
	return nil
}

// Close flushes and closes the writer
func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}
