package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Envelope is the wire form of a domain event on Kafka and the websocket.
// Payload is the event's own JSON encoding.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps event
func NewEnvelope(event shared.DomainEvent) (Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s: %w", event.EventType(), err)
	}
	return Envelope{
		ID:            event.EventID(),
		Type:          event.EventType(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		OccurredAt:    event.OccurredAt().UTC(),
		Payload:       payload,
	}, nil
}

// Encode marshals event as an Envelope
func Encode(event shared.DomainEvent) ([]byte, error) {
	env, err := NewEnvelope(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}
