package infrastructure

import (
	"encoding/json"
	"fmt"

	"apploto/events"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const sourceService = "apploto"

// EventEnvelope wraps a serialized domain event on the bus
type EventEnvelope struct {
	EventID       string                 `json:"event_id"`
	EventType     string                 `json:"event_type"`
	Timestamp     *timestamppb.Timestamp `json:"timestamp"`
	SourceService string                 `json:"source_service"`
	Payload       json.RawMessage        `json:"payload"`
}

// NewEventEnvelope serializes an event into a new envelope
func NewEventEnvelope(event events.Event) (*EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     timestamppb.Now(),
		SourceService: sourceService,
		Payload:       payload,
	}, nil
}

// DecodeEvent deserializes the envelope payload into its concrete event value
func (e *EventEnvelope) DecodeEvent() (events.Event, error) {
	switch events.EventType(e.EventType) {
	case events.EventTypeLotteryCreated:
		return decodeAs[events.LotteryCreatedEvent](e.Payload)
	case events.EventTypeLotteryStatusChanged:
		return decodeAs[events.LotteryStatusChangedEvent](e.Payload)
	case events.EventTypeEntryRegistered:
		return decodeAs[events.EntryRegisteredEvent](e.Payload)
	case events.EventTypeDrawFinalized:
		return decodeAs[events.DrawFinalizedEvent](e.Payload)
	case events.EventTypeUserRegistered:
		return decodeAs[events.UserRegisteredEvent](e.Payload)
	default:
		return nil, fmt.Errorf("unknown event type: %s", e.EventType)
	}
}

func decodeAs[T events.Event](payload []byte) (events.Event, error) {
	var event T
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return event, nil
}
