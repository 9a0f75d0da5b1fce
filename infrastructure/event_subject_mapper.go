package infrastructure

import (
	"fmt"

	"apploto/events"
)

// DomainEventStream is the JetStream stream that carries every domain event
const DomainEventStream = "domain_events"

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return m.MapEventTypeToSubject(event.Type())
}

// MapEventTypeToSubject converts an event type to its NATS subject
func (m *EventSubjectMapper) MapEventTypeToSubject(eventType events.EventType) string {
	switch eventType {
	case events.EventTypeLotteryCreated:
		return "lottery.created"
	case events.EventTypeLotteryStatusChanged:
		return "lottery.status_changed"
	case events.EventTypeEntryRegistered:
		return "lottery.entry_registered"
	case events.EventTypeDrawFinalized:
		return "lottery.draw_finalized"
	case events.EventTypeUserRegistered:
		return "users.registered"
	default:
		// Fallback for unknown event types
		return fmt.Sprintf("unknown.%s", eventType)
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case "lottery.created":
		return events.EventTypeLotteryCreated
	case "lottery.status_changed":
		return events.EventTypeLotteryStatusChanged
	case "lottery.entry_registered":
		return events.EventTypeEntryRegistered
	case "lottery.draw_finalized":
		return events.EventTypeDrawFinalized
	case "users.registered":
		return events.EventTypeUserRegistered
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"lottery.created",
		"lottery.status_changed",
		"lottery.entry_registered",
		"lottery.draw_finalized",
		"users.registered",
	}
}
