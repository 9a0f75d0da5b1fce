package infrastructure

import (
	"apploto/events"
)

// NoopEventPublisher is an event publisher that does nothing.
// The CLI uses it for simulations that must not notify anyone.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish does nothing with the event
func (n *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}
