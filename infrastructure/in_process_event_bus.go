package infrastructure

import (
	"context"
	"sync"

	"apploto/events"

	log "github.com/sirupsen/logrus"
)

// InProcessEventBus dispatches events to handlers in the publishing process.
// It stands in for NATS when the message bus is disabled.
type InProcessEventBus struct {
	mu       sync.RWMutex
	handlers map[events.EventType][]EventHandler
}

// NewInProcessEventBus creates an empty in-process bus
func NewInProcessEventBus() *InProcessEventBus {
	return &InProcessEventBus{
		handlers: make(map[events.EventType][]EventHandler),
	}
}

// Subscribe registers a handler for an event type
func (b *InProcessEventBus) Subscribe(eventType events.EventType, handler func(context.Context, events.Event) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// Publish runs every handler registered for the event. Handler errors are logged.
func (b *InProcessEventBus) Publish(event events.Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.Type()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(context.Background(), event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("In-process event handler failed")
		}
	}
	return nil
}
