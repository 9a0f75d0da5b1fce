package cmd

import (
	"context"
	"fmt"

	"apploto/application"
	"apploto/config"
	"apploto/domain/interfaces"
	"apploto/infrastructure"

	log "github.com/sirupsen/logrus"
)

// eventBus pairs the publisher used by units of work with the subscriber
// that feeds application handlers
type eventBus struct {
	publisher  interfaces.EventPublisher
	subscriber application.EventSubscriber
	client     *infrastructure.NATSClient // nil for the in-process bus
}

// newEventBus connects to NATS when enabled, otherwise dispatches in process
func newEventBus(ctx context.Context, cfg *config.Config) (*eventBus, error) {
	if !cfg.NATSEnabled {
		log.Info("NATS disabled, using in-process event bus")
		bus := infrastructure.NewInProcessEventBus()
		return &eventBus{publisher: bus, subscriber: bus}, nil
	}

	log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
	client := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := client.EnsureDomainEventStream(mapper.GetAllSubjects()); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}
	log.Info("NATS connection established successfully")

	return &eventBus{
		publisher:  infrastructure.NewNATSEventPublisher(client, mapper),
		subscriber: infrastructure.NewNATSEventSubscriber(client, mapper),
		client:     client,
	}, nil
}

// Close disconnects from NATS if connected
func (b *eventBus) Close() {
	if b.client == nil {
		return
	}
	if err := b.client.Close(); err != nil {
		log.WithError(err).Warn("Error closing NATS connection")
	}
}
