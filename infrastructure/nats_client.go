package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

var errNotConnected = errors.New("not connected to NATS JetStream")

// NATSOptions tunes the JetStream connection and its durable consumers
type NATSOptions struct {
	ClientName     string
	ConsumerPrefix string
	ReconnectWait  time.Duration
	MaxReconnects  int
	MaxDeliver     int
	AckWait        time.Duration
	StreamMaxAge   time.Duration
}

// DefaultNATSOptions returns the settings used by the apploto server
func DefaultNATSOptions() NATSOptions {
	return NATSOptions{
		ClientName:     "apploto",
		ConsumerPrefix: "apploto",
		ReconnectWait:  2 * time.Second,
		MaxReconnects:  10,
		MaxDeliver:     3,
		AckWait:        30 * time.Second,
		StreamMaxAge:   7 * 24 * time.Hour,
	}
}

// NATSClient publishes to and consumes from the domain event stream over JetStream
type NATSClient struct {
	servers string
	opts    NATSOptions

	mu   sync.Mutex
	nc   *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewNATSClient creates a client with DefaultNATSOptions
func NewNATSClient(servers string) *NATSClient {
	return NewNATSClientWithOptions(servers, DefaultNATSOptions())
}

func NewNATSClientWithOptions(servers string, opts NATSOptions) *NATSClient {
	return &NATSClient{servers: servers, opts: opts}
}

// Connect dials the servers and opens a JetStream context
func (c *NATSClient) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	nc, err := nats.Connect(c.servers,
		nats.Name(c.opts.ClientName),
		nats.MaxReconnects(c.opts.MaxReconnects),
		nats.ReconnectWait(c.opts.ReconnectWait),
		nats.DisconnectErrHandler(onDisconnect),
		nats.ReconnectHandler(func(*nats.Conn) { log.Info("NATS reconnected") }),
		nats.ErrorHandler(onAsyncError),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	c.mu.Lock()
	c.nc, c.js = nc, js
	c.mu.Unlock()

	log.WithField("servers", c.servers).Info("Connected to NATS with JetStream")
	return nil
}

func onDisconnect(_ *nats.Conn, err error) {
	if err != nil {
		log.WithError(err).Error("NATS disconnected with error")
		return
	}
	log.Warn("NATS disconnected")
}

func onAsyncError(_ *nats.Conn, sub *nats.Subscription, err error) {
	entry := log.WithError(err)
	if sub != nil {
		entry = entry.WithField("subject", sub.Subject)
	}
	entry.Error("NATS async error")
}

func (c *NATSClient) jetStream() (nats.JetStreamContext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.js == nil {
		return nil, errNotConnected
	}
	return c.js, nil
}

// consumerName derives a durable name that is stable per subject
func (c *NATSClient) consumerName(subject string) string {
	r := strings.NewReplacer(".", "_", "*", "wildcard", ">", "all")
	return c.opts.ConsumerPrefix + "-" + r.Replace(subject)
}

// Subscribe attaches a durable, manually acked consumer to subject.
// A handler error NAKs the message so JetStream redelivers it up to MaxDeliver times.
func (c *NATSClient) Subscribe(subject string, handler func([]byte) error) error {
	js, err := c.jetStream()
	if err != nil {
		return err
	}

	sub, err := js.Subscribe(subject, deliver(subject, handler),
		nats.Durable(c.consumerName(subject)),
		nats.ManualAck(),
		nats.AckExplicit(),
		nats.MaxDeliver(c.opts.MaxDeliver),
		nats.AckWait(c.opts.AckWait),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()

	log.WithField("subject", subject).Info("Subscribed to NATS subject")
	return nil
}

func deliver(subject string, handler func([]byte) error) nats.MsgHandler {
	return func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			log.WithError(err).WithField("subject", subject).Error("Failed to process message")
			if nakErr := msg.Nak(); nakErr != nil {
				log.WithError(nakErr).Error("Failed to NAK message")
			}
			return
		}
		if ackErr := msg.Ack(); ackErr != nil {
			log.WithError(ackErr).Error("Failed to ACK message")
		}
	}
}

// Publish sends data to subject and waits for the JetStream ack
func (c *NATSClient) Publish(ctx context.Context, subject string, data []byte) error {
	js, err := c.jetStream()
	if err != nil {
		return err
	}
	if _, err := js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish message to subject %s: %w", subject, err)
	}

	log.WithFields(log.Fields{
		"subject": subject,
		"size":    len(data),
	}).Debug("Published message to NATS")
	return nil
}

// EnsureDomainEventStream creates the domain_events stream when it does not exist yet.
// Call after Connect and before publishing.
func (c *NATSClient) EnsureDomainEventStream(subjects []string) error {
	js, err := c.jetStream()
	if err != nil {
		return err
	}

	if _, err := js.StreamInfo(DomainEventStream); err == nil {
		log.WithField("stream", DomainEventStream).Info("JetStream stream already exists")
		return nil
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:        DomainEventStream,
		Description: "Lottery domain events",
		Subjects:    subjects,
		Retention:   nats.LimitsPolicy,
		MaxAge:      c.opts.StreamMaxAge,
		Storage:     nats.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", DomainEventStream, err)
	}

	log.WithFields(log.Fields{
		"stream":   DomainEventStream,
		"subjects": subjects,
	}).Info("Created JetStream stream")
	return nil
}

// IsConnected reports whether the underlying connection is up
func (c *NATSClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nc != nil && c.nc.IsConnected()
}

// Close unsubscribes every consumer and drops the connection
func (c *NATSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.WithError(err).WithField("subject", sub.Subject).Error("Failed to unsubscribe")
		}
	}
	c.subs = nil

	if c.nc != nil {
		c.nc.Close()
		c.nc, c.js = nil, nil
		log.Info("NATS connection closed")
	}
	return nil
}
