package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"apploto/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	subject string
	data    []byte
}

// fakeBus captures published messages and lets tests replay them to subscribers
type fakeBus struct {
	published  []publishedMessage
	handlers   map[string]func([]byte) error
	publishErr error
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[string]func([]byte) error)}
}

func (b *fakeBus) Publish(ctx context.Context, subject string, data []byte) error {
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, publishedMessage{subject: subject, data: data})
	return nil
}

func (b *fakeBus) Subscribe(subject string, handler func([]byte) error) error {
	b.handlers[subject] = handler
	return nil
}

func (b *fakeBus) deliver(t *testing.T) {
	t.Helper()
	for _, msg := range b.published {
		handler, ok := b.handlers[msg.subject]
		require.True(t, ok, "no subscriber for %s", msg.subject)
		require.NoError(t, handler(msg.data))
	}
}

func TestNATSEventPublisher_RoutesThroughSubscriber(t *testing.T) {
	t.Parallel()

	bus := newFakeBus()
	mapper := NewEventSubjectMapper()
	publisher := NewNATSEventPublisher(bus, mapper)
	subscriber := NewNATSEventSubscriber(bus, mapper)

	var received []events.Event
	record := func(ctx context.Context, event events.Event) error {
		received = append(received, event)
		return nil
	}
	require.NoError(t, subscriber.Subscribe(events.EventTypeDrawFinalized, record))
	require.NoError(t, subscriber.Subscribe(events.EventTypeLotteryCreated, record))

	finalized := events.DrawFinalizedEvent{
		LotteryID:      3,
		LotteryName:    "Weekly",
		WinningNumbers: "1,2,3,4,5",
		RewardPrice:    1000,
		Distributed:    1000,
		Podium:         []events.PodiumEntry{{UserID: 10, Name: "Ada Lovelace", Rank: 1, Score: 100, Winnings: 1000}},
	}
	require.NoError(t, publisher.Publish(finalized))
	require.NoError(t, publisher.Publish(events.LotteryCreatedEvent{LotteryID: 4, Name: "Next"}))

	require.Len(t, bus.published, 2)
	assert.Equal(t, "lottery.draw_finalized", bus.published[0].subject)
	assert.Equal(t, "lottery.created", bus.published[1].subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(bus.published[0].data, &envelope))
	assert.Equal(t, "apploto", envelope.SourceService)
	assert.NotEmpty(t, envelope.EventID)
	assert.NotNil(t, envelope.Timestamp)

	bus.deliver(t)
	require.Len(t, received, 2)
	assert.Equal(t, finalized, received[0])
	assert.Equal(t, events.LotteryCreatedEvent{LotteryID: 4, Name: "Next"}, received[1])
}

func TestNATSEventPublisher_LocalHandlers(t *testing.T) {
	t.Parallel()

	bus := newFakeBus()
	publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())

	calls := 0
	publisher.RegisterLocalHandler(events.EventTypeUserRegistered, func(ctx context.Context, event events.Event) error {
		calls++
		return errors.New("local handler failure does not block publishing")
	})

	require.NoError(t, publisher.Publish(events.UserRegisteredEvent{UserID: 1}))
	assert.Equal(t, 1, calls)
	assert.Len(t, bus.published, 1)
}

func TestNATSEventPublisher_PublishErrors(t *testing.T) {
	t.Parallel()

	bus := newFakeBus()
	publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())

	bus.publishErr = errors.New("connection closed")
	assert.ErrorContains(t, publisher.Publish(events.LotteryCreatedEvent{}), "failed to publish event to NATS")

	bus.publishErr = errors.New("nats: no response from stream")
	assert.NoError(t, publisher.Publish(events.LotteryCreatedEvent{}))
}

func TestNATSEventSubscriber_RejectsBadMessages(t *testing.T) {
	t.Parallel()

	subscriber := NewNATSEventSubscriber(newFakeBus(), NewEventSubjectMapper())

	assert.ErrorContains(t, subscriber.handleMessage("lottery.created", []byte("not json")), "failed to unmarshal event envelope")

	unknown, err := json.Marshal(EventEnvelope{EventType: "mystery", Payload: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.ErrorContains(t, subscriber.handleMessage("lottery.created", unknown), "unknown event type")

	valid, err := json.Marshal(EventEnvelope{EventType: string(events.EventTypeLotteryCreated), Payload: json.RawMessage(`{"lottery_id":1}`)})
	require.NoError(t, err)
	assert.ErrorContains(t, subscriber.handleMessage("lottery.created", valid), "no handler registered")
}

func TestEventSubjectMapper_RoundTrip(t *testing.T) {
	t.Parallel()

	mapper := NewEventSubjectMapper()
	for _, subject := range mapper.GetAllSubjects() {
		eventType := mapper.MapSubjectToEventType(subject)
		assert.Equal(t, subject, mapper.MapEventTypeToSubject(eventType))
	}
	assert.Equal(t, "unknown.mystery", mapper.MapEventTypeToSubject("mystery"))
}

func TestInProcessEventBus(t *testing.T) {
	t.Parallel()

	bus := NewInProcessEventBus()
	var got []int64
	require.NoError(t, bus.Subscribe(events.EventTypeLotteryCreated, func(ctx context.Context, event events.Event) error {
		got = append(got, event.(events.LotteryCreatedEvent).LotteryID)
		return nil
	}))
	require.NoError(t, bus.Subscribe(events.EventTypeLotteryCreated, func(ctx context.Context, event events.Event) error {
		return errors.New("second handler fails")
	}))

	require.NoError(t, bus.Publish(events.LotteryCreatedEvent{LotteryID: 7}))
	require.NoError(t, bus.Publish(events.UserRegisteredEvent{UserID: 1}))
	assert.Equal(t, []int64{7}, got)
}
