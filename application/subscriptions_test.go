package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"apploto/domain/entities"
	"apploto/domain/interfaces"
	"apploto/domain/testhelpers"
	"apploto/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingAnnouncer struct {
	mu      sync.Mutex
	created []events.LotteryCreatedEvent
	draws   []events.DrawFinalizedEvent
	err     error
}

func (a *recordingAnnouncer) AnnounceLotteryCreated(_ context.Context, event events.LotteryCreatedEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.created = append(a.created, event)
	return a.err
}

func (a *recordingAnnouncer) AnnounceDraw(_ context.Context, event events.DrawFinalizedEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.draws = append(a.draws, event)
	return a.err
}

type recordingSubscriber struct {
	handlers map[events.EventType]func(context.Context, events.Event) error
}

func (s *recordingSubscriber) Subscribe(eventType events.EventType, handler func(context.Context, events.Event) error) error {
	if s.handlers == nil {
		s.handlers = make(map[events.EventType]func(context.Context, events.Event) error)
	}
	s.handlers[eventType] = handler
	return nil
}

func lotteryCreated() events.LotteryCreatedEvent {
	return events.LotteryCreatedEvent{
		LotteryID:       4,
		Name:            "Spring draw",
		StartDate:       time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC),
		RewardPrice:     1000,
		MaxParticipants: 50,
	}
}

func TestNotificationHandler_HandleLotteryCreated(t *testing.T) {
	t.Parallel()

	factory := NewMockUnitOfWorkFactory()
	factory.UoW.Users.On("ListNotificationSubscribers", mock.Anything).Return([]*entities.User{
		{ID: 1, FirstName: "Ada", Email: "ada@example.com"},
		{ID: 2, FirstName: "Alan", Email: "alan@example.com"},
	}, nil)

	mailer := new(testhelpers.MockMailer)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg interfaces.MailMessage) bool {
		return msg.To[0] == "ada@example.com" && strings.HasPrefix(msg.Body, "Hello Ada,") &&
			strings.Contains(msg.Body, `"Spring draw"`) && strings.Contains(msg.Body, "https://apploto.example")
	})).Return(nil).Once()
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg interfaces.MailMessage) bool {
		return msg.To[0] == "alan@example.com"
	})).Return(errors.New("mailbox full")).Once()

	announcer := &recordingAnnouncer{}
	metrics := NewRecordingMetrics()
	handler := NewNotificationHandler(factory, mailer, announcer, metrics, "https://apploto.example/")

	require.NoError(t, handler.HandleLotteryCreated(context.Background(), lotteryCreated()))

	mailer.AssertExpectations(t)
	require.Len(t, announcer.created, 1)
	assert.Equal(t, int64(4), announcer.created[0].LotteryID)
	assert.Equal(t, 2, metrics.Notifications[channelEmail])
	assert.Equal(t, 1, metrics.Failures[channelEmail])
	assert.Equal(t, 1, metrics.Notifications[channelDiscord])

	_, committed, _ := factory.UoW.Counts()
	assert.Equal(t, 1, committed)
}

func TestNotificationHandler_HandleLotteryCreated_SkipsSimulation(t *testing.T) {
	t.Parallel()

	factory := NewMockUnitOfWorkFactory()
	mailer := new(testhelpers.MockMailer)
	handler := NewNotificationHandler(factory, mailer, nil, nil, "")

	event := lotteryCreated()
	event.Simulation = true
	require.NoError(t, handler.HandleLotteryCreated(context.Background(), event))

	began, _, _ := factory.UoW.Counts()
	assert.Zero(t, began)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestNotificationHandler_HandleLotteryCreated_SubscriberLookupFails(t *testing.T) {
	t.Parallel()

	factory := NewMockUnitOfWorkFactory()
	factory.UoW.Users.On("ListNotificationSubscribers", mock.Anything).Return(nil, errors.New("timeout"))
	handler := NewNotificationHandler(factory, new(testhelpers.MockMailer), nil, nil, "")

	err := handler.HandleLotteryCreated(context.Background(), lotteryCreated())
	assert.ErrorContains(t, err, "failed to list notification subscribers")
}

func TestNotificationHandler_HandleDrawFinalized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		simulation    bool
		announceErr   error
		wantDrawType  string
		wantAnnounced int
	}{
		{name: "announces real draw", wantDrawType: drawTypeLottery, wantAnnounced: 1},
		{name: "simulation only recorded", simulation: true, wantDrawType: drawTypeSimulation},
		{name: "announcement failure is not fatal", announceErr: errors.New("webhook gone"), wantDrawType: drawTypeLottery, wantAnnounced: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			announcer := &recordingAnnouncer{err: tt.announceErr}
			metrics := NewRecordingMetrics()
			handler := NewNotificationHandler(NewMockUnitOfWorkFactory(), new(testhelpers.MockMailer), announcer, metrics, "")

			err := handler.HandleDrawFinalized(context.Background(), events.DrawFinalizedEvent{
				LotteryID:   4,
				Distributed: 999.99,
				Simulation:  tt.simulation,
			})
			require.NoError(t, err)

			assert.InDelta(t, 999.99, metrics.Draws[tt.wantDrawType], 1e-9)
			assert.Len(t, announcer.draws, tt.wantAnnounced)
			if tt.announceErr != nil {
				assert.Equal(t, 1, metrics.Failures[channelDiscord])
			}
		})
	}
}

func TestNotificationHandler_RejectsWrongEventType(t *testing.T) {
	t.Parallel()

	handler := NewNotificationHandler(NewMockUnitOfWorkFactory(), nil, nil, nil, "")
	assert.Error(t, handler.HandleLotteryCreated(context.Background(), events.UserRegisteredEvent{}))
	assert.Error(t, handler.HandleDrawFinalized(context.Background(), events.UserRegisteredEvent{}))
	assert.Error(t, handler.HandleEntryRegistered(context.Background(), events.UserRegisteredEvent{}))
}

func TestRegisterApplicationSubscriptions(t *testing.T) {
	t.Parallel()

	subscriber := &recordingSubscriber{}
	metrics := NewRecordingMetrics()
	handler := NewNotificationHandler(NewMockUnitOfWorkFactory(), nil, nil, metrics, "")

	require.NoError(t, RegisterApplicationSubscriptions(subscriber, handler))
	assert.Len(t, subscriber.handlers, 3)

	entry := subscriber.handlers[events.EventTypeEntryRegistered]
	require.NotNil(t, entry)
	require.NoError(t, entry(context.Background(), events.EntryRegisteredEvent{EntryID: 1}))
	assert.Equal(t, 1, metrics.Entries)
}
