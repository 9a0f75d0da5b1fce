package application

import (
	"context"
	"fmt"
	"strings"

	"apploto/domain/entities"
	"apploto/domain/interfaces"
	"apploto/events"

	log "github.com/sirupsen/logrus"
)

// Notification channels reported to metrics
const (
	channelEmail   = "email"
	channelDiscord = "discord"

	drawTypeLottery    = "lottery"
	drawTypeSimulation = "simulation"
)

// EventSubscriber registers handlers for domain events
type EventSubscriber interface {
	Subscribe(eventType events.EventType, handler func(context.Context, events.Event) error) error
}

// Announcer posts lottery announcements to a chat channel
type Announcer interface {
	AnnounceLotteryCreated(ctx context.Context, event events.LotteryCreatedEvent) error
	AnnounceDraw(ctx context.Context, event events.DrawFinalizedEvent) error
}

// NotificationHandler reacts to lottery events with emails, announcements and metrics
type NotificationHandler struct {
	uowFactory UnitOfWorkFactory
	mailer     interfaces.Mailer
	announcer  Announcer // nil disables announcements
	metrics    MetricsRecorder
	siteURL    string
}

// NewNotificationHandler creates a notification handler
func NewNotificationHandler(uowFactory UnitOfWorkFactory, mailer interfaces.Mailer, announcer Announcer, metrics MetricsRecorder, siteURL string) *NotificationHandler {
	return &NotificationHandler{
		uowFactory: uowFactory,
		mailer:     mailer,
		announcer:  announcer,
		metrics:    metrics,
		siteURL:    strings.TrimRight(siteURL, "/"),
	}
}

// RegisterApplicationSubscriptions registers all application-level event subscriptions
func RegisterApplicationSubscriptions(subscriber EventSubscriber, handler *NotificationHandler) error {
	subscriptions := map[events.EventType]func(context.Context, events.Event) error{
		events.EventTypeLotteryCreated:  handler.HandleLotteryCreated,
		events.EventTypeDrawFinalized:   handler.HandleDrawFinalized,
		events.EventTypeEntryRegistered: handler.HandleEntryRegistered,
	}
	for eventType, fn := range subscriptions {
		if err := subscriber.Subscribe(eventType, fn); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", eventType, err)
		}
	}
	return nil
}

// HandleLotteryCreated emails every opted-in user and announces the lottery
func (h *NotificationHandler) HandleLotteryCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(events.LotteryCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if created.Simulation {
		return nil
	}

	var subscribers []*entities.User
	err := RunInUnitOfWork(ctx, h.uowFactory, func(uow UnitOfWork) error {
		var err error
		subscribers, err = uow.UserRepository().ListNotificationSubscribers(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to list notification subscribers: %w", err)
	}

	subject, body := h.lotteryCreatedMessage(created)
	var failed int
	for _, user := range subscribers {
		// one message per user so addresses are not disclosed
		err := h.mailer.Send(ctx, interfaces.MailMessage{
			To:      []string{user.Email},
			Subject: subject,
			Body:    fmt.Sprintf("Hello %s,\n\n%s", user.FirstName, body),
		})
		h.recordNotification(channelEmail, err)
		if err != nil {
			failed++
			log.WithError(err).WithField("user_id", user.ID).Warn("Failed to send new lottery email")
		}
	}

	log.WithFields(log.Fields{
		"lottery_id":  created.LotteryID,
		"subscribers": len(subscribers),
		"failed":      failed,
	}).Info("Sent new lottery notifications")

	if h.announcer != nil {
		err := h.announcer.AnnounceLotteryCreated(ctx, created)
		h.recordNotification(channelDiscord, err)
		if err != nil {
			log.WithError(err).Warn("Failed to announce new lottery")
		}
	}
	return nil
}

func (h *NotificationHandler) lotteryCreatedMessage(event events.LotteryCreatedEvent) (string, string) {
	subject := "A new draw is available"
	var b strings.Builder
	fmt.Fprintf(&b, "A new draw, %q, has just opened on AppLoto.\n", event.Name)
	fmt.Fprintf(&b, "Reward: %.2f, up to %d participants.\n", event.RewardPrice, event.MaxParticipants)
	fmt.Fprintf(&b, "Entries close on %s UTC.\n", event.EndDate.UTC().Format("2006-01-02 15:04"))
	if h.siteURL != "" {
		fmt.Fprintf(&b, "\nPick your numbers at %s\n", h.siteURL)
	}
	b.WriteString("\nGood luck!\nThe AppLoto team\n")
	return subject, b.String()
}

// HandleDrawFinalized records draw metrics and announces the podium
func (h *NotificationHandler) HandleDrawFinalized(ctx context.Context, event events.Event) error {
	finalized, ok := event.(events.DrawFinalizedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	if h.metrics != nil {
		drawType := drawTypeLottery
		if finalized.Simulation {
			drawType = drawTypeSimulation
		}
		h.metrics.RecordDrawFinalized(drawType, finalized.Distributed)
	}

	if h.announcer == nil || finalized.Simulation {
		return nil
	}
	err := h.announcer.AnnounceDraw(ctx, finalized)
	h.recordNotification(channelDiscord, err)
	if err != nil {
		log.WithError(err).WithField("lottery_id", finalized.LotteryID).Warn("Failed to announce draw results")
	}
	return nil
}

// HandleEntryRegistered records entry metrics
func (h *NotificationHandler) HandleEntryRegistered(_ context.Context, event events.Event) error {
	if _, ok := event.(events.EntryRegisteredEvent); !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if h.metrics != nil {
		h.metrics.RecordEntryRegistered()
	}
	return nil
}

func (h *NotificationHandler) recordNotification(channel string, err error) {
	if h.metrics != nil {
		h.metrics.RecordNotification(channel, err)
	}
}
