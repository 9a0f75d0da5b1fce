package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"apploto/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Embed colors
const (
	colorSuccess = 0x2ecc71
	colorInfo    = 0x3498db
	colorWarning = 0xf1c40f
)

// ErrInvalidWebhookURL is returned for URLs that are not Discord webhook URLs
var ErrInvalidWebhookURL = errors.New("invalid discord webhook url")

// WebhookExecutor is the part of the discordgo session used to post announcements
type WebhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAnnouncer posts lottery announcements to a Discord channel webhook
type DiscordAnnouncer struct {
	executor  WebhookExecutor
	webhookID string
	token     string
	siteURL   string
}

// NewDiscordAnnouncer creates an announcer from a webhook URL of the form
// https://discord.com/api/webhooks/{id}/{token}
func NewDiscordAnnouncer(webhookURL, siteURL string) (*DiscordAnnouncer, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return NewDiscordAnnouncerWithExecutor(session, id, token, siteURL), nil
}

// NewDiscordAnnouncerWithExecutor creates an announcer over an existing executor
func NewDiscordAnnouncerWithExecutor(executor WebhookExecutor, webhookID, token, siteURL string) *DiscordAnnouncer {
	return &DiscordAnnouncer{
		executor:  executor,
		webhookID: webhookID,
		token:     token,
		siteURL:   strings.TrimRight(siteURL, "/"),
	}
}

// ParseWebhookURL extracts the webhook ID and token
func ParseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidWebhookURL, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrInvalidWebhookURL, u.Redacted())
}

// AnnounceLotteryCreated posts the opening of a lottery
func (a *DiscordAnnouncer) AnnounceLotteryCreated(ctx context.Context, event events.LotteryCreatedEvent) error {
	if event.Simulation {
		return nil
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("New lottery: %s", event.Name),
		Color:       colorInfo,
		Description: fmt.Sprintf("Entries close <t:%d:f>", event.EndDate.Unix()),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Reward", Value: formatAmount(event.RewardPrice), Inline: true},
			{Name: "Places", Value: fmt.Sprintf("%d", event.MaxParticipants), Inline: true},
		},
		URL: a.siteURL,
	}
	return a.post(ctx, embed, event.LotteryID)
}

// AnnounceDraw posts the podium of a finalized lottery. Simulations are not announced.
func (a *DiscordAnnouncer) AnnounceDraw(ctx context.Context, event events.DrawFinalizedEvent) error {
	if event.Simulation {
		log.WithField("lottery_id", event.LotteryID).Debug("Skipping announcement for simulation")
		return nil
	}
	return a.post(ctx, DrawResultEmbed(event, a.siteURL), event.LotteryID)
}

func (a *DiscordAnnouncer) post(ctx context.Context, embed *discordgo.MessageEmbed, lotteryID int64) error {
	_, err := a.executor.WebhookExecute(a.webhookID, a.token, false, &discordgo.WebhookParams{
		Username: "apploto",
		Embeds:   []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to post discord announcement for lottery %d: %w", lotteryID, err)
	}

	log.WithFields(log.Fields{
		"lottery_id": lotteryID,
		"title":      embed.Title,
	}).Info("Posted discord announcement")
	return nil
}

// DrawResultEmbed builds the announcement embed for a finalized draw
func DrawResultEmbed(event events.DrawFinalizedEvent, siteURL string) *discordgo.MessageEmbed {
	color := colorSuccess
	winners := "No winners this time"
	if len(event.Podium) == 0 {
		color = colorWarning
	} else {
		lines := make([]string, 0, len(event.Podium))
		for _, p := range event.Podium {
			lines = append(lines, fmt.Sprintf("%s %s - %s (score %d)", medal(p.Rank), p.Name, formatAmount(p.Winnings), p.Score))
		}
		winners = strings.Join(lines, "\n")
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s - results", event.LotteryName),
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Numbers", Value: event.WinningNumbers, Inline: true},
			{Name: "Lucky", Value: event.WinningLuckyNumbers, Inline: true},
			{Name: "Participants", Value: fmt.Sprintf("%d", event.ParticipantCount), Inline: true},
			{Name: "Podium", Value: winners, Inline: false},
			{Name: "Distributed", Value: fmt.Sprintf("%s of %s", formatAmount(event.Distributed), formatAmount(event.RewardPrice)), Inline: false},
		},
	}
	if siteURL != "" {
		embed.URL = fmt.Sprintf("%s/lotteries/%d/rankings", strings.TrimRight(siteURL, "/"), event.LotteryID)
	}
	return embed
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("#%d", rank)
	}
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
