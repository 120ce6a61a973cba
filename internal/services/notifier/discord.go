package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/KirkDiggler/spinwin/internal/services/announce"
	"github.com/bwmarrin/discordgo"
)

const winEmbedColor = 0xF5C518

// webhookExecutor is the part of discordgo.Session the notifier uses
type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordConfig holds configuration for the Discord notifier
type DiscordConfig struct {
	WebhookID    string
	WebhookToken string

	// Username overrides the webhook's display name
	Username string

	// Announcer writes the message text
	Announcer announce.Service
}

// Discord posts win announcements to a channel through a webhook
type Discord struct {
	session   webhookExecutor
	id        string
	token     string
	username  string
	announcer announce.Service
}

// NewDiscord creates a Discord webhook notifier. No gateway connection is
// opened; webhooks only need the REST API.
func NewDiscord(cfg *DiscordConfig) (*Discord, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	return newDiscord(cfg, session)
}

func newDiscord(cfg *DiscordConfig, session webhookExecutor) (*Discord, error) {
	if cfg.WebhookID == "" || cfg.WebhookToken == "" {
		return nil, errors.New("webhook ID and token cannot be empty")
	}

	if cfg.Announcer == nil {
		return nil, errors.New("announcer cannot be nil")
	}

	return &Discord{
		session:   session,
		id:        cfg.WebhookID,
		token:     cfg.WebhookToken,
		username:  cfg.Username,
		announcer: cfg.Announcer,
	}, nil
}

// Notify posts the announcement with an embed showing the prize
func (d *Discord) Notify(ctx context.Context, input *NotifyInput) error {
	if err := validate(input); err != nil {
		return err
	}

	e := input.Entry
	msg, err := d.announcer.GetWinMessage(ctx, &announce.GetWinMessageInput{
		Name:  e.Name,
		Prize: e.SelectedPrize,
	})
	if err != nil {
		return fmt.Errorf("failed to get win message: %w", err)
	}

	params := &discordgo.WebhookParams{
		Content:  msg.Message,
		Username: d.username,
		Embeds: []*discordgo.MessageEmbed{
			{
				Title: msg.Title,
				Color: winEmbedColor,
				Fields: []*discordgo.MessageEmbedField{
					{Name: "Winner", Value: e.Name, Inline: true},
					{Name: "Prize", Value: e.SelectedPrize, Inline: true},
				},
				Timestamp: e.EntryDate.UTC().Format("2006-01-02T15:04:05Z07:00"),
			},
		},
		// names come from visitors; never ping anyone
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}

	if _, err := d.session.WebhookExecute(d.id, d.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to execute Discord webhook: %w", err)
	}

	return nil
}
