package slack

import (
	"context"
	"fmt"
	"log/slog"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/hookbridge/internal/adapter/inbound/slackbot/template"
	"github.com/jonny/hookbridge/internal/domain/port/outbound"
)

// SlackAPI is the subset of *slack.Client used to publish cards. Tests
// substitute a fake.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slackapi.MsgOption) (string, string, string, error)
}

var _ SlackAPI = (*slackapi.Client)(nil)

// Gateway implements outbound.Messenger against a single Slack channel.
// Calls are never retried.
type Gateway struct {
	api     SlackAPI
	channel string
	logger  *slog.Logger
}

var _ outbound.Messenger = (*Gateway)(nil)

// NewGateway creates a Gateway posting to channelID.
func NewGateway(api SlackAPI, channelID string, logger *slog.Logger) *Gateway {
	return &Gateway{api: api, channel: channelID, logger: logger}
}

// Publish posts card to the channel, inside threadID when it is set.
func (g *Gateway) Publish(ctx context.Context, threadID string, card outbound.Card) (outbound.MessageRef, error) {
	blocks, fallback, err := template.Render(card)
	if err != nil {
		return outbound.MessageRef{}, err
	}

	opts := []slackapi.MsgOption{
		slackapi.MsgOptionBlocks(blocks...),
		slackapi.MsgOptionText(fallback, false),
	}
	if threadID != "" {
		opts = append(opts, slackapi.MsgOptionTS(threadID))
	}

	channel, ts, err := g.api.PostMessageContext(ctx, g.channel, opts...)
	if err != nil {
		return outbound.MessageRef{}, fmt.Errorf("slack Publish: %w", err)
	}
	if channel == "" {
		channel = g.channel
	}
	g.logger.Debug("card published", "channel", channel, "ts", ts, "thread", threadID, "card", fmt.Sprintf("%T", card))
	return outbound.MessageRef{ChannelID: channel, Timestamp: ts}, nil
}

// Update replaces the content of a published message.
func (g *Gateway) Update(ctx context.Context, ref outbound.MessageRef, card outbound.Card) error {
	blocks, fallback, err := template.Render(card)
	if err != nil {
		return err
	}

	channel := ref.ChannelID
	if channel == "" {
		channel = g.channel
	}
	_, _, _, err = g.api.UpdateMessageContext(ctx, channel, ref.Timestamp,
		slackapi.MsgOptionBlocks(blocks...),
		slackapi.MsgOptionText(fallback, false),
	)
	if err != nil {
		return fmt.Errorf("slack Update: %w", err)
	}
	g.logger.Debug("card updated", "channel", channel, "ts", ref.Timestamp)
	return nil
}
