package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rooclub/roobot/internal/platform"
)

func (c *Client) Reply(ctx context.Context, msg platform.Message, content string) error {
	_, err := c.session.ChannelMessageSendReply(msg.ChannelID, content, &discordgo.MessageReference{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
		GuildID:   msg.GuildID,
	}, opts(ctx, "")...)
	return err
}

func (c *Client) Send(ctx context.Context, channelID, content string) (string, error) {
	m, err := c.session.ChannelMessageSend(channelID, content, opts(ctx, "")...)
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return c.session.ChannelMessageDelete(channelID, messageID, opts(ctx, "")...)
}

func (c *Client) React(ctx context.Context, channelID, messageID, emoji string) error {
	return c.session.MessageReactionAdd(channelID, messageID, emoji, opts(ctx, "")...)
}

func (c *Client) FindEmoji(ctx context.Context, guildID, name string) (platform.Emoji, bool, error) {
	var emojis []*discordgo.Emoji
	if g, err := c.session.State.Guild(guildID); err == nil {
		c.session.State.RLock()
		emojis = append(emojis, g.Emojis...)
		c.session.State.RUnlock()
	} else {
		emojis, err = c.session.GuildEmojis(guildID, opts(ctx, "")...)
		if err != nil {
			return platform.Emoji{}, false, err
		}
	}
	for _, e := range emojis {
		if e.Name == name {
			return platform.Emoji{Reaction: e.APIName(), Display: e.MessageFormat()}, true, nil
		}
	}
	return platform.Emoji{}, false, nil
}

// SendAs posts through a webhook that exists only for this message.
func (c *Client) SendAs(ctx context.Context, channelID string, as platform.Member, content string) error {
	wh, err := c.session.WebhookCreate(channelID, as.DisplayName, "", opts(ctx, "")...)
	if err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}
	defer func() {
		if err := c.session.WebhookDelete(wh.ID, opts(context.WithoutCancel(ctx), "")...); err != nil {
			c.logger.Warn("Failed to delete webhook", "webhook_id", wh.ID, "error", err)
		}
	}()

	_, err = c.session.WebhookExecute(wh.ID, wh.Token, true, &discordgo.WebhookParams{
		Content:   content,
		Username:  as.DisplayName,
		AvatarURL: as.AvatarURL,
	}, opts(ctx, "")...)
	if err != nil {
		return fmt.Errorf("failed to post as %s: %w", as.Tag, err)
	}
	return nil
}
