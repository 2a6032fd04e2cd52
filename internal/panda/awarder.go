package panda

import (
	"context"
	"log/slog"

	"github.com/rooclub/roobot/internal/platform"
)

// FallbackEmoji is used in text when the guild has no custom panda emoji.
const FallbackEmoji = "🐼"

// Awarder feeds messages of the reward channel to a Counter and hands out pandas.
type Awarder struct {
	channelID string
	emojiName string
	counter   *Counter
	store     *Store
	messenger platform.Messenger
	logger    *slog.Logger
}

func NewAwarder(channelID, emojiName string, counter *Counter, store *Store, messenger platform.Messenger, logger *slog.Logger) *Awarder {
	return &Awarder{
		channelID: channelID,
		emojiName: emojiName,
		counter:   counter,
		store:     store,
		messenger: messenger,
		logger:    logger,
	}
}

// Observe counts msg if it was posted in the reward channel and reports
// whether its author earned a panda. It never blocks on I/O, so callers can
// run it in message arrival order.
func (a *Awarder) Observe(msg platform.Message) bool {
	if a.channelID == "" || msg.ChannelID != a.channelID {
		return false
	}
	return a.counter.Observe(msg.Author.ID)
}

// Award stores the panda and reacts to msg. A missing emoji only skips the reaction.
func (a *Awarder) Award(ctx context.Context, msg platform.Message) bool {
	count, err := a.store.Add(ctx, msg.GuildID, msg.Author.ID, msg.Author.Username)
	if err != nil {
		a.logger.Error("Error awarding panda", "guild_id", msg.GuildID, "user_id", msg.Author.ID, "error", err)
		return false
	}
	a.logger.Info("Panda awarded", "guild_id", msg.GuildID, "user_id", msg.Author.ID, "count", count)

	emoji, ok, err := a.messenger.FindEmoji(ctx, msg.GuildID, a.emojiName)
	switch {
	case err != nil:
		a.logger.Warn("Emoji lookup failed", "emoji", a.emojiName, "error", err)
	case !ok:
		a.logger.Warn("Emoji not found in guild", "emoji", a.emojiName, "guild_id", msg.GuildID)
	default:
		if err := a.messenger.React(ctx, msg.ChannelID, msg.ID, emoji.Reaction); err != nil {
			a.logger.Warn("Failed to react with panda emoji", "message_id", msg.ID, "error", err)
		}
	}
	return true
}
