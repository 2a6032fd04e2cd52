package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rooclub/roobot/internal/panda"
	"github.com/rooclub/roobot/internal/platform"
)

const leaderboardSize = 10

const pandaHelp = "**Panda Commands:**\n" +
	"`!panda` or `!panda me` - Check your panda count\n" +
	"`!panda list` - View the top 10 leaderboard"

// PandaCommand reports panda counts.
type PandaCommand struct {
	store     *panda.Store
	dir       platform.Directory
	messenger platform.Messenger
	emojiName string
	logger    *slog.Logger
}

func NewPandaCommand(store *panda.Store, dir platform.Directory, messenger platform.Messenger, emojiName string, logger *slog.Logger) *PandaCommand {
	return &PandaCommand{
		store:     store,
		dir:       dir,
		messenger: messenger,
		emojiName: emojiName,
		logger:    logger,
	}
}

func (c *PandaCommand) Execute(ctx context.Context, req Request) (string, error) {
	if req.Message.IsDirect() {
		return "", nil
	}
	sub := "me"
	if len(req.Args) > 0 {
		sub = strings.ToLower(req.Args[0])
	}

	switch sub {
	case "me":
		return c.me(ctx, req.Message)
	case "list":
		return c.list(ctx, req.Message.GuildID)
	case "help":
		return pandaHelp, nil
	default:
		return "Unknown subcommand. Use `!panda help` for commands.", nil
	}
}

func (c *PandaCommand) me(ctx context.Context, msg platform.Message) (string, error) {
	count, err := c.store.Count(ctx, msg.GuildID, msg.Author.ID)
	if err != nil {
		return "", err
	}
	noun := "Pandas"
	if count == 1 {
		noun = "Panda"
	}
	return fmt.Sprintf("%s <@%s> has %d %s", c.emoji(ctx, msg.GuildID), msg.Author.ID, count, noun), nil
}

func (c *PandaCommand) list(ctx context.Context, guildID string) (string, error) {
	board, err := c.store.Leaderboard(ctx, guildID, leaderboardSize)
	if err != nil {
		return "", err
	}
	if len(board) == 0 {
		return "No pandas have been collected yet!", nil
	}

	emoji := c.emoji(ctx, guildID)
	var b strings.Builder
	fmt.Fprintf(&b, "%s **Leaderboard** %s\n\n", emoji, emoji)
	for i, entry := range board {
		name := entry.Username
		if m, err := c.dir.FetchMember(ctx, guildID, entry.UserID); err == nil && m.DisplayName != "" {
			name = m.DisplayName
		}
		if name == "" {
			name = "Unknown User"
		}
		fmt.Fprintf(&b, "%d. %s - %d\n", i+1, name, entry.Count)
	}
	return b.String(), nil
}

func (c *PandaCommand) emoji(ctx context.Context, guildID string) string {
	e, ok, err := c.messenger.FindEmoji(ctx, guildID, c.emojiName)
	if err != nil {
		c.logger.Debug("Emoji lookup failed", "emoji", c.emojiName, "error", err)
	}
	if !ok {
		return panda.FallbackEmoji
	}
	return e.Display
}
