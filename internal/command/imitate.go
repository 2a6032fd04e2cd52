package command

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/rooclub/roobot/internal/platform"
	"github.com/rooclub/roobot/internal/roles"
)

const (
	imitateNoUser    = "Please mention a user to imitate! Usage: `!imitate @user {message}`"
	imitateNoMessage = "Please provide a message to send! Usage: `!imitate @user {message}`"
)

// ImitateCommand reposts a message under another member's name and avatar.
type ImitateCommand struct {
	dir       platform.Directory
	messenger platform.Messenger
	logger    *slog.Logger
}

func NewImitateCommand(dir platform.Directory, messenger platform.Messenger, logger *slog.Logger) *ImitateCommand {
	return &ImitateCommand{dir: dir, messenger: messenger, logger: logger}
}

func (c *ImitateCommand) Execute(ctx context.Context, req Request) (string, error) {
	msg := req.Message
	if msg.IsDirect() {
		return "", nil
	}
	if len(req.Args) == 0 {
		return imitateNoUser, nil
	}
	userID, ok := roles.ParseMention(req.Args[0])
	if !ok {
		return imitateNoUser, nil
	}
	member, err := c.dir.FetchMember(ctx, msg.GuildID, userID)
	if errors.Is(err, platform.ErrMemberNotFound) {
		return imitateNoUser, nil
	}
	if err != nil {
		return "", err
	}

	content := strings.Join(req.Args[1:], " ")
	if strings.TrimSpace(content) == "" {
		return imitateNoMessage, nil
	}

	// The invoking message goes first; nothing can be replied to after that.
	if err := c.messenger.DeleteMessage(ctx, msg.ChannelID, msg.ID); err != nil {
		c.logger.Error("Error in imitate command", "stage", "delete", "error", err)
		return "", nil
	}
	if err := c.messenger.SendAs(ctx, msg.ChannelID, member, content); err != nil {
		c.logger.Error("Error in imitate command", "stage", "send", "target_id", member.ID, "error", err)
	}
	return "", nil
}
