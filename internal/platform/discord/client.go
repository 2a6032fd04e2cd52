// Package discord implements the platform interfaces on top of a discordgo session.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rooclub/roobot/internal/platform"
)

// Intents the bot subscribes to. Member and content intents are privileged
// and must be enabled for the application.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsDirectMessages

// Client is a gateway session that serves as both Directory and Messenger.
type Client struct {
	session         *discordgo.Session
	separatorRoleID string
	logger          *slog.Logger
}

var (
	_ platform.Directory = (*Client)(nil)
	_ platform.Messenger = (*Client)(nil)
)

// New prepares a session for token. Call Open to connect.
func New(token, separatorRoleID string, logger *slog.Logger) (*Client, error) {
	if token == "" {
		return nil, errors.New("discord token is required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = Intents
	s.StateEnabled = true
	// handlers run in gateway order; the dispatcher does the fan-out
	s.SyncEvents = true

	c := &Client{session: s, separatorRoleID: separatorRoleID, logger: logger}
	s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		c.logger.Info("Bot is online", "user", r.User.String(), "guilds", len(r.Guilds))
	})
	return c, nil
}

// OnMessage registers fn for every message the bot can see.
func (c *Client) OnMessage(fn func(platform.Message)) {
	c.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil {
			return
		}
		fn(platform.Message{
			ID:        m.ID,
			ChannelID: m.ChannelID,
			GuildID:   m.GuildID,
			Content:   m.Content,
			Author: platform.User{
				ID:       m.Author.ID,
				Username: m.Author.Username,
				Bot:      m.Author.Bot,
			},
		})
	})
}

// Open connects to the gateway.
func (c *Client) Open() error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (c *Client) Close() error {
	return c.session.Close()
}

func opts(ctx context.Context, reason string) []discordgo.RequestOption {
	o := []discordgo.RequestOption{discordgo.WithContext(ctx)}
	if reason != "" {
		o = append(o, discordgo.WithHeader("X-Audit-Log-Reason", url.PathEscape(reason)))
	}
	return o
}

// mapErr translates unknown role and member responses to the platform sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Message != nil {
		switch rest.Message.Code {
		case discordgo.ErrCodeUnknownRole:
			return fmt.Errorf("%w: %w", platform.ErrRoleNotFound, err)
		case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser:
			return fmt.Errorf("%w: %w", platform.ErrMemberNotFound, err)
		}
	}
	return err
}

func colorValue(hex string) (int, error) {
	v, err := strconv.ParseInt(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return int(v), nil
}
