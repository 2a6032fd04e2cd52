// Package platform describes what the bot needs from the chat platform.
// The discord subpackage implements it on top of a gateway session.
package platform

import (
	"context"
	"errors"
)

var (
	// ErrMemberNotFound is returned when a user is not (or no longer) a member of the guild.
	ErrMemberNotFound = errors.New("member not found")

	// ErrRoleNotFound is returned when a role id no longer exists on the platform.
	ErrRoleNotFound = errors.New("role not found")
)

// User identifies a message author.
type User struct {
	ID       string
	Username string
	Bot      bool
}

// Member is a guild member together with the facts authorization needs.
type Member struct {
	ID              string
	Tag             string // printable account name
	DisplayName     string // guild nickname or account name
	AvatarURL       string
	HighestPosition int  // position of the member's highest role, 0 for @everyone only
	CanManageRoles  bool // holds Manage Roles (or Administrator, or owns the guild)
}

// Colors are canonical "#RRGGBB" strings. Empty Secondary means a single color role.
type Colors struct {
	Primary   string
	Secondary string
}

// RoleSpec describes a role to create.
type RoleSpec struct {
	Name        string
	Colors      Colors
	Hoist       bool
	Mentionable bool
	Permissions int64
	Reason      string
}

// RoleHandle is a created platform role.
type RoleHandle struct {
	ID       string
	Position int
}

// Directory is the platform's authoritative role and member state.
type Directory interface {
	CreateRole(ctx context.Context, guildID string, spec RoleSpec) (RoleHandle, error)
	DeleteRole(ctx context.Context, guildID, roleID, reason string) error
	SetRoleName(ctx context.Context, guildID, roleID, name string) error
	SetRoleColors(ctx context.Context, guildID, roleID string, colors Colors) error
	SetRolePosition(ctx context.Context, guildID, roleID string, position int) error
	GrantRoleToMember(ctx context.Context, guildID, userID, roleID string) error
	RevokeRoleFromMember(ctx context.Context, guildID, userID, roleID string) error

	// FetchMember returns ErrMemberNotFound for users outside the guild.
	FetchMember(ctx context.Context, guildID, userID string) (Member, error)
	// BotMember returns the bot's own member record in the guild.
	BotMember(ctx context.Context, guildID string) (Member, error)
	// FindRoleReference returns the position of the configured separator role.
	FindRoleReference(ctx context.Context, guildID string) (int, bool, error)
	// RoleMemberCount returns how many cached members hold roleID.
	RoleMemberCount(ctx context.Context, guildID, roleID string) (int, error)
}

// Message is an inbound chat message. GuildID is empty for direct messages.
type Message struct {
	ID        string
	ChannelID string
	GuildID   string
	Author    User
	Content   string
}

// IsDirect reports whether the message arrived outside a guild.
func (m Message) IsDirect() bool {
	return m.GuildID == ""
}

// Emoji is a custom guild emoji.
type Emoji struct {
	Reaction string // form accepted when reacting, "name:id"
	Display  string // form rendered inside message text
}

// Messenger sends and manages chat messages.
type Messenger interface {
	Reply(ctx context.Context, msg Message, content string) error
	Send(ctx context.Context, channelID, content string) (string, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	React(ctx context.Context, channelID, messageID, emoji string) error
	FindEmoji(ctx context.Context, guildID, name string) (Emoji, bool, error)
	// SendAs posts content in channelID under another member's name and avatar.
	SendAs(ctx context.Context, channelID string, as Member, content string) error
}
