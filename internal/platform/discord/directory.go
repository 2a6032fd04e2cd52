package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rooclub/roobot/internal/platform"
)

func (c *Client) CreateRole(ctx context.Context, guildID string, spec platform.RoleSpec) (platform.RoleHandle, error) {
	color, err := colorValue(spec.Colors.Primary)
	if err != nil {
		return platform.RoleHandle{}, err
	}
	role, err := c.session.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:        spec.Name,
		Color:       &color,
		Hoist:       &spec.Hoist,
		Mentionable: &spec.Mentionable,
		Permissions: &spec.Permissions,
	}, opts(ctx, spec.Reason)...)
	if err != nil {
		return platform.RoleHandle{}, fmt.Errorf("failed to create role %q: %w", spec.Name, err)
	}

	if spec.Colors.Secondary != "" {
		if err := c.SetRoleColors(ctx, guildID, role.ID, spec.Colors); err != nil {
			// a half-made role is worse than none
			if derr := c.session.GuildRoleDelete(guildID, role.ID, opts(ctx, "gradient colors rejected")...); derr != nil {
				c.logger.Warn("Failed to remove role after gradient was rejected", "role_id", role.ID, "error", derr)
			}
			return platform.RoleHandle{}, err
		}
	}
	return platform.RoleHandle{ID: role.ID, Position: role.Position}, nil
}

func (c *Client) DeleteRole(ctx context.Context, guildID, roleID, reason string) error {
	return mapErr(c.session.GuildRoleDelete(guildID, roleID, opts(ctx, reason)...))
}

func (c *Client) SetRoleName(ctx context.Context, guildID, roleID, name string) error {
	_, err := c.session.GuildRoleEdit(guildID, roleID, &discordgo.RoleParams{Name: name}, opts(ctx, "")...)
	return mapErr(err)
}

type roleColors struct {
	PrimaryColor   int  `json:"primary_color"`
	SecondaryColor *int `json:"secondary_color"`
}

// SetRoleColors uses the enhanced role colors field so gradients can be set.
// A nil secondary color turns a gradient back into a plain role.
func (c *Client) SetRoleColors(ctx context.Context, guildID, roleID string, colors platform.Colors) error {
	primary, err := colorValue(colors.Primary)
	if err != nil {
		return err
	}
	body := struct {
		Colors roleColors `json:"colors"`
	}{Colors: roleColors{PrimaryColor: primary}}
	if colors.Secondary != "" {
		secondary, err := colorValue(colors.Secondary)
		if err != nil {
			return err
		}
		body.Colors.SecondaryColor = &secondary
	}

	_, err = c.session.RequestWithBucketID("PATCH",
		discordgo.EndpointGuildRole(guildID, roleID), body,
		discordgo.EndpointGuildRoles(guildID), opts(ctx, "")...)
	return mapErr(err)
}

func (c *Client) SetRolePosition(ctx context.Context, guildID, roleID string, position int) error {
	_, err := c.session.GuildRoleReorder(guildID, []*discordgo.Role{{ID: roleID, Position: position}}, opts(ctx, "")...)
	return mapErr(err)
}

func (c *Client) GrantRoleToMember(ctx context.Context, guildID, userID, roleID string) error {
	return mapErr(c.session.GuildMemberRoleAdd(guildID, userID, roleID, opts(ctx, "")...))
}

func (c *Client) RevokeRoleFromMember(ctx context.Context, guildID, userID, roleID string) error {
	return mapErr(c.session.GuildMemberRoleRemove(guildID, userID, roleID, opts(ctx, "")...))
}

// FetchMember always asks the API so rank checks see current roles.
func (c *Client) FetchMember(ctx context.Context, guildID, userID string) (platform.Member, error) {
	m, err := c.session.GuildMember(guildID, userID, opts(ctx, "")...)
	if err != nil {
		return platform.Member{}, mapErr(err)
	}
	roles, ownerID, err := c.guildRoles(ctx, guildID)
	if err != nil {
		return platform.Member{}, err
	}
	return toMember(m, roles, ownerID, guildID), nil
}

func (c *Client) BotMember(ctx context.Context, guildID string) (platform.Member, error) {
	if c.session.State.User == nil {
		return platform.Member{}, fmt.Errorf("bot user unknown before the gateway is ready")
	}
	return c.FetchMember(ctx, guildID, c.session.State.User.ID)
}

func (c *Client) FindRoleReference(ctx context.Context, guildID string) (int, bool, error) {
	if c.separatorRoleID == "" {
		return 0, false, nil
	}
	if r, err := c.session.State.Role(guildID, c.separatorRoleID); err == nil {
		return r.Position, true, nil
	}
	roles, err := c.session.GuildRoles(guildID, opts(ctx, "")...)
	if err != nil {
		return 0, false, err
	}
	for _, r := range roles {
		if r.ID == c.separatorRoleID {
			return r.Position, true, nil
		}
	}
	return 0, false, nil
}

// RoleMemberCount counts cached members, like the member list in the client.
func (c *Client) RoleMemberCount(_ context.Context, guildID, roleID string) (int, error) {
	g, err := c.session.State.Guild(guildID)
	if err != nil {
		return 0, err
	}
	c.session.State.RLock()
	defer c.session.State.RUnlock()

	n := 0
	for _, m := range g.Members {
		for _, id := range m.Roles {
			if id == roleID {
				n++
				break
			}
		}
	}
	return n, nil
}

// guildRoles prefers the gateway cache and falls back to the API.
func (c *Client) guildRoles(ctx context.Context, guildID string) ([]*discordgo.Role, string, error) {
	if g, err := c.session.State.Guild(guildID); err == nil {
		c.session.State.RLock()
		defer c.session.State.RUnlock()
		return append([]*discordgo.Role(nil), g.Roles...), g.OwnerID, nil
	}
	g, err := c.session.Guild(guildID, opts(ctx, "")...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch guild %s: %w", guildID, err)
	}
	return g.Roles, g.OwnerID, nil
}

// toMember derives rank and role permissions. @everyone shares the guild's id.
func toMember(m *discordgo.Member, roles []*discordgo.Role, ownerID, guildID string) platform.Member {
	byID := make(map[string]*discordgo.Role, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}

	var perms int64
	if everyone, ok := byID[guildID]; ok {
		perms = everyone.Permissions
	}
	highest := 0
	for _, id := range m.Roles {
		r, ok := byID[id]
		if !ok {
			continue
		}
		perms |= r.Permissions
		highest = max(highest, r.Position)
	}

	out := platform.Member{
		HighestPosition: highest,
		CanManageRoles: perms&discordgo.PermissionAdministrator != 0 ||
			perms&discordgo.PermissionManageRoles != 0,
	}
	if m.User != nil {
		out.AvatarURL = m.AvatarURL("")
		out.ID = m.User.ID
		out.Tag = m.User.String()
		out.DisplayName = m.User.Username
		if m.User.GlobalName != "" {
			out.DisplayName = m.User.GlobalName
		}
		out.CanManageRoles = out.CanManageRoles || m.User.ID == ownerID
	}
	if m.Nick != "" {
		out.DisplayName = m.Nick
	}
	return out
}
